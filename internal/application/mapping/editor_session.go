package mapping

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/salesiq/backend/internal/domain/mapping"
	"github.com/salesiq/backend/internal/domain/shared"
)

// Session-level domain errors.
var (
	// ErrSessionNotFound is returned for unknown session ids
	ErrSessionNotFound = shared.NewDomainError("SESSION_NOT_FOUND", "Editing session not found")
	// ErrSessionActive is returned when a session already exists for the pair
	ErrSessionActive = shared.NewDomainError("SESSION_ACTIVE", "An editing session is already open for this system and entity")
)

// editorSession binds one Editor to a session id. All access goes through the
// session mutex; the editor itself is not safe for concurrent use.
type editorSession struct {
	id        uuid.UUID
	key       mapping.MappingKey
	editor    *mapping.Editor
	createdAt time.Time
	updatedAt time.Time

	mu sync.Mutex
}

// SessionManager is the in-memory registry of editing sessions. It enforces
// one live session per (system, entity) key, matching the single-editor model
// of the configuration screen. Sessions do not survive a restart; the
// persisted mapping sets do.
type SessionManager struct {
	repo     mapping.MappingSetRepository
	registry *mapping.SchemaRegistry
	logger   *zap.Logger

	mu    sync.RWMutex
	byID  map[uuid.UUID]*editorSession
	byKey map[mapping.MappingKey]uuid.UUID
}

// NewSessionManager creates a new SessionManager
func NewSessionManager(repo mapping.MappingSetRepository, registry *mapping.SchemaRegistry, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		repo:     repo,
		registry: registry,
		logger:   logger,
		byID:     make(map[uuid.UUID]*editorSession),
		byKey:    make(map[mapping.MappingKey]uuid.UUID),
	}
}

// ---------------------------------------------------------------------------
// Session lifecycle
// ---------------------------------------------------------------------------

// Open loads the persisted set and the schemas for the pair and opens a new
// session over them. Rejected while another session holds the same key.
func (m *SessionManager) Open(ctx context.Context, system, entity string) (*SessionResponse, error) {
	sys, ent, err := ResolvePair(system, entity)
	if err != nil {
		return nil, err
	}
	key := mapping.MappingKey{System: sys, Entity: ent}

	set, err := m.repo.Load(ctx, sys, ent)
	if err != nil {
		return nil, err
	}
	source := m.registry.SourceSchema(ctx, sys, ent)
	canonical := m.registry.CanonicalSchema(ctx, ent, sys)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byKey[key]; taken {
		return nil, ErrSessionActive
	}

	now := time.Now().UTC()
	session := &editorSession{
		id:        uuid.New(),
		key:       key,
		editor:    mapping.NewEditor(set, source, canonical),
		createdAt: now,
		updatedAt: now,
	}
	m.byID[session.id] = session
	m.byKey[key] = session.id

	m.logger.Info("editing session opened",
		zap.String("session_id", session.id.String()),
		zap.String("key", key.String()),
	)
	return session.snapshot(), nil
}

// Get returns the current state of a session.
func (m *SessionManager) Get(id uuid.UUID) (*SessionResponse, error) {
	session, err := m.find(id)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.snapshot(), nil
}

// Close discards a session and its unsaved edits.
func (m *SessionManager) Close(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.byID[id]
	if !ok {
		return ErrSessionNotFound
	}
	delete(m.byID, id)
	delete(m.byKey, session.key)

	m.logger.Info("editing session closed",
		zap.String("session_id", id.String()),
		zap.String("key", session.key.String()),
	)
	return nil
}

// Save persists the session's current set wholesale. The session stays open
// and keeps its in-memory state whether or not persistence succeeds, so a
// failed save loses nothing.
func (m *SessionManager) Save(ctx context.Context, id uuid.UUID) (*SessionResponse, error) {
	session, err := m.find(id)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	if err := m.repo.Save(ctx, session.editor.Set()); err != nil {
		return nil, err
	}
	session.updatedAt = time.Now().UTC()

	m.logger.Info("editing session saved",
		zap.String("session_id", id.String()),
		zap.String("key", session.key.String()),
		zap.Int("entries", session.editor.Set().Len()),
	)
	return session.snapshot(), nil
}

// ---------------------------------------------------------------------------
// Editing operations
// ---------------------------------------------------------------------------

// AddEntry appends a new draft entry and applies any initial patch.
func (m *SessionManager) AddEntry(id uuid.UUID, patch DraftPatch) (*SessionResponse, error) {
	return m.with(id, func(editor *mapping.Editor) error {
		if _, err := editor.AddDraftEntry(); err != nil {
			return err
		}
		if err := applyPatch(editor, patch); err != nil {
			// Do not leave a half-patched draft open.
			_ = editor.CancelEdit()
			return err
		}
		return nil
	})
}

// BeginEdit opens the entry at index for editing and applies any patch.
func (m *SessionManager) BeginEdit(id uuid.UUID, index int, patch DraftPatch) (*SessionResponse, error) {
	return m.with(id, func(editor *mapping.Editor) error {
		if err := editor.BeginEdit(index); err != nil {
			return err
		}
		if err := applyPatch(editor, patch); err != nil {
			_ = editor.CancelEdit()
			return err
		}
		return nil
	})
}

// UpdateDraft applies a patch to the open draft.
func (m *SessionManager) UpdateDraft(id uuid.UUID, patch DraftPatch) (*SessionResponse, error) {
	return m.with(id, func(editor *mapping.Editor) error {
		return applyPatch(editor, patch)
	})
}

// Commit applies any final patch and commits the draft into the set.
func (m *SessionManager) Commit(id uuid.UUID, patch DraftPatch) (*SessionResponse, error) {
	return m.with(id, func(editor *mapping.Editor) error {
		if err := applyPatch(editor, patch); err != nil {
			return err
		}
		return editor.CommitEdit()
	})
}

// Cancel discards the open draft.
func (m *SessionManager) Cancel(id uuid.UUID) (*SessionResponse, error) {
	return m.with(id, func(editor *mapping.Editor) error {
		return editor.CancelEdit()
	})
}

// RemoveEntry deletes the entry at index.
func (m *SessionManager) RemoveEntry(id uuid.UUID, index int) (*SessionResponse, error) {
	return m.with(id, func(editor *mapping.Editor) error {
		return editor.RemoveEntry(index)
	})
}

// ReplaceAll atomically overwrites the session's in-memory set.
func (m *SessionManager) ReplaceAll(id uuid.UUID, entries []EntryRequest) (*SessionResponse, error) {
	return m.with(id, func(editor *mapping.Editor) error {
		replacement := make([]mapping.FieldMapping, len(entries))
		for i, req := range entries {
			replacement[i] = req.ToDomain()
		}
		editor.ReplaceAll(replacement)
		return nil
	})
}

// ---------------------------------------------------------------------------
// Internals
// ---------------------------------------------------------------------------

func (m *SessionManager) find(id uuid.UUID) (*editorSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.byID[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// with runs fn against the session's editor under the session lock and
// returns a fresh snapshot.
func (m *SessionManager) with(id uuid.UUID, fn func(*mapping.Editor) error) (*SessionResponse, error) {
	session, err := m.find(id)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	if err := fn(session.editor); err != nil {
		return nil, err
	}
	session.updatedAt = time.Now().UTC()
	return session.snapshot(), nil
}

// applyPatch pushes the non-nil patch fields into the editor's draft.
func applyPatch(editor *mapping.Editor, patch DraftPatch) error {
	if patch.IsZero() {
		return nil
	}
	if patch.SourceField != nil {
		if err := editor.SetDraftSourceField(*patch.SourceField); err != nil {
			return err
		}
	}
	if patch.TargetField != nil {
		if err := editor.SetDraftTargetField(*patch.TargetField); err != nil {
			return err
		}
	}
	if patch.Transform != nil {
		t := mapping.Transform(*patch.Transform)
		if !t.IsValid() {
			return shared.NewDomainError("UNKNOWN_TRANSFORM",
				fmt.Sprintf("Transform %q is not part of the catalog", *patch.Transform))
		}
		if err := editor.SetDraftTransform(t); err != nil {
			return err
		}
	}
	if patch.Confidence != nil {
		if err := editor.SetDraftConfidence(*patch.Confidence); err != nil {
			return err
		}
	}
	return nil
}

// snapshot renders the session state. Caller holds the session lock.
func (s *editorSession) snapshot() *SessionResponse {
	resp := &SessionResponse{
		ID:        s.id,
		System:    s.key.System,
		Entity:    s.key.Entity,
		State:     s.editor.State(),
		Entries:   NewEntryResponses(s.editor.Entries()),
		Warnings:  s.editor.Lint(),
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
	if resp.Warnings == nil {
		resp.Warnings = []mapping.LintWarning{}
	}
	if draft, editing := s.editor.Draft(); editing {
		index := s.editor.EditIndex()
		entry := NewEntryResponse(draft)
		resp.EditIndex = &index
		resp.Draft = &entry
	}
	return resp
}
