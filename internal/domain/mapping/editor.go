package mapping

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Editor Errors
// ---------------------------------------------------------------------------

var (
	ErrEditorBusy       = errors.New("mapping: another entry is already being edited")
	ErrEditorIdle       = errors.New("mapping: no entry is being edited")
	ErrEditorIndex      = errors.New("mapping: entry index out of range")
	ErrEditorConfidence = errors.New("mapping: draft confidence must be between 0 and 1")
)

// ---------------------------------------------------------------------------
// EditorState
// ---------------------------------------------------------------------------

// EditorState is the editor's state machine state: idle, or editing exactly
// one entry.
type EditorState string

const (
	// EditorStateIdle means no draft is open
	EditorStateIdle EditorState = "idle"
	// EditorStateEditing means exactly one entry has an open draft
	EditorStateEditing EditorState = "editing"
)

// ---------------------------------------------------------------------------
// Editor
// ---------------------------------------------------------------------------

// Editor performs in-memory CRUD over one mapping set. At most one entry may
// be in edit mode at a time; starting a new edit while another is active is
// rejected. All mutations are in-memory and idempotent with respect to the
// set until the caller explicitly persists it.
type Editor struct {
	set       *MappingSet
	source    SourceFieldSchema
	canonical CanonicalFieldSchema

	editIndex     int
	draft         FieldMapping
	confidenceSet bool
	appended      bool
}

// NewEditor creates an editor over the given set and the schemas loaded for
// its (system, entity) pair. The editor owns the set for the duration of the
// editing session.
func NewEditor(set *MappingSet, source SourceFieldSchema, canonical CanonicalFieldSchema) *Editor {
	return &Editor{
		set:       set,
		source:    source,
		canonical: canonical,
		editIndex: -1,
	}
}

// State returns the current state of the editor's state machine.
func (e *Editor) State() EditorState {
	if e.editIndex >= 0 {
		return EditorStateEditing
	}
	return EditorStateIdle
}

// EditIndex returns the index of the entry being edited, or -1 when idle.
func (e *Editor) EditIndex() int {
	return e.editIndex
}

// Set returns the underlying mapping set.
func (e *Editor) Set() *MappingSet {
	return e.set
}

// Entries returns a copy of the current entries.
func (e *Editor) Entries() []FieldMapping {
	entries := make([]FieldMapping, len(e.set.Entries))
	copy(entries, e.set.Entries)
	return entries
}

// Draft returns a copy of the open draft, if any.
func (e *Editor) Draft() (FieldMapping, bool) {
	if e.editIndex < 0 {
		return FieldMapping{}, false
	}
	return e.draft, true
}

// AddDraftEntry appends a new empty entry and opens it for editing. The new
// entry starts with no fields selected, transform none, confidence 0.5 and
// provenance manual. Returns the index of the new entry.
func (e *Editor) AddDraftEntry() (int, error) {
	if e.editIndex >= 0 {
		return -1, ErrEditorBusy
	}

	entry := FieldMapping{
		Transform:  TransformNone,
		Confidence: 0.5,
		Provenance: ProvenanceManual,
	}
	e.set.Entries = append(e.set.Entries, entry)
	e.editIndex = len(e.set.Entries) - 1
	e.draft = entry
	e.confidenceSet = false
	e.appended = true
	return e.editIndex, nil
}

// BeginEdit copies the entry at index into a transient draft. Rejected while
// another edit is active; the caller must commit or cancel first.
func (e *Editor) BeginEdit(index int) error {
	if e.editIndex >= 0 {
		return ErrEditorBusy
	}
	if index < 0 || index >= len(e.set.Entries) {
		return fmt.Errorf("%w: %d", ErrEditorIndex, index)
	}

	e.editIndex = index
	e.draft = e.set.Entries[index]
	e.confidenceSet = false
	e.appended = false
	return nil
}

// SetDraftSourceField updates the draft's source field.
func (e *Editor) SetDraftSourceField(name string) error {
	if e.editIndex < 0 {
		return ErrEditorIdle
	}
	e.draft.SourceField = name
	return nil
}

// SetDraftTargetField updates the draft's target field.
func (e *Editor) SetDraftTargetField(name string) error {
	if e.editIndex < 0 {
		return ErrEditorIdle
	}
	e.draft.TargetField = name
	return nil
}

// SetDraftTransform updates the draft's transform. The transform must be
// part of the catalog.
func (e *Editor) SetDraftTransform(t Transform) error {
	if e.editIndex < 0 {
		return ErrEditorIdle
	}
	if !t.IsValid() {
		return fmt.Errorf("%w: %q", ErrEntryInvalidTransform, t)
	}
	e.draft.Transform = t
	return nil
}

// SetDraftConfidence explicitly overrides the draft's confidence. Without an
// explicit override, commit defaults the confidence to 1.0.
func (e *Editor) SetDraftConfidence(confidence float64) error {
	if e.editIndex < 0 {
		return ErrEditorIdle
	}
	if confidence < 0 || confidence > 1 {
		return fmt.Errorf("%w: %v", ErrEditorConfidence, confidence)
	}
	e.draft.Confidence = confidence
	e.confidenceSet = true
	return nil
}

// CommitEdit validates the draft against the loaded schemas and, on success,
// writes it into the set as a manual entry and returns the editor to idle.
// On validation failure the draft is not committed and the state remains
// editing so the operator can correct and retry.
func (e *Editor) CommitEdit() error {
	if e.editIndex < 0 {
		return ErrEditorIdle
	}

	entry := e.draft
	entry.Provenance = ProvenanceManual
	if !e.confidenceSet {
		entry.Confidence = 1.0
	}

	if err := entry.Validate(e.source, e.canonical); err != nil {
		return err
	}

	e.set.Entries[e.editIndex] = entry
	e.reset()
	return nil
}

// CancelEdit discards the draft and returns to idle. An entry created by
// AddDraftEntry is removed again, leaving the underlying set as it was
// before the draft was opened.
func (e *Editor) CancelEdit() error {
	if e.editIndex < 0 {
		return ErrEditorIdle
	}

	if e.appended {
		e.set.Entries = append(e.set.Entries[:e.editIndex], e.set.Entries[e.editIndex+1:]...)
	}
	e.reset()
	return nil
}

// RemoveEntry deletes the entry at index unconditionally. Removing the entry
// currently being edited discards its draft; removing an earlier entry
// shifts the draft's index accordingly.
func (e *Editor) RemoveEntry(index int) error {
	if index < 0 || index >= len(e.set.Entries) {
		return fmt.Errorf("%w: %d", ErrEditorIndex, index)
	}

	e.set.Entries = append(e.set.Entries[:index], e.set.Entries[index+1:]...)

	if e.editIndex >= 0 {
		switch {
		case index == e.editIndex:
			e.reset()
		case index < e.editIndex:
			e.editIndex--
		}
	}
	return nil
}

// ReplaceAll atomically overwrites the entire in-memory set. Any open draft
// is discarded. Used by bulk operations such as auto-map and the default
// fallback.
func (e *Editor) ReplaceAll(entries []FieldMapping) {
	replacement := make([]FieldMapping, len(entries))
	copy(replacement, entries)
	e.set.Entries = replacement
	e.reset()
}

// Lint flags likely-invalid entries (unknown fields, transform/type
// pairings that cannot succeed) without blocking anything.
func (e *Editor) Lint() []LintWarning {
	return LintMappings(e.set.Entries, e.source, e.canonical)
}

func (e *Editor) reset() {
	e.editIndex = -1
	e.draft = FieldMapping{}
	e.confidenceSet = false
	e.appended = false
}
