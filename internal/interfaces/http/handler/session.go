package handler

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appmapping "github.com/salesiq/backend/internal/application/mapping"
	"github.com/salesiq/backend/internal/interfaces/http/middleware"
)

// SessionHandler serves the interactive editing sessions: one open session
// per (system, entity) pair, with a single draft entry at a time.
type SessionHandler struct {
	BaseHandler
	sessions *appmapping.SessionManager
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessions *appmapping.SessionManager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// RegisterRoutes registers editing session routes
func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/sessions")
	{
		sessions.POST("", h.Open)
		sessions.GET("/:id", h.Get)
		sessions.DELETE("/:id", h.Close)
		sessions.POST("/:id/entries", h.AddEntry)
		sessions.PUT("/:id/entries", h.ReplaceAll)
		sessions.DELETE("/:id/entries/:index", h.RemoveEntry)
		sessions.POST("/:id/entries/:index/edit", h.BeginEdit)
		sessions.PATCH("/:id/draft", h.UpdateDraft)
		sessions.POST("/:id/commit", h.Commit)
		sessions.POST("/:id/cancel", h.Cancel)
		sessions.POST("/:id/save", h.Save)
	}
}

// sessionID parses the :id path parameter
func (h *SessionHandler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}

// entryIndex parses the :index path parameter
func (h *SessionHandler) entryIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.BadRequest(c, "Invalid entry index")
		return 0, false
	}
	return index, true
}

// bindPatch binds an optional DraftPatch body. An empty body is a valid
// no-change patch.
func (h *SessionHandler) bindPatch(c *gin.Context) (appmapping.DraftPatch, bool) {
	var patch appmapping.DraftPatch
	if err := c.ShouldBindJSON(&patch); err != nil && !errors.Is(err, io.EOF) {
		middleware.HandleValidationError(c, err)
		return appmapping.DraftPatch{}, false
	}
	return patch, true
}

// Open starts an editing session over one (system, entity) pair
func (h *SessionHandler) Open(c *gin.Context) {
	var req appmapping.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	session, err := h.sessions.Open(c.Request.Context(), req.System, req.Entity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, session)
}

// Get returns the current session state
func (h *SessionHandler) Get(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	session, err := h.sessions.Get(id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// Close discards the session without saving
func (h *SessionHandler) Close(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	if err := h.sessions.Close(id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddEntry appends a fresh draft entry and opens it for editing. The
// optional body pre-fills the draft.
func (h *SessionHandler) AddEntry(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	patch, ok := h.bindPatch(c)
	if !ok {
		return
	}

	session, err := h.sessions.AddEntry(id, patch)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// BeginEdit opens an existing entry for editing. The optional body applies
// an initial change to the draft.
func (h *SessionHandler) BeginEdit(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	index, ok := h.entryIndex(c)
	if !ok {
		return
	}
	patch, ok := h.bindPatch(c)
	if !ok {
		return
	}

	session, err := h.sessions.BeginEdit(id, index, patch)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// UpdateDraft applies a partial change to the open draft
func (h *SessionHandler) UpdateDraft(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	patch, ok := h.bindPatch(c)
	if !ok {
		return
	}

	session, err := h.sessions.UpdateDraft(id, patch)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// Commit validates the draft and writes it into the working set
func (h *SessionHandler) Commit(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	patch, ok := h.bindPatch(c)
	if !ok {
		return
	}

	session, err := h.sessions.Commit(id, patch)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// Cancel discards the open draft
func (h *SessionHandler) Cancel(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	session, err := h.sessions.Cancel(id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// RemoveEntry deletes an entry from the working set
func (h *SessionHandler) RemoveEntry(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	index, ok := h.entryIndex(c)
	if !ok {
		return
	}

	session, err := h.sessions.RemoveEntry(id, index)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// ReplaceAll swaps the whole working set for the request body
func (h *SessionHandler) ReplaceAll(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	var entries []appmapping.EntryRequest
	if err := c.ShouldBindJSON(&entries); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	session, err := h.sessions.ReplaceAll(id, entries)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// Save persists the session's working set wholesale
func (h *SessionHandler) Save(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	session, err := h.sessions.Save(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}
