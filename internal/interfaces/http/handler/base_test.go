package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appmapping "github.com/salesiq/backend/internal/application/mapping"
	"github.com/salesiq/backend/internal/domain/mapping"
	"github.com/salesiq/backend/internal/domain/shared"
	"github.com/salesiq/backend/internal/interfaces/http/dto"
	"github.com/salesiq/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// memoryRepo is an in-memory MappingSetRepository for handler tests.
type memoryRepo struct {
	mu      sync.Mutex
	sets    map[string]*mapping.MappingSet
	saveErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{sets: make(map[string]*mapping.MappingSet)}
}

func (r *memoryRepo) Load(_ context.Context, system mapping.SystemCode, entity mapping.EntityType) (*mapping.MappingSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.sets[string(system)+"/"+string(entity)]; ok {
		return set.Clone(), nil
	}
	return mapping.NewMappingSet(system, entity), nil
}

func (r *memoryRepo) Save(_ context.Context, set *mapping.MappingSet) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets[string(set.System)+"/"+string(set.Entity)] = set.Clone()
	return nil
}

// stubSuggestions is a canned SuggestionProvider.
type stubSuggestions struct {
	entries []mapping.FieldMapping
	err     error
}

func (s *stubSuggestions) Suggest(context.Context, mapping.SystemCode, mapping.EntityType, mapping.SourceFieldSchema, mapping.CanonicalFieldSchema) ([]mapping.FieldMapping, error) {
	return s.entries, s.err
}

// testEnv wires the full handler stack over in-memory infrastructure.
type testEnv struct {
	engine *gin.Engine
	repo   *memoryRepo
}

func newTestEnv(t *testing.T, suggestions mapping.SuggestionProvider) *testEnv {
	t.Helper()

	repo := newMemoryRepo()
	registry := mapping.NewSchemaRegistry(nil, nil, nil)
	service := appmapping.NewMappingService(repo, registry, nil)
	automap := appmapping.NewAutoMapService(repo, registry, suggestions, 0, nil)
	sessions := appmapping.NewSessionManager(repo, registry, nil)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1")
	NewCatalogHandler(service).RegisterRoutes(api)
	NewMappingHandler(service, automap).RegisterRoutes(api)
	NewSessionHandler(sessions).RegisterRoutes(api)

	return &testEnv{engine: engine, repo: repo}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var resp dto.Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

// dataMap coerces the response data into a map for field assertions.
func dataMap(t *testing.T, resp dto.Response) map[string]any {
	t.Helper()
	m, ok := resp.Data.(map[string]any)
	require.True(t, ok, "expected object response data, got %T", resp.Data)
	return m
}

func validEntryBody() map[string]any {
	return map[string]any{
		"source_field": "name",
		"target_field": "name",
		"transform":    "none",
		"confidence":   1.0,
		"provenance":   "manual",
	}
}

func TestBaseHandler_HandleError(t *testing.T) {
	h := &BaseHandler{}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"domain error", shared.NewDomainError("UNKNOWN_SYSTEM", "no such system"), http.StatusNotFound, "UNKNOWN_SYSTEM"},
		{"session active", appmapping.ErrSessionActive, http.StatusConflict, "SESSION_ACTIVE"},
		{"editor busy", mapping.ErrEditorBusy, http.StatusConflict, dto.ErrCodeConflict},
		{"editor idle", mapping.ErrEditorIdle, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"index out of range", mapping.ErrEditorIndex, http.StatusNotFound, dto.ErrCodeNotFound},
		{"invalid entry", mapping.ErrEntrySourceFieldEmpty, http.StatusUnprocessableEntity, dto.ErrCodeInvalidEntry},
		{"unknown error", assert.AnError, http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestBaseHandler_HandleError_NilIsNoop(t *testing.T) {
	h := &BaseHandler{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.HandleError(c, nil)

	assert.Empty(t, w.Body.String())
}
