package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/salesiq/backend/internal/domain/mapping"
	"github.com/salesiq/backend/internal/infrastructure/config"
)

var (
	// ErrSuggestionNotConfigured is returned when no suggestion endpoint is set
	ErrSuggestionNotConfigured = errors.New("connector: suggestion endpoint not configured")
	// ErrSuggestionStatus is returned on a non-200 suggestion response
	ErrSuggestionStatus = errors.New("connector: suggestion service returned unexpected status")
)

// SuggestionClient calls the AI-backed mapping suggestion service. The
// service is treated as an opaque function over the two schemas; any failure
// is reported as an error and the orchestrator decides the fallback.
type SuggestionClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// Interface compliance check
var _ mapping.SuggestionProvider = (*SuggestionClient)(nil)

// suggestRequest is the wire shape of a suggestion call.
type suggestRequest struct {
	System          mapping.SystemCode       `json:"system"`
	Entity          mapping.EntityType       `json:"entity"`
	SourceFields    []mapping.SourceField    `json:"source_fields"`
	CanonicalFields []mapping.CanonicalField `json:"canonical_fields"`
}

// suggestResponse is the wire shape of a suggestion result.
type suggestResponse struct {
	Mappings []mapping.FieldMapping `json:"mappings"`
}

// NewSuggestionClient creates a client against the configured service.
func NewSuggestionClient(cfg *config.SuggestionConfig) *SuggestionClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SuggestionClient{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Suggest asks the service for mapping candidates over the two schemas.
func (c *SuggestionClient) Suggest(ctx context.Context, system mapping.SystemCode, entity mapping.EntityType,
	source mapping.SourceFieldSchema, canonical mapping.CanonicalFieldSchema) ([]mapping.FieldMapping, error) {
	if c.endpoint == "" {
		return nil, ErrSuggestionNotConfigured
	}

	payload, err := json.Marshal(suggestRequest{
		System:          system,
		Entity:          entity,
		SourceFields:    source.Fields,
		CanonicalFields: canonical.Fields,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/suggest", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrSuggestionStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}

	var result suggestResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return result.Mappings, nil
}
