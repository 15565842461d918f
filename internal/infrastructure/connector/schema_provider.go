package connector

import (
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

const (
	// maxResponseSize limits response bodies to prevent memory exhaustion
	maxResponseSize = 4 * 1024 * 1024 // 4MB
)

var (
	// ErrGatewayNotConfigured is returned when no gateway endpoint is set
	ErrGatewayNotConfigured = errors.New("connector: schema gateway endpoint not configured")
	// ErrGatewayStatus is returned on a non-200 gateway response
	ErrGatewayStatus = errors.New("connector: schema gateway returned unexpected status")
)

// HTTPSchemaProvider fetches live field schemas from the connector schema
// gateway that fronts the connected source systems. It implements both the
// source and the canonical schema provider interfaces; failures surface as
// errors and the registry decides what to fall back to.
type HTTPSchemaProvider struct {
	endpoint   string
	httpClient *http.Client
}

// Interface compliance checks
var (
	_ mapping.SourceSchemaProvider    = (*HTTPSchemaProvider)(nil)
	_ mapping.CanonicalSchemaProvider = (*HTTPSchemaProvider)(nil)
)

// NewHTTPSchemaProvider creates a provider against the configured gateway.
func NewHTTPSchemaProvider(cfg *config.ConnectorConfig) *HTTPSchemaProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSchemaProvider{
		endpoint:   strings.TrimRight(cfg.SchemaGatewayEndpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchSourceSchema retrieves the live source schema for (system, entity).
func (p *HTTPSchemaProvider) FetchSourceSchema(ctx context.Context, system mapping.SystemCode, entity mapping.EntityType) (mapping.SourceFieldSchema, error) {
	var schema mapping.SourceFieldSchema
	url := fmt.Sprintf("%s/schemas/%s/%s", p.endpoint, system, entity)
	if err := p.getJSON(ctx, url, &schema); err != nil {
		return mapping.SourceFieldSchema{}, err
	}
	schema.System = system
	schema.Entity = entity
	return schema, nil
}

// FetchCanonicalSchema retrieves the canonical schema for the entity type.
func (p *HTTPSchemaProvider) FetchCanonicalSchema(ctx context.Context, entity mapping.EntityType, system mapping.SystemCode) (mapping.CanonicalFieldSchema, error) {
	var schema mapping.CanonicalFieldSchema
	url := fmt.Sprintf("%s/canonical-schemas/%s?system=%s", p.endpoint, entity, system)
	if err := p.getJSON(ctx, url, &schema); err != nil {
		return mapping.CanonicalFieldSchema{}, err
	}
	schema.Entity = entity
	return schema, nil
}

func (p *HTTPSchemaProvider) getJSON(ctx context.Context, url string, out any) error {
	if p.endpoint == "" {
		return ErrGatewayNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrGatewayStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
