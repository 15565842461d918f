package connector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesiq/backend/internal/domain/mapping"
	"github.com/salesiq/backend/internal/infrastructure/config"
)

func newSchemaProvider(endpoint string) *HTTPSchemaProvider {
	return NewHTTPSchemaProvider(&config.ConnectorConfig{
		SchemaGatewayEndpoint: endpoint,
		Timeout:               2 * time.Second,
	})
}

func TestHTTPSchemaProvider_FetchSourceSchema(t *testing.T) {
	t.Run("fetches and decodes the schema", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/schemas/DYNAMICS/account", r.URL.Path)
			assert.Equal(t, http.MethodGet, r.Method)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"fields":[
				{"name":"name","label":"Account Name","type":"text"},
				{"name":"ownerid","label":"Owner","type":"reference"}
			]}`))
		}))
		defer server.Close()

		provider := newSchemaProvider(server.URL)
		schema, err := provider.FetchSourceSchema(context.Background(), mapping.SystemCodeDynamics, mapping.EntityTypeAccount)
		require.NoError(t, err)

		assert.Equal(t, mapping.SystemCodeDynamics, schema.System)
		assert.Equal(t, mapping.EntityTypeAccount, schema.Entity)
		require.Len(t, schema.Fields, 2)
		assert.Equal(t, mapping.FieldTypeReference, schema.Fields[1].Type)
	})

	t.Run("non-200 status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		provider := newSchemaProvider(server.URL)
		_, err := provider.FetchSourceSchema(context.Background(), mapping.SystemCodeDynamics, mapping.EntityTypeAccount)
		assert.ErrorIs(t, err, ErrGatewayStatus)
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>gateway error</html>"))
		}))
		defer server.Close()

		provider := newSchemaProvider(server.URL)
		_, err := provider.FetchSourceSchema(context.Background(), mapping.SystemCodeDynamics, mapping.EntityTypeAccount)
		assert.Error(t, err)
	})

	t.Run("missing endpoint is an error", func(t *testing.T) {
		provider := newSchemaProvider("")
		_, err := provider.FetchSourceSchema(context.Background(), mapping.SystemCodeDynamics, mapping.EntityTypeAccount)
		assert.ErrorIs(t, err, ErrGatewayNotConfigured)
	})

	t.Run("context cancellation aborts the call", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		provider := newSchemaProvider(server.URL)
		_, err := provider.FetchSourceSchema(ctx, mapping.SystemCodeDynamics, mapping.EntityTypeAccount)
		assert.Error(t, err)
	})
}

func TestHTTPSchemaProvider_FetchCanonicalSchema(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/canonical-schemas/contact", r.URL.Path)
		assert.Equal(t, "GWORKSPACE", r.URL.Query().Get("system"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"fields":[
			{"name":"full_name","type":"text","required":true},
			{"name":"email","type":"text","required":true}
		]}`))
	}))
	defer server.Close()

	provider := newSchemaProvider(server.URL)
	schema, err := provider.FetchCanonicalSchema(context.Background(), mapping.EntityTypeContact, mapping.SystemCodeGWorkspace)
	require.NoError(t, err)

	assert.Equal(t, mapping.EntityTypeContact, schema.Entity)
	require.Len(t, schema.Fields, 2)
	assert.True(t, schema.Fields[0].Required)
}
