package mapping

import (
	"context"

	"go.uber.org/zap"
)

// SchemaRegistry supplies, per (source system, entity type), the source field
// schema and the canonical schema. It tries the live providers first and
// falls back to the static default schemas on any provider failure, so
// callers are never blocked by provider unavailability. Unknown pairs yield
// an empty schema, never an error.
//
// The registry holds no cache: every call re-fetches and the caller decides
// when to re-call. A caching provider may be layered in front (see
// infrastructure/cache).
type SchemaRegistry struct {
	source    SourceSchemaProvider
	canonical CanonicalSchemaProvider
	logger    *zap.Logger
}

// NewSchemaRegistry creates a registry over the given providers. Either
// provider may be nil, which behaves like a provider that always fails.
func NewSchemaRegistry(source SourceSchemaProvider, canonical CanonicalSchemaProvider, logger *zap.Logger) *SchemaRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchemaRegistry{
		source:    source,
		canonical: canonical,
		logger:    logger,
	}
}

// SourceSchema returns the source field schema for (system, entity).
// It never fails: provider errors fall back to the baked-in default schema,
// and unknown pairs produce an empty schema.
func (r *SchemaRegistry) SourceSchema(ctx context.Context, system SystemCode, entity EntityType) SourceFieldSchema {
	if r.source != nil {
		schema, err := r.source.FetchSourceSchema(ctx, system, entity)
		if err == nil {
			return schema
		}
		r.logger.Warn("source schema provider failed, using default schema",
			zap.String("system", system.String()),
			zap.String("entity", entity.String()),
			zap.Error(err),
		)
	}

	if schema, ok := DefaultSourceSchema(system, entity); ok {
		return schema
	}
	return SourceFieldSchema{System: system, Entity: entity, Fields: []SourceField{}}
}

// CanonicalSchema returns the canonical schema for the entity type. Same
// fallback contract as SourceSchema.
func (r *SchemaRegistry) CanonicalSchema(ctx context.Context, entity EntityType, system SystemCode) CanonicalFieldSchema {
	if r.canonical != nil {
		schema, err := r.canonical.FetchCanonicalSchema(ctx, entity, system)
		if err == nil {
			return schema
		}
		r.logger.Warn("canonical schema provider failed, using default schema",
			zap.String("entity", entity.String()),
			zap.String("system", system.String()),
			zap.Error(err),
		)
	}

	if schema, ok := DefaultCanonicalSchema(entity); ok {
		return schema
	}
	return CanonicalFieldSchema{Entity: entity, Fields: []CanonicalField{}}
}
