package mapping

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/salesiq/backend/internal/domain/mapping"
	"github.com/salesiq/backend/internal/domain/shared"
	"github.com/salesiq/backend/internal/infrastructure/telemetry"
)

// MappingServiceImpl exposes the mapping configuration use cases: catalog
// lookups, schema retrieval, and load/save/lint of per-pair mapping sets.
type MappingServiceImpl struct {
	repo     mapping.MappingSetRepository
	registry *mapping.SchemaRegistry
	logger   *zap.Logger
}

// NewMappingService creates a new MappingServiceImpl
func NewMappingService(repo mapping.MappingSetRepository, registry *mapping.SchemaRegistry, logger *zap.Logger) *MappingServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MappingServiceImpl{
		repo:     repo,
		registry: registry,
		logger:   logger,
	}
}

// ---------------------------------------------------------------------------
// Pair resolution
// ---------------------------------------------------------------------------

// ResolvePair validates raw system/entity identifiers against the supported
// matrix.
func ResolvePair(system, entity string) (mapping.SystemCode, mapping.EntityType, error) {
	sys := mapping.SystemCode(system)
	if !sys.IsValid() {
		return "", "", shared.NewDomainError("UNKNOWN_SYSTEM",
			fmt.Sprintf("System %q is not a supported source system", system))
	}
	ent := mapping.EntityType(entity)
	if !ent.IsValid() {
		return "", "", shared.NewDomainError("UNKNOWN_ENTITY",
			fmt.Sprintf("Entity type %q is not supported", entity))
	}
	if !mapping.Supports(sys, ent) {
		return "", "", shared.NewDomainError("UNSUPPORTED_PAIR",
			fmt.Sprintf("System %s does not support the %s entity", sys, ent))
	}
	return sys, ent, nil
}

// ---------------------------------------------------------------------------
// Catalogs
// ---------------------------------------------------------------------------

// ListSystems returns the supported systems and their entity types.
func (s *MappingServiceImpl) ListSystems() []SystemResponse {
	systems := mapping.AllSystems()
	out := make([]SystemResponse, len(systems))
	for i, sys := range systems {
		out[i] = SystemResponse{
			Code:        sys,
			DisplayName: sys.DisplayName(),
			Entities:    mapping.SupportedEntities(sys),
		}
	}
	return out
}

// ListTransforms returns the transform catalog.
func (s *MappingServiceImpl) ListTransforms() []TransformResponse {
	transforms := mapping.AllTransforms()
	out := make([]TransformResponse, len(transforms))
	for i, t := range transforms {
		out[i] = TransformResponse{Name: t, Description: t.Description()}
	}
	return out
}

// ---------------------------------------------------------------------------
// Schemas
// ---------------------------------------------------------------------------

// GetSourceSchema returns the source field schema for the pair.
func (s *MappingServiceImpl) GetSourceSchema(ctx context.Context, system, entity string) (*SourceSchemaResponse, error) {
	sys, ent, err := ResolvePair(system, entity)
	if err != nil {
		return nil, err
	}
	schema := s.registry.SourceSchema(ctx, sys, ent)
	return &SourceSchemaResponse{System: sys, Entity: ent, Fields: schema.Fields}, nil
}

// GetCanonicalSchema returns the canonical schema for the entity, scoped to
// the system it will be mapped from.
func (s *MappingServiceImpl) GetCanonicalSchema(ctx context.Context, entity, system string) (*CanonicalSchemaResponse, error) {
	sys, ent, err := ResolvePair(system, entity)
	if err != nil {
		return nil, err
	}
	schema := s.registry.CanonicalSchema(ctx, ent, sys)
	return &CanonicalSchemaResponse{Entity: ent, Fields: schema.Fields}, nil
}

// ---------------------------------------------------------------------------
// Mapping set operations
// ---------------------------------------------------------------------------

// GetMappingSet loads the persisted set for the pair. A pair that has never
// been saved yields an empty set.
func (s *MappingServiceImpl) GetMappingSet(ctx context.Context, system, entity string) (*MappingSetResponse, error) {
	sys, ent, err := ResolvePair(system, entity)
	if err != nil {
		return nil, err
	}

	set, err := s.repo.Load(ctx, sys, ent)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, set), nil
}

// SaveMappingSet wholesale-replaces the persisted set for the pair. Every
// entry must validate against the currently loaded schemas; last write wins.
func (s *MappingServiceImpl) SaveMappingSet(ctx context.Context, system, entity string, req SaveMappingSetRequest) (*MappingSetResponse, error) {
	sys, ent, err := ResolvePair(system, entity)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "mapping", "save",
		telemetry.WithAttribute(telemetry.SpanAttrSystemCode, sys.String()),
		telemetry.WithAttribute(telemetry.SpanAttrEntityType, ent.String()),
	)
	defer span.End()

	source := s.registry.SourceSchema(ctx, sys, ent)
	canonical := s.registry.CanonicalSchema(ctx, ent, sys)

	set := mapping.NewMappingSet(sys, ent)
	for i, entryReq := range req.Entries {
		entry := entryReq.ToDomain()
		if err := entry.Validate(source, canonical); err != nil {
			domainErr := shared.NewDomainError("INVALID_ENTRY",
				fmt.Sprintf("Entry %d is invalid: %v", i, err))
			telemetry.RecordError(span, domainErr)
			return nil, domainErr
		}
		set.Entries = append(set.Entries, entry)
	}

	if err := s.repo.Save(ctx, set); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrEntryCount, set.Len())

	s.logger.Info("mapping set saved",
		zap.String("system", sys.String()),
		zap.String("entity", ent.String()),
		zap.Int("entries", set.Len()),
	)
	return s.toResponse(ctx, set), nil
}

// LintMappingSet checks the persisted set against the loaded schemas and the
// transform catalog. Warnings never block anything.
func (s *MappingServiceImpl) LintMappingSet(ctx context.Context, system, entity string) ([]mapping.LintWarning, error) {
	sys, ent, err := ResolvePair(system, entity)
	if err != nil {
		return nil, err
	}

	set, err := s.repo.Load(ctx, sys, ent)
	if err != nil {
		return nil, err
	}

	source := s.registry.SourceSchema(ctx, sys, ent)
	canonical := s.registry.CanonicalSchema(ctx, ent, sys)
	warnings := mapping.LintMappings(set.Entries, source, canonical)
	if warnings == nil {
		warnings = []mapping.LintWarning{}
	}
	return warnings, nil
}

func (s *MappingServiceImpl) toResponse(ctx context.Context, set *mapping.MappingSet) *MappingSetResponse {
	source := s.registry.SourceSchema(ctx, set.System, set.Entity)
	canonical := s.registry.CanonicalSchema(ctx, set.Entity, set.System)

	warnings := mapping.LintMappings(set.Entries, source, canonical)
	if warnings == nil {
		warnings = []mapping.LintWarning{}
	}
	return &MappingSetResponse{
		System:   set.System,
		Entity:   set.Entity,
		Entries:  NewEntryResponses(set.Entries),
		Warnings: warnings,
	}
}
