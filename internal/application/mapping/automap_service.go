package mapping

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/salesiq/backend/internal/domain/mapping"
	"github.com/salesiq/backend/internal/infrastructure/telemetry"
)

// DefaultSuggestionTimeout bounds the suggestion call when no timeout is
// configured.
const DefaultSuggestionTimeout = 15 * time.Second

// AutoMapServiceImpl orchestrates bulk population of a mapping set: ask the
// suggestion capability first, fall back to the static default table when it
// fails, and leave the set untouched when neither produces anything.
type AutoMapServiceImpl struct {
	repo        mapping.MappingSetRepository
	registry    *mapping.SchemaRegistry
	suggestions mapping.SuggestionProvider
	timeout     time.Duration
	logger      *zap.Logger
}

// NewAutoMapService creates a new AutoMapServiceImpl. The suggestion provider
// may be nil, which behaves like a provider that always fails.
func NewAutoMapService(
	repo mapping.MappingSetRepository,
	registry *mapping.SchemaRegistry,
	suggestions mapping.SuggestionProvider,
	timeout time.Duration,
	logger *zap.Logger,
) *AutoMapServiceImpl {
	if timeout <= 0 {
		timeout = DefaultSuggestionTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoMapServiceImpl{
		repo:        repo,
		registry:    registry,
		suggestions: suggestions,
		timeout:     timeout,
		logger:      logger,
	}
}

// AutoMap runs the orchestration for the pair and persists the outcome.
// Suggestions wholesale-replace the set with provenance ai_suggested; on
// capability failure the default table is applied with provenance default; a
// missing default table leaves the persisted set unchanged.
func (s *AutoMapServiceImpl) AutoMap(ctx context.Context, system, entity string) (*AutoMapResult, error) {
	sys, ent, err := ResolvePair(system, entity)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "mapping", "automap",
		telemetry.WithAttribute(telemetry.SpanAttrSystemCode, sys.String()),
		telemetry.WithAttribute(telemetry.SpanAttrEntityType, ent.String()),
	)
	defer span.End()

	source := s.registry.SourceSchema(ctx, sys, ent)
	canonical := s.registry.CanonicalSchema(ctx, ent, sys)

	entries, outcome := s.resolveEntries(ctx, sys, ent, source, canonical)
	telemetry.SetAttribute(span, telemetry.SpanAttrOutcome, string(outcome))
	if outcome == AutoMapOutcomeNone {
		current, err := s.repo.Load(ctx, sys, ent)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		return &AutoMapResult{
			System:  sys,
			Entity:  ent,
			Outcome: AutoMapOutcomeNone,
			Entries: NewEntryResponses(current.Entries),
			Count:   0,
		}, nil
	}

	set := mapping.NewMappingSet(sys, ent)
	set.Entries = entries
	if err := s.repo.Save(ctx, set); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrEntryCount, len(entries))

	s.logger.Info("auto-map applied",
		zap.String("system", sys.String()),
		zap.String("entity", ent.String()),
		zap.String("outcome", string(outcome)),
		zap.Int("entries", len(entries)),
	)
	return &AutoMapResult{
		System:  sys,
		Entity:  ent,
		Outcome: outcome,
		Entries: NewEntryResponses(entries),
		Count:   len(entries),
	}, nil
}

// resolveEntries decides which bulk source populates the set.
func (s *AutoMapServiceImpl) resolveEntries(
	ctx context.Context,
	sys mapping.SystemCode,
	ent mapping.EntityType,
	source mapping.SourceFieldSchema,
	canonical mapping.CanonicalFieldSchema,
) ([]mapping.FieldMapping, AutoMapOutcome) {
	if s.suggestions != nil {
		suggestCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		candidates, err := s.suggestions.Suggest(suggestCtx, sys, ent, source, canonical)
		if err == nil {
			if len(candidates) == 0 {
				// The capability answered "no suggestions"; that is a
				// definitive no-op, not a failure to fall back from.
				return nil, AutoMapOutcomeNone
			}
			entries := s.normalize(candidates, source, canonical)
			if len(entries) == 0 {
				// Every candidate was invalid; do not wipe the set.
				return nil, AutoMapOutcomeNone
			}
			return entries, AutoMapOutcomeAISuggested
		}
		s.logger.Warn("suggestion capability failed, falling back to default table",
			zap.String("system", sys.String()),
			zap.String("entity", ent.String()),
			zap.Error(err),
		)
	}

	table, ok := mapping.DefaultMappingTable(sys, ent)
	if !ok || len(table) == 0 {
		return nil, AutoMapOutcomeNone
	}
	return table, AutoMapOutcomeDefault
}

// normalize forces suggestion candidates into well-formed entries: provenance
// ai_suggested, confidence clamped to [0, 1], and entries that cannot
// validate against the loaded schemas dropped with a warning.
func (s *AutoMapServiceImpl) normalize(
	candidates []mapping.FieldMapping,
	source mapping.SourceFieldSchema,
	canonical mapping.CanonicalFieldSchema,
) []mapping.FieldMapping {
	entries := make([]mapping.FieldMapping, 0, len(candidates))
	for i, candidate := range candidates {
		candidate.Provenance = mapping.ProvenanceAISuggested
		if candidate.Confidence < 0 {
			candidate.Confidence = 0
		}
		if candidate.Confidence > 1 {
			candidate.Confidence = 1
		}
		if err := candidate.Validate(source, canonical); err != nil {
			s.logger.Warn("dropping invalid suggestion candidate",
				zap.Int("index", i),
				zap.String("source_field", candidate.SourceField),
				zap.String("target_field", candidate.TargetField),
				zap.Error(err),
			)
			continue
		}
		entries = append(entries, candidate)
	}
	return entries
}
