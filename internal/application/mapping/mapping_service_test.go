package mapping

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/salesiq/backend/internal/domain/mapping"
	"github.com/salesiq/backend/internal/domain/shared"
)

// MockMappingSetRepository is a mock implementation of MappingSetRepository
type MockMappingSetRepository struct {
	mock.Mock
}

func (m *MockMappingSetRepository) Load(ctx context.Context, system mapping.SystemCode, entity mapping.EntityType) (*mapping.MappingSet, error) {
	args := m.Called(ctx, system, entity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mapping.MappingSet), args.Error(1)
}

func (m *MockMappingSetRepository) Save(ctx context.Context, set *mapping.MappingSet) error {
	args := m.Called(ctx, set)
	return args.Error(0)
}

// MockSuggestionProvider is a mock implementation of SuggestionProvider
type MockSuggestionProvider struct {
	mock.Mock
}

func (m *MockSuggestionProvider) Suggest(ctx context.Context, system mapping.SystemCode, entity mapping.EntityType,
	source mapping.SourceFieldSchema, canonical mapping.CanonicalFieldSchema) ([]mapping.FieldMapping, error) {
	args := m.Called(ctx, system, entity, source, canonical)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mapping.FieldMapping), args.Error(1)
}

// fallbackRegistry returns a registry with no live providers, so every schema
// resolves from the baked-in defaults.
func fallbackRegistry() *mapping.SchemaRegistry {
	return mapping.NewSchemaRegistry(nil, nil, nil)
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	return domainErr.Code
}

// ---------------------------------------------------------------------------
// Pair resolution tests
// ---------------------------------------------------------------------------

func TestResolvePair(t *testing.T) {
	t.Run("Valid pair resolves", func(t *testing.T) {
		sys, ent, err := ResolvePair("DYNAMICS", "account")
		require.NoError(t, err)
		assert.Equal(t, mapping.SystemCodeDynamics, sys)
		assert.Equal(t, mapping.EntityTypeAccount, ent)
	})

	t.Run("Unknown system", func(t *testing.T) {
		_, _, err := ResolvePair("SALESFORCE", "account")
		assert.Equal(t, "UNKNOWN_SYSTEM", domainCode(t, err))
	})

	t.Run("Unknown entity", func(t *testing.T) {
		_, _, err := ResolvePair("DYNAMICS", "invoice")
		assert.Equal(t, "UNKNOWN_ENTITY", domainCode(t, err))
	})

	t.Run("Pair outside the support matrix", func(t *testing.T) {
		_, _, err := ResolvePair("GWORKSPACE", "opportunity")
		assert.Equal(t, "UNSUPPORTED_PAIR", domainCode(t, err))
	})
}

// ---------------------------------------------------------------------------
// Catalog tests
// ---------------------------------------------------------------------------

func TestMappingService_ListSystems(t *testing.T) {
	service := NewMappingService(new(MockMappingSetRepository), fallbackRegistry(), nil)

	systems := service.ListSystems()
	require.Len(t, systems, 3)

	byCode := make(map[mapping.SystemCode]SystemResponse)
	for _, sys := range systems {
		byCode[sys.Code] = sys
	}
	assert.Len(t, byCode[mapping.SystemCodeDynamics].Entities, 3)
	assert.Len(t, byCode[mapping.SystemCodeGWorkspace].Entities, 1)
	assert.NotEmpty(t, byCode[mapping.SystemCodePipedrive].DisplayName)
}

func TestMappingService_ListTransforms(t *testing.T) {
	service := NewMappingService(new(MockMappingSetRepository), fallbackRegistry(), nil)

	transforms := service.ListTransforms()
	require.Len(t, transforms, 8)
	for _, tr := range transforms {
		assert.True(t, tr.Name.IsValid())
		assert.NotEmpty(t, tr.Description)
	}
}

// ---------------------------------------------------------------------------
// Mapping set operation tests
// ---------------------------------------------------------------------------

func TestMappingService_GetMappingSet(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the persisted set with buckets and warnings", func(t *testing.T) {
		repo := new(MockMappingSetRepository)
		set := mapping.NewMappingSet(mapping.SystemCodeDynamics, mapping.EntityTypeAccount)
		set.Entries = []mapping.FieldMapping{
			{SourceField: "name", TargetField: "name", Transform: mapping.TransformNone, Confidence: 0.95, Provenance: mapping.ProvenanceManual},
			{SourceField: "name", TargetField: "name", Transform: mapping.TransformExtractID, Confidence: 0.4, Provenance: mapping.ProvenanceManual},
		}
		repo.On("Load", ctx, mapping.SystemCodeDynamics, mapping.EntityTypeAccount).Return(set, nil)

		service := NewMappingService(repo, fallbackRegistry(), nil)
		resp, err := service.GetMappingSet(ctx, "DYNAMICS", "account")
		require.NoError(t, err)

		require.Len(t, resp.Entries, 2)
		assert.Equal(t, mapping.ConfidenceHigh, resp.Entries[0].Bucket)
		assert.Equal(t, mapping.ConfidenceLow, resp.Entries[1].Bucket)

		require.Len(t, resp.Warnings, 1, "extract_id over a text field must be flagged")
		assert.Equal(t, 1, resp.Warnings[0].Index)
		repo.AssertExpectations(t)
	})

	t.Run("Invalid pair never reaches the repository", func(t *testing.T) {
		repo := new(MockMappingSetRepository)
		service := NewMappingService(repo, fallbackRegistry(), nil)

		_, err := service.GetMappingSet(ctx, "GWORKSPACE", "account")
		assert.Equal(t, "UNSUPPORTED_PAIR", domainCode(t, err))
		repo.AssertNotCalled(t, "Load", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Repository errors propagate", func(t *testing.T) {
		repo := new(MockMappingSetRepository)
		repo.On("Load", ctx, mapping.SystemCodePipedrive, mapping.EntityTypeContact).
			Return(nil, errors.New("connection refused"))

		service := NewMappingService(repo, fallbackRegistry(), nil)
		_, err := service.GetMappingSet(ctx, "PIPEDRIVE", "contact")
		assert.Error(t, err)
	})
}

func TestMappingService_SaveMappingSet(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid entries are persisted wholesale", func(t *testing.T) {
		repo := new(MockMappingSetRepository)
		repo.On("Save", ctx, mock.MatchedBy(func(set *mapping.MappingSet) bool {
			return set.System == mapping.SystemCodeDynamics &&
				set.Entity == mapping.EntityTypeAccount &&
				set.Len() == 1
		})).Return(nil)

		service := NewMappingService(repo, fallbackRegistry(), nil)
		resp, err := service.SaveMappingSet(ctx, "DYNAMICS", "account", SaveMappingSetRequest{
			Entries: []EntryRequest{
				{SourceField: "revenue", TargetField: "annual_revenue", Transform: "to_float", Confidence: 1, Provenance: "manual"},
			},
		})
		require.NoError(t, err)
		assert.Len(t, resp.Entries, 1)
		repo.AssertExpectations(t)
	})

	t.Run("Invalid entry rejects the whole save", func(t *testing.T) {
		repo := new(MockMappingSetRepository)
		service := NewMappingService(repo, fallbackRegistry(), nil)

		_, err := service.SaveMappingSet(ctx, "DYNAMICS", "account", SaveMappingSetRequest{
			Entries: []EntryRequest{
				{SourceField: "revenue", TargetField: "annual_revenue", Transform: "to_float", Confidence: 1, Provenance: "manual"},
				{SourceField: "ghost", TargetField: "annual_revenue", Transform: "to_float", Confidence: 1, Provenance: "manual"},
			},
		})
		assert.Equal(t, "INVALID_ENTRY", domainCode(t, err))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Empty entry list clears the persisted set", func(t *testing.T) {
		repo := new(MockMappingSetRepository)
		repo.On("Save", ctx, mock.MatchedBy(func(set *mapping.MappingSet) bool {
			return set.Len() == 0
		})).Return(nil)

		service := NewMappingService(repo, fallbackRegistry(), nil)
		resp, err := service.SaveMappingSet(ctx, "DYNAMICS", "account", SaveMappingSetRequest{Entries: []EntryRequest{}})
		require.NoError(t, err)
		assert.Empty(t, resp.Entries)
	})
}

func TestMappingService_LintMappingSet(t *testing.T) {
	ctx := context.Background()
	repo := new(MockMappingSetRepository)
	set := mapping.NewMappingSet(mapping.SystemCodeGWorkspace, mapping.EntityTypeContact)
	set.Entries = []mapping.FieldMapping{
		{SourceField: "phones", TargetField: "phone", Transform: mapping.TransformDateParse, Confidence: 0.5, Provenance: mapping.ProvenanceManual},
	}
	repo.On("Load", ctx, mapping.SystemCodeGWorkspace, mapping.EntityTypeContact).Return(set, nil)

	service := NewMappingService(repo, fallbackRegistry(), nil)
	warnings, err := service.LintMappingSet(ctx, "GWORKSPACE", "contact")
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, mapping.LintIncompatibleTransform, warnings[0].Code)
}

func TestMappingService_GetSourceSchema(t *testing.T) {
	ctx := context.Background()
	service := NewMappingService(new(MockMappingSetRepository), fallbackRegistry(), nil)

	resp, err := service.GetSourceSchema(ctx, "PIPEDRIVE", "opportunity")
	require.NoError(t, err)
	assert.Equal(t, mapping.SystemCodePipedrive, resp.System)
	assert.NotEmpty(t, resp.Fields)

	_, err = service.GetSourceSchema(ctx, "PIPEDRIVE", "invoice")
	assert.Equal(t, "UNKNOWN_ENTITY", domainCode(t, err))
}

func TestMappingService_GetCanonicalSchema(t *testing.T) {
	ctx := context.Background()
	service := NewMappingService(new(MockMappingSetRepository), fallbackRegistry(), nil)

	resp, err := service.GetCanonicalSchema(ctx, "contact", "GWORKSPACE")
	require.NoError(t, err)
	assert.Equal(t, mapping.EntityTypeContact, resp.Entity)
	assert.NotEmpty(t, resp.Fields)
}
