package mapping

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/salesiq/backend/internal/domain/mapping"
)

func suggestedEntries() []mapping.FieldMapping {
	return []mapping.FieldMapping{
		{SourceField: "name", TargetField: "name", Transform: mapping.TransformNone, Confidence: 0.96},
		{SourceField: "revenue", TargetField: "annual_revenue", Transform: mapping.TransformToFloat, Confidence: 0.81},
	}
}

func TestAutoMapService_AutoMap(t *testing.T) {
	ctx := context.Background()

	t.Run("Suggestions replace the set with provenance ai_suggested", func(t *testing.T) {
		repo := new(MockMappingSetRepository)
		suggestions := new(MockSuggestionProvider)
		suggestions.On("Suggest", mock.Anything, mapping.SystemCodeDynamics, mapping.EntityTypeAccount, mock.Anything, mock.Anything).
			Return(suggestedEntries(), nil)
		repo.On("Save", ctx, mock.MatchedBy(func(set *mapping.MappingSet) bool {
			if set.Len() != 2 {
				return false
			}
			for _, entry := range set.Entries {
				if entry.Provenance != mapping.ProvenanceAISuggested {
					return false
				}
			}
			return true
		})).Return(nil)

		service := NewAutoMapService(repo, fallbackRegistry(), suggestions, time.Second, nil)
		result, err := service.AutoMap(ctx, "DYNAMICS", "account")
		require.NoError(t, err)

		assert.Equal(t, AutoMapOutcomeAISuggested, result.Outcome)
		assert.Equal(t, 2, result.Count)
		assert.Equal(t, mapping.ConfidenceHigh, result.Entries[0].Bucket)
		assert.Equal(t, mapping.ConfidenceMedium, result.Entries[1].Bucket)
		repo.AssertExpectations(t)
		suggestions.AssertExpectations(t)
	})

	t.Run("Invalid candidates are dropped, valid ones survive", func(t *testing.T) {
		repo := new(MockMappingSetRepository)
		suggestions := new(MockSuggestionProvider)
		candidates := append(suggestedEntries(), mapping.FieldMapping{
			SourceField: "hallucinated_field", TargetField: "name", Transform: mapping.TransformNone, Confidence: 0.9,
		})
		suggestions.On("Suggest", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(candidates, nil)
		repo.On("Save", ctx, mock.MatchedBy(func(set *mapping.MappingSet) bool {
			return set.Len() == 2
		})).Return(nil)

		service := NewAutoMapService(repo, fallbackRegistry(), suggestions, time.Second, nil)
		result, err := service.AutoMap(ctx, "DYNAMICS", "account")
		require.NoError(t, err)
		assert.Equal(t, 2, result.Count)
	})

	t.Run("Out of range confidences are clamped", func(t *testing.T) {
		repo := new(MockMappingSetRepository)
		suggestions := new(MockSuggestionProvider)
		suggestions.On("Suggest", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]mapping.FieldMapping{
				{SourceField: "name", TargetField: "name", Transform: mapping.TransformNone, Confidence: 1.7},
			}, nil)
		repo.On("Save", ctx, mock.Anything).Return(nil)

		service := NewAutoMapService(repo, fallbackRegistry(), suggestions, time.Second, nil)
		result, err := service.AutoMap(ctx, "DYNAMICS", "account")
		require.NoError(t, err)
		assert.Equal(t, 1.0, result.Entries[0].Confidence)
	})

	t.Run("Zero suggestions is a no-op, not a fallback", func(t *testing.T) {
		repo := new(MockMappingSetRepository)
		suggestions := new(MockSuggestionProvider)
		suggestions.On("Suggest", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]mapping.FieldMapping{}, nil)
		current := mapping.NewMappingSet(mapping.SystemCodeDynamics, mapping.EntityTypeAccount)
		current.Entries = []mapping.FieldMapping{
			{SourceField: "name", TargetField: "name", Transform: mapping.TransformNone, Confidence: 1, Provenance: mapping.ProvenanceManual},
		}
		repo.On("Load", ctx, mapping.SystemCodeDynamics, mapping.EntityTypeAccount).Return(current, nil)

		service := NewAutoMapService(repo, fallbackRegistry(), suggestions, time.Second, nil)
		result, err := service.AutoMap(ctx, "DYNAMICS", "account")
		require.NoError(t, err)

		assert.Equal(t, AutoMapOutcomeNone, result.Outcome)
		assert.Equal(t, 0, result.Count)
		assert.Len(t, result.Entries, 1, "existing entries are reported unchanged")
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Capability failure falls back to the default table", func(t *testing.T) {
		repo := new(MockMappingSetRepository)
		suggestions := new(MockSuggestionProvider)
		suggestions.On("Suggest", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("model endpoint unavailable"))
		repo.On("Save", ctx, mock.MatchedBy(func(set *mapping.MappingSet) bool {
			for _, entry := range set.Entries {
				if entry.Provenance != mapping.ProvenanceDefault {
					return false
				}
			}
			return set.Len() > 0
		})).Return(nil)

		service := NewAutoMapService(repo, fallbackRegistry(), suggestions, time.Second, nil)
		result, err := service.AutoMap(ctx, "PIPEDRIVE", "opportunity")
		require.NoError(t, err)
		assert.Equal(t, AutoMapOutcomeDefault, result.Outcome)
		assert.Greater(t, result.Count, 0)
	})

	t.Run("Nil provider goes straight to the default table", func(t *testing.T) {
		repo := new(MockMappingSetRepository)
		repo.On("Save", ctx, mock.Anything).Return(nil)

		service := NewAutoMapService(repo, fallbackRegistry(), nil, time.Second, nil)
		result, err := service.AutoMap(ctx, "GWORKSPACE", "contact")
		require.NoError(t, err)
		assert.Equal(t, AutoMapOutcomeDefault, result.Outcome)
	})

	t.Run("Invalid pair is rejected before any orchestration", func(t *testing.T) {
		repo := new(MockMappingSetRepository)
		service := NewAutoMapService(repo, fallbackRegistry(), nil, time.Second, nil)

		_, err := service.AutoMap(ctx, "GWORKSPACE", "account")
		assert.Equal(t, "UNSUPPORTED_PAIR", domainCode(t, err))
	})

	t.Run("Persistence failure propagates", func(t *testing.T) {
		repo := new(MockMappingSetRepository)
		repo.On("Save", ctx, mock.Anything).Return(errors.New("write failed"))

		service := NewAutoMapService(repo, fallbackRegistry(), nil, time.Second, nil)
		_, err := service.AutoMap(ctx, "DYNAMICS", "contact")
		assert.Error(t, err)
	})
}

func TestAutoMapService_SuggestionTimeout(t *testing.T) {
	repo := new(MockMappingSetRepository)
	suggestions := new(MockSuggestionProvider)
	suggestions.On("Suggest", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			deadline, ok := ctx.Deadline()
			assert.True(t, ok, "suggestion call must carry a deadline")
			assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 40*time.Millisecond)
		}).
		Return(nil, context.DeadlineExceeded)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	service := NewAutoMapService(repo, fallbackRegistry(), suggestions, 50*time.Millisecond, nil)
	result, err := service.AutoMap(context.Background(), "DYNAMICS", "account")
	require.NoError(t, err)
	assert.Equal(t, AutoMapOutcomeDefault, result.Outcome, "timeout is a capability failure")
}
