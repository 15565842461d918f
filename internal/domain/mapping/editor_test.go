package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEditor(t *testing.T, entries ...FieldMapping) *Editor {
	t.Helper()
	source, ok := DefaultSourceSchema(SystemCodeDynamics, EntityTypeAccount)
	require.True(t, ok)
	canonical, ok := DefaultCanonicalSchema(EntityTypeAccount)
	require.True(t, ok)

	set := NewMappingSet(SystemCodeDynamics, EntityTypeAccount)
	set.Entries = append(set.Entries, entries...)
	return NewEditor(set, source, canonical)
}

func validEntry() FieldMapping {
	return FieldMapping{
		SourceField: "name",
		TargetField: "name",
		Transform:   TransformNone,
		Confidence:  1,
		Provenance:  ProvenanceManual,
	}
}

// ---------------------------------------------------------------------------
// State machine tests
// ---------------------------------------------------------------------------

func TestEditor_InitialState(t *testing.T) {
	editor := newTestEditor(t)
	assert.Equal(t, EditorStateIdle, editor.State())
	assert.Equal(t, -1, editor.EditIndex())

	_, editing := editor.Draft()
	assert.False(t, editing)
}

func TestEditor_AddDraftEntry(t *testing.T) {
	editor := newTestEditor(t, validEntry())

	index, err := editor.AddDraftEntry()
	require.NoError(t, err)
	assert.Equal(t, 1, index)
	assert.Equal(t, EditorStateEditing, editor.State())

	draft, editing := editor.Draft()
	require.True(t, editing)
	assert.Empty(t, draft.SourceField)
	assert.Equal(t, TransformNone, draft.Transform)
	assert.Equal(t, 0.5, draft.Confidence)
	assert.Equal(t, ProvenanceManual, draft.Provenance)

	t.Run("Second add while editing is rejected", func(t *testing.T) {
		_, err := editor.AddDraftEntry()
		assert.ErrorIs(t, err, ErrEditorBusy)
		assert.Equal(t, 2, len(editor.Entries()))
	})
}

func TestEditor_BeginEdit(t *testing.T) {
	editor := newTestEditor(t, validEntry())

	t.Run("Out of range index is rejected", func(t *testing.T) {
		assert.ErrorIs(t, editor.BeginEdit(5), ErrEditorIndex)
		assert.ErrorIs(t, editor.BeginEdit(-1), ErrEditorIndex)
		assert.Equal(t, EditorStateIdle, editor.State())
	})

	t.Run("Begin copies the entry into the draft", func(t *testing.T) {
		require.NoError(t, editor.BeginEdit(0))
		draft, editing := editor.Draft()
		require.True(t, editing)
		assert.Equal(t, "name", draft.SourceField)
	})

	t.Run("Begin while editing is rejected without mutating the set", func(t *testing.T) {
		before := editor.Entries()
		assert.ErrorIs(t, editor.BeginEdit(0), ErrEditorBusy)
		assert.Equal(t, before, editor.Entries())
		assert.Equal(t, 0, editor.EditIndex())
	})
}

func TestEditor_DraftMutatorsRequireEditing(t *testing.T) {
	editor := newTestEditor(t, validEntry())

	assert.ErrorIs(t, editor.SetDraftSourceField("name"), ErrEditorIdle)
	assert.ErrorIs(t, editor.SetDraftTargetField("name"), ErrEditorIdle)
	assert.ErrorIs(t, editor.SetDraftTransform(TransformNone), ErrEditorIdle)
	assert.ErrorIs(t, editor.SetDraftConfidence(0.8), ErrEditorIdle)
	assert.ErrorIs(t, editor.CommitEdit(), ErrEditorIdle)
	assert.ErrorIs(t, editor.CancelEdit(), ErrEditorIdle)
}

func TestEditor_DraftEditsDoNotTouchTheSet(t *testing.T) {
	editor := newTestEditor(t, validEntry())
	require.NoError(t, editor.BeginEdit(0))

	require.NoError(t, editor.SetDraftSourceField("accountnumber"))
	require.NoError(t, editor.SetDraftTargetField("external_code"))
	require.NoError(t, editor.SetDraftTransform(TransformToString))

	assert.Equal(t, "name", editor.Entries()[0].SourceField, "set must not change before commit")

	draft, _ := editor.Draft()
	assert.Equal(t, "accountnumber", draft.SourceField)
	assert.Equal(t, "external_code", draft.TargetField)
}

func TestEditor_SetDraftTransform_InvalidRejected(t *testing.T) {
	editor := newTestEditor(t, validEntry())
	require.NoError(t, editor.BeginEdit(0))

	assert.ErrorIs(t, editor.SetDraftTransform(Transform("uppercase")), ErrEntryInvalidTransform)

	draft, _ := editor.Draft()
	assert.Equal(t, TransformNone, draft.Transform, "draft keeps its previous transform")
}

func TestEditor_SetDraftConfidence(t *testing.T) {
	editor := newTestEditor(t, validEntry())
	require.NoError(t, editor.BeginEdit(0))

	assert.ErrorIs(t, editor.SetDraftConfidence(1.5), ErrEditorConfidence)
	assert.ErrorIs(t, editor.SetDraftConfidence(-0.1), ErrEditorConfidence)
	require.NoError(t, editor.SetDraftConfidence(0.8))
}

// ---------------------------------------------------------------------------
// Commit / cancel tests
// ---------------------------------------------------------------------------

func TestEditor_CommitEdit(t *testing.T) {
	t.Run("Commit writes the draft as a manual entry with confidence 1", func(t *testing.T) {
		editor := newTestEditor(t, FieldMapping{
			SourceField: "revenue",
			TargetField: "annual_revenue",
			Transform:   TransformToFloat,
			Confidence:  0.62,
			Provenance:  ProvenanceAISuggested,
		})
		require.NoError(t, editor.BeginEdit(0))
		require.NoError(t, editor.SetDraftSourceField("websiteurl"))
		require.NoError(t, editor.SetDraftTargetField("website"))
		require.NoError(t, editor.SetDraftTransform(TransformNone))
		require.NoError(t, editor.CommitEdit())

		assert.Equal(t, EditorStateIdle, editor.State())
		committed := editor.Entries()[0]
		assert.Equal(t, "websiteurl", committed.SourceField)
		assert.Equal(t, "website", committed.TargetField)
		assert.Equal(t, ProvenanceManual, committed.Provenance)
		assert.Equal(t, 1.0, committed.Confidence)
	})

	t.Run("Explicit confidence override survives commit", func(t *testing.T) {
		editor := newTestEditor(t, validEntry())
		require.NoError(t, editor.BeginEdit(0))
		require.NoError(t, editor.SetDraftConfidence(0.8))
		require.NoError(t, editor.CommitEdit())

		assert.Equal(t, 0.8, editor.Entries()[0].Confidence)
	})

	t.Run("Validation failure keeps the editor editing", func(t *testing.T) {
		editor := newTestEditor(t, validEntry())
		require.NoError(t, editor.BeginEdit(0))
		require.NoError(t, editor.SetDraftSourceField("no_such_field"))

		assert.ErrorIs(t, editor.CommitEdit(), ErrEntrySourceFieldUnknown)
		assert.Equal(t, EditorStateEditing, editor.State())
		assert.Equal(t, "name", editor.Entries()[0].SourceField, "set untouched on failed commit")

		// Correct the draft and retry.
		require.NoError(t, editor.SetDraftSourceField("industrycode"))
		require.NoError(t, editor.SetDraftTargetField("industry"))
		require.NoError(t, editor.CommitEdit())
		assert.Equal(t, EditorStateIdle, editor.State())
	})

	t.Run("Unfilled draft cannot be committed", func(t *testing.T) {
		editor := newTestEditor(t)
		_, err := editor.AddDraftEntry()
		require.NoError(t, err)

		assert.ErrorIs(t, editor.CommitEdit(), ErrEntrySourceFieldEmpty)
		assert.Equal(t, EditorStateEditing, editor.State())
	})
}

func TestEditor_CancelEdit(t *testing.T) {
	t.Run("Cancel discards draft changes to an existing entry", func(t *testing.T) {
		editor := newTestEditor(t, validEntry())
		require.NoError(t, editor.BeginEdit(0))
		require.NoError(t, editor.SetDraftSourceField("revenue"))
		require.NoError(t, editor.CancelEdit())

		assert.Equal(t, EditorStateIdle, editor.State())
		assert.Equal(t, "name", editor.Entries()[0].SourceField)
	})

	t.Run("Cancel removes an entry created by AddDraftEntry", func(t *testing.T) {
		editor := newTestEditor(t, validEntry())
		_, err := editor.AddDraftEntry()
		require.NoError(t, err)
		require.Equal(t, 2, len(editor.Entries()))

		require.NoError(t, editor.CancelEdit())
		assert.Equal(t, 1, len(editor.Entries()))
		assert.Equal(t, EditorStateIdle, editor.State())
	})
}

// ---------------------------------------------------------------------------
// Removal and bulk replacement tests
// ---------------------------------------------------------------------------

func TestEditor_RemoveEntry(t *testing.T) {
	first := validEntry()
	second := FieldMapping{
		SourceField: "revenue",
		TargetField: "annual_revenue",
		Transform:   TransformToFloat,
		Confidence:  0.9,
		Provenance:  ProvenanceDefault,
	}

	t.Run("Removal needs no confirmation", func(t *testing.T) {
		editor := newTestEditor(t, first, second)
		require.NoError(t, editor.RemoveEntry(0))
		require.Equal(t, 1, len(editor.Entries()))
		assert.Equal(t, "revenue", editor.Entries()[0].SourceField)
	})

	t.Run("Out of range index is rejected", func(t *testing.T) {
		editor := newTestEditor(t, first)
		assert.ErrorIs(t, editor.RemoveEntry(3), ErrEditorIndex)
	})

	t.Run("Removing the entry under edit discards the draft", func(t *testing.T) {
		editor := newTestEditor(t, first, second)
		require.NoError(t, editor.BeginEdit(1))
		require.NoError(t, editor.RemoveEntry(1))

		assert.Equal(t, EditorStateIdle, editor.State())
	})

	t.Run("Removing an earlier entry shifts the edit index", func(t *testing.T) {
		editor := newTestEditor(t, first, second)
		require.NoError(t, editor.BeginEdit(1))
		require.NoError(t, editor.RemoveEntry(0))

		assert.Equal(t, EditorStateEditing, editor.State())
		assert.Equal(t, 0, editor.EditIndex())

		require.NoError(t, editor.CommitEdit())
		assert.Equal(t, "revenue", editor.Entries()[0].SourceField)
	})
}

func TestEditor_ReplaceAll(t *testing.T) {
	editor := newTestEditor(t, validEntry())
	require.NoError(t, editor.BeginEdit(0))

	replacement, ok := DefaultMappingTable(SystemCodeDynamics, EntityTypeAccount)
	require.True(t, ok)

	editor.ReplaceAll(replacement)

	assert.Equal(t, EditorStateIdle, editor.State(), "open draft is discarded")
	assert.Equal(t, len(replacement), len(editor.Entries()))

	// The editor owns its copy of the slice.
	replacement[0].SourceField = "mutated"
	assert.NotEqual(t, "mutated", editor.Entries()[0].SourceField)
}
