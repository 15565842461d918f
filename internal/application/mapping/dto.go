package mapping

import (
	"time"

	"github.com/google/uuid"

	"github.com/salesiq/backend/internal/domain/mapping"
)

// ---------------------------------------------------------------------------
// Catalog DTOs
// ---------------------------------------------------------------------------

// SystemResponse describes one connectable source system.
type SystemResponse struct {
	Code        mapping.SystemCode   `json:"code"`
	DisplayName string               `json:"display_name"`
	Entities    []mapping.EntityType `json:"entities"`
}

// TransformResponse describes one entry of the transform catalog.
type TransformResponse struct {
	Name        mapping.Transform `json:"name"`
	Description string            `json:"description"`
}

// ---------------------------------------------------------------------------
// Mapping set DTOs
// ---------------------------------------------------------------------------

// EntryResponse represents one mapping entry in API responses, enriched with
// the display bucket of its confidence score.
type EntryResponse struct {
	SourceField string                   `json:"source_field"`
	TargetField string                   `json:"target_field"`
	Transform   mapping.Transform        `json:"transform"`
	Confidence  float64                  `json:"confidence"`
	Bucket      mapping.ConfidenceBucket `json:"confidence_bucket"`
	Provenance  mapping.Provenance       `json:"provenance"`
}

// NewEntryResponse converts a domain entry to its response shape.
func NewEntryResponse(entry mapping.FieldMapping) EntryResponse {
	return EntryResponse{
		SourceField: entry.SourceField,
		TargetField: entry.TargetField,
		Transform:   entry.Transform,
		Confidence:  entry.Confidence,
		Bucket:      entry.ConfidenceBucket(),
		Provenance:  entry.Provenance,
	}
}

// NewEntryResponses converts a slice of domain entries.
func NewEntryResponses(entries []mapping.FieldMapping) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i, entry := range entries {
		out[i] = NewEntryResponse(entry)
	}
	return out
}

// MappingSetResponse represents the mapping set of one (system, entity) pair,
// with lint warnings computed against the currently loaded schemas.
type MappingSetResponse struct {
	System   mapping.SystemCode    `json:"system"`
	Entity   mapping.EntityType    `json:"entity"`
	Entries  []EntryResponse       `json:"entries"`
	Warnings []mapping.LintWarning `json:"warnings"`
}

// EntryRequest represents one mapping entry in save/replace requests.
type EntryRequest struct {
	SourceField string  `json:"source_field" binding:"required"`
	TargetField string  `json:"target_field" binding:"required"`
	Transform   string  `json:"transform" binding:"required"`
	Confidence  float64 `json:"confidence" binding:"min=0,max=1"`
	Provenance  string  `json:"provenance" binding:"required"`
}

// ToDomain converts the request entry to its domain form.
func (r EntryRequest) ToDomain() mapping.FieldMapping {
	return mapping.FieldMapping{
		SourceField: r.SourceField,
		TargetField: r.TargetField,
		Transform:   mapping.Transform(r.Transform),
		Confidence:  r.Confidence,
		Provenance:  mapping.Provenance(r.Provenance),
	}
}

// SaveMappingSetRequest wholesale-replaces the persisted set.
type SaveMappingSetRequest struct {
	Entries []EntryRequest `json:"entries" binding:"required"`
}

// ---------------------------------------------------------------------------
// Schema DTOs
// ---------------------------------------------------------------------------

// SourceSchemaResponse is the source field schema of one (system, entity) pair.
type SourceSchemaResponse struct {
	System mapping.SystemCode    `json:"system"`
	Entity mapping.EntityType    `json:"entity"`
	Fields []mapping.SourceField `json:"fields"`
}

// CanonicalSchemaResponse is the canonical schema of one entity type.
type CanonicalSchemaResponse struct {
	Entity mapping.EntityType       `json:"entity"`
	Fields []mapping.CanonicalField `json:"fields"`
}

// ---------------------------------------------------------------------------
// Auto-map DTOs
// ---------------------------------------------------------------------------

// AutoMapOutcome names which path the auto-map orchestration took.
type AutoMapOutcome string

const (
	// AutoMapOutcomeAISuggested means the suggestion capability produced the set
	AutoMapOutcomeAISuggested AutoMapOutcome = "ai_suggested"
	// AutoMapOutcomeDefault means the static default table was applied
	AutoMapOutcomeDefault AutoMapOutcome = "default"
	// AutoMapOutcomeNone means nothing was applied and the set is unchanged
	AutoMapOutcomeNone AutoMapOutcome = "none"
)

// AutoMapResult reports what auto-map did to the set.
type AutoMapResult struct {
	System  mapping.SystemCode `json:"system"`
	Entity  mapping.EntityType `json:"entity"`
	Outcome AutoMapOutcome     `json:"outcome"`
	Entries []EntryResponse    `json:"entries"`
	Count   int                `json:"count"`
}

// ---------------------------------------------------------------------------
// Editor session DTOs
// ---------------------------------------------------------------------------

// OpenSessionRequest opens an editing session over one (system, entity) pair.
type OpenSessionRequest struct {
	System string `json:"system" binding:"required"`
	Entity string `json:"entity" binding:"required"`
}

// DraftPatch carries partial updates to the session's draft entry. Nil fields
// are left untouched.
type DraftPatch struct {
	SourceField *string  `json:"source_field,omitempty"`
	TargetField *string  `json:"target_field,omitempty"`
	Transform   *string  `json:"transform,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
}

// IsZero reports whether the patch changes nothing.
func (p DraftPatch) IsZero() bool {
	return p.SourceField == nil && p.TargetField == nil && p.Transform == nil && p.Confidence == nil
}

// SessionResponse is the full state of an editing session.
type SessionResponse struct {
	ID        uuid.UUID             `json:"id"`
	System    mapping.SystemCode    `json:"system"`
	Entity    mapping.EntityType    `json:"entity"`
	State     mapping.EditorState   `json:"state"`
	EditIndex *int                  `json:"edit_index,omitempty"`
	Draft     *EntryResponse        `json:"draft,omitempty"`
	Entries   []EntryResponse       `json:"entries"`
	Warnings  []mapping.LintWarning `json:"warnings"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}
