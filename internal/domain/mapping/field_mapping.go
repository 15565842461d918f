package mapping

import (
	"context"
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// FieldMapping Errors
// ---------------------------------------------------------------------------

var (
	ErrEntrySourceFieldEmpty   = errors.New("mapping: source field must not be empty")
	ErrEntrySourceFieldUnknown = errors.New("mapping: source field is not part of the source schema")
	ErrEntryTargetFieldEmpty   = errors.New("mapping: target field must not be empty")
	ErrEntryTargetFieldUnknown = errors.New("mapping: target field is not part of the canonical schema")
	ErrEntryInvalidTransform   = errors.New("mapping: invalid transform")
	ErrEntryInvalidConfidence  = errors.New("mapping: confidence must be between 0 and 1")
	ErrEntryInvalidProvenance  = errors.New("mapping: invalid provenance")
)

// ---------------------------------------------------------------------------
// Provenance and confidence
// ---------------------------------------------------------------------------

// Provenance records the origin of a mapping entry.
type Provenance string

const (
	// ProvenanceManual marks an entry authored by an operator
	ProvenanceManual Provenance = "manual"
	// ProvenanceAISuggested marks an entry produced by the suggestion capability
	ProvenanceAISuggested Provenance = "ai_suggested"
	// ProvenanceDefault marks an entry taken from the rule-based default table
	ProvenanceDefault Provenance = "default"
)

// IsValid returns true if the provenance is valid
func (p Provenance) IsValid() bool {
	switch p {
	case ProvenanceManual, ProvenanceAISuggested, ProvenanceDefault:
		return true
	default:
		return false
	}
}

// String returns the string representation of Provenance
func (p Provenance) String() string {
	return string(p)
}

// ConfidenceBucket is the display/reporting bucket of a confidence score.
// Bucketing never changes behavior.
type ConfidenceBucket string

const (
	// ConfidenceHigh covers scores of 0.90 and above
	ConfidenceHigh ConfidenceBucket = "high"
	// ConfidenceMedium covers scores from 0.70 up to but excluding 0.90
	ConfidenceMedium ConfidenceBucket = "medium"
	// ConfidenceLow covers scores below 0.70
	ConfidenceLow ConfidenceBucket = "low"
)

// BucketFor returns the bucket a confidence score falls into.
func BucketFor(confidence float64) ConfidenceBucket {
	switch {
	case confidence >= 0.90:
		return ConfidenceHigh
	case confidence >= 0.70:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ---------------------------------------------------------------------------
// FieldMapping Value Object
// ---------------------------------------------------------------------------

// FieldMapping declares how one source field corresponds to one canonical
// field, including the value transform applied at sync time, a confidence
// score, and the provenance of the entry. Source and target may be empty
// while the entry is a draft.
type FieldMapping struct {
	SourceField string     `json:"source_field"`
	TargetField string     `json:"target_field"`
	Transform   Transform  `json:"transform"`
	Confidence  float64    `json:"confidence"`
	Provenance  Provenance `json:"provenance"`
}

// Validate checks the entry against the loaded schemas. Drafts fail
// validation until both fields are filled in with known names.
func (m FieldMapping) Validate(source SourceFieldSchema, canonical CanonicalFieldSchema) error {
	if m.SourceField == "" {
		return ErrEntrySourceFieldEmpty
	}
	if !source.Has(m.SourceField) {
		return fmt.Errorf("%w: %q", ErrEntrySourceFieldUnknown, m.SourceField)
	}
	if m.TargetField == "" {
		return ErrEntryTargetFieldEmpty
	}
	if !canonical.Has(m.TargetField) {
		return fmt.Errorf("%w: %q", ErrEntryTargetFieldUnknown, m.TargetField)
	}
	if !m.Transform.IsValid() {
		return fmt.Errorf("%w: %q", ErrEntryInvalidTransform, m.Transform)
	}
	if m.Confidence < 0 || m.Confidence > 1 {
		return fmt.Errorf("%w: %v", ErrEntryInvalidConfidence, m.Confidence)
	}
	if !m.Provenance.IsValid() {
		return fmt.Errorf("%w: %q", ErrEntryInvalidProvenance, m.Provenance)
	}
	return nil
}

// ConfidenceBucket returns the display bucket of this entry's confidence.
func (m FieldMapping) ConfidenceBucket() ConfidenceBucket {
	return BucketFor(m.Confidence)
}

// ---------------------------------------------------------------------------
// MappingSet Aggregate
// ---------------------------------------------------------------------------

// MappingKey identifies the mapping set of one (source system, entity type)
// pair.
type MappingKey struct {
	System SystemCode `json:"system"`
	Entity EntityType `json:"entity"`
}

// String returns the canonical "SYSTEM/entity" form of the key.
func (k MappingKey) String() string {
	return string(k.System) + "/" + string(k.Entity)
}

// MappingSet is the ordered collection of field-mapping entries for one
// (source system, entity type) pair. It is the unit of persistence: saving
// wholesale-replaces whatever was previously persisted for the key, last
// write wins. Duplicate target fields are permitted; at sync time the
// last-applied entry wins.
type MappingSet struct {
	System  SystemCode     `json:"system"`
	Entity  EntityType     `json:"entity"`
	Entries []FieldMapping `json:"entries"`
}

// NewMappingSet creates an empty mapping set for the given key.
func NewMappingSet(system SystemCode, entity EntityType) *MappingSet {
	return &MappingSet{
		System:  system,
		Entity:  entity,
		Entries: make([]FieldMapping, 0),
	}
}

// Key returns the (system, entity) key of this set.
func (s *MappingSet) Key() MappingKey {
	return MappingKey{System: s.System, Entity: s.Entity}
}

// Len returns the number of entries.
func (s *MappingSet) Len() int {
	return len(s.Entries)
}

// Clone returns a deep copy of the set.
func (s *MappingSet) Clone() *MappingSet {
	entries := make([]FieldMapping, len(s.Entries))
	copy(entries, s.Entries)
	return &MappingSet{System: s.System, Entity: s.Entity, Entries: entries}
}

// ---------------------------------------------------------------------------
// Repository and capability interfaces (implemented by infrastructure)
// ---------------------------------------------------------------------------

// MappingSetRepository persists mapping sets keyed by (system, entity).
type MappingSetRepository interface {
	// Load returns the persisted set for the key, or an empty set when
	// nothing has been persisted yet.
	Load(ctx context.Context, system SystemCode, entity EntityType) (*MappingSet, error)

	// Save wholesale-replaces the persisted set for the key. There is no
	// merge and no concurrency check: last write wins.
	Save(ctx context.Context, set *MappingSet) error
}

// SuggestionProvider is the AI-backed mapping suggestion capability, treated
// as an opaque function over the two schemas.
type SuggestionProvider interface {
	Suggest(ctx context.Context, system SystemCode, entity EntityType,
		source SourceFieldSchema, canonical CanonicalFieldSchema) ([]FieldMapping, error)
}
