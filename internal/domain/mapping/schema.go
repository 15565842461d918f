package mapping

import "context"

// ---------------------------------------------------------------------------
// FieldType represents the declared primitive type of a field
// ---------------------------------------------------------------------------

// FieldType is the declared primitive type of a source or canonical field.
type FieldType string

const (
	// FieldTypeText represents free-form text
	FieldTypeText FieldType = "text"
	// FieldTypeInteger represents a whole number
	FieldTypeInteger FieldType = "integer"
	// FieldTypeFloat represents a floating-point number
	FieldTypeFloat FieldType = "float"
	// FieldTypeMonetary represents a money amount
	FieldTypeMonetary FieldType = "monetary"
	// FieldTypeDate represents a calendar date
	FieldTypeDate FieldType = "date"
	// FieldTypeDateTime represents a timestamp
	FieldTypeDateTime FieldType = "datetime"
	// FieldTypeBoolean represents a true/false flag
	FieldTypeBoolean FieldType = "boolean"
	// FieldTypeReference represents a relational pointer carrying an
	// identifier and a display label
	FieldTypeReference FieldType = "reference"
	// FieldTypeList represents a multi-valued field
	FieldTypeList FieldType = "list"
)

// IsValid returns true if the field type is valid
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeText, FieldTypeInteger, FieldTypeFloat, FieldTypeMonetary,
		FieldTypeDate, FieldTypeDateTime, FieldTypeBoolean, FieldTypeReference,
		FieldTypeList:
		return true
	default:
		return false
	}
}

// String returns the string representation of FieldType
func (t FieldType) String() string {
	return string(t)
}

// ---------------------------------------------------------------------------
// SourceFieldSchema Value Object
// ---------------------------------------------------------------------------

// SourceField describes one field of an external system's record schema.
type SourceField struct {
	// Name is the field name as the source system exposes it
	Name string `json:"name"`
	// Label is the human-readable label shown to operators
	Label string `json:"label"`
	// Type is the declared primitive type of the field
	Type FieldType `json:"type"`
}

// SourceFieldSchema is the ordered field schema of one (system, entity) pair.
type SourceFieldSchema struct {
	System SystemCode    `json:"system"`
	Entity EntityType    `json:"entity"`
	Fields []SourceField `json:"fields"`
}

// Field returns the schema field with the given name.
func (s SourceFieldSchema) Field(name string) (SourceField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return SourceField{}, false
}

// Has reports whether the schema declares a field with the given name.
func (s SourceFieldSchema) Has(name string) bool {
	_, ok := s.Field(name)
	return ok
}

// IsEmpty reports whether the schema declares no fields. An empty schema
// means "nothing to offer", not an error.
func (s SourceFieldSchema) IsEmpty() bool {
	return len(s.Fields) == 0
}

// ---------------------------------------------------------------------------
// CanonicalFieldSchema Value Object
// ---------------------------------------------------------------------------

// CanonicalField describes one field of the product's internal schema for an
// entity type.
type CanonicalField struct {
	// Name is the canonical field name
	Name string `json:"name"`
	// Type is the declared primitive type of the field
	Type FieldType `json:"type"`
	// Required marks the minimum set of fields the product needs populated
	// to treat a synchronized record as usable. Advisory only: it is not
	// enforced at mapping-configuration time.
	Required bool `json:"required"`
	// Description is the human-readable purpose of the field
	Description string `json:"description"`
}

// CanonicalFieldSchema is the product's internal, system-agnostic field
// definitions for one entity type.
type CanonicalFieldSchema struct {
	Entity EntityType       `json:"entity"`
	Fields []CanonicalField `json:"fields"`
}

// Field returns the canonical field with the given name.
func (s CanonicalFieldSchema) Field(name string) (CanonicalField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return CanonicalField{}, false
}

// Has reports whether the schema declares a field with the given name.
func (s CanonicalFieldSchema) Has(name string) bool {
	_, ok := s.Field(name)
	return ok
}

// IsEmpty reports whether the schema declares no fields.
func (s CanonicalFieldSchema) IsEmpty() bool {
	return len(s.Fields) == 0
}

// RequiredFields returns the names of all required canonical fields.
func (s CanonicalFieldSchema) RequiredFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// ---------------------------------------------------------------------------
// Schema provider interfaces (implemented by infrastructure)
// ---------------------------------------------------------------------------

// SourceSchemaProvider fetches the live field schema of a (system, entity)
// pair from the connector gateway.
type SourceSchemaProvider interface {
	FetchSourceSchema(ctx context.Context, system SystemCode, entity EntityType) (SourceFieldSchema, error)
}

// CanonicalSchemaProvider fetches the live canonical schema for an entity
// type. The system code lets the provider tailor descriptions per connector.
type CanonicalSchemaProvider interface {
	FetchCanonicalSchema(ctx context.Context, entity EntityType, system SystemCode) (CanonicalFieldSchema, error)
}
