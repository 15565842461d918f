package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Transform Errors
// ---------------------------------------------------------------------------

var (
	ErrTransformUnknown        = errors.New("mapping: unknown transform")
	ErrTransformNotReference   = errors.New("mapping: value is not an (id, label) reference")
	ErrTransformNotNumeric     = errors.New("mapping: value is not numeric")
	ErrTransformUnknownToken   = errors.New("mapping: value is not a recognized boolean token")
	ErrTransformUnparsableDate = errors.New("mapping: value is not a parsable date")
	ErrTransformNilValue       = errors.New("mapping: value is absent")
)

// ---------------------------------------------------------------------------
// Transform represents a named value transform from the fixed catalog
// ---------------------------------------------------------------------------

// Transform names one entry of the fixed transform catalog. Each transform
// converts one source value into one canonical value and either succeeds or
// fails explicitly; there is no best-effort coercion.
type Transform string

const (
	// TransformNone passes the value through unchanged
	TransformNone Transform = "none"
	// TransformExtractID returns the id component of a reference value
	TransformExtractID Transform = "extract_id"
	// TransformExtractName returns the label component of a reference value
	TransformExtractName Transform = "extract_name"
	// TransformToString coerces any value to its textual representation
	TransformToString Transform = "to_string"
	// TransformToFloat parses a numeric-looking value to a float
	TransformToFloat Transform = "to_float"
	// TransformToInt parses a numeric-looking value to an integer,
	// truncating any fractional part
	TransformToInt Transform = "to_int"
	// TransformBoolean maps an explicit truthy/falsy token to true/false
	TransformBoolean Transform = "boolean"
	// TransformDateParse parses a date/datetime string into ISO-8601
	TransformDateParse Transform = "date_parse"
)

// AllTransforms returns the full catalog in display order.
func AllTransforms() []Transform {
	return []Transform{
		TransformNone,
		TransformExtractID,
		TransformExtractName,
		TransformToString,
		TransformToFloat,
		TransformToInt,
		TransformBoolean,
		TransformDateParse,
	}
}

// IsValid returns true if the transform is part of the catalog
func (t Transform) IsValid() bool {
	switch t {
	case TransformNone, TransformExtractID, TransformExtractName,
		TransformToString, TransformToFloat, TransformToInt,
		TransformBoolean, TransformDateParse:
		return true
	default:
		return false
	}
}

// String returns the string representation of Transform
func (t Transform) String() string {
	return string(t)
}

// Description returns a short operator-facing description of the transform.
func (t Transform) Description() string {
	switch t {
	case TransformNone:
		return "Pass the value through unchanged"
	case TransformExtractID:
		return "Extract the identifier from a reference value"
	case TransformExtractName:
		return "Extract the display label from a reference value"
	case TransformToString:
		return "Coerce the value to text"
	case TransformToFloat:
		return "Parse the value as a floating-point number"
	case TransformToInt:
		return "Parse the value as an integer, truncating fractions"
	case TransformBoolean:
		return "Map a truthy/falsy token to true or false"
	case TransformDateParse:
		return "Parse a date or datetime into ISO-8601"
	default:
		return string(t)
	}
}

// ---------------------------------------------------------------------------
// Reference Value Object
// ---------------------------------------------------------------------------

// Reference is a relational pointer as source systems ship it: an identifier
// plus the display label of the referenced record.
type Reference struct {
	ID    any    `json:"id"`
	Label string `json:"label"`
}

// NewReference creates a reference value
func NewReference(id any, label string) Reference {
	return Reference{ID: id, Label: label}
}

// asReference recognizes the shapes a reference value arrives in: the typed
// Reference, a decoded JSON object with id/label keys, or a two-element
// (id, label) tuple. Anything else is not a reference.
func asReference(value any) (Reference, bool) {
	switch v := value.(type) {
	case Reference:
		return v, true
	case *Reference:
		if v == nil {
			return Reference{}, false
		}
		return *v, true
	case map[string]any:
		id, okID := v["id"]
		label, okLabel := v["label"]
		if !okID || !okLabel {
			return Reference{}, false
		}
		labelStr, ok := label.(string)
		if !ok {
			return Reference{}, false
		}
		return Reference{ID: id, Label: labelStr}, true
	case []any:
		if len(v) != 2 {
			return Reference{}, false
		}
		label, ok := v[1].(string)
		if !ok {
			return Reference{}, false
		}
		return Reference{ID: v[0], Label: label}, true
	default:
		return Reference{}, false
	}
}

// ---------------------------------------------------------------------------
// Transform application
// ---------------------------------------------------------------------------

// Apply runs the transform against a single source value. It returns the
// canonical value, or an explicit error when the value does not satisfy the
// transform's input expectation. It never guesses.
func (t Transform) Apply(value any) (any, error) {
	switch t {
	case TransformNone:
		return value, nil
	case TransformExtractID:
		ref, ok := asReference(value)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrTransformNotReference, value)
		}
		return ref.ID, nil
	case TransformExtractName:
		ref, ok := asReference(value)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrTransformNotReference, value)
		}
		return ref.Label, nil
	case TransformToString:
		return toString(value), nil
	case TransformToFloat:
		d, err := toDecimal(value)
		if err != nil {
			return nil, err
		}
		return d.InexactFloat64(), nil
	case TransformToInt:
		d, err := toDecimal(value)
		if err != nil {
			return nil, err
		}
		return d.IntPart(), nil
	case TransformBoolean:
		return toBoolean(value)
	case TransformDateParse:
		return parseDate(value)
	default:
		return nil, fmt.Errorf("%w: %q", ErrTransformUnknown, string(t))
	}
}

// toString coerces anything to text. Absent values become the empty string.
func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case Reference:
		return v.Label
	case decimal.Decimal:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// toDecimal parses numeric-looking values into a decimal, the numeric
// workhorse used across the codebase.
func toDecimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case nil:
		return decimal.Zero, ErrTransformNilValue
	case decimal.Decimal:
		return v, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrTransformNotNumeric, v.String())
		}
		return d, nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrTransformNotNumeric, v)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %T", ErrTransformNotNumeric, value)
	}
}

// truthy and falsy are the closed token sets the boolean transform accepts.
var (
	truthyTokens = map[string]struct{}{"true": {}, "t": {}, "yes": {}, "y": {}, "1": {}}
	falsyTokens  = map[string]struct{}{"false": {}, "f": {}, "no": {}, "n": {}, "0": {}}
)

func toBoolean(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		token := strings.ToLower(strings.TrimSpace(v))
		if _, ok := truthyTokens[token]; ok {
			return true, nil
		}
		if _, ok := falsyTokens[token]; ok {
			return false, nil
		}
		return false, fmt.Errorf("%w: %q", ErrTransformUnknownToken, v)
	case int:
		return intToBool(int64(v))
	case int64:
		return intToBool(v)
	case float64:
		if v == 0 || v == 1 {
			return v == 1, nil
		}
		return false, fmt.Errorf("%w: %v", ErrTransformUnknownToken, v)
	default:
		return false, fmt.Errorf("%w: %T", ErrTransformUnknownToken, value)
	}
}

func intToBool(v int64) (bool, error) {
	if v == 0 || v == 1 {
		return v == 1, nil
	}
	return false, fmt.Errorf("%w: %d", ErrTransformUnknownToken, v)
}

// dateLayouts are tried in order; the first match wins.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	time.RFC1123,
}

// parseDate parses a date/datetime-looking string and renders it as RFC 3339.
func parseDate(value any) (string, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC().Format(time.RFC3339), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return "", fmt.Errorf("%w: empty string", ErrTransformUnparsableDate)
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC().Format(time.RFC3339), nil
			}
		}
		return "", fmt.Errorf("%w: %q", ErrTransformUnparsableDate, v)
	default:
		return "", fmt.Errorf("%w: %T", ErrTransformUnparsableDate, value)
	}
}

// ---------------------------------------------------------------------------
// Transform / field-type compatibility
// ---------------------------------------------------------------------------

// CompatibleWith reports whether applying the transform to a field of the
// given declared type can ever succeed. Used to flag likely-invalid
// transform/type pairings before sync time; the check is advisory and never
// blocks saving.
func (t Transform) CompatibleWith(ft FieldType) bool {
	switch t {
	case TransformNone, TransformToString:
		return true
	case TransformExtractID, TransformExtractName:
		return ft == FieldTypeReference
	case TransformToFloat, TransformToInt:
		return ft == FieldTypeInteger || ft == FieldTypeFloat ||
			ft == FieldTypeMonetary || ft == FieldTypeText
	case TransformBoolean:
		return ft == FieldTypeBoolean || ft == FieldTypeInteger || ft == FieldTypeText
	case TransformDateParse:
		return ft == FieldTypeDate || ft == FieldTypeDateTime || ft == FieldTypeText
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// Lint warnings
// ---------------------------------------------------------------------------

// Lint warning codes.
const (
	LintUnknownSourceField    = "unknown_source_field"
	LintUnknownTargetField    = "unknown_target_field"
	LintIncompatibleTransform = "incompatible_transform"
	LintUnknownTransform      = "unknown_transform"
)

// LintWarning flags a likely-invalid mapping entry. Warnings are attached to
// the offending entry and never abort processing of the rest of the set.
type LintWarning struct {
	Index   int    `json:"index"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// LintMappings checks every entry of a mapping set against the loaded
// schemas and the transform catalog.
func LintMappings(entries []FieldMapping, source SourceFieldSchema, canonical CanonicalFieldSchema) []LintWarning {
	var warnings []LintWarning
	for i, entry := range entries {
		srcField, srcKnown := source.Field(entry.SourceField)
		if !srcKnown {
			warnings = append(warnings, LintWarning{
				Index:   i,
				Code:    LintUnknownSourceField,
				Message: fmt.Sprintf("source field %q is not part of the %s/%s schema", entry.SourceField, source.System, source.Entity),
			})
		}
		if !canonical.Has(entry.TargetField) {
			warnings = append(warnings, LintWarning{
				Index:   i,
				Code:    LintUnknownTargetField,
				Message: fmt.Sprintf("target field %q is not part of the canonical %s schema", entry.TargetField, canonical.Entity),
			})
		}
		if !entry.Transform.IsValid() {
			warnings = append(warnings, LintWarning{
				Index:   i,
				Code:    LintUnknownTransform,
				Message: fmt.Sprintf("transform %q is not part of the catalog", entry.Transform),
			})
			continue
		}
		if srcKnown && !entry.Transform.CompatibleWith(srcField.Type) {
			warnings = append(warnings, LintWarning{
				Index:   i,
				Code:    LintIncompatibleTransform,
				Message: fmt.Sprintf("transform %q cannot succeed on %s field %q", entry.Transform, srcField.Type, entry.SourceField),
			})
		}
	}
	return warnings
}
