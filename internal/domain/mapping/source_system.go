package mapping

// ---------------------------------------------------------------------------
// SystemCode represents a connected external source system
// ---------------------------------------------------------------------------

// SystemCode identifies an external business system whose records are mapped
// into the product's canonical schemas.
type SystemCode string

const (
	// SystemCodeDynamics represents the Microsoft Dynamics 365 CRM connector
	SystemCodeDynamics SystemCode = "DYNAMICS"
	// SystemCodeGWorkspace represents the Google Workspace directory/mail connector
	SystemCodeGWorkspace SystemCode = "GWORKSPACE"
	// SystemCodePipedrive represents the Pipedrive CRM connector
	SystemCodePipedrive SystemCode = "PIPEDRIVE"
)

// AllSystems returns every source system the product advertises as supported.
func AllSystems() []SystemCode {
	return []SystemCode{SystemCodeDynamics, SystemCodeGWorkspace, SystemCodePipedrive}
}

// IsValid returns true if the system code is valid
func (c SystemCode) IsValid() bool {
	switch c {
	case SystemCodeDynamics, SystemCodeGWorkspace, SystemCodePipedrive:
		return true
	default:
		return false
	}
}

// String returns the string representation of SystemCode
func (c SystemCode) String() string {
	return string(c)
}

// DisplayName returns a human-readable name for the source system
func (c SystemCode) DisplayName() string {
	switch c {
	case SystemCodeDynamics:
		return "Microsoft Dynamics 365"
	case SystemCodeGWorkspace:
		return "Google Workspace"
	case SystemCodePipedrive:
		return "Pipedrive"
	default:
		return string(c)
	}
}

// ---------------------------------------------------------------------------
// EntityType represents a kind of record within a source system
// ---------------------------------------------------------------------------

// EntityType identifies a kind of record (and its canonical schema).
type EntityType string

const (
	// EntityTypeAccount represents a company/organization record
	EntityTypeAccount EntityType = "account"
	// EntityTypeContact represents a person record
	EntityTypeContact EntityType = "contact"
	// EntityTypeOpportunity represents a deal/opportunity record
	EntityTypeOpportunity EntityType = "opportunity"
)

// AllEntityTypes returns every canonical entity type.
func AllEntityTypes() []EntityType {
	return []EntityType{EntityTypeAccount, EntityTypeContact, EntityTypeOpportunity}
}

// IsValid returns true if the entity type is valid
func (e EntityType) IsValid() bool {
	switch e {
	case EntityTypeAccount, EntityTypeContact, EntityTypeOpportunity:
		return true
	default:
		return false
	}
}

// String returns the string representation of EntityType
func (e EntityType) String() string {
	return string(e)
}

// supportedEntities is the fixed matrix of entity types each source system
// can describe. A directory service only exposes people.
var supportedEntities = map[SystemCode][]EntityType{
	SystemCodeDynamics:   {EntityTypeAccount, EntityTypeContact, EntityTypeOpportunity},
	SystemCodeGWorkspace: {EntityTypeContact},
	SystemCodePipedrive:  {EntityTypeAccount, EntityTypeContact, EntityTypeOpportunity},
}

// SupportedEntities returns the entity types a source system exposes.
// Unknown systems yield an empty slice.
func SupportedEntities(system SystemCode) []EntityType {
	entities, ok := supportedEntities[system]
	if !ok {
		return nil
	}
	out := make([]EntityType, len(entities))
	copy(out, entities)
	return out
}

// Supports reports whether the (system, entity) pairing is advertised as
// supported by the product.
func Supports(system SystemCode, entity EntityType) bool {
	for _, e := range supportedEntities[system] {
		if e == entity {
			return true
		}
	}
	return false
}
