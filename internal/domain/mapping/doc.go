// Package mapping contains the field-mapping configuration domain: the
// schema registry for external source systems, the transform catalog, the
// mapping set aggregate, and the editor state machine used to author
// field correspondences between a source system's record schema and the
// product's canonical schema.
//
// The package is persistence- and transport-agnostic. Repositories,
// schema providers, and the suggestion capability are defined here as
// interfaces and implemented under internal/infrastructure.
package mapping
