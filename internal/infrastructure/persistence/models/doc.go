// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns: models carry all GORM annotations and table mappings, and the
// repositories convert between them and the domain aggregates.
package models
