package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/salesiq/backend/internal/domain/mapping"
)

// MappingSetModel is the persistence model for the MappingSet aggregate. One
// row per (system_code, entity_type) pair; the entries live in a JSONB column
// and the whole row is replaced on save.
type MappingSetModel struct {
	ID          uuid.UUID          `gorm:"type:uuid;primary_key"`
	SystemCode  mapping.SystemCode `gorm:"type:varchar(20);not null;uniqueIndex:idx_mapping_sets_key,priority:1"`
	EntityType  mapping.EntityType `gorm:"type:varchar(20);not null;uniqueIndex:idx_mapping_sets_key,priority:2"`
	EntriesJSON string             `gorm:"type:jsonb;column:entries;not null;default:'[]'"`
	CreatedAt   time.Time          `gorm:"not null"`
	UpdatedAt   time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MappingSetModel) TableName() string {
	return "mapping_sets"
}

// ToDomain converts the persistence model to a domain MappingSet.
func (m *MappingSetModel) ToDomain() (*mapping.MappingSet, error) {
	set := mapping.NewMappingSet(m.SystemCode, m.EntityType)
	if m.EntriesJSON != "" {
		if err := json.Unmarshal([]byte(m.EntriesJSON), &set.Entries); err != nil {
			return nil, fmt.Errorf("mapping set %s/%s has corrupt entries: %w", m.SystemCode, m.EntityType, err)
		}
	}
	return set, nil
}

// FromDomain populates the persistence model from a domain MappingSet.
func (m *MappingSetModel) FromDomain(set *mapping.MappingSet) error {
	entries := set.Entries
	if entries == nil {
		entries = []mapping.FieldMapping{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.SystemCode = set.System
	m.EntityType = set.Entity
	m.EntriesJSON = string(raw)
	return nil
}
