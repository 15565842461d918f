package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/salesiq/backend/internal/domain/mapping"
	"github.com/salesiq/backend/internal/infrastructure/persistence/models"
)

// GormMappingSetRepository implements MappingSetRepository using GORM
type GormMappingSetRepository struct {
	db *gorm.DB
}

// Interface compliance check
var _ mapping.MappingSetRepository = (*GormMappingSetRepository)(nil)

// NewGormMappingSetRepository creates a new GormMappingSetRepository
func NewGormMappingSetRepository(db *gorm.DB) *GormMappingSetRepository {
	return &GormMappingSetRepository{db: db}
}

// Load returns the persisted set for (system, entity). A pair that has never
// been saved yields an empty set, not an error.
func (r *GormMappingSetRepository) Load(ctx context.Context, system mapping.SystemCode, entity mapping.EntityType) (*mapping.MappingSet, error) {
	var model models.MappingSetModel
	err := r.db.WithContext(ctx).
		Where("system_code = ? AND entity_type = ?", system, entity).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return mapping.NewMappingSet(system, entity), nil
		}
		return nil, err
	}
	return model.ToDomain()
}

// Save wholesale-replaces the persisted set for the key. There is no
// concurrency check: the last writer wins, per the single-editor model.
func (r *GormMappingSetRepository) Save(ctx context.Context, set *mapping.MappingSet) error {
	var model models.MappingSetModel
	if err := model.FromDomain(set); err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "system_code"}, {Name: "entity_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"entries", "updated_at"}),
		}).
		Create(&model).Error
}
