package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/consolidation"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/opsconsole/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// MaxRecentRuns caps FindRecent
const MaxRecentRuns = 100

// GormRunRepository implements consolidation.RunRepository using GORM
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GormRunRepository
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormRunRepository) WithTx(tx *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: tx}
}

// Save inserts a settled run together with its units
func (r *GormRunRepository) Save(ctx context.Context, run *consolidation.Run) error {
	model := models.ConsolidationRunModelFromDomain(run)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		units := model.Units
		model.Units = nil
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		if len(units) == 0 {
			return nil
		}
		return tx.Create(&units).Error
	})
}

// FindByID finds a run of the tenant by ID
func (r *GormRunRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*consolidation.Run, error) {
	var model models.ConsolidationRunModel
	err := r.db.WithContext(ctx).
		Preload("Units", orderUnits).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindRecent returns the tenant's latest runs, newest first
func (r *GormRunRepository) FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]consolidation.Run, error) {
	if limit <= 0 || limit > MaxRecentRuns {
		limit = MaxRecentRuns
	}

	var runModels []models.ConsolidationRunModel
	err := r.db.WithContext(ctx).
		Preload("Units", orderUnits).
		Where("tenant_id = ?", tenantID).
		Order("settled_at DESC").
		Limit(limit).
		Find(&runModels).Error
	if err != nil {
		return nil, err
	}

	runs := make([]consolidation.Run, len(runModels))
	for i := range runModels {
		run, err := runModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		runs[i] = *run
	}
	return runs, nil
}

func orderUnits(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

var _ consolidation.RunRepository = (*GormRunRepository)(nil)
