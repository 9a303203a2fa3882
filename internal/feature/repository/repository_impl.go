package repository

import (
	"context"

	"github.com/cohortlens/cohortlens/internal/feature/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// New builds the gorm-backed feature flag repository.
func New(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) All(ctx context.Context) ([]domain.FeatureFlag, error) {
	var flags []domain.FeatureFlag
	if err := r.db.WithContext(ctx).Find(&flags).Error; err != nil {
		return nil, err
	}
	return flags, nil
}

func (r *repository) Upsert(ctx context.Context, flag *domain.FeatureFlag) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
		}).
		Create(flag).Error
}
