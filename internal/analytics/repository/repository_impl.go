package repository

import (
	"context"

	"github.com/cohortlens/cohortlens/internal/analytics/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New builds the gorm-backed analytics result repository.
func New(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) CreatePrediction(ctx context.Context, p *domain.Prediction) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) CreateSegments(ctx context.Context, records []domain.SegmentRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(records, 500).Error
}
