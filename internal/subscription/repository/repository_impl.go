package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cohortlens/cohortlens/internal/subscription/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New builds the gorm-backed subscription repository.
func New(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

// ActiveForTenant returns the most-recently-created subscription whose
// ends_at is null or in the future; ties break on creation timestamp.
func (r *repository) ActiveForTenant(ctx context.Context, tenantID string, now time.Time) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("ends_at IS NULL OR ends_at > ?", now).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}
