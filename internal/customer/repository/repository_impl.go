package repository

import (
	"context"

	"github.com/cohortlens/cohortlens/internal/customer/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New builds the gorm-backed customer repository.
func New(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, tenantID string, limit int) ([]domain.Customer, error) {
	if limit <= 0 {
		limit = 100
	}
	var customers []domain.Customer
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}
