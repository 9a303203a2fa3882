package repository

import (
	"context"
	"errors"

	"github.com/cohortlens/cohortlens/internal/market/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New builds the gorm-backed market volatility repository.
func New(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Latest(ctx context.Context) (*domain.MarketVolatility, error) {
	var reading domain.MarketVolatility
	err := r.db.WithContext(ctx).Order("observed_at DESC").First(&reading).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reading, nil
}
