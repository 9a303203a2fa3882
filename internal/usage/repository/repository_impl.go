package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cohortlens/cohortlens/internal/usage/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// New builds the gorm-backed usage counter repository.
func New(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

// EnsureCounter inserts the month's row at zero; concurrent inserts are
// harmless because the conflict on (tenant_id, month_key) is ignored.
func (r *repository) EnsureCounter(ctx context.Context, counter *domain.UsageCounter) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "month_key"}},
			DoNothing: true,
		}).
		Create(counter).Error
}

// IncrementIfBelow performs the conditional increment in a single UPDATE so
// that concurrent admissions cannot push the counter past the limit.
func (r *repository) IncrementIfBelow(ctx context.Context, tenantID, monthKey string, limit int64, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE usage_counters
		 SET call_count = call_count + 1, last_called_at = ?, updated_at = ?
		 WHERE tenant_id = ? AND month_key = ? AND call_count < ?`,
		now, now, tenantID, monthKey, limit,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) Get(ctx context.Context, tenantID, monthKey string) (*domain.UsageCounter, error) {
	var counter domain.UsageCounter
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND month_key = ?", tenantID, monthKey).
		First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &counter, nil
}
