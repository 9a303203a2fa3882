package domain

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

// Subscription binds a tenant to a plan with optional usage limits.
type Subscription struct {
	ID        string            `gorm:"column:id;primaryKey" json:"id"`
	TenantID  string            `gorm:"column:tenant_id;index" json:"tenant_id"`
	PlanCode  string            `gorm:"column:plan_code" json:"plan_code"`
	Status    string            `gorm:"column:status" json:"status"`
	Limits    datatypes.JSONMap `gorm:"column:limits" json:"limits"`
	StartsAt  time.Time         `gorm:"column:starts_at" json:"starts_at"`
	EndsAt    *time.Time        `gorm:"column:ends_at" json:"ends_at,omitempty"`
	CreatedAt time.Time         `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time         `gorm:"column:updated_at" json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

const StatusActive = "active"

// MonthlyCallLimit reads the max_api_calls_per_month entry from the plan
// limits. The second return is false when the plan carries no such limit.
func (s Subscription) MonthlyCallLimit() (int64, bool) {
	if s.Limits == nil {
		return 0, false
	}
	raw, ok := s.Limits["max_api_calls_per_month"]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// Repository reads subscription records.
type Repository interface {
	ActiveForTenant(ctx context.Context, tenantID string, now time.Time) (*Subscription, error)
}
