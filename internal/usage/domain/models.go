package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrStoreUnavailable marks a quota decision that could not be made because
// the counter store was unreachable. Admission cannot proceed safely without
// a count, so callers surface this as a service-unavailable condition.
var ErrStoreUnavailable = errors.New("usage store unavailable")

// UsageCounter tracks billable API calls per tenant and calendar month.
// The (tenant_id, month_key) pair is unique; month_key is "YYYY-MM" in UTC.
type UsageCounter struct {
	ID           string     `gorm:"column:id;primaryKey" json:"id"`
	TenantID     string     `gorm:"column:tenant_id;uniqueIndex:idx_usage_tenant_month" json:"tenant_id"`
	MonthKey     string     `gorm:"column:month_key;uniqueIndex:idx_usage_tenant_month" json:"month_key"`
	CallCount    int64      `gorm:"column:call_count" json:"call_count"`
	LastCalledAt *time.Time `gorm:"column:last_called_at" json:"last_called_at,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (UsageCounter) TableName() string {
	return "usage_counters"
}

// MonthKey renders t as the calendar-month bucket key in UTC.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// Receipt describes a successful admission.
type Receipt struct {
	TenantID  string `json:"tenant_id"`
	MonthKey  string `json:"month_key"`
	CallCount int64  `json:"call_count"`
	Limit     int64  `json:"limit"`
}

// Snapshot is the read-only usage view for the current month.
type Snapshot struct {
	TenantID  string `json:"tenant_id"`
	MonthKey  string `json:"month_key"`
	CallCount int64  `json:"call_count"`
	Limit     int64  `json:"limit"`
	Remaining int64  `json:"remaining"`
}

// QuotaExceededError is returned when a tenant has exhausted its monthly quota.
type QuotaExceededError struct {
	TenantID string
	MonthKey string
	Limit    int64
	Count    int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("monthly call limit reached for tenant %s (%d/%d in %s)",
		e.TenantID, e.Count, e.Limit, e.MonthKey)
}

// Service admits billable calls against the tenant's monthly quota.
type Service interface {
	// Admit atomically reserves one call for the tenant's current month.
	// It returns *QuotaExceededError when the quota is exhausted.
	Admit(ctx context.Context, tenantID string) (*Receipt, error)
	// Snapshot reports current usage without consuming quota.
	Snapshot(ctx context.Context, tenantID string) (*Snapshot, error)
}

// Repository persists usage counters.
type Repository interface {
	// EnsureCounter creates the month's counter row at zero if absent.
	EnsureCounter(ctx context.Context, counter *UsageCounter) error
	// IncrementIfBelow bumps call_count by one only while it is below limit.
	// It reports whether the increment was applied.
	IncrementIfBelow(ctx context.Context, tenantID, monthKey string, limit int64, now time.Time) (bool, error)
	// Get returns the counter for the month, or nil when absent.
	Get(ctx context.Context, tenantID, monthKey string) (*UsageCounter, error)
}
