package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/cohortlens/cohortlens/internal/clock"
	"github.com/cohortlens/cohortlens/internal/config"
	"github.com/cohortlens/cohortlens/internal/observability/metrics"
	subscriptiondomain "github.com/cohortlens/cohortlens/internal/subscription/domain"
	"github.com/cohortlens/cohortlens/internal/usage/domain"
	"go.uber.org/zap"
)

type service struct {
	cfg           config.Config
	clk           clock.Clock
	node          *snowflake.Node
	repo          domain.Repository
	subscriptions subscriptiondomain.Repository
	metrics       *metrics.Metrics
	log           *zap.Logger
}

// New builds the admission service enforcing per-tenant monthly quotas.
func New(
	cfg config.Config,
	clk clock.Clock,
	node *snowflake.Node,
	repo domain.Repository,
	subscriptions subscriptiondomain.Repository,
	m *metrics.Metrics,
	log *zap.Logger,
) domain.Service {
	return &service{
		cfg:           cfg,
		clk:           clk,
		node:          node,
		repo:          repo,
		subscriptions: subscriptions,
		metrics:       m,
		log:           log.Named("usage"),
	}
}

func (s *service) Admit(ctx context.Context, tenantID string) (*domain.Receipt, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, fmt.Errorf("tenant id is required")
	}

	now := s.clk.Now()
	monthKey := domain.MonthKey(now)

	limit, err := s.limitFor(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.EnsureCounter(ctx, &domain.UsageCounter{
		ID:        s.node.Generate().String(),
		TenantID:  tenantID,
		MonthKey:  monthKey,
		CallCount: 0,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("%w: ensure counter: %v", domain.ErrStoreUnavailable, err)
	}

	applied, err := s.repo.IncrementIfBelow(ctx, tenantID, monthKey, limit, now)
	if err != nil {
		return nil, fmt.Errorf("%w: increment counter: %v", domain.ErrStoreUnavailable, err)
	}

	counter, err := s.repo.Get(ctx, tenantID, monthKey)
	if err != nil {
		return nil, fmt.Errorf("%w: read counter: %v", domain.ErrStoreUnavailable, err)
	}
	count := int64(0)
	if counter != nil {
		count = counter.CallCount
	}

	if !applied {
		s.metrics.RecordAdmissionDenied(ctx, "admit")
		s.log.Warn("quota exceeded",
			zap.String("tenant_id", tenantID),
			zap.String("month_key", monthKey),
			zap.Int64("limit", limit),
			zap.Int64("call_count", count),
		)
		return nil, &domain.QuotaExceededError{
			TenantID: tenantID,
			MonthKey: monthKey,
			Limit:    limit,
			Count:    count,
		}
	}

	s.metrics.RecordAdmissionAllowed(ctx, "admit")
	return &domain.Receipt{
		TenantID:  tenantID,
		MonthKey:  monthKey,
		CallCount: count,
		Limit:     limit,
	}, nil
}

func (s *service) Snapshot(ctx context.Context, tenantID string) (*domain.Snapshot, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, fmt.Errorf("tenant id is required")
	}

	now := s.clk.Now()
	monthKey := domain.MonthKey(now)

	limit, err := s.limitFor(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	counter, err := s.repo.Get(ctx, tenantID, monthKey)
	if err != nil {
		return nil, fmt.Errorf("%w: read counter: %v", domain.ErrStoreUnavailable, err)
	}
	count := int64(0)
	if counter != nil {
		count = counter.CallCount
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return &domain.Snapshot{
		TenantID:  tenantID,
		MonthKey:  monthKey,
		CallCount: count,
		Limit:     limit,
		Remaining: remaining,
	}, nil
}

// limitFor resolves the monthly call limit from the tenant's active
// subscription, falling back to the configured default.
func (s *service) limitFor(ctx context.Context, tenantID string) (int64, error) {
	sub, err := s.subscriptions.ActiveForTenant(ctx, tenantID, s.clk.Now())
	if err != nil {
		return 0, fmt.Errorf("%w: resolve subscription: %v", domain.ErrStoreUnavailable, err)
	}
	if sub != nil {
		if limit, ok := sub.MonthlyCallLimit(); ok && limit > 0 {
			return limit, nil
		}
	}
	return s.cfg.DefaultMonthlyCallLimit, nil
}
