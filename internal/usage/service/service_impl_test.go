package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cohortlens/cohortlens/internal/clock"
	"github.com/cohortlens/cohortlens/internal/config"
	subscriptiondomain "github.com/cohortlens/cohortlens/internal/subscription/domain"
	subscriptionrepo "github.com/cohortlens/cohortlens/internal/subscription/repository"
	"github.com/cohortlens/cohortlens/internal/usage/domain"
	usagerepo "github.com/cohortlens/cohortlens/internal/usage/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.UsageCounter{}, &subscriptiondomain.Subscription{}))
	return db
}

func newTestService(t *testing.T, db *gorm.DB, clk clock.Clock, defaultLimit int64) domain.Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	cfg := config.Config{DefaultMonthlyCallLimit: defaultLimit}
	return New(cfg, clk, node, usagerepo.New(db), subscriptionrepo.New(db), nil, zap.NewNop())
}

func TestAdmitCountsUpToLimit(t *testing.T) {
	db := newTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, clk, 3)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		receipt, err := svc.Admit(ctx, "tenant-a")
		require.NoError(t, err)
		assert.Equal(t, i, receipt.CallCount)
		assert.Equal(t, int64(3), receipt.Limit)
		assert.Equal(t, "2026-03", receipt.MonthKey)
	}

	_, err := svc.Admit(ctx, "tenant-a")
	var quotaErr *domain.QuotaExceededError
	require.True(t, errors.As(err, &quotaErr))
	assert.Equal(t, int64(3), quotaErr.Limit)
	assert.Equal(t, int64(3), quotaErr.Count)
	assert.Equal(t, "2026-03", quotaErr.MonthKey)
}

func TestAdmitNeverExceedsLimitConcurrently(t *testing.T) {
	db := newTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, clk, 5)
	ctx := context.Background()

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Admit(ctx, "tenant-a")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	allowed, denied := 0, 0
	for err := range results {
		if err == nil {
			allowed++
			continue
		}
		var quotaErr *domain.QuotaExceededError
		require.True(t, errors.As(err, &quotaErr))
		denied++
	}
	assert.Equal(t, 5, allowed)
	assert.Equal(t, attempts-5, denied)

	snap, err := svc.Snapshot(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, int64(5), snap.CallCount)
}

func TestAdmitResetsOnMonthRollover(t *testing.T) {
	db := newTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, clk, 1)
	ctx := context.Background()

	_, err := svc.Admit(ctx, "tenant-a")
	require.NoError(t, err)
	_, err = svc.Admit(ctx, "tenant-a")
	var quotaErr *domain.QuotaExceededError
	require.True(t, errors.As(err, &quotaErr))

	clk.Advance(2 * time.Hour) // crosses into February

	receipt, err := svc.Admit(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, "2026-02", receipt.MonthKey)
	assert.Equal(t, int64(1), receipt.CallCount)
}

func TestAdmitIsolatesTenants(t *testing.T) {
	db := newTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, clk, 1)
	ctx := context.Background()

	_, err := svc.Admit(ctx, "tenant-a")
	require.NoError(t, err)
	_, err = svc.Admit(ctx, "tenant-a")
	require.Error(t, err)

	receipt, err := svc.Admit(ctx, "tenant-b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), receipt.CallCount)
}

func TestAdmitUsesSubscriptionLimit(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFakeClock(now)
	svc := newTestService(t, db, clk, 100)
	ctx := context.Background()

	require.NoError(t, db.Create(&subscriptiondomain.Subscription{
		ID:       "sub-1",
		TenantID: "tenant-a",
		PlanCode: "starter",
		Status:   subscriptiondomain.StatusActive,
		Limits:   datatypes.JSONMap{"max_api_calls_per_month": float64(2)},
		StartsAt: now.AddDate(0, -1, 0),
	}).Error)

	_, err := svc.Admit(ctx, "tenant-a")
	require.NoError(t, err)
	_, err = svc.Admit(ctx, "tenant-a")
	require.NoError(t, err)

	_, err = svc.Admit(ctx, "tenant-a")
	var quotaErr *domain.QuotaExceededError
	require.True(t, errors.As(err, &quotaErr))
	assert.Equal(t, int64(2), quotaErr.Limit)
}

func TestSnapshotWithoutUsage(t *testing.T) {
	db := newTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, clk, 10)

	snap, err := svc.Snapshot(context.Background(), "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.CallCount)
	assert.Equal(t, int64(10), snap.Limit)
	assert.Equal(t, int64(10), snap.Remaining)
}
