package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cohortlens/cohortlens/internal/clock"
	"github.com/cohortlens/cohortlens/internal/config"
	"github.com/cohortlens/cohortlens/internal/feature/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRepo struct {
	flags     []domain.FeatureFlag
	allErr    error
	upsertErr error
	upserted  []domain.FeatureFlag
}

func (s *stubRepo) All(context.Context) ([]domain.FeatureFlag, error) {
	return s.flags, s.allErr
}

func (s *stubRepo) Upsert(_ context.Context, flag *domain.FeatureFlag) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserted = append(s.upserted, *flag)
	return nil
}

func newTestService(repo domain.Repository, defaults config.FlagDefaults) domain.Service {
	cfg := config.Config{Flags: defaults}
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	return New(cfg, repo, clk, nil, zap.NewNop())
}

func TestDerivePhaseTable(t *testing.T) {
	cases := []struct {
		name                                           string
		v2Primary, v2Enabled, v1Deprecated, shadowMode bool
		want                                           string
	}{
		{"beta", false, true, false, false, domain.Phase1Beta},
		{"shadow", false, true, false, true, domain.Phase2BetaShadow},
		{"shadow without v2", false, false, false, true, domain.Phase2BetaShadow},
		{"cutover", true, true, false, false, domain.Phase3Cutover},
		{"cutover beats shadow", true, true, false, true, domain.Phase3Cutover},
		{"complete", true, true, true, false, domain.Phase4Complete},
		{"killswitch during beta", false, false, false, false, domain.PhaseUnknown},
		{"deprecated without primary", false, true, true, false, domain.PhaseUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.DerivePhase(map[string]bool{
				domain.FlagV2Primary:    tc.v2Primary,
				domain.FlagV2Enabled:    tc.v2Enabled,
				domain.FlagV1Deprecated: tc.v1Deprecated,
				domain.FlagShadowMode:   tc.shadowMode,
			})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDefaultsSeedCache(t *testing.T) {
	svc := newTestService(&stubRepo{}, config.FlagDefaults{V2Enabled: true})

	assert.True(t, svc.IsEnabled(domain.FlagV2Enabled))
	assert.False(t, svc.IsEnabled(domain.FlagV2Primary))
	assert.Equal(t, domain.Phase1Beta, svc.Status().Phase)
}

func TestPersistedOverridesWinOverDefaults(t *testing.T) {
	repo := &stubRepo{flags: []domain.FeatureFlag{
		{Name: domain.FlagV2Primary, Enabled: true},
		{Name: "not_a_real_flag", Enabled: true},
	}}
	svc := newTestService(repo, config.FlagDefaults{V2Enabled: true})

	assert.True(t, svc.IsEnabled(domain.FlagV2Primary))
	assert.False(t, svc.IsEnabled("not_a_real_flag"))
	assert.Equal(t, domain.Phase3Cutover, svc.Status().Phase)
}

func TestLoadFailureKeepsDefaults(t *testing.T) {
	repo := &stubRepo{allErr: errors.New("db down")}
	svc := newTestService(repo, config.FlagDefaults{V2Enabled: true})

	assert.True(t, svc.IsEnabled(domain.FlagV2Enabled))
}

func TestSetRejectsUnknownFlag(t *testing.T) {
	svc := newTestService(&stubRepo{}, config.FlagDefaults{V2Enabled: true})

	err := svc.Set(context.Background(), "v3_enabled", true)
	require.Error(t, err)
}

func TestSetPersistsAndUpdatesMemory(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, config.FlagDefaults{V2Enabled: true})

	require.NoError(t, svc.Set(context.Background(), domain.FlagShadowMode, true))
	assert.True(t, svc.IsEnabled(domain.FlagShadowMode))
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, domain.FlagShadowMode, repo.upserted[0].Name)
	assert.True(t, repo.upserted[0].Enabled)
}

func TestSetSucceedsWhenPersistenceFails(t *testing.T) {
	repo := &stubRepo{upsertErr: errors.New("db down")}
	svc := newTestService(repo, config.FlagDefaults{V2Enabled: true})

	require.NoError(t, svc.Set(context.Background(), domain.FlagV2Enabled, false))
	assert.False(t, svc.IsEnabled(domain.FlagV2Enabled))
}
