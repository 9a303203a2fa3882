package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/cohortlens/cohortlens/internal/clock"
	"github.com/cohortlens/cohortlens/internal/config"
	"github.com/cohortlens/cohortlens/internal/feature/domain"
	"github.com/cohortlens/cohortlens/internal/observability/metrics"
	"go.uber.org/zap"
)

type service struct {
	mu      sync.RWMutex
	flags   map[string]bool
	repo    domain.Repository
	clk     clock.Clock
	metrics *metrics.Metrics
	log     *zap.Logger
}

// New builds the flag cache: environment defaults first, then persisted
// overrides. A failed load leaves the defaults in place with a warning.
func New(cfg config.Config, repo domain.Repository, clk clock.Clock, m *metrics.Metrics, log *zap.Logger) domain.Service {
	s := &service{
		flags: map[string]bool{
			domain.FlagV2Primary:        cfg.Flags.V2Primary,
			domain.FlagV2Enabled:        cfg.Flags.V2Enabled,
			domain.FlagV1Deprecated:     cfg.Flags.V1Deprecated,
			domain.FlagMigrationLogging: cfg.Flags.MigrationLogging,
			domain.FlagShadowMode:       cfg.Flags.ShadowMode,
		},
		repo:    repo,
		clk:     clk,
		metrics: m,
		log:     log.Named("feature"),
	}
	s.loadOverrides(context.Background())
	return s
}

func (s *service) loadOverrides(ctx context.Context) {
	if s.repo == nil {
		return
	}
	persisted, err := s.repo.All(ctx)
	if err != nil {
		s.log.Warn("could not load persisted flag overrides, using defaults", zap.Error(err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range persisted {
		if domain.ValidFlag(f.Name) {
			s.flags[f.Name] = f.Enabled
		}
	}
}

func (s *service) IsEnabled(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[name]
}

func (s *service) All() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool, len(s.flags))
	for k, v := range s.flags {
		out[k] = v
	}
	return out
}

// Set applies the write in memory, then persists best-effort. A persistence
// failure is logged but does not fail the call: the in-memory value wins
// until restart.
func (s *service) Set(ctx context.Context, name string, enabled bool) error {
	if !domain.ValidFlag(name) {
		return fmt.Errorf("unknown flag %q", name)
	}

	s.mu.Lock()
	s.flags[name] = enabled
	s.mu.Unlock()

	s.metrics.RecordFlagWrite(ctx, name)

	if s.repo != nil {
		err := s.repo.Upsert(ctx, &domain.FeatureFlag{
			Name:      name,
			Enabled:   enabled,
			UpdatedAt: s.clk.Now(),
		})
		if err != nil {
			s.log.Warn("flag persisted in memory only",
				zap.String("flag", name),
				zap.Bool("enabled", enabled),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *service) Status() domain.MigrationStatus {
	flags := s.All()
	return domain.MigrationStatus{
		Phase:      domain.DerivePhase(flags),
		V1Active:   !flags[domain.FlagV1Deprecated],
		V2Active:   flags[domain.FlagV2Enabled],
		ShadowMode: flags[domain.FlagShadowMode],
	}
}
