package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/cohortlens/cohortlens/internal/analytics/domain"
	"github.com/cohortlens/cohortlens/internal/clock"
	marketdomain "github.com/cohortlens/cohortlens/internal/market/domain"
	"github.com/cohortlens/cohortlens/internal/observability/metrics"
	"github.com/cohortlens/cohortlens/internal/rules"
	usagedomain "github.com/cohortlens/cohortlens/internal/usage/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Persisted segment rows per batch are capped; the response still covers
// every input row.
const maxPersistedSegments = 5000

// Volatility assumed when no market reading exists yet.
const defaultVolatility = 50

type service struct {
	clk       clock.Clock
	node      *snowflake.Node
	admission usagedomain.Service
	market    marketdomain.Repository
	repo      domain.Repository
	metrics   *metrics.Metrics
	log       *zap.Logger
}

// New builds the analytics service.
func New(
	clk clock.Clock,
	node *snowflake.Node,
	admission usagedomain.Service,
	market marketdomain.Repository,
	repo domain.Repository,
	m *metrics.Metrics,
	log *zap.Logger,
) domain.Service {
	return &service{
		clk:       clk,
		node:      node,
		admission: admission,
		market:    market,
		repo:      repo,
		metrics:   m,
		log:       log.Named("analytics"),
	}
}

func (s *service) Predict(ctx context.Context, tenantID string, input rules.PredictInput) (*domain.PredictResult, error) {
	if _, err := s.admission.Admit(ctx, tenantID); err != nil {
		return nil, err
	}

	score := rules.Score(input)
	confidence := rules.ConfidenceFor(score)
	confidence = rules.AdjustConfidence(confidence, s.latestVolatility(ctx))

	prediction := &domain.Prediction{
		ID:                s.node.Generate().String(),
		CustomerID:        fmt.Sprintf("api_%s", tenantID),
		PredictedSpending: score,
		Confidence:        confidence,
		RuleVersion:       rules.Version,
		FeaturesSnapshot: datatypes.JSONMap{
			"age":             input.Age,
			"annual_income":   input.AnnualIncome,
			"work_experience": input.WorkExperience,
			"family_size":     input.FamilySize,
			"profession":      input.Profession,
		},
		CreatedAt: s.clk.Now(),
	}
	if err := s.repo.CreatePrediction(ctx, prediction); err != nil {
		s.log.Warn("prediction not persisted", zap.Error(err))
	}

	s.metrics.RecordPrediction(ctx, confidence)
	return &domain.PredictResult{
		PredictedSpending: score,
		Confidence:        confidence,
		RuleVersion:       rules.Version,
	}, nil
}

func (s *service) Segment(ctx context.Context, tenantID string, rows []rules.SegmentRow) (*domain.SegmentResult, error) {
	if _, err := s.admission.Admit(ctx, tenantID); err != nil {
		return nil, err
	}

	clusters := rules.Segment(rows)

	persistCount := len(rows)
	if persistCount > maxPersistedSegments {
		persistCount = maxPersistedSegments
	}
	records := make([]domain.SegmentRecord, 0, persistCount)
	now := s.clk.Now()
	for i := 0; i < persistCount; i++ {
		customerID := rows[i].CustomerID
		if customerID == "" {
			customerID = fmt.Sprintf("api_%s_%d", tenantID, i)
		}
		records = append(records, domain.SegmentRecord{
			ID:          s.node.Generate().String(),
			CustomerID:  customerID,
			Cluster:     clusters[i],
			RuleVersion: rules.Version,
			CreatedAt:   now,
		})
	}
	if err := s.repo.CreateSegments(ctx, records); err != nil {
		s.log.Warn("segments not persisted", zap.Error(err))
	}

	s.metrics.RecordSegmentRows(ctx, len(rows))
	return &domain.SegmentResult{
		Clusters:    clusters,
		RuleVersion: rules.Version,
	}, nil
}

func (s *service) latestVolatility(ctx context.Context) float64 {
	reading, err := s.market.Latest(ctx)
	if err != nil {
		s.log.Warn("market volatility unavailable", zap.Error(err))
		return defaultVolatility
	}
	if reading == nil {
		return defaultVolatility
	}
	return reading.Index
}
