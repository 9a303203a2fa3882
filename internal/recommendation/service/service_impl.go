package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	customerdomain "github.com/cohortlens/cohortlens/internal/customer/domain"
	marketdomain "github.com/cohortlens/cohortlens/internal/market/domain"
	"github.com/cohortlens/cohortlens/internal/observability/metrics"
	"github.com/cohortlens/cohortlens/internal/recommendation/domain"
	"github.com/cohortlens/cohortlens/internal/rules"
	usagedomain "github.com/cohortlens/cohortlens/internal/usage/domain"
	"go.uber.org/zap"
)

// Context is built from at most this many customers.
const contextCustomerLimit = 500

const systemPrompt = "You are a CRM analytics assistant. Provide concise, actionable recommendations based on segment context."

type service struct {
	admission usagedomain.Service
	customers customerdomain.Repository
	market    marketdomain.Repository
	completer domain.Completer
	metrics   *metrics.Metrics
	log       *zap.Logger
}

// New builds the recommendation service.
func New(
	admission usagedomain.Service,
	customers customerdomain.Repository,
	market marketdomain.Repository,
	completer domain.Completer,
	m *metrics.Metrics,
	log *zap.Logger,
) domain.Service {
	return &service{
		admission: admission,
		customers: customers,
		market:    market,
		completer: completer,
		metrics:   m,
		log:       log.Named("recommendation"),
	}
}

func (s *service) Recommend(ctx context.Context, tenantID, query string) (*domain.Result, error) {
	if _, err := s.admission.Admit(ctx, tenantID); err != nil {
		return nil, err
	}

	segmentContext := s.buildContext(ctx, tenantID)

	if s.completer != nil && s.completer.Configured() {
		prompt := fmt.Sprintf("Question: %s\nContext: %s", query, segmentContext)
		answer, err := s.completer.Complete(ctx, systemPrompt, prompt)
		if err == nil {
			s.metrics.RecordRecommendation(ctx, domain.SourceLLM)
			return &domain.Result{Recommendation: answer, Source: domain.SourceLLM}, nil
		}
		s.log.Warn("llm unavailable, falling back to rule-based recommendation", zap.Error(err))
	}

	s.metrics.RecordRecommendation(ctx, domain.SourceRuleBased)
	return &domain.Result{
		Recommendation: fmt.Sprintf(
			"Rule-based recommendation: prioritize C0/C2 for upsell, C1 for retention, C4 for reactivation. Context: %s",
			segmentContext,
		),
		Source: domain.SourceRuleBased,
	}, nil
}

// buildContext summarizes the tenant's segment distribution plus the latest
// market volatility. Failures degrade to a partial context, never an error.
func (s *service) buildContext(ctx context.Context, tenantID string) string {
	volatility := "Unknown"
	if reading, err := s.market.Latest(ctx); err != nil {
		s.log.Warn("market volatility unavailable", zap.Error(err))
	} else if reading != nil {
		volatility = fmt.Sprintf("%.1f", reading.Index)
	}

	customers, err := s.customers.List(ctx, tenantID, contextCustomerLimit)
	if err != nil {
		s.log.Warn("customer context unavailable", zap.Error(err))
	}

	rows := make([]rules.SegmentRow, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, rules.SegmentRow{
			CustomerID:    c.ID,
			Age:           float64(c.Age),
			AnnualIncome:  c.AnnualIncome,
			SpendingScore: c.SpendingScore,
		})
	}
	clusters := rules.Segment(rows)

	return fmt.Sprintf("Market Volatility: %s. Segments: %s", volatility, summarize(rows, clusters))
}

type clusterStats struct {
	count       int
	avgIncome   float64
	avgSpending float64
}

func summarize(rows []rules.SegmentRow, clusters []int) string {
	buckets := map[int]clusterStats{}
	for i, cluster := range clusters {
		prev := buckets[cluster]
		count := prev.count + 1
		buckets[cluster] = clusterStats{
			count:       count,
			avgIncome:   (prev.avgIncome*float64(prev.count) + rows[i].AnnualIncome) / float64(count),
			avgSpending: (prev.avgSpending*float64(prev.count) + rows[i].SpendingScore) / float64(count),
		}
	}

	ids := make([]int, 0, len(buckets))
	for id := range buckets {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		stats := buckets[id]
		parts = append(parts, fmt.Sprintf("C%d: n=%d, income=%.0f, spend=%.1f",
			id, stats.count, stats.avgIncome, stats.avgSpending))
	}
	return strings.Join(parts, " | ")
}
