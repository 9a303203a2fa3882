package service

import (
	"context"
	"errors"
	"testing"

	customerdomain "github.com/cohortlens/cohortlens/internal/customer/domain"
	marketdomain "github.com/cohortlens/cohortlens/internal/market/domain"
	"github.com/cohortlens/cohortlens/internal/recommendation/domain"
	usagedomain "github.com/cohortlens/cohortlens/internal/usage/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAdmission struct {
	err error
}

func (s *stubAdmission) Admit(_ context.Context, tenantID string) (*usagedomain.Receipt, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &usagedomain.Receipt{TenantID: tenantID}, nil
}

func (s *stubAdmission) Snapshot(context.Context, string) (*usagedomain.Snapshot, error) {
	return &usagedomain.Snapshot{}, nil
}

type stubCustomers struct {
	customers []customerdomain.Customer
	err       error
}

func (s *stubCustomers) List(context.Context, string, int) ([]customerdomain.Customer, error) {
	return s.customers, s.err
}

type stubMarket struct {
	reading *marketdomain.MarketVolatility
	err     error
}

func (s *stubMarket) Latest(context.Context) (*marketdomain.MarketVolatility, error) {
	return s.reading, s.err
}

type stubCompleter struct {
	configured bool
	answer     string
	err        error
	lastUser   string
}

func (s *stubCompleter) Configured() bool { return s.configured }

func (s *stubCompleter) Complete(_ context.Context, _, user string) (string, error) {
	s.lastUser = user
	return s.answer, s.err
}

func newRecommendation(admission usagedomain.Service, completer domain.Completer) domain.Service {
	customers := &stubCustomers{customers: []customerdomain.Customer{
		{ID: "c1", Age: 25, AnnualIncome: 95000, SpendingScore: 75},
		{ID: "c2", Age: 55, AnnualIncome: 60000, SpendingScore: 30},
	}}
	market := &stubMarket{reading: &marketdomain.MarketVolatility{Index: 42.5}}
	return New(admission, customers, market, completer, nil, zap.NewNop())
}

func TestRecommendUsesLLM(t *testing.T) {
	completer := &stubCompleter{configured: true, answer: "Target cluster 0 with premium offers."}
	svc := newRecommendation(&stubAdmission{}, completer)

	result, err := svc.Recommend(context.Background(), "tenant-a", "who should we upsell?")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceLLM, result.Source)
	assert.Equal(t, "Target cluster 0 with premium offers.", result.Recommendation)
	assert.Contains(t, completer.lastUser, "who should we upsell?")
	assert.Contains(t, completer.lastUser, "Market Volatility: 42.5")
	assert.Contains(t, completer.lastUser, "C0: n=1")
}

func TestRecommendFallsBackOnLLMFailure(t *testing.T) {
	completer := &stubCompleter{configured: true, err: errors.New("timeout")}
	svc := newRecommendation(&stubAdmission{}, completer)

	result, err := svc.Recommend(context.Background(), "tenant-a", "anything")
	require.NoError(t, err, "upstream failure must not surface to the caller")
	assert.Equal(t, domain.SourceRuleBased, result.Source)
	assert.Contains(t, result.Recommendation, "Rule-based recommendation")
}

func TestRecommendFallsBackWithoutCredentials(t *testing.T) {
	svc := newRecommendation(&stubAdmission{}, &stubCompleter{configured: false})

	result, err := svc.Recommend(context.Background(), "tenant-a", "anything")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceRuleBased, result.Source)
}

func TestRecommendQuotaExceeded(t *testing.T) {
	quotaErr := &usagedomain.QuotaExceededError{TenantID: "tenant-a", Limit: 5, Count: 5}
	completer := &stubCompleter{configured: true, answer: "unused"}
	svc := newRecommendation(&stubAdmission{err: quotaErr}, completer)

	_, err := svc.Recommend(context.Background(), "tenant-a", "anything")
	var got *usagedomain.QuotaExceededError
	require.True(t, errors.As(err, &got))
	assert.Empty(t, completer.lastUser, "LLM must not be called once quota is exhausted")
}
