package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	authdomain "github.com/cohortlens/cohortlens/internal/auth/domain"
	usagedomain "github.com/cohortlens/cohortlens/internal/usage/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"invalid credentials", authdomain.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized"},
		{"service unavailable", ErrServiceUnavailable, http.StatusServiceUnavailable, "service_unavailable"},
		{
			"store unavailable wrapped",
			fmt.Errorf("%w: counter upsert: connection refused", usagedomain.ErrStoreUnavailable),
			http.StatusServiceUnavailable,
			"service_unavailable",
		},
		{"validation", newValidationError("age", "gte", "must be at least 18"), http.StatusBadRequest, "validation_error"},
		{
			"quota exceeded",
			&usagedomain.QuotaExceededError{TenantID: "t1", MonthKey: "2026-03", Limit: 100, Count: 100},
			http.StatusTooManyRequests,
			"quota_exceeded",
		},
		{"service disabled", &ServiceDisabledError{Phase: "UNKNOWN"}, http.StatusServiceUnavailable, "service_disabled"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		{"nil error", nil, http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantType, payload.Type)
		})
	}
}

func TestMapErrorQuotaPayloadCarriesCounts(t *testing.T) {
	status, payload := mapError(&usagedomain.QuotaExceededError{Limit: 1000, Count: 1000})
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, int64(1000), payload.Limit)
	assert.Equal(t, int64(1000), payload.Current)
}
