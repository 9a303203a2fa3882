package service

import (
	"context"
	"testing"
	"time"

	"github.com/cohortlens/cohortlens/internal/auth/domain"
	"github.com/cohortlens/cohortlens/internal/clock"
	"github.com/cohortlens/cohortlens/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type stubUserRepo struct {
	user *domain.User
	err  error
}

func (s *stubUserRepo) FindByUsername(context.Context, string) (*domain.User, error) {
	return s.user, s.err
}

func testConfig() config.Config {
	return config.Config{
		AuthJWTSecret:    "test-secret",
		JWTExpireSeconds: 3600,
		DefaultAuthUser:  "admin",
		DefaultAuthPass:  "admin",
	}
}

func TestLoginWithStoredUser(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &stubUserRepo{user: &domain.User{Username: "alice", PasswordHash: string(hash), TenantID: "acme"}}
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	svc := New(testConfig(), clk, repo, zap.NewNop())

	token, err := svc.Login(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)
	assert.Equal(t, 3600, token.ExpiresIn)

	claims, err := svc.Verify(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "acme", claims.TenantID)
	assert.Equal(t, "alice", claims.Subject)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &stubUserRepo{user: &domain.User{Username: "alice", PasswordHash: string(hash)}}
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	svc := New(testConfig(), clk, repo, zap.NewNop())

	_, err = svc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginDefaultCredentialsFallback(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	svc := New(testConfig(), clk, &stubUserRepo{}, zap.NewNop())

	token, err := svc.Login(context.Background(), "admin", "admin")
	require.NoError(t, err)

	claims, err := svc.Verify(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.TenantID)
}

func TestLoginUnknownUser(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	svc := New(testConfig(), clk, &stubUserRepo{}, zap.NewNop())

	_, err := svc.Login(context.Background(), "mallory", "whatever")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	svc := New(testConfig(), clk, &stubUserRepo{}, zap.NewNop())

	token, err := svc.Login(context.Background(), "admin", "admin")
	require.NoError(t, err)

	clk.Advance(2 * time.Hour)
	_, err = svc.Verify(token.AccessToken)
	assert.Error(t, err)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	svc := New(testConfig(), clk, &stubUserRepo{}, zap.NewNop())

	token, err := svc.Login(context.Background(), "admin", "admin")
	require.NoError(t, err)

	_, err = svc.Verify(token.AccessToken + "x")
	assert.Error(t, err)
}
