package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cohortlens/cohortlens/internal/auth/domain"
	"github.com/cohortlens/cohortlens/internal/clock"
	"github.com/cohortlens/cohortlens/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type service struct {
	cfg  config.Config
	clk  clock.Clock
	repo domain.Repository
	log  *zap.Logger
}

// New builds the token service.
func New(cfg config.Config, clk clock.Clock, repo domain.Repository, log *zap.Logger) domain.Service {
	return &service{cfg: cfg, clk: clk, repo: repo, log: log.Named("auth")}
}

func (s *service) Login(ctx context.Context, username, password string) (*domain.Token, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	tenantID, err := s.authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	expiresIn := s.cfg.JWTExpireSeconds
	claims := domain.Claims{
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expiresIn) * time.Second)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.AuthJWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &domain.Token{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   expiresIn,
	}, nil
}

// authenticate resolves the caller's tenant. Stored users win; the configured
// default credentials remain as a bootstrap fallback when no record exists.
func (s *service) authenticate(ctx context.Context, username, password string) (string, error) {
	if s.repo != nil {
		user, err := s.repo.FindByUsername(ctx, username)
		if err != nil {
			s.log.Warn("user lookup failed, trying default credentials", zap.Error(err))
		} else if user != nil {
			if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
				return "", domain.ErrInvalidCredentials
			}
			tenantID := user.TenantID
			if tenantID == "" {
				tenantID = user.Username
			}
			return tenantID, nil
		}
	}

	if username == s.cfg.DefaultAuthUser && password == s.cfg.DefaultAuthPass {
		return username, nil
	}
	return "", domain.ErrInvalidCredentials
}

func (s *service) Verify(tokenString string) (*domain.Claims, error) {
	claims := &domain.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.AuthJWTSecret), nil
	}, jwt.WithTimeFunc(s.clk.Now))
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidCredentials
	}
	return claims, nil
}
