package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	featuredomain "github.com/cohortlens/cohortlens/internal/feature/domain"
	"github.com/cohortlens/cohortlens/internal/observability/logger"
	"github.com/cohortlens/cohortlens/internal/tenantctx"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const tenantIDKey = "tenant_id"

// AuthRequired verifies the bearer token and stashes the tenant on both the
// gin context and the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		claims, err := s.authSvc.Verify(strings.TrimSpace(token))
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		tenantID := claims.TenantID
		if tenantID == "" {
			tenantID = claims.Subject
		}
		c.Set(tenantIDKey, tenantID)
		c.Request = c.Request.WithContext(tenantctx.WithTenantID(c.Request.Context(), tenantID))
		c.Next()
	}
}

// KillswitchRequired rejects metered traffic while v2_enabled is off.
func (s *Server) KillswitchRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.featureSvc.IsEnabled(featuredomain.FlagV2Enabled) {
			AbortWithError(c, &ServiceDisabledError{Phase: s.featureSvc.Status().Phase})
			return
		}
		c.Next()
	}
}

// MigrationLogging emits one extra line per request while the
// migration_logging flag is on, used to track traffic during cutover.
func (s *Server) MigrationLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.featureSvc.IsEnabled(featuredomain.FlagMigrationLogging) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		logger.FromContext(c.Request.Context()).Info("migration traffic",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("phase", s.featureSvc.Status().Phase),
		)
	}
}

// RateLimit throttles by client IP through the redis token bucket. It is a
// no-op when the limiter is not configured, and fails open on redis errors.
func (s *Server) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil {
			c.Next()
			return
		}

		key := "ratelimit:ip:" + c.ClientIP()
		result, err := s.limiter.Allow(c.Request.Context(), key, s.cfg.RateLimit.Rate, s.cfg.RateLimit.Burst)
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: errorPayload{
				Type:    "rate_limited",
				Message: "too many requests",
			}})
			return
		}
		c.Next()
	}
}

func tenantFromContext(c *gin.Context) string {
	if v, ok := c.Get(tenantIDKey); ok {
		if tenantID, ok := v.(string); ok {
			return tenantID
		}
	}
	if tenantID, ok := tenantctx.TenantID(c.Request.Context()); ok {
		return tenantID
	}
	return ""
}
