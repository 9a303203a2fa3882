package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Usage handles GET /api/v2/usage.
func (s *Server) Usage(c *gin.Context) {
	tenantID := tenantFromContext(c)
	if tenantID == "" {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	snapshot, err := s.usageSvc.Snapshot(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tenant_id":           snapshot.TenantID,
		"month_key":           snapshot.MonthKey,
		"current_month_calls": snapshot.CallCount,
		"limit":               snapshot.Limit,
		"remaining":           snapshot.Remaining,
	})
}
