package server

import (
	"net/http"

	featuredomain "github.com/cohortlens/cohortlens/internal/feature/domain"
	"github.com/gin-gonic/gin"
)

type setFlagRequest struct {
	Flag    string `json:"flag" binding:"required"`
	Enabled *bool  `json:"enabled" binding:"required"`
}

// GetFlags handles GET /api/v2/admin/flags. Reads stay public so operators
// and dashboards can observe rollout state without credentials.
func (s *Server) GetFlags(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"flags":            s.featureSvc.All(),
		"migration_status": s.featureSvc.Status(),
	})
}

// SetFlag handles POST /api/v2/admin/flags.
func (s *Server) SetFlag(c *gin.Context) {
	var req setFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if !featuredomain.ValidFlag(req.Flag) {
		AbortWithError(c, newValidationError("flag", "unknown_flag", "flag name is not recognized"))
		return
	}

	if err := s.featureSvc.Set(c.Request.Context(), req.Flag, *req.Enabled); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"flags":            s.featureSvc.All(),
		"migration_status": s.featureSvc.Status(),
	})
}

// MigrateToV2 handles POST /api/v2/admin/migrate-to-v2: v2 becomes primary
// while v1 stays available for rollback.
func (s *Server) MigrateToV2(c *gin.Context) {
	ctx := c.Request.Context()
	if err := s.featureSvc.Set(ctx, featuredomain.FlagV2Primary, true); err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.featureSvc.Set(ctx, featuredomain.FlagV1Deprecated, false); err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.featureSvc.Set(ctx, featuredomain.FlagMigrationLogging, true); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "migration cutover initiated",
		"flags":            s.featureSvc.All(),
		"migration_status": s.featureSvc.Status(),
	})
}

// RollbackToV1 handles POST /api/v2/admin/rollback-to-v1.
func (s *Server) RollbackToV1(c *gin.Context) {
	ctx := c.Request.Context()
	if err := s.featureSvc.Set(ctx, featuredomain.FlagV2Primary, false); err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.featureSvc.Set(ctx, featuredomain.FlagV1Deprecated, false); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "rollback to v1 completed",
		"flags":            s.featureSvc.All(),
		"migration_status": s.featureSvc.Status(),
	})
}

// EnableShadowMode handles POST /api/v2/admin/enable-shadow-mode: v1 stays
// primary while v2 receives shadow copies of traffic.
func (s *Server) EnableShadowMode(c *gin.Context) {
	ctx := c.Request.Context()
	if err := s.featureSvc.Set(ctx, featuredomain.FlagShadowMode, true); err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.featureSvc.Set(ctx, featuredomain.FlagV2Enabled, true); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "shadow mode enabled",
		"flags":            s.featureSvc.All(),
		"migration_status": s.featureSvc.Status(),
	})
}

// CompleteV1Deprecation handles POST /api/v2/admin/complete-v1-deprecation.
func (s *Server) CompleteV1Deprecation(c *gin.Context) {
	ctx := c.Request.Context()
	if err := s.featureSvc.Set(ctx, featuredomain.FlagV2Primary, true); err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.featureSvc.Set(ctx, featuredomain.FlagV1Deprecated, true); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "v1 deprecation completed",
		"flags":            s.featureSvc.All(),
		"migration_status": s.featureSvc.Status(),
	})
}
