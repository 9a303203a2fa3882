package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health handles GET /health and GET /api/v2/health.
func (s *Server) Health(c *gin.Context) {
	dbStatus := "not_configured"
	if s.db != nil {
		dbStatus = "connected"
		if sqlDB, err := s.db.DB(); err != nil {
			dbStatus = "error"
		} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			dbStatus = "error"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   s.cfg.AppName,
		"version":   s.cfg.AppVersion,
		"db_status": dbStatus,
		"timestamp": s.clk.Now().Format(time.RFC3339),
	})
}

// AdminHealth handles GET /api/v2/admin/health.
func (s *Server) AdminHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": s.clk.Now().Format(time.RFC3339),
	})
}
