package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type recommendationRequest struct {
	Query string `json:"query" binding:"required,min=3,max=1000"`
}

// NaturalRecommendations handles POST /api/v2/recommendations/natural.
func (s *Server) NaturalRecommendations(c *gin.Context) {
	var req recommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.recommendationSvc.Recommend(c.Request.Context(), tenantFromContext(c), req.Query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
