package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxCustomerPageSize = 500

// ListCustomers handles GET /api/v2/customers.
func (s *Server) ListCustomers(c *gin.Context) {
	tenantID := tenantFromContext(c)
	if tenantID == "" {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	if limit > maxCustomerPageSize {
		limit = maxCustomerPageSize
	}

	customers, err := s.customerRepo.List(c.Request.Context(), tenantID, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"customers": customers, "count": len(customers)})
}
