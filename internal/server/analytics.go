package server

import (
	"net/http"

	"github.com/cohortlens/cohortlens/internal/rules"
	"github.com/gin-gonic/gin"
)

type predictRequest struct {
	Age            int     `json:"age" binding:"required,gte=18,lte=100"`
	AnnualIncome   float64 `json:"annual_income" binding:"required,gt=0"`
	WorkExperience int     `json:"work_experience" binding:"gte=0,lte=80"`
	FamilySize     int     `json:"family_size" binding:"required,gte=1,lte=20"`
	Profession     string  `json:"profession"`
}

type segmentRow struct {
	CustomerID    string   `json:"CustomerID"`
	Age           *float64 `json:"Age" binding:"required"`
	AnnualIncome  *float64 `json:"Annual Income ($)" binding:"required"`
	SpendingScore *float64 `json:"Spending Score (1-100)" binding:"required"`
}

const maxSegmentRows = 10000

// PredictSpending handles POST /api/v2/predict-spending.
func (s *Server) PredictSpending(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.analyticsSvc.Predict(c.Request.Context(), tenantFromContext(c), rules.PredictInput{
		Age:            req.Age,
		AnnualIncome:   req.AnnualIncome,
		WorkExperience: req.WorkExperience,
		FamilySize:     req.FamilySize,
		Profession:     req.Profession,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Segment handles POST /api/v2/segment.
func (s *Server) Segment(c *gin.Context) {
	var req []segmentRow
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(req) == 0 {
		AbortWithError(c, newValidationError("body", "empty_batch", "at least one row is required"))
		return
	}
	if len(req) > maxSegmentRows {
		AbortWithError(c, newValidationError("body", "batch_too_large", "too many rows in one batch"))
		return
	}

	rows := make([]rules.SegmentRow, 0, len(req))
	for _, r := range req {
		rows = append(rows, rules.SegmentRow{
			CustomerID:    r.CustomerID,
			Age:           *r.Age,
			AnnualIncome:  *r.AnnualIncome,
			SpendingScore: *r.SpendingScore,
		})
	}

	result, err := s.analyticsSvc.Segment(c.Request.Context(), tenantFromContext(c), rows)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
