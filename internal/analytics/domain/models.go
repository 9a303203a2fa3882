package domain

import (
	"context"
	"time"

	"github.com/cohortlens/cohortlens/internal/rules"
	"gorm.io/datatypes"
)

// Prediction is one persisted spending prediction.
type Prediction struct {
	ID                string            `gorm:"column:id;primaryKey" json:"id"`
	CustomerID        string            `gorm:"column:customer_id;index" json:"customer_id"`
	PredictedSpending float64           `gorm:"column:predicted_spending" json:"predicted_spending"`
	Confidence        string            `gorm:"column:confidence" json:"confidence"`
	RuleVersion       string            `gorm:"column:rule_version" json:"rule_version"`
	FeaturesSnapshot  datatypes.JSONMap `gorm:"column:features_snapshot" json:"features_snapshot"`
	CreatedAt         time.Time         `gorm:"column:created_at" json:"created_at"`
}

func (Prediction) TableName() string {
	return "predictions"
}

// SegmentRecord is one persisted cluster assignment from a batch.
type SegmentRecord struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	CustomerID  string    `gorm:"column:customer_id;index" json:"customer_id"`
	Cluster     int       `gorm:"column:cluster" json:"cluster"`
	RuleVersion string    `gorm:"column:rule_version" json:"rule_version"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (SegmentRecord) TableName() string {
	return "segments"
}

// PredictResult is the prediction response payload.
type PredictResult struct {
	PredictedSpending float64 `json:"predicted_spending"`
	Confidence        string  `json:"confidence"`
	RuleVersion       string  `json:"rule_version"`
}

// SegmentResult is the batch segmentation response payload.
type SegmentResult struct {
	Clusters    []int  `json:"clusters"`
	RuleVersion string `json:"rule_version"`
}

// Service runs the quota-gated analytics operations.
type Service interface {
	// Predict scores one customer profile. Quota is consumed first.
	Predict(ctx context.Context, tenantID string, input rules.PredictInput) (*PredictResult, error)
	// Segment buckets a batch of rows. Quota is consumed once per batch.
	Segment(ctx context.Context, tenantID string, rows []rules.SegmentRow) (*SegmentResult, error)
}

// Repository persists prediction and segmentation results.
type Repository interface {
	CreatePrediction(ctx context.Context, p *Prediction) error
	CreateSegments(ctx context.Context, records []SegmentRecord) error
}
