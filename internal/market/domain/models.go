package domain

import (
	"context"
	"time"
)

// MarketVolatility is a point-in-time market risk reading in [0,100].
// High readings downgrade prediction confidence.
type MarketVolatility struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	Index      float64   `gorm:"column:volatility_index" json:"volatility_index"`
	ObservedAt time.Time `gorm:"column:observed_at;index" json:"observed_at"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (MarketVolatility) TableName() string {
	return "market_volatility"
}

// Repository reads volatility readings.
type Repository interface {
	// Latest returns the most recent reading, or nil when none exists.
	Latest(ctx context.Context) (*MarketVolatility, error)
}
