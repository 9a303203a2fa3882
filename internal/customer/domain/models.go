package domain

import (
	"context"
	"time"
)

// Customer is one CRM record used for segmentation context and listings.
type Customer struct {
	ID             string    `gorm:"column:id;primaryKey" json:"id"`
	TenantID       string    `gorm:"column:tenant_id;index" json:"tenant_id"`
	Name           string    `gorm:"column:name" json:"name"`
	Age            int       `gorm:"column:age" json:"age"`
	AnnualIncome   float64   `gorm:"column:annual_income" json:"annual_income"`
	SpendingScore  float64   `gorm:"column:spending_score" json:"spending_score"`
	Profession     string    `gorm:"column:profession" json:"profession"`
	WorkExperience int       `gorm:"column:work_experience" json:"work_experience"`
	FamilySize     int       `gorm:"column:family_size" json:"family_size"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

// Repository reads customer records.
type Repository interface {
	// List returns up to limit customers for the tenant, newest first.
	List(ctx context.Context, tenantID string, limit int) ([]Customer, error)
}
