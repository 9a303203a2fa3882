package domain

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is a credentialed principal able to obtain API tokens.
type User struct {
	ID           string    `gorm:"column:id;primaryKey" json:"id"`
	Username     string    `gorm:"column:username;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"column:password_hash" json:"-"`
	TenantID     string    `gorm:"column:tenant_id" json:"tenant_id"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Claims is the JWT payload carried by issued tokens.
type Claims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// ErrInvalidCredentials is returned for unknown users or wrong passwords.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Token is an issued bearer token and its validity window.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Service issues and verifies bearer tokens.
type Service interface {
	// Login verifies credentials and returns a signed token.
	Login(ctx context.Context, username, password string) (*Token, error)
	// Verify parses and validates a bearer token, returning its claims.
	Verify(tokenString string) (*Claims, error)
}

// Repository reads user records.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}
