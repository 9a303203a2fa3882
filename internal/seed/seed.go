// Package seed bootstraps the default records a fresh install needs.
package seed

import (
	"errors"
	"time"

	authdomain "github.com/cohortlens/cohortlens/internal/auth/domain"
	"github.com/cohortlens/cohortlens/internal/config"
	"github.com/cohortlens/cohortlens/pkg/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// EnsureDefaultUser creates the configured bootstrap user when no user
// record exists yet, so a fresh install can authenticate immediately.
func EnsureDefaultUser(conn *gorm.DB, cfg config.Config) error {
	if conn == nil {
		return errors.New("seed database handle is required")
	}
	if cfg.DefaultAuthUser == "" || cfg.DefaultAuthPass == "" {
		return nil
	}

	var count int64
	if err := conn.Model(&authdomain.User{}).
		Where("username = ?", cfg.DefaultAuthUser).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.DefaultAuthPass), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	err = conn.Create(&authdomain.User{
		ID:           "usr_" + cfg.DefaultAuthUser,
		Username:     cfg.DefaultAuthUser,
		PasswordHash: string(hash),
		TenantID:     cfg.DefaultAuthUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}).Error
	if db.IsDuplicateKeyErr(err) {
		// Another instance seeded the user between the count and the insert.
		return nil
	}
	return err
}
