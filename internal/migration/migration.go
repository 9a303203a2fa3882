package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	analyticsdomain "github.com/cohortlens/cohortlens/internal/analytics/domain"
	authdomain "github.com/cohortlens/cohortlens/internal/auth/domain"
	customerdomain "github.com/cohortlens/cohortlens/internal/customer/domain"
	featuredomain "github.com/cohortlens/cohortlens/internal/feature/domain"
	marketdomain "github.com/cohortlens/cohortlens/internal/market/domain"
	subscriptiondomain "github.com/cohortlens/cohortlens/internal/subscription/domain"
	usagedomain "github.com/cohortlens/cohortlens/internal/usage/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed sql/*.sql
var embeddedMigrations embed.FS

const migrationsDir = "sql"

// RunMigrations applies the embedded schema migrations to a postgres database.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not close the migrator here, that would close the shared *sql.DB.

	return nil
}

// AutoMigrate creates the schema through gorm for the non-postgres dialects
// used in development and tests.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&usagedomain.UsageCounter{},
		&subscriptiondomain.Subscription{},
		&featuredomain.FeatureFlag{},
		&authdomain.User{},
		&customerdomain.Customer{},
		&analyticsdomain.Prediction{},
		&analyticsdomain.SegmentRecord{},
		&marketdomain.MarketVolatility{},
	)
}
