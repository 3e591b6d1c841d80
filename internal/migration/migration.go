// Package migration creates the schema on startup so the service is
// usable out of the box for local and self-hosted environments.
package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	assignmentdomain "github.com/smallgrid/enerbill/internal/assignment/domain"
	deliverydomain "github.com/smallgrid/enerbill/internal/delivery/domain"
	locationdomain "github.com/smallgrid/enerbill/internal/location/domain"
	meterdomain "github.com/smallgrid/enerbill/internal/meter/domain"
	readingdomain "github.com/smallgrid/enerbill/internal/reading/domain"
	resourcetypedomain "github.com/smallgrid/enerbill/internal/resourcetype/domain"
	tariffdomain "github.com/smallgrid/enerbill/internal/tariff/domain"
	tenantdomain "github.com/smallgrid/enerbill/internal/tenant/domain"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const migrationsDir = "migrations"

// RunMigrations applies the embedded SQL migrations against postgres.
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
	// Not closing the migrator: it would close the shared *sql.DB.

	return nil
}

// AutoMigrate covers the non-postgres dialects (sqlite in tests,
// mysql) where the embedded SQL is not portable.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&resourcetypedomain.EnergyResourceType{},
		&tenantdomain.Tenant{},
		&locationdomain.Location{},
		&meterdomain.Meter{},
		&assignmentdomain.MeterTenant{},
		&tariffdomain.Tariff{},
		&readingdomain.MeterReading{},
		&readingdomain.MeterReadingDistribution{},
		&deliverydomain.ResourceDelivery{},
	)
}
