package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	// registers the cgo-free "sqlite" database/sql driver
	_ "modernc.org/sqlite"

	"github.com/djdeepak14/laundry-backend/internal/config"
	"github.com/djdeepak14/laundry-backend/internal/domain"
)

// Connect opens a PostgreSQL connection for postgres:// DSNs and falls back
// to SQLite (modernc driver, no cgo) for local development and tests.
func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	}

	log.Println("Using SQLite:", dsn)
	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{TranslateError: true},
	)
}

// Init connects using the database config, applies pool settings and runs
// migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := Connect(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs AutoMigrate plus the DDL GORM cannot express. The partial
// unique index is the authoritative guard against double booking: slots are
// fixed-length and boundary-aligned, so two booked reservations on one machine
// overlap exactly when they share a start time. Cancelled and completed rows
// are excluded so a freed slot can be rebooked.
func Migrate(db *gorm.DB) error {
	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Machine{},
		&domain.Reservation{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	ddls := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_booked_machine_slot
		 ON reservations (machine_id, start)
		 WHERE status = 'booked'`,
	}
	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
