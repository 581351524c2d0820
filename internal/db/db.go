package db

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bike-rental-backend/config"
	"bike-rental-backend/internal/model"
)

// Open connects to PostgreSQL for postgres:// DSNs and to SQLite otherwise.
func Open(dsn string, gormLogger logger.Interface) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: gormLogger}
	if isPostgres(dsn) {
		return gorm.Open(postgres.Open(dsn), cfg)
	}
	return gorm.Open(sqlite.Open(dsn), cfg)
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Init opens the database, applies pool settings and runs migrations.
func Init(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := Open(cfg.DSN, logger.Default.LogMode(logger.Warn))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Info("running database migrations")
	if err := Migrate(db); err != nil {
		return nil, err
	}

	if cfg.EnableExclusionConstraint && isPostgres(cfg.DSN) {
		log.Info("applying reservation exclusion constraint")
		if err := applyExclusionConstraint(db); err != nil {
			log.Warn("failed to apply reservation exclusion constraint; overlap checks stay in the application",
				zap.Error(err))
		}
	}

	log.Info("database initialization complete")
	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Bike{},
		&model.BikeSlab{},
		&model.Reservation{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

// applyExclusionConstraint makes PostgreSQL reject two live reservations of the
// same bike whose [start, end) ranges intersect. Open-ended reservations extend to
// infinity.
func applyExclusionConstraint(db *gorm.DB) error {
	ddls := []string{
		"CREATE EXTENSION IF NOT EXISTS btree_gist;",

		"ALTER TABLE reservations DROP CONSTRAINT IF EXISTS reservations_no_overlap;",

		"ALTER TABLE reservations ADD CONSTRAINT reservations_no_overlap EXCLUDE USING GIST (" +
			"bike_id WITH =, " +
			"tstzrange(start_time, COALESCE(end_time, 'infinity'::timestamptz), '[)') WITH &&" +
			") WHERE (status IN ('confirmed', 'ongoing'));",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
