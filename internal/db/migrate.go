package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/suPer8Hu/serene-backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/mysql/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Migrate brings the schema up to date. MySQL and Postgres use the versioned SQL
// files; SQLite (local dev and tests) is migrated from the gorm records.
func Migrate(gdb *gorm.DB, dialect Dialect, log *zap.Logger) error {
	if gdb == nil {
		return fmt.Errorf("database connection is nil")
	}
	if dialect == SQLite {
		return gdb.AutoMigrate(models.All()...)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations/"+string(dialect))
	if err != nil {
		return fmt.Errorf("failed to create migration source driver: %w", err)
	}

	var dbDriver database.Driver
	switch dialect {
	case MySQL:
		dbDriver, err = migratemysql.WithInstance(sqlDB, &migratemysql.Config{})
	case Postgres:
		dbDriver, err = migratepg.WithInstance(sqlDB, &migratepg.Config{})
	default:
		return fmt.Errorf("unsupported dialect %q", dialect)
	}
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, string(dialect), dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("database migrations: already up to date", zap.String("dialect", string(dialect)))
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database migrations: applied", zap.String("dialect", string(dialect)))
	return nil
}
