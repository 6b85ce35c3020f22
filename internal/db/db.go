package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DetectDialect picks the driver from the DSN shape: postgres:// URLs or
// libpq key=value strings, sqlite:<path> or file:<path>, anything else is a
// MySQL DSN.
func DetectDialect(dsn string) Dialect {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"), isKeyValueDSN(dsn):
		return Postgres
	case strings.HasPrefix(dsn, "sqlite:"), strings.HasPrefix(dsn, "file:"):
		return SQLite
	default:
		return MySQL
	}
}

var libpqKeys = map[string]bool{
	"host": true, "hostaddr": true, "port": true, "user": true, "password": true,
	"dbname": true, "sslmode": true, "connect_timeout": true, "application_name": true,
	"TimeZone": true, "search_path": true,
}

// isKeyValueDSN reports whether dsn looks like "host=db user=app dbname=serene".
func isKeyValueDSN(dsn string) bool {
	fields := strings.Fields(dsn)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		key, _, ok := strings.Cut(f, "=")
		if !ok || !libpqKeys[key] {
			return false
		}
	}
	return true
}

// Connect opens one pooled handle shared by every repo for the life of the process.
func Connect(dsn string, pool PoolOptions) (*gorm.DB, Dialect, error) {
	if dsn == "" {
		return nil, "", fmt.Errorf("database DSN is required")
	}

	dialect := DetectDialect(dsn)

	var dialector gorm.Dialector
	switch dialect {
	case Postgres:
		dialector = postgres.Open(dsn)
	case SQLite:
		dialector = sqlite.Open(strings.TrimPrefix(dsn, "sqlite:"))
	default:
		normalized, err := mysqlDSN(dsn)
		if err != nil {
			return nil, "", err
		}
		dialector = mysql.Open(normalized)
	}

	gdb, err := Open(dialector)
	if err != nil {
		return nil, "", err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime <= 0 {
		pool.ConnMaxLifetime = 5 * time.Minute
	}
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)

	return gdb, dialect, nil
}

// mysqlDSN forces the driver options the stores depend on.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysqldrv.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("failed to parse mysql DSN: %w", err)
	}
	// migrations ship as multi-statement files
	cfg.ParseTime = true
	cfg.MultiStatements = true
	// RowsAffected must count matched rows: an update that leaves updated_at
	// unchanged within the same millisecond still found its row
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

// Open wraps gorm.Open with the settings every store relies on:
// UTC timestamps and driver errors translated to gorm sentinels (ErrDuplicatedKey).
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return gdb, nil
}

// Close gracefully closes the database connection
func Close(gdb *gorm.DB) error {
	if gdb == nil {
		return nil
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}
