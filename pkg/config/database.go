package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the relational store selected by cfg.DBDriver and configures
// its connection pool. The returned handle is owned by the caller, who must
// close it with CloseDB.
func InitDB(cfg *Config) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.NewSlogLogger(slog.Default(), logger.Config{
			SlowThreshold:             cfg.SlowQueryLog,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.DBDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DBPoolMax)
	sqlDB.SetMaxIdleConns(cfg.DBPoolMax)
	sqlDB.SetConnMaxIdleTime(cfg.DBPoolIdleTimeout)

	// Ping the database to verify connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DBConnectTimeout)
	defer cancel()
	if err = sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach %s: %w", cfg.DBDriver, err)
	}

	slog.Info("Database connection established", "driver", cfg.DBDriver, "pool_max", cfg.DBPoolMax)
	return db, nil
}

func dialectorFor(cfg *Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "postgres", "postgresql":
		return postgres.Open(withConnectTimeout(cfg)), nil
	case "mysql":
		return mysql.Open(cfg.DatabaseURL), nil
	case "sqlite":
		return sqlite.Open(cfg.DatabaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// withConnectTimeout appends connect_timeout to a postgres DSN unless present.
func withConnectTimeout(cfg *Config) string {
	dsn := cfg.DatabaseURL
	if strings.Contains(dsn, "connect_timeout") {
		return dsn
	}
	secs := int(cfg.DBConnectTimeout.Seconds())
	if secs < 1 {
		secs = 1
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return fmt.Sprintf("%s%sconnect_timeout=%d", dsn, sep, secs)
	}
	return fmt.Sprintf("%s connect_timeout=%d", dsn, secs)
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	slog.Info("Auto-migrations completed for all models.")
	return nil
}

// CloseDB closes the underlying connection pool.
func CloseDB(db *gorm.DB) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting SQL DB from GORM", "error", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		slog.Error("Error closing database connection", "error", err)
		return
	}
	slog.Info("Database connection closed.")
}
