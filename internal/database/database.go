package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/mx-space/metafields/internal/config"
	"github.com/mx-space/metafields/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const mysqlErrTableExists = 1050

// Connect opens the configured database and optionally runs auto-migration.
func Connect(cfg *config.AppConfig, autoMigrate bool) (*gorm.DB, error) {
	db, err := openDB(cfg, resolveLogLevel(cfg))
	if err != nil {
		return nil, err
	}

	if autoMigrate {
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}
	return db, nil
}

// EnsureSchema applies database migration in a short-lived setup connection.
func EnsureSchema(cfg *config.AppConfig) error {
	db, err := openDB(cfg, resolveLogLevel(cfg))
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("resolve sql db: %w", err)
	}
	defer sqlDB.Close()

	if err := Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func resolveLogLevel(cfg *config.AppConfig) logger.LogLevel {
	if cfg.IsDev() {
		return logger.Info
	}
	return logger.Warn
}

func openDB(cfg *config.AppConfig, logLevel logger.LogLevel) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return db, nil
}

func dialectorFor(cfg *config.AppConfig) (gorm.Dialector, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		path := cfg.SQLitePath()
		if path != ":memory:" && !isURI(path) {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		return sqlite.Open(path), nil
	default:
		if err := config.ValidateMySQLDSN(cfg.DSN); err != nil {
			return nil, err
		}
		return mysql.New(mysql.Config{
			DSN:               cfg.DSN,
			DefaultStringSize: 191,
		}), nil
	}
}

func isURI(path string) bool {
	return len(path) > 5 && path[:5] == "file:"
}

// Migrate runs GORM auto-migration for all models.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(&models.MetafieldGroupModel{})
	if err == nil {
		return nil
	}
	// Concurrent replicas may race on CREATE TABLE.
	var myErr *mysqlDriver.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlErrTableExists {
		return nil
	}
	return err
}
