package database

import (
	"fmt"

	"report_gen/internal/config"
	"report_gen/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds the database configuration
type Config struct {
	Driver string
	DSN    string
	Debug  bool
}

// ConfigFrom extracts the database settings from the application config
func ConfigFrom(cfg config.Config) Config {
	return Config{
		Driver: cfg.DB.Driver,
		DSN:    cfg.DB.DSN,
		Debug:  cfg.IsDevelopment(),
	}
}

// NewDatabase creates a new database connection
func NewDatabase(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	logLevel := logger.Error
	if cfg.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Set connection pool settings
	if cfg.Driver == "sqlite" {
		// one writer at a time
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}

	return db, nil
}

// AutoMigrate runs database migrations
func AutoMigrate(db *gorm.DB, log *logrus.Logger) error {
	log.Info("Running database migrations")

	if err := db.AutoMigrate(&models.Item{}, &models.Report{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
