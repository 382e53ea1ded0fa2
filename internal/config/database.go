package config

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/resume-screener/internal/models"
)

// ErrMemoryDriver is returned by InitDatabase when the configured driver keeps
// state in process instead of a database.
var ErrMemoryDriver = errors.New("database driver is memory")

func dialector(cfg *Config) (gorm.Dialector, error) {
	dsn := cfg.GetDatabaseDSN()
	switch cfg.Database.Driver {
	case "", "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "memory":
		return nil, ErrMemoryDriver
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func InitDatabase(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	dial, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Silent
	if cfg.IsDevelopment() {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("database connected", zap.String("driver", dial.Name()))

	if err := db.AutoMigrate(
		&models.CriteriaSet{},
		&models.ScreeningRun{},
		&models.Document{},
		&models.CandidateResult{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("database migration completed")

	return db, nil
}
