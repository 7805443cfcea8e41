package database

import (
	"fmt"
	"time"

	"factory-admin/internal/config"
	"factory-admin/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init opens the backing store and migrates the entity tables when
// AUTO_MIGRATE is on. cfg must have passed Validate.
func Init(cfg *config.Config, logger *zap.Logger) error {
	dsn, err := cfg.DSN()
	if err != nil {
		return err
	}

	level := gormlogger.Warn
	if cfg.LogLevel == "debug" {
		level = gormlogger.Info
	}
	gormLog := gormlogger.New(zap.NewStdLog(logger.Named("gorm")), gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.StoreHost(), err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if cfg.AutoMigrate {
		if err := DB.AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("Migration complete", zap.Int("tables", len(models.All())))
	}

	logger.Info("Database connection established", zap.String("host", cfg.StoreHost()))
	return nil
}

// Close releases the connection pool.
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
