// Package datastore opens the relational store and migrates the happycall schema.
package datastore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/happycall-qa/happycall/internal/conf"
	"github.com/happycall-qa/happycall/internal/datastore/entities"
	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/logger"
)

// Manager owns a database connection.
type Manager interface {
	// Initialize creates or migrates the schema.
	Initialize(ctx context.Context) error
	// DB returns the underlying GORM database.
	DB() *gorm.DB
	// Path returns the database location for display.
	Path() string
	// Close closes the database connection.
	Close() error
	// IsMySQL returns true if this is a MySQL manager.
	IsMySQL() bool
}

// Open connects to the database selected by cfg.Type.
func Open(cfg *conf.DatabaseSettings, log logger.Logger) (Manager, error) {
	switch cfg.Type {
	case conf.DatabaseSQLite:
		m, err := NewSQLiteManager(cfg.SQLite.Path, cfg.SlowQueryThreshold, log)
		if err != nil {
			return nil, err
		}
		return m, nil
	case conf.DatabaseMySQL:
		m, err := NewMySQLManager(&cfg.MySQL, cfg.SlowQueryThreshold, log)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, errors.Newf("unsupported database type %q", cfg.Type).
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}
}

// gormConfig is shared by both drivers. TranslateError maps driver unique
// violations to gorm.ErrDuplicatedKey.
func gormConfig(log logger.Logger, slowThreshold time.Duration) *gorm.Config {
	return &gorm.Config{
		Logger:         logger.NewGormLoggerAdapter(log, slowThreshold),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// moduleLogger falls back to the global datastore logger when none is given.
func moduleLogger(log logger.Logger) logger.Logger {
	if log == nil {
		return logger.Global().Module("datastore")
	}
	return log
}

// migrate runs AutoMigrate for every entity.
func migrate(ctx context.Context, db *gorm.DB, location string, log logger.Logger) error {
	start := time.Now()
	if err := db.WithContext(ctx).AutoMigrate(entities.All()...); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "auto_migrate").
			Context("location", location).
			Build()
	}
	log.Debug("schema migrated",
		logger.String("location", location),
		logger.Duration("took", time.Since(start)))
	return nil
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	return sqlDB.Close()
}
