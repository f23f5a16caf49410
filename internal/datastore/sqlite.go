package datastore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/logger"
)

// SQLiteManager handles a single-file SQLite database.
type SQLiteManager struct {
	db     *gorm.DB
	dbPath string
	log    logger.Logger
}

// NewSQLiteManager opens (creating if needed) the database file at dbPath.
func NewSQLiteManager(dbPath string, slowThreshold time.Duration, log logger.Logger) (*SQLiteManager, error) {
	log = moduleLogger(log)
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, errors.New(err).
				Component("datastore").
				Category(errors.CategoryFileIO).
				Context("path", dir).
				Build()
		}
	}

	// Build DSN with recommended SQLite pragmas
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON", dbPath)

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(log, slowThreshold))
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "open_sqlite").
			Context("path", dbPath).
			Build()
	}

	// SQLite has a single writer; one pooled connection serializes transactions
	// instead of failing them with SQLITE_BUSY.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	log.Info("sqlite database opened", logger.String("path", dbPath))
	return &SQLiteManager{db: db, dbPath: dbPath, log: log}, nil
}

// Initialize creates the schema.
func (m *SQLiteManager) Initialize(ctx context.Context) error {
	return migrate(ctx, m.db, m.dbPath, m.log)
}

// DB returns the underlying GORM database.
func (m *SQLiteManager) DB() *gorm.DB {
	return m.db
}

// Path returns the database file path.
func (m *SQLiteManager) Path() string {
	return m.dbPath
}

// Close closes the database connection.
func (m *SQLiteManager) Close() error {
	return closeDB(m.db)
}

// IsMySQL returns false for SQLite.
func (m *SQLiteManager) IsMySQL() bool {
	return false
}
