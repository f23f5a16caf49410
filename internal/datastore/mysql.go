package datastore

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/happycall-qa/happycall/internal/conf"
	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/logger"
)

// MySQLManager handles a MySQL database.
type MySQLManager struct {
	db       *gorm.DB
	location string // host:port/database for display
	log      logger.Logger
}

// NewMySQLManager connects using cfg and configures the connection pool.
func NewMySQLManager(cfg *conf.MySQLSettings, slowThreshold time.Duration, log logger.Logger) (*MySQLManager, error) {
	return openMySQL(mysqlDSN(cfg), fmt.Sprintf("%s:%s/%s", cfg.Host, cfg.Port, cfg.Database), slowThreshold, log)
}

// mysqlDSN builds the driver DSN. Times are stored in UTC and Korean text
// needs the utf8mb4 character set.
func mysqlDSN(cfg *conf.MySQLSettings) string {
	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Collation = "utf8mb4_unicode_ci"
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func openMySQL(dsn, location string, slowThreshold time.Duration, log logger.Logger) (*MySQLManager, error) {
	log = moduleLogger(log)
	db, err := gorm.Open(gormmysql.Open(dsn), gormConfig(log, slowThreshold))
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "open_mysql").
			Context("location", location).
			Build()
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("mysql database connected", logger.String("location", location))
	return &MySQLManager{db: db, location: location, log: log}, nil
}

// Initialize creates the schema.
func (m *MySQLManager) Initialize(ctx context.Context) error {
	return migrate(ctx, m.db, m.location, m.log)
}

// DB returns the underlying GORM database.
func (m *MySQLManager) DB() *gorm.DB {
	return m.db
}

// Path returns host:port/database.
func (m *MySQLManager) Path() string {
	return m.location
}

// Close closes the database connection.
func (m *MySQLManager) Close() error {
	return closeDB(m.db)
}

// IsMySQL returns true for MySQL.
func (m *MySQLManager) IsMySQL() bool {
	return true
}
