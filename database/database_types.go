package database

import (
	"database/sql"
	"errors"
	"sync"

	"github.com/algotrader-go/algotrader/database/drivers"
)

// Supported database drivers
const (
	DBSQLite        = "sqlite"
	DBSQLite3       = "sqlite3"
	DBPostgreSQL    = "postgres"
	DBInvalidDriver = "invalid driver"
)

var (
	// DB is the global database instance
	DB = &Instance{}

	// ErrNoDatabaseProvided error to display when no database is provided
	ErrNoDatabaseProvided = errors.New("no database provided")
	// ErrDatabaseSupportDisabled error to display when database support is disabled
	ErrDatabaseSupportDisabled = errors.New("database support is disabled")
	// ErrFailedToConnect for when a database fails to connect
	ErrFailedToConnect = errors.New("database failed to connect")
	// ErrInvalidDriver is returned for an unsupported database driver
	ErrInvalidDriver = errors.New("unsupported database driver")
	// ErrDatabaseNotConnected is returned when the connection has dropped
	ErrDatabaseNotConnected = errors.New("database is not connected")

	errNilInstance = errors.New("database instance is nil")
	errNilConfig   = errors.New("received nil database config")
	errNilSQL      = errors.New("database SQL connection is nil")
)

// Instance holds the database connection and its settings
type Instance struct {
	SQL       *sql.DB
	DataPath  string
	config    *Config
	connected bool
	m         sync.RWMutex
}

// Config holds the database connection settings
type Config struct {
	Enabled                   bool   `json:"enabled" mapstructure:"enabled"`
	Verbose                   bool   `json:"verbose" mapstructure:"verbose"`
	Driver                    string `json:"driver" mapstructure:"driver"`
	drivers.ConnectionDetails `mapstructure:",squash"`
}
