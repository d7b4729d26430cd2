package postgres

import (
	"database/sql"
	"fmt"

	"github.com/algotrader-go/algotrader/database"
	// import postgres driver
	_ "github.com/lib/pq"
)

// DSN builds a lib/pq connection string from the config
func DSN(cfg *database.Config) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Database,
		sslMode)
}

// Connect opens and verifies a connection pool to the database
func Connect(cfg *database.Config) (*database.Instance, error) {
	if cfg == nil {
		return nil, database.ErrNoDatabaseProvided
	}
	if cfg.Database == "" {
		return nil, database.ErrNoDatabaseProvided
	}
	dbConn, err := sql.Open(database.DBPostgreSQL, DSN(cfg))
	if err != nil {
		return nil, err
	}
	if err = database.DB.SetPostgresConnection(dbConn); err != nil {
		return nil, err
	}
	return database.DB, nil
}
