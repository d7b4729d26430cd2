package sqlite

import (
	"database/sql"
	"path/filepath"

	"github.com/algotrader-go/algotrader/database"
	// import sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens a connection to sqlite database and returns a pointer to database.DB
func Connect(db string) (*database.Instance, error) {
	if db == "" {
		return nil, database.ErrNoDatabaseProvided
	}
	databaseFullLocation := db
	if db != ":memory:" {
		databaseFullLocation = filepath.Join(database.DB.DataPath, db)
	}
	dbConn, err := sql.Open(database.DBSQLite3, databaseFullLocation)
	if err != nil {
		return nil, err
	}
	if err = database.DB.SetSQLiteConnection(dbConn); err != nil {
		return nil, err
	}
	return database.DB, nil
}
