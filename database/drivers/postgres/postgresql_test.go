package postgres

import (
	"testing"

	"github.com/algotrader-go/algotrader/database"
	"github.com/algotrader-go/algotrader/database/drivers"
	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	t.Parallel()
	cfg := &database.Config{
		Driver: database.DBPostgreSQL,
		ConnectionDetails: drivers.ConnectionDetails{
			Host:     "localhost",
			Port:     5432,
			Username: "algo",
			Password: "secret",
			Database: "algotrader",
		},
	}
	assert.Equal(t, "host=localhost port=5432 user=algo password=secret dbname=algotrader sslmode=disable", DSN(cfg))
	cfg.SSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}

func TestConnectRequiresDatabase(t *testing.T) {
	t.Parallel()
	_, err := Connect(nil)
	assert.ErrorIs(t, err, database.ErrNoDatabaseProvided)
	_, err = Connect(&database.Config{})
	assert.ErrorIs(t, err, database.ErrNoDatabaseProvided)
}
