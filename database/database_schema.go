package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/algotrader-go/algotrader/log"
)

var schema = map[string][]string{
	DBSQLite3: {
		`CREATE TABLE IF NOT EXISTS orders (
		id text NOT NULL PRIMARY KEY,
		reference_id text NOT NULL DEFAULT '',
		target_symbol text NOT NULL DEFAULT '',
		trading_symbol text NOT NULL DEFAULT '',
		order_type text NOT NULL,
		order_side text NOT NULL,
		status text NOT NULL,
		amount_trading_symbol text,
		amount_target_symbol text,
		price text,
		initial_price text,
		closing_price text,
		inserted_at DATETIME NOT NULL
	);`,
		`CREATE INDEX IF NOT EXISTS orders_reference_id ON orders (reference_id);`,
		`CREATE TABLE IF NOT EXISTS risk_rules (
		id text NOT NULL PRIMARY KEY,
		trade_id text NOT NULL,
		kind text NOT NULL,
		risk_type text NOT NULL,
		percentage text NOT NULL,
		sell_percentage text NOT NULL,
		open_price text NOT NULL,
		high_water_mark text,
		trigger_price text NOT NULL,
		sell_amount text NOT NULL,
		sold_amount text NOT NULL,
		active boolean NOT NULL,
		amended_at DATETIME NOT NULL
	);`,
		`CREATE INDEX IF NOT EXISTS risk_rules_trade_id ON risk_rules (trade_id);`,
	},
	DBPostgreSQL: {
		`CREATE TABLE IF NOT EXISTS orders (
		id uuid PRIMARY KEY NOT NULL,
		reference_id varchar(255) NOT NULL DEFAULT '',
		target_symbol varchar(30) NOT NULL DEFAULT '',
		trading_symbol varchar(30) NOT NULL DEFAULT '',
		order_type varchar(30) NOT NULL,
		order_side varchar(30) NOT NULL,
		status varchar(30) NOT NULL,
		amount_trading_symbol numeric,
		amount_target_symbol numeric,
		price numeric,
		initial_price numeric,
		closing_price numeric,
		inserted_at TIMESTAMP NOT NULL DEFAULT now()
	);`,
		`CREATE INDEX IF NOT EXISTS orders_reference_id ON orders (reference_id);`,
		`CREATE TABLE IF NOT EXISTS risk_rules (
		id uuid PRIMARY KEY NOT NULL,
		trade_id uuid NOT NULL,
		kind varchar(30) NOT NULL,
		risk_type varchar(30) NOT NULL,
		percentage numeric NOT NULL,
		sell_percentage numeric NOT NULL,
		open_price numeric NOT NULL,
		high_water_mark numeric,
		trigger_price numeric NOT NULL,
		sell_amount numeric NOT NULL,
		sold_amount numeric NOT NULL,
		active boolean NOT NULL,
		amended_at TIMESTAMP NOT NULL DEFAULT now()
	);`,
		`CREATE INDEX IF NOT EXISTS risk_rules_trade_id ON risk_rules (trade_id);`,
	},
}

// CreateSchema creates the orders and risk_rules tables if they do not
// exist
func CreateSchema(ctx context.Context, db *sql.DB, driver string) error {
	if db == nil {
		return errNilSQL
	}
	statements, ok := schema[NormaliseDriver(driver)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDriver, driver)
	}
	for i := range statements {
		if _, err := db.ExecContext(ctx, statements[i]); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	log.Debugf(log.DatabaseMgr, "Database schema created for %s", driver)
	return nil
}
