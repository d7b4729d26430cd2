package riskrule

import (
	"database/sql"
	"errors"
)

const (
	upsertQuery    = `INSERT INTO risk_rules (id, trade_id, kind, risk_type, percentage, sell_percentage, open_price, high_water_mark, trigger_price, sell_amount, sold_amount, active, amended_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT (id) DO UPDATE SET high_water_mark = excluded.high_water_mark, trigger_price = excluded.trigger_price, sold_amount = excluded.sold_amount, active = excluded.active, amended_at = excluded.amended_at`
	byTradeIDQuery = `SELECT id, trade_id, kind, risk_type, percentage, sell_percentage, open_price, high_water_mark, trigger_price, sell_amount, sold_amount, active FROM risk_rules WHERE trade_id = ? ORDER BY amended_at, id`
)

var (
	errNilDB    = errors.New("nil database connection")
	errNilState = errors.New("nil rule state")
)

// Repository stores stop loss and take profit state in the risk_rules table
type Repository struct {
	db      *sql.DB
	dialect string
}
