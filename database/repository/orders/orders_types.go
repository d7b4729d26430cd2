package orders

import (
	"database/sql"
	"errors"

	"github.com/algotrader-go/algotrader/order"
)

const (
	insertQuery = `INSERT INTO orders (id, reference_id, target_symbol, trading_symbol, order_type, order_side, status, amount_trading_symbol, amount_target_symbol, price, initial_price, closing_price, inserted_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	selectQuery = `SELECT id, reference_id, target_symbol, trading_symbol, order_type, order_side, status, amount_trading_symbol, amount_target_symbol, price, initial_price, closing_price FROM orders`
	byIDQuery   = selectQuery + ` WHERE id = ?`
	byRefQuery  = selectQuery + ` WHERE reference_id = ? ORDER BY inserted_at`
	orderByTime = ` ORDER BY inserted_at`
)

var (
	// ErrNotFound is returned when no order matches the query
	ErrNotFound = errors.New("order not found")

	errNilDB    = errors.New("nil database connection")
	errNilOrder = errors.New("nil order")
)

// Filter narrows List to orders matching every set field. Zero values are
// ignored
type Filter struct {
	TargetSymbol  string
	TradingSymbol string
	Type          order.Type
	Side          order.Side
	Status        order.Status
}

// Repository stores orders in the orders table
type Repository struct {
	db      *sql.DB
	dialect string
}
