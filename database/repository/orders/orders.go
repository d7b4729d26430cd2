package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/algotrader-go/algotrader/database"
	"github.com/algotrader-go/algotrader/order"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// New returns an orders repository for the connection and dialect
func New(db *sql.DB, dialect string) (*Repository, error) {
	if db == nil {
		return nil, errNilDB
	}
	d := database.NormaliseDriver(dialect)
	if d == database.DBInvalidDriver {
		return nil, fmt.Errorf("%w: %q", database.ErrInvalidDriver, dialect)
	}
	return &Repository{db: db, dialect: d}, nil
}

// Insert stores the order and returns the generated row ID
func (r *Repository) Insert(ctx context.Context, o *order.Order) (string, error) {
	if o == nil {
		return "", errNilOrder
	}
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	s := o.Submission()
	_, err = r.db.ExecContext(ctx, database.Rebind(r.dialect, insertQuery),
		id.String(),
		s.ReferenceID,
		s.TargetSymbol,
		s.TradingSymbol,
		s.Type.String(),
		s.Side.String(),
		s.Status.String(),
		nullString(s.AmountTradingSymbol),
		nullString(s.AmountTargetSymbol),
		nullString(s.Price),
		nullString(s.InitialPrice),
		nullString(s.ClosingPrice),
		time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("inserting order %s: %w", s.ReferenceID, err)
	}
	return id.String(), nil
}

// GetByID returns the stored order with the row ID. Rows which no longer
// pass order validation are rejected with order.ErrOperational
func (r *Repository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	row := r.db.QueryRowContext(ctx, database.Rebind(r.dialect, byIDQuery), id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return o, err
}

// GetByReferenceID returns every stored order for the reference ID in
// insertion order
func (r *Repository) GetByReferenceID(ctx context.Context, referenceID string) ([]*order.Order, error) {
	rows, err := r.db.QueryContext(ctx, database.Rebind(r.dialect, byRefQuery), referenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var resp []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		resp = append(resp, o)
	}
	return resp, rows.Err()
}

// List returns every stored order matching the filter in insertion order.
// Symbols match exactly
func (r *Repository) List(ctx context.Context, f Filter) ([]*order.Order, error) {
	query, args, err := f.where()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, database.Rebind(r.dialect, selectQuery+query+orderByTime), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var resp []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		resp = append(resp, o)
	}
	return resp, rows.Err()
}

// where builds the WHERE clause for the set fields. Columns are always
// appended in the same order so the statement is stable
func (f Filter) where() (string, []interface{}, error) {
	if f.Type != order.UnknownType && !f.Type.IsValid() {
		return "", nil, fmt.Errorf("%w %q", order.ErrInvalidType, f.Type)
	}
	if f.Side != order.UnknownSide && !f.Side.IsValid() {
		return "", nil, fmt.Errorf("%w %q", order.ErrInvalidSide, f.Side)
	}
	if f.Status != order.UnknownStatus && !f.Status.IsValid() {
		return "", nil, fmt.Errorf("%w %q", order.ErrInvalidStatus, f.Status)
	}
	var (
		clauses []string
		args    []interface{}
	)
	add := func(column string, value string) {
		if value == "" {
			return
		}
		clauses = append(clauses, column+" = ?")
		args = append(args, value)
	}
	add("target_symbol", f.TargetSymbol)
	add("trading_symbol", f.TradingSymbol)
	add("order_type", f.Type.String())
	add("order_side", f.Side.String())
	add("status", f.Status.String())
	if len(clauses) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(s scanner) (*order.Order, error) {
	var (
		id, referenceID, targetSymbol, tradingSymbol string
		orderType, side, status                      string
		amountTrading, amountTarget                  sql.NullString
		price, initialPrice, closingPrice            sql.NullString
	)
	if err := s.Scan(&id, &referenceID, &targetSymbol, &tradingSymbol, &orderType, &side, &status,
		&amountTrading, &amountTarget, &price, &initialPrice, &closingPrice); err != nil {
		return nil, err
	}
	o, err := order.FromMap(map[string]interface{}{
		order.KeyReferenceID:         referenceID,
		order.KeyTargetSymbol:        targetSymbol,
		order.KeyTradingSymbol:       tradingSymbol,
		order.KeyType:                orderType,
		order.KeySide:                side,
		order.KeyStatus:              status,
		order.KeyAmountTradingSymbol: nullValue(amountTrading),
		order.KeyAmountTargetSymbol:  nullValue(amountTarget),
		order.KeyPrice:               nullValue(price),
		order.KeyInitialPrice:        nullValue(initialPrice),
		order.KeyClosingPrice:        nullValue(closingPrice),
	})
	if err != nil {
		return nil, fmt.Errorf("stored order %s: %w", id, err)
	}
	return o, nil
}

func nullString(d decimal.NullDecimal) sql.NullString {
	if !d.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Decimal.String(), Valid: true}
}

func nullValue(s sql.NullString) interface{} {
	if !s.Valid {
		return nil
	}
	return s.String
}
