package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/algotrader-go/algotrader/database"
	"github.com/algotrader-go/algotrader/database/repository/orders"
	"github.com/algotrader-go/algotrader/database/repository/riskrule"
	"github.com/algotrader-go/algotrader/log"
	"github.com/algotrader-go/algotrader/order"
	"github.com/algotrader-go/algotrader/trade"
)

var errNotConnected = errors.New("database is not connected")

// GetSQLDialect returns current SQL Dialect based on enabled driver
func GetSQLDialect() string {
	return database.DB.Dialect()
}

// Persister stores executed orders and rule state after every risk
// execution
type Persister struct {
	Orders *orders.Repository
	Rules  *riskrule.Repository
}

// NewPersister builds a persister on the connected database instance
func NewPersister(inst *database.Instance) (*Persister, error) {
	db := inst.GetSQL()
	if db == nil {
		return nil, errNotConnected
	}
	dialect := inst.Dialect()
	o, err := orders.New(db, dialect)
	if err != nil {
		return nil, err
	}
	r, err := riskrule.New(db, dialect)
	if err != nil {
		return nil, err
	}
	log.Debugf(log.DatabaseMgr, "Persisting orders and risk rules to %s", dialect)
	return &Persister{Orders: o, Rules: r}, nil
}

// SaveOrder inserts an executed order
func (p *Persister) SaveOrder(ctx context.Context, o *order.Order) error {
	id, err := p.Orders.Insert(ctx, o)
	if err != nil {
		return err
	}
	log.Debugf(log.DatabaseMgr, "Stored order %s as %s", o.GetReferenceID(), id)
	return nil
}

// SaveRule stores the current state of a stop loss or take profit
func (p *Persister) SaveRule(ctx context.Context, st *trade.RuleState) error {
	if err := p.Rules.Upsert(ctx, st); err != nil {
		return fmt.Errorf("saving rule state: %w", err)
	}
	return nil
}
