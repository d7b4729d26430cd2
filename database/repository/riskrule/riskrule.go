package riskrule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/algotrader-go/algotrader/database"
	"github.com/algotrader-go/algotrader/trade"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// New returns a risk rule repository for the connection and dialect
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

// Upsert inserts the rule or updates its moving parts: high water mark,
// trigger price, sold amount and active flag
func (r *Repository) Upsert(ctx context.Context, st *trade.RuleState) error {
	if st == nil {
		return errNilState
	}
	var hwm sql.NullString
	if st.HighWaterMark.Valid {
		hwm = sql.NullString{String: st.HighWaterMark.Decimal.String(), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, database.Rebind(r.dialect, upsertQuery),
		st.ID.String(),
		st.TradeID.String(),
		st.Kind.String(),
		st.RiskType.String(),
		st.Percentage.String(),
		st.SellPercentage.String(),
		st.OpenPrice.String(),
		hwm,
		st.TriggerPrice.String(),
		st.SellAmount.String(),
		st.SoldAmount.String(),
		st.Active,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upserting %s %s: %w", st.Kind, st.ID, err)
	}
	return nil
}

// GetByTradeID returns the stored rule states of a trade
func (r *Repository) GetByTradeID(ctx context.Context, tradeID uuid.UUID) ([]trade.RuleState, error) {
	rows, err := r.db.QueryContext(ctx, database.Rebind(r.dialect, byTradeIDQuery), tradeID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var resp []trade.RuleState
	for rows.Next() {
		var (
			id, tID, kind, riskType               string
			percentage, sellPercentage, openPrice string
			triggerPrice, sellAmount, soldAmount  string
			hwm                                   sql.NullString
			active                                bool
		)
		if err = rows.Scan(&id, &tID, &kind, &riskType, &percentage, &sellPercentage, &openPrice,
			&hwm, &triggerPrice, &sellAmount, &soldAmount, &active); err != nil {
			return nil, err
		}
		st := trade.RuleState{
			Kind:     trade.RuleKind(kind),
			RiskType: trade.RiskType(riskType),
			Active:   active,
		}
		if st.ID, err = uuid.FromString(id); err != nil {
			return nil, fmt.Errorf("rule id %q: %w", id, err)
		}
		if st.TradeID, err = uuid.FromString(tID); err != nil {
			return nil, fmt.Errorf("rule %s trade id %q: %w", id, tID, err)
		}
		for _, f := range []struct {
			raw string
			dst *decimal.Decimal
		}{
			{percentage, &st.Percentage},
			{sellPercentage, &st.SellPercentage},
			{openPrice, &st.OpenPrice},
			{triggerPrice, &st.TriggerPrice},
			{sellAmount, &st.SellAmount},
			{soldAmount, &st.SoldAmount},
		} {
			if *f.dst, err = decimal.NewFromString(f.raw); err != nil {
				return nil, fmt.Errorf("rule %s: %w", id, err)
			}
		}
		if hwm.Valid {
			v, err := decimal.NewFromString(hwm.String)
			if err != nil {
				return nil, fmt.Errorf("rule %s high water mark: %w", id, err)
			}
			st.HighWaterMark = decimal.NewNullDecimal(v)
		}
		resp = append(resp, st)
	}
	return resp, rows.Err()
}

// GetRulesByTradeID restores the stored rules of a trade
func (r *Repository) GetRulesByTradeID(ctx context.Context, tradeID uuid.UUID) ([]trade.Rule, error) {
	states, err := r.GetByTradeID(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	rules := make([]trade.Rule, len(states))
	for i := range states {
		if rules[i], err = trade.RuleFromState(&states[i]); err != nil {
			return nil, err
		}
	}
	return rules, nil
}
