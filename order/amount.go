package order

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// settledStatus reports whether an order has been filled at its initial price
func settledStatus(s Status) bool {
	return s == Success || s == Closed
}

// referencePrice selects the price used to derive missing amounts: the
// initial price for settled orders when known, otherwise the price, otherwise
// zero
func referencePrice(s Status, price, initialPrice decimal.NullDecimal) decimal.Decimal {
	if settledStatus(s) && initialPrice.Valid {
		return initialPrice.Decimal
	}
	if price.Valid {
		return price.Decimal
	}
	return decimal.Zero
}

// deriveAmounts fills in whichever amount can be calculated from the other
// and the reference price. It does not check that the result is complete,
// that is left to validateAmounts
func deriveAmounts(t Type, s Status, price, initialPrice decimal.NullDecimal, in amounts) (amounts, error) {
	p := referencePrice(s, price, initialPrice)
	out := in
	switch t {
	case Limit:
		switch {
		case in.trading.Valid && !in.target.Valid:
			if in.trading.Decimal.IsZero() {
				return in, fmt.Errorf("%w: %w for limit order", ErrOperational, ErrAmountTradingSymbolZero)
			}
			out.target = decimal.NewNullDecimal(p.Div(in.trading.Decimal))
		case in.target.Valid && !in.trading.Valid:
			out.trading = decimal.NewNullDecimal(p.Mul(in.target.Decimal))
		}
	case Market:
		if settledStatus(s) && in.target.Valid {
			out.trading = decimal.NewNullDecimal(p.Mul(in.target.Decimal))
		}
	}
	return out, nil
}
