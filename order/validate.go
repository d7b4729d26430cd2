package order

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func validateInitialPrice(s Status, initialPrice decimal.NullDecimal) error {
	if settledStatus(s) && !initialPrice.Valid {
		return fmt.Errorf("%w: %w for order", ErrOperational, ErrInitialPriceNotSet)
	}
	return nil
}

// validateAmounts requires the target amount on every order and the trading
// amount on limit orders. The market message names a sell order regardless
// of side, existing consumers match on it
func validateAmounts(t Type, a amounts) error {
	if t == Market {
		if !a.target.Valid {
			return fmt.Errorf("%w: %w for market sell order", ErrOperational, ErrAmountTargetSymbolNotSet)
		}
		return nil
	}
	if !a.target.Valid {
		return fmt.Errorf("%w: %w for limit order", ErrOperational, ErrAmountTargetSymbolNotSet)
	}
	if !a.trading.Valid {
		return fmt.Errorf("%w: %w for limit order", ErrOperational, ErrAmountTradingSymbolNotSet)
	}
	return nil
}

func validatePrice(s Status, price decimal.NullDecimal) error {
	if (s == Success || s == Pending) && !price.Valid {
		return fmt.Errorf("%w: %w for order", ErrOperational, ErrPriceNotSet)
	}
	return nil
}

func validateClosingPrice(s Status, closingPrice decimal.NullDecimal) error {
	if s == Closed && !closingPrice.Valid {
		return fmt.Errorf("%w: %w for order", ErrOperational, ErrClosingPriceNotSet)
	}
	return nil
}
