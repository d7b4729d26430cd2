package trade

import (
	"fmt"
	"time"

	"github.com/algotrader-go/algotrader/common/math"
	"github.com/algotrader-go/algotrader/order"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// New opens a trade with a freshly generated ID
func New(targetSymbol, tradingSymbol string, openPrice, amount decimal.Decimal, openedAt time.Time) (*Trade, error) {
	if !openPrice.IsPositive() {
		return nil, ErrInvalidOpenPrice
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return &Trade{
		ID:            id,
		TargetSymbol:  targetSymbol,
		TradingSymbol: tradingSymbol,
		OpenPrice:     openPrice,
		Amount:        amount,
		OpenedAt:      openedAt,
	}, nil
}

// NewFromOrder opens a trade from a settled buy order. The open price is the
// price the order executed at and the trade amount is the target symbol
// amount bought
func NewFromOrder(o *order.Order, openedAt time.Time) (*Trade, error) {
	if o == nil {
		return nil, fmt.Errorf("%w: %w", ErrOrderCannotOpenTrade, order.ErrSubmissionIsNil)
	}
	if o.GetSide() != order.Buy {
		return nil, fmt.Errorf("%w: side %s", ErrOrderCannotOpenTrade, o.GetSide())
	}
	if o.GetStatus() != order.Success && o.GetStatus() != order.Closed {
		return nil, fmt.Errorf("%w: status %s", ErrOrderCannotOpenTrade, o.GetStatus())
	}
	price := o.GetInitialPrice()
	if !price.Valid {
		price = o.GetPrice()
	}
	amount := o.GetAmountTargetSymbol()
	if !price.Valid || !amount.Valid {
		return nil, fmt.Errorf("%w: price and target amount must be set", ErrOrderCannotOpenTrade)
	}
	return New(o.GetTargetSymbol(), o.GetTradingSymbol(), price.Decimal, amount.Decimal, openedAt)
}

// Remaining returns the amount of the trade not yet sold. A nil trade has
// nothing remaining
func (t *Trade) Remaining() decimal.Decimal {
	if t == nil {
		return decimal.Zero
	}
	return t.Amount.Sub(t.SoldAmount)
}

// IsOpen returns whether any of the trade is left to sell
func (t *Trade) IsOpen() bool {
	return t.Remaining().IsPositive()
}

// RecordSell reduces the remaining amount of the trade
func (t *Trade) RecordSell(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(t.Remaining()) {
		return fmt.Errorf("%w: %s > %s", ErrSellExceedsRemaining, amount, t.Remaining())
	}
	t.SoldAmount = t.SoldAmount.Add(amount)
	return nil
}

// String implements the stringer interface
func (t *Trade) String() string {
	return fmt.Sprintf("trade %s %s/%s open %s amount %s sold %s",
		t.ID, t.TargetSymbol, t.TradingSymbol, t.OpenPrice, t.Amount, t.SoldAmount)
}

func validateSetup(s *RuleSetup) (RiskType, decimal.Decimal, error) {
	if s == nil {
		return "", decimal.Zero, ErrSetupIsNil
	}
	riskType, err := StringToRiskType(s.RiskType.String())
	if err != nil {
		return "", decimal.Zero, err
	}
	if !s.Percentage.IsPositive() || s.Percentage.GreaterThan(oneHundred) {
		return "", decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidPercentage, s.Percentage)
	}
	sellPercentage := s.SellPercentage
	if sellPercentage.IsZero() {
		sellPercentage = oneHundred
	}
	if !sellPercentage.IsPositive() || sellPercentage.GreaterThan(oneHundred) {
		return "", decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidSellPercentage, s.SellPercentage)
	}
	if !s.OpenPrice.IsPositive() {
		return "", decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidOpenPrice, s.OpenPrice)
	}
	if s.TotalAmountTrade.IsNegative() {
		return "", decimal.Zero, fmt.Errorf("%w: %s", ErrNegativeTotalAmount, s.TotalAmountTrade)
	}
	return riskType, sellPercentage, nil
}

func sellAmountOf(remaining, sellPercentage decimal.Decimal) decimal.Decimal {
	return math.PercentageOf(remaining, sellPercentage)
}

// RuleFromState restores a stop loss or take profit from a persisted snapshot
func RuleFromState(st *RuleState) (Rule, error) {
	if st == nil {
		return nil, ErrSetupIsNil
	}
	switch st.Kind {
	case StopLossKind:
		return StopLossFromState(st)
	case TakeProfitKind:
		return TakeProfitFromState(st)
	default:
		return nil, fmt.Errorf("%w: %q", ErrMismatchedRuleKind, st.Kind)
	}
}
