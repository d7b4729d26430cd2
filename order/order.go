package order

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// New resolves, derives and validates the submission and returns the
// resulting order. Any failure matches ErrOperational and no order is
// returned
func New(s *Submit) (*Order, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: %w", ErrOperational, ErrSubmissionIsNil)
	}
	side, err := StringToOrderSide(s.Side.String())
	if err != nil {
		return nil, err
	}
	oType, err := StringToOrderType(s.Type.String())
	if err != nil {
		return nil, err
	}
	status, err := StringToOrderStatus(s.Status.String())
	if err != nil {
		return nil, err
	}

	a, err := deriveAmounts(oType, status, s.Price, s.InitialPrice, amounts{
		trading: s.AmountTradingSymbol,
		target:  s.AmountTargetSymbol,
	})
	if err != nil {
		return nil, err
	}
	if err = validateInitialPrice(status, s.InitialPrice); err != nil {
		return nil, err
	}
	if err = validateAmounts(oType, a); err != nil {
		return nil, err
	}
	if err = validatePrice(status, s.Price); err != nil {
		return nil, err
	}
	if err = validateClosingPrice(status, s.ClosingPrice); err != nil {
		return nil, err
	}

	return &Order{
		referenceID:         s.ReferenceID,
		targetSymbol:        s.TargetSymbol,
		tradingSymbol:       s.TradingSymbol,
		orderType:           oType,
		side:                side,
		status:              status,
		price:               s.Price,
		initialPrice:        s.InitialPrice,
		closingPrice:        s.ClosingPrice,
		amountTradingSymbol: a.trading,
		amountTargetSymbol:  a.target,
	}, nil
}

// GetReferenceID returns the external reference of the order
func (o *Order) GetReferenceID() string {
	return o.referenceID
}

// GetTargetSymbol returns the symbol being bought or sold
func (o *Order) GetTargetSymbol() string {
	return o.targetSymbol
}

// GetTradingSymbol returns the symbol the order is paid in
func (o *Order) GetTradingSymbol() string {
	return o.tradingSymbol
}

// GetType returns the order type
func (o *Order) GetType() Type {
	return o.orderType
}

// GetSide returns the order side
func (o *Order) GetSide() Side {
	return o.side
}

// GetStatus returns the order status
func (o *Order) GetStatus() Status {
	return o.status
}

// GetPrice returns the current economic price of the order: the closing
// price once closed, the price otherwise
func (o *Order) GetPrice() decimal.NullDecimal {
	if o.status == Closed {
		return o.closingPrice
	}
	return o.price
}

// GetInitialPrice returns the price the order was filled at
func (o *Order) GetInitialPrice() decimal.NullDecimal {
	return o.initialPrice
}

// GetClosingPrice returns the price the order was closed at
func (o *Order) GetClosingPrice() decimal.NullDecimal {
	return o.closingPrice
}

// GetAmountTargetSymbol returns the order size in the target symbol
func (o *Order) GetAmountTargetSymbol() decimal.NullDecimal {
	return o.amountTargetSymbol
}

// GetAmountTradingSymbol returns the order size in the trading symbol
func (o *Order) GetAmountTradingSymbol() decimal.NullDecimal {
	return o.amountTradingSymbol
}

// Submission returns the fields of the order as a Submit, suitable for
// building a modified copy with New
func (o *Order) Submission() *Submit {
	return &Submit{
		ReferenceID:         o.referenceID,
		TargetSymbol:        o.targetSymbol,
		TradingSymbol:       o.tradingSymbol,
		Type:                o.orderType,
		Side:                o.side,
		Status:              o.status,
		AmountTradingSymbol: o.amountTradingSymbol,
		AmountTargetSymbol:  o.amountTargetSymbol,
		Price:               o.price,
		InitialPrice:        o.initialPrice,
		ClosingPrice:        o.closingPrice,
	}
}

// Split divides the order into two orders holding amount and the remainder
// of the target symbol amount. The trading symbol amount is shared
// proportionally. Both orders keep the reference ID
func (o *Order) Split(amount decimal.Decimal) (*Order, *Order, error) {
	total := o.amountTargetSymbol.Decimal
	if !amount.IsPositive() || amount.GreaterThanOrEqual(total) {
		return nil, nil, fmt.Errorf("%w %v of %v", ErrInvalidSplitAmount, amount, total)
	}
	remainder := total.Sub(amount)

	first, second := o.Submission(), o.Submission()
	first.AmountTargetSymbol = decimal.NewNullDecimal(amount)
	second.AmountTargetSymbol = decimal.NewNullDecimal(remainder)
	if o.amountTradingSymbol.Valid {
		share := o.amountTradingSymbol.Decimal.Mul(amount).Div(total)
		first.AmountTradingSymbol = decimal.NewNullDecimal(share)
		second.AmountTradingSymbol = decimal.NewNullDecimal(o.amountTradingSymbol.Decimal.Sub(share))
	}

	a, err := New(first)
	if err != nil {
		return nil, nil, err
	}
	b, err := New(second)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// String implements the stringer interface
func (o *Order) String() string {
	return fmt.Sprintf("Order(reference_id=%s, status=%s, initial_price=%s, price=%s, closing_price=%s, order_side=%s, order_type=%s, amount_target_symbol=%s, amount_trading_symbol=%s)",
		o.referenceID,
		o.status,
		nullString(o.initialPrice),
		nullString(o.GetPrice()),
		nullString(o.closingPrice),
		o.side,
		o.orderType,
		nullString(o.amountTargetSymbol),
		nullString(o.amountTradingSymbol))
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return "unset"
	}
	return d.Decimal.String()
}
