package order

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrOperational is the domain validation error every order construction
// failure wraps. Callers reject the input that produced it
var ErrOperational = errors.New("operational error")

// var error definitions
var (
	ErrInvalidType               = errors.New("order type not recognised")
	ErrInvalidSide               = errors.New("order side not recognised")
	ErrInvalidStatus             = errors.New("order status not recognised")
	ErrPriceNotSet               = errors.New("price attribute is not set")
	ErrInitialPriceNotSet        = errors.New("initial price attribute is not set")
	ErrClosingPriceNotSet        = errors.New("closing price attribute is not set")
	ErrAmountTargetSymbolNotSet  = errors.New("amount target symbol attribute is not set")
	ErrAmountTradingSymbolNotSet = errors.New("amount trading symbol attribute is not set")
	ErrAmountTradingSymbolZero   = errors.New("amount trading symbol cannot be zero")
	ErrSubmissionIsNil           = errors.New("order submission is nil")
	ErrInvalidSplitAmount        = errors.New("invalid split amount")
)

// Type enforces a standard for order types across the code base
type Type string

// Defined package order types
const (
	UnknownType Type = ""
	Limit       Type = "LIMIT"
	Market      Type = "MARKET"
)

// Side enforces a standard for order sides across the code base
type Side string

// Order side types
const (
	UnknownSide Side = ""
	Buy         Side = "BUY"
	Sell        Side = "SELL"
)

// Status defines order status types
type Status string

// All order status types
const (
	UnknownStatus Status = ""
	Pending       Status = "PENDING"
	Success       Status = "SUCCESS"
	Closed        Status = "CLOSED"
	Canceled      Status = "CANCELED"
	Failed        Status = "FAILED"
)

// Submit contains all the fields needed to construct an Order. Type, Side and
// Status may hold either a canonical value or an external token such as
// "limit"; both are normalised by New. Unset amounts and prices are left as
// the zero NullDecimal
type Submit struct {
	ReferenceID         string
	TargetSymbol        string
	TradingSymbol       string
	Type                Type
	Side                Side
	Status              Status
	AmountTradingSymbol decimal.NullDecimal
	AmountTargetSymbol  decimal.NullDecimal
	Price               decimal.NullDecimal
	InitialPrice        decimal.NullDecimal
	ClosingPrice        decimal.NullDecimal
}

// Order is one validated buy or sell instruction. It cannot be modified after
// construction, use the getters to read it
type Order struct {
	referenceID         string
	targetSymbol        string
	tradingSymbol       string
	orderType           Type
	side                Side
	status              Status
	price               decimal.NullDecimal
	initialPrice        decimal.NullDecimal
	closingPrice        decimal.NullDecimal
	amountTradingSymbol decimal.NullDecimal
	amountTargetSymbol  decimal.NullDecimal
}

// amounts holds both sides of an order's size
type amounts struct {
	trading decimal.NullDecimal
	target  decimal.NullDecimal
}

// Map keys used by ToMap and FromMap
const (
	KeyReferenceID         = "reference_id"
	KeyTargetSymbol        = "target_symbol"
	KeyTradingSymbol       = "trading_symbol"
	KeyAmountTradingSymbol = "amount_trading_symbol"
	KeyAmountTargetSymbol  = "amount_target_symbol"
	KeyPrice               = "price"
	KeyInitialPrice        = "initial_price"
	KeyClosingPrice        = "closing_price"
	KeyStatus              = "status"
	KeyType                = "type"
	KeySide                = "side"
	KeyOrderType           = "order_type"
	KeyOrderSide           = "order_side"
)
