package trade

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// var error definitions
var (
	ErrInvalidRiskType       = errors.New("invalid trade risk type")
	ErrInvalidPercentage     = errors.New("percentage must be above 0 and at most 100")
	ErrInvalidSellPercentage = errors.New("sell percentage must be above 0 and at most 100")
	ErrInvalidOpenPrice      = errors.New("open price must be above 0")
	ErrInvalidAmount         = errors.New("amount must be above 0")
	ErrNegativeTotalAmount   = errors.New("total trade amount cannot be negative")
	ErrRuleInactive          = errors.New("trade risk rule is inactive")
	ErrSellExceedsRemaining  = errors.New("sell amount exceeds remaining trade amount")
	ErrOrderCannotOpenTrade  = errors.New("order cannot open a trade")
	ErrSetupIsNil            = errors.New("setup is nil")
	ErrMismatchedRuleKind    = errors.New("state does not belong to this rule kind")
)

var oneHundred = decimal.NewFromInt(100)

// RiskType defines how a risk rule moves its trigger price
type RiskType string

// Trade risk types
const (
	Fixed    RiskType = "FIXED"
	Trailing RiskType = "TRAILING"
)

// RuleKind distinguishes stop losses from take profits
type RuleKind string

// Rule kinds
const (
	StopLossKind   RuleKind = "STOP_LOSS"
	TakeProfitKind RuleKind = "TAKE_PROFIT"
)

// RemainingAmounter exposes the amount of a trade that has not been sold yet.
// Implementations must handle a nil receiver, since a typed nil passes the
// nil interface check of GetSellAmount
type RemainingAmounter interface {
	Remaining() decimal.Decimal
}

// Rule is a risk rule attached to a trade which is evaluated on every price
// tick. Implementations are not safe for concurrent use; callers serialise
// access per trade
type Rule interface {
	GetID() uuid.UUID
	GetTradeID() uuid.UUID
	Kind() RuleKind
	GetRiskType() RiskType
	GetSellPercentage() decimal.Decimal
	IsActive() bool
	HasTriggered(currentPrice decimal.Decimal) bool
	GetSellAmount(t RemainingAmounter) decimal.Decimal
	RecordPartialSell(amount decimal.Decimal) error
	Deactivate()
	State() RuleState
}

// Trade is an open position tracked independently of the orders that built
// it
type Trade struct {
	ID            uuid.UUID
	TargetSymbol  string
	TradingSymbol string
	OpenPrice     decimal.Decimal
	Amount        decimal.Decimal
	SoldAmount    decimal.Decimal
	OpenedAt      time.Time
}

// RuleSetup holds the values needed to attach a risk rule to a trade
type RuleSetup struct {
	TradeID  uuid.UUID
	RiskType RiskType
	// Percentage is the distance between the reference price and the
	// trigger price
	Percentage decimal.Decimal
	OpenPrice  decimal.Decimal
	// TotalAmountTrade is the trade amount at the time the rule is attached
	TotalAmountTrade decimal.Decimal
	// SellPercentage is the share of the remaining trade to sell when the
	// rule triggers. Zero defaults to 100
	SellPercentage decimal.Decimal
}

// RuleState is a snapshot of a rule, used to persist and restore it
type RuleState struct {
	ID             uuid.UUID
	TradeID        uuid.UUID
	Kind           RuleKind
	RiskType       RiskType
	Percentage     decimal.Decimal
	SellPercentage decimal.Decimal
	OpenPrice      decimal.Decimal
	HighWaterMark  decimal.NullDecimal
	TriggerPrice   decimal.Decimal
	SellAmount     decimal.Decimal
	SoldAmount     decimal.Decimal
	Active         bool
}

// StopLoss sells part of a trade once the price falls a percentage below the
// open price (FIXED) or below the highest price seen since the trade opened
// (TRAILING). The trailing stop price only ever moves up
type StopLoss struct {
	id             uuid.UUID
	tradeID        uuid.UUID
	riskType       RiskType
	percentage     decimal.Decimal
	sellPercentage decimal.Decimal
	openPrice      decimal.Decimal
	highWaterMark  decimal.Decimal
	stopLossPrice  decimal.Decimal
	sellAmount     decimal.Decimal
	soldAmount     decimal.Decimal
	active         bool
}

// TakeProfit sells part of a trade once the price rises a percentage above
// the open price. A TRAILING take profit arms at that price and then follows
// the high water mark, triggering on a pullback of the same percentage
type TakeProfit struct {
	id              uuid.UUID
	tradeID         uuid.UUID
	riskType        RiskType
	percentage      decimal.Decimal
	sellPercentage  decimal.Decimal
	openPrice       decimal.Decimal
	highWaterMark   decimal.NullDecimal
	takeProfitPrice decimal.Decimal
	sellAmount      decimal.Decimal
	soldAmount      decimal.Decimal
	active          bool
}

var (
	_ Rule = (*StopLoss)(nil)
	_ Rule = (*TakeProfit)(nil)
)
