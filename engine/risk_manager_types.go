package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/algotrader-go/algotrader/order"
	"github.com/algotrader-go/algotrader/trade"
	"github.com/gofrs/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// RiskManagerName is an exported subsystem name
const RiskManagerName = "risk_manager"

const defaultTickBufferSize = 1024

var (
	errNilTrade              = errors.New("trade is nil")
	errNilRule               = errors.New("risk rule is nil")
	errTradeAlreadyOpen      = errors.New("trade is already managed")
	errTradeNotFound         = errors.New("trade not found")
	errTradeNotOpen          = errors.New("trade has nothing left to sell")
	errRuleTradeMismatch     = errors.New("risk rule belongs to another trade")
	errSellPercentageOverrun = errors.New("sum of sell percentages exceeds 100")
	errSellFailed            = errors.New("sell execution failed")
	errNilOrder              = errors.New("executor returned nil order")
)

// Executor places the sell orders triggered by risk rules
type Executor interface {
	Sell(ctx context.Context, t *trade.Trade, amount, price decimal.Decimal) (*order.Order, error)
}

// Persister stores executed orders and updated rule state
type Persister interface {
	SaveOrder(ctx context.Context, o *order.Order) error
	SaveRule(ctx context.Context, st *trade.RuleState) error
}

// Config holds optional RiskManager settings
type Config struct {
	// TickBufferSize is the capacity of the Submit queue
	TickBufferSize int
	// Registerer receives the risk metrics, nil disables registration
	Registerer prometheus.Registerer
	Persister  Persister
}

// Tick is a price observation for a target symbol
type Tick struct {
	Symbol string
	Price  decimal.Decimal
	Time   time.Time
}

// Execution records a sell made because a rule triggered
type Execution struct {
	TradeID  uuid.UUID
	Kind     trade.RuleKind
	RiskType trade.RiskType
	Price    decimal.Decimal
	Amount   decimal.Decimal
	Order    *order.Order
	Time     time.Time
}

// position is a managed trade with its rules. mu serialises rule evaluation
// for the trade
type position struct {
	mu    sync.Mutex
	trade *trade.Trade
	rules []trade.Rule
}

// RiskManager evaluates the stop loss and take profit rules of open trades
// against incoming prices and sells when they trigger
type RiskManager struct {
	started   int32
	executor  Executor
	persister Persister
	metrics   *riskMetrics
	bufSize   int

	m         sync.RWMutex
	positions map[uuid.UUID]*position
	sequence  []uuid.UUID

	ticks      chan Tick
	executions chan Execution
	shutdown   chan struct{}
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}
