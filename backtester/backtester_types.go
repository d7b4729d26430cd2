package backtester

import (
	"errors"
	"sync"
	"time"

	"github.com/algotrader-go/algotrader/config"
	"github.com/algotrader-go/algotrader/engine"
	"github.com/algotrader-go/algotrader/trade"
	"github.com/gofrs/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

var (
	errNilSettings      = errors.New("backtest settings are nil")
	errNoTicks          = errors.New("no ticks to replay")
	errInvalidRow       = errors.New("invalid tick row")
	errUnsupportedWidth = errors.New("tick rows must have 2 or 6 columns")
)

// Settings describes the trade replayed by Run
type Settings struct {
	TargetSymbol  string
	TradingSymbol string
	OpenPrice     decimal.Decimal
	Amount        decimal.Decimal
	// OpenedAt defaults to the time of the first tick
	OpenedAt    time.Time
	StopLosses  []config.RuleConfig
	TakeProfits []config.RuleConfig
	// FeePercentage is charged on the trading symbol value of every sell
	FeePercentage decimal.Decimal
	Persister     engine.Persister
	Registerer    prometheus.Registerer
}

// SimulatedExecutor fills every sell immediately at the tick price
type SimulatedExecutor struct {
	FeePercentage decimal.Decimal

	m        sync.Mutex
	sequence int64
	fees     decimal.Decimal
}

// Report summarises a backtest run
type Report struct {
	TradeID         uuid.UUID
	TargetSymbol    string
	TradingSymbol   string
	OpenPrice       decimal.Decimal
	Amount          decimal.Decimal
	TicksProcessed  int
	Cancelled       bool
	Executions      []engine.Execution
	Realised        decimal.Decimal
	Fees            decimal.Decimal
	Remaining       decimal.Decimal
	LastPrice       decimal.Decimal
	UnrealisedValue decimal.Decimal
	NetProfit       decimal.Decimal
	Return          decimal.Decimal
	Rules           []trade.RuleState
}
