package config

import (
	"errors"
	"sync"

	"github.com/algotrader-go/algotrader/database"
	"github.com/algotrader-go/algotrader/log"
	"github.com/shopspring/decimal"
)

// Constants declared here are filename strings and test strings
const (
	File      = "config.json"
	EnvPrefix = "ALGOTRADER"

	defaultTickBufferSize = 1024
	defaultSQLiteDatabase = "algotrader.db"
)

var (
	m sync.Mutex

	errNoDataFile            = errors.New("backtest data file not set")
	errNoSymbols             = errors.New("backtest target and trading symbols must be set")
	errInvalidOpenPrice      = errors.New("backtest open price must be above 0")
	errInvalidAmount         = errors.New("backtest amount must be above 0")
	errSellPercentageOverrun = errors.New("sum of sell percentages exceeds 100")
	errUnsupportedDriver     = errors.New("unsupported database driver")
)

// Config is the overarching object that holds all the information for
// logging, persistence, risk rules and backtesting
type Config struct {
	Name          string          `json:"name" mapstructure:"name"`
	DataDirectory string          `json:"dataDirectory" mapstructure:"dataDirectory"`
	Logging       log.Config      `json:"logging" mapstructure:"logging"`
	Database      database.Config `json:"database" mapstructure:"database"`
	Risk          RiskConfig      `json:"risk" mapstructure:"risk"`
	Backtest      BacktestConfig  `json:"backtest" mapstructure:"backtest"`
}

// RiskConfig holds the risk manager settings and the rules attached to every
// new trade
type RiskConfig struct {
	TickBufferSize       int          `json:"tickBufferSize" mapstructure:"tickBufferSize"`
	MetricsListenAddress string       `json:"metricsListenAddress" mapstructure:"metricsListenAddress"`
	StopLosses           []RuleConfig `json:"stopLosses" mapstructure:"stopLosses"`
	TakeProfits          []RuleConfig `json:"takeProfits" mapstructure:"takeProfits"`
}

// RuleConfig describes a stop loss or take profit
type RuleConfig struct {
	RiskType       string          `json:"riskType" mapstructure:"riskType"`
	Percentage     decimal.Decimal `json:"percentage" mapstructure:"percentage"`
	SellPercentage decimal.Decimal `json:"sellPercentage" mapstructure:"sellPercentage"`
}

// BacktestConfig holds the trade replayed against historic prices
type BacktestConfig struct {
	DataFile       string          `json:"dataFile" mapstructure:"dataFile"`
	TargetSymbol   string          `json:"targetSymbol" mapstructure:"targetSymbol"`
	TradingSymbol  string          `json:"tradingSymbol" mapstructure:"tradingSymbol"`
	OpenPrice      decimal.Decimal `json:"openPrice" mapstructure:"openPrice"`
	Amount         decimal.Decimal `json:"amount" mapstructure:"amount"`
	PersistResults bool            `json:"persistResults" mapstructure:"persistResults"`
}
