package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/algotrader-go/algotrader/common"
	"github.com/algotrader-go/algotrader/common/convert"
	"github.com/algotrader-go/algotrader/common/file"
	"github.com/algotrader-go/algotrader/database"
	"github.com/algotrader-go/algotrader/encoding/json"
	"github.com/algotrader-go/algotrader/log"
	"github.com/algotrader-go/algotrader/trade"
	"github.com/gofrs/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// envKeys are the settings that can be overridden from the environment,
// eg ALGOTRADER_DATABASE_PASSWORD
var envKeys = []string{
	"dataDirectory",
	"database.enabled",
	"database.driver",
	"database.host",
	"database.port",
	"database.username",
	"database.password",
	"database.database",
	"database.sslmode",
	"risk.metricsListenAddress",
	"backtest.dataFile",
	"backtest.targetSymbol",
	"backtest.tradingSymbol",
	"backtest.openPrice",
	"backtest.amount",
	"backtest.persistResults",
}

// DefaultConfig returns a config with known working defaults
func DefaultConfig() Config {
	return Config{
		Name:     "AlgoTrader",
		Logging:  log.GenDefaultSettings(),
		Database: database.Config{Driver: database.DBSQLite3},
		Risk: RiskConfig{
			TickBufferSize: defaultTickBufferSize,
		},
	}
}

// ReadConfigFromFile loads a JSON, YAML or TOML config file over the
// defaults, applies ALGOTRADER_ prefixed environment overrides and checks
// the result
func (c *Config) ReadConfigFromFile(configPath string) error {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range envKeys {
		if err := v.BindEnv(k); err != nil {
			return err
		}
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config %w", err)
	}
	cfg := DefaultConfig()
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		decimalHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return fmt.Errorf("error decoding config %w", err)
	}
	*c = cfg
	log.Debugf(log.ConfigMgr, "Loaded config %s from %s", c.Name, configPath)
	return c.CheckConfig()
}

// decimalHookFunc decodes strings and numbers into decimal.Decimal
func decimalHookFunc() mapstructure.DecodeHookFuncType {
	target := reflect.TypeOf(decimal.Decimal{})
	return func(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != target {
			return data, nil
		}
		d, err := convert.NullDecimalFromValue(data)
		if err != nil {
			return nil, err
		}
		return d.Decimal, nil
	}
}

// SaveConfigToFile saves the config as indented JSON
func (c *Config) SaveConfigToFile(configPath string) error {
	data, err := json.MarshalIndent(c, "", " ")
	if err != nil {
		return err
	}
	return file.Write(configPath, data)
}

// CheckConfig checks the logging, database and risk sections, filling in
// defaults where values are missing
func (c *Config) CheckConfig() error {
	if err := c.CheckLoggerConfig(); err != nil {
		return fmt.Errorf("logger config: %w", err)
	}
	if err := c.checkDatabaseConfig(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	return c.CheckRiskConfig()
}

// GetDataPath gets the data path for the given subpath
func (c *Config) GetDataPath(elem ...string) string {
	baseDir := c.DataDirectory
	if baseDir == "" {
		baseDir = common.DefaultDataDir()
	}
	return filepath.Join(append([]string{baseDir}, elem...)...)
}

// CheckLoggerConfig checks to see logger values are present and sets the
// log path
func (c *Config) CheckLoggerConfig() error {
	m.Lock()
	defer m.Unlock()

	if c.Logging.Enabled == nil || c.Logging.Output == "" {
		c.Logging = log.GenDefaultSettings()
	}
	if c.Logging.AdvancedSettings.ShowLogSystemName == nil {
		c.Logging.AdvancedSettings.ShowLogSystemName = convert.BoolPtr(false)
	}
	if c.Logging.LoggerFileConfig != nil && c.Logging.LoggerFileConfig.FileName == "" {
		c.Logging.LoggerFileConfig.FileName = "log.txt"
	}
	if !strings.Contains(strings.ToLower(c.Logging.Output), "file") {
		return nil
	}
	logPath := c.GetDataPath("logs")
	if err := common.CreateDir(logPath); err != nil {
		return err
	}
	log.LogPath = logPath
	return nil
}

func (c *Config) checkDatabaseConfig() error {
	m.Lock()
	defer m.Unlock()

	if c.Database.Driver == "" {
		c.Database.Driver = database.DBSQLite3
	}
	if !c.Database.Enabled {
		return nil
	}
	driver := database.NormaliseDriver(c.Database.Driver)
	if driver == database.DBInvalidDriver {
		c.Database.Enabled = false
		return fmt.Errorf("%w %v, database disabled", errUnsupportedDriver, c.Database.Driver)
	}
	if driver == database.DBSQLite3 {
		if c.Database.Database == "" {
			c.Database.Database = defaultSQLiteDatabase
		}
		databaseDir := c.GetDataPath("database")
		if err := common.CreateDir(databaseDir); err != nil {
			return err
		}
		database.DB.DataPath = databaseDir
	}
	return database.DB.SetConfig(&c.Database)
}

// CheckRiskConfig checks every rule and that the sell percentages of the
// stop losses, and separately of the take profits, do not exceed 100
func (c *Config) CheckRiskConfig() error {
	m.Lock()
	defer m.Unlock()

	if c.Risk.TickBufferSize <= 0 {
		c.Risk.TickBufferSize = defaultTickBufferSize
	}
	for _, rules := range []struct {
		kind  trade.RuleKind
		rules []RuleConfig
	}{
		{trade.StopLossKind, c.Risk.StopLosses},
		{trade.TakeProfitKind, c.Risk.TakeProfits},
	} {
		sum := decimal.Zero
		for i := range rules.rules {
			if err := rules.rules[i].Check(); err != nil {
				return fmt.Errorf("%s %d: %w", rules.kind, i, err)
			}
			sum = sum.Add(rules.rules[i].EffectiveSellPercentage())
		}
		if sum.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("%w: %s total %s", errSellPercentageOverrun, rules.kind, sum)
		}
	}
	return nil
}

// CheckBacktestConfig checks the backtest section is complete
func (c *Config) CheckBacktestConfig() error {
	var errs error
	if c.Backtest.DataFile == "" {
		errs = common.AppendError(errs, errNoDataFile)
	}
	if c.Backtest.TargetSymbol == "" || c.Backtest.TradingSymbol == "" {
		errs = common.AppendError(errs, errNoSymbols)
	}
	if !c.Backtest.OpenPrice.IsPositive() {
		errs = common.AppendError(errs, errInvalidOpenPrice)
	}
	if !c.Backtest.Amount.IsPositive() {
		errs = common.AppendError(errs, errInvalidAmount)
	}
	return errs
}

// Check validates the rule bounds
func (r *RuleConfig) Check() error {
	if _, err := trade.StringToRiskType(r.RiskType); err != nil {
		return err
	}
	if !r.Percentage.IsPositive() || r.Percentage.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: %s", trade.ErrInvalidPercentage, r.Percentage)
	}
	if r.SellPercentage.IsNegative() || r.SellPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: %s", trade.ErrInvalidSellPercentage, r.SellPercentage)
	}
	return nil
}

// EffectiveSellPercentage returns the sell percentage with the default of
// 100 applied
func (r *RuleConfig) EffectiveSellPercentage() decimal.Decimal {
	if r.SellPercentage.IsZero() {
		return decimal.NewFromInt(100)
	}
	return r.SellPercentage
}

// Setup returns the trade package setup for a rule attached to the trade
func (r *RuleConfig) Setup(tradeID uuid.UUID, openPrice, amount decimal.Decimal) *trade.RuleSetup {
	return &trade.RuleSetup{
		TradeID:          tradeID,
		RiskType:         trade.RiskType(r.RiskType),
		Percentage:       r.Percentage,
		OpenPrice:        openPrice,
		TotalAmountTrade: amount,
		SellPercentage:   r.SellPercentage,
	}
}
