package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/algotrader-go/algotrader/backtester"
	"github.com/algotrader-go/algotrader/config"
	"github.com/algotrader-go/algotrader/database/repository"
	"github.com/algotrader-go/algotrader/database/repository/orders"
	"github.com/algotrader-go/algotrader/engine"
	"github.com/algotrader-go/algotrader/log"
	"github.com/algotrader-go/algotrader/order"
	"github.com/algotrader-go/algotrader/signaler"
	"github.com/algotrader-go/algotrader/trade"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

var (
	configFile     string
	dataFile       string
	targetSymbol   string
	tradingSymbol  string
	openPrice      string
	amount         string
	stopLoss       string
	takeProfit     string
	sellPercentage string
	fee            string
	metricsListen  string
	trailing       bool
	persist        bool
)

func main() {
	app := cli.NewApp()
	app.Name = "backtester"
	app.Usage = "replays historic prices against a trade guarded by stop losses and take profits"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "config file to load, flags override its backtest and risk sections",
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "data",
			Aliases:     []string{"d"},
			Usage:       "CSV file of timestamp,price or timestamp,volume,open,high,low,close rows",
			Destination: &dataFile,
		},
		&cli.StringFlag{
			Name:        "symbol",
			Usage:       "the target symbol bought by the trade",
			Destination: &targetSymbol,
		},
		&cli.StringFlag{
			Name:        "trading-symbol",
			Usage:       "the symbol the trade was paid in",
			Destination: &tradingSymbol,
		},
		&cli.StringFlag{
			Name:        "open-price",
			Usage:       "the price the trade was opened at",
			Destination: &openPrice,
		},
		&cli.StringFlag{
			Name:        "amount",
			Usage:       "the amount of target symbol bought",
			Destination: &amount,
		},
		&cli.StringFlag{
			Name:        "stop-loss",
			Usage:       "adds a stop loss this percentage below the open price",
			Destination: &stopLoss,
		},
		&cli.StringFlag{
			Name:        "take-profit",
			Usage:       "adds a take profit this percentage above the open price",
			Destination: &takeProfit,
		},
		&cli.BoolFlag{
			Name:        "trailing",
			Usage:       "makes the rules added by flag trailing instead of fixed",
			Destination: &trailing,
		},
		&cli.StringFlag{
			Name:        "sell-percentage",
			Usage:       "percentage of the trade sold when a rule added by flag triggers",
			Value:       "100",
			Destination: &sellPercentage,
		},
		&cli.StringFlag{
			Name:        "fee",
			Usage:       "percentage fee charged on every simulated sell",
			Value:       "0",
			Destination: &fee,
		},
		&cli.StringFlag{
			Name:        "metrics-listen",
			Usage:       "address to serve prometheus metrics on while replaying, eg :9100",
			Destination: &metricsListen,
		},
		&cli.BoolFlag{
			Name:        "persist",
			Usage:       "stores executed orders and rule state in the configured database",
			Destination: &persist,
		},
	}
	app.Action = runBacktest

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runBacktest(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err = log.SetupGlobalLogger(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	defer func() {
		if errClose := log.CloseLogger(); errClose != nil {
			fmt.Fprintln(os.Stderr, errClose)
		}
	}()

	settings := backtester.SettingsFromConfig(cfg)
	if settings.FeePercentage, err = decimal.NewFromString(fee); err != nil {
		return fmt.Errorf("invalid fee %q: %w", fee, err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	settings.Registerer = reg
	if cfg.Risk.MetricsListenAddress != "" {
		srv := serveMetrics(cfg.Risk.MetricsListenAddress, reg)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if errShutdown := srv.Shutdown(ctx); errShutdown != nil {
				log.Errorln(log.Global, errShutdown)
			}
		}()
	}

	var persister *repository.Persister
	if cfg.Backtest.PersistResults {
		var dbm *engine.DatabaseConnectionManager
		dbm, err = engine.SetupDatabaseConnectionManager(&cfg.Database)
		if err != nil {
			return err
		}
		var wg sync.WaitGroup
		if err = dbm.Start(&wg); err != nil {
			return err
		}
		defer func() {
			if errStop := dbm.Stop(); errStop != nil {
				log.Errorln(log.DatabaseMgr, errStop)
			}
			wg.Wait()
		}()
		if persister, err = repository.NewPersister(dbm.GetInstance()); err != nil {
			return err
		}
		settings.Persister = persister
		log.Infof(log.DatabaseMgr, "Persisting backtest results to %s database %s", cfg.Database.Driver, cfg.Database.Database)
	}

	ticks, err := backtester.LoadTicksFromCSV(cfg.Backtest.DataFile, cfg.Backtest.TargetSymbol)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", cfg.Backtest.DataFile, err)
	}
	log.Infof(log.BackTester, "Loaded %d ticks from %s", len(ticks), cfg.Backtest.DataFile)

	ctx, cancel := signaler.WithInterrupt(c.Context)
	defer cancel()
	report, err := backtester.Run(ctx, settings, ticks)
	if err != nil {
		return err
	}
	if persister != nil {
		stored, errList := persister.Orders.List(context.Background(), orders.Filter{
			TargetSymbol:  cfg.Backtest.TargetSymbol,
			TradingSymbol: cfg.Backtest.TradingSymbol,
			Side:          order.Sell,
		})
		if errList != nil {
			log.Errorf(log.DatabaseMgr, "Listing stored orders: %v", errList)
		} else {
			log.Infof(log.DatabaseMgr, "%d %s/%s sell orders stored", len(stored), cfg.Backtest.TargetSymbol, cfg.Backtest.TradingSymbol)
		}
	}
	return report.Print(os.Stdout)
}

func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		if err := cfg.ReadConfigFromFile(configFile); err != nil {
			return nil, err
		}
	}
	if err := applyFlags(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.CheckConfig(); err != nil {
		return nil, err
	}
	if err := cfg.CheckBacktestConfig(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyFlags(cfg *config.Config) error {
	if dataFile != "" {
		cfg.Backtest.DataFile = dataFile
	}
	if targetSymbol != "" {
		cfg.Backtest.TargetSymbol = targetSymbol
	}
	if tradingSymbol != "" {
		cfg.Backtest.TradingSymbol = tradingSymbol
	}
	if metricsListen != "" {
		cfg.Risk.MetricsListenAddress = metricsListen
	}
	if persist {
		cfg.Backtest.PersistResults = true
		cfg.Database.Enabled = true
	}
	var err error
	if openPrice != "" {
		if cfg.Backtest.OpenPrice, err = decimal.NewFromString(openPrice); err != nil {
			return fmt.Errorf("invalid open price %q: %w", openPrice, err)
		}
	}
	if amount != "" {
		if cfg.Backtest.Amount, err = decimal.NewFromString(amount); err != nil {
			return fmt.Errorf("invalid amount %q: %w", amount, err)
		}
	}
	if stopLoss == "" && takeProfit == "" {
		return nil
	}
	sell, err := decimal.NewFromString(sellPercentage)
	if err != nil {
		return fmt.Errorf("invalid sell percentage %q: %w", sellPercentage, err)
	}
	riskType := trade.Fixed
	if trailing {
		riskType = trade.Trailing
	}
	rule := func(pct string) (config.RuleConfig, error) {
		p, err := decimal.NewFromString(pct)
		if err != nil {
			return config.RuleConfig{}, fmt.Errorf("invalid percentage %q: %w", pct, err)
		}
		return config.RuleConfig{RiskType: riskType.String(), Percentage: p, SellPercentage: sell}, nil
	}
	if stopLoss != "" {
		r, err := rule(stopLoss)
		if err != nil {
			return err
		}
		cfg.Risk.StopLosses = append(cfg.Risk.StopLosses, r)
	}
	if takeProfit != "" {
		r, err := rule(takeProfit)
		if err != nil {
			return err
		}
		cfg.Risk.TakeProfits = append(cfg.Risk.TakeProfits, r)
	}
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Infof(log.Global, "Serving metrics on http://%s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf(log.Global, "Metrics server failed: %v", err)
		}
	}()
	return srv
}
