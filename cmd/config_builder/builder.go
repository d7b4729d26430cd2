package main

import (
	"flag"
	"log"

	"github.com/algotrader-go/algotrader/config"
	"github.com/algotrader-go/algotrader/trade"
	"github.com/shopspring/decimal"
)

func main() {
	var out string
	flag.StringVar(&out, "out", config.File, "where to write the generated config")
	flag.Parse()

	cfg := config.DefaultConfig()
	cfg.Risk.MetricsListenAddress = ":9100"
	cfg.Risk.StopLosses = []config.RuleConfig{{
		RiskType:   trade.Trailing.String(),
		Percentage: decimal.NewFromInt(5),
	}}
	cfg.Risk.TakeProfits = []config.RuleConfig{{
		RiskType:       trade.Fixed.String(),
		Percentage:     decimal.NewFromInt(10),
		SellPercentage: decimal.NewFromInt(50),
	}}
	cfg.Backtest = config.BacktestConfig{
		DataFile:      "ticks.csv",
		TargetSymbol:  "BTC",
		TradingSymbol: "USDT",
		OpenPrice:     decimal.NewFromInt(30000),
		Amount:        decimal.NewFromFloat(0.5),
	}
	if err := cfg.CheckRiskConfig(); err != nil {
		log.Fatalf("Generated risk config is invalid. Err: %s", err)
	}
	if err := cfg.SaveConfigToFile(out); err != nil {
		log.Fatalf("Unable to save config. Err: %s", err)
	}
	log.Printf("Wrote %s", out)
}
