package backtester

import (
	"context"
	"strings"

	"github.com/algotrader-go/algotrader/common/math"
	"github.com/algotrader-go/algotrader/config"
	"github.com/algotrader-go/algotrader/engine"
	"github.com/algotrader-go/algotrader/log"
	"github.com/algotrader-go/algotrader/trade"
	"github.com/shopspring/decimal"
)

// SettingsFromConfig builds run settings from the backtest and risk sections
func SettingsFromConfig(c *config.Config) *Settings {
	return &Settings{
		TargetSymbol:  c.Backtest.TargetSymbol,
		TradingSymbol: c.Backtest.TradingSymbol,
		OpenPrice:     c.Backtest.OpenPrice,
		Amount:        c.Backtest.Amount,
		StopLosses:    c.Risk.StopLosses,
		TakeProfits:   c.Risk.TakeProfits,
	}
}

// Run opens one trade at the configured open price, attaches the configured
// stop losses and take profits and replays ticks through a risk manager
// until the trade is sold, the ticks run out or ctx is cancelled
func Run(ctx context.Context, s *Settings, ticks []engine.Tick) (*Report, error) {
	if s == nil {
		return nil, errNilSettings
	}
	if len(ticks) == 0 {
		return nil, errNoTicks
	}
	openedAt := s.OpenedAt
	if openedAt.IsZero() {
		openedAt = ticks[0].Time
	}
	tr, err := trade.New(s.TargetSymbol, s.TradingSymbol, s.OpenPrice, s.Amount, openedAt)
	if err != nil {
		return nil, err
	}
	rules, err := buildRules(tr, s)
	if err != nil {
		return nil, err
	}
	executor := &SimulatedExecutor{FeePercentage: s.FeePercentage}
	rm, err := engine.SetupRiskManager(executor, &engine.Config{
		Registerer: s.Registerer,
		Persister:  s.Persister,
	})
	if err != nil {
		return nil, err
	}
	if err = rm.OpenTrade(tr, rules...); err != nil {
		return nil, err
	}
	log.Infof(log.BackTester, "Replaying %d ticks for %s with %d rules", len(ticks), tr, len(rules))

	report := &Report{
		TradeID:       tr.ID,
		TargetSymbol:  tr.TargetSymbol,
		TradingSymbol: tr.TradingSymbol,
		OpenPrice:     tr.OpenPrice,
		Amount:        tr.Amount,
		LastPrice:     tr.OpenPrice,
	}
	for i := range ticks {
		if ctx.Err() != nil {
			report.Cancelled = true
			log.Warnf(log.BackTester, "Backtest cancelled after %d ticks", report.TicksProcessed)
			break
		}
		tick := ticks[i]
		if tick.Symbol == "" {
			tick.Symbol = tr.TargetSymbol
		}
		if !strings.EqualFold(tick.Symbol, tr.TargetSymbol) {
			continue
		}
		executions, err := rm.ProcessTick(ctx, tick)
		report.Executions = append(report.Executions, executions...)
		if err != nil {
			return nil, err
		}
		report.TicksProcessed++
		report.LastPrice = tick.Price
		if !tr.IsOpen() {
			log.Infof(log.BackTester, "Trade %s fully sold at %s", tr.ID, tick.Price)
			break
		}
	}

	report.Fees = executor.Fees()
	report.Remaining = tr.Remaining()
	for i := range report.Executions {
		e := &report.Executions[i]
		report.Realised = report.Realised.Add(e.Amount.Mul(e.Price))
		report.NetProfit = report.NetProfit.Add(math.CalculateNetProfit(e.Amount, tr.OpenPrice, e.Price, decimal.Zero))
	}
	report.UnrealisedValue = report.Remaining.Mul(report.LastPrice)
	report.NetProfit = report.NetProfit.
		Add(math.CalculateNetProfit(report.Remaining, tr.OpenPrice, report.LastPrice, decimal.Zero)).
		Sub(report.Fees)
	cost := tr.OpenPrice.Mul(tr.Amount)
	report.Return = math.CalculatePercentageGainOrLoss(cost.Add(report.NetProfit), cost)
	for i := range rules {
		report.Rules = append(report.Rules, rules[i].State())
	}
	return report, nil
}

func buildRules(tr *trade.Trade, s *Settings) ([]trade.Rule, error) {
	var rules []trade.Rule
	for i := range s.StopLosses {
		sl, err := trade.NewStopLoss(s.StopLosses[i].Setup(tr.ID, tr.OpenPrice, tr.Amount))
		if err != nil {
			return nil, err
		}
		rules = append(rules, sl)
	}
	for i := range s.TakeProfits {
		tp, err := trade.NewTakeProfit(s.TakeProfits[i].Setup(tr.ID, tr.OpenPrice, tr.Amount))
		if err != nil {
			return nil, err
		}
		rules = append(rules, tp)
	}
	return rules, nil
}
