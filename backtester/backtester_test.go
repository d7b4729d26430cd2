package backtester

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/algotrader-go/algotrader/common"
	"github.com/algotrader-go/algotrader/config"
	"github.com/algotrader-go/algotrader/engine"
	"github.com/algotrader-go/algotrader/trade"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ticksOf(prices ...int64) []engine.Tick {
	start := time.Date(2023, 11, 14, 0, 0, 0, 0, time.UTC)
	ticks := make([]engine.Tick, len(prices))
	for i, p := range prices {
		ticks[i] = engine.Tick{
			Symbol: "BTC",
			Price:  decimal.NewFromInt(p),
			Time:   start.Add(time.Duration(i) * time.Minute),
		}
	}
	return ticks
}

func trailingSettings() *Settings {
	return &Settings{
		TargetSymbol:  "BTC",
		TradingSymbol: "USDT",
		OpenPrice:     decimal.NewFromInt(100),
		Amount:        decimal.NewFromInt(10),
		StopLosses: []config.RuleConfig{
			{RiskType: "TRAILING", Percentage: decimal.NewFromInt(5)},
		},
		FeePercentage: decimal.NewFromFloat(0.1),
		Registerer:    prometheus.NewRegistry(),
	}
}

func TestRunTrailingStopLoss(t *testing.T) {
	t.Parallel()
	r, err := Run(context.Background(), trailingSettings(), ticksOf(100, 120, 114, 90))
	require.NoError(t, err)

	assert.Equal(t, 3, r.TicksProcessed, "replay should stop once the trade is sold")
	assert.False(t, r.Cancelled)
	require.Len(t, r.Executions, 1)
	assert.Equal(t, trade.StopLossKind, r.Executions[0].Kind)
	assert.Equal(t, trade.Trailing, r.Executions[0].RiskType)
	assert.True(t, r.Executions[0].Price.Equal(decimal.NewFromInt(114)))
	assert.True(t, r.Executions[0].Amount.Equal(decimal.NewFromInt(10)))

	assert.True(t, r.Realised.Equal(decimal.NewFromInt(1140)), r.Realised.String())
	assert.True(t, r.Fees.Equal(decimal.NewFromFloat(1.14)), r.Fees.String())
	assert.True(t, r.Remaining.IsZero())
	assert.True(t, r.UnrealisedValue.IsZero())
	assert.True(t, r.NetProfit.Equal(decimal.NewFromFloat(138.86)), r.NetProfit.String())
	assert.True(t, r.Return.Equal(decimal.NewFromFloat(13.886)), r.Return.String())

	require.Len(t, r.Rules, 1)
	assert.False(t, r.Rules[0].Active)
	assert.True(t, r.Rules[0].TriggerPrice.Equal(decimal.NewFromInt(114)))
}

func TestRunPartialSells(t *testing.T) {
	t.Parallel()
	s := &Settings{
		TargetSymbol:  "BTC",
		TradingSymbol: "USDT",
		OpenPrice:     decimal.NewFromInt(100),
		Amount:        decimal.NewFromInt(10),
		StopLosses: []config.RuleConfig{
			{RiskType: "FIXED", Percentage: decimal.NewFromInt(10)},
		},
		TakeProfits: []config.RuleConfig{
			{RiskType: "FIXED", Percentage: decimal.NewFromInt(10), SellPercentage: decimal.NewFromInt(50)},
		},
	}
	r, err := Run(context.Background(), s, ticksOf(100, 110, 105))
	require.NoError(t, err)
	require.Len(t, r.Executions, 1)
	assert.Equal(t, trade.TakeProfitKind, r.Executions[0].Kind)
	assert.True(t, r.Executions[0].Amount.Equal(decimal.NewFromInt(5)))
	assert.True(t, r.Remaining.Equal(decimal.NewFromInt(5)))
	assert.True(t, r.LastPrice.Equal(decimal.NewFromInt(105)))
	assert.True(t, r.UnrealisedValue.Equal(decimal.NewFromInt(525)))
	// 5 sold 10 higher plus 5 held 5 higher
	assert.True(t, r.NetProfit.Equal(decimal.NewFromInt(75)), r.NetProfit.String())
	assert.True(t, r.Fees.IsZero())
}

func TestRunSkipsOtherSymbols(t *testing.T) {
	t.Parallel()
	ticks := ticksOf(100, 80)
	ticks[1].Symbol = "ETH"
	r, err := Run(context.Background(), trailingSettings(), ticks)
	require.NoError(t, err)
	assert.Equal(t, 1, r.TicksProcessed)
	assert.Empty(t, r.Executions)
	assert.True(t, r.Remaining.Equal(decimal.NewFromInt(10)))
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, err := Run(ctx, trailingSettings(), ticksOf(100, 50))
	require.NoError(t, err)
	assert.True(t, r.Cancelled)
	assert.Zero(t, r.TicksProcessed)
	assert.True(t, r.LastPrice.Equal(decimal.NewFromInt(100)))
	assert.True(t, r.NetProfit.IsZero())
}

func TestRunErrors(t *testing.T) {
	t.Parallel()
	_, err := Run(context.Background(), nil, ticksOf(100))
	assert.ErrorIs(t, err, errNilSettings)

	_, err = Run(context.Background(), trailingSettings(), nil)
	assert.ErrorIs(t, err, errNoTicks)

	s := trailingSettings()
	s.OpenPrice = decimal.Zero
	_, err = Run(context.Background(), s, ticksOf(100))
	assert.Error(t, err)

	s = trailingSettings()
	s.StopLosses[0].RiskType = "SIDEWAYS"
	_, err = Run(context.Background(), s, ticksOf(100))
	assert.ErrorIs(t, err, trade.ErrInvalidRiskType)
}

func TestSettingsFromConfig(t *testing.T) {
	t.Parallel()
	c := config.DefaultConfig()
	c.Backtest.TargetSymbol = "BTC"
	c.Backtest.TradingSymbol = "USDT"
	c.Backtest.OpenPrice = decimal.NewFromInt(100)
	c.Backtest.Amount = decimal.NewFromInt(2)
	c.Risk.StopLosses = []config.RuleConfig{{RiskType: "FIXED", Percentage: decimal.NewFromInt(5)}}

	s := SettingsFromConfig(&c)
	assert.Equal(t, "BTC", s.TargetSymbol)
	assert.Equal(t, "USDT", s.TradingSymbol)
	assert.True(t, s.Amount.Equal(decimal.NewFromInt(2)))
	assert.Len(t, s.StopLosses, 1)
	assert.Empty(t, s.TakeProfits)
}

func TestReportPrint(t *testing.T) {
	t.Parallel()
	r, err := Run(context.Background(), trailingSettings(), ticksOf(100, 120, 114))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.Print(&buf))
	out := buf.String()
	assert.Contains(t, out, r.TradeID.String())
	assert.Contains(t, out, "BTC/USDT")
	assert.Contains(t, out, "TRAILING STOP_LOSS")
	assert.Contains(t, out, "138.86000000")
	assert.Contains(t, out, "13.89%")

	r = nil
	assert.ErrorIs(t, r.Print(&buf), common.ErrNilPointer)
}
