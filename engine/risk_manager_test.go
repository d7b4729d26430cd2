package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/algotrader-go/algotrader/engine/subsystem"
	"github.com/algotrader-go/algotrader/order"
	"github.com/algotrader-go/algotrader/trade"
	"github.com/gofrs/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errExchangeDown = errors.New("exchange down")

type fakeExecutor struct {
	mu    sync.Mutex
	sells []decimal.Decimal
	err   error
	// failTrade limits err to sells of this trade when set
	failTrade uuid.UUID
}

func (f *fakeExecutor) Sell(_ context.Context, t *trade.Trade, amount, price decimal.Decimal) (*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil && (f.failTrade == uuid.Nil || f.failTrade == t.ID) {
		return nil, f.err
	}
	f.sells = append(f.sells, amount)
	return order.New(&order.Submit{
		TargetSymbol:       t.TargetSymbol,
		TradingSymbol:      t.TradingSymbol,
		Type:               order.Market,
		Side:               order.Sell,
		Status:             order.Success,
		Price:              decimal.NewNullDecimal(price),
		InitialPrice:       decimal.NewNullDecimal(price),
		AmountTargetSymbol: decimal.NewNullDecimal(amount),
	})
}

type fakePersister struct {
	mu     sync.Mutex
	orders []*order.Order
	rules  []trade.RuleState
	err    error
}

func (f *fakePersister) SaveOrder(_ context.Context, o *order.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.orders = append(f.orders, o)
	return nil
}

func (f *fakePersister) SaveRule(_ context.Context, st *trade.RuleState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rules = append(f.rules, *st)
	return nil
}

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func newTrade(t *testing.T, symbol string, amount float64) *trade.Trade {
	t.Helper()
	tr, err := trade.New(symbol, "USDT", d(100), d(amount), time.Time{})
	require.NoError(t, err, "trade.New must not error")
	return tr
}

func newStopLoss(t *testing.T, tr *trade.Trade, riskType trade.RiskType, pct, sellPct float64) *trade.StopLoss {
	t.Helper()
	sl, err := trade.NewStopLoss(&trade.RuleSetup{
		TradeID:          tr.ID,
		RiskType:         riskType,
		Percentage:       d(pct),
		OpenPrice:        tr.OpenPrice,
		TotalAmountTrade: tr.Amount,
		SellPercentage:   d(sellPct),
	})
	require.NoError(t, err, "NewStopLoss must not error")
	return sl
}

func newTakeProfit(t *testing.T, tr *trade.Trade, pct, sellPct float64) *trade.TakeProfit {
	t.Helper()
	tp, err := trade.NewTakeProfit(&trade.RuleSetup{
		TradeID:          tr.ID,
		RiskType:         trade.Fixed,
		Percentage:       d(pct),
		OpenPrice:        tr.OpenPrice,
		TotalAmountTrade: tr.Amount,
		SellPercentage:   d(sellPct),
	})
	require.NoError(t, err, "NewTakeProfit must not error")
	return tp
}

func tick(symbol string, price float64) Tick {
	return Tick{Symbol: symbol, Price: d(price), Time: time.Unix(1700000000, 0)}
}

func TestSetupRiskManager(t *testing.T) {
	t.Parallel()
	_, err := SetupRiskManager(nil, nil)
	assert.ErrorIs(t, err, subsystem.ErrNilExecutor)

	m, err := SetupRiskManager(&fakeExecutor{}, nil)
	require.NoError(t, err, "SetupRiskManager must not error")
	assert.Equal(t, defaultTickBufferSize, m.bufSize)
	assert.False(t, m.IsRunning())
}

func TestRiskManagerStartStop(t *testing.T) {
	t.Parallel()
	var m *RiskManager
	assert.ErrorIs(t, m.Start(), subsystem.ErrNil)
	assert.ErrorIs(t, m.Stop(), subsystem.ErrNil)
	assert.False(t, m.IsRunning())

	m, err := SetupRiskManager(&fakeExecutor{}, &Config{TickBufferSize: 4})
	require.NoError(t, err)
	assert.ErrorIs(t, m.Stop(), subsystem.ErrNotStarted)
	assert.ErrorIs(t, m.Submit(tick("DOT", 1)), subsystem.ErrNotStarted)

	require.NoError(t, m.Start(), "Start must not error")
	assert.True(t, m.IsRunning())
	assert.ErrorIs(t, m.Start(), subsystem.ErrAlreadyStarted)

	executions := m.Executions()
	require.NoError(t, m.Stop(), "Stop must not error")
	assert.False(t, m.IsRunning())
	_, open := <-executions
	assert.False(t, open, "Stop must close the executions channel")

	require.NoError(t, m.Start(), "Start must not error after Stop")
	require.NoError(t, m.Stop())
}

func TestRiskManagerConcurrentStop(t *testing.T) {
	t.Parallel()
	m, err := SetupRiskManager(&fakeExecutor{}, nil)
	require.NoError(t, err)
	require.NoError(t, m.Start())

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = m.Stop()
		}(i)
	}
	wg.Wait()
	var stopped int
	for _, err := range errs {
		if err == nil {
			stopped++
			continue
		}
		assert.ErrorIs(t, err, subsystem.ErrNotStarted)
	}
	assert.Equal(t, 1, stopped, "exactly one Stop must shut the manager down")
	assert.False(t, m.IsRunning())
}

func TestOpenTrade(t *testing.T) {
	t.Parallel()
	m, err := SetupRiskManager(&fakeExecutor{}, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, m.OpenTrade(nil), errNilTrade)

	tr := newTrade(t, "DOT", 10)
	err = m.OpenTrade(tr,
		newStopLoss(t, tr, trade.Fixed, 5, 60),
		newStopLoss(t, tr, trade.Trailing, 10, 50))
	assert.ErrorIs(t, err, errSellPercentageOverrun)

	other := newTrade(t, "DOT", 10)
	err = m.OpenTrade(tr, newStopLoss(t, other, trade.Fixed, 5, 100))
	assert.ErrorIs(t, err, errRuleTradeMismatch)

	err = m.OpenTrade(tr, nil)
	assert.ErrorIs(t, err, errNilRule)

	require.NoError(t, m.OpenTrade(tr,
		newStopLoss(t, tr, trade.Fixed, 5, 60),
		newTakeProfit(t, tr, 10, 60)), "stop losses and take profits are summed separately")
	assert.ErrorIs(t, m.OpenTrade(tr), errTradeAlreadyOpen)
	assert.Equal(t, []uuid.UUID{tr.ID}, m.Trades())

	assert.ErrorIs(t, m.AddRule(tr.ID, newStopLoss(t, tr, trade.Trailing, 5, 50)), errSellPercentageOverrun)
	require.NoError(t, m.AddRule(tr.ID, newStopLoss(t, tr, trade.Trailing, 5, 40)))
	states, err := m.RuleStates(tr.ID)
	require.NoError(t, err)
	assert.Len(t, states, 3)

	assert.ErrorIs(t, m.AddRule(uuid.Must(uuid.NewV4()), newStopLoss(t, tr, trade.Fixed, 5, 1)), errTradeNotFound)

	require.NoError(t, m.CloseTrade(tr.ID))
	assert.Empty(t, m.Trades())
	assert.ErrorIs(t, m.CloseTrade(tr.ID), errTradeNotFound)
}

func TestProcessTickTrailingStopLoss(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{}
	persister := &fakePersister{}
	m, err := SetupRiskManager(exec, &Config{Persister: persister})
	require.NoError(t, err)

	tr := newTrade(t, "DOT", 10)
	sl := newStopLoss(t, tr, trade.Trailing, 5, 100)
	require.NoError(t, m.OpenTrade(tr, sl))

	executions, err := m.ProcessTick(context.Background(), tick("DOT", 120))
	require.NoError(t, err)
	assert.Empty(t, executions)
	assert.True(t, sl.GetStopLossPrice().Equal(d(114)))

	executions, err = m.ProcessTick(context.Background(), tick("DOT", 114))
	require.NoError(t, err, "ProcessTick must not error")
	require.Len(t, executions, 1)
	assert.Equal(t, tr.ID, executions[0].TradeID)
	assert.Equal(t, trade.StopLossKind, executions[0].Kind)
	assert.Equal(t, trade.Trailing, executions[0].RiskType)
	assert.True(t, executions[0].Amount.Equal(d(10)))
	assert.Equal(t, order.Sell, executions[0].Order.GetSide())

	assert.False(t, tr.IsOpen())
	assert.False(t, sl.IsActive())
	assert.Empty(t, m.Trades(), "fully sold trades must stop being managed")

	require.Len(t, persister.orders, 1)
	require.NotEmpty(t, persister.rules)
	assert.False(t, persister.rules[len(persister.rules)-1].Active)
}

func TestProcessTickPartialSells(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{}
	m, err := SetupRiskManager(exec, nil)
	require.NoError(t, err)

	tr := newTrade(t, "DOT", 10)
	sl := newStopLoss(t, tr, trade.Fixed, 5, 50)
	tp := newTakeProfit(t, tr, 10, 50)
	require.NoError(t, m.OpenTrade(tr, sl, tp))

	executions, err := m.ProcessTick(context.Background(), tick("DOT", 110))
	require.NoError(t, err)
	require.Len(t, executions, 1)
	assert.Equal(t, trade.TakeProfitKind, executions[0].Kind)
	assert.True(t, executions[0].Amount.Equal(d(5)))
	assert.False(t, tp.IsActive())

	executions, err = m.ProcessTick(context.Background(), tick("DOT", 95))
	require.NoError(t, err)
	require.Len(t, executions, 1)
	assert.Equal(t, trade.StopLossKind, executions[0].Kind)
	assert.True(t, executions[0].Amount.Equal(d(2.5)), "half of the remaining 5")
	assert.True(t, tr.Remaining().Equal(d(2.5)))
	assert.True(t, sl.IsActive())
	assert.Equal(t, []uuid.UUID{tr.ID}, m.Trades())
}

func TestProcessTickOtherSymbol(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{}
	m, err := SetupRiskManager(exec, nil)
	require.NoError(t, err)
	tr := newTrade(t, "DOT", 10)
	require.NoError(t, m.OpenTrade(tr, newStopLoss(t, tr, trade.Fixed, 5, 100)))

	executions, err := m.ProcessTick(context.Background(), tick("BTC", 1))
	require.NoError(t, err)
	assert.Empty(t, executions)
	assert.Empty(t, exec.sells)

	executions, err = m.ProcessTick(context.Background(), tick("dot", 1))
	require.NoError(t, err)
	assert.Len(t, executions, 1, "symbols match case insensitively")
}

func TestProcessTickExecutorError(t *testing.T) {
	t.Parallel()
	m, err := SetupRiskManager(&fakeExecutor{err: errExchangeDown}, nil)
	require.NoError(t, err)
	tr := newTrade(t, "DOT", 10)
	sl := newStopLoss(t, tr, trade.Fixed, 5, 100)
	require.NoError(t, m.OpenTrade(tr, sl))

	_, err = m.ProcessTick(context.Background(), tick("DOT", 90))
	assert.ErrorIs(t, err, errSellFailed)
	assert.ErrorIs(t, err, errExchangeDown)
	assert.True(t, tr.Remaining().Equal(d(10)), "failed sells must not change the trade")
	assert.True(t, sl.IsActive())
}

func TestProcessTickExecutorErrorOtherTrades(t *testing.T) {
	t.Parallel()
	failing := newTrade(t, "DOT", 10)
	exec := &fakeExecutor{err: errExchangeDown, failTrade: failing.ID}
	m, err := SetupRiskManager(exec, nil)
	require.NoError(t, err)
	failingSL := newStopLoss(t, failing, trade.Fixed, 5, 100)
	require.NoError(t, m.OpenTrade(failing, failingSL))
	healthy := newTrade(t, "DOT", 10)
	healthySL := newStopLoss(t, healthy, trade.Fixed, 5, 100)
	require.NoError(t, m.OpenTrade(healthy, healthySL))

	executions, err := m.ProcessTick(context.Background(), tick("DOT", 90))
	assert.ErrorIs(t, err, errSellFailed)
	assert.ErrorIs(t, err, errExchangeDown)
	require.Len(t, executions, 1, "trades after a failing one must still be evaluated")
	assert.Equal(t, healthy.ID, executions[0].TradeID)
	assert.True(t, healthy.Remaining().IsZero())
	assert.False(t, healthySL.IsActive())
	assert.True(t, failing.Remaining().Equal(d(10)))
	assert.True(t, failingSL.IsActive())
	assert.Equal(t, []uuid.UUID{failing.ID}, m.Trades(), "only the sold trade leaves management")
}

func TestProcessTickPersisterError(t *testing.T) {
	t.Parallel()
	m, err := SetupRiskManager(&fakeExecutor{}, &Config{Persister: &fakePersister{err: errExchangeDown}})
	require.NoError(t, err)
	tr := newTrade(t, "DOT", 10)
	sl := newStopLoss(t, tr, trade.Fixed, 5, 50)
	require.NoError(t, m.OpenTrade(tr, sl))

	executions, err := m.ProcessTick(context.Background(), tick("DOT", 90))
	require.NoError(t, err, "persistence failures must not fail the tick")
	require.Len(t, executions, 1)
	assert.True(t, executions[0].Amount.Equal(d(5)))
	assert.True(t, tr.Remaining().Equal(d(5)), "the sell must stand")
	assert.True(t, sl.GetSoldAmount().Equal(d(5)))
	assert.False(t, sl.IsActive())
}

func TestProcessTickCancelledContext(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{}
	m, err := SetupRiskManager(exec, nil)
	require.NoError(t, err)
	tr := newTrade(t, "DOT", 10)
	require.NoError(t, m.OpenTrade(tr, newStopLoss(t, tr, trade.Fixed, 5, 100)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.ProcessTick(ctx, tick("DOT", 90))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, exec.sells)
}

func TestProcessTickConcurrent(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{}
	m, err := SetupRiskManager(exec, nil)
	require.NoError(t, err)
	tr := newTrade(t, "DOT", 10)
	require.NoError(t, m.OpenTrade(tr, newStopLoss(t, tr, trade.Fixed, 5, 100)))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.ProcessTick(context.Background(), tick("DOT", 90))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, exec.sells, 1, "a trade must only be sold once")
	assert.False(t, tr.IsOpen())
}

func TestSubmit(t *testing.T) {
	t.Parallel()
	m, err := SetupRiskManager(&fakeExecutor{}, &Config{TickBufferSize: 8})
	require.NoError(t, err)
	tr := newTrade(t, "DOT", 10)
	require.NoError(t, m.OpenTrade(tr, newStopLoss(t, tr, trade.Trailing, 5, 100)))
	require.NoError(t, m.Start())

	for _, p := range []float64{120, 115, 114} {
		require.NoError(t, m.Submit(tick("DOT", p)), "Submit must not error")
	}
	select {
	case e := <-m.Executions():
		assert.True(t, e.Price.Equal(d(114)), "ticks must be evaluated in submission order")
		assert.True(t, e.Amount.Equal(d(10)))
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for execution")
	}
	require.NoError(t, m.Stop())
}

func TestRiskMetrics(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	m, err := SetupRiskManager(&fakeExecutor{}, &Config{Registerer: reg})
	require.NoError(t, err)
	tr := newTrade(t, "DOT", 10)
	require.NoError(t, m.OpenTrade(tr, newStopLoss(t, tr, trade.Fixed, 5, 100)))
	_, err = m.ProcessTick(context.Background(), tick("DOT", 99))
	require.NoError(t, err)
	_, err = m.ProcessTick(context.Background(), tick("DOT", 90))
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err, "Gather must not error")
	values := make(map[string]float64)
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				values[mf.GetName()] += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				values[mf.GetName()] += metric.GetGauge().GetValue()
			}
		}
	}
	assert.Equal(t, float64(2), values["algotrader_risk_ticks_processed_total"])
	assert.Equal(t, float64(1), values["algotrader_risk_rules_triggered_total"])
	assert.Equal(t, float64(10), values["algotrader_risk_sell_amount_total"])
	assert.Equal(t, float64(0), values["algotrader_risk_open_trades"])
}
