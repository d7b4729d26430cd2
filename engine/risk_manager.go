package engine

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/algotrader-go/algotrader/common"
	"github.com/algotrader-go/algotrader/engine/subsystem"
	"github.com/algotrader-go/algotrader/log"
	"github.com/algotrader-go/algotrader/order"
	"github.com/algotrader-go/algotrader/trade"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// SetupRiskManager creates a risk manager which sells through executor. cfg
// may be nil
func SetupRiskManager(executor Executor, cfg *Config) (*RiskManager, error) {
	if executor == nil {
		return nil, subsystem.ErrNilExecutor
	}
	if cfg == nil {
		cfg = &Config{}
	}
	bufSize := cfg.TickBufferSize
	if bufSize <= 0 {
		bufSize = defaultTickBufferSize
	}
	return &RiskManager{
		executor:   executor,
		persister:  cfg.Persister,
		metrics:    newRiskMetrics(cfg.Registerer),
		bufSize:    bufSize,
		positions:  make(map[uuid.UUID]*position),
		executions: make(chan Execution, bufSize),
		shutdown:   make(chan struct{}),
	}, nil
}

// IsRunning safely checks whether the subsystem is running
func (m *RiskManager) IsRunning() bool {
	if m == nil {
		return false
	}
	return atomic.LoadInt32(&m.started) == 1
}

// Start begins consuming ticks sent through Submit
func (m *RiskManager) Start() error {
	if m == nil {
		return fmt.Errorf("%s %w", RiskManagerName, subsystem.ErrNil)
	}
	if !atomic.CompareAndSwapInt32(&m.started, 0, 1) {
		return fmt.Errorf("%s %w", RiskManagerName, subsystem.ErrAlreadyStarted)
	}
	log.Debugf(log.RiskMgr, "Risk manager %s", subsystem.MsgStarting)
	ctx, cancel := context.WithCancel(context.Background())
	m.m.Lock()
	m.ticks = make(chan Tick, m.bufSize)
	m.shutdown = make(chan struct{})
	m.cancel = cancel
	m.m.Unlock()
	m.wg.Add(1)
	go m.run(ctx)
	log.Debugf(log.RiskMgr, "Risk manager %s", subsystem.MsgStarted)
	return nil
}

// Stop waits for the tick consumer to exit and closes the executions channel
func (m *RiskManager) Stop() error {
	if m == nil {
		return fmt.Errorf("%s %w", RiskManagerName, subsystem.ErrNil)
	}
	if !atomic.CompareAndSwapInt32(&m.started, 1, 0) {
		return fmt.Errorf("%s %w", RiskManagerName, subsystem.ErrNotStarted)
	}
	log.Debugf(log.RiskMgr, "Risk manager %s", subsystem.MsgShuttingDown)
	defer log.Debugf(log.RiskMgr, "Risk manager %s", subsystem.MsgShutdown)
	close(m.shutdown)
	m.cancel()
	m.wg.Wait()
	m.m.Lock()
	close(m.executions)
	m.executions = make(chan Execution, m.bufSize)
	m.m.Unlock()
	return nil
}

// Submit queues a tick for asynchronous evaluation. Ticks are evaluated in
// the order they are submitted. Submit blocks while the queue is full
func (m *RiskManager) Submit(tick Tick) error {
	if !m.IsRunning() {
		return fmt.Errorf("%s %w", RiskManagerName, subsystem.ErrNotStarted)
	}
	m.m.RLock()
	ticks, shutdown := m.ticks, m.shutdown
	m.m.RUnlock()
	select {
	case ticks <- tick:
		return nil
	case <-shutdown:
		return fmt.Errorf("%s %w", RiskManagerName, subsystem.ErrNotStarted)
	}
}

// Executions returns the channel on which executions from submitted ticks
// are published. Stop closes it and a later Start publishes on a new one
func (m *RiskManager) Executions() <-chan Execution {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.executions
}

func (m *RiskManager) run(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-m.shutdown:
			return
		case tick := <-m.ticks:
			executions, err := m.ProcessTick(ctx, tick)
			if err != nil {
				log.Errorf(log.RiskMgr, "Risk manager processing %s tick at %s: %v", tick.Symbol, tick.Price, err)
			}
			for i := range executions {
				select {
				case m.executions <- executions[i]:
				case <-m.shutdown:
					return
				}
			}
		}
	}
}

// OpenTrade places a trade and its rules under management. The sell
// percentages of the stop losses may not add up to more than 100, neither
// may those of the take profits
func (m *RiskManager) OpenTrade(t *trade.Trade, rules ...trade.Rule) error {
	if m == nil {
		return fmt.Errorf("%s %w", RiskManagerName, subsystem.ErrNil)
	}
	if t == nil {
		return errNilTrade
	}
	if !t.IsOpen() {
		return fmt.Errorf("%w: %s", errTradeNotOpen, t.ID)
	}
	if err := checkRules(t.ID, nil, rules); err != nil {
		return err
	}
	m.m.Lock()
	defer m.m.Unlock()
	if _, ok := m.positions[t.ID]; ok {
		return fmt.Errorf("%w: %s", errTradeAlreadyOpen, t.ID)
	}
	m.positions[t.ID] = &position{trade: t, rules: rules}
	m.sequence = append(m.sequence, t.ID)
	m.metrics.openTrades.Inc()
	log.Infof(log.RiskMgr, "Risk manager managing %s with %d rules", t, len(rules))
	return nil
}

// AddRule attaches another rule to a managed trade
func (m *RiskManager) AddRule(tradeID uuid.UUID, rule trade.Rule) error {
	p, err := m.getPosition(tradeID)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := checkRules(tradeID, p.rules, []trade.Rule{rule}); err != nil {
		return err
	}
	p.rules = append(p.rules, rule)
	return nil
}

// CloseTrade removes a trade from management and deactivates its rules
func (m *RiskManager) CloseTrade(tradeID uuid.UUID) error {
	p, err := m.getPosition(tradeID)
	if err != nil {
		return err
	}
	p.mu.Lock()
	for _, r := range p.rules {
		r.Deactivate()
	}
	p.mu.Unlock()
	m.remove(tradeID)
	return nil
}

// Trades returns the managed trade IDs in the order they were opened
func (m *RiskManager) Trades() []uuid.UUID {
	m.m.RLock()
	defer m.m.RUnlock()
	ids := make([]uuid.UUID, len(m.sequence))
	copy(ids, m.sequence)
	return ids
}

// RuleStates returns a snapshot of the rules attached to a managed trade
func (m *RiskManager) RuleStates(tradeID uuid.UUID) ([]trade.RuleState, error) {
	p, err := m.getPosition(tradeID)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	states := make([]trade.RuleState, len(p.rules))
	for i := range p.rules {
		states[i] = p.rules[i].State()
	}
	return states, nil
}

// ProcessTick evaluates every active rule of every open trade in the tick's
// symbol, in the order trades were opened and rules were attached, and sells
// for each rule that triggers. Trades that are fully sold stop being managed.
// A failing trade does not stop the others from being evaluated, the
// failures are joined into the returned error
func (m *RiskManager) ProcessTick(ctx context.Context, tick Tick) ([]Execution, error) {
	if m == nil {
		return nil, fmt.Errorf("%s %w", RiskManagerName, subsystem.ErrNil)
	}
	m.metrics.ticksProcessed.Inc()
	var executions []Execution
	var errs error
	for _, p := range m.positionsFor(tick.Symbol) {
		if err := ctx.Err(); err != nil {
			return executions, common.AppendError(errs, err)
		}
		execs, closed, err := m.evaluate(ctx, p, tick)
		executions = append(executions, execs...)
		if closed {
			m.remove(p.trade.ID)
			log.Infof(log.RiskMgr, "Risk manager trade %s fully sold", p.trade.ID)
		}
		errs = common.AppendError(errs, err)
	}
	return executions, errs
}

func (m *RiskManager) evaluate(ctx context.Context, p *position, tick Tick) ([]Execution, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.trade.IsOpen() {
		return nil, false, nil
	}
	var executions []Execution
	for _, r := range p.rules {
		if !r.IsActive() || !r.HasTriggered(tick.Price) {
			continue
		}
		amount := decimal.Min(r.GetSellAmount(p.trade), p.trade.Remaining())
		if !amount.IsPositive() {
			continue
		}
		o, err := m.executor.Sell(ctx, p.trade, amount, tick.Price)
		if err != nil {
			return executions, false, fmt.Errorf("%w for trade %s: %w", errSellFailed, p.trade.ID, err)
		}
		if o == nil {
			return executions, false, fmt.Errorf("%w for trade %s: %w", errSellFailed, p.trade.ID, errNilOrder)
		}
		if err = p.trade.RecordSell(amount); err != nil {
			return executions, false, err
		}
		if err = r.RecordPartialSell(amount); err != nil {
			return executions, false, err
		}
		m.metrics.rulesTriggered.WithLabelValues(r.Kind().String(), r.GetRiskType().String()).Inc()
		m.metrics.sellAmount.WithLabelValues(p.trade.TargetSymbol).Add(amount.InexactFloat64())
		log.Infof(log.RiskMgr, "Risk manager %s %s triggered at %s for trade %s, sold %s remaining %s",
			r.GetRiskType(), r.Kind(), tick.Price, p.trade.ID, amount, p.trade.Remaining())
		executions = append(executions, Execution{
			TradeID:  p.trade.ID,
			Kind:     r.Kind(),
			RiskType: r.GetRiskType(),
			Price:    tick.Price,
			Amount:   amount,
			Order:    o,
			Time:     tick.Time,
		})
		m.persist(ctx, o, r)
		if !p.trade.IsOpen() {
			break
		}
	}
	if p.trade.IsOpen() {
		return executions, false, nil
	}
	for _, r := range p.rules {
		if r.IsActive() {
			r.Deactivate()
			m.persist(ctx, nil, r)
		}
	}
	return executions, true, nil
}

func (m *RiskManager) persist(ctx context.Context, o *order.Order, r trade.Rule) {
	if m.persister == nil {
		return
	}
	if o != nil {
		if err := m.persister.SaveOrder(ctx, o); err != nil {
			log.Errorf(log.RiskMgr, "Risk manager unable to save order %s: %v", o.GetReferenceID(), err)
		}
	}
	st := r.State()
	if err := m.persister.SaveRule(ctx, &st); err != nil {
		log.Errorf(log.RiskMgr, "Risk manager unable to save %s for trade %s: %v", r.Kind(), st.TradeID, err)
	}
}

func (m *RiskManager) positionsFor(symbol string) []*position {
	m.m.RLock()
	defer m.m.RUnlock()
	var ps []*position
	for _, id := range m.sequence {
		p := m.positions[id]
		if strings.EqualFold(p.trade.TargetSymbol, symbol) {
			ps = append(ps, p)
		}
	}
	return ps
}

func (m *RiskManager) getPosition(tradeID uuid.UUID) (*position, error) {
	if m == nil {
		return nil, fmt.Errorf("%s %w", RiskManagerName, subsystem.ErrNil)
	}
	m.m.RLock()
	defer m.m.RUnlock()
	p, ok := m.positions[tradeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errTradeNotFound, tradeID)
	}
	return p, nil
}

func (m *RiskManager) remove(tradeID uuid.UUID) {
	m.m.Lock()
	defer m.m.Unlock()
	if _, ok := m.positions[tradeID]; !ok {
		return
	}
	delete(m.positions, tradeID)
	for i := range m.sequence {
		if m.sequence[i] == tradeID {
			m.sequence = append(m.sequence[:i], m.sequence[i+1:]...)
			break
		}
	}
	m.metrics.openTrades.Dec()
}

// checkRules verifies new rules belong to the trade and that the sell
// percentages per rule kind, including active existing rules, stay within 100
func checkRules(tradeID uuid.UUID, existing, added []trade.Rule) error {
	sums := make(map[trade.RuleKind]decimal.Decimal)
	for _, r := range existing {
		if r.IsActive() {
			sums[r.Kind()] = sums[r.Kind()].Add(r.GetSellPercentage())
		}
	}
	for _, r := range added {
		if r == nil {
			return errNilRule
		}
		if r.GetTradeID() != tradeID {
			return fmt.Errorf("%w: rule for %s attached to %s", errRuleTradeMismatch, r.GetTradeID(), tradeID)
		}
		sums[r.Kind()] = sums[r.Kind()].Add(r.GetSellPercentage())
	}
	for kind, sum := range sums {
		if sum.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("%w: %s total %s", errSellPercentageOverrun, kind, sum)
		}
	}
	return nil
}
