package backtester

import (
	"context"
	"fmt"

	"github.com/algotrader-go/algotrader/common/math"
	"github.com/algotrader-go/algotrader/order"
	"github.com/algotrader-go/algotrader/trade"
	"github.com/shopspring/decimal"
)

// Sell returns a filled market sell order for amount at price
func (s *SimulatedExecutor) Sell(ctx context.Context, t *trade.Trade, amount, price decimal.Decimal) (*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.m.Lock()
	s.sequence++
	ref := fmt.Sprintf("%s-%d", t.ID, s.sequence)
	s.m.Unlock()

	o, err := order.New(&order.Submit{
		ReferenceID:        ref,
		TargetSymbol:       t.TargetSymbol,
		TradingSymbol:      t.TradingSymbol,
		Type:               order.Market,
		Side:               order.Sell,
		Status:             order.Success,
		Price:              decimal.NewNullDecimal(price),
		InitialPrice:       decimal.NewNullDecimal(price),
		AmountTargetSymbol: decimal.NewNullDecimal(amount),
	})
	if err != nil {
		return nil, err
	}
	fee := math.CalculateFee(o.GetAmountTradingSymbol().Decimal, s.FeePercentage)
	s.m.Lock()
	s.fees = s.fees.Add(fee)
	s.m.Unlock()
	return o, nil
}

// Fees returns the total fees charged so far
func (s *SimulatedExecutor) Fees() decimal.Decimal {
	s.m.Lock()
	defer s.m.Unlock()
	return s.fees
}
