package trade

import (
	"fmt"

	"github.com/algotrader-go/algotrader/common/math"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// NewTakeProfit attaches an active take profit to a trade. The target price
// starts percentage above the open price
func NewTakeProfit(s *RuleSetup) (*TakeProfit, error) {
	riskType, sellPercentage, err := validateSetup(s)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return &TakeProfit{
		id:              id,
		tradeID:         s.TradeID,
		riskType:        riskType,
		percentage:      s.Percentage,
		sellPercentage:  sellPercentage,
		openPrice:       s.OpenPrice,
		takeProfitPrice: math.IncreaseByPercentage(s.OpenPrice, s.Percentage),
		sellAmount:      sellAmountOf(s.TotalAmountTrade, sellPercentage),
		active:          true,
	}, nil
}

// TakeProfitFromState restores a take profit from a persisted snapshot
func TakeProfitFromState(st *RuleState) (*TakeProfit, error) {
	if st == nil {
		return nil, ErrSetupIsNil
	}
	if st.Kind != TakeProfitKind {
		return nil, fmt.Errorf("%w: %s", ErrMismatchedRuleKind, st.Kind)
	}
	riskType, err := StringToRiskType(st.RiskType.String())
	if err != nil {
		return nil, err
	}
	return &TakeProfit{
		id:              st.ID,
		tradeID:         st.TradeID,
		riskType:        riskType,
		percentage:      st.Percentage,
		sellPercentage:  st.SellPercentage,
		openPrice:       st.OpenPrice,
		highWaterMark:   st.HighWaterMark,
		takeProfitPrice: st.TriggerPrice,
		sellAmount:      st.SellAmount,
		soldAmount:      st.SoldAmount,
		active:          st.Active,
	}, nil
}

// HasTriggered evaluates the take profit against the current price. A fixed
// take profit triggers at its target. A trailing take profit arms at its
// target, follows new highs and triggers once the price pulls back by the
// percentage from the high water mark
func (tp *TakeProfit) HasTriggered(currentPrice decimal.Decimal) bool {
	if !tp.active || tp.soldAmount.Equal(tp.sellAmount) {
		return false
	}
	if tp.riskType == Fixed {
		return currentPrice.GreaterThanOrEqual(tp.takeProfitPrice)
	}
	if !tp.highWaterMark.Valid {
		if currentPrice.LessThan(tp.takeProfitPrice) {
			return false
		}
		tp.trail(currentPrice)
		return false
	}
	if currentPrice.GreaterThan(tp.highWaterMark.Decimal) {
		tp.trail(currentPrice)
		return false
	}
	return currentPrice.LessThanOrEqual(tp.takeProfitPrice)
}

func (tp *TakeProfit) trail(price decimal.Decimal) {
	tp.highWaterMark = decimal.NewNullDecimal(price)
	tp.takeProfitPrice = math.DecreaseByPercentage(price, tp.percentage)
}

// GetSellAmount returns how much of the remaining trade to sell on trigger
func (tp *TakeProfit) GetSellAmount(t RemainingAmounter) decimal.Decimal {
	if !tp.active || t == nil {
		return decimal.Zero
	}
	return sellAmountOf(t.Remaining(), tp.sellPercentage)
}

// RecordPartialSell adds to the sold amount and deactivates the take profit
// once its sell amount is reached
func (tp *TakeProfit) RecordPartialSell(amount decimal.Decimal) error {
	if !tp.active {
		return ErrRuleInactive
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	tp.soldAmount = tp.soldAmount.Add(amount)
	if tp.soldAmount.GreaterThanOrEqual(tp.sellAmount) {
		tp.active = false
	}
	return nil
}

// Deactivate stops the rule from triggering
func (tp *TakeProfit) Deactivate() {
	tp.active = false
}

// IsActive returns whether the take profit can still trigger
func (tp *TakeProfit) IsActive() bool {
	return tp.active
}

// Kind returns TakeProfitKind
func (tp *TakeProfit) Kind() RuleKind {
	return TakeProfitKind
}

// GetID returns the rule ID
func (tp *TakeProfit) GetID() uuid.UUID {
	return tp.id
}

// GetTradeID returns the ID of the trade the rule is attached to
func (tp *TakeProfit) GetTradeID() uuid.UUID {
	return tp.tradeID
}

// GetRiskType returns the risk type
func (tp *TakeProfit) GetRiskType() RiskType {
	return tp.riskType
}

// GetSellPercentage returns the share of the remaining trade sold on trigger
func (tp *TakeProfit) GetSellPercentage() decimal.Decimal {
	return tp.sellPercentage
}

// GetTakeProfitPrice returns the current trigger price
func (tp *TakeProfit) GetTakeProfitPrice() decimal.Decimal {
	return tp.takeProfitPrice
}

// IsArmed returns whether a trailing take profit has reached its target
func (tp *TakeProfit) IsArmed() bool {
	return tp.highWaterMark.Valid
}

// GetSoldAmount returns the amount already sold by this rule
func (tp *TakeProfit) GetSoldAmount() decimal.Decimal {
	return tp.soldAmount
}

// State returns a snapshot for persistence
func (tp *TakeProfit) State() RuleState {
	return RuleState{
		ID:             tp.id,
		TradeID:        tp.tradeID,
		Kind:           TakeProfitKind,
		RiskType:       tp.riskType,
		Percentage:     tp.percentage,
		SellPercentage: tp.sellPercentage,
		OpenPrice:      tp.openPrice,
		HighWaterMark:  tp.highWaterMark,
		TriggerPrice:   tp.takeProfitPrice,
		SellAmount:     tp.sellAmount,
		SoldAmount:     tp.soldAmount,
		Active:         tp.active,
	}
}

// String implements the stringer interface
func (tp *TakeProfit) String() string {
	return fmt.Sprintf("%s take profit %s%% for trade %s: target %s sold %s/%s active %t",
		tp.riskType, tp.percentage, tp.tradeID, tp.takeProfitPrice, tp.soldAmount, tp.sellAmount, tp.active)
}
