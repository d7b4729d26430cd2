package trade

import (
	"fmt"

	"github.com/algotrader-go/algotrader/common/math"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// NewStopLoss attaches an active stop loss to a trade. The stop price starts
// percentage below the open price
func NewStopLoss(s *RuleSetup) (*StopLoss, error) {
	riskType, sellPercentage, err := validateSetup(s)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return &StopLoss{
		id:             id,
		tradeID:        s.TradeID,
		riskType:       riskType,
		percentage:     s.Percentage,
		sellPercentage: sellPercentage,
		openPrice:      s.OpenPrice,
		highWaterMark:  s.OpenPrice,
		stopLossPrice:  math.DecreaseByPercentage(s.OpenPrice, s.Percentage),
		sellAmount:     sellAmountOf(s.TotalAmountTrade, sellPercentage),
		active:         true,
	}, nil
}

// StopLossFromState restores a stop loss from a persisted snapshot
func StopLossFromState(st *RuleState) (*StopLoss, error) {
	if st == nil {
		return nil, ErrSetupIsNil
	}
	if st.Kind != StopLossKind {
		return nil, fmt.Errorf("%w: %s", ErrMismatchedRuleKind, st.Kind)
	}
	riskType, err := StringToRiskType(st.RiskType.String())
	if err != nil {
		return nil, err
	}
	hwm := st.OpenPrice
	if st.HighWaterMark.Valid {
		hwm = st.HighWaterMark.Decimal
	}
	return &StopLoss{
		id:             st.ID,
		tradeID:        st.TradeID,
		riskType:       riskType,
		percentage:     st.Percentage,
		sellPercentage: st.SellPercentage,
		openPrice:      st.OpenPrice,
		highWaterMark:  hwm,
		stopLossPrice:  st.TriggerPrice,
		sellAmount:     st.SellAmount,
		soldAmount:     st.SoldAmount,
		active:         st.Active,
	}, nil
}

// HasTriggered evaluates the stop loss against the current price. For a
// trailing stop loss a new high water mark raises the stop price, which never
// moves down
func (s *StopLoss) HasTriggered(currentPrice decimal.Decimal) bool {
	if !s.active || s.soldAmount.Equal(s.sellAmount) {
		return false
	}
	if s.riskType == Fixed {
		return currentPrice.LessThanOrEqual(s.stopLossPrice)
	}
	if currentPrice.LessThanOrEqual(s.stopLossPrice) {
		return true
	}
	if currentPrice.GreaterThan(s.highWaterMark) {
		s.highWaterMark = currentPrice
		s.stopLossPrice = math.DecreaseByPercentage(currentPrice, s.percentage)
	}
	return false
}

// GetSellAmount returns how much of the remaining trade to sell on trigger
func (s *StopLoss) GetSellAmount(t RemainingAmounter) decimal.Decimal {
	if !s.active || t == nil {
		return decimal.Zero
	}
	return sellAmountOf(t.Remaining(), s.sellPercentage)
}

// RecordPartialSell adds to the sold amount and deactivates the stop loss once
// its sell amount is reached
func (s *StopLoss) RecordPartialSell(amount decimal.Decimal) error {
	if !s.active {
		return ErrRuleInactive
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	s.soldAmount = s.soldAmount.Add(amount)
	if s.soldAmount.GreaterThanOrEqual(s.sellAmount) {
		s.active = false
	}
	return nil
}

// Deactivate stops the rule from triggering
func (s *StopLoss) Deactivate() {
	s.active = false
}

// IsActive returns whether the stop loss can still trigger
func (s *StopLoss) IsActive() bool {
	return s.active
}

// Kind returns StopLossKind
func (s *StopLoss) Kind() RuleKind {
	return StopLossKind
}

// GetID returns the rule ID
func (s *StopLoss) GetID() uuid.UUID {
	return s.id
}

// GetTradeID returns the ID of the trade the rule is attached to
func (s *StopLoss) GetTradeID() uuid.UUID {
	return s.tradeID
}

// GetRiskType returns the risk type
func (s *StopLoss) GetRiskType() RiskType {
	return s.riskType
}

// GetPercentage returns the stop distance percentage
func (s *StopLoss) GetPercentage() decimal.Decimal {
	return s.percentage
}

// GetSellPercentage returns the share of the remaining trade sold on trigger
func (s *StopLoss) GetSellPercentage() decimal.Decimal {
	return s.sellPercentage
}

// GetStopLossPrice returns the current stop price
func (s *StopLoss) GetStopLossPrice() decimal.Decimal {
	return s.stopLossPrice
}

// GetHighWaterMark returns the highest price observed by a trailing stop loss
func (s *StopLoss) GetHighWaterMark() decimal.Decimal {
	return s.highWaterMark
}

// GetTotalSellAmount returns the amount fixed when the rule was attached
func (s *StopLoss) GetTotalSellAmount() decimal.Decimal {
	return s.sellAmount
}

// GetSoldAmount returns the amount already sold by this rule
func (s *StopLoss) GetSoldAmount() decimal.Decimal {
	return s.soldAmount
}

// State returns a snapshot for persistence
func (s *StopLoss) State() RuleState {
	return RuleState{
		ID:             s.id,
		TradeID:        s.tradeID,
		Kind:           StopLossKind,
		RiskType:       s.riskType,
		Percentage:     s.percentage,
		SellPercentage: s.sellPercentage,
		OpenPrice:      s.openPrice,
		HighWaterMark:  decimal.NewNullDecimal(s.highWaterMark),
		TriggerPrice:   s.stopLossPrice,
		SellAmount:     s.sellAmount,
		SoldAmount:     s.soldAmount,
		Active:         s.active,
	}
}

// String implements the stringer interface
func (s *StopLoss) String() string {
	return fmt.Sprintf("%s stop loss %s%% for trade %s: stop %s high %s sold %s/%s active %t",
		s.riskType, s.percentage, s.tradeID, s.stopLossPrice, s.highWaterMark, s.soldAmount, s.sellAmount, s.active)
}
