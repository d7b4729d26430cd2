package order

import (
	"fmt"

	"github.com/algotrader-go/algotrader/common/convert"
	"github.com/algotrader-go/algotrader/encoding/json"
	"github.com/buger/jsonparser"
	"github.com/shopspring/decimal"
)

// ToMap returns the order as a key-value mapping for persistence and
// transport. The type and side are emitted under order_type and order_side
// while FromMap reads type and side, with the order_ keys as fallback. Unset
// values are nil and price holds GetPrice
func (o *Order) ToMap() map[string]interface{} {
	return map[string]interface{}{
		KeyReferenceID:         nilIfEmpty(o.referenceID),
		KeyTargetSymbol:        nilIfEmpty(o.targetSymbol),
		KeyTradingSymbol:       nilIfEmpty(o.tradingSymbol),
		KeyAmountTradingSymbol: nullValue(o.amountTradingSymbol),
		KeyAmountTargetSymbol:  nullValue(o.amountTargetSymbol),
		KeyPrice:               nullValue(o.GetPrice()),
		KeyInitialPrice:        nullValue(o.initialPrice),
		KeyClosingPrice:        nullValue(o.closingPrice),
		KeyStatus:              o.status.String(),
		KeyOrderType:           o.orderType.String(),
		KeyOrderSide:           o.side.String(),
	}
}

// FromMap builds an order from a key-value mapping. Missing keys are treated
// as unset and the result goes through the same validation as New
func FromMap(data map[string]interface{}) (*Order, error) {
	s := &Submit{}
	var err error
	if s.ReferenceID, err = stringField(data, KeyReferenceID); err != nil {
		return nil, err
	}
	if s.TargetSymbol, err = stringField(data, KeyTargetSymbol); err != nil {
		return nil, err
	}
	if s.TradingSymbol, err = stringField(data, KeyTradingSymbol); err != nil {
		return nil, err
	}
	oType, err := stringField(data, KeyType, KeyOrderType)
	if err != nil {
		return nil, err
	}
	s.Type = Type(oType)
	side, err := stringField(data, KeySide, KeyOrderSide)
	if err != nil {
		return nil, err
	}
	s.Side = Side(side)
	status, err := stringField(data, KeyStatus)
	if err != nil {
		return nil, err
	}
	s.Status = Status(status)

	for _, f := range []struct {
		key string
		dst *decimal.NullDecimal
	}{
		{KeyAmountTradingSymbol, &s.AmountTradingSymbol},
		{KeyAmountTargetSymbol, &s.AmountTargetSymbol},
		{KeyPrice, &s.Price},
		{KeyInitialPrice, &s.InitialPrice},
		{KeyClosingPrice, &s.ClosingPrice},
	} {
		*f.dst, err = convert.NullDecimalFromValue(data[f.key])
		if err != nil {
			return nil, fmt.Errorf("%w: %s %w", ErrOperational, f.key, err)
		}
	}
	return New(s)
}

// MarshalJSON encodes the order using the ToMap keys
func (o *Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.ToMap())
}

// UnmarshalJSON decodes and validates an order encoded as a flat JSON object
func (o *Order) UnmarshalJSON(data []byte) error {
	parsed, err := FromJSON(data)
	if err != nil {
		return err
	}
	*o = *parsed
	return nil
}

// FromJSON decodes a flat JSON object, such as a stored order or an exchange
// fill payload, and builds an order from it with FromMap
func FromJSON(data []byte) (*Order, error) {
	m := make(map[string]interface{})
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		switch dataType {
		case jsonparser.Null:
			m[string(key)] = nil
		case jsonparser.String:
			s, err := jsonparser.ParseString(value)
			if err != nil {
				return err
			}
			m[string(key)] = s
		case jsonparser.Number:
			m[string(key)] = json.Number(value)
		default:
			// nested values carry nothing an order needs
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOperational, err)
	}
	return FromMap(m)
}

func stringField(data map[string]interface{}, keys ...string) (string, error) {
	for _, k := range keys {
		v, ok := data[k]
		if !ok || v == nil {
			continue
		}
		s, err := convert.StringFromValue(v)
		if err != nil {
			return "", fmt.Errorf("%w: %s %w", ErrOperational, k, err)
		}
		return s, nil
	}
	return "", nil
}

func nullValue(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return nil
	}
	return d.Decimal
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
