package order

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMapPendingLimitBuy(t *testing.T) {
	t.Parallel()
	o, err := FromMap(map[string]interface{}{
		"reference_id":         10493,
		"target_symbol":        "DOT",
		"trading_symbol":       "USDT",
		"amount_target_symbol": 40,
		"status":               "PENDING",
		"price":                10,
		"type":                 "LIMIT",
		"side":                 "BUY",
	})
	require.NoError(t, err)
	assert.Equal(t, "10493", o.GetReferenceID())
	assert.Equal(t, "DOT", o.GetTargetSymbol())
	assert.Equal(t, "USDT", o.GetTradingSymbol())
	assert.Equal(t, Pending, o.GetStatus())
	assert.Equal(t, Buy, o.GetSide())
	assert.Equal(t, Limit, o.GetType())
	assert.True(t, o.GetAmountTradingSymbol().Decimal.Equal(decimal.NewFromInt(400)))
	assert.True(t, o.GetPrice().Valid)
}

func TestFromMapClosedLimitRequiresClosingPrice(t *testing.T) {
	t.Parallel()
	_, err := FromMap(map[string]interface{}{
		"target_symbol":        "DOT",
		"trading_symbol":       "USDT",
		"amount_target_symbol": 40,
		"status":               "CLOSED",
		"price":                10,
		"initial_price":        10,
		"type":                 "LIMIT",
		"side":                 "BUY",
	})
	assert.ErrorIs(t, err, ErrClosingPriceNotSet)

	o, err := FromMap(map[string]interface{}{
		"target_symbol":        "DOT",
		"trading_symbol":       "USDT",
		"amount_target_symbol": 40,
		"status":               "CLOSED",
		"initial_price":        10,
		"closing_price":        11,
		"type":                 "LIMIT",
		"side":                 "BUY",
	})
	require.NoError(t, err)
	assert.True(t, o.GetPrice().Decimal.Equal(decimal.NewFromInt(11)))
	assert.False(t, o.GetReferenceID() != "", "missing reference id stays empty")
}

func TestFromMapMissingKeys(t *testing.T) {
	t.Parallel()
	_, err := FromMap(map[string]interface{}{})
	assert.ErrorIs(t, err, ErrOperational)
	assert.ErrorIs(t, err, ErrInvalidSide)

	_, err = FromMap(map[string]interface{}{"type": "MARKET", "side": "SELL", "status": "PENDING", "price": 1})
	assert.ErrorIs(t, err, ErrAmountTargetSymbolNotSet)
}

func TestFromMapBadValues(t *testing.T) {
	t.Parallel()
	_, err := FromMap(map[string]interface{}{"type": "MARKET", "side": "SELL", "status": "PENDING", "price": "ten"})
	assert.ErrorIs(t, err, ErrOperational)

	_, err = FromMap(map[string]interface{}{"type": []string{"MARKET"}})
	assert.ErrorIs(t, err, ErrOperational)
}

func TestToMapKeys(t *testing.T) {
	t.Parallel()
	o, err := New(&Submit{ReferenceID: "r", TargetSymbol: "BTC", TradingSymbol: "EUR", Type: Market, Side: Buy, Status: Pending, Price: num(100), AmountTargetSymbol: num(1)})
	require.NoError(t, err)
	m := o.ToMap()
	for _, k := range []string{
		KeyReferenceID, KeyTargetSymbol, KeyTradingSymbol, KeyAmountTradingSymbol,
		KeyAmountTargetSymbol, KeyPrice, KeyInitialPrice, KeyClosingPrice,
		KeyStatus, KeyOrderType, KeyOrderSide,
	} {
		assert.Contains(t, m, k)
	}
	assert.NotContains(t, m, KeyType)
	assert.NotContains(t, m, KeySide)
	assert.Equal(t, "MARKET", m[KeyOrderType])
	assert.Equal(t, "BUY", m[KeyOrderSide])
	assert.Nil(t, m[KeyAmountTradingSymbol])
	assert.Nil(t, m[KeyInitialPrice])

	// order_type and order_side are accepted when type and side are absent
	back, err := FromMap(m)
	require.NoError(t, err)
	assert.Equal(t, Market, back.GetType())
	assert.Equal(t, Buy, back.GetSide())

	// type and side win over the order_ keys
	m[KeyType] = "LIMIT"
	m[KeySide] = "SELL"
	m[KeyAmountTradingSymbol] = 100
	back, err = FromMap(m)
	require.NoError(t, err)
	assert.Equal(t, Limit, back.GetType())
	assert.Equal(t, Sell, back.GetSide())
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()
	o, err := New(&Submit{ReferenceID: "abc", TargetSymbol: "DOT", TradingSymbol: "USDT", Type: Limit, Side: Sell, Status: Closed, InitialPrice: num(9), ClosingPrice: num(10), AmountTargetSymbol: num(40)})
	require.NoError(t, err)

	data, err := json.Marshal(o)
	require.NoError(t, err)

	var back Order
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "abc", back.GetReferenceID())
	assert.Equal(t, Closed, back.GetStatus())
	assert.True(t, back.GetAmountTradingSymbol().Decimal.Equal(decimal.NewFromInt(360)))
	assert.True(t, back.GetClosingPrice().Decimal.Equal(decimal.NewFromInt(10)))
}

func TestFromJSON(t *testing.T) {
	t.Parallel()
	o, err := FromJSON([]byte(`{"reference_id":"fill-1","target_symbol":"BTC","trading_symbol":"USDT","type":"market","side":"sell","status":"success","price":30123.5,"initial_price":30120,"amount_target_symbol":0.5,"closing_price":null,"extra":{"fee":1}}`))
	require.NoError(t, err)
	assert.Equal(t, Market, o.GetType())
	assert.True(t, o.GetAmountTradingSymbol().Decimal.Equal(decimal.NewFromInt(15060)))
	assert.False(t, o.GetClosingPrice().Valid)

	_, err = FromJSON([]byte(`{"type":`))
	assert.ErrorIs(t, err, ErrOperational)

	_, err = FromJSON([]byte(`{"type":"market","side":"sell","status":"pending","price":1}`))
	assert.ErrorIs(t, err, ErrAmountTargetSymbolNotSet)

	var bad Order
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"type":"limit"}`), &bad), ErrOperational)
}
