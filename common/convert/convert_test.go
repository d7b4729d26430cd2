package convert

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoolPtr(t *testing.T) {
	t.Parallel()
	y := BoolPtr(true)
	require.NotNil(t, y)
	assert.True(t, *y)
	n := BoolPtr(false)
	assert.False(t, *n)
}

func TestNullDecimalFromValue(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		in    interface{}
		valid bool
		want  string
	}{
		{nil, false, "0"},
		{"", false, "0"},
		{10, true, "10"},
		{int64(-3), true, "-3"},
		{int32(7), true, "7"},
		{uint(2), true, "2"},
		{2.5, true, "2.5"},
		{float32(0.5), true, "0.5"},
		{"1337.1", true, "1337.1"},
		{json.Number("42"), true, "42"},
		{decimal.NewFromInt(5), true, "5"},
		{decimal.NewNullDecimal(decimal.NewFromInt(6)), true, "6"},
		{decimal.NullDecimal{}, false, "0"},
	} {
		got, err := NullDecimalFromValue(tc.in)
		require.NoErrorf(t, err, "NullDecimalFromValue(%v) must not error", tc.in)
		assert.Equalf(t, tc.valid, got.Valid, "validity for %v", tc.in)
		assert.Equalf(t, tc.want, got.Decimal.String(), "value for %v", tc.in)
	}

	_, err := NullDecimalFromValue("bad")
	assert.Error(t, err)

	_, err = NullDecimalFromValue(struct{}{})
	assert.ErrorIs(t, err, errUnhandledType)

	var nilDec *decimal.Decimal
	got, err := NullDecimalFromValue(nilDec)
	require.NoError(t, err)
	assert.False(t, got.Valid)
}

func TestStringFromValue(t *testing.T) {
	t.Parallel()
	s, err := StringFromValue(nil)
	require.NoError(t, err)
	assert.Empty(t, s)

	s, err = StringFromValue(10493)
	require.NoError(t, err)
	assert.Equal(t, "10493", s)

	s, err = StringFromValue(int64(7))
	require.NoError(t, err)
	assert.Equal(t, "7", s)

	s, err = StringFromValue(10493.0)
	require.NoError(t, err)
	assert.Equal(t, "10493", s)

	s, err = StringFromValue(json.Number("12"))
	require.NoError(t, err)
	assert.Equal(t, "12", s)

	s, err = StringFromValue(decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, "3", s)

	_, err = StringFromValue([]int{1})
	assert.ErrorIs(t, err, errUnhandledType)
}
