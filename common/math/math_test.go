package math

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateFee(t *testing.T) {
	t.Parallel()
	assert.True(t, CalculateFee(decimal.NewFromInt(1), decimal.NewFromFloat(0.2)).Equal(decimal.NewFromFloat(0.002)))
}

func TestPercentageOf(t *testing.T) {
	t.Parallel()
	assert.True(t, PercentageOf(decimal.NewFromInt(10), decimal.NewFromInt(50)).Equal(decimal.NewFromInt(5)))
	assert.True(t, PercentageOf(decimal.NewFromInt(10), decimal.NewFromInt(100)).Equal(decimal.NewFromInt(10)))
	assert.True(t, PercentageOf(decimal.NewFromInt(10), decimal.Zero).IsZero())
}

func TestDecreaseByPercentage(t *testing.T) {
	t.Parallel()
	assert.True(t, DecreaseByPercentage(decimal.NewFromInt(100), decimal.NewFromInt(5)).Equal(decimal.NewFromInt(95)))
	assert.True(t, DecreaseByPercentage(decimal.NewFromInt(120), decimal.NewFromInt(5)).Equal(decimal.NewFromInt(114)))
	assert.True(t, DecreaseByPercentage(decimal.NewFromInt(150), decimal.NewFromInt(5)).Equal(decimal.NewFromFloat(142.5)))
}

func TestIncreaseByPercentage(t *testing.T) {
	t.Parallel()
	assert.True(t, IncreaseByPercentage(decimal.NewFromInt(100), decimal.NewFromInt(10)).Equal(decimal.NewFromInt(110)))
}

func TestCalculatePercentageGainOrLoss(t *testing.T) {
	t.Parallel()
	assert.True(t, CalculatePercentageGainOrLoss(decimal.NewFromInt(110), decimal.NewFromInt(100)).Equal(decimal.NewFromInt(10)))
	assert.True(t, CalculatePercentageGainOrLoss(decimal.NewFromInt(90), decimal.NewFromInt(100)).Equal(decimal.NewFromInt(-10)))
	assert.True(t, CalculatePercentageGainOrLoss(decimal.NewFromInt(90), decimal.Zero).IsZero())
}

func TestCalculateNetProfit(t *testing.T) {
	t.Parallel()
	got := CalculateNetProfit(decimal.NewFromInt(2), decimal.NewFromInt(100), decimal.NewFromInt(110), decimal.NewFromInt(1))
	assert.True(t, got.Equal(decimal.NewFromInt(19)))
}
