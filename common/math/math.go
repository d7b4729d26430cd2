package math

import (
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// CalculateFee returns a simple fee on amount
func CalculateFee(amount, fee decimal.Decimal) decimal.Decimal {
	return amount.Mul(fee.Div(oneHundred))
}

// PercentageOf returns the percentage share of amount, eg 50% of 10 is 5
func PercentageOf(amount, percentage decimal.Decimal) decimal.Decimal {
	return amount.Mul(percentage.Div(oneHundred))
}

// DecreaseByPercentage returns value lowered by percentage, eg 100 lowered by
// 5% is 95
func DecreaseByPercentage(value, percentage decimal.Decimal) decimal.Decimal {
	return value.Mul(decimal.NewFromInt(1).Sub(percentage.Div(oneHundred)))
}

// IncreaseByPercentage returns value raised by percentage, eg 100 raised by
// 5% is 105
func IncreaseByPercentage(value, percentage decimal.Decimal) decimal.Decimal {
	return value.Mul(decimal.NewFromInt(1).Add(percentage.Div(oneHundred)))
}

// CalculatePercentageGainOrLoss returns the percentage rise over a certain
// period
func CalculatePercentageGainOrLoss(priceNow, priceThen decimal.Decimal) decimal.Decimal {
	if priceThen.IsZero() {
		return decimal.Zero
	}
	return priceNow.Sub(priceThen).Div(priceThen).Mul(oneHundred)
}

// CalculateNetProfit returns net profit
func CalculateNetProfit(amount, priceThen, priceNow, costs decimal.Decimal) decimal.Decimal {
	return priceNow.Mul(amount).Sub(priceThen.Mul(amount)).Sub(costs)
}
