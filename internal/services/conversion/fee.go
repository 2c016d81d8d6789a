package conversion

import "github.com/shopspring/decimal"

// DefaultFeeRate is the flat share of the input amount kept as fee.
var DefaultFeeRate = decimal.RequireFromString("0.02")

// convertedPlaces is the precision of every stored conversion amount.
const convertedPlaces = 8

type FeeCalculator struct {
	rate decimal.Decimal
}

func NewFeeCalculator(rate decimal.Decimal) *FeeCalculator {
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		rate = DefaultFeeRate
	}
	return &FeeCalculator{rate: rate}
}

func (f *FeeCalculator) CalculateFee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(f.rate).Round(convertedPlaces)
}

func (f *FeeCalculator) Rate() decimal.Decimal {
	return f.rate
}
