package sales

import "github.com/shopspring/decimal"

var rates = map[ServiceType]decimal.Decimal{
	DineIn:  decimal.RequireFromString("0.10"),
	Takeout: decimal.RequireFromString("0.08"),
}

// Rate is the consumption tax rate for a service type.
func Rate(t ServiceType) decimal.Decimal {
	if r, ok := rates[t]; ok {
		return r
	}
	return rates[DineIn]
}

// Tax is floor(subtotal * rate), computed exactly.
func Tax(subtotal int64, t ServiceType) int64 {
	return decimal.NewFromInt(subtotal).Mul(Rate(t)).Floor().IntPart()
}
