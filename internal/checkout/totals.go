package checkout

import (
	"github.com/guuukimama/shop-manager/internal/sales"

	"github.com/shopspring/decimal"
)

// Totals is the price breakdown of the current cart.
type Totals struct {
	Subtotal int64           `json:"subtotal"`
	Tax      int64           `json:"tax"`
	Total    int64           `json:"total"`
	Rate     decimal.Decimal `json:"rate"`
}

func computeTotals(lines []sales.Line, st sales.ServiceType) Totals {
	var subtotal int64
	for _, l := range lines {
		subtotal += l.Price
	}

	tax := sales.Tax(subtotal, st)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
		Rate:     sales.Rate(st),
	}
}
