package sales

import "context"

// Sink is the append-only sales ledger.
//
// InsertSale stores rec, or returns the already stored record when a sale
// with the same idempotency key exists. ListSales returns records in
// ascending time order unless the filter asks otherwise.
type Sink interface {
	InsertSale(ctx context.Context, rec SaleRecord) (SaleRecord, error)
	ListSales(ctx context.Context, f Filter) ([]SaleRecord, error)
	DeleteAll(ctx context.Context) error
}
