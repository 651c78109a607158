package catalog

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("item not found")

// Repository defines all storage operations for menu items.
// Service depends ONLY on this interface.
type Repository interface {
	// List returns items in creation order; empty category means all.
	List(ctx context.Context, category string) ([]Item, error)
	Get(ctx context.Context, id string) (*Item, error)

	Insert(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id string) error

	// DeleteAll wipes the catalog (settings "reset all data").
	DeleteAll(ctx context.Context) error
}
