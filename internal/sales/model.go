package sales

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

type ServiceType string

const (
	DineIn  ServiceType = "dine_in"
	Takeout ServiceType = "takeout"
)

func (t ServiceType) Valid() bool {
	return t == DineIn || t == Takeout
}

// Toggle returns the other service type.
func (t ServiceType) Toggle() ServiceType {
	if t == Takeout {
		return DineIn
	}
	return Takeout
}

// Line is a catalog item snapshotted when it was rung up.
type Line struct {
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Category string `json:"category"`
	Emoji    string `json:"emoji"`
}

// SaleRecord is one committed checkout. Records are never edited.
type SaleRecord struct {
	ID             snowflake.ID `json:"id"`
	IdempotencyKey string       `json:"idempotency_key"`
	CreatedAt      time.Time    `json:"created_at"`
	Lines          []Line       `json:"lines"`
	Subtotal       int64        `json:"subtotal"`
	Tax            int64        `json:"tax"`
	Total          int64        `json:"total"`
	ServiceType    ServiceType  `json:"service_type"`
	Received       int64        `json:"received"`
	Change         int64        `json:"change"`
}

var ErrInvalidRecord = errors.New("invalid sale record")

// Validate checks the arithmetic a stored sale must satisfy.
func (r SaleRecord) Validate() error {
	if r.IdempotencyKey == "" {
		return fmt.Errorf("%w: idempotency key is required", ErrInvalidRecord)
	}
	if len(r.Lines) == 0 {
		return fmt.Errorf("%w: no lines", ErrInvalidRecord)
	}
	if !r.ServiceType.Valid() {
		return fmt.Errorf("%w: unknown service type %q", ErrInvalidRecord, r.ServiceType)
	}

	var subtotal int64
	for _, l := range r.Lines {
		if l.Price < 0 {
			return fmt.Errorf("%w: negative line price", ErrInvalidRecord)
		}
		subtotal += l.Price
	}
	if subtotal != r.Subtotal {
		return fmt.Errorf("%w: subtotal %d does not match lines %d", ErrInvalidRecord, r.Subtotal, subtotal)
	}
	if want := Tax(r.Subtotal, r.ServiceType); want != r.Tax {
		return fmt.Errorf("%w: tax %d, expected %d", ErrInvalidRecord, r.Tax, want)
	}
	if r.Total != r.Subtotal+r.Tax {
		return fmt.Errorf("%w: total %d is not subtotal plus tax", ErrInvalidRecord, r.Total)
	}
	if r.Change < 0 {
		return fmt.Errorf("%w: negative change", ErrInvalidRecord)
	}
	return nil
}

// Filter bounds a ledger read. Zero times are open ends; From is
// inclusive and To exclusive.
type Filter struct {
	From       time.Time
	To         time.Time
	Limit      int
	Descending bool
}

func (f Filter) matches(t time.Time) bool {
	if !f.From.IsZero() && t.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !t.Before(f.To) {
		return false
	}
	return true
}
