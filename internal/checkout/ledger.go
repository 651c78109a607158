package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/guuukimama/shop-manager/internal/sales"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

const (
	// MaxLines bounds a single cart.
	MaxLines = 200
	// MaxInputDigits caps the received-amount keypad.
	MaxInputDigits = 8
)

// Ledger is the in-progress order of one register. It is not safe for
// concurrent use; Service serializes access per session.
type Ledger struct {
	lines       []sales.Line
	serviceType sales.ServiceType
	input       string
	keypad      bool

	// token identifies the pending commit attempt. It survives failed
	// commits so a retry after a lost acknowledgement is deduplicated, and
	// is renewed whenever the record that would be written changes.
	token string
}

func NewLedger(keypad bool) *Ledger {
	return &Ledger{
		serviceType: sales.DineIn,
		input:       "0",
		keypad:      keypad,
		token:       uuid.NewString(),
	}
}

func (l *Ledger) Lines() []sales.Line {
	out := make([]sales.Line, len(l.lines))
	copy(out, l.lines)
	return out
}

func (l *Ledger) ServiceType() sales.ServiceType { return l.serviceType }

func (l *Ledger) Input() string { return l.input }

func (l *Ledger) AddLine(line sales.Line) error {
	if len(l.lines) >= MaxLines {
		return ErrCartFull
	}
	l.lines = append(l.lines, line)
	l.renewToken()
	return nil
}

func (l *Ledger) RemoveLine(index int) error {
	if index < 0 || index >= len(l.lines) {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	l.lines = append(l.lines[:index], l.lines[index+1:]...)
	l.renewToken()
	return nil
}

func (l *Ledger) ToggleServiceType() {
	l.serviceType = l.serviceType.Toggle()
	l.renewToken()
}

func (l *Ledger) SetServiceType(t sales.ServiceType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidServiceType, t)
	}
	if t != l.serviceType {
		l.serviceType = t
		l.renewToken()
	}
	return nil
}

func (l *Ledger) Totals() Totals {
	return computeTotals(l.lines, l.serviceType)
}

// AppendDigit pushes digits onto the keypad buffer. Anything that is not
// 0-9 is ignored and the buffer never grows past MaxInputDigits.
func (l *Ledger) AppendDigit(digits string) {
	before := l.input
	defer func() {
		if l.keypad && l.input != before {
			l.renewToken()
		}
	}()

	for _, r := range digits {
		if r < '0' || r > '9' {
			continue
		}
		if l.input == "0" {
			l.input = string(r)
			continue
		}
		if len(l.input) >= MaxInputDigits {
			return
		}
		l.input += string(r)
	}
}

func (l *Ledger) ClearInput() {
	if l.keypad && l.input != "0" {
		l.renewToken()
	}
	l.input = "0"
}

// Received is the amount typed on the keypad, or the exact total when the
// keypad is disabled.
func (l *Ledger) Received() int64 {
	if !l.keypad {
		return l.Totals().Total
	}
	n, err := strconv.ParseInt(l.input, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (l *Ledger) Change() int64 {
	if c := l.Received() - l.Totals().Total; c > 0 {
		return c
	}
	return 0
}

// Reset empties the cart and keypad. The service type stays.
func (l *Ledger) Reset() {
	l.lines = nil
	l.input = "0"
	l.renewToken()
}

func (l *Ledger) renewToken() {
	l.token = uuid.NewString()
}

type CommitOptions struct {
	Timeout time.Duration
	NextID  func() snowflake.ID
	Now     func() time.Time
}

// Commit writes the cart to the sink and clears it once the sink has
// acknowledged. On any error the ledger is left as it was.
func (l *Ledger) Commit(ctx context.Context, sink sales.Sink, opts CommitOptions) (sales.SaleRecord, error) {
	if len(l.lines) == 0 {
		return sales.SaleRecord{}, ErrEmptyCart
	}

	totals := l.Totals()
	received := l.Received()
	if received < totals.Total {
		return sales.SaleRecord{}, fmt.Errorf("%w: received %d, total %d", ErrInsufficientPayment, received, totals.Total)
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	rec := sales.SaleRecord{
		IdempotencyKey: l.token,
		CreatedAt:      now(),
		Lines:          l.Lines(),
		Subtotal:       totals.Subtotal,
		Tax:            totals.Tax,
		Total:          totals.Total,
		ServiceType:    l.serviceType,
		Received:       received,
		Change:         received - totals.Total,
	}
	if opts.NextID != nil {
		rec.ID = opts.NextID()
	}

	stored, err := insertWithTimeout(ctx, sink, rec, opts.Timeout)
	if err != nil {
		return sales.SaleRecord{}, err
	}

	l.lines = nil
	l.input = "0"
	l.renewToken()
	return stored, nil
}

type insertResult struct {
	rec sales.SaleRecord
	err error
}

// insertWithTimeout bounds the sink call even when the sink ignores ctx.
func insertWithTimeout(ctx context.Context, sink sales.Sink, rec sales.SaleRecord, timeout time.Duration) (sales.SaleRecord, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan insertResult, 1)
	go func() {
		stored, err := sink.InsertSale(ctx, rec)
		done <- insertResult{rec: stored, err: err}
	}()

	select {
	case res := <-done:
		if res.err == nil {
			return res.rec, nil
		}
		if errors.Is(res.err, context.DeadlineExceeded) {
			return sales.SaleRecord{}, ErrSinkTimeout
		}
		return sales.SaleRecord{}, fmt.Errorf("%w: %v", ErrSinkUnavailable, res.err)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return sales.SaleRecord{}, ErrSinkTimeout
		}
		return sales.SaleRecord{}, fmt.Errorf("%w: %v", ErrSinkUnavailable, ctx.Err())
	}
}
