package checkout

import "errors"

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInsufficientPayment = errors.New("received amount is less than total")
	ErrCartFull            = errors.New("cart is full")
	ErrInvalidIndex        = errors.New("line index out of range")
	ErrInvalidServiceType  = errors.New("unknown service type")
	ErrSinkUnavailable     = errors.New("sales ledger unavailable")
	ErrSinkTimeout         = errors.New("sales ledger did not answer in time")
	ErrSessionNotFound     = errors.New("checkout session not found")
	ErrTooManySessions     = errors.New("too many open checkout sessions")
)
