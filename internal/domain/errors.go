package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrCurrencyMismatch is returned when an operation would mix
	// currencies within one cart or money computation.
	ErrCurrencyMismatch = errors.New("currency mismatch")

	// ErrEmptyCart is returned when checkout is attempted on a cart with
	// no line items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrQuantityTooLarge is returned when a line item quantity would
	// exceed MaxLineQuantity.
	ErrQuantityTooLarge = errors.New("quantity exceeds limit")

	// ErrUpstream indicates the catalog or payment provider failed as a
	// whole. It is never silently mapped to an empty result.
	ErrUpstream = errors.New("upstream unavailable")
)
