package ledger

import "errors"

var (
	// ErrMissingIdentifier is returned when an event lacks a customer or product ID.
	ErrMissingIdentifier = errors.New("ledger: customer and product IDs are required")

	// ErrStoreUnavailable is returned when the backing store cannot be reached.
	ErrStoreUnavailable = errors.New("ledger: store unavailable")
)
