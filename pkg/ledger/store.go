package ledger

import (
	"context"
	"time"
)

// Store is the append-only usage ledger. Implementations must be safe for
// concurrent use and must never mutate or delete appended events.
type Store interface {
	// Append adds an event to the ledger.
	Append(ctx context.Context, event UsageEvent) error

	// RecordPurchase appends an open event for the purchase and, when an
	// earlier open purchase of the same product by the same customer exists,
	// additionally appends a closed event carrying the observed lifespan
	// between the two purchases. The closed event (or nil when this is the
	// first observed purchase) is returned so callers can invalidate
	// derived predictions.
	RecordPurchase(ctx context.Context, customerID, productID string, purchaseDate time.Time) (*UsageEvent, error)

	// EventsForProduct returns all events for a product in append order.
	EventsForProduct(ctx context.Context, productID string) ([]UsageEvent, error)

	// EventsForCustomerProduct returns all events for a (customer, product)
	// pair in append order.
	EventsForCustomerProduct(ctx context.Context, customerID, productID string) ([]UsageEvent, error)

	// LastPurchase returns the most recent purchase date for the pair, or
	// ok=false when the customer has never bought the product.
	LastPurchase(ctx context.Context, customerID, productID string) (time.Time, bool, error)
}

// ClosedLifespans extracts the valid observed lifespans from a set of events.
// Malformed (non-positive) lifespans are skipped, not fatal.
func ClosedLifespans(events []UsageEvent) []int {
	out := make([]int, 0, len(events))
	for _, e := range events {
		if e.ValidLifespan() {
			out = append(out, *e.ObservedLifespanDays)
		}
	}
	return out
}
