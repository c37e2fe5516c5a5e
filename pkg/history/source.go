package history

import (
	"context"
	"slices"
	"time"

	"github.com/dmitrymomot/replenish/pkg/ledger"
)

// Purchase is one historical purchase record.
type Purchase struct {
	CustomerID   string    `json:"customer_id"`
	ProductID    string    `json:"product_id"`
	PurchaseDate time.Time `json:"purchase_date"`
}

// Source supplies a customer's purchase history on demand. Records may be
// returned in any order.
type Source interface {
	Purchases(ctx context.Context, customerID string) ([]Purchase, error)
}

// StaticSource is a fixed in-memory source for tests and demos.
type StaticSource map[string][]Purchase

func (s StaticSource) Purchases(ctx context.Context, customerID string) ([]Purchase, error) {
	return s[customerID], nil
}

// Dates projects purchases onto their purchase dates, the shape pay-cycle
// detection consumes.
func Dates(purchases []Purchase) []time.Time {
	out := make([]time.Time, len(purchases))
	for i, p := range purchases {
		out[i] = p.PurchaseDate
	}
	return out
}

// Bootstrap replays a customer's purchase history into the usage ledger in
// chronological order, pairing repurchases into closed intervals, and returns
// the purchase dates for pattern detection.
func Bootstrap(ctx context.Context, src Source, customerID string, store ledger.Store) ([]time.Time, error) {
	purchases, err := src.Purchases(ctx, customerID)
	if err != nil {
		return nil, err
	}

	ordered := make([]Purchase, len(purchases))
	copy(ordered, purchases)
	slices.SortFunc(ordered, func(a, b Purchase) int { return a.PurchaseDate.Compare(b.PurchaseDate) })

	for _, p := range ordered {
		if _, err := store.RecordPurchase(ctx, p.CustomerID, p.ProductID, p.PurchaseDate); err != nil {
			return nil, err
		}
	}
	return Dates(ordered), nil
}
