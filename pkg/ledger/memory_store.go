package ledger

import (
	"context"
	"sync"
	"time"
)

type pairKey struct {
	customerID string
	productID  string
}

// MemoryStore is an in-memory ledger for tests and single-process
// deployments. Events are held in append order with per-product and per-pair
// indexes for efficient reads.
type MemoryStore struct {
	mu     sync.RWMutex
	events []UsageEvent

	byProduct map[string][]int
	byPair    map[pairKey][]int

	// Most recent open purchase per pair, candidate for closing on the next
	// purchase of the same product.
	openByPair map[pairKey]int
}

// NewMemoryStore creates an empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byProduct:  make(map[string][]int),
		byPair:     make(map[pairKey][]int),
		openByPair: make(map[pairKey]int),
	}
}

// Append adds an event to the ledger.
func (s *MemoryStore) Append(ctx context.Context, event UsageEvent) error {
	if event.ProductID == "" || event.CustomerID == "" {
		return ErrMissingIdentifier
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.append(event)
	return nil
}

// RecordPurchase appends an open purchase event and closes the previous open
// purchase of the same pair, if any.
func (s *MemoryStore) RecordPurchase(ctx context.Context, customerID, productID string, purchaseDate time.Time) (*UsageEvent, error) {
	if customerID == "" || productID == "" {
		return nil, ErrMissingIdentifier
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{customerID: customerID, productID: productID}

	var closed *UsageEvent
	if idx, ok := s.openByPair[key]; ok {
		c := s.events[idx].CloseWith(purchaseDate)
		s.append(c)
		closed = &c
	}

	open := UsageEvent{
		ProductID:    productID,
		CustomerID:   customerID,
		PurchaseDate: purchaseDate,
	}
	s.append(open)
	s.openByPair[key] = len(s.events) - 1

	return closed, nil
}

// EventsForProduct returns all events for a product in append order.
func (s *MemoryStore) EventsForProduct(ctx context.Context, productID string) ([]UsageEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idxs := s.byProduct[productID]
	out := make([]UsageEvent, len(idxs))
	for i, idx := range idxs {
		out[i] = s.events[idx]
	}
	return out, nil
}

// EventsForCustomerProduct returns all events for a pair in append order.
func (s *MemoryStore) EventsForCustomerProduct(ctx context.Context, customerID, productID string) ([]UsageEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idxs := s.byPair[pairKey{customerID: customerID, productID: productID}]
	out := make([]UsageEvent, len(idxs))
	for i, idx := range idxs {
		out[i] = s.events[idx]
	}
	return out, nil
}

// LastPurchase returns the most recent purchase date for the pair.
func (s *MemoryStore) LastPurchase(ctx context.Context, customerID, productID string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idxs := s.byPair[pairKey{customerID: customerID, productID: productID}]
	var last time.Time
	var found bool
	for _, idx := range idxs {
		if d := s.events[idx].PurchaseDate; !found || d.After(last) {
			last, found = d, true
		}
	}
	return last, found, nil
}

// Must be called with lock held.
func (s *MemoryStore) append(event UsageEvent) {
	s.events = append(s.events, event)
	idx := len(s.events) - 1
	s.byProduct[event.ProductID] = append(s.byProduct[event.ProductID], idx)
	key := pairKey{customerID: event.CustomerID, productID: event.ProductID}
	s.byPair[key] = append(s.byPair[key], idx)
}
