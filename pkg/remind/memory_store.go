package remind

import (
	"context"
	"sync"
)

type pairKey struct {
	customerID string
	productID  string
}

// MemoryScheduleStore keeps schedule state in process memory. Pair atomicity
// comes from a single map mutex; operations are O(1) map lookups, so one lock
// does not meaningfully serialize distinct pairs.
type MemoryScheduleStore struct {
	mu        sync.Mutex
	schedules map[pairKey]Schedule
}

// NewMemoryScheduleStore creates an empty schedule store.
func NewMemoryScheduleStore() *MemoryScheduleStore {
	return &MemoryScheduleStore{schedules: make(map[pairKey]Schedule)}
}

// GetPending returns the pending schedule for the pair, or nil when idle.
func (s *MemoryScheduleStore) GetPending(ctx context.Context, customerID, productID string) (*Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sched, ok := s.schedules[pairKey{customerID, productID}]; ok && sched.Status == StatusScheduled {
		return &sched, nil
	}
	return nil, nil
}

// CreatePending stores sched unless a pending schedule already exists.
func (s *MemoryScheduleStore) CreatePending(ctx context.Context, sched Schedule) (Schedule, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{sched.CustomerID, sched.ProductID}
	if existing, ok := s.schedules[key]; ok && existing.Status == StatusScheduled {
		return existing, false, nil
	}

	sched.Status = StatusScheduled
	s.schedules[key] = sched
	return sched, true, nil
}

// MarkDispatched transitions the pair's pending schedule to dispatched.
func (s *MemoryScheduleStore) MarkDispatched(ctx context.Context, customerID, productID string) (Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{customerID, productID}
	sched, ok := s.schedules[key]
	if !ok || sched.Status != StatusScheduled {
		return Schedule{}, ErrNotScheduled
	}

	sched.Status = StatusDispatched
	s.schedules[key] = sched
	return sched, nil
}

// ListPending returns all pending schedules.
func (s *MemoryScheduleStore) ListPending(ctx context.Context) ([]Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []Schedule
	for _, sched := range s.schedules {
		if sched.Status == StatusScheduled {
			pending = append(pending, sched)
		}
	}
	return pending, nil
}

// Reset returns the pair to idle.
func (s *MemoryScheduleStore) Reset(ctx context.Context, customerID, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.schedules, pairKey{customerID, productID})
	return nil
}
