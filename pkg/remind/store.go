package remind

import "context"

// ScheduleStore persists per-pair schedule state. CreatePending must be
// atomic with respect to concurrent calls for the same pair: exactly one
// caller creates, the rest receive the existing schedule. Calls for different
// pairs must not serialize against each other.
type ScheduleStore interface {
	// GetPending returns the pending schedule for the pair, or nil when the
	// pair is idle.
	GetPending(ctx context.Context, customerID, productID string) (*Schedule, error)

	// CreatePending stores sched unless the pair already has a pending
	// schedule, in which case the existing one is returned with created=false.
	CreatePending(ctx context.Context, sched Schedule) (Schedule, bool, error)

	// MarkDispatched transitions the pair's pending schedule to dispatched.
	MarkDispatched(ctx context.Context, customerID, productID string) (Schedule, error)

	// Reset returns the pair to idle, discarding any schedule state.
	Reset(ctx context.Context, customerID, productID string) error
}

// PendingLister is implemented by schedule stores that can enumerate every
// pending schedule. Dispatch sweeps use it to collect due reminders.
type PendingLister interface {
	// ListPending returns all pending schedules in no particular order.
	ListPending(ctx context.Context) ([]Schedule, error)
}
