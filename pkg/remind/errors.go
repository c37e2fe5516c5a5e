package remind

import "errors"

var (
	// ErrUndeterminedCycle is returned when a fire date is requested without a usable pay cycle.
	ErrUndeterminedCycle = errors.New("remind: pay cycle is undetermined")

	// ErrInvalidDepletionDate is returned for a zero or missing depletion date.
	ErrInvalidDepletionDate = errors.New("remind: invalid depletion date")

	// ErrNoPurchaseHistory is returned when a pair has no recorded purchase to project depletion from.
	ErrNoPurchaseHistory = errors.New("remind: no purchase history for customer and product")

	// ErrNotScheduled is returned when a state transition is requested for a pair with no pending schedule.
	ErrNotScheduled = errors.New("remind: no pending schedule for customer and product")

	// ErrDispatchUnavailable is returned when the dispatch collaborator cannot be reached.
	ErrDispatchUnavailable = errors.New("remind: dispatch collaborator unavailable")

	// ErrStoreUnavailable is returned when the schedule store cannot be reached.
	ErrStoreUnavailable = errors.New("remind: schedule store unavailable")

	// ErrSweepUnsupported is returned when the schedule store cannot enumerate pending schedules.
	ErrSweepUnsupported = errors.New("remind: schedule store does not support listing pending schedules")
)
