package remind

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/replenish/pkg/async"
	"github.com/dmitrymomot/replenish/pkg/history"
	"github.com/dmitrymomot/replenish/pkg/ledger"
	"github.com/dmitrymomot/replenish/pkg/lifespan"
	"github.com/dmitrymomot/replenish/pkg/paycycle"
)

// followUpAfterDays is how long past depletion the post-dispatch follow-up
// reminder waits for a repurchase before firing.
const followUpAfterDays = 30

// Coordinator orchestrates the estimator, the pay-cycle detector and the
// timing calculator for a customer/product pair and owns the per-pair
// scheduling state machine.
type Coordinator struct {
	estimator *lifespan.Estimator
	ledger    ledger.Store
	schedules ScheduleStore
	dispatch  Dispatcher
	source    history.Source
	logger    *slog.Logger
	now       func() time.Time
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithHistorySource enables pay-cycle detection from purchase history when a
// caller does not supply a declared pattern.
func WithHistorySource(src history.Source) CoordinatorOption {
	return func(c *Coordinator) { c.source = src }
}

// WithCoordinatorLogger sets the logger.
func WithCoordinatorLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = logger }
}

// WithClock overrides the time source, pinning "today" in tests.
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator wires the scheduling pipeline. Panics on nil required
// dependencies to fail fast during initialization.
func NewCoordinator(estimator *lifespan.Estimator, store ledger.Store, schedules ScheduleStore, dispatch Dispatcher, opts ...CoordinatorOption) *Coordinator {
	if estimator == nil {
		panic("remind: estimator is required")
	}
	if store == nil {
		panic("remind: ledger store is required")
	}
	if schedules == nil {
		panic("remind: schedule store is required")
	}
	if dispatch == nil {
		dispatch = NoopDispatcher{}
	}

	c := &Coordinator{
		estimator: estimator,
		ledger:    store,
		schedules: schedules,
		dispatch:  dispatch,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ScheduleOption adjusts a single scheduling request.
type ScheduleOption func(*scheduleOptions)

type scheduleOptions struct {
	pattern *paycycle.Pattern
}

// WithDeclaredPattern uses a customer-declared pay cycle instead of detecting
// one from purchase history.
func WithDeclaredPattern(p paycycle.Pattern) ScheduleOption {
	return func(o *scheduleOptions) { o.pattern = &p }
}

// ScheduleReminder computes and stores the reminder schedule for the pair.
// A pending schedule for the same pair makes this an idempotent no-op
// returning the existing schedule.
func (c *Coordinator) ScheduleReminder(ctx context.Context, customerID, productID string, opts ...ScheduleOption) (Schedule, error) {
	var options scheduleOptions
	for _, opt := range opts {
		opt(&options)
	}

	// Fast path: an outstanding schedule short-circuits before any
	// prediction work.
	if existing, err := c.schedules.GetPending(ctx, customerID, productID); err != nil {
		return Schedule{}, err
	} else if existing != nil {
		return *existing, nil
	}

	depletion, err := c.depletionDate(ctx, customerID, productID)
	if err != nil {
		return Schedule{}, err
	}

	pattern, ok := c.resolvePattern(ctx, customerID, options)

	var fireDate time.Time
	cycleUsed := paycycle.Undetermined
	if ok {
		fireDate, err = FireDate(pattern, depletion, c.now())
		if err != nil {
			return Schedule{}, err
		}
		cycleUsed = pattern.Frequency
	} else {
		// No usable cycle: still remind before the product runs out.
		fireDate = FallbackFireDate(depletion)
	}

	sched := Schedule{
		ID:            uuid.New(),
		CustomerID:    customerID,
		ProductID:     productID,
		DepletionDate: depletion,
		FireDate:      fireDate,
		CycleUsed:     cycleUsed,
		Status:        StatusScheduled,
		CreatedAt:     c.now(),
	}

	stored, created, err := c.schedules.CreatePending(ctx, sched)
	if err != nil {
		return Schedule{}, err
	}
	if created {
		c.logger.InfoContext(ctx, "reminder scheduled",
			slog.String("customer_id", customerID),
			slog.String("product_id", productID),
			slog.Time("fire_date", stored.FireDate),
			slog.String("cycle", cycleUsed.String()),
		)
	}
	return stored, nil
}

// BatchResult aggregates a batch scheduling run. Errors are keyed by product
// ID; a failed product never aborts the others.
type BatchResult struct {
	Schedules []Schedule
	Scheduled int
	Failed    int
	Errors    map[string]error
}

// ScheduleBatch schedules reminders for several products of one customer,
// isolating failures per product.
func (c *Coordinator) ScheduleBatch(ctx context.Context, customerID string, productIDs []string, opts ...ScheduleOption) BatchResult {
	futures := make([]*async.Future[Schedule], len(productIDs))
	for i, productID := range productIDs {
		futures[i] = async.Go(ctx, func(ctx context.Context) (Schedule, error) {
			return c.ScheduleReminder(ctx, customerID, productID, opts...)
		})
	}

	result := BatchResult{Errors: make(map[string]error)}
	for i, f := range futures {
		sched, err := f.Await()
		if err != nil {
			result.Failed++
			result.Errors[productIDs[i]] = err
			continue
		}
		result.Scheduled++
		result.Schedules = append(result.Schedules, sched)
	}
	return result
}

// DispatchDue hands every pending schedule with a fire date at or before now
// to the dispatch collaborator and records confirmed deliveries. It is
// intended to be driven by the host's cron or worker loop.
//
// Dispatch failures leave the schedule pending for the next sweep and are
// reported in the returned error map alongside the count of confirmed
// dispatches.
func (c *Coordinator) DispatchDue(ctx context.Context, pending []Schedule) (int, map[uuid.UUID]error) {
	failures := make(map[uuid.UUID]error)
	dispatched := 0
	now := c.now()

	for _, sched := range pending {
		if sched.FireDate.After(now) {
			continue
		}
		reminder := Reminder{
			CustomerID: sched.CustomerID,
			ProductID:  sched.ProductID,
			FireDate:   sched.FireDate,
			TemplateContext: map[string]string{
				"product_id":     sched.ProductID,
				"depletion_date": sched.DepletionDate.Format("2006-01-02"),
			},
		}
		if err := c.dispatch.Dispatch(ctx, reminder); err != nil {
			failures[sched.ID] = err
			c.logger.ErrorContext(ctx, "reminder dispatch failed",
				slog.String("customer_id", sched.CustomerID),
				slog.String("product_id", sched.ProductID),
				slog.Any("error", err),
			)
			continue
		}
		if _, err := c.ConfirmDispatched(ctx, sched.CustomerID, sched.ProductID); err != nil {
			failures[sched.ID] = err
			continue
		}
		dispatched++
	}
	return dispatched, failures
}

// SweepDue enumerates pending schedules and dispatches the due ones. The
// schedule store must implement PendingLister.
func (c *Coordinator) SweepDue(ctx context.Context) (int, map[uuid.UUID]error, error) {
	lister, ok := c.schedules.(PendingLister)
	if !ok {
		return 0, nil, ErrSweepUnsupported
	}
	pending, err := lister.ListPending(ctx)
	if err != nil {
		return 0, nil, err
	}
	dispatched, failures := c.DispatchDue(ctx, pending)
	return dispatched, failures, nil
}

// ConfirmDispatched records the dispatch collaborator's delivery confirmation
// and queues a post-depletion follow-up: if no repurchase is observed, a
// second reminder fires 30 days past the depletion date. A repurchase resets
// the pair and discards the follow-up.
func (c *Coordinator) ConfirmDispatched(ctx context.Context, customerID, productID string) (Schedule, error) {
	sched, err := c.schedules.MarkDispatched(ctx, customerID, productID)
	if err != nil {
		return Schedule{}, err
	}

	followUp := Schedule{
		ID:            uuid.New(),
		CustomerID:    customerID,
		ProductID:     productID,
		DepletionDate: sched.DepletionDate,
		FireDate:      sched.DepletionDate.AddDate(0, 0, followUpAfterDays),
		CycleUsed:     paycycle.Undetermined,
		Status:        StatusScheduled,
		CreatedAt:     c.now(),
	}
	if _, _, err := c.schedules.CreatePending(ctx, followUp); err != nil {
		c.logger.WarnContext(ctx, "failed to queue follow-up reminder",
			slog.String("customer_id", customerID),
			slog.String("product_id", productID),
			slog.Any("error", err),
		)
	}
	return sched, nil
}

// OnPurchase records a purchase and resets the pair's scheduling state to
// idle: the product was restocked, so any outstanding reminder is obsolete.
func (c *Coordinator) OnPurchase(ctx context.Context, customerID, productID string, purchaseDate time.Time) error {
	if _, err := c.estimator.RecordPurchase(ctx, customerID, productID, purchaseDate); err != nil {
		return err
	}
	return c.schedules.Reset(ctx, customerID, productID)
}

// depletionDate projects when the customer's current supply runs out.
func (c *Coordinator) depletionDate(ctx context.Context, customerID, productID string) (time.Time, error) {
	lastPurchase, ok, err := c.ledger.LastPurchase(ctx, customerID, productID)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return time.Time{}, ErrNoPurchaseHistory
	}

	pred, err := c.estimator.PredictForCustomer(ctx, customerID, productID)
	if err != nil {
		return time.Time{}, err
	}

	days := pred.PersonalizedLifespanDays
	if days <= 0 {
		// Pathological personalization factor; recover with the
		// product-wide prediction.
		product, err := c.estimator.PredictForProduct(ctx, productID)
		if err != nil {
			return time.Time{}, err
		}
		days = product.PredictedLifespanDays
	}
	return lastPurchase.AddDate(0, 0, days), nil
}

// resolvePattern picks the declared pattern when supplied, otherwise detects
// one from purchase history. ok=false means no usable cycle.
func (c *Coordinator) resolvePattern(ctx context.Context, customerID string, options scheduleOptions) (paycycle.Pattern, bool) {
	if options.pattern != nil {
		return *options.pattern, options.pattern.Frequency.Valid()
	}
	if c.source == nil {
		return paycycle.Pattern{}, false
	}

	purchases, err := c.source.Purchases(ctx, customerID)
	if err != nil {
		c.logger.WarnContext(ctx, "purchase history unavailable, scheduling without pay-cycle alignment",
			slog.String("customer_id", customerID),
			slog.Any("error", err),
		)
		return paycycle.Pattern{}, false
	}
	return paycycle.Detect(history.Dates(purchases))
}
