package remind

import (
	"context"
	"log/slog"
)

// Dispatcher is the outbound messaging boundary. Implementations are
// responsible for delivering the reminder at or after its fire date and for
// their own retry and timeout policies.
type Dispatcher interface {
	Dispatch(ctx context.Context, reminder Reminder) error
}

// NoopDispatcher logs reminders instead of delivering them. Used in tests and
// local development.
type NoopDispatcher struct {
	Logger *slog.Logger
}

func (d NoopDispatcher) Dispatch(ctx context.Context, reminder Reminder) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "reminder dispatched (noop)",
		slog.String("customer_id", reminder.CustomerID),
		slog.String("product_id", reminder.ProductID),
		slog.Time("fire_date", reminder.FireDate),
	)
	return nil
}
