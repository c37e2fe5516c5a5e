package replenish

import (
	"log/slog"

	"github.com/dmitrymomot/replenish/pkg/lifespan"
	"github.com/dmitrymomot/replenish/pkg/remind"
	"github.com/dmitrymomot/replenish/pkg/subscription"
)

// Service bundles the engine components exposed over HTTP.
type Service struct {
	estimator   *lifespan.Estimator
	coordinator *remind.Coordinator
	recommender *subscription.Recommender
	schedules   remind.ScheduleStore
	logger      *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// NewService wires the HTTP surface. Panics on nil required dependencies to
// fail fast during initialization.
func NewService(
	estimator *lifespan.Estimator,
	coordinator *remind.Coordinator,
	recommender *subscription.Recommender,
	schedules remind.ScheduleStore,
	opts ...ServiceOption,
) *Service {
	if estimator == nil {
		panic("replenish: estimator is required")
	}
	if coordinator == nil {
		panic("replenish: coordinator is required")
	}
	if recommender == nil {
		panic("replenish: recommender is required")
	}
	if schedules == nil {
		panic("replenish: schedule store is required")
	}

	s := &Service{
		estimator:   estimator,
		coordinator: coordinator,
		recommender: recommender,
		schedules:   schedules,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
