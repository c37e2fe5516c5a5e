package replenish

import (
	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/replenish/pkg/requestid"
)

// Router mounts the engine's HTTP surface.
//
// Example:
//
//	svc := replenish.NewService(estimator, coordinator, recommender, schedules)
//
//	r := chi.NewRouter()
//	r.Mount("/v1", replenish.Router(svc))
func Router(svc *Service) chi.Router {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)

	r.Post("/usage", svc.handleRecordUsage)
	r.Post("/purchases", svc.handleRecordPurchase)

	r.Route("/products/{productID}", func(p chi.Router) {
		p.Get("/prediction", svc.handleProductPrediction)
		p.Get("/recommendation", svc.handleProductRecommendation)
	})

	r.Route("/customers/{customerID}", func(c chi.Router) {
		c.Route("/products/{productID}", func(p chi.Router) {
			p.Get("/prediction", svc.handleCustomerPrediction)
			p.Get("/recommendation", svc.handleCustomerRecommendation)
			p.Get("/reminder", svc.handleGetReminder)
			p.Post("/reminder", svc.handleScheduleReminder)
		})
		c.Post("/reminders", svc.handleScheduleBatch)
	})

	r.Post("/reminders/sweep", svc.handleSweep)

	return r
}
