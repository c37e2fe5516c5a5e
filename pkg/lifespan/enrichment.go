package lifespan

import "context"

// Estimate is an externally sourced lifespan estimate for a product's
// category, typically mined from reviews or category averages.
type Estimate struct {
	LifespanDays float64 `json:"lifespan_days"`
	Confidence   float64 `json:"confidence"` // 0-1, used as the blend weight
}

// EnrichmentSource supplies optional external lifespan estimates. The
// estimator blends them into local predictions; an unavailable source never
// blocks a prediction.
type EnrichmentSource interface {
	Estimate(ctx context.Context, productID string) (Estimate, error)
}
