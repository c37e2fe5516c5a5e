package lifespan

import "fmt"

// Default prediction values for products with no closed usage events.
const (
	DefaultLifespanDays = 30
	DefaultConfidence   = 0.1

	// MaxConfidence caps the sample-driven confidence score.
	MaxConfidence = 0.95
)

// ProductPrediction is the product-wide lifespan estimate.
type ProductPrediction struct {
	ProductID                string  `json:"product_id"`
	PredictedLifespanDays    int     `json:"predicted_lifespan_days"`
	ConfidenceScore          float64 `json:"confidence_score"` // 0-1, capped at MaxConfidence
	RecommendedIntervalLabel string  `json:"recommended_interval_label"`
	SampleSize               int     `json:"sample_size"`
}

// CustomerPrediction personalizes a product prediction by the ratio of the
// customer's own average observed lifespan to the product-wide average.
//
// The factor is deliberately unclamped: a customer who repurchases far sooner
// or later than average produces a proportionally small or large estimate.
// Downstream components treat non-positive personalized lifespans as invalid
// input and fall back to their own defaults.
type CustomerPrediction struct {
	CustomerID               string  `json:"customer_id"`
	ProductID                string  `json:"product_id"`
	PersonalizedLifespanDays int     `json:"personalized_lifespan_days"`
	PersonalizationFactor    float64 `json:"personalization_factor"`
}

// PairKey identifies a customer prediction cache entry.
type PairKey struct {
	CustomerID string
	ProductID  string
}

// intervalLabel buckets a lifespan into a human-readable reorder cadence.
func intervalLabel(days int) string {
	switch {
	case days <= 7:
		return fmt.Sprintf("%d days", days)
	case days <= 14:
		weeks := (days + 3) / 7 // nearest week
		return fmt.Sprintf("%d weeks", weeks)
	default:
		months := (days + 15) / 30 // nearest month
		if months <= 1 {
			return "1 month"
		}
		return fmt.Sprintf("%d months", months)
	}
}
