package subscription

import (
	"fmt"
	"math"
	"slices"

	"github.com/dmitrymomot/replenish/pkg/lifespan"
)

// Recommendation is a recurring-delivery offer derived from a lifespan
// prediction.
type Recommendation struct {
	OptimalIntervalDays int     `json:"optimal_interval_days"`
	Alternatives        []int   `json:"alternatives"`
	SavingsPercent      float64 `json:"savings_percent"`
	Explanation         string  `json:"explanation"`
	Confidence          float64 `json:"confidence"` // carried over from the underlying prediction
}

// Input carries the prediction values the recommender works from. Use
// FromProduct or FromCustomer rather than filling it by hand.
type Input struct {
	LifespanDays int
	Confidence   float64 // 0-1
	SampleSize   int
}

// FromProduct builds recommender input from a product-wide prediction.
func FromProduct(p lifespan.ProductPrediction) Input {
	return Input{
		LifespanDays: p.PredictedLifespanDays,
		Confidence:   p.ConfidenceScore,
		SampleSize:   p.SampleSize,
	}
}

// FromCustomer builds recommender input from a personalized prediction.
// Confidence and sample size come from the underlying product prediction; the
// personalization only shifts the lifespan.
func FromCustomer(c lifespan.CustomerPrediction, product lifespan.ProductPrediction) Input {
	return Input{
		LifespanDays: c.PersonalizedLifespanDays,
		Confidence:   product.ConfidenceScore,
		SampleSize:   product.SampleSize,
	}
}

// Recommender proposes delivery intervals using a configurable ladder.
type Recommender struct {
	ladder Ladder
}

// NewRecommender creates a recommender. A zero-value ladder falls back to the
// compiled-in default.
func NewRecommender(ladder Ladder) *Recommender {
	if len(ladder.Buckets) == 0 {
		ladder = DefaultLadder()
	}
	return &Recommender{ladder: ladder}
}

// Recommend derives a delivery-interval offer. Invalid input (non-positive
// lifespan, e.g. from a pathological personalization factor) yields the fixed
// default offer rather than an error.
func (r *Recommender) Recommend(in Input) Recommendation {
	if in.LifespanDays <= 0 {
		return r.defaultOffer()
	}

	buffer := int(math.Round(0.1 * float64(in.LifespanDays)))
	if buffer < 3 {
		buffer = 3
	}
	optimal := in.LifespanDays - buffer
	if optimal <= 0 {
		return r.defaultOffer()
	}

	bucket := r.ladder.bucketFor(optimal)
	alts := append([]int{optimal}, bucket.Alternatives...)
	slices.Sort(alts)
	alts = slices.Compact(alts)

	savings := 0.10 + math.Min(0.05, float64(optimal)/180*0.05)

	return Recommendation{
		OptimalIntervalDays: optimal,
		Alternatives:        alts,
		SavingsPercent:      savings,
		Explanation:         explain(in, optimal),
		Confidence:          in.Confidence,
	}
}

func (r *Recommender) defaultOffer() Recommendation {
	return Recommendation{
		OptimalIntervalDays: r.ladder.DefaultInterval,
		Alternatives:        slices.Clone(r.ladder.DefaultAlternatives),
		SavingsPercent:      0.10,
		Explanation:         "A 30-day delivery cycle works well for most customers. Adjust it anytime.",
		Confidence:          0.1,
	}
}

// explain words the offer by confidence tier so low-evidence recommendations
// read as suggestions, not promises.
func explain(in Input, optimal int) string {
	switch {
	case in.Confidence > 0.8:
		return fmt.Sprintf(
			"Based on %d observed repurchase cycles, a delivery every %d days arrives just before you run out.",
			in.SampleSize, optimal)
	case in.Confidence > 0.6:
		return fmt.Sprintf(
			"Customers typically go through this product in about %d days, so a %d-day delivery cycle should keep you stocked.",
			in.LifespanDays, optimal)
	default:
		return fmt.Sprintf(
			"We don't have much repurchase data for this product yet; a %d-day cycle is our best starting point.",
			optimal)
	}
}
