package subscription_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/replenish/pkg/lifespan"
	"github.com/dmitrymomot/replenish/pkg/subscription"
)

func TestRecommender_Recommend(t *testing.T) {
	t.Parallel()
	r := subscription.NewRecommender(subscription.DefaultLadder())

	t.Run("90-day lifespan", func(t *testing.T) {
		t.Parallel()
		rec := r.Recommend(subscription.Input{LifespanDays: 90, Confidence: 0.85, SampleSize: 7})

		// buffer = max(3, round(9)) = 9
		assert.Equal(t, 81, rec.OptimalIntervalDays)
		assert.Equal(t, []int{60, 81, 90, 120}, rec.Alternatives)
		assert.InDelta(t, 0.1225, rec.SavingsPercent, 1e-9)
	})

	t.Run("short lifespan keeps minimum buffer", func(t *testing.T) {
		t.Parallel()
		rec := r.Recommend(subscription.Input{LifespanDays: 10, Confidence: 0.6, SampleSize: 2})

		// buffer = max(3, round(1)) = 3
		assert.Equal(t, 7, rec.OptimalIntervalDays)
		assert.Equal(t, []int{7, 15, 30}, rec.Alternatives)
	})

	t.Run("savings caps at 15 percent", func(t *testing.T) {
		t.Parallel()
		rec := r.Recommend(subscription.Input{LifespanDays: 400, Confidence: 0.9, SampleSize: 20})
		assert.InDelta(t, 0.15, rec.SavingsPercent, 1e-9)
	})

	t.Run("alternatives are sorted and deduplicated", func(t *testing.T) {
		t.Parallel()
		// optimal = 30 - 3 = 27 → ≤30 bucket {15, 30, 45}
		rec := r.Recommend(subscription.Input{LifespanDays: 30, Confidence: 0.7, SampleSize: 4})
		assert.Equal(t, []int{15, 27, 30, 45}, rec.Alternatives)
		assert.True(t, sortedUnique(rec.Alternatives))
	})

	t.Run("invalid input falls back to the default offer", func(t *testing.T) {
		t.Parallel()
		for _, days := range []int{0, -12} {
			rec := r.Recommend(subscription.Input{LifespanDays: days})
			assert.Equal(t, 30, rec.OptimalIntervalDays)
			assert.Equal(t, []int{15, 30, 45, 60}, rec.Alternatives)
			assert.Equal(t, 0.10, rec.SavingsPercent)
		}
	})
}

func TestRecommender_ExplanationTiers(t *testing.T) {
	t.Parallel()
	r := subscription.NewRecommender(subscription.DefaultLadder())

	high := r.Recommend(subscription.Input{LifespanDays: 60, Confidence: 0.9, SampleSize: 8})
	assert.Contains(t, high.Explanation, "8 observed repurchase cycles")

	medium := r.Recommend(subscription.Input{LifespanDays: 60, Confidence: 0.7, SampleSize: 4})
	assert.Contains(t, medium.Explanation, "typically")

	low := r.Recommend(subscription.Input{LifespanDays: 60, Confidence: 0.5, SampleSize: 1})
	assert.Contains(t, low.Explanation, "don't have much repurchase data")
}

func TestRecommender_FromPredictions(t *testing.T) {
	t.Parallel()

	product := lifespan.ProductPrediction{
		ProductID:             "p1",
		PredictedLifespanDays: 90,
		ConfidenceScore:       0.85,
		SampleSize:            7,
	}
	in := subscription.FromProduct(product)
	assert.Equal(t, 90, in.LifespanDays)
	assert.Equal(t, 7, in.SampleSize)

	customer := lifespan.CustomerPrediction{
		CustomerID:               "c1",
		ProductID:                "p1",
		PersonalizedLifespanDays: 45,
		PersonalizationFactor:    0.5,
	}
	in = subscription.FromCustomer(customer, product)
	assert.Equal(t, 45, in.LifespanDays)
	assert.InDelta(t, 0.85, in.Confidence, 1e-9)
}

func TestLoadLadder(t *testing.T) {
	t.Parallel()

	t.Run("valid yaml", func(t *testing.T) {
		t.Parallel()
		src := `
buckets:
  - max_days: 20
    alternatives: [10, 20]
  - max_days: 0
    alternatives: [30, 60]
default_interval: 30
default_alternatives: [15, 30]
`
		ladder, err := subscription.LoadLadder(strings.NewReader(src))
		require.NoError(t, err)

		r := subscription.NewRecommender(ladder)
		rec := r.Recommend(subscription.Input{LifespanDays: 15, Confidence: 0.7, SampleSize: 3})
		// buffer = 3 → optimal 12 → first bucket
		assert.Equal(t, []int{10, 12, 20}, rec.Alternatives)
	})

	t.Run("rejects unordered thresholds", func(t *testing.T) {
		t.Parallel()
		src := `
buckets:
  - max_days: 20
    alternatives: [10]
  - max_days: 10
    alternatives: [5]
default_interval: 30
default_alternatives: [15]
`
		_, err := subscription.LoadLadder(strings.NewReader(src))
		assert.ErrorIs(t, err, subscription.ErrInvalidLadder)
	})

	t.Run("rejects bucket without alternatives", func(t *testing.T) {
		t.Parallel()
		src := `
buckets:
  - max_days: 20
    alternatives: []
default_interval: 30
default_alternatives: [15]
`
		_, err := subscription.LoadLadder(strings.NewReader(src))
		assert.ErrorIs(t, err, subscription.ErrInvalidLadder)
	})
}

func sortedUnique(v []int) bool {
	for i := 1; i < len(v); i++ {
		if v[i] <= v[i-1] {
			return false
		}
	}
	return true
}
