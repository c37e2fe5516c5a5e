package lifespan

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/dmitrymomot/replenish/pkg/cache"
	"github.com/dmitrymomot/replenish/pkg/ledger"
)

// Estimator derives lifespan predictions from the usage ledger and keeps them
// in explicitly invalidated caches. Safe for concurrent use; appends and cache
// invalidation for one product are serialized so predictions never publish a
// value staler than the last recorded event.
type Estimator struct {
	store      ledger.Store
	products   cache.Store[string, ProductPrediction]
	customers  cache.Store[PairKey, CustomerPrediction]
	enrichment EnrichmentSource
	logger     *slog.Logger
	locks      keyedMutex
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithEnrichment sets an optional external lifespan estimate source that is
// blended into product predictions.
func WithEnrichment(src EnrichmentSource) Option {
	return func(e *Estimator) { e.enrichment = src }
}

// WithLogger sets the logger used for degradation warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Estimator) { e.logger = logger }
}

// WithCaches overrides the default prediction caches.
func WithCaches(products cache.Store[string, ProductPrediction], customers cache.Store[PairKey, CustomerPrediction]) Option {
	return func(e *Estimator) {
		e.products = products
		e.customers = customers
	}
}

const defaultCacheCapacity = 4096

// NewEstimator creates an estimator on the given ledger store. Panics on a
// nil store to fail fast during initialization.
func NewEstimator(store ledger.Store, opts ...Option) *Estimator {
	if store == nil {
		panic("lifespan: ledger store is required")
	}

	e := &Estimator{
		store:     store,
		products:  cache.NewLRU[string, ProductPrediction](defaultCacheCapacity),
		customers: cache.NewLRU[PairKey, CustomerPrediction](defaultCacheCapacity),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecordUsage appends an event to the ledger. When the event closes an
// interval, the product's cached prediction and all customer predictions for
// that product are invalidated before the append is visible to readers.
func (e *Estimator) RecordUsage(ctx context.Context, event ledger.UsageEvent) error {
	unlock := e.locks.lock(event.ProductID)
	defer unlock()

	if err := e.store.Append(ctx, event); err != nil {
		return err
	}
	if event.Closed() {
		e.invalidate(event.ProductID)
	}
	return nil
}

// RecordPurchase records a purchase, closing the customer's previous open
// interval for the product if one exists. The closed event, if any, is
// returned so callers can react to the completed observation.
func (e *Estimator) RecordPurchase(ctx context.Context, customerID, productID string, purchaseDate time.Time) (*ledger.UsageEvent, error) {
	unlock := e.locks.lock(productID)
	defer unlock()

	closed, err := e.store.RecordPurchase(ctx, customerID, productID, purchaseDate)
	if err != nil {
		return nil, err
	}
	if closed != nil {
		e.invalidate(productID)
	}
	return closed, nil
}

// PredictForProduct returns the product-wide lifespan prediction, recomputing
// it from the ledger on a cache miss. A product with no valid closed events
// yields the documented default.
func (e *Estimator) PredictForProduct(ctx context.Context, productID string) (ProductPrediction, error) {
	if pred, ok := e.products.Get(productID); ok {
		return pred, nil
	}

	unlock := e.locks.lock(productID)
	defer unlock()

	return e.predictForProductLocked(ctx, productID)
}

// Must be called with the product lock held.
func (e *Estimator) predictForProductLocked(ctx context.Context, productID string) (ProductPrediction, error) {
	// Another caller may have recomputed while we waited for the lock.
	if pred, ok := e.products.Get(productID); ok {
		return pred, nil
	}

	events, err := e.store.EventsForProduct(ctx, productID)
	if err != nil {
		return ProductPrediction{}, err
	}

	pred := e.compute(ctx, productID, ledger.ClosedLifespans(events))
	e.products.Put(productID, pred)
	return pred, nil
}

// PredictForCustomer returns the prediction personalized to one customer's
// own repurchase history. Customers without closed intervals for the product
// get the product-wide prediction at factor 1.0.
func (e *Estimator) PredictForCustomer(ctx context.Context, customerID, productID string) (CustomerPrediction, error) {
	key := PairKey{CustomerID: customerID, ProductID: productID}
	if pred, ok := e.customers.Get(key); ok {
		return pred, nil
	}

	// Recompute under the product lock so a concurrent RecordUsage cannot
	// invalidate between the ledger read and the cache publish below.
	unlock := e.locks.lock(productID)
	defer unlock()

	if pred, ok := e.customers.Get(key); ok {
		return pred, nil
	}

	product, err := e.predictForProductLocked(ctx, productID)
	if err != nil {
		return CustomerPrediction{}, err
	}

	events, err := e.store.EventsForCustomerProduct(ctx, customerID, productID)
	if err != nil {
		return CustomerPrediction{}, err
	}

	pred := CustomerPrediction{
		CustomerID:               customerID,
		ProductID:                productID,
		PersonalizedLifespanDays: product.PredictedLifespanDays,
		PersonalizationFactor:    1.0,
	}
	if own := ledger.ClosedLifespans(events); len(own) > 0 && product.PredictedLifespanDays > 0 {
		factor := meanInt(own) / float64(product.PredictedLifespanDays)
		pred.PersonalizationFactor = factor
		pred.PersonalizedLifespanDays = int(math.Round(float64(product.PredictedLifespanDays) * factor))
	}

	e.customers.Put(key, pred)
	return pred, nil
}

// Invalidate drops cached predictions for a product. Exposed for callers that
// mutate the ledger out-of-band (e.g. bulk history imports).
func (e *Estimator) Invalidate(productID string) {
	unlock := e.locks.lock(productID)
	defer unlock()
	e.invalidate(productID)
}

// Must be called with the product lock held.
func (e *Estimator) invalidate(productID string) {
	e.products.Invalidate(productID)
	e.customers.InvalidateFunc(func(k PairKey) bool { return k.ProductID == productID })
}

func (e *Estimator) compute(ctx context.Context, productID string, lifespans []int) ProductPrediction {
	if len(lifespans) == 0 {
		return ProductPrediction{
			ProductID:                productID,
			PredictedLifespanDays:    DefaultLifespanDays,
			ConfidenceScore:          DefaultConfidence,
			RecommendedIntervalLabel: intervalLabel(DefaultLifespanDays),
			SampleSize:               0,
		}
	}

	days := meanInt(lifespans)
	if e.enrichment != nil {
		days = e.blend(ctx, productID, days)
	}

	predicted := int(math.Round(days))
	return ProductPrediction{
		ProductID:                productID,
		PredictedLifespanDays:    predicted,
		ConfidenceScore:          math.Min(MaxConfidence, 0.5+0.05*float64(len(lifespans))),
		RecommendedIntervalLabel: intervalLabel(predicted),
		SampleSize:               len(lifespans),
	}
}

// blend folds an external category estimate into the local mean via a
// confidence-weighted average. Any failure degrades to the local estimate.
func (e *Estimator) blend(ctx context.Context, productID string, local float64) float64 {
	est, err := e.enrichment.Estimate(ctx, productID)
	if err != nil {
		e.logger.WarnContext(ctx, "enrichment source unavailable, using local estimate",
			slog.String("product_id", productID), slog.Any("error", err))
		return local
	}
	if est.LifespanDays <= 0 {
		return local
	}
	w := math.Max(0, math.Min(1, est.Confidence))
	return local*(1-w) + est.LifespanDays*w
}

func meanInt(v []int) float64 {
	var sum int
	for _, x := range v {
		sum += x
	}
	return float64(sum) / float64(len(v))
}
