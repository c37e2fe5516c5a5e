// Package lifespan estimates how long a consumable product lasts, product-wide
// and per customer, from observed purchase/repurchase intervals in the usage
// ledger.
//
// Predictions are derived values cached behind an explicit invalidation
// boundary: recording a usage event that closes an interval invalidates the
// product's cached prediction and every customer prediction derived from it,
// atomically per product, so a read that happens after the write always
// observes the recomputed value.
//
// The estimator never fails for missing data. A product with no closed usage
// events gets a documented default (30 days at 0.1 confidence), malformed
// intervals are excluded from aggregation rather than aborting it, and an
// unreachable enrichment source degrades to the local estimate with a warning
// in the log.
package lifespan
