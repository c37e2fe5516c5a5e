// Package cache provides a generic, thread-safe keyed cache with explicit
// invalidation, used for derived prediction values that must be recomputed
// whenever their underlying data changes.
//
// The cache is deliberately an explicit abstraction rather than ambient
// module-level maps: every write path that changes source data calls
// Invalidate (or InvalidateFunc for key families), which makes cache
// coherence directly unit-testable without replaying the full data source.
//
// Eviction is LRU-based with a fixed capacity, so derived values never grow
// without bound; everything stored here is reconstructable from source data,
// so losing an entry only costs a recomputation.
//
// # Usage
//
//	c := cache.NewLRU[string, Prediction](1024)
//	c.Put("p1", pred)
//	if v, ok := c.Get("p1"); ok {
//		// use the cached prediction
//	}
//	c.Invalidate("p1")
//
// Invalidate a whole key family, e.g. all entries for one product:
//
//	c.InvalidateFunc(func(k PairKey) bool { return k.ProductID == "p1" })
package cache
