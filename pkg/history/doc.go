// Package history defines the purchase-history boundary the engine consumes.
//
// The catalog/order system owns purchase records; this package only specifies
// the read contract and provides a PostgreSQL implementation plus a static
// in-memory source for tests. Pattern detection and ledger bootstrapping both
// feed from it. An unreachable source is surfaced as an explicit error — the
// engine never guesses a depletion date without data.
package history
