// Package ledger is the append-only store of observed product usage events.
//
// Every purchase a customer makes produces an open-ended event. When a later
// purchase of the same product by the same customer is observed, a second,
// closed event is appended carrying the observed lifespan in whole days
// between the two purchases. Events are immutable and never deleted; every
// derived prediction in the engine is reconstructable from this ledger.
//
// Two implementations are provided: MemoryStore for tests and single-process
// deployments, and PGStore backed by PostgreSQL for anything that must
// survive a restart.
package ledger
