// Package remind computes when a replenishment reminder should fire and
// coordinates the per-pair scheduling lifecycle.
//
// The fire date reconciles a product's predicted depletion date against the
// customer's pay cycle: the reminder lands two days after the income event
// closest before the money is needed, so the customer is prompted while funds
// are available. Weekend and holiday avoidance is left to the dispatch
// collaborator.
//
// The coordinator enforces the engine's one concurrency-relevant invariant: a
// (customer, product) pair has at most one pending schedule, and a second
// scheduling request while one is outstanding is an idempotent no-op that
// returns the existing schedule. The check-and-create is atomic per pair;
// different pairs never contend.
//
// Schedule state per pair moves Idle → Scheduled → Dispatched; a new purchase
// resets the pair to Idle. Stores are pluggable: MemoryScheduleStore for a
// single process, RedisScheduleStore when several engine instances must share
// the de-duplication set.
package remind
