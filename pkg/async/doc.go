// Package async provides a minimal future abstraction for fanning out
// independent computations and collecting their results individually.
//
// It exists for batch operations with partial-failure semantics: each item
// runs in its own goroutine and reports its own result, so one failing item
// never aborts the rest of the batch.
package async
