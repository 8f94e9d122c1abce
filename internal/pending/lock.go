// Package pending implements the debounce lock: a process-wide keyed set
// with one entry per content-item ID, meaning "a job for this item is
// queued or being processed".
//
// This is deliberately not a mutex. The entry survives a retry redelivery
// (the consumer leaves it set on a retryable failure) and is only removed
// on job success or drop. Because update events and queue processing may
// run in different processes, the production backend is Redis, not an
// in-process map.
package pending

import "context"

// Lock is the pending-work debounce lock.
type Lock interface {
	// TryAcquire records the entry for itemID and returns true if none
	// existed. Returns false when an entry is already present — the
	// caller must not enqueue a duplicate job. The check-and-set is
	// atomic: two concurrent update events cannot both acquire.
	TryAcquire(ctx context.Context, itemID int64) (bool, error)

	// Release removes the entry. Idempotent: releasing an absent entry
	// is not an error.
	Release(ctx context.Context, itemID int64) error
}
