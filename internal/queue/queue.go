// Package queue provides the durable work queue for debounced notification
// jobs. One job carries one content-item ID; the pending-work lock on the
// enqueue path guarantees at most one queued job per item.
package queue

import (
	"context"

	"github.com/notifyhub/flagnotify/internal/domain"
)

// Queue is the durable job queue consumed by the worker package.
// Redelivery timing and backoff are the queue's own policy; the consumer
// only signals which of the three outcomes applies.
type Queue interface {
	// Enqueue adds a job for the item. Callers must hold the pending
	// lock for itemID before enqueueing.
	Enqueue(ctx context.Context, itemID int64) (*domain.Job, error)

	// Claim returns the next available job, or domain.ErrNoJob when the
	// queue is empty. A claimed job is invisible to other consumers
	// until acked or redelivered.
	Claim(ctx context.Context) (*domain.Job, error)

	// AckSuccess marks the job complete. Terminal.
	AckSuccess(ctx context.Context, job *domain.Job) error

	// RequestRedelivery returns the same job to the queue for a later
	// attempt. No new job is created; the attempt counter increments.
	RequestRedelivery(ctx context.Context, job *domain.Job) error

	// AckDrop abandons the job without completing it. Terminal.
	AckDrop(ctx context.Context, job *domain.Job) error

	// Depth returns the number of jobs waiting to be claimed.
	Depth(ctx context.Context) (int, error)
}
