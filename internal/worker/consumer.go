// Package worker runs the queue consumers: goroutines that claim debounced
// jobs, invoke the dispatch engine, and apply the retry-vs-drop policy.
package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/notifyhub/flagnotify/internal/domain"
	"github.com/notifyhub/flagnotify/internal/pending"
	"github.com/notifyhub/flagnotify/internal/queue"
	"github.com/notifyhub/flagnotify/internal/store"
)

// Dispatcher is the engine surface the consumer needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, itemID int64) error
}

// Consumer pulls one job at a time and drives it through
// Claimed → Processing → {Succeeded | RetryRequested | Dropped}.
//
// The pending-work lock interacts with the outcome asymmetrically, and
// that asymmetry is deliberate:
//
//   - Succeeded: release the lock; a fresh update event may enqueue again.
//   - RetryRequested: leave the lock SET. The queue will redeliver this
//     same job; a second job for the item must not appear meanwhile.
//   - Dropped: release the lock so a future independent update event can
//     re-enqueue, then abandon this job.
//
// Retry is only for systemic failures where no delivery could be attempted
// at all. Per-recipient send failures are swallowed inside the engine,
// because re-running a partially delivered job would resend every email
// that already went out — delivery state is not persisted per recipient.
type Consumer struct {
	id         int
	q          queue.Queue
	lock       pending.Lock
	settings   store.SettingsStore
	dispatcher Dispatcher
	interval   time.Duration
	logger     *zap.Logger

	// Metrics hook, injected by main (nil = no-op).
	onOutcome func(outcome domain.Outcome, elapsed time.Duration)
}

func NewConsumer(
	id int,
	q queue.Queue,
	lock pending.Lock,
	settings store.SettingsStore,
	dispatcher Dispatcher,
	interval time.Duration,
	logger *zap.Logger,
	onOutcome func(domain.Outcome, time.Duration),
) *Consumer {
	if onOutcome == nil {
		onOutcome = func(domain.Outcome, time.Duration) {}
	}
	return &Consumer{
		id:         id,
		q:          q,
		lock:       lock,
		settings:   settings,
		dispatcher: dispatcher,
		interval:   interval,
		logger:     logger.With(zap.Int("consumer_id", id)),
		onOutcome:  onOutcome,
	}
}

// Run polls the queue until ctx is cancelled. Each tick drains every
// currently claimable job before sleeping again.
func (c *Consumer) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.logger.Info("consumer started", zap.Duration("interval", c.interval))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer stopping")
			return
		case <-ticker.C:
			c.drain(ctx)
		}
	}
}

func (c *Consumer) drain(ctx context.Context) {
	for {
		job, err := c.q.Claim(ctx)
		if errors.Is(err, domain.ErrNoJob) {
			return
		}
		if err != nil {
			c.logger.Error("claim failed", zap.Error(err))
			return
		}

		start := time.Now()
		outcome := c.Process(ctx, job)
		c.onOutcome(outcome, time.Since(start))

		if ctx.Err() != nil {
			return
		}
	}
}

// Process runs one claimed job to a terminal signal and returns the
// outcome. Once claimed, a job runs to completion — there is no mid-batch
// cancellation.
func (c *Consumer) Process(ctx context.Context, job *domain.Job) domain.Outcome {
	log := c.logger.With(
		zap.String("job_id", job.ID),
		zap.Int64("item_id", job.ItemID),
		zap.Int("attempts", job.Attempts),
	)

	dispatchErr := c.dispatcher.Dispatch(ctx, job.ItemID)
	if dispatchErr == nil {
		if err := c.lock.Release(ctx, job.ItemID); err != nil {
			log.Error("failed to release pending entry after success", zap.Error(err))
		}
		if err := c.q.AckSuccess(ctx, job); err != nil {
			log.Error("failed to ack job success", zap.Error(err))
		}
		log.Debug("job succeeded")
		return domain.OutcomeSucceeded
	}

	if c.retryEnabled(ctx, log) {
		// The pending entry stays set: it keeps the debounce guarantee
		// alive while the queue redelivers this same job.
		log.Error("dispatch failed, requesting redelivery", zap.Error(dispatchErr))
		if err := c.q.RequestRedelivery(ctx, job); err != nil {
			log.Error("failed to request redelivery", zap.Error(err))
		}
		return domain.OutcomeRetryRequested
	}

	if err := c.lock.Release(ctx, job.ItemID); err != nil {
		log.Error("failed to release pending entry after drop", zap.Error(err))
	}
	log.Error("dispatch failed, dropping job", zap.Error(dispatchErr))
	if err := c.q.AckDrop(ctx, job); err != nil {
		log.Error("failed to ack job drop", zap.Error(err))
	}
	return domain.OutcomeDropped
}

// retryEnabled reads the retry policy flag. When the settings store itself
// is unreachable the failure is systemic by definition, so the safe answer
// is to retry rather than silently drop the job.
func (c *Consumer) retryEnabled(ctx context.Context, log *zap.Logger) bool {
	settings, err := c.settings.Snapshot(ctx)
	if err != nil {
		log.Warn("cannot read retry policy, defaulting to retry", zap.Error(err))
		return true
	}
	return settings.RetryOnFailure
}
