package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/notifyhub/flagnotify/internal/domain"
	"github.com/notifyhub/flagnotify/internal/pending"
	"github.com/notifyhub/flagnotify/internal/queue"
)

// Publisher is the update-event entry point. It debounces: while a job for
// an item is queued or processing, further update events for that item do
// not enqueue a second job.
type Publisher struct {
	lock   pending.Lock
	q      queue.Queue
	logger *zap.Logger
}

func NewPublisher(lock pending.Lock, q queue.Queue, logger *zap.Logger) *Publisher {
	return &Publisher{lock: lock, q: q, logger: logger}
}

// ContentUpdated records an update event for the item. Returns true when a
// job was enqueued, false when the event was absorbed by an existing
// pending entry.
//
// The lock is acquired before the job is placed on the queue — the
// acquire is the atomic check that prevents two rapid events from both
// observing "no entry" and both enqueueing. If the enqueue itself fails,
// the entry is rolled back so a later event can try again.
func (p *Publisher) ContentUpdated(ctx context.Context, itemID int64) (bool, error) {
	if itemID <= 0 {
		return false, domain.ErrInvalidItemID
	}

	acquired, err := p.lock.TryAcquire(ctx, itemID)
	if err != nil {
		return false, fmt.Errorf("debounce check: %w", err)
	}
	if !acquired {
		p.logger.Debug("update event debounced, job already pending",
			zap.Int64("item_id", itemID))
		return false, nil
	}

	job, err := p.q.Enqueue(ctx, itemID)
	if err != nil {
		if relErr := p.lock.Release(ctx, itemID); relErr != nil {
			p.logger.Error("failed to roll back pending entry after enqueue failure",
				zap.Int64("item_id", itemID), zap.Error(relErr))
		}
		return false, fmt.Errorf("enqueue job: %w", err)
	}

	p.logger.Info("notification job enqueued",
		zap.Int64("item_id", itemID), zap.String("job_id", job.ID))
	return true, nil
}
