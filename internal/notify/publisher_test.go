package notify_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/notifyhub/flagnotify/internal/domain"
	"github.com/notifyhub/flagnotify/internal/notify"
	"github.com/notifyhub/flagnotify/internal/pending"
	"github.com/notifyhub/flagnotify/internal/queue"
)

func newPublisher() (*notify.Publisher, *pending.MemoryLock, *queue.MemoryQueue) {
	lock := pending.NewMemoryLock()
	q := queue.NewMemoryQueue()
	return notify.NewPublisher(lock, q, zap.NewNop()), lock, q
}

// Debounce property: N update events on the same item before the first job
// completes produce exactly one job.
func TestPublisher_Debounce(t *testing.T) {
	p, lock, q := newPublisher()
	ctx := context.Background()

	queued, err := p.ContentUpdated(ctx, 42)
	if err != nil || !queued {
		t.Fatalf("first event: queued=%v err=%v", queued, err)
	}

	for i := 0; i < 10; i++ {
		queued, err := p.ContentUpdated(ctx, 42)
		if err != nil {
			t.Fatalf("event %d: %v", i, err)
		}
		if queued {
			t.Fatalf("event %d enqueued a duplicate job", i)
		}
	}

	depth, _ := q.Depth(ctx)
	if depth != 1 {
		t.Fatalf("expected exactly one queued job, got %d", depth)
	}
	if !lock.Held(42) {
		t.Fatal("pending entry must be set while the job is queued")
	}
}

func TestPublisher_ConcurrentEvents(t *testing.T) {
	p, _, q := newPublisher()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = p.ContentUpdated(ctx, 7)
		}()
	}
	wg.Wait()

	depth, _ := q.Depth(ctx)
	if depth != 1 {
		t.Fatalf("expected exactly one queued job under concurrency, got %d", depth)
	}
}

func TestPublisher_IndependentItems(t *testing.T) {
	p, _, q := newPublisher()
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		queued, err := p.ContentUpdated(ctx, id)
		if err != nil || !queued {
			t.Fatalf("item %d: queued=%v err=%v", id, queued, err)
		}
	}

	depth, _ := q.Depth(ctx)
	if depth != 3 {
		t.Fatalf("expected one job per item, got %d", depth)
	}
}

func TestPublisher_InvalidItemID(t *testing.T) {
	p, _, _ := newPublisher()
	if _, err := p.ContentUpdated(context.Background(), 0); !errors.Is(err, domain.ErrInvalidItemID) {
		t.Fatalf("expected ErrInvalidItemID, got %v", err)
	}
}

// Enqueue failure rolls the pending entry back so a later event can retry.
func TestPublisher_EnqueueFailureReleasesLock(t *testing.T) {
	lock := pending.NewMemoryLock()
	q := queue.NewMemoryQueue()
	q.EnqueueErr = fmt.Errorf("queue backend down")
	p := notify.NewPublisher(lock, q, zap.NewNop())

	if _, err := p.ContentUpdated(context.Background(), 42); err == nil {
		t.Fatal("expected enqueue error to propagate")
	}
	if lock.Held(42) {
		t.Fatal("pending entry must be rolled back after enqueue failure")
	}

	q.EnqueueErr = nil
	queued, err := p.ContentUpdated(context.Background(), 42)
	if err != nil || !queued {
		t.Fatalf("retry after rollback: queued=%v err=%v", queued, err)
	}
}
