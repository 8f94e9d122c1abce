package worker_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/notifyhub/flagnotify/internal/domain"
	"github.com/notifyhub/flagnotify/internal/pending"
	"github.com/notifyhub/flagnotify/internal/queue"
	"github.com/notifyhub/flagnotify/internal/store"
	"github.com/notifyhub/flagnotify/internal/worker"
)

// stubDispatcher lets tests decide whether the dispatch run succeeds.
// Safe for concurrent use: Run tests read the call count while the
// consumer goroutine is still dispatching.
type stubDispatcher struct {
	err   error
	calls atomic.Int64
}

func (d *stubDispatcher) Dispatch(_ context.Context, _ int64) error {
	d.calls.Add(1)
	return d.err
}

type consumerFixture struct {
	consumer   *worker.Consumer
	q          *queue.MemoryQueue
	lock       *pending.MemoryLock
	dispatcher *stubDispatcher
	outcomes   []domain.Outcome
}

func newConsumerFixture(t *testing.T, retryOnFailure bool) *consumerFixture {
	t.Helper()
	f := &consumerFixture{
		q:          queue.NewMemoryQueue(),
		lock:       pending.NewMemoryLock(),
		dispatcher: &stubDispatcher{},
	}
	settings := &store.MockSettingsStore{
		Settings: domain.RunSettings{RetryOnFailure: retryOnFailure},
	}
	f.consumer = worker.NewConsumer(
		0, f.q, f.lock, settings, f.dispatcher,
		time.Millisecond, zap.NewNop(),
		func(o domain.Outcome, _ time.Duration) { f.outcomes = append(f.outcomes, o) },
	)
	return f
}

// enqueueHeld mimics the publisher: acquire the pending entry, then
// enqueue.
func (f *consumerFixture) enqueueHeld(t *testing.T, itemID int64) *domain.Job {
	t.Helper()
	ctx := context.Background()
	if ok, _ := f.lock.TryAcquire(ctx, itemID); !ok {
		t.Fatalf("item %d already pending", itemID)
	}
	job, err := f.q.Enqueue(ctx, itemID)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	return job
}

func TestConsumer_SuccessReleasesLock(t *testing.T) {
	f := newConsumerFixture(t, false)
	ctx := context.Background()
	f.enqueueHeld(t, 42)

	job, _ := f.q.Claim(ctx)
	outcome := f.consumer.Process(ctx, job)

	if outcome != domain.OutcomeSucceeded {
		t.Fatalf("outcome = %s, want succeeded", outcome)
	}
	if f.lock.Held(42) {
		t.Fatal("pending entry must be released on success")
	}
	if depth, _ := f.q.Depth(ctx); depth != 0 {
		t.Fatalf("queue should be empty, depth=%d", depth)
	}
}

// Retry policy: a systemic failure with retry enabled leaves the pending
// entry set and redelivers the SAME job.
func TestConsumer_RetryKeepsLockAndReusesJob(t *testing.T) {
	f := newConsumerFixture(t, true)
	ctx := context.Background()
	created := f.enqueueHeld(t, 42)
	f.dispatcher.err = fmt.Errorf("storage unavailable")

	job, _ := f.q.Claim(ctx)
	outcome := f.consumer.Process(ctx, job)

	if outcome != domain.OutcomeRetryRequested {
		t.Fatalf("outcome = %s, want retry_requested", outcome)
	}
	if !f.lock.Held(42) {
		t.Fatal("pending entry must stay set across a retry")
	}

	redelivered, err := f.q.Claim(ctx)
	if err != nil {
		t.Fatalf("claim redelivered job: %v", err)
	}
	if redelivered.ID != created.ID {
		t.Fatal("redelivery must reuse the existing job")
	}

	// The retained entry keeps debouncing while the retry is pending.
	if ok, _ := f.lock.TryAcquire(ctx, 42); ok {
		t.Fatal("a new update event must not acquire while retry is pending")
	}
}

// With retry disabled the job is dropped and the entry released exactly
// once, so a future independent update event can re-enqueue.
func TestConsumer_DropReleasesLock(t *testing.T) {
	f := newConsumerFixture(t, false)
	ctx := context.Background()
	f.enqueueHeld(t, 42)
	f.dispatcher.err = fmt.Errorf("template table corrupt")

	job, _ := f.q.Claim(ctx)
	outcome := f.consumer.Process(ctx, job)

	if outcome != domain.OutcomeDropped {
		t.Fatalf("outcome = %s, want dropped", outcome)
	}
	if f.lock.Held(42) {
		t.Fatal("pending entry must be released on drop")
	}
	if depth, _ := f.q.Depth(ctx); depth != 0 {
		t.Fatal("dropped job must not be redelivered")
	}
	if n := len(f.q.Dropped()); n != 1 {
		t.Fatalf("expected one dropped job, got %d", n)
	}

	if ok, _ := f.lock.TryAcquire(ctx, 42); !ok {
		t.Fatal("a new update event should acquire after the drop")
	}
}

// When the settings store itself is unreachable, the failure is systemic:
// default to retry rather than dropping the job.
func TestConsumer_RetryDefaultWhenSettingsUnreachable(t *testing.T) {
	f := newConsumerFixture(t, false)
	ctx := context.Background()
	f.enqueueHeld(t, 42)
	f.dispatcher.err = fmt.Errorf("storage unavailable")

	settings := &store.MockSettingsStore{SnapshotErr: fmt.Errorf("settings unreachable")}
	c := worker.NewConsumer(0, f.q, f.lock, settings, f.dispatcher, time.Millisecond, zap.NewNop(), nil)

	job, _ := f.q.Claim(ctx)
	if outcome := c.Process(ctx, job); outcome != domain.OutcomeRetryRequested {
		t.Fatalf("outcome = %s, want retry_requested", outcome)
	}
	if !f.lock.Held(42) {
		t.Fatal("pending entry must stay set")
	}
}

// Run drains jobs until the context is cancelled.
func TestConsumer_RunDrainsQueue(t *testing.T) {
	f := newConsumerFixture(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, id := range []int64{1, 2, 3} {
		f.enqueueHeld(t, id)
	}

	done := make(chan struct{})
	go func() {
		f.consumer.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		if depth, _ := f.q.Depth(context.Background()); depth == 0 && f.dispatcher.calls.Load() >= 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("consumer did not drain the queue in time")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after cancellation")
	}

	if len(f.outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(f.outcomes))
	}
	for _, o := range f.outcomes {
		if o != domain.OutcomeSucceeded {
			t.Fatalf("unexpected outcome %s", o)
		}
	}
}
