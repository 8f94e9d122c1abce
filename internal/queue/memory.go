package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/notifyhub/flagnotify/internal/domain"
)

// MemoryQueue is an in-process Queue used in tests and single-process
// setups. Redelivered jobs become claimable again immediately (no delay),
// which keeps tests deterministic.
type MemoryQueue struct {
	mu      sync.Mutex
	ready   []*domain.Job
	claimed map[string]*domain.Job
	dropped []*domain.Job

	// Optional error overrides for failure-path tests.
	EnqueueErr error
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{claimed: make(map[string]*domain.Job)}
}

func (q *MemoryQueue) Enqueue(_ context.Context, itemID int64) (*domain.Job, error) {
	if q.EnqueueErr != nil {
		return nil, q.EnqueueErr
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	job := &domain.Job{
		ID:        uuid.New().String(),
		ItemID:    itemID,
		CreatedAt: time.Now().UTC(),
	}
	q.ready = append(q.ready, job)
	return job, nil
}

func (q *MemoryQueue) Claim(_ context.Context) (*domain.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.ready) == 0 {
		return nil, domain.ErrNoJob
	}
	job := q.ready[0]
	q.ready = q.ready[1:]
	q.claimed[job.ID] = job
	return job, nil
}

func (q *MemoryQueue) AckSuccess(_ context.Context, job *domain.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.claimed, job.ID)
	return nil
}

func (q *MemoryQueue) RequestRedelivery(_ context.Context, job *domain.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.claimed, job.ID)
	job.Attempts++
	q.ready = append(q.ready, job)
	return nil
}

func (q *MemoryQueue) AckDrop(_ context.Context, job *domain.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.claimed, job.ID)
	q.dropped = append(q.dropped, job)
	return nil
}

func (q *MemoryQueue) Depth(_ context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ready), nil
}

// Dropped returns the jobs abandoned via AckDrop. Test helper.
func (q *MemoryQueue) Dropped() []*domain.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*domain.Job(nil), q.dropped...)
}

var _ Queue = (*MemoryQueue)(nil)
