package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notifyhub/flagnotify/internal/domain"
)

// PgQueue is a Postgres-backed Queue. Jobs live in the notify_jobs table;
// Claim uses FOR UPDATE SKIP LOCKED so multiple consumer processes can
// poll concurrently without claiming the same job twice.
//
// Redelivered jobs become claimable again after redeliveryDelay. Persisted
// jobs survive restarts, which the pending-work lock relies on: a lock
// entry without a surviving job would debounce forever. For the same
// reason a claim carries a visibility timeout: a job left in processing
// longer than claimTimeout (worker crashed mid-run) becomes claimable
// again instead of pinning its pending entry forever.
type PgQueue struct {
	pool            *pgxpool.Pool
	redeliveryDelay time.Duration
	claimTimeout    time.Duration
}

func NewPgQueue(pool *pgxpool.Pool, redeliveryDelay, claimTimeout time.Duration) *PgQueue {
	return &PgQueue{pool: pool, redeliveryDelay: redeliveryDelay, claimTimeout: claimTimeout}
}

func (q *PgQueue) Enqueue(ctx context.Context, itemID int64) (*domain.Job, error) {
	job := &domain.Job{
		ID:        uuid.New().String(),
		ItemID:    itemID,
		CreatedAt: time.Now().UTC(),
	}

	_, err := q.pool.Exec(ctx, `
		INSERT INTO notify_jobs (id, item_id, status, attempts, available_at, created_at, updated_at)
		VALUES ($1, $2, $3, 0, now(), $4, $4)`,
		job.ID, job.ItemID, domain.JobQueued, job.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}
	return job, nil
}

func (q *PgQueue) Claim(ctx context.Context) (*domain.Job, error) {
	row := q.pool.QueryRow(ctx, `
		UPDATE notify_jobs
		SET status = $1, updated_at = now()
		WHERE id = (
			SELECT id FROM notify_jobs
			WHERE (status = $2 AND available_at <= now())
			   OR (status = $1 AND updated_at < now() - make_interval(secs => $3))
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, item_id, attempts, created_at`,
		domain.JobProcessing, domain.JobQueued, q.claimTimeout.Seconds(),
	)

	var job domain.Job
	err := row.Scan(&job.ID, &job.ItemID, &job.Attempts, &job.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNoJob
	}
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}
	return &job, nil
}

// AckSuccess deletes the row: completed jobs carry no further value and
// keeping the table small keeps Claim fast.
func (q *PgQueue) AckSuccess(ctx context.Context, job *domain.Job) error {
	_, err := q.pool.Exec(ctx, `DELETE FROM notify_jobs WHERE id = $1`, job.ID)
	if err != nil {
		return fmt.Errorf("ack job success: %w", err)
	}
	return nil
}

func (q *PgQueue) RequestRedelivery(ctx context.Context, job *domain.Job) error {
	_, err := q.pool.Exec(ctx, `
		UPDATE notify_jobs
		SET status = $1, attempts = attempts + 1,
		    available_at = now() + make_interval(secs => $2), updated_at = now()
		WHERE id = $3`,
		domain.JobQueued, q.redeliveryDelay.Seconds(), job.ID,
	)
	if err != nil {
		return fmt.Errorf("request redelivery: %w", err)
	}
	return nil
}

// AckDrop keeps the row with status=dropped for operator inspection.
func (q *PgQueue) AckDrop(ctx context.Context, job *domain.Job) error {
	_, err := q.pool.Exec(ctx, `
		UPDATE notify_jobs SET status = $1, updated_at = now() WHERE id = $2`,
		domain.JobDropped, job.ID,
	)
	if err != nil {
		return fmt.Errorf("ack job drop: %w", err)
	}
	return nil
}

func (q *PgQueue) Depth(ctx context.Context) (int, error) {
	var depth int
	err := q.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notify_jobs WHERE status = $1`, domain.JobQueued,
	).Scan(&depth)
	if err != nil {
		return 0, fmt.Errorf("queue depth: %w", err)
	}
	return depth, nil
}

var _ Queue = (*PgQueue)(nil)
