package domain

import "time"

// Outcome is the terminal classification of one processed job.
// RetryRequested hands the job back to the queue's redelivery mechanism;
// Succeeded and Dropped are terminal.
type Outcome string

const (
	OutcomeSucceeded      Outcome = "succeeded"
	OutcomeRetryRequested Outcome = "retry_requested"
	OutcomeDropped        Outcome = "dropped"
)

// JobStatus tracks a queued job's lifecycle in the durable work queue.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobDropped    JobStatus = "dropped"
)

// Job is one debounced unit of work: "re-evaluate notifications for this
// content item". At most one job per content-item ID may be queued at any
// time; the pending-work lock enforces this on the enqueue path.
type Job struct {
	ID        string
	ItemID    int64
	Attempts  int
	CreatedAt time.Time
}
