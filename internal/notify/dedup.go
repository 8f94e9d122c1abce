package notify

// DedupTracker is the run-scoped record of recipients already notified.
// One tracker exists per dispatch run and is discarded with the run; it is
// what suppresses a second email to a recipient who qualifies through two
// channels. Not safe for concurrent use — batches are processed
// sequentially within a run.
type DedupTracker struct {
	seen map[int64]struct{}
}

func NewDedupTracker() *DedupTracker {
	return &DedupTracker{seen: make(map[int64]struct{})}
}

// Seen reports whether the recipient was already notified in this run.
func (d *DedupTracker) Seen(accountID int64) bool {
	_, ok := d.seen[accountID]
	return ok
}

// Mark records a successful notification for the recipient.
func (d *DedupTracker) Mark(accountID int64) {
	d.seen[accountID] = struct{}{}
}
