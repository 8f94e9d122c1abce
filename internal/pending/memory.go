package pending

import (
	"context"
	"sync"
)

// MemoryLock is an in-process Lock for tests and single-process setups.
// It loses the cross-process guarantee that RedisLock provides.
type MemoryLock struct {
	mu      sync.Mutex
	entries map[int64]bool
}

func NewMemoryLock() *MemoryLock {
	return &MemoryLock{entries: make(map[int64]bool)}
}

func (l *MemoryLock) TryAcquire(_ context.Context, itemID int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.entries[itemID] {
		return false, nil
	}
	l.entries[itemID] = true
	return true, nil
}

func (l *MemoryLock) Release(_ context.Context, itemID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, itemID)
	return nil
}

// Held reports whether an entry exists. Test helper.
func (l *MemoryLock) Held(itemID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[itemID]
}

var _ Lock = (*MemoryLock)(nil)
