package pending

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryLock_AcquireOnce(t *testing.T) {
	l := NewMemoryLock()
	ctx := context.Background()

	ok, err := l.TryAcquire(ctx, 42)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}

	ok, err = l.TryAcquire(ctx, 42)
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if ok {
		t.Fatal("second acquire should fail while entry is held")
	}

	// Different item is independent.
	ok, _ = l.TryAcquire(ctx, 43)
	if !ok {
		t.Fatal("acquire for a different item should succeed")
	}
}

func TestMemoryLock_ReleaseIdempotent(t *testing.T) {
	l := NewMemoryLock()
	ctx := context.Background()

	_, _ = l.TryAcquire(ctx, 7)
	if err := l.Release(ctx, 7); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := l.Release(ctx, 7); err != nil {
		t.Fatalf("second release should be a no-op, got %v", err)
	}

	ok, _ := l.TryAcquire(ctx, 7)
	if !ok {
		t.Fatal("acquire after release should succeed")
	}
}

func TestMemoryLock_ConcurrentAcquire(t *testing.T) {
	l := NewMemoryLock()
	ctx := context.Background()

	const goroutines = 50
	var wg sync.WaitGroup
	acquired := make(chan struct{}, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.TryAcquire(ctx, 99); ok {
				acquired <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(acquired)

	if n := len(acquired); n != 1 {
		t.Fatalf("expected exactly one winner, got %d", n)
	}
}
