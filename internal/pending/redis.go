package pending

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Entries are keyed "flagnotify.queued.<itemID>".
const keyPrefix = "flagnotify.queued."

// RedisLock implements Lock on Redis using SETNX for the atomic
// check-and-set. Entries carry no expiry: the debounce guarantee must
// survive process restarts for as long as the queue itself does, so the
// lifetime is bound to explicit Release calls, never to a TTL.
type RedisLock struct {
	client redis.UniversalClient
}

func NewRedisLock(client redis.UniversalClient) *RedisLock {
	return &RedisLock{client: client}
}

// NewRedisClient builds the client used by main. Kept here so the lock
// package owns its backend configuration.
func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}

func (l *RedisLock) TryAcquire(ctx context.Context, itemID int64) (bool, error) {
	ok, err := l.client.SetNX(ctx, key(itemID), "1", 0).Result()
	if err != nil {
		return false, fmt.Errorf("acquire pending entry: %w", err)
	}
	return ok, nil
}

func (l *RedisLock) Release(ctx context.Context, itemID int64) error {
	if err := l.client.Del(ctx, key(itemID)).Err(); err != nil {
		return fmt.Errorf("release pending entry: %w", err)
	}
	return nil
}

func key(itemID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, itemID)
}

var _ Lock = (*RedisLock)(nil)
