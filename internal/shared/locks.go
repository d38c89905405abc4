package shared

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// LowStockSweepLockKey is the redis key guarding the periodic low-stock sweep.
const LowStockSweepLockKey = "stockroom:lowstock:sweep:lock"

// SweepLock prevents overlapping sweep runs across workers.
type SweepLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewSweepLock constructs a SweepLock with the given ttl.
func NewSweepLock(client *redis.Client, key string, ttl time.Duration) *SweepLock {
	return &SweepLock{client: client, key: key, ttl: ttl}
}

// Acquire attempts to take the lock. It returns false when another holder owns it.
func (l *SweepLock) Acquire(ctx context.Context) (bool, error) {
	if l == nil || l.client == nil {
		return true, nil
	}
	return l.client.SetNX(ctx, l.key, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
}

// Release frees the lock.
func (l *SweepLock) Release(ctx context.Context) error {
	if l == nil || l.client == nil {
		return nil
	}
	return l.client.Del(ctx, l.key).Err()
}
