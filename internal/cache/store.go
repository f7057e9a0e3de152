package cache

import (
	"context"
	"time"
)

// Store is the key/value surface shared by logout markers and rate limit
// counters. Implementations must be safe for concurrent use across processes:
// IncrementWithTTL is atomic and the window starts on the first increment.
type Store interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get reports found=false for missing or expired keys without an error.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Delete(ctx context.Context, keys ...string) error
}
