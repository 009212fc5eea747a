package cache

import (
	"context"
	"time"
)

// Store is the shared cache abstraction behind session lookups and rate
// limiting. The database-backed store is always available; redis sits in
// front of it when configured.
type Store interface {
	// IncrementWithTTL bumps a counter, starting the window on first use,
	// and reports the new count plus the time left in the window.
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get reports found=false for missing or expired keys.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
}
