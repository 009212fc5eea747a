package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/apartguide/apartguide/internal/cache"
)

// RateStore counts requests per key within a rolling window.
type RateStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, ttl time.Duration, err error)
}

// memoryRateStore keeps counters in-process. Suitable for single-instance
// deployments and tests; multi-instance setups share counters through the
// cache-backed store instead.
type memoryRateStore struct {
	mu    sync.Mutex
	data  map[string]*memoryCounter
	clock func() time.Time
}

type memoryCounter struct {
	count     int
	windowEnd time.Time
}

// NewMemoryRateStore builds an in-process rate store with a background
// sweep of expired windows.
func NewMemoryRateStore() RateStore {
	store := &memoryRateStore{
		data:  make(map[string]*memoryCounter),
		clock: time.Now,
	}
	go store.sweep(time.NewTicker(time.Minute))
	return store
}

func (s *memoryRateStore) sweep(tick *time.Ticker) {
	for range tick.C {
		now := s.clock()
		s.mu.Lock()
		for key, counter := range s.data {
			if now.After(counter.windowEnd) {
				delete(s.data, key)
			}
		}
		s.mu.Unlock()
	}
}

func (s *memoryRateStore) Increment(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}

	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	counter, ok := s.data[key]
	if !ok || now.After(counter.windowEnd) {
		counter = &memoryCounter{windowEnd: now.Add(window)}
		s.data[key] = counter
	}
	counter.count++

	return counter.count, time.Until(counter.windowEnd), nil
}

// cacheRateStore delegates counting to a cache.Store, so redis and the
// database fallback share one implementation.
type cacheRateStore struct {
	store cache.Store
}

// NewRedisRateStore adapts a redis-backed cache store.
func NewRedisRateStore(store cache.Store) RateStore {
	return newCacheRateStore(store)
}

// NewDatabaseRateStore adapts the SQL cache store.
func NewDatabaseRateStore(store cache.Store) RateStore {
	return newCacheRateStore(store)
}

func newCacheRateStore(store cache.Store) RateStore {
	if store == nil {
		return nil
	}
	return &cacheRateStore{store: store}
}

func (s *cacheRateStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}
	count, ttl, err := s.store.IncrementWithTTL(ctx, key, window)
	return int(count), ttl, err
}
