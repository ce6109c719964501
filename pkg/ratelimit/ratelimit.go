// Package ratelimit implements sliding-window request counting per key.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"exam-registration/pkg/clock"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Limiter admits at most limit hits per key inside any window-long interval.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Memory is a per-process limiter. Counts are not shared between processes,
// so each replica enforces its own budget.
type Memory struct {
	mu      sync.Mutex
	buckets map[string][]time.Time
	clock   clock.Clocker
	hits    int
}

func NewMemory(clk clock.Clocker) *Memory {
	return &Memory{
		buckets: make(map[string][]time.Time),
		clock:   clk,
	}
}

// sweep interval, in admitted hits, for dropping idle keys
const sweepEvery = 1024

func (m *Memory) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := prune(m.buckets[key], now, window)
	if len(kept) >= limit {
		m.buckets[key] = kept
		return false, nil
	}
	m.buckets[key] = append(kept, now)

	m.hits++
	if m.hits%sweepEvery == 0 {
		for k, ts := range m.buckets {
			if len(prune(ts, now, window)) == 0 {
				delete(m.buckets, k)
			}
		}
	}

	return true, nil
}

// prune keeps timestamps younger than window. ts is in arrival order.
func prune(ts []time.Time, now time.Time, window time.Duration) []time.Time {
	i := 0
	for i < len(ts) && now.Sub(ts[i]) >= window {
		i++
	}
	return ts[i:]
}

// slidingWindow trims, counts and records a hit atomically.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
if redis.call('ZCARD', key) >= limit then
	return 0
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return 1
`)

// Redis shares windows across processes through sorted sets.
type Redis struct {
	client redis.Scripter
	prefix string
	clock  clock.Clocker
}

func NewRedis(client redis.Scripter, prefix string, clk clock.Clocker) *Redis {
	return &Redis{client: client, prefix: prefix, clock: clk}
}

func (r *Redis) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := r.clock.Now().UnixMilli()

	res, err := slidingWindow.Run(ctx, r.client,
		[]string{r.prefix + key},
		now, window.Milliseconds(), limit, uuid.NewString(),
	).Int()
	if err != nil {
		return false, err
	}

	return res == 1, nil
}
