package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Quota enforces "at most limit actions per window" for an arbitrary key.
// The Redis client and LocalQuota both satisfy it.
type Quota interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter hands out one token bucket per key and forgets idle keys
type KeyedLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	r       rate.Limit
	burst   int
	idle    time.Duration
}

// NewKeyedLimiter creates a limiter refilling r tokens per second up to burst.
// Keys idle for longer than idle are dropped by Sweep.
func NewKeyedLimiter(r rate.Limit, burst int, idle time.Duration) *KeyedLimiter {
	return &KeyedLimiter{
		entries: make(map[string]*limiterEntry),
		r:       r,
		burst:   burst,
		idle:    idle,
	}
}

// Get returns the limiter for key, creating it on first use
func (l *KeyedLimiter) Get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.r, l.burst)}
		l.entries[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

// Sweep removes idle keys
func (l *KeyedLimiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, entry := range l.entries {
		if time.Since(entry.lastSeen) > l.idle {
			delete(l.entries, key)
		}
	}
}

// Len is the number of tracked keys
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// RunCleanup sweeps every interval until ctx is done
func (l *KeyedLimiter) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// LocalQuota is the in-process Quota used when Redis is not configured.
// Each (key, limit, window) gets a bucket of size limit refilled evenly
// over window, so a full burst is followed by one action per window/limit.
type LocalQuota struct {
	mu      sync.Mutex
	buckets map[quotaKey]*rate.Limiter
}

type quotaKey struct {
	key    string
	limit  int
	window time.Duration
}

func NewLocalQuota() *LocalQuota {
	return &LocalQuota{buckets: make(map[quotaKey]*rate.Limiter)}
}

func (q *LocalQuota) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return false, nil
	}

	k := quotaKey{key: key, limit: limit, window: window}

	q.mu.Lock()
	limiter, ok := q.buckets[k]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)
		q.buckets[k] = limiter
	}
	q.mu.Unlock()

	return limiter.Allow(), nil
}
