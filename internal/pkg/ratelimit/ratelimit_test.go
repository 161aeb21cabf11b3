package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestLocalQuota_BlocksAfterLimit(t *testing.T) {
	q := NewLocalQuota()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		ok, err := q.Allow(ctx, "tools:create:1", 10, time.Hour)
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
	}

	ok, err := q.Allow(ctx, "tools:create:1", 10, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = q.Allow(ctx, "tools:create:2", 10, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "other users keep their own budget")
}

func TestKeyedLimiter_PerKeyBuckets(t *testing.T) {
	l := NewKeyedLimiter(rate.Limit(1), 2, time.Minute)

	a := l.Get("10.0.0.1")
	assert.True(t, a.Allow())
	assert.True(t, a.Allow())
	assert.False(t, a.Allow())

	assert.True(t, l.Get("10.0.0.2").Allow())
	assert.Same(t, a, l.Get("10.0.0.1"))
	assert.Equal(t, 2, l.Len())
}

func TestKeyedLimiter_SweepDropsIdle(t *testing.T) {
	l := NewKeyedLimiter(rate.Limit(1), 1, 0)
	l.Get("10.0.0.1")

	time.Sleep(time.Millisecond)
	l.Sweep()
	assert.Equal(t, 0, l.Len())
}
