package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterStore_EvictsIdleClients(t *testing.T) {
	store := newRateLimiterStore(60)
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	store.lastSweep = now

	first := store.getLimiter("10.0.0.1")
	store.getLimiter("10.0.0.2")
	assert.Same(t, first, store.getLimiter("10.0.0.1"), "a live client keeps its bucket")

	now = now.Add(5 * time.Minute)
	store.getLimiter("10.0.0.2")

	now = now.Add(limiterIdleTTL)
	store.getLimiter("10.0.0.3")

	assert.Len(t, store.limiters, 1)
	assert.Contains(t, store.limiters, "10.0.0.3")
	assert.NotSame(t, first, store.getLimiter("10.0.0.1"))
}
