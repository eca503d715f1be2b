package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(t *testing.T, tx, cat int) (*rateLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)}
	rl := newRateLimiter(tx, cat)
	rl.now = clock.now
	t.Cleanup(rl.stop)
	return rl, clock
}

func TestRateLimiterRefill(t *testing.T) {
	rl, clock := newTestLimiter(t, 2, 0)
	metrics := &securityMetrics{}

	for i := 0; i < 2; i++ {
		ok, _ := rl.allow(scopeTransactions, "10.0.0.1", metrics)
		require.True(t, ok)
	}

	// half a token back after 15s at two per minute
	clock.advance(15 * time.Second)
	ok, wait := rl.allow(scopeTransactions, "10.0.0.1", metrics)
	assert.False(t, ok)
	assert.InDelta(t, float64(15*time.Second), float64(wait), float64(time.Millisecond))
	assert.Equal(t, int64(1), metrics.rateLimitHits)

	// a rejected write does not spend the refill
	clock.advance(16 * time.Second)
	ok, _ = rl.allow(scopeTransactions, "10.0.0.1", metrics)
	assert.True(t, ok)
	ok, _ = rl.allow(scopeTransactions, "10.0.0.1", metrics)
	assert.False(t, ok)
	assert.Equal(t, int64(2), metrics.rateLimitHits)

	clock.advance(time.Minute)
	for i := 0; i < 2; i++ {
		ok, _ = rl.allow(scopeTransactions, "10.0.0.1", metrics)
		assert.True(t, ok, "full budget after a quiet minute")
	}
}

func TestRateLimiterScopesAndClients(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, 3)

	ok, _ := rl.allow(scopeTransactions, "10.0.0.1", nil)
	require.True(t, ok)
	ok, _ = rl.allow(scopeTransactions, "10.0.0.1", nil)
	assert.False(t, ok, "transaction budget spent")

	for i := 0; i < 3; i++ {
		ok, _ = rl.allow(scopeCategories, "10.0.0.1", nil)
		assert.True(t, ok, "category write %d", i)
	}
	ok, _ = rl.allow(scopeCategories, "10.0.0.1", nil)
	assert.False(t, ok)

	ok, _ = rl.allow(scopeTransactions, "10.0.0.2", nil)
	assert.True(t, ok, "other clients keep their budget")

	assert.Equal(t, 3, rl.activeClients())
}

func TestRateLimiterDefaults(t *testing.T) {
	rl, _ := newTestLimiter(t, 0, 0)
	assert.Equal(t, defaultRequestsPerMinute, rl.limits[scopeTransactions])
	assert.Equal(t, defaultRequestsPerMinute, rl.limits[scopeCategories])

	rl, _ = newTestLimiter(t, 30, 0)
	assert.Equal(t, 30, rl.limits[scopeCategories], "category budget follows transactions")
}

func TestRateLimiterSweep(t *testing.T) {
	rl, clock := newTestLimiter(t, 5, 5)

	rl.allow(scopeTransactions, "10.0.0.1", nil)
	clock.advance(6 * time.Minute)
	rl.allow(scopeCategories, "10.0.0.2", nil)
	clock.advance(5 * time.Minute)

	rl.sweep()
	assert.Equal(t, 1, rl.activeClients())
}

func TestScopeOf(t *testing.T) {
	tests := []struct {
		path string
		want writeScope
	}{
		{"/transactions", scopeTransactions},
		{"/categories", scopeCategories},
		{"/categories/Food", scopeCategories},
		{"/anything", scopeTransactions},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, scopeOf(tt.path))
		})
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, "1", retryAfterSeconds(0))
	assert.Equal(t, "1", retryAfterSeconds(200*time.Millisecond))
	assert.Equal(t, "45", retryAfterSeconds(44*time.Second+time.Millisecond))
	assert.Equal(t, "60", retryAfterSeconds(time.Minute))
}
