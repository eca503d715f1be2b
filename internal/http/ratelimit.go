package http

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultRequestsPerMinute = 60
	staleAfter               = 10 * time.Minute
)

// writeScope groups routes that share one write budget.
type writeScope string

const (
	scopeTransactions writeScope = "transactions"
	scopeCategories   writeScope = "categories"
)

// scopeOf maps a request path to its write budget.
func scopeOf(path string) writeScope {
	if strings.HasPrefix(path, "/categories") {
		return scopeCategories
	}
	return scopeTransactions
}

type limitKey struct {
	scope writeScope
	ip    string
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per client and scope. A bucket holds a
// minute's budget and refills at budget per minute.
type rateLimiter struct {
	mu      sync.Mutex
	buckets map[limitKey]*bucket
	limits  map[writeScope]int
	now     func() time.Time

	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

// newRateLimiter builds a limiter; non-positive limits select the default,
// and a zero category limit follows the transaction limit.
func newRateLimiter(transactionsPerMinute, categoriesPerMinute int) *rateLimiter {
	if transactionsPerMinute <= 0 {
		transactionsPerMinute = defaultRequestsPerMinute
	}
	if categoriesPerMinute <= 0 {
		categoriesPerMinute = transactionsPerMinute
	}
	rl := &rateLimiter{
		buckets: make(map[limitKey]*bucket),
		limits: map[writeScope]int{
			scopeTransactions: transactionsPerMinute,
			scopeCategories:   categoriesPerMinute,
		},
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	go rl.sweepLoop(5 * time.Minute)
	return rl
}

func (rl *rateLimiter) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stopCleanup:
			return
		}
	}
}

// sweep drops buckets idle past staleAfter. Any bucket idle that long has
// refilled completely, so dropping it loses nothing.
func (rl *rateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-staleAfter)
	for key, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// activeClients returns the number of tracked client and scope pairs.
func (rl *rateLimiter) activeClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// allow spends one token for clientIP in scope. When none is left it returns
// false with the wait until the next token.
func (rl *rateLimiter) allow(scope writeScope, clientIP string, metrics *securityMetrics) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	key := limitKey{scope: scope, ip: clientIP}
	b, ok := rl.buckets[key]
	if !ok {
		perMinute := rl.limits[scope]
		b = &bucket{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)}
		rl.buckets[key] = b
	}
	b.lastSeen = now

	r := b.limiter.ReserveN(now, 1)
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false, wait
	}
	return true, 0
}
