package cache

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"pocketpal/internal/core"
	"pocketpal/internal/notify"
	"pocketpal/internal/ports"
)

// RangeCache memoizes GetTransactionsInRange for report reads. Any ledger
// change signal empties it, so a read issued after a write returns sees that
// write. GetAllTransactions is never cached.
type RangeCache struct {
	next  ports.TransactionReader
	items *LRUCache[[]core.Transaction]

	mu         sync.Mutex // orders Invalidate against stores of in-flight reads
	generation uint64

	hits   atomic.Int64
	misses atomic.Int64
}

var _ ports.TransactionReader = (*RangeCache)(nil)

func NewRangeCache(next ports.TransactionReader, size int, ttl time.Duration) *RangeCache {
	return &RangeCache{
		next:  next,
		items: NewLRUCache[[]core.Transaction](size, ttl),
	}
}

func rangeKey(start, end time.Time) string {
	return fmt.Sprintf("%d:%d", start.UnixMilli(), end.UnixMilli())
}

func (c *RangeCache) GetTransactionsInRange(ctx context.Context, start, end time.Time) ([]core.Transaction, error) {
	key := rangeKey(start, end)
	if txs, ok := c.items.Get(key); ok {
		c.hits.Add(1)
		return slices.Clone(txs), nil
	}
	c.misses.Add(1)

	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	txs, err := c.next.GetTransactionsInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.generation == gen {
		c.items.Set(key, slices.Clone(txs))
	}
	c.mu.Unlock()
	return txs, nil
}

func (c *RangeCache) GetAllTransactions(ctx context.Context) ([]core.Transaction, error) {
	return c.next.GetAllTransactions(ctx)
}

// Invalidate drops every cached range. It has the notify.Handler signature.
func (c *RangeCache) Invalidate(notify.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.items.Clear()
}

func (c *RangeCache) CleanExpired() int { return c.items.CleanExpired() }

// Stats returns the hit and miss counts.
func (c *RangeCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
