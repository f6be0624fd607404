// internal/pkg/memocache/cache.go
package memocache

import (
	"context"
	"time"

	"sync"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is the freshness window for admin list views.
const DefaultTTL = 5 * time.Minute

// Cache is a time-boxed memo for one list query. Each monitored query
// (blogs, jobs) owns its own instance; there is no global registry, so
// tests reset state by constructing a fresh cache.
type Cache[T any] struct {
	mu        sync.Mutex
	rows      []T
	fetchedAt time.Time
	populated bool

	ttl   time.Duration
	group singleflight.Group
	now   func() time.Time
}

func New[T any](ttl time.Duration) *Cache[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[T]{ttl: ttl, now: time.Now}
}

// SetClock overrides the time source. Test hook.
func (c *Cache[T]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Read returns the cached rows and true while the entry is fresh.
// Expired or absent entries are a cache miss.
func (c *Cache[T]) Read() ([]T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readLocked()
}

func (c *Cache[T]) readLocked() ([]T, bool) {
	if !c.populated {
		return nil, false
	}
	if c.now().Sub(c.fetchedAt) >= c.ttl {
		return nil, false
	}
	rows := make([]T, len(c.rows))
	copy(rows, c.rows)
	return rows, true
}

// Populate stores a freshly fetched row set and stamps fetchedAt.
func (c *Cache[T]) Populate(rows []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = append([]T(nil), rows...)
	c.fetchedAt = c.now()
	c.populated = true
}

// InvalidateOne removes matching rows without touching fetchedAt; the
// shortened list stays valid until natural expiry. Used after deletes.
func (c *Cache[T]) InvalidateOne(pred func(T) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.populated {
		return
	}
	kept := c.rows[:0]
	for _, row := range c.rows {
		if !pred(row) {
			kept = append(kept, row)
		}
	}
	c.rows = kept
}

// InvalidateAll forces the next Read to miss. Used on fetch errors and
// after mutations that change row contents.
func (c *Cache[T]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = nil
	c.populated = false
}

// GetOrFetch returns fresh cached rows, or runs fetch and populates the
// cache. Concurrent callers during an outstanding fetch share one call.
// A failed fetch invalidates the entry so the next caller retries.
func (c *Cache[T]) GetOrFetch(ctx context.Context, fetch func(ctx context.Context) ([]T, error)) ([]T, error) {
	if rows, ok := c.Read(); ok {
		return rows, nil
	}

	result, err, _ := c.group.Do("fetch", func() (interface{}, error) {
		// A caller that queued behind the winning fetch sees its result
		// through the shared return, so re-checking the cache here is
		// only needed for calls that started after completion.
		if rows, ok := c.Read(); ok {
			return rows, nil
		}

		rows, err := fetch(ctx)
		if err != nil {
			c.InvalidateAll()
			return nil, err
		}
		c.Populate(rows)
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]T), nil
}
