package pipeline

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonathan/job-application-assistant/internal/observability"
)

// Default cache bounds
const (
	DefaultCacheTTL        = 10 * time.Minute
	DefaultCacheMaxEntries = 128
)

type cacheEntry struct {
	result  *Result
	expires time.Time
}

// Cache holds recent run results keyed by input fingerprint. Concurrent requests for the same
// key share one computation.
type Cache struct {
	group      singleflight.Group
	mu         sync.Mutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	metrics    *observability.Metrics
}

// NewCache creates a cache. Non-positive bounds use the defaults. metrics may be nil.
func NewCache(ttl time.Duration, maxEntries int, metrics *observability.Metrics) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultCacheMaxEntries
	}
	return &Cache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		metrics:    metrics,
	}
}

// Do returns the cached result for key or computes it with fn. At most one fn per key runs at
// a time; callers arriving meanwhile wait for and share its result. Errors are not cached.
// The boolean reports whether the result came from the cache or another caller's computation.
func (c *Cache) Do(ctx context.Context, key string, fn func(context.Context) (*Result, error)) (*Result, bool, error) {
	if res, ok := c.get(key); ok {
		c.metrics.RecordCache("hit")
		return res, true, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		if res, ok := c.get(key); ok {
			return res, nil
		}
		// The computation outlives a canceled waiter so other waiters still get the result.
		res, err := fn(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.put(key, res)
		return res, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, false, r.Err
		}
		if r.Shared {
			c.metrics.RecordCache("shared")
		} else {
			c.metrics.RecordCache("miss")
		}
		return r.Val.(*Result), r.Shared, nil
	}
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictExpired()
	return len(c.entries)
}

func (c *Cache) get(key string) (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.result, true
}

func (c *Cache) put(key string, res *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictExpired()
	if len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.entries[key] = cacheEntry{result: res, expires: c.now().Add(c.ttl)}
}

func (c *Cache) evictExpired() {
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
}

func (c *Cache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for k, e := range c.entries {
		if oldestKey == "" || e.expires.Before(oldest) {
			oldestKey, oldest = k, e.expires
		}
	}
	delete(c.entries, oldestKey)
}

// RunCached runs through the cache. A cached result keeps the run ID of the run that computed it.
func (e *Engine) RunCached(ctx context.Context, cache *Cache, rc *RunContext, opts RunOptions) (*Result, bool, error) {
	if cache == nil {
		res, err := e.Run(ctx, rc, opts)
		return res, false, err
	}
	return cache.Do(ctx, e.CacheKey(opts), func(ctx context.Context) (*Result, error) {
		return e.Run(ctx, rc, opts)
	})
}
