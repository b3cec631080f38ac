// Package cache is the client-side query cache.
//
// Results are keyed by the full parameter tuple of the query that produced
// them. Concurrent readers of the same key share one fetch, and any write
// path can broadcast-invalidate a whole key prefix:
//
//	page, err := cache.Remember(ctx, c, cache.Key("orders", vendorID, page, limit, status, search),
//	    func(ctx context.Context) (OrderPage, error) { return repo.ListByVendor(ctx, ...) })
//
//	c.Invalidate(cache.Prefix("orders", vendorID))
package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/shashiranjanraj/vendordesk/pkg/metrics"
)

// Cache holds query results in memory.
type Cache struct {
	name string
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]entry
	// epoch advances on every invalidation; a fetch that started in an
	// older epoch may carry pre-mutation data and is not stored.
	epoch uint64

	group singleflight.Group
}

type entry struct {
	value   interface{}
	expires time.Time // zero = never
}

// Option configures a Cache.
type Option func(*Cache)

// WithName labels the cache in metrics.
func WithName(name string) Option { return func(c *Cache) { c.name = name } }

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(c *Cache) { c.now = now } }

// New returns a cache whose entries live for ttl. ttl <= 0 keeps entries
// until they are invalidated.
func New(ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		name:    "query",
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]entry{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Key joins parts into a canonical key: Key("orders", 3, 1) == "orders:3:1".
func Key(parts ...interface{}) string {
	ss := make([]string, len(parts))
	for i, p := range parts {
		switch v := p.(type) {
		case string:
			ss[i] = v
		case int:
			ss[i] = strconv.Itoa(v)
		case int64:
			ss[i] = strconv.FormatInt(v, 10)
		case fmt.Stringer:
			ss[i] = v.String()
		default:
			ss[i] = fmt.Sprint(v)
		}
	}
	return strings.Join(ss, ":")
}

// Prefix is Key plus a trailing separator, so Prefix("orders", 3) does not
// match keys of vendor 31.
func Prefix(parts ...interface{}) string { return Key(parts...) + ":" }

// Get returns the cached value for key if present, fresh and of type T.
func Get[T any](c *Cache, key string) (T, bool) {
	var zero T
	v, ok := c.lookup(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Put stores v under key.
func (c *Cache) Put(key string, v interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store(key, v)
}

// Remember returns the cached value for key, or calls fn and caches its
// result. Concurrent callers of the same key share a single fn call.
// Errors are returned to every waiter and never cached.
//
// If ctx is cancelled the caller stops waiting, but fn keeps running with
// a context that is not cancelled, and its result is still stored for the
// next reader.
func Remember[T any](ctx context.Context, c *Cache, key string, fn func(context.Context) (T, error)) (T, error) {
	if v, ok := Get[T](c, key); ok {
		metrics.CacheHits.WithLabelValues(c.name).Inc()
		return v, nil
	}
	metrics.CacheMisses.WithLabelValues(c.name).Inc()

	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(flightKey(key, epoch), func() (interface{}, error) {
		v, err := fn(detached)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.epoch == epoch {
			c.store(key, v)
		}
		c.mu.Unlock()
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("cache: %s holds %T", key, res.Val)
		}
		return v, nil
	}
}

// Forget drops key.
func (c *Cache) Forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.epoch++
}

// Invalidate drops every key that starts with prefix and returns how many
// entries were removed.
func (c *Cache) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			n++
		}
	}
	c.epoch++
	return n
}

// Flush empties the cache.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]entry{}
	c.epoch++
}

// Len reports the number of stored entries, including expired ones not yet
// evicted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) lookup(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// store must be called with mu held.
func (c *Cache) store(key string, v interface{}) {
	e := entry{value: v}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	c.entries[key] = e
}

func flightKey(key string, epoch uint64) string {
	return key + "#" + strconv.FormatUint(epoch, 10)
}
