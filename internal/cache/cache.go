// Package cache implements the read-through query cache used by the
// relational store. Entries live in a fastcache byte store; a side table
// records when each key was inserted so reads can enforce a TTL.
package cache

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/VictoriaMetrics/fastcache"
)

// DefaultTTL is used when New is given a non-positive ttl.
const DefaultTTL = 30 * time.Second

// defaultMaxBytes bounds the fastcache arena. Mutations clear the whole
// cache, so in practice it never fills.
const defaultMaxBytes = 32 * 1024 * 1024

// Cache maps a query fingerprint to an encoded result with an insertion
// time. It is safe for concurrent use; concurrent Clear calls are
// last-writer-wins.
type Cache struct {
	mu       sync.Mutex
	store    *fastcache.Cache
	inserted map[string]time.Time
	gen      uint64
	ttl      time.Duration
	now      func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now. Tests use it to step across the TTL boundary.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithMaxBytes sets the size of the underlying fastcache arena.
func WithMaxBytes(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.store = fastcache.New(n)
		}
	}
}

// New creates an empty cache whose entries expire after ttl.
func New(ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		inserted: make(map[string]time.Time),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = fastcache.New(defaultMaxBytes)
	}
	return c
}

// Key derives the cache key for a query and its bound parameters.
func Key(query string, params ...any) string {
	if params == nil {
		params = []any{}
	}
	b, err := json.Marshal(params)
	if err != nil {
		return query + ":" + fmt.Sprint(params...)
	}
	return query + ":" + string(b)
}

// TTL returns the configured entry lifetime.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get decodes the cached value for key into dst. It reports false on a miss,
// on an expired entry (which it evicts), or when the stored bytes cannot be
// decoded into dst.
func (c *Cache) Get(key string, dst any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	at, ok := c.inserted[key]
	if !ok {
		return false
	}
	if c.now().Sub(at) >= c.ttl {
		c.evictLocked(key)
		return false
	}

	raw := c.store.GetBig(nil, []byte(key))
	if len(raw) == 0 {
		delete(c.inserted, key)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.evictLocked(key)
		return false
	}
	return true
}

// Set stores value under key, stamped with the current time. A value that
// cannot be encoded is not cached.
func (c *Cache) Set(key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.SetBig([]byte(key), raw)
	c.inserted[key] = c.now()
}

// Generation returns a counter that Clear advances. Read it before fetching
// a value to be cached, then pass it to SetIfCurrent.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// SetIfCurrent stores value like Set unless the cache was cleared after gen
// was read. It reports whether the value was stored. A result read before a
// concurrent mutation finished is then never cached.
func (c *Cache) SetIfCurrent(gen uint64, key string, value any) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		return false
	}
	c.store.SetBig([]byte(key), raw)
	c.inserted[key] = c.now()
	return true
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.store.Reset()
	c.inserted = make(map[string]time.Time)
}

// Len returns the number of live or not-yet-evicted entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inserted)
}

func (c *Cache) evictLocked(key string) {
	c.store.Del([]byte(key))
	delete(c.inserted, key)
}
