package stats

import (
	"sync"
	"time"
)

// entry wraps a cached value with its expiry. Cache values are
// core.ColumnStats/core.TableHealth values stored by value, so a reader
// that copies an entry out under the mutex observes a consistent snapshot.
type entry[T any] struct {
	value   T
	expires time.Time
}

// ttlCache is a process-wide, key-by-string cache with a fixed TTL. Writes
// are serialized by a single mutex; reads take the same mutex only long
// enough to copy the entry out, matching spec §5's "last writer wins;
// readers observe a consistent snapshot" race semantics.
type ttlCache[T any] struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]entry[T]
}

func newTTLCache[T any](ttl time.Duration) *ttlCache[T] {
	return &ttlCache[T]{ttl: ttl, m: map[string]entry[T]{}}
}

func (c *ttlCache[T]) get(key string) (T, bool) {
	c.mu.Lock()
	e, ok := c.m[key]
	c.mu.Unlock()
	var zero T
	if !ok || time.Now().After(e.expires) {
		return zero, false
	}
	return e.value, true
}

func (c *ttlCache[T]) set(key string, value T) {
	c.mu.Lock()
	c.m[key] = entry[T]{value: value, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}
