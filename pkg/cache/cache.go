// Package cache implements the bounded TTL+LRU store keyed by request
// signature (operation, domain or "TOP", normalized filters).
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Key builds a stable cache key from an operation name, a domain scope
// ("TOP" for domain-agnostic operations) and a set of normalized filter
// values. Filter order does not affect the resulting key.
func Key(operation, scope string, filters map[string]string) string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(operation)
	b.WriteByte('|')
	b.WriteString(scope)
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s=%s", k, filters[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

type entry struct {
	value      interface{}
	insertedAt time.Time
}

// Cache is an insertion-ordered map from key to (value, inserted_at).
// Concurrent access is serialized by a single mutex; eviction is O(1) via
// the backing ordered map's oldest-pair lookup.
type Cache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	data     *orderedmap.OrderedMap[string, entry]
	now      func() time.Time
}

// New builds a Cache with the given TTL and capacity. Overflowing capacity
// evicts the least-recently-used entry.
func New(ttl time.Duration, capacity int) *Cache {
	return &Cache{
		ttl:      ttl,
		capacity: capacity,
		data:     orderedmap.New[string, entry](),
		now:      time.Now,
	}
}

// Get returns the value stored under key if present and unexpired, moving
// it to the most-recently-used end. A miss (absent or expired) removes the
// stale entry, if any, and returns ok=false.
func (c *Cache) Get(key string) (value interface{}, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, present := c.data.Get(key)
	if !present {
		return nil, false
	}
	if c.now().Sub(e.insertedAt) >= c.ttl {
		c.data.Delete(key)
		return nil, false
	}
	c.data.MoveToBack(key)
	return e.value, true
}

// Put inserts value under key at the most-recently-used end, evicting the
// least-recently-used entry if capacity is exceeded.
func (c *Cache) Put(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data.Set(key, entry{value: value, insertedAt: c.now()})
	c.data.MoveToBack(key)

	for c.data.Len() > c.capacity {
		oldest := c.data.Oldest()
		if oldest == nil {
			break
		}
		c.data.Delete(oldest.Key)
	}
}

// Len reports the number of entries currently stored, including any that
// are expired but not yet evicted by a Get.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data.Len()
}

// TTLSeconds reports the configured TTL in whole seconds, for health/metrics
// reporting.
func (c *Cache) TTLSeconds() int {
	return int(c.ttl.Seconds())
}

// MaxSize reports the configured capacity, for health/metrics reporting.
func (c *Cache) MaxSize() int {
	return c.capacity
}

// setNowForTest overrides the clock used by the cache; test-only.
func (c *Cache) setNowForTest(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
