package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_PutGet(t *testing.T) {
	c := New(time.Minute, 10)
	c.Put("a", 1)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	c := New(time.Second, 10)
	now := time.Now()
	c.setNowForTest(func() time.Time { return now })
	c.Put("a", "v")

	c.setNowForTest(func() time.Time { return now.Add(2 * time.Second) })
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_LRUEviction(t *testing.T) {
	c := New(time.Minute, 2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3) // evicts "a", the least-recently-used

	_, ok := c.Get("a")
	assert.False(t, ok)

	_, ok = c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestCache_GetPromotesToMRU(t *testing.T) {
	c := New(time.Minute, 2)
	c.Put("a", 1)
	c.Put("b", 2)

	// touching "a" makes "b" the least-recently-used
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("c", 3) // should evict "b", not "a"

	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestCache_RoundTrip(t *testing.T) {
	c := New(time.Minute, 10)
	c.Put("k", []string{"x", "y"})

	v1, ok := c.Get("k")
	require.True(t, ok)
	v2, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, v1, v2)
}
