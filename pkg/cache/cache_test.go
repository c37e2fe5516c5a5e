package cache_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/replenish/pkg/cache"
)

type pairKey struct {
	CustomerID string
	ProductID  string
}

func TestLRU_BasicOperations(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, int](3)

	c.Put("a", 1)
	c.Put("b", 2)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	c.Put("a", 10)
	v, _ = c.Get("a")
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, int](2)

	c.Put("a", 1)
	c.Put("b", 2)

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("c", 3)

	_, ok = c.Get("b")
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestLRU_Invalidate(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, int](3)
	c.Put("a", 1)

	assert.True(t, c.Invalidate("a"))
	assert.False(t, c.Invalidate("a"), "second invalidation is a no-op")

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestLRU_InvalidateFunc(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[pairKey, int](10)
	c.Put(pairKey{"c1", "p1"}, 1)
	c.Put(pairKey{"c2", "p1"}, 2)
	c.Put(pairKey{"c1", "p2"}, 3)

	removed := c.InvalidateFunc(func(k pairKey) bool { return k.ProductID == "p1" })
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get(pairKey{"c1", "p2"})
	assert.True(t, ok, "entries for other products must survive")
}

func TestLRU_Clear(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, int](3)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Clear()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[int, int](100)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := range 100 {
				c.Put(base*100+j, j)
				c.Get(base*100 + j)
				if j%10 == 0 {
					c.Invalidate(base*100 + j)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 100)
}

func TestNewLRU_PanicsOnInvalidCapacity(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { cache.NewLRU[string, int](0) })
}
