package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBounded_ClearsWholesaleOnOverflow(t *testing.T) {
	c := New(3)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")
	assert.Equal(t, 3, c.Len())

	// Overwriting an existing key never evicts.
	c.Set("a", "10")
	assert.Equal(t, 3, c.Len())

	c.Set("d", "4")
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
	v, ok := c.Get("d")
	assert.True(t, ok)
	assert.Equal(t, "4", v)

	stats := c.GetStats()
	assert.Equal(t, 1, stats["clears"])
	assert.Equal(t, 1, stats["total_items"])
	assert.Equal(t, 3, stats["capacity"])
}

func TestBounded_GetOrCompute(t *testing.T) {
	c := New(10)
	calls := 0
	lower := func(s string) string { calls++; return s + "!" }

	assert.Equal(t, "x!", c.GetOrCompute("x", lower))
	assert.Equal(t, "x!", c.GetOrCompute("x", lower))
	assert.Equal(t, 1, calls)
}

func TestBounded_ConcurrentUse(t *testing.T) {
	c := New(50)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("%d-%d", g, i)
				c.GetOrCompute(key, func(s string) string { return s })
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 50)
}
