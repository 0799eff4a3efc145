package cache

import "sync"

// DefaultCapacity is the number of entries kept before the cache is emptied.
const DefaultCapacity = 5000

// Bounded is a string-to-string map safe for concurrent use. When an insert
// would exceed the capacity the whole map is cleared first; there is no LRU order.
type Bounded struct {
	mu       sync.RWMutex
	items    map[string]string
	capacity int
	clears   int
}

func New(capacity int) *Bounded {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bounded{
		items:    make(map[string]string, capacity),
		capacity: capacity,
	}
}

func (c *Bounded) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.items[key]
	return v, ok
}

func (c *Bounded) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.capacity {
		c.items = make(map[string]string, c.capacity)
		c.clears++
	}
	c.items[key] = value
}

// GetOrCompute returns the cached value for key, computing and storing it on a miss.
// compute runs outside the lock.
func (c *Bounded) GetOrCompute(key string, compute func(string) string) string {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := compute(key)
	c.Set(key, v)
	return v
}

func (c *Bounded) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// GetStats reports the cache fill level and how often it was emptied.
func (c *Bounded) GetStats() map[string]interface{} {
	total := c.Len()

	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"total_items": total,
		"capacity":    c.capacity,
		"clears":      c.clears,
	}
}
