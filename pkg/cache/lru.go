package cache

import (
	"container/list"
	"context"
	"slices"
	"sync"
	"time"
)

type lruEntry struct {
	key     string
	value   []byte
	expires time.Time // zero means no expiry
}

// LRU is a thread-safe in-memory Cache.
// When it reaches its capacity, the least recently used item is evicted.
type LRU struct {
	capacity int
	items    map[string]*list.Element
	eviction *list.List
	mu       sync.Mutex
	now      func() time.Time
}

// LRUOption configures an LRU.
type LRUOption func(*LRU)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) LRUOption {
	return func(c *LRU) {
		if now != nil {
			c.now = now
		}
	}
}

// NewLRU creates a new LRU cache with the specified capacity.
// The capacity must be positive, otherwise it panics.
func NewLRU(capacity int, opts ...LRUOption) *LRU {
	if capacity <= 0 {
		panic("LRU cache capacity must be positive")
	}
	c := &LRU{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the stored value and marks it as recently used.
func (c *LRU) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, ErrMiss
	}
	entry := elem.Value.(*lruEntry)
	if !entry.expires.IsZero() && !c.now().Before(entry.expires) {
		c.removeElement(elem)
		return nil, ErrMiss
	}

	c.eviction.MoveToFront(elem)
	return slices.Clone(entry.value), nil
}

// Set adds or updates a value. The value is copied.
func (c *LRU) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if ttl > 0 {
		expires = c.now().Add(ttl)
	}
	value = slices.Clone(value)

	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		entry := elem.Value.(*lruEntry)
		entry.value = value
		entry.expires = expires
		return nil
	}

	elem := c.eviction.PushFront(&lruEntry{key: key, value: value, expires: expires})
	c.items[key] = elem

	if c.eviction.Len() > c.capacity {
		c.evictOldest()
	}
	return nil
}

// Delete removes the given keys; unknown keys are ignored.
func (c *LRU) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		if elem, ok := c.items[key]; ok {
			c.removeElement(elem)
		}
	}
	return nil
}

// Len counts stored items, expired ones included until they are touched.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eviction.Len()
}

// Clear removes all items from the cache.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.eviction.Init()
}

// Must be called with lock held.
func (c *LRU) evictOldest() {
	if elem := c.eviction.Back(); elem != nil {
		c.removeElement(elem)
	}
}

// Must be called with lock held.
func (c *LRU) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	delete(c.items, elem.Value.(*lruEntry).key)
}
