// Package image renders small images, such as weather condition icons,
// to terminal output. Half blocks draw inline inside a composed frame;
// kitty, iTerm2, and sixel go through go-termimg for one-shot CLI output.
package image

import (
	"container/list"
	"fmt"
	"sync"
	"sync/atomic"
)

// CacheKey identifies one rendered output.
type CacheKey struct {
	Protocol string
	Width    int
	Height   int
	Source   string // caller-chosen name of the source image, e.g. an icon code
}

// String returns a readable form of the key for logging.
func (k CacheKey) String() string {
	return fmt.Sprintf("%s:%dx%d:%s", k.Protocol, k.Width, k.Height, k.Source)
}

// CacheStats reports hit and miss counts.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Entries   int
}

type cacheEntry struct {
	key      CacheKey
	rendered string
}

// Cache is a thread-safe LRU of rendered strings bounded by entry count.
type Cache struct {
	mu    sync.Mutex
	items map[CacheKey]*list.Element
	order *list.List // front = most recent
	max   int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewCache returns a cache holding at most maxEntries renders. A
// non-positive limit defaults to 64.
func NewCache(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = 64
	}
	return &Cache{
		items: make(map[CacheKey]*list.Element),
		order: list.New(),
		max:   maxEntries,
	}
}

// Get returns the rendered string for key.
func (c *Cache) Get(key CacheKey) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		return "", false
	}
	c.order.MoveToFront(elem)
	c.hits.Add(1)
	return elem.Value.(*cacheEntry).rendered, true
}

// Put stores rendered under key, evicting the least recently used entry
// when full.
func (c *Cache) Put(key CacheKey, rendered string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		elem.Value.(*cacheEntry).rendered = rendered
		c.order.MoveToFront(elem)
		return
	}
	for c.order.Len() >= c.max {
		back := c.order.Back()
		entry := c.order.Remove(back).(*cacheEntry)
		delete(c.items, entry.key)
		c.evictions.Add(1)
	}
	c.items[key] = c.order.PushFront(&cacheEntry{key: key, rendered: rendered})
}

// Invalidate clears every entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[CacheKey]*list.Element)
	c.order.Init()
}

// Stats returns current counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	n := c.order.Len()
	c.mu.Unlock()
	return CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Entries:   n,
	}
}
