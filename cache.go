package highlight

import (
	"sync"

	"github.com/briarwood-reader/highlight/dom"
)

// defaultCacheCapacity is the cache's capacity per §4.7: 20 entries.
const defaultCacheCapacity = 20

// TextMapCache is the bounded text-map cache described in §4.7 and §5. Each
// Engine owns its own instance; the package-level Default engine's cache is
// the one shared process-wide. It is safe for concurrent use; callers that share an Engine
// (and therefore its cache) across goroutines need no external locking for
// cache access, though Apply/GetTextMap on the same article_id can still
// race to decide who "built" the cached map.
//
// A cached TextMap's Node pointers belong to a tree that is not retained
// anywhere else once the call that built it returns (§5); treat a map
// pulled back out of the cache as read-only for position queries.
type TextMapCache struct {
	mu       sync.Mutex
	order    []string // insertion order, oldest first
	entries  map[string]*dom.TextMap
	capacity int
}

// NewTextMapCache constructs a cache with the given capacity. A
// non-positive capacity falls back to defaultCacheCapacity.
func NewTextMapCache(capacity int) *TextMapCache {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	return &TextMapCache{
		entries:  make(map[string]*dom.TextMap),
		capacity: capacity,
	}
}

// Get returns the cached text map for articleID, if any.
func (c *TextMapCache) Get(articleID string) (*dom.TextMap, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tm, ok := c.entries[articleID]
	return tm, ok
}

// Put stores tm under articleID, evicting the oldest half of the cache
// first if it is at capacity (§4.7).
func (c *TextMapCache) Put(articleID string, tm *dom.TextMap) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[articleID]; !exists {
		if len(c.order) >= c.capacity {
			c.evictOldestHalfLocked()
		}
		c.order = append(c.order, articleID)
	}
	c.entries[articleID] = tm
}

func (c *TextMapCache) evictOldestHalfLocked() {
	n := len(c.order) / 2
	if n == 0 {
		n = 1
	}
	for _, id := range c.order[:n] {
		delete(c.entries, id)
	}
	c.order = append([]string(nil), c.order[n:]...)
}

// Clear removes a single article's cached text map.
func (c *TextMapCache) Clear(articleID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, articleID)
	for i, id := range c.order {
		if id == articleID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// ClearAll empties the cache entirely.
func (c *TextMapCache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*dom.TextMap)
	c.order = nil
}
