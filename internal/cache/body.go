package cache

import (
	"container/list"
	"errors"
	"sync"
	"time"
)

// ErrItemTooLarge is returned when a body exceeds the cache capacity.
var ErrItemTooLarge = errors.New("item too large for cache")

// Body is a downloaded response body.
type Body struct {
	URL         string // final URL after redirects
	ContentType string
	Data        []byte
}

func (b Body) size() int64 {
	return int64(len(b.Data) + len(b.URL) + len(b.ContentType))
}

// BodyStats holds body cache metrics.
type BodyStats struct {
	Capacity  int64 // Maximum capacity in bytes
	Size      int64 // Current size in bytes
	ItemCount int64
	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64 // hits / (hits + misses)
}

// BodyCache is an in-memory LRU of response bodies bounded by total size.
// It lives for the session only.
type BodyCache struct {
	capacity int64
	size     int64

	items    map[string]*list.Element
	eviction *list.List

	mu    sync.Mutex
	stats BodyStats
}

type bodyEntry struct {
	key       string
	value     Body
	size      int64
	timestamp time.Time
}

// NewBodyCache creates a cache holding at most capacity bytes.
func NewBodyCache(capacity int64) *BodyCache {
	return &BodyCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		stats:    BodyStats{Capacity: capacity},
	}
}

// Get retrieves a body and marks it most recently used.
func (c *BodyCache) Get(key string) (Body, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return Body{}, false
	}
	c.eviction.MoveToFront(elem)
	c.stats.Hits++
	return elem.Value.(*bodyEntry).value, true
}

// Put stores a body, evicting least recently used entries to make room.
func (c *BodyCache) Put(key string, value Body) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	valueSize := value.size()
	if valueSize > c.capacity {
		return ErrItemTooLarge
	}

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}

	for c.size+valueSize > c.capacity && c.eviction.Len() > 0 {
		c.evictOldest()
	}

	elem := c.eviction.PushFront(&bodyEntry{
		key:       key,
		value:     value,
		size:      valueSize,
		timestamp: time.Now(),
	})
	c.items[key] = elem
	c.size += valueSize
	return nil
}

// Delete removes an entry.
func (c *BodyCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// Contains checks for key without updating recency.
func (c *BodyCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

// Clear removes all entries.
func (c *BodyCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.eviction.Init()
	c.size = 0
}

// Resize changes the capacity, evicting as needed.
func (c *BodyCache) Resize(capacity int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capacity = capacity
	c.stats.Capacity = capacity
	for c.size > c.capacity && c.eviction.Len() > 0 {
		c.evictOldest()
	}
}

// Prune removes entries older than maxAge and returns how many went.
func (c *BodyCache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	pruned := 0
	elem := c.eviction.Back()
	for elem != nil {
		prev := elem.Prev()
		if elem.Value.(*bodyEntry).timestamp.Before(cutoff) {
			c.removeElement(elem)
			pruned++
		}
		elem = prev
	}
	return pruned
}

// Stats returns cache statistics.
func (c *BodyCache) Stats() BodyStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Size = c.size
	stats.ItemCount = int64(len(c.items))
	if stats.Hits+stats.Misses > 0 {
		stats.HitRate = float64(stats.Hits) / float64(stats.Hits+stats.Misses)
	}
	return stats
}

// evictOldest removes the least recently used item (must be called with lock held).
func (c *BodyCache) evictOldest() {
	if elem := c.eviction.Back(); elem != nil {
		c.removeElement(elem)
		c.stats.Evictions++
	}
}

// removeElement removes an element from the cache (must be called with lock held).
func (c *BodyCache) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	entry := elem.Value.(*bodyEntry)
	delete(c.items, entry.key)
	c.size -= entry.size
}
