package decide

import (
	"container/list"
	"sync"
	"time"

	"github.com/clduab11/poker-helper/internal/game"
)

// #region cache

type cacheEntry struct {
	key      string
	rec      game.Recommendation
	storedAt time.Time
}

// Cache is an LRU of recommendations keyed by state hash, with a TTL so a
// stale read of a recurring state never survives past the configured window.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	ll       *list.List
	items    map[string]*list.Element
	hits     int
	misses   int

	now func() time.Time
}

// NewCache creates a cache holding at most capacity entries for at most ttl.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
		now:      time.Now,
	}
}

// Get returns the cached recommendation for key, if present and fresh.
// Expired entries are evicted on access.
func (c *Cache) Get(key string) (game.Recommendation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return game.Recommendation{}, false
	}
	entry := el.Value.(*cacheEntry)
	if c.now().Sub(entry.storedAt) > c.ttl {
		c.ll.Remove(el)
		delete(c.items, key)
		c.misses++
		return game.Recommendation{}, false
	}
	c.ll.MoveToFront(el)
	c.hits++
	return entry.rec, true
}

// Put stores rec under key, evicting the least recently used entry when full.
func (c *Cache) Put(key string, rec game.Recommendation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.rec = rec
		entry.storedAt = c.now()
		c.ll.MoveToFront(el)
		return
	}
	el := c.ll.PushFront(&cacheEntry{key: key, rec: rec, storedAt: c.now()})
	c.items[key] = el
	for c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

// Len returns the number of entries, including any not yet expired-on-access.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Stats returns cumulative hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Resize changes the capacity and TTL, evicting down to the new capacity.
func (c *Cache) Resize(capacity int, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if capacity < 1 {
		capacity = 1
	}
	c.capacity = capacity
	c.ttl = ttl
	for c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

// #endregion cache
