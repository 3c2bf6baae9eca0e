package smartform

import (
	"encoding/json"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/a3tai/mcp-smartform-parser/internal/smartform/parser"
)

// ResultCache is a thread-safe LRU cache of parse results keyed by a hash
// of the rows and the options they were parsed with. Cached results are
// shared and must be treated as read-only.
type ResultCache struct {
	mutex    sync.Mutex
	capacity int
	items    map[uint64]*cacheNode
	head     *cacheNode // Most recently used
	tail     *cacheNode // Least recently used
	hits     int64
	misses   int64
}

type cacheNode struct {
	key   uint64
	value *parser.Result
	prev  *cacheNode
	next  *cacheNode
}

// CacheStats provides statistics about cache performance
type CacheStats struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRate  float64 `json:"hit_rate_percent"`
	Size     int     `json:"current_size"`
	Capacity int     `json:"max_capacity"`
}

// NewResultCache creates a new cache with the specified capacity. A
// capacity of zero or less disables caching: nothing is stored and every
// lookup misses.
func NewResultCache(capacity int) *ResultCache {
	if capacity < 0 {
		capacity = 0
	}

	cache := &ResultCache{
		capacity: capacity,
		items:    make(map[uint64]*cacheNode),
		head:     &cacheNode{},
		tail:     &cacheNode{},
	}
	cache.head.next = cache.tail
	cache.tail.prev = cache.head

	return cache
}

// CacheKey hashes rows together with the options that shape their result.
// Rows are hashed in their JSON form so equal documents share a key
// regardless of where they were decoded from.
func CacheKey(rows []parser.Row, opts parser.Options) (uint64, error) {
	digest := xxhash.New()
	enc := json.NewEncoder(digest)
	if err := enc.Encode(opts); err != nil {
		return 0, err
	}
	if err := enc.Encode(rows); err != nil {
		return 0, err
	}
	return digest.Sum64(), nil
}

// Get retrieves a result and marks it as recently used
func (c *ResultCache) Get(key uint64) (*parser.Result, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if node, exists := c.items[key]; exists {
		c.moveToFront(node)
		c.hits++
		return node.value, true
	}

	c.misses++
	return nil, false
}

// Enabled reports whether the cache stores anything at all
func (c *ResultCache) Enabled() bool {
	return c.capacity > 0
}

// Put adds or updates a result, evicting the least recently used entry
// when the cache is full.
func (c *ResultCache) Put(key uint64, value *parser.Result) {
	if !c.Enabled() {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if node, exists := c.items[key]; exists {
		node.value = value
		c.moveToFront(node)
		return
	}

	node := &cacheNode{key: key, value: value}
	c.addToFront(node)
	c.items[key] = node

	if len(c.items) > c.capacity {
		c.evictLRU()
	}
}

// Len returns the current number of items in the cache
func (c *ResultCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items)
}

// Stats returns cache statistics
func (c *ResultCache) Stats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	total := c.hits + c.misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(c.hits) / float64(total) * 100
	}

	return CacheStats{
		Hits:     c.hits,
		Misses:   c.misses,
		HitRate:  hitRate,
		Size:     len(c.items),
		Capacity: c.capacity,
	}
}

func (c *ResultCache) moveToFront(node *cacheNode) {
	c.removeNode(node)
	c.addToFront(node)
}

func (c *ResultCache) addToFront(node *cacheNode) {
	node.prev = c.head
	node.next = c.head.next
	c.head.next.prev = node
	c.head.next = node
}

func (c *ResultCache) removeNode(node *cacheNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
}

func (c *ResultCache) evictLRU() {
	lru := c.tail.prev
	if lru != c.head {
		c.removeNode(lru)
		delete(c.items, lru.key)
	}
}
