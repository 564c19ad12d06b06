// File: internal/cache/inmemory/inmemory.go
package inmemory

import (
	"container/list"
	"sync"

	"github.com/vrcarchive/assetbrowser/internal/archive"
)

// DefaultFieldLimit bounds how many distinct fields may hold cached vectors
// at once before the least recently used field's whole set is dropped.
const DefaultFieldLimit = 10

// Cache is an in-memory embedding cache with per-field LRU eviction.
// Vectors are grouped by field; evicting a field releases every vector
// computed for it in one step, mirroring how a whole tensor set is freed.
type Cache struct {
	mu     sync.Mutex
	limit  int
	order  *list.List // of archive.Field; front is most recently used
	groups map[archive.Field]*fieldGroup
}

type fieldGroup struct {
	elem *list.Element
	vecs map[string][]float64
}

// New creates a Cache bounded to limit distinct fields. A non-positive limit
// falls back to DefaultFieldLimit.
func New(limit int) *Cache {
	if limit <= 0 {
		limit = DefaultFieldLimit
	}
	return &Cache{
		limit:  limit,
		order:  list.New(),
		groups: make(map[archive.Field]*fieldGroup),
	}
}

// Get returns the cached vector for (itemID, field) and refreshes the
// field's recency on a hit.
func (c *Cache) Get(itemID string, field archive.Field) ([]float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, ok := c.groups[field]
	if !ok {
		return nil, false
	}
	vec, ok := g.vecs[itemID]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(g.elem)
	return vec, true
}

// Put stores the vector for (itemID, field), evicting the least recently
// used field group if the field limit is exceeded.
func (c *Cache) Put(itemID string, field archive.Field, vec []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, ok := c.groups[field]
	if !ok {
		for len(c.groups) >= c.limit {
			c.evictOldest()
		}
		g = &fieldGroup{vecs: make(map[string][]float64)}
		g.elem = c.order.PushFront(field)
		c.groups[field] = g
	} else {
		c.order.MoveToFront(g.elem)
	}
	g.vecs[itemID] = vec
}

func (c *Cache) evictOldest() {
	back := c.order.Back()
	if back == nil {
		return
	}
	field := back.Value.(archive.Field)
	c.order.Remove(back)
	delete(c.groups, field)
}

// Clear drops every cached vector.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.groups = make(map[archive.Field]*fieldGroup)
}

// Close releases the cache. It never fails for the in-memory backend.
func (c *Cache) Close() error {
	c.Clear()
	return nil
}

// Fields reports how many distinct fields currently hold vectors.
func (c *Cache) Fields() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.groups)
}
