package mapbox

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/quake-overlay-service/internal/domain"
	"github.com/couchcryptid/quake-overlay-service/internal/observability"
)

// CachedTiles wraps a TileSource with an in-memory LRU cache.
type CachedTiles struct {
	inner   domain.TileSource
	cache   *lruCache[domain.Tile]
	metrics *observability.Metrics
}

// NewCachedTiles creates a cache decorator around a tile source.
func NewCachedTiles(inner domain.TileSource, maxEntries int, metrics *observability.Metrics) *CachedTiles {
	return &CachedTiles{
		inner:   inner,
		cache:   newLRUCache[domain.Tile](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedTiles) FetchTile(ctx context.Context, layer domain.BaseLayer, z, x, y int) (domain.Tile, error) {
	key := fmt.Sprintf("%s/%d/%d/%d", layer.Slug, z, x, y)
	if tile, ok := c.cache.get(key); ok {
		c.metrics.TileCache.WithLabelValues("hit").Inc()
		return tile, nil
	}
	c.metrics.TileCache.WithLabelValues("miss").Inc()

	tile, err := c.inner.FetchTile(ctx, layer, z, x, y)
	if err != nil {
		return tile, err
	}
	if len(tile.Data) > 0 {
		c.cache.put(key, tile)
	}
	return tile, nil
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[V]) remove(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
