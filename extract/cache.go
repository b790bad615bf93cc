// ABOUTME: Result cache memoizing texture-presence lookups per (start port, export context).
// ABOUTME: One cache belongs to one export run; absent results are cached as well.
package extract

import (
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/2389-research/nodetrace/graph"
)

// TextureFunc is the lookup the cache wraps.
type TextureFunc func(start *graph.Port, ctx *ExportContext) *graph.Node

type cacheKey struct {
	port string
	ctx  ulid.ULID
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits    int `json:"hits" yaml:"hits"`
	Misses  int `json:"misses" yaml:"misses"`
	Entries int `json:"entries" yaml:"entries"`
}

// Cache wraps a texture lookup with an in-memory memo. Keys combine the
// start port identity with the export context ID.
//
// Entries are never invalidated. Create one cache per material export and
// drop it afterwards; the mutex only keeps accidental sharing race-free.
type Cache struct {
	lookup  TextureFunc
	entries map[cacheKey]*graph.Node
	hits    int
	misses  int
	mu      sync.Mutex
}

// NewCache creates a cache around Texture.
func NewCache() *Cache {
	return NewCacheWith(Texture)
}

// NewCacheWith creates a cache around an arbitrary lookup.
func NewCacheWith(fn TextureFunc) *Cache {
	return &Cache{
		lookup:  fn,
		entries: make(map[cacheKey]*graph.Node),
	}
}

// Texture returns the memoized texture-presence result for start.
func (c *Cache) Texture(start *graph.Port, ctx *ExportContext) *graph.Node {
	if start == nil {
		return nil
	}
	key := cacheKey{port: start.ID(), ctx: ctx.id()}

	c.mu.Lock()
	if n, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		return n
	}
	c.misses++
	c.mu.Unlock()

	n := c.lookup(start, ctx)

	c.mu.Lock()
	c.entries[key] = n
	c.mu.Unlock()
	return n
}

// Stats returns a snapshot of hit and miss counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Entries: len(c.entries)}
}

// Reset drops every entry and zeroes the counters.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]*graph.Node)
	c.hits, c.misses = 0, 0
}
