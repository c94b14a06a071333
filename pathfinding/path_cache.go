package pathfinding

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"quadnav/core"
)

// DefaultRouteCacheSize is the number of routes kept when no size is given.
const DefaultRouteCacheSize = 1024

// routeKey identifies a cached route by its end regions.
type routeKey struct {
	from, to int
}

// cachedRoute is a cache entry. Unreachable pairs are cached too.
type cachedRoute struct {
	route Route
	found bool
}

// CachedRouter wraps a Router with an LRU cache of region-to-region routes.
// Routes only depend on the end regions, so every query between the same
// two regions shares an entry.
type CachedRouter struct {
	*Router

	cache     *lru.Cache[routeKey, cachedRoute]
	size      int
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// NewCachedRouter creates a cached router holding up to size routes. A size
// below one falls back to DefaultRouteCacheSize.
func NewCachedRouter(r *Router, size int) *CachedRouter {
	if size < 1 {
		size = DefaultRouteCacheSize
	}
	c := &CachedRouter{Router: r, size: size}
	cache, err := lru.NewWithEvict(size, func(routeKey, cachedRoute) {
		c.evictions.Add(1)
	})
	if err != nil {
		// Only returned for a non-positive size, excluded above.
		panic(err)
	}
	c.cache = cache
	return c
}

// ComputeRoute returns the cached route between two regions, computing and
// storing it on a miss.
func (c *CachedRouter) ComputeRoute(source, destination int) (Route, bool) {
	key := routeKey{from: source, to: destination}
	if e, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return e.route, e.found
	}
	c.misses.Add(1)

	route, found := c.Router.ComputeRoute(source, destination)
	c.cache.Add(key, cachedRoute{route: route, found: found})
	return route, found
}

// WaypointsBetween is Router.WaypointsBetween backed by the route cache.
func (c *CachedRouter) WaypointsBetween(src, dst core.Point) *Waypoints {
	return c.Waypoints(src, dst, routeBetween(c.graph, c.ComputeRoute, src, dst))
}

// Plan returns every waypoint from src to dst using cached routes.
func (c *CachedRouter) Plan(src, dst core.Point) []core.Point {
	return c.WaypointsBetween(src, dst).Collect()
}

// Purge drops every cached route and resets the statistics.
func (c *CachedRouter) Purge() {
	c.cache.Purge()
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}

// Stats returns cache statistics.
func (c *CachedRouter) Stats() (hits, misses, evictions, size int) {
	return int(c.hits.Load()), int(c.misses.Load()), int(c.evictions.Load()), c.cache.Len()
}

// String returns a string representation of cache statistics.
func (c *CachedRouter) String() string {
	hits, misses, evictions, size := c.Stats()
	hitRate := 0.0
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	return fmt.Sprintf("RouteCache[size=%d/%d, hits=%d, misses=%d, hitRate=%.1f%%, evictions=%d]",
		size, c.size, hits, misses, hitRate, evictions)
}
