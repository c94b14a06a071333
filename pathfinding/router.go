// Package pathfinding computes shortest distances and routes over a region
// adjacency graph and smooths routes into world-space waypoints.
package pathfinding

import (
	"log/slog"
	"maps"
	"slices"

	"quadnav/core"
	"quadnav/internal/logger"
)

// Distance is the result of a distance query for one destination.
// Unreachable destinations have Reachable set to false.
type Distance struct {
	Value     float64
	Reachable bool
}

// Step is one region of a route. Entry is the portal crossed to enter the
// region; it is nil for the source.
type Step struct {
	Leaf  int
	Entry *core.Portal
}

// Route is an ordered list of steps from the source region to the
// destination region.
type Route []Step

// Leaves returns the region ids of the route in order.
func (r Route) Leaves() []int {
	ids := make([]int, len(r))
	for i, s := range r {
		ids[i] = s.Leaf
	}
	return ids
}

// Centers returns the center of every region on the route.
func (r Route) Centers(g core.Graph) []core.Point {
	pts := make([]core.Point, 0, len(r))
	for _, s := range r {
		if n, ok := g.Node(s.Leaf); ok {
			pts = append(pts, n.Center())
		}
	}
	return pts
}

// Option configures a Router.
type Option func(*Router)

// WithAStar makes ComputeRoute order its frontier by cost plus the
// straight-line distance to the destination. Without it the heuristic is
// computed but does not influence the order, so routes match a plain
// Dijkstra search, including which of several equal-cost routes is found.
func WithAStar() Option {
	return func(r *Router) { r.astar = true }
}

// WithLogger overrides the router logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) { r.log = l }
}

// Router runs shortest-path searches over a graph. It holds no state
// between calls and is safe for concurrent use as long as the graph is.
type Router struct {
	graph core.Graph
	astar bool
	log   *slog.Logger
}

// NewRouter creates a router over graph.
func NewRouter(graph core.Graph, opts ...Option) *Router {
	r := &Router{
		graph: graph,
		log:   logger.Logger("pathfinding"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Graph returns the graph the router searches.
func (r *Router) Graph() core.Graph { return r.graph }

// ComputeDistances returns the shortest distance from source to each
// destination, in request order. Destinations that are unreachable or do
// not resolve to a node come back with Reachable false. The search stops as
// soon as every requested destination has been settled.
func (r *Router) ComputeDistances(source int, destinations []int) []Distance {
	out := make([]Distance, len(destinations))
	if _, ok := r.graph.Node(source); !ok {
		return out
	}

	pending := make(map[int]struct{}, len(destinations))
	for _, d := range destinations {
		if _, ok := r.graph.Node(d); ok {
			pending[d] = struct{}{}
		}
	}
	if len(pending) == 0 {
		return out
	}

	found := make(map[int]float64, len(pending))
	best := map[int]float64{source: 0}
	frozen := make(map[int]bool)

	q := &searchQueue{}
	q.push(source, 0, 0, 0)

	for q.Len() > 0 {
		cur := q.pop()
		if frozen[cur.id] {
			continue
		}
		frozen[cur.id] = true

		if _, want := pending[cur.id]; want {
			found[cur.id] = cur.cost
			delete(pending, cur.id)
			if len(pending) == 0 {
				break
			}
		}

		node, _ := r.graph.Node(cur.id)
		for _, adj := range neighbors(node) {
			if frozen[adj] {
				continue
			}
			next, ok := r.graph.Node(adj)
			if !ok {
				continue
			}

			d := cur.cost + node.DistanceTo(next)
			if prev, seen := best[adj]; seen && d >= prev {
				continue
			}
			best[adj] = d
			q.push(adj, d, d, 0)
		}
	}

	for i, d := range destinations {
		if v, ok := found[d]; ok {
			out[i] = Distance{Value: v, Reachable: true}
		}
	}
	return out
}

type predecessor struct {
	prev   int
	portal core.Portal
}

// ComputeRoute finds the shortest route from source to destination. It
// returns false when either end does not resolve to a node or when the
// destination cannot be reached.
func (r *Router) ComputeRoute(source, destination int) (Route, bool) {
	if _, ok := r.graph.Node(source); !ok {
		return nil, false
	}
	dst, ok := r.graph.Node(destination)
	if !ok {
		return nil, false
	}

	best := map[int]float64{source: 0}
	pred := make(map[int]predecessor)
	frozen := make(map[int]bool)
	expanded := 0

	q := &searchQueue{}
	q.push(source, 0, 0, 0)

	reached := false
	for q.Len() > 0 {
		cur := q.pop()
		if frozen[cur.id] {
			continue
		}
		if cur.id == destination {
			reached = true
			break
		}
		frozen[cur.id] = true
		expanded++

		node, _ := r.graph.Node(cur.id)
		adjacency := node.Adjacencies()
		for _, adj := range neighbors(node) {
			if frozen[adj] {
				continue
			}
			next, ok := r.graph.Node(adj)
			if !ok {
				continue
			}

			g := cur.cost + node.DistanceTo(next)
			h := next.DistanceTo(dst)
			if prev, seen := best[adj]; seen && g >= prev {
				continue
			}
			best[adj] = g
			pred[adj] = predecessor{prev: cur.id, portal: adjacency[adj]}

			priority := g
			if r.astar {
				priority = g + h
			}
			q.push(adj, g, priority, h)
		}
	}

	if !reached {
		r.log.Debug("no route", "source", source, "destination", destination, "expanded", expanded)
		return nil, false
	}

	route := Route{{Leaf: destination}}
	for p := destination; ; {
		step, ok := pred[p]
		if !ok {
			break
		}
		portal := step.portal
		route[len(route)-1].Entry = &portal
		route = append(route, Step{Leaf: step.prev})
		p = step.prev
	}
	slices.Reverse(route)
	return route, true
}

// neighbors returns the adjacent ids in ascending order so that searches
// are deterministic.
func neighbors(n core.Node) []int {
	return slices.Sorted(maps.Keys(n.Adjacencies()))
}
