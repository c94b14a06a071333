package pathfinding

import (
	"iter"
	"sync/atomic"

	"quadnav/core"
	"quadnav/geometry"
)

const (
	// portalMargin keeps fallback waypoints away from portal endpoints.
	portalMargin = 0.1
	// cornerPull is how far the rounded corner point sits from the portal
	// toward the center of the region being entered.
	cornerPull = 0.1
)

// Waypoints is a lazy, single-use sequence of world points that smooths a
// route. The first iteration streams the points; later iterations yield
// nothing.
type Waypoints struct {
	graph    core.Graph
	src, dst core.Point
	route    Route
	consumed atomic.Bool
}

// Waypoints smooths route into world points from src to dst. An empty route
// produces the straight source, midpoint, destination sequence.
func (r *Router) Waypoints(src, dst core.Point, route Route) *Waypoints {
	return &Waypoints{graph: r.graph, src: src, dst: dst, route: route}
}

// WaypointsBetween locates the regions containing src and dst, routes
// between them and returns the smoothed waypoints. When either point lies
// outside the indexed space, or no route exists, the sequence degrades to
// source, midpoint, destination.
func (r *Router) WaypointsBetween(src, dst core.Point) *Waypoints {
	return r.Waypoints(src, dst, routeBetween(r.graph, r.ComputeRoute, src, dst))
}

// Plan returns every waypoint from src to dst.
func (r *Router) Plan(src, dst core.Point) []core.Point {
	return r.WaypointsBetween(src, dst).Collect()
}

func routeBetween(g core.Graph, compute func(int, int) (Route, bool), src, dst core.Point) Route {
	loc, ok := g.(core.Locator)
	if !ok {
		return nil
	}
	from, ok := loc.ContainingNode(src)
	if !ok {
		return nil
	}
	to, ok := loc.ContainingNode(dst)
	if !ok {
		return nil
	}
	route, _ := compute(from.LeafID(), to.LeafID())
	return route
}

// All returns an iterator over the waypoints.
func (w *Waypoints) All() iter.Seq[core.Point] {
	return func(yield func(core.Point) bool) {
		if !w.consumed.CompareAndSwap(false, true) {
			return
		}
		w.generate(yield)
	}
}

// Collect drains the sequence into a slice.
func (w *Waypoints) Collect() []core.Point {
	var pts []core.Point
	for p := range w.All() {
		pts = append(pts, p)
	}
	return pts
}

func (w *Waypoints) generate(yield func(core.Point) bool) {
	if !yield(w.src) {
		return
	}

	pos := w.src.Vec()
	for i := 1; i < len(w.route); i++ {
		step := w.route[i]
		if step.Entry == nil {
			continue
		}
		next, ok := w.graph.Node(step.Leaf)
		if !ok {
			continue
		}

		a, b := step.Entry.A().Vec(), step.Entry.B().Vec()
		center := next.Center().Vec()
		hit, ok := geometry.LineIntersection(a, b, pos, center)
		if ok && hit.Within {
			pos = hit.Point
			if !yield(core.PointOf(pos)) {
				return
			}
			continue
		}

		s := 0.5
		if ok {
			s = geometry.Clamp(hit.S, portalMargin, 1-portalMargin)
		}
		door := geometry.Lerp(a, b, s)
		if !yield(core.PointOf(geometry.Lerp(door, center, cornerPull))) {
			return
		}
		pos = door
		if !yield(core.PointOf(pos)) {
			return
		}
	}

	if len(w.route) < 2 {
		if !yield(core.PointOf(geometry.Midpoint(w.src.Vec(), w.dst.Vec()))) {
			return
		}
	}
	yield(w.dst)
}
