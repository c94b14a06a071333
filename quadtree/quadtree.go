// Package quadtree partitions the free space of an occupancy map into a tree
// of rectangular regions and derives the adjacency graph between the free
// leaves.
//
// A Tree is built once with Build and is read-only afterwards, so it can be
// queried from any number of goroutines.
package quadtree

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"quadnav/core"
	"quadnav/internal/logger"
)

// DefaultMaxDepth is the subdivision depth used when none is configured.
const DefaultMaxDepth = 6

// ErrNegativeDepth is returned by Build for a negative depth limit.
var ErrNegativeDepth = errors.New("quadtree: max depth must not be negative")

// Obstructor answers area obstruction queries over a grid.
type Obstructor interface {
	Obstruction(rect core.Rect) core.Obstruction
	Width() int
	Height() int
}

// Option configures a Build.
type Option func(*options)

type options struct {
	log *slog.Logger
}

// WithLogger overrides the build logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// Tree is a built quadtree over one static map.
type Tree struct {
	root     *Region
	leaves   []*Region // leaf registry, indexed by leaf id
	maxDepth int
}

var (
	_ core.Graph   = (*Tree)(nil)
	_ core.Locator = (*Tree)(nil)
	_ core.Node    = (*Region)(nil)
)

// Build subdivides m down to maxDepth levels and builds the adjacency graph.
func Build(m Obstructor, maxDepth int, opts ...Option) (*Tree, error) {
	if maxDepth < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeDepth, maxDepth)
	}
	o := options{log: logger.Logger("quadtree")}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	t := &Tree{maxDepth: maxDepth}

	bounds := core.Rect{X1: 0, Y1: 0, X2: float64(m.Width()), Y2: float64(m.Height())}
	if r, ok := t.split(m, bounds, maxDepth); ok {
		t.root = r
	} else {
		// The root exists even when nothing in the map is free.
		t.root = newInternal(bounds, nil)
	}
	nodesDone := time.Since(start)

	t.buildGraph()

	o.log.Debug("quadtree built",
		"width", m.Width(),
		"height", m.Height(),
		"max_depth", maxDepth,
		"leaves", len(t.leaves),
		"split_time", nodesDone,
		"graph_time", time.Since(start)-nodesDone)
	return t, nil
}

// split classifies rect and either turns it into a leaf, discards it, or
// recurses into its quadrants. It reports whether the region survived.
func (t *Tree) split(m Obstructor, rect core.Rect, levelsToGo int) (*Region, bool) {
	obs := m.Obstruction(rect)

	if obs == core.Free {
		leaf := newLeaf(rect, len(t.leaves))
		t.leaves = append(t.leaves, leaf)
		return leaf, true
	}
	if obs == core.Blocked || levelsToGo == 0 {
		return nil, false
	}

	var children []*Region
	for _, q := range rect.Quadrants() {
		if child, ok := t.split(m, q, levelsToGo-1); ok {
			children = append(children, child)
		}
	}
	if len(children) == 0 {
		return nil, false
	}
	return newInternal(rect, children), true
}

// buildGraph computes and caches the adjacency map of every leaf. This is
// the most expensive part of the build and runs exactly once.
func (t *Tree) buildGraph() {
	for _, leaf := range t.leaves {
		adj := make(map[int]core.Portal)
		t.touching(t.root, leaf, adj)
		leaf.adjacency = adj
	}
}

// touching collects every leaf under node that shares an edge with area.
func (t *Tree) touching(node, area *Region, out map[int]core.Portal) {
	if !area.Rect.Intersects(node.Rect) {
		return
	}
	if !node.IsLeaf() {
		for _, c := range node.children {
			t.touching(c, area, out)
		}
		return
	}
	if node == area || !Touches(area.Rect, node.Rect) {
		return
	}
	if p, ok := Portal(area.Rect, node.Rect); ok {
		out[node.id] = p
	}
}

// Touching recomputes the touching leaves of a leaf by walking the tree.
// It returns the same result as the cached Adjacencies.
func (t *Tree) Touching(leafID int) map[int]core.Portal {
	if leafID < 0 || leafID >= len(t.leaves) {
		return nil
	}
	out := make(map[int]core.Portal)
	t.touching(t.root, t.leaves[leafID], out)
	return out
}

// Root returns the root region.
func (t *Tree) Root() *Region { return t.root }

// MaxDepth returns the depth limit the tree was built with.
func (t *Tree) MaxDepth() int { return t.maxDepth }

// LeafCount returns the number of free leaves.
func (t *Tree) LeafCount() int { return len(t.leaves) }

// Leaves returns the leaf registry in id order.
func (t *Tree) Leaves() []*Region {
	return append([]*Region(nil), t.leaves...)
}

// Leaf returns the leaf region with the given id.
func (t *Tree) Leaf(id int) (*Region, bool) {
	if id < 0 || id >= len(t.leaves) {
		return nil, false
	}
	return t.leaves[id], true
}

// Node implements core.Graph.
func (t *Tree) Node(id int) (core.Node, bool) {
	leaf, ok := t.Leaf(id)
	if !ok {
		return nil, false
	}
	return leaf, true
}

// Adjacencies returns the neighbors of a leaf.
func (t *Tree) Adjacencies(id int) map[int]core.Portal {
	leaf, ok := t.Leaf(id)
	if !ok {
		return nil
	}
	return leaf.Adjacencies()
}

// ContainingLeaf returns the leaf that contains p. Points on a shared edge
// resolve to the first matching child in quadrant order. Points in
// unindexed space or outside the map resolve to nothing.
func (t *Tree) ContainingLeaf(p core.Point) (*Region, bool) {
	r := containing(t.root, p)
	return r, r != nil
}

// ContainingNode implements core.Locator.
func (t *Tree) ContainingNode(p core.Point) (core.Node, bool) {
	r, ok := t.ContainingLeaf(p)
	if !ok {
		return nil, false
	}
	return r, true
}

// LeafAt returns the id of the leaf containing p, or core.NoLeaf.
func (t *Tree) LeafAt(p core.Point) int {
	if r, ok := t.ContainingLeaf(p); ok {
		return r.id
	}
	return core.NoLeaf
}

func containing(node *Region, p core.Point) *Region {
	if !node.Rect.Contains(p) {
		return nil
	}
	if node.IsLeaf() {
		return node
	}
	for _, c := range node.children {
		if r := containing(c, p); r != nil {
			return r
		}
	}
	return nil
}

// Walk visits every region depth-first, parents before children. Returning
// false from fn skips the region's children.
func (t *Tree) Walk(fn func(r *Region, depth int) bool) {
	walk(t.root, 0, fn)
}

func walk(r *Region, depth int, fn func(*Region, int) bool) {
	if !fn(r, depth) {
		return
	}
	for _, c := range r.children {
		walk(c, depth+1, fn)
	}
}
