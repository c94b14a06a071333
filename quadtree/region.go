package quadtree

import (
	"fmt"
	"maps"

	"quadnav/core"
)

// Kind tags a Region as a leaf or an internal node.
type Kind uint8

const (
	KindInternal Kind = iota
	KindLeaf
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "Leaf"
	case KindInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Region is a node of the quadtree: a rectangle that is either a free leaf
// with a stable id or an internal node with up to four children.
type Region struct {
	Rect core.Rect

	kind     Kind
	id       int
	children []*Region

	// adjacency is filled once by the graph build and read-only afterwards.
	adjacency map[int]core.Portal
}

func newLeaf(rect core.Rect, id int) *Region {
	return &Region{Rect: rect, kind: KindLeaf, id: id}
}

func newInternal(rect core.Rect, children []*Region) *Region {
	return &Region{Rect: rect, kind: KindInternal, id: core.NoLeaf, children: children}
}

// Kind returns the variant tag of the region.
func (r *Region) Kind() Kind { return r.kind }

// IsLeaf reports whether the region is a free leaf.
func (r *Region) IsLeaf() bool { return r.kind == KindLeaf }

// Children returns the child regions of an internal node, nil for leaves.
func (r *Region) Children() []*Region { return r.children }

// LeafID returns the leaf id, or core.NoLeaf for internal nodes.
func (r *Region) LeafID() int { return r.id }

// Center returns the center of the region.
func (r *Region) Center() core.Point { return r.Rect.Center() }

// Adjacencies returns neighbor leaf id to shared portal. The returned map
// is a copy; nil for internal nodes.
func (r *Region) Adjacencies() map[int]core.Portal {
	if r.adjacency == nil {
		return nil
	}
	return maps.Clone(r.adjacency)
}

// Neighbors returns the number of adjacent leaves without copying.
func (r *Region) Neighbors() int { return len(r.adjacency) }

// Portal returns the portal shared with a neighboring leaf.
func (r *Region) Portal(neighbor int) (core.Portal, bool) {
	p, ok := r.adjacency[neighbor]
	return p, ok
}

// DistanceTo returns the Euclidean distance between region centers.
func (r *Region) DistanceTo(other core.Node) float64 {
	return r.Center().DistanceTo(other.Center())
}

func (r *Region) String() string {
	if r.kind == KindLeaf {
		return fmt.Sprintf("<Region %v id=%d>", r.Rect, r.id)
	}
	return fmt.Sprintf("<Region %v children=%d>", r.Rect, len(r.children))
}

// Touches reports whether two rectangles share part of an axis-aligned
// edge. Rectangles meeting only at a corner do not touch.
func Touches(a, b core.Rect) bool {
	vertical := a.X1 == b.X2 || b.X1 == a.X2
	horizontal := a.Y1 == b.Y2 || b.Y1 == a.Y2
	if vertical && horizontal {
		return false
	}
	return vertical || horizontal
}

// Portal returns the segment shared by two touching rectangles. The result
// is undefined unless Touches(a, b) holds; a single shared point yields
// false.
func Portal(a, b core.Rect) (core.Portal, bool) {
	var p core.Portal
	switch {
	case a.X1 == b.X2:
		p = core.Portal{X0: a.X1, Y0: max(a.Y1, b.Y1), X1: a.X1, Y1: min(a.Y2, b.Y2)}
	case b.X1 == a.X2:
		p = core.Portal{X0: b.X1, Y0: max(a.Y1, b.Y1), X1: b.X1, Y1: min(a.Y2, b.Y2)}
	case a.Y1 == b.Y2:
		p = core.Portal{X0: max(a.X1, b.X1), Y0: a.Y1, X1: min(a.X2, b.X2), Y1: a.Y1}
	case b.Y1 == a.Y2:
		p = core.Portal{X0: max(a.X1, b.X1), Y0: b.Y1, X1: min(a.X2, b.X2), Y1: b.Y1}
	}
	if p.X0 >= p.X1 && p.Y0 >= p.Y1 {
		return core.Portal{}, false
	}
	return p, true
}
