// Package core contains the fundamental types shared by the quadnav packages.
package core

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// NoLeaf marks a point or request that does not resolve to any leaf region.
const NoLeaf = -1

// Point represents a 2D world-space coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec returns the point as a vector.
func (p Point) Vec() mgl64.Vec2 {
	return mgl64.Vec2{p.X, p.Y}
}

// PointOf converts a vector back to a Point.
func PointOf(v mgl64.Vec2) Point {
	return Point{X: v[0], Y: v[1]}
}

// DistanceTo returns the Euclidean distance between two points.
func (p Point) DistanceTo(o Point) float64 {
	return o.Vec().Sub(p.Vec()).Len()
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// Rect is an axis-aligned rectangle. Tree regions always carry integer
// coordinates; X1,Y1 is the minimum corner and X2,Y2 the maximum corner.
type Rect struct {
	X1, Y1, X2, Y2 float64
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.X2 - r.X1
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Y2 - r.Y1
}

// Empty reports whether the rectangle covers no area.
func (r Rect) Empty() bool {
	return r.X2 <= r.X1 || r.Y2 <= r.Y1
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.X1 + r.X2) * 0.5, Y: (r.Y1 + r.Y2) * 0.5}
}

// Contains checks if a point is inside the rectangle, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X1 && p.X <= r.X2 &&
		p.Y >= r.Y1 && p.Y <= r.Y2
}

// Intersects reports whether two closed rectangles share at least one point.
// Rectangles that only touch along an edge or a corner intersect.
func (r Rect) Intersects(o Rect) bool {
	if r.X1 > o.X2 || o.X1 > r.X2 {
		return false
	}
	if r.Y1 > o.Y2 || o.Y1 > r.Y2 {
		return false
	}
	return true
}

// Quadrants splits the rectangle at its integer midpoint into four
// quadrants: top-left, top-right, bottom-left, bottom-right. Quadrants of a
// one-cell-wide or one-cell-tall rectangle may be empty.
func (r Rect) Quadrants() [4]Rect {
	xm := math.Floor((r.X1 + r.X2) / 2)
	ym := math.Floor((r.Y1 + r.Y2) / 2)
	return [4]Rect{
		{r.X1, r.Y1, xm, ym},
		{xm, r.Y1, r.X2, ym},
		{r.X1, ym, xm, r.Y2},
		{xm, ym, r.X2, r.Y2},
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g,%g %g,%g]", r.X1, r.Y1, r.X2, r.Y2)
}

// Portal is the shared boundary segment between two adjacent regions.
type Portal struct {
	X0, Y0, X1, Y1 float64
}

// A returns the first endpoint of the portal.
func (p Portal) A() Point {
	return Point{X: p.X0, Y: p.Y0}
}

// B returns the second endpoint of the portal.
func (p Portal) B() Point {
	return Point{X: p.X1, Y: p.Y1}
}

// Length returns the length of the portal segment.
func (p Portal) Length() float64 {
	return p.A().DistanceTo(p.B())
}

// SameSegment reports whether both portals describe the same segment,
// regardless of endpoint order.
func (p Portal) SameSegment(o Portal) bool {
	if p == o {
		return true
	}
	return p.A() == o.B() && p.B() == o.A()
}

func (p Portal) String() string {
	return fmt.Sprintf("%v-%v", p.A(), p.B())
}

// Obstruction classifies how much of an area is blocked.
type Obstruction int

const (
	Free Obstruction = iota
	Partial
	Blocked
)

// String returns the string representation of an Obstruction.
func (o Obstruction) String() string {
	switch o {
	case Free:
		return "Free"
	case Partial:
		return "Partial"
	case Blocked:
		return "Blocked"
	default:
		return "Unknown"
	}
}

// Node is a traversable region of a navigation graph.
type Node interface {
	// LeafID returns the stable identifier of the region.
	LeafID() int
	// Adjacencies maps each neighboring region id to the shared portal.
	Adjacencies() map[int]Portal
	// DistanceTo returns the Euclidean distance between region centers.
	DistanceTo(other Node) float64
	// Center returns the center point of the region.
	Center() Point
}

// Graph resolves region identifiers to nodes.
type Graph interface {
	Node(id int) (Node, bool)
}

// Locator resolves world points to the region that contains them.
type Locator interface {
	ContainingNode(p Point) (Node, bool)
}
