// Package geometry provides the small amount of 2D math used when smoothing
// routes into waypoints.
package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// parallelEpsilon is the determinant below which two lines are treated as parallel.
const parallelEpsilon = 1e-5

// Intersection describes where two lines cross.
type Intersection struct {
	Point mgl64.Vec2
	// S is the parameter along the first segment, T along the second.
	S, T float64
	// Within is true when both parameters fall inside [0, 1].
	Within bool
}

// LineIntersection intersects the infinite lines through segments a0-a1 and
// b0-b1. It returns false when the lines are parallel.
func LineIntersection(a0, a1, b0, b1 mgl64.Vec2) (Intersection, bool) {
	s1 := a1.Sub(a0)
	s2 := b1.Sub(b0)

	d := -s2[0]*s1[1] + s1[0]*s2[1]
	if d > -parallelEpsilon && d < parallelEpsilon {
		return Intersection{}, false
	}

	t := (-s1[1]*(a0[0]-b0[0]) + s1[0]*(a0[1]-b0[1])) / d
	s := (s2[0]*(a0[1]-b0[1]) - s2[1]*(a0[0]-b0[0])) / d

	return Intersection{
		Point:  a0.Add(s1.Mul(s)),
		S:      s,
		T:      t,
		Within: s >= 0 && s <= 1 && t >= 0 && t <= 1,
	}, true
}

// Lerp returns the point at parameter s along a-b.
func Lerp(a, b mgl64.Vec2, s float64) mgl64.Vec2 {
	return a.Add(b.Sub(a).Mul(s))
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b mgl64.Vec2) mgl64.Vec2 {
	return Lerp(a, b, 0.5)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Project returns the parameter of the orthogonal projection of p onto the
// line through a-b. Degenerate segments project to 0.
func Project(a, b, p mgl64.Vec2) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return 0
	}
	return p.Sub(a).Dot(ab) / l2
}
