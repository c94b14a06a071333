package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectContains(t *testing.T) {
	r := Rect{0, 0, 4, 4}

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"interior", Point{2, 2}, true},
		{"min corner", Point{0, 0}, true},
		{"max edge", Point{4, 1}, true},
		{"outside", Point{4.5, 1}, false},
		{"negative", Point{-1, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Contains(tt.p))
		})
	}
}

func TestRectIntersects(t *testing.T) {
	a := Rect{0, 0, 4, 4}

	assert.True(t, a.Intersects(Rect{2, 2, 6, 6}), "overlap")
	assert.True(t, a.Intersects(Rect{4, 0, 8, 4}), "shared edge")
	assert.True(t, a.Intersects(Rect{4, 4, 8, 8}), "shared corner")
	assert.False(t, a.Intersects(Rect{5, 0, 8, 4}), "gap")
}

func TestRectQuadrants(t *testing.T) {
	q := Rect{0, 0, 8, 4}.Quadrants()
	assert.Equal(t, Rect{0, 0, 4, 2}, q[0])
	assert.Equal(t, Rect{4, 0, 8, 2}, q[1])
	assert.Equal(t, Rect{0, 2, 4, 4}, q[2])
	assert.Equal(t, Rect{4, 2, 8, 4}, q[3])

	// One-cell-wide rectangles produce empty left quadrants.
	thin := Rect{3, 0, 4, 2}.Quadrants()
	assert.True(t, thin[0].Empty())
	assert.False(t, thin[1].Empty())
}

func TestPortalSameSegment(t *testing.T) {
	p := Portal{4, 0, 4, 4}
	assert.True(t, p.SameSegment(Portal{4, 0, 4, 4}))
	assert.True(t, p.SameSegment(Portal{4, 4, 4, 0}))
	assert.False(t, p.SameSegment(Portal{4, 0, 4, 2}))
	assert.Equal(t, 4.0, p.Length())
}

func TestObstructionString(t *testing.T) {
	assert.Equal(t, "Free", Free.String())
	assert.Equal(t, "Partial", Partial.String())
	assert.Equal(t, "Blocked", Blocked.String())
	assert.Equal(t, "Unknown", Obstruction(9).String())
}

func TestPointDistance(t *testing.T) {
	assert.InDelta(t, 5.0, Point{0, 0}.DistanceTo(Point{3, 4}), 1e-9)
	assert.Equal(t, Point{1, 2}, PointOf(Point{1, 2}.Vec()))
}
