package pathfinding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quadnav/core"
)

func TestCachedRouterHitsAndMisses(t *testing.T) {
	c := NewCachedRouter(NewRouter(buildTree(t, sideBySide)), 8)

	first := c.Plan(core.Point{X: 1, Y: 1}, core.Point{X: 7, Y: 1})
	second := c.Plan(core.Point{X: 1, Y: 1}, core.Point{X: 7, Y: 1})
	assert.Equal(t, first, second)

	// A different point pair between the same regions shares the entry.
	c.Plan(core.Point{X: 2, Y: 3}, core.Point{X: 5, Y: 0.5})

	hits, misses, evictions, size := c.Stats()
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, misses)
	assert.Equal(t, 0, evictions)
	assert.Equal(t, 1, size)
	assert.Equal(t, "RouteCache[size=1/8, hits=2, misses=1, hitRate=66.7%, evictions=0]", c.String())
}

func TestCachedRouterMatchesRouter(t *testing.T) {
	r := NewRouter(buildTree(t, sideBySide))
	c := NewCachedRouter(r, 8)

	want, ok := r.ComputeRoute(0, 1)
	require.True(t, ok)
	for i := 0; i < 3; i++ {
		got, ok := c.ComputeRoute(0, 1)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestCachedRouterCachesUnreachable(t *testing.T) {
	tree := buildTree(t, walled)
	c := NewCachedRouter(NewRouter(tree), 8)

	left := tree.LeafAt(core.Point{X: 0.5, Y: 0.5})
	right := tree.LeafAt(core.Point{X: 3, Y: 3})
	for i := 0; i < 2; i++ {
		_, ok := c.ComputeRoute(left, right)
		assert.False(t, ok)
	}

	hits, misses, _, size := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
	assert.Equal(t, 1, size)
}

func TestCachedRouterEvictsAndPurges(t *testing.T) {
	c := NewCachedRouter(NewRouter(buildTree(t, sideBySide)), 1)

	c.ComputeRoute(0, 1)
	c.ComputeRoute(1, 0)
	c.ComputeRoute(0, 1)

	hits, misses, evictions, size := c.Stats()
	assert.Equal(t, 0, hits)
	assert.Equal(t, 3, misses)
	assert.Equal(t, 2, evictions)
	assert.Equal(t, 1, size)

	c.Purge()
	hits, misses, evictions, size = c.Stats()
	assert.Zero(t, hits+misses+evictions+size)
}

func TestCachedRouterDefaultSize(t *testing.T) {
	c := NewCachedRouter(NewRouter(buildTree(t, sideBySide)), 0)
	assert.Contains(t, c.String(), "size=0/1024")
}
