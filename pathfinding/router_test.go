package pathfinding

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quadnav/core"
	"quadnav/obstacles"
	"quadnav/quadtree"
)

// fakeNode is a hand-wired graph node for exercising the router without a
// quadtree.
type fakeNode struct {
	id     int
	center core.Point
	adj    map[int]core.Portal
}

func (n *fakeNode) LeafID() int                        { return n.id }
func (n *fakeNode) Adjacencies() map[int]core.Portal   { return n.adj }
func (n *fakeNode) Center() core.Point                 { return n.center }
func (n *fakeNode) DistanceTo(other core.Node) float64 { return n.center.DistanceTo(other.Center()) }

type fakeGraph map[int]*fakeNode

func (g fakeGraph) Node(id int) (core.Node, bool) {
	n, ok := g[id]
	if !ok {
		return nil, false
	}
	return n, true
}

func (g fakeGraph) add(id int, x, y float64) {
	g[id] = &fakeNode{id: id, center: core.Point{X: x, Y: y}, adj: make(map[int]core.Portal)}
}

func (g fakeGraph) connect(a, b int, p core.Portal) {
	g[a].adj[b] = p
	g[b].adj[a] = p
}

func randomGraph(rng *rand.Rand, n int, density float64) fakeGraph {
	g := make(fakeGraph)
	for i := 0; i < n; i++ {
		g.add(i, float64(rng.Intn(20)), float64(rng.Intn(20)))
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rng.Float64() < density {
				g.connect(i, j, core.Portal{X0: float64(i), Y0: float64(j), X1: float64(i), Y1: float64(j + 1)})
			}
		}
	}
	return g
}

// allPairs computes every shortest distance by Floyd-Warshall.
func allPairs(g fakeGraph) [][]float64 {
	n := len(g)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
		for j := range d[i] {
			if i != j {
				d[i][j] = math.Inf(1)
			}
		}
		for j := range g[i].adj {
			d[i][j] = g[i].DistanceTo(g[j])
		}
	}
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if d[i][k]+d[k][j] < d[i][j] {
					d[i][j] = d[i][k] + d[k][j]
				}
			}
		}
	}
	return d
}

func routeCost(t *testing.T, g core.Graph, route Route) float64 {
	t.Helper()
	cost := 0.0
	for i := 1; i < len(route); i++ {
		a, ok := g.Node(route[i-1].Leaf)
		require.True(t, ok)
		b, ok := g.Node(route[i].Leaf)
		require.True(t, ok)
		cost += a.DistanceTo(b)
	}
	return cost
}

func assertRouteShape(t *testing.T, g core.Graph, route Route, src, dst int) {
	t.Helper()
	require.NotEmpty(t, route)
	assert.Equal(t, src, route[0].Leaf)
	assert.Nil(t, route[0].Entry)
	assert.Equal(t, dst, route[len(route)-1].Leaf)
	for i := 1; i < len(route); i++ {
		prev, ok := g.Node(route[i-1].Leaf)
		require.True(t, ok)
		portal, adjacent := prev.Adjacencies()[route[i].Leaf]
		require.True(t, adjacent, "step %d: %d is not adjacent to %d", i, route[i].Leaf, route[i-1].Leaf)
		require.NotNil(t, route[i].Entry)
		assert.Equal(t, portal, *route[i].Entry)
	}
}

func buildTree(t *testing.T, s string) *quadtree.Tree {
	t.Helper()
	m, err := obstacles.Parse(strings.NewReader(s))
	require.NoError(t, err)
	tree, err := quadtree.Build(m, quadtree.DefaultMaxDepth)
	require.NoError(t, err)
	return tree
}

const sideBySide = "" +
	"........\n" +
	"........\n" +
	"........\n" +
	"........\n" +
	"########\n" +
	"########\n" +
	"########\n" +
	"########\n"

const walled = "" +
	".#..\n" +
	".#..\n" +
	".#..\n" +
	".#..\n"

func TestComputeDistancesSelfIsZero(t *testing.T) {
	r := NewRouter(buildTree(t, "....\n....\n....\n....\n"))

	got := r.ComputeDistances(0, []int{0})
	assert.Equal(t, []Distance{{Value: 0, Reachable: true}}, got)
}

func TestComputeDistancesSideBySide(t *testing.T) {
	r := NewRouter(buildTree(t, sideBySide))

	got := r.ComputeDistances(0, []int{1, 0, core.NoLeaf, 99})
	assert.Equal(t, []Distance{
		{Value: 4, Reachable: true},
		{Value: 0, Reachable: true},
		{},
		{},
	}, got)
}

func TestComputeDistancesUnresolvedSource(t *testing.T) {
	r := NewRouter(buildTree(t, sideBySide))
	assert.Equal(t, []Distance{{}}, r.ComputeDistances(core.NoLeaf, []int{0}))
	assert.Empty(t, r.ComputeDistances(0, nil))
}

func TestComputeDistancesUnreachable(t *testing.T) {
	tree := buildTree(t, walled)
	r := NewRouter(tree)

	left := tree.LeafAt(core.Point{X: 0.5, Y: 0.5})
	right := tree.LeafAt(core.Point{X: 3, Y: 3})
	require.NotEqual(t, core.NoLeaf, left)
	require.NotEqual(t, core.NoLeaf, right)

	got := r.ComputeDistances(left, []int{right, left})
	assert.False(t, got[0].Reachable)
	assert.True(t, got[1].Reachable)

	_, ok := r.ComputeRoute(left, right)
	assert.False(t, ok)
}

func TestComputeDistancesMatchesAllPairs(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 25; round++ {
		g := randomGraph(rng, 9, 0.3)
		want := allPairs(g)
		r := NewRouter(g)

		targets := []int{0, 1, 2, 3, 4, 5, 6, 7, 8}
		for src := range g {
			got := r.ComputeDistances(src, targets)
			require.Len(t, got, len(targets))
			for i, dst := range targets {
				if math.IsInf(want[src][dst], 1) {
					assert.False(t, got[i].Reachable, "%d->%d", src, dst)
					continue
				}
				require.True(t, got[i].Reachable, "%d->%d", src, dst)
				assert.InDelta(t, want[src][dst], got[i].Value, 1e-9, "%d->%d", src, dst)
			}
		}
	}
}

func TestComputeRouteIsShortest(t *testing.T) {
	rng := rand.New(rand.NewSource(13))

	for round := 0; round < 25; round++ {
		g := randomGraph(rng, 8, 0.35)
		want := allPairs(g)
		plain := NewRouter(g)
		astar := NewRouter(g, WithAStar())

		for src := range g {
			for dst := range g {
				route, ok := plain.ComputeRoute(src, dst)
				aroute, aok := astar.ComputeRoute(src, dst)
				assert.Equal(t, ok, aok)
				if math.IsInf(want[src][dst], 1) {
					assert.False(t, ok, "%d->%d", src, dst)
					continue
				}
				require.True(t, ok, "%d->%d", src, dst)
				assertRouteShape(t, g, route, src, dst)
				assertRouteShape(t, g, aroute, src, dst)
				assert.InDelta(t, want[src][dst], routeCost(t, g, route), 1e-9)
				assert.InDelta(t, want[src][dst], routeCost(t, g, aroute), 1e-9)
			}
		}
	}
}

func TestComputeRouteSelf(t *testing.T) {
	r := NewRouter(buildTree(t, sideBySide))

	route, ok := r.ComputeRoute(1, 1)
	require.True(t, ok)
	assert.Equal(t, Route{{Leaf: 1}}, route)
}

func TestComputeRouteUnresolved(t *testing.T) {
	r := NewRouter(buildTree(t, sideBySide))

	_, ok := r.ComputeRoute(core.NoLeaf, 0)
	assert.False(t, ok)
	_, ok = r.ComputeRoute(0, 42)
	assert.False(t, ok)
}

func TestComputeRouteSideBySide(t *testing.T) {
	tree := buildTree(t, sideBySide)
	r := NewRouter(tree)

	route, ok := r.ComputeRoute(0, 1)
	require.True(t, ok)
	assert.Equal(t, []int{0, 1}, route.Leaves())
	require.NotNil(t, route[1].Entry)
	assert.True(t, route[1].Entry.SameSegment(core.Portal{X0: 4, Y0: 0, X1: 4, Y1: 4}))
	assert.Equal(t, []core.Point{{X: 2, Y: 2}, {X: 6, Y: 2}}, route.Centers(tree))
}

func TestComputeRouteOnRandomTrees(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	for round := 0; round < 5; round++ {
		cells := make([]bool, 24*24)
		for i := range cells {
			cells[i] = rng.Float64() < 0.2
		}
		m, err := obstacles.NewFromCells(24, 24, cells)
		require.NoError(t, err)
		tree, err := quadtree.Build(m, 8)
		require.NoError(t, err)

		plain := NewRouter(tree)
		astar := NewRouter(tree, WithAStar())
		n := tree.LeafCount()
		if n == 0 {
			continue
		}
		for k := 0; k < 20; k++ {
			src, dst := rng.Intn(n), rng.Intn(n)
			dist := plain.ComputeDistances(src, []int{dst})[0]

			route, ok := plain.ComputeRoute(src, dst)
			require.Equal(t, dist.Reachable, ok)
			aroute, aok := astar.ComputeRoute(src, dst)
			require.Equal(t, ok, aok)
			if !ok {
				continue
			}
			assertRouteShape(t, tree, route, src, dst)
			assertRouteShape(t, tree, aroute, src, dst)
			assert.InDelta(t, dist.Value, routeCost(t, tree, route), 1e-9)
			assert.InDelta(t, dist.Value, routeCost(t, tree, aroute), 1e-9)
		}
	}
}

func TestSearchQueueBreaksTiesFIFO(t *testing.T) {
	q := &searchQueue{}
	q.push(5, 1, 1, 0)
	q.push(3, 1, 1, 0)
	q.push(9, 0.5, 0.5, 0)
	q.push(1, 1, 1, 0)

	var order []int
	for q.Len() > 0 {
		order = append(order, q.pop().id)
	}
	assert.Equal(t, []int{9, 5, 3, 1}, order)
}
