// Package quadnav plans paths across static 2D occupancy maps.
//
// A Navigator partitions the free space of a map into a quadtree once and
// then answers route, waypoint and distance queries by world point:
//
//	grid, _ := obstacles.Parse(f)
//	nav, _ := quadnav.New(grid)
//	path := nav.Plan(core.Point{X: 1, Y: 1}, core.Point{X: 30, Y: 12})
//
// Queries are read-only and safe for concurrent use. NewBatchProcessor moves
// planning onto a background worker for callers that must never block.
package quadnav

import (
	"fmt"
	"log/slog"
	"time"

	"quadnav/batch"
	"quadnav/config"
	"quadnav/core"
	"quadnav/internal/logger"
	"quadnav/obstacles"
	"quadnav/pathfinding"
	"quadnav/quadtree"
)

// Option configures a Navigator.
type Option func(*options)

type options struct {
	cfg config.Config
	log *slog.Logger
}

// WithConfig replaces the default configuration.
func WithConfig(cfg config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger overrides the navigator logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// Navigator answers path queries over one static map.
type Navigator struct {
	grid   *obstacles.ObstructionMap
	tree   *quadtree.Tree
	router *pathfinding.Router
	cache  *pathfinding.CachedRouter // nil when the route cache is off
	cfg    config.Config
	log    *slog.Logger
}

var _ batch.Planner = (*Navigator)(nil)

// New builds the quadtree and routing graph for grid.
func New(grid *obstacles.ObstructionMap, opts ...Option) (*Navigator, error) {
	o := options{cfg: config.Default(), log: logger.Logger("navigator")}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid navigator config: %w", err)
	}

	tree, err := quadtree.Build(grid, o.cfg.MaxDepth)
	if err != nil {
		return nil, fmt.Errorf("failed to build quadtree: %w", err)
	}

	var ropts []pathfinding.Option
	if o.cfg.AStar {
		ropts = append(ropts, pathfinding.WithAStar())
	}
	n := &Navigator{
		grid:   grid,
		tree:   tree,
		router: pathfinding.NewRouter(tree, ropts...),
		cfg:    o.cfg,
		log:    o.log,
	}
	if o.cfg.RouteCacheSize > 0 {
		n.cache = pathfinding.NewCachedRouter(n.router, o.cfg.RouteCacheSize)
	}

	n.log.Info("navigator ready",
		"width", grid.Width(),
		"height", grid.Height(),
		"leaves", tree.LeafCount(),
		"astar", o.cfg.AStar,
		"route_cache", o.cfg.RouteCacheSize)
	return n, nil
}

// Grid returns the occupancy map.
func (n *Navigator) Grid() *obstacles.ObstructionMap { return n.grid }

// Tree returns the quadtree.
func (n *Navigator) Tree() *quadtree.Tree { return n.tree }

// Router returns the uncached router.
func (n *Navigator) Router() *pathfinding.Router { return n.router }

// Config returns the configuration the navigator was built with.
func (n *Navigator) Config() config.Config { return n.cfg }

// Route returns the region route between two world points. It returns false
// when either point lies outside the free space or no route exists.
func (n *Navigator) Route(src, dst core.Point) (pathfinding.Route, bool) {
	from, to := n.tree.LeafAt(src), n.tree.LeafAt(dst)
	if from == core.NoLeaf || to == core.NoLeaf {
		return nil, false
	}
	if n.cache != nil {
		return n.cache.ComputeRoute(from, to)
	}
	return n.router.ComputeRoute(from, to)
}

// Waypoints returns the lazy waypoint sequence from src to dst.
func (n *Navigator) Waypoints(src, dst core.Point) *pathfinding.Waypoints {
	if n.cache != nil {
		return n.cache.WaypointsBetween(src, dst)
	}
	return n.router.WaypointsBetween(src, dst)
}

// Plan returns every waypoint from src to dst. It implements batch.Planner.
func (n *Navigator) Plan(src, dst core.Point) []core.Point {
	return n.Waypoints(src, dst).Collect()
}

// Distances returns the graph distance from src to each target, in order.
// Targets outside the free space, or unreachable from src, are marked
// unreachable.
func (n *Navigator) Distances(src core.Point, targets []core.Point) []pathfinding.Distance {
	ids := make([]int, len(targets))
	for i, p := range targets {
		ids[i] = n.tree.LeafAt(p)
	}
	return n.router.ComputeDistances(n.tree.LeafAt(src), ids)
}

// Nearest returns the index of the closest reachable target and its
// distance. Ties go to the earliest target.
func (n *Navigator) Nearest(src core.Point, targets []core.Point) (int, float64, bool) {
	best, bestDist := -1, 0.0
	for i, d := range n.Distances(src, targets) {
		if !d.Reachable {
			continue
		}
		if best < 0 || d.Value < bestDist {
			best, bestDist = i, d.Value
		}
	}
	return best, bestDist, best >= 0
}

// NewBatchProcessor starts a batch processor that plans with this
// navigator, polling at the configured interval. Callers must Finish it.
func (n *Navigator) NewBatchProcessor(opts ...batch.Option) *batch.Processor {
	opts = append([]batch.Option{batch.WithPollInterval(time.Duration(n.cfg.PollInterval))}, opts...)
	return batch.New(n, opts...)
}

// CacheStats describes the route cache, or reports that it is off.
func (n *Navigator) CacheStats() string {
	if n.cache == nil {
		return "RouteCache[off]"
	}
	return n.cache.String()
}
