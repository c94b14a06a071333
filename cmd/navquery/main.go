// Command navquery loads an ASCII occupancy map and answers route and
// distance queries against it, printing JSON.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"

	"quadnav"
	"quadnav/batch"
	"quadnav/config"
	"quadnav/core"
	"quadnav/internal/logger"
	"quadnav/obstacles"
)

var errUsage = errors.New("usage")

type routeOutput struct {
	From      core.Point   `json:"from"`
	To        core.Point   `json:"to"`
	Found     bool         `json:"found"`
	Leaves    []int        `json:"leaves,omitempty"`
	Waypoints []core.Point `json:"waypoints"`
}

type targetOutput struct {
	To        core.Point `json:"to"`
	Reachable bool       `json:"reachable"`
	Distance  *float64   `json:"distance,omitempty"`
}

type distancesOutput struct {
	From    core.Point     `json:"from"`
	Targets []targetOutput `json:"targets"`
	Nearest *int           `json:"nearest,omitempty"`
}

type output struct {
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	Leaves    int              `json:"leaves"`
	Route     *routeOutput     `json:"route,omitempty"`
	Distances *distancesOutput `json:"distances,omitempty"`
	Cache     string           `json:"cache,omitempty"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("navquery", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		mapFile    = fs.String("map", "", "ASCII map file ('#' blocked, '.' free)")
		configFile = fs.String("config", "", "JSON config file (default: built-in defaults)")
		from       = fs.String("from", "", "Source point x,y")
		to         = fs.String("to", "", "Destination point x,y for a route query")
		targets    = fs.String("targets", "", "Semicolon-separated x,y targets for a distance query")
		useBatch   = fs.Bool("batch", false, "Plan the route on a batch processor")
		verbose    = fs.Bool("v", false, "Debug logging on stderr")
		outputFile = fs.String("o", "", "Output file (default: stdout)")
	)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: navquery -map map.txt -from x,y (-to x,y | -targets x,y;x,y) [options]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  navquery -map level.txt -from 1,1 -to 30,12\n")
		fmt.Fprintf(stderr, "  navquery -map level.txt -from 1,1 -targets '4,4;30,12;18,2'\n")
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	src, dst, dsts, err := parseQuery(*mapFile, *from, *to, *targets)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		fs.Usage()
		return errUsage
	}

	cfg := config.Default()
	if *configFile != "" {
		if cfg, err = config.Load(*configFile); err != nil {
			return err
		}
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}
	logger.SetOutput(stderr)
	cfg.ApplyLogging()

	grid, err := loadMap(*mapFile)
	if err != nil {
		return err
	}
	nav, err := quadnav.New(grid, quadnav.WithConfig(cfg))
	if err != nil {
		return err
	}

	out := output{
		Width:  grid.Width(),
		Height: grid.Height(),
		Leaves: nav.Tree().LeafCount(),
	}
	if dst != nil {
		out.Route = queryRoute(nav, src, *dst, *useBatch)
	}
	if dsts != nil {
		out.Distances = queryDistances(nav, src, dsts)
	}
	out.Cache = nav.CacheStats()

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	if *outputFile != "" {
		return os.WriteFile(*outputFile, append(data, '\n'), 0o644)
	}
	_, err = fmt.Fprintln(stdout, string(data))
	return err
}

// parseQuery validates the query flags, reporting every problem at once.
func parseQuery(mapFile, from, to, targets string) (core.Point, *core.Point, []core.Point, error) {
	var (
		errs error
		src  core.Point
		dst  *core.Point
		dsts []core.Point
	)
	if mapFile == "" {
		errs = multierr.Append(errs, errors.New("map file required (-map)"))
	}
	if from == "" {
		errs = multierr.Append(errs, errors.New("source point required (-from)"))
	} else if p, err := parsePoint(from); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("-from: %w", err))
	} else {
		src = p
	}
	if to == "" && targets == "" {
		errs = multierr.Append(errs, errors.New("one of -to or -targets is required"))
	}
	if to != "" {
		if p, err := parsePoint(to); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("-to: %w", err))
		} else {
			dst = &p
		}
	}
	if targets != "" {
		for _, part := range strings.Split(targets, ";") {
			p, err := parsePoint(part)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("-targets: %w", err))
				continue
			}
			dsts = append(dsts, p)
		}
	}
	return src, dst, dsts, errs
}

func parsePoint(s string) (core.Point, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return core.Point{}, fmt.Errorf("invalid point %q, want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return core.Point{}, fmt.Errorf("invalid x in %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return core.Point{}, fmt.Errorf("invalid y in %q: %w", s, err)
	}
	return core.Point{X: x, Y: y}, nil
}

func loadMap(path string) (*obstacles.ObstructionMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open map: %w", err)
	}
	defer f.Close()

	grid, err := obstacles.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse map %s: %w", path, err)
	}
	return grid, nil
}

func queryRoute(nav *quadnav.Navigator, src, dst core.Point, useBatch bool) *routeOutput {
	out := &routeOutput{From: src, To: dst}
	if route, ok := nav.Route(src, dst); ok {
		out.Found = true
		out.Leaves = route.Leaves()
	}
	if useBatch {
		out.Waypoints = planBatched(nav, src, dst)
	} else {
		out.Waypoints = nav.Plan(src, dst)
	}
	return out
}

// planBatched runs a single job through a batch processor, dispatching the
// way a frame loop would.
func planBatched(nav *quadnav.Navigator, src, dst core.Point) []core.Point {
	p := nav.NewBatchProcessor()
	defer p.Finish()

	var pts []core.Point
	if err := p.RequestJob(src, dst, batch.Callback{Fn: func(r []core.Point) { pts = r }}); err != nil {
		return nav.Plan(src, dst)
	}
	for !p.Dispatch() {
		time.Sleep(time.Millisecond)
	}
	return pts
}

func queryDistances(nav *quadnav.Navigator, src core.Point, dsts []core.Point) *distancesOutput {
	out := &distancesOutput{From: src}
	for i, d := range nav.Distances(src, dsts) {
		t := targetOutput{To: dsts[i], Reachable: d.Reachable}
		if d.Reachable {
			t.Distance = ptr(d.Value)
		}
		out.Targets = append(out.Targets, t)
	}
	if i, _, ok := nav.Nearest(src, dsts); ok {
		out.Nearest = ptr(i)
	}
	return out
}

func ptr[T any](v T) *T { return &v }
