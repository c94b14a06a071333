// Package batch moves route planning off the caller's goroutine. A Processor
// owns one worker that plans queued jobs in submission order; the caller
// collects finished results with Dispatch on its own schedule, for example
// once per frame.
package batch

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"quadnav/core"
	"quadnav/internal/logger"
)

// DefaultPollInterval bounds how long the idle worker waits for a job before
// re-checking its state.
const DefaultPollInterval = 500 * time.Millisecond

// ErrStopped is returned when a job is requested after Finish.
var ErrStopped = errors.New("batch: processor stopped")

// Planner computes the waypoints between two world points.
type Planner interface {
	Plan(src, dst core.Point) []core.Point
}

// State is the lifecycle state of a Processor.
type State int32

const (
	Idle State = iota
	Running
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Stopping:
		return "Stopping"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Callback receives the waypoints of a finished job. When Liveness is set,
// the result is only delivered while Target is alive.
type Callback struct {
	Fn       func([]core.Point)
	Target   HandleID
	Liveness Liveness
}

func (c Callback) deliverable() bool {
	if c.Fn == nil {
		return false
	}
	return c.Liveness == nil || c.Liveness.Alive(c.Target)
}

// Job is a queued route request.
type Job struct {
	Source      core.Point
	Destination core.Point
	Callback    Callback
}

type result struct {
	callback Callback
	points   []core.Point
}

// Option configures a Processor.
type Option func(*Processor)

// WithPollInterval sets the idle wait of the worker.
func WithPollInterval(d time.Duration) Option {
	return func(p *Processor) {
		if d > 0 {
			p.poll = d
		}
	}
}

// WithClock replaces the clock driving the idle wait.
func WithClock(c clock.Clock) Option {
	return func(p *Processor) { p.clock = c }
}

// WithLogger overrides the processor logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) { p.log = l }
}

// Processor plans route jobs on a background worker.
type Processor struct {
	planner Planner
	clock   clock.Clock
	poll    time.Duration
	log     *slog.Logger

	state     atomic.Int32
	pending   *fifo[Job]
	completed *fifo[result]

	stop   chan struct{}
	finish sync.Once
	group  errgroup.Group
}

// New creates a processor and starts its worker.
func New(planner Planner, opts ...Option) *Processor {
	p := &Processor{
		planner:   planner,
		clock:     clock.New(),
		poll:      DefaultPollInterval,
		log:       logger.Logger("batch"),
		pending:   newFIFO[Job](),
		completed: newFIFO[result](),
		stop:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.state.Store(int32(Running))
	p.group.Go(p.run)
	return p
}

// State returns the current lifecycle state.
func (p *Processor) State() State { return State(p.state.Load()) }

// RequestJob queues a route request. It never blocks.
func (p *Processor) RequestJob(src, dst core.Point, cb Callback) error {
	if p.State() != Running {
		return ErrStopped
	}
	p.pending.Push(Job{Source: src, Destination: dst, Callback: cb})
	jobsRequested.Inc()
	return nil
}

// Dispatch delivers at most one finished result and reports whether a
// callback ran. Results for released targets are dropped silently. After
// Finish it never runs a callback.
func (p *Processor) Dispatch() bool {
	if p.State() != Running {
		return false
	}
	r, ok := p.completed.TryPop()
	if !ok {
		return false
	}
	if !r.callback.deliverable() {
		callbacksDropped.Inc()
		p.log.Debug("result dropped", "target", r.callback.Target)
		return false
	}
	r.callback.Fn(r.points)
	callbacksDispatched.Inc()
	return true
}

// Finish stops the worker and waits for it to exit. A job being planned
// when Finish is called runs to completion. Finish is idempotent.
func (p *Processor) Finish() {
	p.finish.Do(func() {
		p.state.Store(int32(Stopping))
		close(p.stop)
		if err := p.group.Wait(); err != nil {
			p.log.Error("worker exited", "err", err)
		}
		p.state.Store(int32(Stopped))
		p.log.Debug("processor stopped", "pending", p.pending.Len(), "completed", p.completed.Len())
	})
}

// Pending returns the number of jobs waiting for the worker.
func (p *Processor) Pending() int { return p.pending.Len() }

// Completed returns the number of results waiting for Dispatch.
func (p *Processor) Completed() int { return p.completed.Len() }

func (p *Processor) run() error {
	for p.State() == Running {
		job, ok := p.next()
		if !ok {
			continue
		}

		start := p.clock.Now()
		points := p.planner.Plan(job.Source, job.Destination)
		planDuration.Observe(p.clock.Since(start).Seconds())

		p.completed.Push(result{callback: job.Callback, points: points})
		jobsCompleted.Inc()
	}
	return nil
}

// next waits up to one poll interval for a job. It returns false on timeout
// or when the processor is stopping.
func (p *Processor) next() (Job, bool) {
	for {
		if job, ok := p.pending.TryPop(); ok {
			return job, true
		}

		timer := p.clock.Timer(p.poll)
		select {
		case <-p.pending.Ready():
			timer.Stop()
		case <-timer.C:
			return Job{}, false
		case <-p.stop:
			timer.Stop()
			return Job{}, false
		}
	}
}
