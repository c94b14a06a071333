package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	// loggers caches one *slog.Logger per subsystem.
	loggers sync.Map
	// handlers keeps the subsystem handlers so levels can change at runtime.
	handlers sync.Map

	globalOutput   io.Writer = os.Stderr
	globalOutputMu sync.RWMutex
)

// dynamicWriter resolves globalOutput on every write so SetOutput also
// redirects loggers created earlier.
type dynamicWriter struct{}

func (dynamicWriter) Write(p []byte) (int, error) {
	globalOutputMu.RLock()
	w := globalOutput
	globalOutputMu.RUnlock()
	return w.Write(p)
}

type subsystemHandler struct {
	mu    sync.RWMutex
	level slog.Level
	inner slog.Handler
}

func newHandler(subsystem string, level slog.Level, format LogFormat) *subsystemHandler {
	opts := &slog.HandlerOptions{
		// Filtering happens in Enabled so the level can move at runtime.
		Level: slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			return a
		},
	}

	var inner slog.Handler
	if format == FormatJSON {
		inner = slog.NewJSONHandler(dynamicWriter{}, opts)
	} else {
		inner = slog.NewTextHandler(dynamicWriter{}, opts)
	}

	return &subsystemHandler{
		level: level,
		inner: inner.WithAttrs([]slog.Attr{slog.String("subsystem", subsystem)}),
	}
}

func (h *subsystemHandler) Enabled(_ context.Context, level slog.Level) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return level >= h.level
}

func (h *subsystemHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

func (h *subsystemHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &derivedHandler{parent: h, inner: h.inner.WithAttrs(attrs)}
}

func (h *subsystemHandler) WithGroup(name string) slog.Handler {
	return &derivedHandler{parent: h, inner: h.inner.WithGroup(name)}
}

// SetLevel changes the minimum level of the subsystem.
func (h *subsystemHandler) SetLevel(level slog.Level) {
	h.mu.Lock()
	h.level = level
	h.mu.Unlock()
}

// derivedHandler shares its parent's level so With(...) loggers follow
// runtime level changes.
type derivedHandler struct {
	parent *subsystemHandler
	inner  slog.Handler
}

func (d *derivedHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return d.parent.Enabled(ctx, level)
}

func (d *derivedHandler) Handle(ctx context.Context, r slog.Record) error {
	return d.inner.Handle(ctx, r)
}

func (d *derivedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &derivedHandler{parent: d.parent, inner: d.inner.WithAttrs(attrs)}
}

func (d *derivedHandler) WithGroup(name string) slog.Handler {
	return &derivedHandler{parent: d.parent, inner: d.inner.WithGroup(name)}
}

// Logger returns the logger for a subsystem. Repeated calls with the same
// subsystem return the same instance.
//
//	var log = logger.Logger("quadtree")
//	log.Debug("tree built", "leaves", n)
func Logger(subsystem string) *slog.Logger {
	if l, ok := loggers.Load(subsystem); ok {
		return l.(*slog.Logger)
	}

	cfg := ConfigFromEnv()
	h := newHandler(subsystem, cfg.LevelForSubsystem(subsystem), cfg.Format)

	actual, loaded := loggers.LoadOrStore(subsystem, slog.New(h))
	if !loaded {
		handlers.Store(subsystem, h)
	}
	return actual.(*slog.Logger)
}

// SetLevel changes the level of an existing subsystem logger.
func SetLevel(subsystem string, level slog.Level) {
	if h, ok := handlers.Load(subsystem); ok {
		h.(*subsystemHandler).SetLevel(level)
	}
}

// SetOutput redirects every logger, including ones already created.
func SetOutput(w io.Writer) {
	globalOutputMu.Lock()
	globalOutput = w
	globalOutputMu.Unlock()
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}
