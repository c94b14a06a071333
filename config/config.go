// Package config holds the tunables of a navigator and loads them from JSON
// files.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/multierr"

	"quadnav/batch"
	"quadnav/internal/logger"
	"quadnav/pathfinding"
	"quadnav/quadtree"
)

// MaxTreeDepth is the deepest subdivision Validate accepts.
const MaxTreeDepth = 32

var (
	ErrInvalidDepth     = errors.New("config: max_depth out of range")
	ErrInvalidCacheSize = errors.New("config: route_cache_size must not be negative")
	ErrInvalidPoll      = errors.New("config: poll_interval must be positive")
	ErrInvalidLogLevel  = errors.New("config: invalid log_level")
	ErrInvalidLogFormat = errors.New("config: log_format must be text or json")
)

// Duration is a time.Duration that reads and writes JSON strings such as
// "500ms".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config configures tree building, routing and the batch processor.
type Config struct {
	MaxDepth       int      `json:"max_depth"`
	AStar          bool     `json:"astar"`
	RouteCacheSize int      `json:"route_cache_size"`
	PollInterval   Duration `json:"poll_interval"`
	LogLevel       string   `json:"log_level"`
	LogFormat      string   `json:"log_format"`
}

// Default returns the default configuration. A zero RouteCacheSize turns
// the route cache off.
func Default() Config {
	return Config{
		MaxDepth:       quadtree.DefaultMaxDepth,
		RouteCacheSize: pathfinding.DefaultRouteCacheSize,
		PollInterval:   Duration(batch.DefaultPollInterval),
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var err error
	if c.MaxDepth < 0 || c.MaxDepth > MaxTreeDepth {
		err = multierr.Append(err, fmt.Errorf("%w: %d", ErrInvalidDepth, c.MaxDepth))
	}
	if c.RouteCacheSize < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: %d", ErrInvalidCacheSize, c.RouteCacheSize))
	}
	if c.PollInterval <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: %s", ErrInvalidPoll, time.Duration(c.PollInterval)))
	}
	if !logger.ValidLevelSpec(c.LogLevel) {
		err = multierr.Append(err, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		err = multierr.Append(err, fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.LogFormat))
	}
	return err
}

// ApplyLogging installs the logging settings for every subsystem.
func (c Config) ApplyLogging() {
	logger.Configure(c.LogLevel, c.LogFormat)
}

// Load reads a JSON configuration file. Missing fields keep their defaults;
// unknown fields are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a JSON configuration.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
