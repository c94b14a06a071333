package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 6, cfg.MaxDepth)
	assert.Equal(t, Duration(500*time.Millisecond), cfg.PollInterval)
	assert.False(t, cfg.AStar)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Config{
		MaxDepth:       -1,
		RouteCacheSize: -5,
		PollInterval:   0,
		LogLevel:       "batch=loud",
		LogFormat:      "xml",
	}
	err := cfg.Validate()
	require.Error(t, err)

	assert.Len(t, multierr.Errors(err), 5)
	assert.ErrorIs(t, err, ErrInvalidDepth)
	assert.ErrorIs(t, err, ErrInvalidCacheSize)
	assert.ErrorIs(t, err, ErrInvalidPoll)
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
	assert.ErrorIs(t, err, ErrInvalidLogFormat)
}

func TestValidateDepthBounds(t *testing.T) {
	cfg := Default()
	cfg.MaxDepth = 0
	assert.NoError(t, cfg.Validate())
	cfg.MaxDepth = MaxTreeDepth + 1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidDepth)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`{"max_depth": 8, "astar": true, "poll_interval": "50ms", "log_level": "batch=debug,warn"}`))
	require.NoError(t, err)

	want := Default()
	want.MaxDepth = 8
	want.AStar = true
	want.PollInterval = Duration(50 * time.Millisecond)
	want.LogLevel = "batch=debug,warn"
	assert.Equal(t, want, cfg)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"unknown field", `{"depth": 3}`, nil},
		{"bad duration", `{"poll_interval": "soon"}`, nil},
		{"numeric duration", `{"poll_interval": 5}`, nil},
		{"invalid value", `{"route_cache_size": -1}`, ErrInvalidCacheSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nav.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"route_cache_size": 0, "log_format": "json"}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.RouteCacheSize)
	assert.Equal(t, "json", cfg.LogFormat)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDurationJSON(t *testing.T) {
	b, err := json.Marshal(Duration(1500 * time.Millisecond))
	require.NoError(t, err)
	assert.JSONEq(t, `"1.5s"`, string(b))

	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"2m"`), &d))
	assert.Equal(t, Duration(2*time.Minute), d)
}
