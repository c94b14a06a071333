// Package logger provides per-subsystem structured loggers.
//
// Levels can be set through the environment:
//   - QUADNAV_LOG_LEVEL: comma-separated subsystem=level pairs plus an
//     optional default level, e.g. batch=debug,quadtree=warn,info
//   - QUADNAV_LOG_FORMAT: text (default) or json
package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogFormat selects the handler used for output.
type LogFormat int

const (
	FormatText LogFormat = iota
	FormatJSON
)

// Config holds the resolved logging configuration.
type Config struct {
	DefaultLevel    slog.Level
	SubsystemLevels map[string]slog.Level
	Format          LogFormat
}

// LevelForSubsystem returns the configured level for subsystem.
func (c *Config) LevelForSubsystem(subsystem string) slog.Level {
	if level, ok := c.SubsystemLevels[subsystem]; ok {
		return level
	}
	return c.DefaultLevel
}

var (
	configMu    sync.Mutex
	configCache *Config
)

// ConfigFromEnv returns the configuration parsed from the environment on
// first use, or the one installed by Configure.
func ConfigFromEnv() *Config {
	configMu.Lock()
	defer configMu.Unlock()
	if configCache == nil {
		configCache = parseConfig(os.Getenv("QUADNAV_LOG_LEVEL"), os.Getenv("QUADNAV_LOG_FORMAT"))
	}
	return configCache
}

// Configure replaces the active configuration with the given level spec and
// format and re-levels every logger created so far. The format only applies
// to loggers created afterwards.
func Configure(levelSpec, format string) {
	cfg := parseConfig(levelSpec, format)

	configMu.Lock()
	configCache = cfg
	configMu.Unlock()

	handlers.Range(func(key, value any) bool {
		value.(*subsystemHandler).SetLevel(cfg.LevelForSubsystem(key.(string)))
		return true
	})
}

// ValidLevelSpec reports whether every entry of a level spec parses.
func ValidLevelSpec(spec string) bool {
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, name, ok := strings.Cut(part, "="); ok {
			part = name
		}
		if _, ok := parseLevel(strings.TrimSpace(part)); !ok {
			return false
		}
	}
	return true
}

func parseConfig(levelSpec, format string) *Config {
	cfg := &Config{
		DefaultLevel:    slog.LevelInfo,
		SubsystemLevels: make(map[string]slog.Level),
		Format:          FormatText,
	}
	parseLevelConfig(cfg, levelSpec)
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		cfg.Format = FormatJSON
	}
	return cfg
}

// parseLevelConfig reads subsystem=level,subsystem=level,default.
func parseLevelConfig(cfg *Config, levelStr string) {
	for _, part := range strings.Split(levelStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if subsystem, levelName, ok := strings.Cut(part, "="); ok {
			if level, ok := parseLevel(strings.TrimSpace(levelName)); ok {
				cfg.SubsystemLevels[strings.TrimSpace(subsystem)] = level
			}
			continue
		}
		if level, ok := parseLevel(part); ok {
			cfg.DefaultLevel = level
		}
	}
}

func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// ResetConfig drops the cached configuration. Tests only.
func ResetConfig() {
	configMu.Lock()
	configCache = nil
	configMu.Unlock()
}
