// Package config provides configuration helpers for awa-soul commands.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("config: invalid value")

// Default server configuration.
const (
	DefaultPort              = "8090"
	DefaultPointCount        = 2000
	DefaultTickRate          = 16 * time.Millisecond
	DefaultFrameEvery        = 2
	DefaultNoise             = "simplex"
	DefaultSeed              = 7
	DefaultAutoCycleInterval = 18 * time.Second
	DefaultLogLevel          = "info"
	DefaultState             = "human"
)

// Config holds all configuration for the soul server.
// Flag parsing is done in cmd/soul/main.go; this struct is data only.
type Config struct {
	// Port is the HTTP/WebSocket listen port.
	Port string

	// PointCount is N, fixed for the lifetime of the engine.
	PointCount int

	// TickRate is the simulation tick period (~60Hz).
	TickRate time.Duration

	// FrameEvery publishes one binary frame per this many ticks.
	FrameEvery int

	// ShapesDir holds optional JSON shape files overriding the built-ins.
	ShapesDir string

	// Noise selects the scalar noise source ("simplex", "perlin").
	Noise string
	Seed  int64

	// Auto-cycle between the two primary states.
	AutoCycle         bool
	AutoCycleInterval time.Duration

	DefaultState string
	LogLevel     string
}

// Default returns sensible defaults for the soul server.
func Default() Config {
	return Config{
		Port:              DefaultPort,
		PointCount:        DefaultPointCount,
		TickRate:          DefaultTickRate,
		FrameEvery:        DefaultFrameEvery,
		Noise:             DefaultNoise,
		Seed:              DefaultSeed,
		AutoCycleInterval: DefaultAutoCycleInterval,
		DefaultState:      DefaultState,
		LogLevel:          DefaultLogLevel,
	}
}

// RegisterFlags binds every field to a flag on fs, using c's current values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Port, "port", c.Port, "HTTP/WebSocket listen port")
	fs.IntVar(&c.PointCount, "points", c.PointCount, "number of particles (fixed)")
	fs.DurationVar(&c.TickRate, "tick", c.TickRate, "simulation tick period")
	fs.IntVar(&c.FrameEvery, "frame-every", c.FrameEvery, "publish a frame every N ticks")
	fs.StringVar(&c.ShapesDir, "shapes", c.ShapesDir, "directory of JSON shape files")
	fs.StringVar(&c.Noise, "noise", c.Noise, "noise source: simplex or perlin")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "noise seed")
	fs.BoolVar(&c.AutoCycle, "autocycle", c.AutoCycle, "start with auto-cycle enabled")
	fs.DurationVar(&c.AutoCycleInterval, "autocycle-interval", c.AutoCycleInterval, "auto-cycle interval")
	fs.StringVar(&c.DefaultState, "state", c.DefaultState, "initial state")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
}

// LoadEnv applies SOUL_* environment overrides.
// Call this after flag parsing; malformed numbers are reported, not ignored.
func (c *Config) LoadEnv() error {
	if v := os.Getenv("SOUL_PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("SOUL_SHAPES_DIR"); v != "" {
		c.ShapesDir = v
	}
	if v := os.Getenv("SOUL_NOISE"); v != "" {
		c.Noise = v
	}
	if v := os.Getenv("SOUL_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SOUL_STATE"); v != "" {
		c.DefaultState = v
	}
	if v := os.Getenv("SOUL_POINTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SOUL_POINTS: %w", err)
		}
		c.PointCount = n
	}
	if v := os.Getenv("SOUL_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SOUL_SEED: %w", err)
		}
		c.Seed = n
	}
	if v := os.Getenv("SOUL_AUTOCYCLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SOUL_AUTOCYCLE: %w", err)
		}
		c.AutoCycle = b
	}
	if v := os.Getenv("SOUL_AUTOCYCLE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SOUL_AUTOCYCLE_INTERVAL: %w", err)
		}
		c.AutoCycleInterval = d
	}
	return nil
}

// Validate checks ranges.
func (c Config) Validate() error {
	switch {
	case c.Port == "":
		return fmt.Errorf("%w: empty port", ErrInvalid)
	case c.PointCount <= 0:
		return fmt.Errorf("%w: points must be positive, got %d", ErrInvalid, c.PointCount)
	case c.TickRate <= 0:
		return fmt.Errorf("%w: tick must be positive, got %v", ErrInvalid, c.TickRate)
	case c.FrameEvery <= 0:
		return fmt.Errorf("%w: frame-every must be positive, got %d", ErrInvalid, c.FrameEvery)
	case c.AutoCycleInterval <= 0:
		return fmt.Errorf("%w: autocycle-interval must be positive, got %v", ErrInvalid, c.AutoCycleInterval)
	}
	return nil
}

// ListenAddr returns the Fiber listen address.
func (c Config) ListenAddr() string {
	return ":" + c.Port
}
