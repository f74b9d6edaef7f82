package soul

import (
	"time"

	"github.com/teslashibe/awa-soul/pkg/kinematics"
	"github.com/teslashibe/awa-soul/pkg/noise"
	"github.com/teslashibe/awa-soul/pkg/points"
	"github.com/teslashibe/awa-soul/pkg/shapes"
	"github.com/teslashibe/awa-soul/pkg/style"
)

// Config holds all tunable parameters of the engine.
type Config struct {
	// Cloud
	Points int         // Fixed point count N
	Shell  points.Init // Initial distribution before the first target

	// Noise
	Noise string // Noise backend name, see noise.NewSource
	Seed  int64

	// States
	InitialState string                 // State shown at startup
	CycleStates  [2]string              // The pair TRIGGER toggles between
	Themes       map[string]style.Theme // Visual settings per state

	// Auto-cycle
	AutoCycle         bool          // Start with auto-cycle enabled
	AutoCycleInterval time.Duration // Time between automatic toggles

	// Motion
	Kinematics kinematics.Config
}

// DefaultConfig returns the configuration of the embedded soul.
func DefaultConfig() Config {
	return Config{
		Points: 2000,
		Shell:  points.DefaultInit(),

		Noise: noise.Simplex,
		Seed:  7,

		InitialState: shapes.Human,
		CycleStates:  [2]string{shapes.Human, shapes.Mask},
		Themes:       style.DefaultThemes(),

		AutoCycle:         false,
		AutoCycleInterval: 18 * time.Second,

		Kinematics: kinematics.DefaultConfig(),
	}
}
