// Package kinematics advances every point of the cloud by one tick.
//
// Each point combines three motions: a seek toward its target whose speed
// saturates beyond one unit of distance, an overshoot term that carries the
// previous velocity forward through a slow curl-noise flow, and a wiggle
// from a second, rotated curl-noise sample that changes direction but never
// speed.
package kinematics

import (
	"math"
	"runtime"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/awa-soul/pkg/noise"
	"github.com/teslashibe/awa-soul/pkg/points"
)

// MaxDelta bounds a single tick so a stall cannot blow up the simulation.
const MaxDelta = 1.0 / 30

const (
	seekEpsilon   = 1e-5
	seekSpeed     = 0.04
	flowTimeScale = 0.2
	flowStrength  = 1.2
)

// Config holds the stepper tunables.
type Config struct {
	// Noise sampling
	NoiseScale    float64 // Position scale for the overshoot flow
	WiggleScale   float64 // Position scale for the wiggle sample
	RotationSpeed float64 // Radians per second the wiggle sample rotates about Y

	// Parallelism
	Workers  int // Goroutines per tick; 0 means GOMAXPROCS
	MinChunk int // Clouds smaller than this run on the calling goroutine
}

// DefaultConfig returns the tuning used by the soul.
func DefaultConfig() Config {
	return Config{
		NoiseScale:    0.65,
		WiggleScale:   1.1,
		RotationSpeed: 0.1,

		Workers:  0,
		MinChunk: 512,
	}
}

// Frame carries the per-tick inputs shared by every point.
type Frame struct {
	Delta       float64 // Seconds since the last tick, clamped by Step
	Elapsed     float64 // Simulation time in seconds
	WigglePower float64
	WiggleSpeed float64
}

// ClampDelta limits delta to [0, MaxDelta].
func ClampDelta(delta float64) float64 {
	if math.IsNaN(delta) || delta < 0 {
		return 0
	}
	return math.Min(delta, MaxDelta)
}

// Stepper applies the per-point update.
type Stepper struct {
	field *noise.Field
	cfg   Config
}

// NewStepper creates a stepper sampling field.
func NewStepper(field *noise.Field, cfg Config) *Stepper {
	if cfg.MinChunk <= 0 {
		cfg.MinChunk = DefaultConfig().MinChunk
	}
	return &Stepper{field: field, cfg: cfg}
}

// Step advances every point of c by one tick. Points are independent within
// a tick, so large clouds are split across goroutines; Step returns once all
// of them are done.
func (s *Stepper) Step(c *points.Cloud, f Frame) {
	f.Delta = ClampDelta(f.Delta)

	n := c.Len()
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if n < s.cfg.MinChunk || workers == 1 {
		s.stepRange(c, f, 0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	if chunk < s.cfg.MinChunk/2 {
		chunk = s.cfg.MinChunk / 2
	}

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			s.stepRange(c, f, lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

func (s *Stepper) stepRange(c *points.Cloud, f Frame, lo, hi int) {
	positions, velocities, targets := c.Positions(), c.Velocities(), c.Targets()
	for i := lo; i < hi; i++ {
		positions[i], velocities[i] = s.StepPoint(i, positions[i], velocities[i], targets[i], f)
	}
}

// StepPoint returns the new position and velocity of point i. f.Delta is
// used as given.
func (s *Stepper) StepPoint(i int, p, v, target mgl64.Vec3, f Frame) (mgl64.Vec3, mgl64.Vec3) {
	fi := float64(i)
	step := f.Delta * 60

	// Overshoot: previous velocity redirected by the flow field.
	var overshoot mgl64.Vec3
	if v != (mgl64.Vec3{}) {
		flow := s.field.CurlAt(p.Mul(s.cfg.NoiseScale), f.Elapsed*flowTimeScale).
			Mul((noise.Hash(fi, 0)*0.05 + 0.6) * flowStrength)
		overshoot = mgl64.Vec3{flow[0] * v[0], flow[1] * v[1], flow[2] * v[2]}
	}

	// Seek: saturates at one unit of distance, zero at the target.
	toTarget := target.Sub(p)
	dist := toTarget.Len()
	var seek mgl64.Vec3
	if dist > seekEpsilon {
		speed := mgl64.Clamp(dist, 0, 1) * seekSpeed * (noise.Hash(fi, 1)*0.35 + 0.6)
		seek = toTarget.Mul(speed / dist)
	}

	combined := overshoot.Add(seek)
	combinedLen := math.Max(combined.Len(), noise.MinMagnitude)

	sum := combined
	if f.WigglePower != 0 {
		q := noise.RotateY(p.Mul(s.cfg.WiggleScale), f.Elapsed*s.cfg.RotationSpeed)
		wiggle := s.field.CurlAt(q, f.Elapsed*f.WiggleSpeed).Mul(f.WigglePower)
		sum = sum.Add(wiggle)
	}

	// Keep the combined speed; the wiggle only bends the direction.
	newVel := sum.Mul(combinedLen / math.Max(sum.Len(), noise.MinMagnitude))
	newPos := p.Add(newVel.Mul(step))

	if !finite(newPos) || !finite(newVel) {
		return p, mgl64.Vec3{}
	}
	return newPos, newVel
}

func finite(v mgl64.Vec3) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
