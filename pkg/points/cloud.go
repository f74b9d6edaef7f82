// Package points holds the canonical per-point simulation state of the soul:
// positions, velocities, target positions and colors for a fixed N.
//
// The Cloud is not safe for concurrent use; the engine serializes access.
// Renderers never see the live arrays, only Snapshots.
package points

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/teslashibe/awa-soul/pkg/noise"
	"github.com/teslashibe/awa-soul/pkg/shapes"
)

// Hash salts for the initial shell.
const (
	saltShellU     = 401.0
	saltShellTheta = 409.0
	saltShellR     = 419.0
)

// Init describes the initial distribution: a thick spherical shell between
// Inner and Outer radius, with radius biased by Power, and the color
// gradient curve Gamma.
type Init struct {
	Inner float64
	Outer float64
	Power float64
	Gamma float64
}

// DefaultInit returns the shell used by the soul at startup.
func DefaultInit() Init {
	return Init{
		Inner: 0.9,
		Outer: 1.6,
		Power: 0.6,
		Gamma: 1.35,
	}
}

// Cloud is the point cloud state. All arrays have length Len().
type Cloud struct {
	positions  []mgl64.Vec3
	velocities []mgl64.Vec3
	targets    []mgl64.Vec3
	colors     []colorful.Color
	mixes      []float64
}

// New creates an n-point cloud sampled from shell. Velocities start at zero
// and each point's target is its own start position.
func New(n int, shell Init) *Cloud {
	if n < 0 {
		n = 0
	}
	c := &Cloud{
		positions:  make([]mgl64.Vec3, n),
		velocities: make([]mgl64.Vec3, n),
		targets:    make([]mgl64.Vec3, n),
		colors:     make([]colorful.Color, n),
		mixes:      make([]float64, n),
	}

	for i := 0; i < n; i++ {
		fi := float64(i)
		u := noise.Hash(fi, saltShellU)*2 - 1
		theta := noise.Hash(fi, saltShellTheta) * 2 * math.Pi
		r := shell.Inner + (shell.Outer-shell.Inner)*math.Pow(noise.Hash(fi, saltShellR), shell.Power)
		s := math.Sqrt(math.Max(0, 1-u*u))

		p := mgl64.Vec3{s * math.Cos(theta), u, s * math.Sin(theta)}.Mul(r)
		c.positions[i] = p
		c.targets[i] = p
		c.mixes[i] = math.Pow(fi/float64(n), shell.Gamma)
	}
	return c
}

// Len returns N.
func (c *Cloud) Len() int {
	return len(c.positions)
}

// SnapTo jumps every point onto t. Targets follow and velocities reset.
// A target of a different length is resampled.
func (c *Cloud) SnapTo(t *shapes.Target) {
	coords := c.fit(t)
	copy(c.positions, coords)
	copy(c.targets, coords)
	for i := range c.velocities {
		c.velocities[i] = mgl64.Vec3{}
	}
}

// SetTarget changes only the target buffer; points move there over
// subsequent ticks.
func (c *Cloud) SetTarget(t *shapes.Target) {
	copy(c.targets, c.fit(t))
}

func (c *Cloud) fit(t *shapes.Target) []mgl64.Vec3 {
	coords := t.Coordinates()
	if len(coords) != c.Len() {
		coords = shapes.Resample(coords, c.Len(), 0)
	}
	return coords
}

// Recolor assigns color[i] = a blended toward b by the point's gradient mix.
func (c *Cloud) Recolor(a, b colorful.Color) {
	for i, m := range c.mixes {
		c.colors[i] = a.BlendRgb(b, m)
	}
}

// Position returns point i's position.
func (c *Cloud) Position(i int) mgl64.Vec3 { return c.positions[i] }

// Velocity returns point i's velocity.
func (c *Cloud) Velocity(i int) mgl64.Vec3 { return c.velocities[i] }

// Target returns point i's target position.
func (c *Cloud) Target(i int) mgl64.Vec3 { return c.targets[i] }

// Color returns point i's color.
func (c *Cloud) Color(i int) colorful.Color { return c.colors[i] }

// Mix returns point i's stable color gradient factor.
func (c *Cloud) Mix(i int) float64 { return c.mixes[i] }

// Set stores a new position and velocity for point i.
func (c *Cloud) Set(i int, position, velocity mgl64.Vec3) {
	c.positions[i] = position
	c.velocities[i] = velocity
}

// Positions exposes the position buffer for the stepper. Callers must not
// retain it past the current tick.
func (c *Cloud) Positions() []mgl64.Vec3 { return c.positions }

// Velocities exposes the velocity buffer for the stepper.
func (c *Cloud) Velocities() []mgl64.Vec3 { return c.velocities }

// Targets exposes the target buffer for the stepper.
func (c *Cloud) Targets() []mgl64.Vec3 { return c.targets }
