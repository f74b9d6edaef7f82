package soul

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Pointer smoothing, as fractions per 60 fps frame.
const (
	pointerMixActive = 0.18
	pointerMixIdle   = 0.06
	tiltMix          = 0.08
	followMix        = 0.06

	tiltAmount   = 0.25
	followAmount = 0.8
	scaleBoost   = 0.32
	spinBoost    = 0.6
)

type pointer struct {
	active           bool
	x, y             float64
	targetX, targetY float64
}

// SetPointer records the host pointer position, each axis in [-1, 1] with
// y pointing up. A NaN coordinate is ignored.
func (e *Engine) SetPointer(x, y float64) {
	if math.IsNaN(x) || math.IsNaN(y) {
		e.log.Debug("ignoring pointer with NaN coordinate", "x", x, "y", y)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pointer.active = true
	e.pointer.targetX = mgl64.Clamp(x, -1, 1)
	e.pointer.targetY = mgl64.Clamp(y, -1, 1)
}

// ReleasePointer lets the soul drift back to center.
func (e *Engine) ReleasePointer() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pointer.active = false
	e.pointer.targetX = 0
	e.pointer.targetY = 0
}

// frameMix converts a per-frame mix at 60 fps to one for a tick of delta
// seconds.
func frameMix(mix, delta float64) float64 {
	return 1 - math.Pow(1-mix, 60*delta)
}

func (e *Engine) updatePointerLocked(d float64) {
	p := &e.pointer
	mix := pointerMixIdle
	if p.active {
		mix = pointerMixActive
	}
	m := frameMix(mix, d)
	p.x += (p.targetX - p.x) * m
	p.y += (p.targetY - p.y) * m
	strength := math.Min(1, math.Hypot(p.x, p.y))

	tr := &e.transform
	tr.RotationZ = math.Mod(tr.RotationZ+d*(e.params.Spin+strength*spinBoost), 2*math.Pi)

	tilt := frameMix(tiltMix, d)
	tr.RotationX += (p.y*tiltAmount - tr.RotationX) * tilt
	tr.RotationY += (p.x*tiltAmount - tr.RotationY) * tilt

	follow := frameMix(followMix, d)
	tr.Scale += (1 + strength*scaleBoost - tr.Scale) * follow
	tr.OffsetX += (p.x*followAmount - tr.OffsetX) * follow
	tr.OffsetY += (p.y*followAmount - tr.OffsetY) * follow
}
