package style

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultEasingBase is the per-60fps-frame remainder used by Easing.
const DefaultEasingBase = 0.0007

// Easing returns the fraction of the remaining distance to cover this tick.
// It depends only on elapsed time, never on how many ticks produced it.
func Easing(base, delta float64) float64 {
	return 1 - math.Pow(base, 60*delta)
}

// SettleMix returns how far a state entered at changedAt has settled by now,
// in [0, 1]. A zero settle duration is settled immediately.
func SettleMix(now, changedAt, settle float64) float64 {
	if settle <= 0 {
		return 1
	}
	return mgl64.Clamp((now-changedAt)/settle, 0, 1)
}

// Params are the live style values for one tick.
type Params struct {
	State        string         `json:"state"`
	SettleMix    float64        `json:"settleMix"`
	WiggleSpeed  float64        `json:"wiggleSpeed"`
	WigglePower  float64        `json:"wigglePower"`
	ParticleSize float64        `json:"particleSize"`
	Scale        float64        `json:"scale"`
	Spin         float64        `json:"spin"`
	ColorA       colorful.Color `json:"-"`
	ColorB       colorful.Color `json:"-"`
}

// Interpolator moves the live style toward the current theme.
//
// Scalar parameters interpolate linearly from Start to End over the theme's
// settle duration. Colors and spin ease exponentially toward the theme.
type Interpolator struct {
	theme     Theme
	changedAt float64
	base      float64

	spin   float64
	colorA colorful.Color
	colorB colorful.Color
}

// NewInterpolator starts fully settled on theme.
func NewInterpolator(theme Theme, now float64) *Interpolator {
	ip := &Interpolator{base: DefaultEasingBase}
	ip.Snap(theme, now)
	return ip
}

// Theme returns the theme being approached.
func (ip *Interpolator) Theme() Theme {
	return ip.theme
}

// ChangedAt returns the time the current theme was entered.
func (ip *Interpolator) ChangedAt() float64 {
	return ip.changedAt
}

// Transition starts settling toward theme from now. Colors and spin keep
// their current values and ease from there.
func (ip *Interpolator) Transition(theme Theme, now float64) {
	ip.theme = theme
	ip.changedAt = now
}

// Snap switches to theme with no animation: settle-based parameters are at
// their End values and colors and spin jump to the theme.
func (ip *Interpolator) Snap(theme Theme, now float64) {
	ip.theme = theme
	ip.changedAt = now - theme.SettleDuration
	ip.spin = theme.Spin
	ip.colorA = theme.ColorA
	ip.colorB = theme.ColorB
}

// Update advances the eased values by delta seconds and returns the
// parameters at time now.
func (ip *Interpolator) Update(now, delta float64) Params {
	e := Easing(ip.base, delta)
	t := ip.theme

	ip.spin += (t.Spin - ip.spin) * e
	ip.colorA = ip.colorA.BlendRgb(t.ColorA, e)
	ip.colorB = ip.colorB.BlendRgb(t.ColorB, e)

	mix := SettleMix(now, ip.changedAt, t.SettleDuration)
	return Params{
		State:        t.Name,
		SettleMix:    mix,
		WiggleSpeed:  t.WiggleSpeed,
		WigglePower:  lerp(t.WigglePowerStart, t.WigglePowerEnd, mix),
		ParticleSize: lerp(t.ParticleSizeStart, t.ParticleSizeEnd, mix),
		Scale:        lerp(t.ScaleStart, t.ScaleEnd, mix),
		Spin:         ip.spin,
		ColorA:       ip.colorA,
		ColorB:       ip.colorB,
	}
}

func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}
