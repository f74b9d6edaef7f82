// Package style holds the per-state visual themes and eases the live
// parameters from one theme to the next.
package style

import (
	"fmt"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// Theme is the immutable visual configuration of one named state.
type Theme struct {
	Name string

	// SettleDuration is the time in seconds over which the Start values
	// move to the End values after the state is entered.
	SettleDuration float64

	WiggleSpeed      float64
	WigglePowerStart float64
	WigglePowerEnd   float64

	ParticleSizeStart float64
	ParticleSizeEnd   float64

	ScaleStart float64
	ScaleEnd   float64

	// Spin is the idle rotation speed around Z in radians per second.
	Spin float64

	ColorA colorful.Color
	ColorB colorful.Color
}

// themeSpec is the compact form the defaults are written in.
type themeSpec struct {
	radius, size, spin float64
	settle             float64
	wiggleSpeed        float64
	wiggleStart        float64
	wiggleEnd          float64
	colorA, colorB     string
}

var defaultSpecs = map[string]themeSpec{
	"light": {radius: 0.82, size: 3.1, spin: 0.22, settle: 2.4, wiggleSpeed: 0.35, wiggleStart: 0.045, wiggleEnd: 0.012, colorA: "#FDF1DF", colorB: "#FF9EB1"},
	"human": {radius: 1.04, size: 3.4, spin: 0.34, settle: 3.2, wiggleSpeed: 0.5, wiggleStart: 0.08, wiggleEnd: 0.02, colorA: "#FFD3BA", colorB: "#FF6F91"},
	"mask":  {radius: 1.18, size: 3.6, spin: 0.46, settle: 3.6, wiggleSpeed: 0.65, wiggleStart: 0.1, wiggleEnd: 0.03, colorA: "#B5CFFF", colorB: "#FE7FBF"},
	"globe": {radius: 1.02, size: 3.2, spin: 0.3, settle: 3.0, wiggleSpeed: 0.45, wiggleStart: 0.06, wiggleEnd: 0.016, colorA: "#9EDBFF", colorB: "#FFC3A0"},
}

// DefaultThemes returns the built-in themes keyed by state name.
func DefaultThemes() map[string]Theme {
	themes := make(map[string]Theme, len(defaultSpecs))
	for name, s := range defaultSpecs {
		themes[name] = Theme{
			Name:              name,
			SettleDuration:    s.settle,
			WiggleSpeed:       s.wiggleSpeed,
			WigglePowerStart:  s.wiggleStart,
			WigglePowerEnd:    s.wiggleEnd,
			ParticleSizeStart: s.size * 1.15,
			ParticleSizeEnd:   s.size,
			ScaleStart:        s.radius * 1.08,
			ScaleEnd:          s.radius,
			Spin:              s.spin,
			ColorA:            mustHex(s.colorA),
			ColorB:            mustHex(s.colorB),
		}
	}
	return themes
}

// Names returns the theme names in sorted order.
func Names(themes map[string]Theme) []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(fmt.Sprintf("style: bad theme color %q: %v", s, err))
	}
	return c
}
