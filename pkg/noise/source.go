package noise

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// ErrUnknownSource is returned by NewSource for an unrecognized backend name.
var ErrUnknownSource = errors.New("noise: unknown source")

// Source is a smooth scalar noise function of three spatial axes plus time.
// Output is roughly in [-1, 1].
type Source interface {
	Eval4(x, y, z, w float64) float64
}

// Backend names accepted by NewSource.
const (
	Simplex = "simplex"
	Perlin  = "perlin"
)

// NewSource builds a seeded noise source by backend name.
func NewSource(name string, seed int64) (Source, error) {
	switch strings.ToLower(name) {
	case "", Simplex:
		return opensimplex.New(seed), nil
	case Perlin:
		return NewPerlinSource(seed), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
}

// PerlinSource adapts 3D Perlin noise to a 4D source by sliding the sample
// point along a fixed diagonal as w advances.
type PerlinSource struct {
	p *perlin.Perlin
}

// NewPerlinSource creates a Perlin source with the standard parameters.
func NewPerlinSource(seed int64) *PerlinSource {
	// Standard Perlin parameters
	alpha, beta, n := 2.0, 2.0, int32(3)
	return &PerlinSource{p: perlin.NewPerlin(alpha, beta, n, seed)}
}

// Eval4 implements Source.
func (s *PerlinSource) Eval4(x, y, z, w float64) float64 {
	return s.p.Noise3D(x+w*0.7071, y-w*0.5303, z+w*0.4677)
}
