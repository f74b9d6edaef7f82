// Package noise provides the deterministic per-point hash and the
// time-varying curl-noise flow field that give each particle its motion.
package noise

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultEpsilon is the finite-difference step used by Curl.
	DefaultEpsilon = 0.0015

	// MinMagnitude floors vector lengths before normalizing.
	MinMagnitude = 1e-6
)

// Offsets decorrelating the three potential components.
var (
	potentialB = mgl64.Vec3{31.416, -47.853, 12.793}
	potentialC = mgl64.Vec3{-233.145, -113.408, 185.31}
)

// Hash returns a stable pseudo-random value in [0, 1) for (index, offset).
// It is a pure function of its inputs and never varies with time.
func Hash(index, offset float64) float64 {
	h := splitmix64(math.Float64bits(index) ^ splitmix64(math.Float64bits(offset)+0x9e3779b97f4a7c15))
	return float64(h>>11) / (1 << 53)
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// RotateY rotates v about the vertical axis by angle radians.
func RotateY(v mgl64.Vec3, angle float64) mgl64.Vec3 {
	return mgl64.Rotate3DY(angle).Mul3x1(v)
}

// SafeNormalize scales v to unit length, flooring the length at MinMagnitude.
// A zero vector stays zero.
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := math.Max(v.Len(), MinMagnitude)
	return v.Mul(1 / l)
}

// Field is a divergence-free vector field derived from a scalar Source.
type Field struct {
	src Source
	eps float64
}

// NewField wraps src with the default finite-difference step.
func NewField(src Source) *Field {
	return &Field{src: src, eps: DefaultEpsilon}
}

// Curl samples the normalized curl of a three-component noise potential at
// (x, y, z). w is usually time and makes the flow evolve.
func (f *Field) Curl(x, y, z, w float64) mgl64.Vec3 {
	e := f.eps
	inv := 1 / (2 * e)

	// Each partial derivative needs only one potential component.
	dCdy := (f.c(x, y+e, z, w) - f.c(x, y-e, z, w)) * inv
	dBdz := (f.b(x, y, z+e, w) - f.b(x, y, z-e, w)) * inv
	dAdz := (f.a(x, y, z+e, w) - f.a(x, y, z-e, w)) * inv
	dCdx := (f.c(x+e, y, z, w) - f.c(x-e, y, z, w)) * inv
	dBdx := (f.b(x+e, y, z, w) - f.b(x-e, y, z, w)) * inv
	dAdy := (f.a(x, y+e, z, w) - f.a(x, y-e, z, w)) * inv

	return SafeNormalize(mgl64.Vec3{dCdy - dBdz, dAdz - dCdx, dBdx - dAdy})
}

// CurlAt is Curl for a vector argument.
func (f *Field) CurlAt(p mgl64.Vec3, w float64) mgl64.Vec3 {
	return f.Curl(p[0], p[1], p[2], w)
}

func (f *Field) a(x, y, z, w float64) float64 {
	return f.src.Eval4(x, y, z, w)
}

func (f *Field) b(x, y, z, w float64) float64 {
	return f.src.Eval4(x+potentialB[0], y+potentialB[1], z+potentialB[2], w)
}

func (f *Field) c(x, y, z, w float64) float64 {
	return f.src.Eval4(x+potentialC[0], y+potentialC[1], z+potentialC[2], w)
}
