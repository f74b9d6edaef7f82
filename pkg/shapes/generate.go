package shapes

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/awa-soul/pkg/noise"
)

// GoldenAngle is π(3 - √5), the azimuth step of a Fibonacci spiral.
var GoldenAngle = math.Pi * (3 - math.Sqrt(5))

// Hash salts, one per independent per-point decision.
const (
	saltResample = 101.0
	saltSurface  = 211.0
	saltPart     = 307.0
)

// GenerateSphere lays out n points quasi-uniformly on a sphere of the given
// radius using a golden-angle spiral.
func GenerateSphere(n int, radius float64) []mgl64.Vec3 {
	if n <= 0 {
		return nil
	}
	points := make([]mgl64.Vec3, n)
	offset := 2 / float64(n)
	for i := range points {
		y := float64(i)*offset - 1 + offset/2
		r := math.Sqrt(math.Max(0, 1-y*y))
		phi := float64(i) * GoldenAngle
		points[i] = mgl64.Vec3{math.Cos(phi) * r, y, math.Sin(phi) * r}.Mul(radius)
	}
	return points
}

// GenerateDisc lays out n points on a flat golden-angle disc facing the
// viewer, with a faint sinusoidal depth ripple.
func GenerateDisc(n int, spread float64) []mgl64.Vec3 {
	points := make([]mgl64.Vec3, n)
	for i := range points {
		radius := math.Sqrt(float64(i)+0.5) * spread
		angle := float64(i) * GoldenAngle
		points[i] = mgl64.Vec3{
			math.Cos(angle) * radius,
			math.Sin(angle) * radius,
			math.Sin(float64(i)*0.02) * 0.05,
		}
	}
	return points
}

// GenerateBust builds a head-and-shoulders silhouette: a head sphere, a neck
// and the upper half of a torso ellipsoid.
func GenerateBust(n int) []mgl64.Vec3 {
	points := make([]mgl64.Vec3, n)
	for i := range points {
		part := noise.Hash(float64(i), saltPart)
		dir := unitSphere(i, saltSurface)
		switch {
		case part < 0.38:
			// head
			points[i] = mgl64.Vec3{dir[0] * 0.42, 1.05 + dir[1]*0.5, dir[2] * 0.45}
		case part < 0.45:
			// neck
			a := noise.Hash(float64(i), saltSurface+1) * 2 * math.Pi
			h := noise.Hash(float64(i), saltSurface+2)
			points[i] = mgl64.Vec3{math.Cos(a) * 0.18, 0.35 + h*0.25, math.Sin(a) * 0.16}
		default:
			// shoulders and chest: upper half of a wide ellipsoid
			up := mgl64.Vec3{dir[0], math.Abs(dir[1]), dir[2]}
			points[i] = mgl64.Vec3{up[0] * 1.15, -0.75 + up[1]*1.05, up[2] * 0.45}
		}
	}
	return points
}

// GenerateMask builds a face shell: the front half of an ellipsoid with two
// eye openings and a mouth slit.
func GenerateMask(n int) []mgl64.Vec3 {
	points := make([]mgl64.Vec3, 0, n)
	for k := 0; len(points) < n && k < n*64; k++ {
		dir := unitSphere(k, saltSurface)
		if dir[2] < 0 {
			dir[2] = -dir[2]
		}
		p := mgl64.Vec3{dir[0] * 0.82, dir[1] * 1.08, dir[2] * 0.5}
		if maskOpening(p) {
			continue
		}
		points = append(points, p)
	}
	if len(points) < n {
		points = Resample(points, n, saltResample)
	}
	return points
}

func maskOpening(p mgl64.Vec3) bool {
	for _, ex := range []float64{-0.3, 0.3} {
		dx := (p[0] - ex) / 0.15
		dy := (p[1] - 0.25) / 0.09
		if dx*dx+dy*dy < 1 {
			return true
		}
	}
	return math.Abs(p[0]) < 0.24 && math.Abs(p[1]+0.48) < 0.035
}

// unitSphere returns a stable uniformly distributed direction for index i.
func unitSphere(i int, salt float64) mgl64.Vec3 {
	u := noise.Hash(float64(i), salt)*2 - 1
	theta := noise.Hash(float64(i), salt+0.5) * 2 * math.Pi
	s := math.Sqrt(math.Max(0, 1-u*u))
	return mgl64.Vec3{s * math.Cos(theta), u, s * math.Sin(theta)}
}

// Resample maps src onto exactly n points. Index i keeps src[i] when it
// exists; otherwise it picks a stable pseudo-random source point, so the
// extra points interleave across the whole shape instead of piling up at the
// low indices.
func Resample(src []mgl64.Vec3, n int, salt float64) []mgl64.Vec3 {
	if len(src) == 0 || n <= 0 {
		return nil
	}
	out := make([]mgl64.Vec3, n)
	for i := range out {
		if i < len(src) {
			out[i] = src[i]
			continue
		}
		j := int(noise.Hash(float64(i), salt) * float64(len(src)))
		if j >= len(src) {
			j = len(src) - 1
		}
		out[i] = src[j]
	}
	return out
}

// Normalize returns points centered on their bounding-box center and scaled
// so the largest axis extent equals size. Degenerate (single point) input is
// only centered.
func Normalize(points []mgl64.Vec3, size float64) []mgl64.Vec3 {
	if len(points) == 0 {
		return nil
	}
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		for a := 0; a < 3; a++ {
			lo[a] = math.Min(lo[a], p[a])
			hi[a] = math.Max(hi[a], p[a])
		}
	}
	center := lo.Add(hi).Mul(0.5)
	extent := hi.Sub(lo)
	maxExtent := math.Max(extent[0], math.Max(extent[1], extent[2]))

	scale := 1.0
	if maxExtent > 1e-12 {
		scale = size / maxExtent
	}

	out := make([]mgl64.Vec3, len(points))
	for i, p := range points {
		out[i] = p.Sub(center).Mul(scale)
	}
	return out
}

// BuiltIn returns the procedural shapes, each with n points and normalized.
func BuiltIn(n int) []Shape {
	return []Shape{
		{Name: Globe, Description: "golden-angle sphere", Points: GenerateSphere(n, ReferenceSize/2)},
		{Name: Light, Description: "luminous disc", Points: Normalize(GenerateDisc(n, 0.085), ReferenceSize*0.7)},
		{Name: Human, Description: "head and shoulders", Points: Normalize(GenerateBust(n), ReferenceSize)},
		{Name: Mask, Description: "face shell", Points: Normalize(GenerateMask(n), ReferenceSize)},
	}
}
