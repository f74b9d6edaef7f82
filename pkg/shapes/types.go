// Package shapes provides the named target shapes the point cloud morphs toward.
//
// A target is a fixed-length sequence of N points, centered on the origin and
// scaled so its largest axis extent equals ReferenceSize, which keeps every
// shape visually comparable. Targets are immutable once registered.
//
// Shapes come from two places: procedural generators that are always
// available, and JSON shape files loaded in the background by a Loader.
package shapes

import "github.com/go-gl/mathgl/mgl64"

// Well-known target names.
const (
	Light = "light"
	Human = "human"
	Mask  = "mask"
	Globe = "globe"
)

// ReferenceSize is the largest axis extent of a normalized shape.
const ReferenceSize = 2.9

// Target is an immutable, registered N-point shape.
type Target struct {
	name   string
	points []mgl64.Vec3
}

// Name returns the registry key.
func (t *Target) Name() string { return t.name }

// Len returns the number of points (always the registry's N).
func (t *Target) Len() int { return len(t.points) }

// At returns point i.
func (t *Target) At(i int) mgl64.Vec3 { return t.points[i] }

// Coordinates returns a copy of all points.
func (t *Target) Coordinates() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(t.points))
	copy(out, t.points)
	return out
}

// Shape is a loaded shape source before registration.
// Points may have any length; the registry resamples them to N.
type Shape struct {
	Name        string
	Description string
	Points      []mgl64.Vec3
}

// ShapeFile is the on-disk JSON form of a shape.
type ShapeFile struct {
	// Name overrides the file name when set.
	Name string `json:"name,omitempty"`

	// Description explains what the shape depicts.
	Description string `json:"description,omitempty"`

	// Points holds raw [x, y, z] coordinates in any unit; they are normalized on load.
	Points [][3]float64 `json:"points"`
}
