package shadow

import (
	gomath "math"

	"github.com/Faultbox/midgard-shadows/pkg/math"
)

// FixedDistance is how far ahead of a directional light its view target sits.
const FixedDistance float32 = 100

// verticalThreshold is the |dir.Y| above which the default up vector would
// be nearly collinear with the light direction.
const verticalThreshold = 0.99

var (
	upY = math.Vec3{X: 0, Y: 1, Z: 0}
	upZ = math.Vec3{X: 0, Y: 0, Z: 1}
)

// UpVector returns the up vector for a light looking along dir:
// +Z when the light is near vertical, +Y otherwise.
func UpVector(dir math.Vec3) math.Vec3 {
	if abs32(dir.Y) > verticalThreshold {
		return upZ
	}
	return upY
}

// Bounds is an orthographic box in light view space.
type Bounds struct {
	Left, Right float32
	Bottom, Top float32
	Near, Far   float32
}

// DefaultBounds covers a 100×100 area up to 200 units from the light.
var DefaultBounds = Bounds{Left: -50, Right: 50, Bottom: -50, Top: 50, Near: 0.1, Far: 200}

// Projection returns the orthographic projection of the box.
func (b Bounds) Projection() math.Mat4 {
	return math.Ortho(b.Left, b.Right, b.Bottom, b.Top, b.Near, b.Far)
}

// DirectionalLightSpace returns Ortho(bounds) × LookAt(pos, pos+dir·distance, UpVector(dir)).
// dir must be normalized.
func DirectionalLightSpace(pos, dir math.Vec3, bounds Bounds, distance float32) math.Mat4 {
	view := math.LookAt(pos, pos.Add(dir.Scale(distance)), UpVector(dir))
	return bounds.Projection().Mul(view)
}

// CubeFace is the view direction and up vector of one cube map face.
type CubeFace struct {
	Dir math.Vec3
	Up  math.Vec3
}

// CubeFaces lists +X, -X, +Y, -Y, +Z, -Z in cube map order.
// The Y faces look along Z-up to stay clear of the poles.
var CubeFaces = [6]CubeFace{
	{Dir: math.Vec3{X: 1}, Up: math.Vec3{Y: -1}},
	{Dir: math.Vec3{X: -1}, Up: math.Vec3{Y: -1}},
	{Dir: math.Vec3{Y: 1}, Up: math.Vec3{Z: 1}},
	{Dir: math.Vec3{Y: -1}, Up: math.Vec3{Z: -1}},
	{Dir: math.Vec3{Z: 1}, Up: math.Vec3{Y: -1}},
	{Dir: math.Vec3{Z: -1}, Up: math.Vec3{Y: -1}},
}

// CubeFaceView returns the view matrix of face i seen from pos.
func CubeFaceView(pos math.Vec3, i int) math.Mat4 {
	face := CubeFaces[i]
	return math.LookAt(pos, pos.Add(face.Dir), face.Up)
}

// OmniProjection is the 90° square perspective shared by all six faces.
func OmniProjection(near, far float32) math.Mat4 {
	return math.Perspective(math.Radians(90), 1, near, far)
}

// OmniLightSpace returns the light-space matrix of each cube face.
func OmniLightSpace(pos math.Vec3, near, far float32) [6]math.Mat4 {
	proj := OmniProjection(near, far)
	var out [6]math.Mat4
	for i := range CubeFaces {
		out[i] = proj.Mul(CubeFaceView(pos, i))
	}
	return out
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min [3]float32
	Max [3]float32
}

// EmptyAABB returns a box that any Extend call replaces.
func EmptyAABB() AABB {
	inf := float32(gomath.Inf(1))
	return AABB{Min: [3]float32{inf, inf, inf}, Max: [3]float32{-inf, -inf, -inf}}
}

// Extend grows the box to contain p.
func (b AABB) Extend(p math.Vec3) AABB {
	for i, v := range p.Array() {
		b.Min[i] = min(b.Min[i], v)
		b.Max[i] = max(b.Max[i], v)
	}
	return b
}

// Union returns the smallest box containing b and other.
func (b AABB) Union(other AABB) AABB {
	for i := range 3 {
		b.Min[i] = min(b.Min[i], other.Min[i])
		b.Max[i] = max(b.Max[i], other.Max[i])
	}
	return b
}

// Empty reports whether the box contains no point.
func (b AABB) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Center returns the center point of the AABB.
func (b AABB) Center() math.Vec3 {
	return math.Vec3{
		X: (b.Min[0] + b.Max[0]) / 2,
		Y: (b.Min[1] + b.Max[1]) / 2,
		Z: (b.Min[2] + b.Max[2]) / 2,
	}
}

// Radius returns the distance from center to corner (half-diagonal).
func (b AABB) Radius() float32 {
	dx := (b.Max[0] - b.Min[0]) / 2
	dy := (b.Max[1] - b.Min[1]) / 2
	dz := (b.Max[2] - b.Min[2]) / 2
	return sqrt32(dx*dx + dy*dy + dz*dz)
}

// BoundsFromAABB returns an orthographic box enclosing the scene for a light
// placed distance units from its center, with 10% padding against edge
// artifacts. Lights never call this themselves; pass the result to
// UpdateLightSpaceMatrix.
func BoundsFromAABB(scene AABB, distance float32) Bounds {
	radius := scene.Radius()
	halfSize := radius * 1.1
	return Bounds{
		Left:   -halfSize,
		Right:  halfSize,
		Bottom: -halfSize,
		Top:    halfSize,
		Near:   0.1,
		Far:    distance + halfSize,
	}
}

// sqrt32 returns the square root of a float32.
func sqrt32(x float32) float32 {
	return float32(gomath.Sqrt(float64(x)))
}

// abs32 returns the absolute value of a float32.
func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
