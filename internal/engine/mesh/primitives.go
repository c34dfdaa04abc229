package mesh

import "github.com/Faultbox/midgard-shadows/pkg/math"

// Box returns an axis-aligned box with flat-shaded faces. half holds the
// half extents; the box is built at the origin and placed via its model matrix.
func Box(center, half math.Vec3) *Mesh {
	type face struct {
		normal math.Vec3
		u, v   math.Vec3
	}
	faces := []face{
		{math.Vec3{X: 1}, math.Vec3{Z: -1}, math.Vec3{Y: 1}},
		{math.Vec3{X: -1}, math.Vec3{Z: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Y: 1}, math.Vec3{X: 1}, math.Vec3{Z: -1}},
		{math.Vec3{Y: -1}, math.Vec3{X: 1}, math.Vec3{Z: 1}},
		{math.Vec3{Z: 1}, math.Vec3{X: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Z: -1}, math.Vec3{X: -1}, math.Vec3{Y: 1}},
	}

	positions := make([]math.Vec3, 0, 24)
	normals := make([]math.Vec3, 0, 24)
	indices := make([]uint32, 0, 36)
	scale := func(p math.Vec3) math.Vec3 {
		return math.Vec3{X: p.X * half.X, Y: p.Y * half.Y, Z: p.Z * half.Z}
	}
	for _, f := range faces {
		base := uint32(len(positions))
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := f.normal.Add(f.u.Scale(c[0])).Add(f.v.Scale(c[1]))
			positions = append(positions, scale(p))
			normals = append(normals, f.normal)
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	m := New("box", positions, normals, indices)
	m.SetPosition(center)
	return m
}

// Plane returns a square facing +Y with the given half size.
func Plane(center math.Vec3, half float32) *Mesh {
	positions := []math.Vec3{
		{X: -half, Z: half},
		{X: half, Z: half},
		{X: half, Z: -half},
		{X: -half, Z: -half},
	}
	up := math.Vec3{Y: 1}
	normals := []math.Vec3{up, up, up, up}

	m := New("plane", positions, normals, []uint32{0, 1, 2, 0, 2, 3})
	m.SetPosition(center)
	return m
}
