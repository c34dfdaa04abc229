// Package mesh provides triangle meshes used as shadow casters and receivers.
package mesh

import (
	"github.com/Faultbox/midgard-shadows/internal/engine/shadow"
	"github.com/Faultbox/midgard-shadows/pkg/math"
)

// Mesh is an indexed triangle list in model space.
type Mesh struct {
	Name      string
	Positions []math.Vec3
	Normals   []math.Vec3
	Indices   []uint32
	Model     math.Mat4
	Albedo    [3]float32

	triangles []shadow.Triangle
}

// New creates a mesh with an identity model matrix. Missing normals default to +Y.
func New(name string, positions, normals []math.Vec3, indices []uint32) *Mesh {
	if len(normals) != len(positions) {
		normals = make([]math.Vec3, len(positions))
		for i := range normals {
			normals[i] = math.Vec3{Y: 1}
		}
	}
	if indices == nil {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	return &Mesh{
		Name:      name,
		Positions: positions,
		Normals:   normals,
		Indices:   indices,
		Model:     math.Identity(),
		Albedo:    [3]float32{0.8, 0.8, 0.8},
	}
}

// ShadowTriangles expands the index list into model-space triangles.
// The result is built once and reused.
func (m *Mesh) ShadowTriangles() []shadow.Triangle {
	if m.triangles != nil {
		return m.triangles
	}
	n := len(m.Indices) / 3
	m.triangles = make([]shadow.Triangle, 0, n)
	for i := 0; i < n; i++ {
		var tri shadow.Triangle
		for j := range 3 {
			tri.Vertices[j] = m.Positions[m.Indices[i*3+j]]
		}
		m.triangles = append(m.triangles, tri)
	}
	return m.triangles
}

// ModelMatrix returns the model-to-world transform.
func (m *Mesh) ModelMatrix() math.Mat4 {
	return m.Model
}

// SetPosition replaces the translation of the model matrix.
func (m *Mesh) SetPosition(p math.Vec3) {
	m.Model[12], m.Model[13], m.Model[14] = p.X, p.Y, p.Z
}

// Bounds returns the world-space bounding box.
func (m *Mesh) Bounds() shadow.AABB {
	box := shadow.EmptyAABB()
	for _, p := range m.Positions {
		box = box.Extend(m.Model.TransformVec3(p))
	}
	return box
}

// Interleaved returns position and normal per vertex, six floats each.
func (m *Mesh) Interleaved() []float32 {
	out := make([]float32, 0, len(m.Positions)*6)
	for i, p := range m.Positions {
		n := m.Normals[i]
		out = append(out, p.X, p.Y, p.Z, n.X, n.Y, n.Z)
	}
	return out
}

// SceneBounds returns the union of the bounds of meshes.
func SceneBounds(meshes []*Mesh) shadow.AABB {
	box := shadow.EmptyAABB()
	for _, m := range meshes {
		box = box.Union(m.Bounds())
	}
	return box
}

var (
	_ shadow.Caster      = (*Mesh)(nil)
	_ shadow.Transformer = (*Mesh)(nil)
)
