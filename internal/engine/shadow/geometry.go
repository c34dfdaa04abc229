package shadow

import (
	"github.com/Faultbox/midgard-shadows/internal/engine/gpu"
	"github.com/Faultbox/midgard-shadows/pkg/math"
)

// Triangle is three world- or model-space vertices.
type Triangle struct {
	Vertices [3]math.Vec3
}

// Caster is anything that can be drawn into a shadow map.
type Caster interface {
	ShadowTriangles() []Triangle
}

// Transformer is implemented by casters whose triangles are in model space.
// Casters without it are drawn with an identity model matrix.
type Transformer interface {
	ModelMatrix() math.Mat4
}

// modelMatrix returns the model matrix to draw c with.
func modelMatrix(c Caster) math.Mat4 {
	if t, ok := c.(Transformer); ok {
		return t.ModelMatrix()
	}
	return math.Identity()
}

// casterBuffers are a light's persistent vertex and index buffers.
// The CPU-side slices only ever grow and are reused for every caster.
type casterBuffers struct {
	ctx       gpu.Context
	vbo       uint32
	ibo       uint32
	positions []float32
	indices   []uint32
}

// fill flattens tris into positions (nine floats per triangle) and extends
// the sequential index list to cover every vertex. Vertices are never shared.
func (b *casterBuffers) fill(tris []Triangle) (positions []float32, indices []uint32) {
	b.positions = b.positions[:0]
	for _, tri := range tris {
		for _, v := range tri.Vertices {
			b.positions = append(b.positions, v.X, v.Y, v.Z)
		}
	}

	count := len(tris) * 3
	for i := len(b.indices); i < count; i++ {
		b.indices = append(b.indices, uint32(i))
	}
	return b.positions, b.indices[:count]
}

// draw uploads tris and issues one indexed draw with position at attribute loc.
func (b *casterBuffers) draw(tris []Triangle, loc int32) {
	if b.vbo == 0 {
		b.vbo = b.ctx.CreateBuffer()
		b.ibo = b.ctx.CreateBuffer()
	}
	positions, indices := b.fill(tris)

	b.ctx.BindBuffer(gpu.ArrayBuffer, b.vbo)
	b.ctx.BufferFloat32(gpu.ArrayBuffer, positions, gpu.DynamicDraw)
	b.ctx.EnableVertexAttribArray(uint32(loc))
	b.ctx.VertexAttribPointer(uint32(loc), 3, gpu.Float, false, 0, 0)

	b.ctx.BindBuffer(gpu.ElementArrayBuffer, b.ibo)
	b.ctx.BufferUint32(gpu.ElementArrayBuffer, indices, gpu.DynamicDraw)
	b.ctx.DrawElements(gpu.Triangles, int32(len(indices)), gpu.UnsignedInt, 0)
}

// release deletes both buffers. Safe to call repeatedly.
func (b *casterBuffers) release() {
	if b.vbo != 0 {
		b.ctx.DeleteBuffer(b.vbo)
		b.vbo = 0
	}
	if b.ibo != 0 {
		b.ctx.DeleteBuffer(b.ibo)
		b.ibo = 0
	}
	b.positions = nil
	b.indices = nil
}
