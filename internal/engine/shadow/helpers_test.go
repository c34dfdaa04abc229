package shadow

import (
	"errors"
	"testing"

	"github.com/Faultbox/midgard-shadows/internal/engine/gpu"
	"github.com/Faultbox/midgard-shadows/internal/engine/gpu/gputest"
	"github.com/Faultbox/midgard-shadows/internal/engine/shader"
	"github.com/Faultbox/midgard-shadows/pkg/math"
)

func newTestBindings(t *testing.T, caps gpu.Caps) (*gputest.Recorder, *Bindings) {
	t.Helper()
	rec := gputest.New(caps)
	return rec, NewBindings(shader.NewRegistry(rec), DialectFor(caps))
}

// triangles is a caster in world space.
type triangles []Triangle

func (t triangles) ShadowTriangles() []Triangle { return t }

// placedCaster is a caster in model space.
type placedCaster struct {
	triangles
	model math.Mat4
}

func (p placedCaster) ModelMatrix() math.Mat4 { return p.model }

// quad returns two triangles covering a unit square at height y.
func quad(y float32) triangles {
	return triangles{
		{Vertices: [3]math.Vec3{{X: 0, Y: y, Z: 0}, {X: 1, Y: y, Z: 0}, {X: 1, Y: y, Z: 1}}},
		{Vertices: [3]math.Vec3{{X: 0, Y: y, Z: 0}, {X: 1, Y: y, Z: 1}, {X: 0, Y: y, Z: 1}}},
	}
}

// mainProgram creates a program standing in for the scene shader and makes it current.
func mainProgram(rec *gputest.Recorder) uint32 {
	program := rec.CreateProgram()
	rec.UseProgram(program)
	rec.Reset()
	return program
}

// recoverPrecondition runs f and returns the PreconditionError it panicked with.
func recoverPrecondition(f func()) (err *PreconditionError) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				errors.As(e, &err)
			}
		}
	}()
	f()
	return nil
}

func gpuObjects(rec *gputest.Recorder) int {
	return rec.Live(gputest.KindFramebuffer) + rec.Live(gputest.KindTexture) +
		rec.Live(gputest.KindRenderbuffer) + rec.Live(gputest.KindBuffer)
}
