package shadow

import (
	"github.com/Faultbox/midgard-shadows/internal/engine/framebuffer"
	"github.com/Faultbox/midgard-shadows/internal/engine/gpu"
)

// CubeTarget is the render target of an omnidirectional light.
type CubeTarget interface {
	passTarget
	// BindForSampling binds the shadow texture(s) starting at texture unit
	// index unit and returns how many units were used.
	BindForSampling(unit uint32) int
	// Textures returns the texture handles backing the six faces.
	Textures() []uint32
}

// NewCubeTarget picks the cube strategy supported by ctx: one cube map
// texture with a re-pointed attachment, or six separate framebuffers.
func NewCubeTarget(ctx gpu.Context) CubeTarget {
	if ctx.Caps().CubeFaceAttachment {
		return &cubemapTarget{ctx: ctx}
	}
	return &faceArrayTarget{ctx: ctx}
}

// cubemapTarget renders all faces through one framebuffer whose color
// attachment is switched to the current face.
type cubemapTarget struct {
	ctx      gpu.Context
	fbo      uint32
	texture  uint32
	depthRBO uint32
	size     int32
}

func (t *cubemapTarget) Allocate(size int32) error {
	if size < 1 {
		size = 1
	}
	t.Release()
	t.size = size

	ctx := t.ctx
	t.fbo = ctx.CreateFramebuffer()
	ctx.BindFramebuffer(gpu.Framebuffer, t.fbo)

	t.texture = ctx.CreateTexture()
	ctx.BindTexture(gpu.TextureCubeMap, t.texture)
	for face := range 6 {
		ctx.TexImage2D(gpu.CubeFace(face), 0, gpu.RGBA8, size, size, gpu.RGBA, gpu.UnsignedByte)
	}
	framebuffer.SetSamplerParams(ctx, gpu.TextureCubeMap)
	ctx.TexParameteri(gpu.TextureCubeMap, gpu.TextureWrapR, gpu.ClampToEdge)
	ctx.FramebufferTexture2D(gpu.Framebuffer, gpu.ColorAttachment0, gpu.CubeFace(0), t.texture, 0)

	t.depthRBO = ctx.CreateRenderbuffer()
	ctx.BindRenderbuffer(gpu.Renderbuffer, t.depthRBO)
	ctx.RenderbufferStorage(gpu.Renderbuffer, gpu.DepthComponent16, size, size)
	ctx.FramebufferRenderbuffer(gpu.Framebuffer, gpu.DepthAttachment, gpu.Renderbuffer, t.depthRBO)

	status := ctx.CheckFramebufferStatus(gpu.Framebuffer)

	ctx.BindTexture(gpu.TextureCubeMap, 0)
	ctx.BindRenderbuffer(gpu.Renderbuffer, 0)
	ctx.BindFramebuffer(gpu.Framebuffer, 0)

	if status != gpu.FramebufferComplete {
		t.Release()
		return &framebuffer.IncompleteError{Status: status, Size: size}
	}
	return nil
}

func (t *cubemapTarget) Begin(face int) {
	t.ctx.BindFramebuffer(gpu.Framebuffer, t.fbo)
	t.ctx.FramebufferTexture2D(gpu.Framebuffer, gpu.ColorAttachment0, gpu.CubeFace(face), t.texture, 0)
	t.ctx.Viewport(0, 0, t.size, t.size)
	t.ctx.ClearColor(0, 0, 0, 1)
	t.ctx.Clear(gpu.ColorBufferBit | gpu.DepthBufferBit)
}

func (t *cubemapTarget) DrawsCasters() bool { return true }

func (t *cubemapTarget) Valid() bool { return t.fbo != 0 }

func (t *cubemapTarget) BindForSampling(unit uint32) int {
	bindExclusive(t.ctx, unit, gpu.TextureCubeMap, t.texture)
	return 1
}

func (t *cubemapTarget) Textures() []uint32 {
	return []uint32{t.texture}
}

func (t *cubemapTarget) Release() {
	if t.fbo != 0 {
		t.ctx.DeleteFramebuffer(t.fbo)
		t.fbo = 0
	}
	if t.texture != 0 {
		t.ctx.DeleteTexture(t.texture)
		t.texture = 0
	}
	if t.depthRBO != 0 {
		t.ctx.DeleteRenderbuffer(t.depthRBO)
		t.depthRBO = 0
	}
}

// faceArrayTarget keeps six independent 2D targets, one per face.
type faceArrayTarget struct {
	ctx   gpu.Context
	faces [6]*framebuffer.Target
}

func (t *faceArrayTarget) Allocate(size int32) error {
	t.Release()
	for i := range t.faces {
		fb, err := framebuffer.New(t.ctx, size)
		if err != nil {
			t.Release()
			return err
		}
		t.faces[i] = fb
	}
	return nil
}

func (t *faceArrayTarget) Begin(face int) {
	t.faces[face].Bind()
	t.faces[face].Clear(0, 0, 0, 1)
}

func (t *faceArrayTarget) DrawsCasters() bool { return true }

func (t *faceArrayTarget) Valid() bool { return t.faces[0].Valid() }

func (t *faceArrayTarget) BindForSampling(unit uint32) int {
	for i, fb := range t.faces {
		bindExclusive(t.ctx, unit+uint32(i), gpu.Texture2D, fb.ColorTexture())
	}
	return len(t.faces)
}

func (t *faceArrayTarget) Textures() []uint32 {
	out := make([]uint32, 0, len(t.faces))
	for _, fb := range t.faces {
		if fb.Valid() {
			out = append(out, fb.ColorTexture())
		}
	}
	return out
}

func (t *faceArrayTarget) Release() {
	for i, fb := range t.faces {
		if fb != nil {
			fb.Release()
			t.faces[i] = nil
		}
	}
}

// bindExclusive clears every texture target on unit before binding texture
// to target. A stale cube map binding otherwise shadows a 2D bind on some drivers.
func bindExclusive(ctx gpu.Context, unit, target, texture uint32) {
	ctx.ActiveTexture(gpu.Texture0 + unit)
	ctx.BindTexture(gpu.Texture2D, 0)
	ctx.BindTexture(gpu.TextureCubeMap, 0)
	if ctx.Caps().ArrayTextures {
		ctx.BindTexture(gpu.Texture2DArray, 0)
		ctx.BindTexture(gpu.Texture3D, 0)
	}
	ctx.BindTexture(target, texture)
}
