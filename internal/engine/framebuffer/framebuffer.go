// Package framebuffer provides square offscreen render targets used as shadow maps.
package framebuffer

import (
	"fmt"

	"github.com/Faultbox/midgard-shadows/internal/engine/gpu"
)

// IncompleteError reports a framebuffer that failed its completeness check.
type IncompleteError struct {
	Status uint32
	Size   int32
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("framebuffer incomplete: status 0x%x at %dx%d", e.Status, e.Size, e.Size)
}

// Target is a size×size render target: an RGBA8 color texture carrying packed
// depth, a DEPTH_COMPONENT16 renderbuffer for depth testing only, and the
// framebuffer tying them together.
type Target struct {
	ctx          gpu.Context
	fbo          uint32
	colorTexture uint32
	depthRBO     uint32
	size         int32
}

// New creates a target and allocates its storage.
func New(ctx gpu.Context, size int32) (*Target, error) {
	t := &Target{ctx: ctx}
	if err := t.Allocate(size); err != nil {
		return nil, err
	}
	return t, nil
}

// Allocate releases any previous objects and creates fresh ones at size×size.
// The color texture uses nearest filtering and edge clamping. On return the
// framebuffer binding is 0 regardless of what was bound before.
func (t *Target) Allocate(size int32) error {
	if size < 1 {
		size = 1
	}
	t.Release()
	t.size = size

	ctx := t.ctx
	t.fbo = ctx.CreateFramebuffer()
	ctx.BindFramebuffer(gpu.Framebuffer, t.fbo)

	t.colorTexture = ctx.CreateTexture()
	ctx.BindTexture(gpu.Texture2D, t.colorTexture)
	ctx.TexImage2D(gpu.Texture2D, 0, gpu.RGBA8, size, size, gpu.RGBA, gpu.UnsignedByte)
	SetSamplerParams(ctx, gpu.Texture2D)
	ctx.FramebufferTexture2D(gpu.Framebuffer, gpu.ColorAttachment0, gpu.Texture2D, t.colorTexture, 0)

	t.depthRBO = ctx.CreateRenderbuffer()
	ctx.BindRenderbuffer(gpu.Renderbuffer, t.depthRBO)
	ctx.RenderbufferStorage(gpu.Renderbuffer, gpu.DepthComponent16, size, size)
	ctx.FramebufferRenderbuffer(gpu.Framebuffer, gpu.DepthAttachment, gpu.Renderbuffer, t.depthRBO)

	status := ctx.CheckFramebufferStatus(gpu.Framebuffer)

	ctx.BindTexture(gpu.Texture2D, 0)
	ctx.BindRenderbuffer(gpu.Renderbuffer, 0)
	ctx.BindFramebuffer(gpu.Framebuffer, 0)

	if status != gpu.FramebufferComplete {
		t.Release()
		return &IncompleteError{Status: status, Size: size}
	}
	return nil
}

// SetSamplerParams applies nearest filtering and edge clamping to the texture
// bound at target. Shadow maps must never be interpolated or wrapped.
func SetSamplerParams(ctx gpu.Context, target uint32) {
	ctx.TexParameteri(target, gpu.TextureMinFilter, gpu.Nearest)
	ctx.TexParameteri(target, gpu.TextureMagFilter, gpu.Nearest)
	ctx.TexParameteri(target, gpu.TextureWrapS, gpu.ClampToEdge)
	ctx.TexParameteri(target, gpu.TextureWrapT, gpu.ClampToEdge)
}

// Bind makes this target the current framebuffer and sets a full viewport.
func (t *Target) Bind() {
	t.ctx.BindFramebuffer(gpu.Framebuffer, t.fbo)
	t.ctx.Viewport(0, 0, t.size, t.size)
}

// Clear clears color and depth with the specified color.
func (t *Target) Clear(r, g, b, a float32) {
	t.ctx.ClearColor(r, g, b, a)
	t.ctx.Clear(gpu.ColorBufferBit | gpu.DepthBufferBit)
}

// ColorTexture returns the color attachment texture ID.
func (t *Target) ColorTexture() uint32 {
	return t.colorTexture
}

// DepthRenderbuffer returns the depth attachment renderbuffer ID.
func (t *Target) DepthRenderbuffer() uint32 {
	return t.depthRBO
}

// FBO returns the underlying framebuffer object ID.
func (t *Target) FBO() uint32 {
	return t.fbo
}

// Size returns the edge length in texels.
func (t *Target) Size() int32 {
	return t.size
}

// Valid reports whether the target currently owns GPU objects.
func (t *Target) Valid() bool {
	return t != nil && t.fbo != 0
}

// ReadPixels reads the color attachment as RGBA bytes, bottom row first.
// The framebuffer binding is restored to 0 afterwards.
func (t *Target) ReadPixels() []byte {
	t.ctx.BindFramebuffer(gpu.Framebuffer, t.fbo)
	pixels := t.ctx.ReadPixelsRGBA(0, 0, t.size, t.size)
	t.ctx.BindFramebuffer(gpu.Framebuffer, 0)
	return pixels
}

// Release deletes every GPU object. Safe to call repeatedly.
func (t *Target) Release() {
	if t.fbo != 0 {
		t.ctx.DeleteFramebuffer(t.fbo)
		t.fbo = 0
	}
	if t.colorTexture != 0 {
		t.ctx.DeleteTexture(t.colorTexture)
		t.colorTexture = 0
	}
	if t.depthRBO != 0 {
		t.ctx.DeleteRenderbuffer(t.depthRBO)
		t.depthRBO = 0
	}
}
