// Package glcore implements gpu.Context on top of go-gl (OpenGL 4.1 core).
//
// Function pointers always come from the 4.1 core bindings. A 2.1
// compatibility context therefore needs a driver that exports the 4.x entry
// points regardless of the context version, as Mesa and the desktop NVIDIA
// and AMD drivers do. macOS legacy contexts do not qualify.
package glcore

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/midgard-shadows/internal/engine/gpu"
)

// Context issues calls to the OpenGL context current on the calling thread.
type Context struct {
	caps gpu.Caps
	vao  uint32
}

// New loads GL function pointers and returns a context with the given caps.
// A GL context must already be current on this thread. Pass gpu.Legacy to
// exercise the reduced code paths on a desktop driver.
func New(caps gpu.Caps) (*Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("init opengl (4.1 entry points required): %w", err)
	}

	c := &Context{caps: caps}

	// Core profile rejects attribute setup without a bound vertex array.
	// 2.x contexts draw with the default one.
	if gpu.HasVertexArrays(c.Version()) {
		gl.GenVertexArrays(1, &c.vao)
		gl.BindVertexArray(c.vao)
	}

	return c, nil
}

// Version returns the driver's GL_VERSION string.
func (c *Context) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

// Close releases the context-wide vertex array.
func (c *Context) Close() {
	if c.vao != 0 {
		gl.BindVertexArray(0)
		gl.DeleteVertexArrays(1, &c.vao)
		c.vao = 0
	}
}

func (c *Context) Caps() gpu.Caps { return c.caps }

func (c *Context) CreateFramebuffer() uint32 {
	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	return fbo
}

func (c *Context) DeleteFramebuffer(fbo uint32) { gl.DeleteFramebuffers(1, &fbo) }

func (c *Context) BindFramebuffer(target, fbo uint32) { gl.BindFramebuffer(target, fbo) }

func (c *Context) CheckFramebufferStatus(target uint32) uint32 {
	return gl.CheckFramebufferStatus(target)
}

func (c *Context) FramebufferTexture2D(target, attachment, texTarget, texture uint32, level int32) {
	gl.FramebufferTexture2D(target, attachment, texTarget, texture, level)
}

func (c *Context) FramebufferRenderbuffer(target, attachment, rbTarget, rbo uint32) {
	gl.FramebufferRenderbuffer(target, attachment, rbTarget, rbo)
}

func (c *Context) CreateRenderbuffer() uint32 {
	var rbo uint32
	gl.GenRenderbuffers(1, &rbo)
	return rbo
}

func (c *Context) DeleteRenderbuffer(rbo uint32) { gl.DeleteRenderbuffers(1, &rbo) }

func (c *Context) BindRenderbuffer(target, rbo uint32) { gl.BindRenderbuffer(target, rbo) }

func (c *Context) RenderbufferStorage(target, internalFormat uint32, width, height int32) {
	gl.RenderbufferStorage(target, internalFormat, width, height)
}

func (c *Context) CreateTexture() uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	return tex
}

func (c *Context) DeleteTexture(texture uint32) { gl.DeleteTextures(1, &texture) }

func (c *Context) ActiveTexture(unit uint32) { gl.ActiveTexture(unit) }

func (c *Context) BindTexture(target, texture uint32) { gl.BindTexture(target, texture) }

func (c *Context) TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32) {
	gl.TexImage2D(target, level, internalFormat, width, height, 0, format, xtype, nil)
}

func (c *Context) TexParameteri(target, pname uint32, param int32) {
	gl.TexParameteri(target, pname, param)
}

func (c *Context) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (c *Context) GetViewport() [4]int32 {
	var vp [4]int32
	gl.GetIntegerv(gl.VIEWPORT, &vp[0])
	return vp
}

func (c *Context) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (c *Context) Enable(capability uint32) { gl.Enable(capability) }

func (c *Context) Disable(capability uint32) { gl.Disable(capability) }

func (c *Context) Clear(mask uint32) { gl.Clear(mask) }

func (c *Context) CreateBuffer() uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return buf
}

func (c *Context) DeleteBuffer(buffer uint32) { gl.DeleteBuffers(1, &buffer) }

func (c *Context) BindBuffer(target, buffer uint32) { gl.BindBuffer(target, buffer) }

func (c *Context) BufferFloat32(target uint32, data []float32, usage uint32) {
	if len(data) == 0 {
		gl.BufferData(target, 0, nil, usage)
		return
	}
	gl.BufferData(target, len(data)*4, gl.Ptr(data), usage)
}

func (c *Context) BufferUint32(target uint32, data []uint32, usage uint32) {
	if len(data) == 0 {
		gl.BufferData(target, 0, nil, usage)
		return
	}
	gl.BufferData(target, len(data)*4, gl.Ptr(data), usage)
}

func (c *Context) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (c *Context) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(index, size, xtype, normalized, stride, uintptr(offset))
}

func (c *Context) DrawElements(mode uint32, count int32, xtype uint32, offset int) {
	gl.DrawElements(mode, count, xtype, gl.PtrOffset(offset))
}

func (c *Context) CreateShader(kind uint32) uint32 { return gl.CreateShader(kind) }

func (c *Context) CompileShader(shader uint32, source string) error {
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		return fmt.Errorf("%s", strings.TrimRight(string(log), "\x00"))
	}
	return nil
}

func (c *Context) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (c *Context) CreateProgram() uint32 { return gl.CreateProgram() }

func (c *Context) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (c *Context) LinkProgram(program uint32) error {
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		return fmt.Errorf("%s", strings.TrimRight(string(log), "\x00"))
	}
	return nil
}

func (c *Context) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (c *Context) UseProgram(program uint32) { gl.UseProgram(program) }

func (c *Context) AttribLocation(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}

func (c *Context) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (c *Context) Uniform1i(location int32, v int32) { gl.Uniform1i(location, v) }

func (c *Context) Uniform1f(location int32, v float32) { gl.Uniform1f(location, v) }

func (c *Context) Uniform3f(location int32, x, y, z float32) { gl.Uniform3f(location, x, y, z) }

func (c *Context) UniformMatrix4(location int32, m [16]float32) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (c *Context) UniformMatrix4Array(location int32, ms [][16]float32) {
	if len(ms) == 0 {
		return
	}
	gl.UniformMatrix4fv(location, int32(len(ms)), false, &ms[0][0])
}

func (c *Context) ReadPixelsRGBA(x, y, width, height int32) []byte {
	pixels := make([]byte, width*height*4)
	gl.ReadPixels(x, y, width, height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

func (c *Context) ReadDepth(x, y, width, height int32) []float32 {
	depth := make([]float32, width*height)
	gl.ReadPixels(x, y, width, height, gl.DEPTH_COMPONENT, gl.FLOAT, gl.Ptr(depth))
	return depth
}

var _ gpu.Context = (*Context)(nil)
