// Package gpu defines the graphics-context boundary used by the renderer.
//
// The renderer never calls a GL binding directly. Everything goes through
// Context so the same code drives the go-gl implementation (package glcore)
// and the recording fake used in tests (package gputest).
package gpu

// Context is the subset of the GL API the renderer issues.
// Object handles are uint32 with 0 meaning "none"; uniform and attribute
// locations are int32 with Absent meaning the program does not use the name.
//
// All binds mutate global state shared by every caller of the context.
type Context interface {
	Caps() Caps

	CreateFramebuffer() uint32
	DeleteFramebuffer(fbo uint32)
	BindFramebuffer(target, fbo uint32)
	CheckFramebufferStatus(target uint32) uint32
	FramebufferTexture2D(target, attachment, texTarget, texture uint32, level int32)
	FramebufferRenderbuffer(target, attachment, rbTarget, rbo uint32)

	CreateRenderbuffer() uint32
	DeleteRenderbuffer(rbo uint32)
	BindRenderbuffer(target, rbo uint32)
	RenderbufferStorage(target, internalFormat uint32, width, height int32)

	CreateTexture() uint32
	DeleteTexture(texture uint32)
	ActiveTexture(unit uint32)
	BindTexture(target, texture uint32)
	TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32)
	TexParameteri(target, pname uint32, param int32)

	Viewport(x, y, width, height int32)
	GetViewport() [4]int32
	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
	Enable(capability uint32)
	Disable(capability uint32)

	CreateBuffer() uint32
	DeleteBuffer(buffer uint32)
	BindBuffer(target, buffer uint32)
	BufferFloat32(target uint32, data []float32, usage uint32)
	BufferUint32(target uint32, data []uint32, usage uint32)
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int)
	DrawElements(mode uint32, count int32, xtype uint32, offset int)

	CreateShader(kind uint32) uint32
	// CompileShader uploads source and compiles it, returning the info log on failure.
	CompileShader(shader uint32, source string) error
	DeleteShader(shader uint32)
	CreateProgram() uint32
	AttachShader(program, shader uint32)
	// LinkProgram links and returns the info log on failure.
	LinkProgram(program uint32) error
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	AttribLocation(program uint32, name string) int32
	UniformLocation(program uint32, name string) int32

	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform3f(location int32, x, y, z float32)
	UniformMatrix4(location int32, m [16]float32)
	UniformMatrix4Array(location int32, ms [][16]float32)

	// ReadPixelsRGBA reads the color attachment of the bound framebuffer.
	ReadPixelsRGBA(x, y, width, height int32) []byte
	// ReadDepth reads the depth attachment of the bound framebuffer as floats.
	// Only valid when Caps().FloatReadback is set.
	ReadDepth(x, y, width, height int32) []float32
}

// Absent is the location returned for uniforms and attributes a program does not use.
const Absent int32 = -1
