// Package gputest provides a recording gpu.Context for tests.
package gputest

import (
	"errors"
	"fmt"

	"github.com/Faultbox/midgard-shadows/internal/engine/gpu"
)

// Object kinds tracked by Recorder.
const (
	KindFramebuffer  = "framebuffer"
	KindRenderbuffer = "renderbuffer"
	KindTexture      = "texture"
	KindBuffer       = "buffer"
	KindShader       = "shader"
	KindProgram      = "program"
)

// Call is one recorded context call.
type Call struct {
	Name string
	Args []any
}

// UniformWrite is one recorded uniform assignment, resolved to its name.
type UniformWrite struct {
	Program uint32
	Name    string
	Value   any
}

// Recorder is an in-memory gpu.Context. It hands out unique handles, tracks
// object lifetimes and bindings, and records every call in order.
type Recorder struct {
	caps gpu.Caps
	next uint32

	Calls    []Call
	Uniforms []UniformWrite

	// FramebufferStatus is returned by CheckFramebufferStatus.
	FramebufferStatus uint32
	// FailCompile makes CompileShader fail for every shader.
	FailCompile bool
	// FailLink makes LinkProgram fail for every program.
	FailLink bool
	// MissingUniforms lists names reported as gpu.Absent.
	MissingUniforms map[string]bool
	// Depth supplies values for ReadDepth; nil reads zeros.
	Depth func(x, y int32) float32

	created map[string]int
	deleted map[string]int
	live    map[string]map[uint32]bool

	viewport         [4]int32
	framebuffer      uint32
	program          uint32
	activeUnit       uint32
	textureBindings  map[uint32]map[uint32]uint32 // unit -> target -> texture
	buffers          map[uint32]uint32            // target -> buffer
	bufferData       map[uint32]any
	uniformLocations map[int32]UniformWrite
	enabled          map[uint32]bool
	locationByName   map[uint32]map[string]int32
	nextLocation     int32
}

// New returns a recorder reporting the given caps and a complete framebuffer status.
func New(caps gpu.Caps) *Recorder {
	return &Recorder{
		caps:              caps,
		FramebufferStatus: gpu.FramebufferComplete,
		MissingUniforms:   map[string]bool{},
		created:           map[string]int{},
		deleted:           map[string]int{},
		live:              map[string]map[uint32]bool{},
		textureBindings:   map[uint32]map[uint32]uint32{},
		buffers:           map[uint32]uint32{},
		bufferData:        map[uint32]any{},
		uniformLocations:  map[int32]UniformWrite{},
		enabled:           map[uint32]bool{},
		locationByName:    map[uint32]map[string]int32{},
		viewport:          [4]int32{0, 0, 800, 600},
		activeUnit:        gpu.Texture0,
	}
}

func (r *Recorder) record(name string, args ...any) {
	r.Calls = append(r.Calls, Call{Name: name, Args: args})
}

func (r *Recorder) create(kind string) uint32 {
	r.next++
	if r.live[kind] == nil {
		r.live[kind] = map[uint32]bool{}
	}
	r.live[kind][r.next] = true
	r.created[kind]++
	return r.next
}

func (r *Recorder) destroy(kind string, handle uint32) {
	if handle == 0 {
		return
	}
	if !r.live[kind][handle] {
		panic(fmt.Sprintf("gputest: delete of unknown %s %d", kind, handle))
	}
	delete(r.live[kind], handle)
	r.deleted[kind]++
}

// Created returns how many objects of kind were created.
func (r *Recorder) Created(kind string) int { return r.created[kind] }

// Deleted returns how many objects of kind were deleted.
func (r *Recorder) Deleted(kind string) int { return r.deleted[kind] }

// Live returns how many objects of kind are still alive.
func (r *Recorder) Live(kind string) int { return len(r.live[kind]) }

// LiveTotal returns the number of live objects of every kind.
func (r *Recorder) LiveTotal() int {
	n := 0
	for _, handles := range r.live {
		n += len(handles)
	}
	return n
}

// IsLive reports whether handle of kind exists.
func (r *Recorder) IsLive(kind string, handle uint32) bool { return r.live[kind][handle] }

// Count returns how many times the named call was issued.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// CallsNamed returns every recorded call with the given name.
func (r *Recorder) CallsNamed(name string) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls and uniform writes but keeps object state.
func (r *Recorder) Reset() {
	r.Calls = nil
	r.Uniforms = nil
}

// Uniform returns the last value written to the named uniform.
func (r *Recorder) Uniform(name string) (any, bool) {
	for i := len(r.Uniforms) - 1; i >= 0; i-- {
		if r.Uniforms[i].Name == name {
			return r.Uniforms[i].Value, true
		}
	}
	return nil, false
}

// UniformNames returns the names of every uniform written, in order.
func (r *Recorder) UniformNames() []string {
	names := make([]string, 0, len(r.Uniforms))
	for _, u := range r.Uniforms {
		names = append(names, u.Name)
	}
	return names
}

// BoundFramebuffer returns the currently bound framebuffer.
func (r *Recorder) BoundFramebuffer() uint32 { return r.framebuffer }

// CurrentViewport returns the current viewport.
func (r *Recorder) CurrentViewport() [4]int32 { return r.viewport }

// SetViewport sets the viewport without recording a call.
func (r *Recorder) SetViewport(vp [4]int32) { r.viewport = vp }

// IsEnabled reports whether capability is currently enabled.
func (r *Recorder) IsEnabled(capability uint32) bool { return r.enabled[capability] }

// CurrentProgram returns the program in use.
func (r *Recorder) CurrentProgram() uint32 { return r.program }

// BoundTexture returns the texture bound to target on the given unit (gpu.Texture0 + n).
func (r *Recorder) BoundTexture(unit, target uint32) uint32 {
	return r.textureBindings[unit][target]
}

// BufferData returns the last data uploaded to buffer.
func (r *Recorder) BufferData(buffer uint32) any { return r.bufferData[buffer] }

func (r *Recorder) Caps() gpu.Caps { return r.caps }

func (r *Recorder) CreateFramebuffer() uint32 {
	h := r.create(KindFramebuffer)
	r.record("CreateFramebuffer", h)
	return h
}

func (r *Recorder) DeleteFramebuffer(fbo uint32) {
	r.record("DeleteFramebuffer", fbo)
	r.destroy(KindFramebuffer, fbo)
	if r.framebuffer == fbo {
		r.framebuffer = 0
	}
}

func (r *Recorder) BindFramebuffer(target, fbo uint32) {
	r.record("BindFramebuffer", target, fbo)
	r.framebuffer = fbo
}

func (r *Recorder) CheckFramebufferStatus(target uint32) uint32 {
	r.record("CheckFramebufferStatus", target)
	return r.FramebufferStatus
}

func (r *Recorder) FramebufferTexture2D(target, attachment, texTarget, texture uint32, level int32) {
	r.record("FramebufferTexture2D", target, attachment, texTarget, texture, level)
}

func (r *Recorder) FramebufferRenderbuffer(target, attachment, rbTarget, rbo uint32) {
	r.record("FramebufferRenderbuffer", target, attachment, rbTarget, rbo)
}

func (r *Recorder) CreateRenderbuffer() uint32 {
	h := r.create(KindRenderbuffer)
	r.record("CreateRenderbuffer", h)
	return h
}

func (r *Recorder) DeleteRenderbuffer(rbo uint32) {
	r.record("DeleteRenderbuffer", rbo)
	r.destroy(KindRenderbuffer, rbo)
}

func (r *Recorder) BindRenderbuffer(target, rbo uint32) {
	r.record("BindRenderbuffer", target, rbo)
}

func (r *Recorder) RenderbufferStorage(target, internalFormat uint32, width, height int32) {
	r.record("RenderbufferStorage", target, internalFormat, width, height)
}

func (r *Recorder) CreateTexture() uint32 {
	h := r.create(KindTexture)
	r.record("CreateTexture", h)
	return h
}

func (r *Recorder) DeleteTexture(texture uint32) {
	r.record("DeleteTexture", texture)
	r.destroy(KindTexture, texture)
}

func (r *Recorder) ActiveTexture(unit uint32) {
	r.record("ActiveTexture", unit)
	r.activeUnit = unit
}

func (r *Recorder) BindTexture(target, texture uint32) {
	r.record("BindTexture", target, texture)
	if r.textureBindings[r.activeUnit] == nil {
		r.textureBindings[r.activeUnit] = map[uint32]uint32{}
	}
	r.textureBindings[r.activeUnit][target] = texture
}

func (r *Recorder) TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32) {
	r.record("TexImage2D", target, level, internalFormat, width, height, format, xtype)
}

func (r *Recorder) TexParameteri(target, pname uint32, param int32) {
	r.record("TexParameteri", target, pname, param)
}

func (r *Recorder) Viewport(x, y, width, height int32) {
	r.record("Viewport", x, y, width, height)
	r.viewport = [4]int32{x, y, width, height}
}

func (r *Recorder) GetViewport() [4]int32 {
	r.record("GetViewport")
	return r.viewport
}

func (r *Recorder) ClearColor(red, green, blue, alpha float32) {
	r.record("ClearColor", red, green, blue, alpha)
}

func (r *Recorder) Clear(mask uint32) {
	r.record("Clear", mask)
}

func (r *Recorder) Enable(capability uint32) {
	r.record("Enable", capability)
	r.enabled[capability] = true
}

func (r *Recorder) Disable(capability uint32) {
	r.record("Disable", capability)
	delete(r.enabled, capability)
}

func (r *Recorder) CreateBuffer() uint32 {
	h := r.create(KindBuffer)
	r.record("CreateBuffer", h)
	return h
}

func (r *Recorder) DeleteBuffer(buffer uint32) {
	r.record("DeleteBuffer", buffer)
	r.destroy(KindBuffer, buffer)
	delete(r.bufferData, buffer)
}

func (r *Recorder) BindBuffer(target, buffer uint32) {
	r.record("BindBuffer", target, buffer)
	r.buffers[target] = buffer
}

func (r *Recorder) BufferFloat32(target uint32, data []float32, usage uint32) {
	r.record("BufferFloat32", target, len(data), usage)
	r.bufferData[r.buffers[target]] = append([]float32(nil), data...)
}

func (r *Recorder) BufferUint32(target uint32, data []uint32, usage uint32) {
	r.record("BufferUint32", target, len(data), usage)
	r.bufferData[r.buffers[target]] = append([]uint32(nil), data...)
}

func (r *Recorder) EnableVertexAttribArray(index uint32) {
	r.record("EnableVertexAttribArray", index)
}

func (r *Recorder) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int) {
	r.record("VertexAttribPointer", index, size, xtype, normalized, stride, offset)
}

func (r *Recorder) DrawElements(mode uint32, count int32, xtype uint32, offset int) {
	r.record("DrawElements", mode, count, xtype, offset)
}

func (r *Recorder) CreateShader(kind uint32) uint32 {
	h := r.create(KindShader)
	r.record("CreateShader", kind, h)
	return h
}

func (r *Recorder) CompileShader(shader uint32, source string) error {
	r.record("CompileShader", shader)
	if r.FailCompile {
		return errors.New("0:1(1): error: syntax error")
	}
	return nil
}

func (r *Recorder) DeleteShader(shader uint32) {
	r.record("DeleteShader", shader)
	r.destroy(KindShader, shader)
}

func (r *Recorder) CreateProgram() uint32 {
	h := r.create(KindProgram)
	r.record("CreateProgram", h)
	return h
}

func (r *Recorder) AttachShader(program, shader uint32) {
	r.record("AttachShader", program, shader)
}

func (r *Recorder) LinkProgram(program uint32) error {
	r.record("LinkProgram", program)
	if r.FailLink {
		return errors.New("error: linking failed")
	}
	return nil
}

func (r *Recorder) DeleteProgram(program uint32) {
	r.record("DeleteProgram", program)
	r.destroy(KindProgram, program)
	if r.program == program {
		r.program = 0
	}
}

func (r *Recorder) UseProgram(program uint32) {
	r.record("UseProgram", program)
	r.program = program
}

func (r *Recorder) AttribLocation(program uint32, name string) int32 {
	r.record("AttribLocation", program, name)
	if r.MissingUniforms[name] {
		return gpu.Absent
	}
	return 0
}

func (r *Recorder) UniformLocation(program uint32, name string) int32 {
	r.record("UniformLocation", program, name)
	if r.MissingUniforms[name] {
		return gpu.Absent
	}
	if r.locationByName[program] == nil {
		r.locationByName[program] = map[string]int32{}
	}
	if loc, ok := r.locationByName[program][name]; ok {
		return loc
	}
	loc := r.nextLocation
	r.nextLocation++
	r.locationByName[program][name] = loc
	r.uniformLocations[loc] = UniformWrite{Program: program, Name: name}
	return loc
}

func (r *Recorder) setUniform(call string, location int32, value any) {
	r.record(call, location, value)
	if location == gpu.Absent {
		panic(fmt.Sprintf("gputest: %s on absent location", call))
	}
	u, ok := r.uniformLocations[location]
	if !ok {
		panic(fmt.Sprintf("gputest: %s on unknown location %d", call, location))
	}
	if u.Program != r.program {
		panic(fmt.Sprintf("gputest: %s %q of program %d while program %d is in use", call, u.Name, u.Program, r.program))
	}
	r.Uniforms = append(r.Uniforms, UniformWrite{Program: u.Program, Name: u.Name, Value: value})
}

func (r *Recorder) Uniform1i(location int32, v int32) { r.setUniform("Uniform1i", location, v) }

func (r *Recorder) Uniform1f(location int32, v float32) { r.setUniform("Uniform1f", location, v) }

func (r *Recorder) Uniform3f(location int32, x, y, z float32) {
	r.setUniform("Uniform3f", location, [3]float32{x, y, z})
}

func (r *Recorder) UniformMatrix4(location int32, m [16]float32) {
	r.setUniform("UniformMatrix4", location, m)
}

func (r *Recorder) UniformMatrix4Array(location int32, ms [][16]float32) {
	r.setUniform("UniformMatrix4Array", location, append([][16]float32(nil), ms...))
}

func (r *Recorder) ReadPixelsRGBA(x, y, width, height int32) []byte {
	r.record("ReadPixelsRGBA", x, y, width, height)
	return make([]byte, width*height*4)
}

func (r *Recorder) ReadDepth(x, y, width, height int32) []float32 {
	r.record("ReadDepth", x, y, width, height)
	out := make([]float32, width*height)
	if r.Depth == nil {
		return out
	}
	for j := int32(0); j < height; j++ {
		for i := int32(0); i < width; i++ {
			out[j*width+i] = r.Depth(x+i, y+j)
		}
	}
	return out
}

var _ gpu.Context = (*Recorder)(nil)
