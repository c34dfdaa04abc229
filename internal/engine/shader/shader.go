// Package shader provides shader compilation and program caching.
package shader

import (
	"fmt"

	"github.com/Faultbox/midgard-shadows/internal/engine/gpu"
)

// CompileProgram compiles vertex and fragment shaders and links them into a program.
// Returns the program ID or an error if compilation/linking fails.
func CompileProgram(ctx gpu.Context, vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(ctx, vertexSrc, gpu.VertexShader, "vertex")
	if err != nil {
		return 0, err
	}
	defer ctx.DeleteShader(vertShader)

	fragShader, err := compileShader(ctx, fragmentSrc, gpu.FragmentShader, "fragment")
	if err != nil {
		return 0, err
	}
	defer ctx.DeleteShader(fragShader)

	program := ctx.CreateProgram()
	ctx.AttachShader(program, vertShader)
	ctx.AttachShader(program, fragShader)
	if err := ctx.LinkProgram(program); err != nil {
		ctx.DeleteProgram(program)
		return 0, fmt.Errorf("link: %w", err)
	}

	return program, nil
}

// compileShader compiles a single shader of the given type.
func compileShader(ctx gpu.Context, source string, shaderType uint32, name string) (uint32, error) {
	shader := ctx.CreateShader(shaderType)
	if err := ctx.CompileShader(shader, source); err != nil {
		ctx.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %w", name, err)
	}
	return shader, nil
}

// LocationCache memoizes uniform locations per program.
// Lookups of names a program does not use return gpu.Absent.
type LocationCache struct {
	ctx  gpu.Context
	locs map[uint32]map[string]int32
}

// NewLocationCache returns an empty cache bound to ctx.
func NewLocationCache(ctx gpu.Context) *LocationCache {
	return &LocationCache{ctx: ctx, locs: map[uint32]map[string]int32{}}
}

// Uniform returns the location of name in program.
func (c *LocationCache) Uniform(program uint32, name string) int32 {
	byName, ok := c.locs[program]
	if !ok {
		byName = map[string]int32{}
		c.locs[program] = byName
	}
	if loc, ok := byName[name]; ok {
		return loc
	}
	loc := c.ctx.UniformLocation(program, name)
	byName[name] = loc
	return loc
}

// Forget drops cached locations of program, e.g. after it was deleted.
func (c *LocationCache) Forget(program uint32) {
	delete(c.locs, program)
}
