package shadow

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-shadows/internal/engine/gpu"
	"github.com/Faultbox/midgard-shadows/internal/engine/shader"
	"github.com/Faultbox/midgard-shadows/internal/engine/shader/shaders"
	"github.com/Faultbox/midgard-shadows/internal/logger"
)

// Locations of the shadow program inputs. Optional entries are gpu.Absent
// when the compiled program does not use them.
type Locations struct {
	Position         int32 // attribute
	LightSpaceMatrix int32
	Model            int32

	LightPos           int32 // omnidirectional only
	FarPlane           int32 // omnidirectional only
	DebugShadowMap     int32
	ForceShadowMapTest int32
	ShadowMapSize      int32
}

// Binding is a compiled shadow program and its location table.
type Binding struct {
	Kind      Kind
	Program   uint32
	Locations Locations
}

// Bindings compiles one shadow program per Kind and shares it between lights.
type Bindings struct {
	programs *shader.Registry
	dialect  shaders.Dialect
	bound    map[Kind]*Binding
	log      *zap.Logger
}

// NewBindings returns a registry compiling through programs in the given dialect.
func NewBindings(programs *shader.Registry, dialect shaders.Dialect) *Bindings {
	return &Bindings{
		programs: programs,
		dialect:  dialect,
		bound:    map[Kind]*Binding{},
		log:      logger.Named("shadow"),
	}
}

// DialectFor picks the shader dialect matching caps.
func DialectFor(caps gpu.Caps) shaders.Dialect {
	if caps.CubeFaceAttachment {
		return shaders.Core
	}
	return shaders.Legacy
}

// Context returns the graphics context programs are compiled on.
func (b *Bindings) Context() gpu.Context {
	return b.programs.Context()
}

// Programs returns the underlying program registry.
func (b *Bindings) Programs() *shader.Registry {
	return b.programs
}

// Bind returns the binding of kind, compiling the program on first use.
// A failed compile is returned every time until one succeeds.
func (b *Bindings) Bind(kind Kind) (*Binding, error) {
	if binding, ok := b.bound[kind]; ok {
		return binding, nil
	}

	vs, fs, err := shaders.Source(kind.variant(), b.dialect)
	if err != nil {
		return nil, err
	}
	program, err := b.programs.Program(shaders.Name(kind.variant(), b.dialect), vs, fs)
	if err != nil {
		b.log.Error("shadow program failed", zap.Stringer("kind", kind), zap.Error(err))
		return nil, err
	}

	ctx := b.Context()
	locs := Locations{
		Position:           ctx.AttribLocation(program, "aPosition"),
		LightSpaceMatrix:   ctx.UniformLocation(program, "uLightSpaceMatrix"),
		Model:              ctx.UniformLocation(program, "uModel"),
		LightPos:           ctx.UniformLocation(program, "uLightPos"),
		FarPlane:           ctx.UniformLocation(program, "uFarPlane"),
		DebugShadowMap:     ctx.UniformLocation(program, "uDebugShadowMap"),
		ForceShadowMapTest: ctx.UniformLocation(program, "uForceShadowMapTest"),
		ShadowMapSize:      ctx.UniformLocation(program, "uShadowMapSize"),
	}
	if locs.Position == gpu.Absent || locs.LightSpaceMatrix == gpu.Absent {
		err := fmt.Errorf("shadow program %s: aPosition or uLightSpaceMatrix missing", kind)
		b.log.Error("shadow program unusable", zap.Stringer("kind", kind), zap.Error(err))
		return nil, err
	}

	binding := &Binding{Kind: kind, Program: program, Locations: locs}
	b.bound[kind] = binding
	b.log.Debug("shadow program bound",
		zap.Stringer("kind", kind),
		zap.Uint32("program", program),
		zap.String("dialect", string(b.dialect)))
	return binding, nil
}

// setInt writes an optional int uniform.
func setInt(ctx gpu.Context, loc int32, v int32) {
	if loc != gpu.Absent {
		ctx.Uniform1i(loc, v)
	}
}

// setFloat writes an optional float uniform.
func setFloat(ctx gpu.Context, loc int32, v float32) {
	if loc != gpu.Absent {
		ctx.Uniform1f(loc, v)
	}
}

// setVec3 writes an optional vec3 uniform.
func setVec3(ctx gpu.Context, loc int32, x, y, z float32) {
	if loc != gpu.Absent {
		ctx.Uniform3f(loc, x, y, z)
	}
}

// setMat4 writes an optional mat4 uniform.
func setMat4(ctx gpu.Context, loc int32, m [16]float32) {
	if loc != gpu.Absent {
		ctx.UniformMatrix4(loc, m)
	}
}

// setMat4Array writes an optional mat4 array uniform.
func setMat4Array(ctx gpu.Context, loc int32, ms [][16]float32) {
	if loc != gpu.Absent {
		ctx.UniformMatrix4Array(loc, ms)
	}
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
