// Package scene drives shadow passes and the lit main pass for a set of meshes.
package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-shadows/internal/engine/framebuffer"
	"github.com/Faultbox/midgard-shadows/internal/engine/gpu"
	"github.com/Faultbox/midgard-shadows/internal/engine/mesh"
	"github.com/Faultbox/midgard-shadows/internal/engine/shader"
	"github.com/Faultbox/midgard-shadows/internal/engine/shader/shaders"
	"github.com/Faultbox/midgard-shadows/internal/engine/shadow"
	"github.com/Faultbox/midgard-shadows/internal/logger"
	"github.com/Faultbox/midgard-shadows/pkg/math"
)

// Config contains scene configuration options.
type Config struct {
	Shadows    shadow.Settings
	PointLight bool
	// FitSun sizes the sun's orthographic box to the meshes instead of the
	// configured bounds.
	FitSun bool
	// Dialect overrides the shader dialect picked from the context caps.
	Dialect shaders.Dialect
}

// DefaultConfig returns a scene with default shadows and a point light.
func DefaultConfig() Config {
	return Config{
		Shadows:    shadow.DefaultSettings(),
		PointLight: true,
	}
}

// drawable is a mesh with its static main-pass buffers.
type drawable struct {
	mesh  *mesh.Mesh
	vbo   uint32
	ibo   uint32
	count int32
}

// Scene owns the lights, the main-pass program and every mesh drawn.
type Scene struct {
	ctx      gpu.Context
	programs *shader.Registry
	bindings *shadow.Bindings
	locs     *shader.LocationCache
	log      *zap.Logger

	program  uint32
	position int32
	normal   int32

	config   Config
	drawn    []*drawable
	casters  []shadow.Caster
	fitted   *shadow.Bounds
	output   *framebuffer.Target
	released bool

	Sun   *shadow.DirectionalLight
	Point *shadow.OmniLight // nil when disabled

	ClearColor [3]float32
}

// New compiles the main-pass program and creates the lights. A main-pass
// compile failure is an error; a shadow program failure only leaves the
// affected light unable to cast shadows.
func New(ctx gpu.Context, cfg Config) (*Scene, error) {
	dialect := cfg.Dialect
	if dialect == "" {
		dialect = shadow.DialectFor(ctx.Caps())
	}
	programs := shader.NewRegistry(ctx)

	s := &Scene{
		ctx:        ctx,
		programs:   programs,
		bindings:   shadow.NewBindings(programs, dialect),
		locs:       shader.NewLocationCache(ctx),
		log:        logger.Named("scene"),
		config:     cfg,
		ClearColor: [3]float32{0.45, 0.55, 0.65},
	}

	vs, fs, err := shaders.Source(shaders.Scene, dialect)
	if err != nil {
		return nil, err
	}
	s.program, err = programs.Program(shaders.Name(shaders.Scene, dialect), vs, fs)
	if err != nil {
		return nil, fmt.Errorf("main pass: %w", err)
	}
	s.position = ctx.AttribLocation(s.program, "aPosition")
	s.normal = ctx.AttribLocation(s.program, "aNormal")
	s.initSamplers(dialect)

	s.Sun, err = shadow.NewDirectionalLight(s.bindings, cfg.Shadows)
	if err != nil {
		programs.Release()
		return nil, fmt.Errorf("creating sun: %w", err)
	}
	s.Sun.SetPosition(math.Vec3{X: 0, Y: shadow.FixedDistance, Z: 0})

	if cfg.PointLight {
		s.Point, err = shadow.NewOmniLight(s.bindings, cfg.Shadows)
		if err != nil {
			s.Sun.Dispose()
			programs.Release()
			return nil, fmt.Errorf("creating point light: %w", err)
		}
	}

	s.log.Info("scene created",
		zap.String("dialect", string(dialect)),
		zap.Bool("point_light", cfg.PointLight),
		zap.Bool("sun_shadows", s.Sun.CastsShadows()))
	return s, nil
}

// initSamplers points every shadow sampler at its light's default unit once.
// Lights that cast no shadows never write their samplers, and samplers of
// different types left on unit 0 make every main-pass draw fail.
func (s *Scene) initSamplers(dialect shaders.Dialect) {
	s.ctx.UseProgram(s.program)
	s.setInt(shadow.DirectionalUniformNames(0).ShadowMap, int32(shadow.DefaultDirectionalUnit))
	omni := shadow.OmniUniformNames(0)
	if dialect == shaders.Legacy {
		for face, name := range omni.FaceMaps {
			s.setInt(name, int32(shadow.DefaultOmniUnit)+int32(face))
		}
	} else {
		s.setInt(omni.ShadowMap, int32(shadow.DefaultOmniUnit))
	}
	s.ctx.UseProgram(0)
}

// Add uploads meshes to static buffers and registers them as shadow casters.
func (s *Scene) Add(meshes ...*mesh.Mesh) {
	for _, m := range meshes {
		d := &drawable{mesh: m, count: int32(len(m.Indices))}
		d.vbo = s.ctx.CreateBuffer()
		s.ctx.BindBuffer(gpu.ArrayBuffer, d.vbo)
		s.ctx.BufferFloat32(gpu.ArrayBuffer, m.Interleaved(), gpu.StaticDraw)
		d.ibo = s.ctx.CreateBuffer()
		s.ctx.BindBuffer(gpu.ElementArrayBuffer, d.ibo)
		s.ctx.BufferUint32(gpu.ElementArrayBuffer, m.Indices, gpu.StaticDraw)

		s.drawn = append(s.drawn, d)
		s.casters = append(s.casters, m)
	}
	s.ctx.BindBuffer(gpu.ArrayBuffer, 0)
	s.ctx.BindBuffer(gpu.ElementArrayBuffer, 0)

	if s.config.FitSun {
		s.refit()
	}
	s.log.Debug("meshes added", zap.Int("added", len(meshes)), zap.Int("total", len(s.drawn)))
}

// Meshes returns every mesh in draw order.
func (s *Scene) Meshes() []*mesh.Mesh {
	out := make([]*mesh.Mesh, len(s.drawn))
	for i, d := range s.drawn {
		out[i] = d.mesh
	}
	return out
}

// Bounds returns the world-space box around every mesh.
func (s *Scene) Bounds() shadow.AABB {
	return mesh.SceneBounds(s.Meshes())
}

func (s *Scene) refit() {
	scene := s.Bounds()
	if scene.Empty() {
		s.fitted = nil
		return
	}
	distance := s.config.Shadows.FixedDistance
	if distance <= 0 {
		distance = shadow.FixedDistance
	}
	b := shadow.BoundsFromAABB(scene, distance)
	s.fitted = &b
	s.Sun.UpdateLightSpaceMatrix(s.fitted)
}

// Lights returns the shadow-casting lights in ApplyToShader order.
func (s *Scene) Lights() []shadow.Light {
	lights := []shadow.Light{s.Sun}
	if s.Point != nil {
		lights = append(lights, s.Point)
	}
	return lights
}

// Bindings returns the shadow program registry shared by the lights.
func (s *Scene) Bindings() *shadow.Bindings {
	return s.bindings
}

// RenderTo directs the main pass into target. Nil restores the default framebuffer.
func (s *Scene) RenderTo(target *framebuffer.Target) {
	s.output = target
}

// Frame renders one frame: light updates, every shadow pass, then the main
// pass. The main pass draws into the default framebuffer with the given
// viewport, or into the RenderTo target at its full size.
func (s *Scene) Frame(viewProj math.Mat4, viewport [4]int32) {
	s.ctx.Enable(gpu.DepthTest)

	if s.Sun.Update() && s.fitted != nil {
		s.Sun.UpdateLightSpaceMatrix(s.fitted)
	}
	if s.Point != nil {
		s.Point.Update()
	}

	for _, l := range s.Lights() {
		shadow.RenderShadows(l, s.casters)
	}

	if s.output.Valid() {
		s.output.Bind()
	} else {
		s.ctx.BindFramebuffer(gpu.Framebuffer, 0)
		s.ctx.Viewport(viewport[0], viewport[1], viewport[2], viewport[3])
	}
	s.ctx.ClearColor(s.ClearColor[0], s.ClearColor[1], s.ClearColor[2], 1)
	s.ctx.Clear(gpu.ColorBufferBit | gpu.DepthBufferBit)

	s.ctx.UseProgram(s.program)
	for _, l := range s.Lights() {
		l.ApplyToShader(s.program, 0)
	}
	s.setMat4("uViewProj", viewProj)

	for _, d := range s.drawn {
		s.draw(d)
	}

	if s.output.Valid() {
		s.ctx.BindFramebuffer(gpu.Framebuffer, 0)
	}
}

func (s *Scene) draw(d *drawable) {
	s.setMat4("uModel", d.mesh.ModelMatrix())
	if loc := s.locs.Uniform(s.program, "uAlbedo"); loc != gpu.Absent {
		s.ctx.Uniform3f(loc, d.mesh.Albedo[0], d.mesh.Albedo[1], d.mesh.Albedo[2])
	}

	s.ctx.BindBuffer(gpu.ArrayBuffer, d.vbo)
	if s.position != gpu.Absent {
		s.ctx.EnableVertexAttribArray(uint32(s.position))
		s.ctx.VertexAttribPointer(uint32(s.position), 3, gpu.Float, false, 6*4, 0)
	}
	if s.normal != gpu.Absent {
		s.ctx.EnableVertexAttribArray(uint32(s.normal))
		s.ctx.VertexAttribPointer(uint32(s.normal), 3, gpu.Float, false, 6*4, 3*4)
	}
	s.ctx.BindBuffer(gpu.ElementArrayBuffer, d.ibo)
	s.ctx.DrawElements(gpu.Triangles, d.count, gpu.UnsignedInt, 0)
}

func (s *Scene) setInt(name string, v int32) {
	if loc := s.locs.Uniform(s.program, name); loc != gpu.Absent {
		s.ctx.Uniform1i(loc, v)
	}
}

func (s *Scene) setMat4(name string, m math.Mat4) {
	if loc := s.locs.Uniform(s.program, name); loc != gpu.Absent {
		s.ctx.UniformMatrix4(loc, m)
	}
}

// ApplySettings reconciles every light with settings and reports whether
// any light changed. The first error is returned after all lights synced.
func (s *Scene) ApplySettings(settings shadow.Settings) (bool, error) {
	s.config.Shadows = settings
	var (
		changed  bool
		firstErr error
	)
	for _, l := range s.Lights() {
		c, err := l.SyncWithConstants(settings)
		changed = changed || c
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if changed && s.fitted != nil {
		s.Sun.UpdateLightSpaceMatrix(s.fitted)
	}
	return changed, firstErr
}

// Settings returns the shadow settings last applied.
func (s *Scene) Settings() shadow.Settings {
	return s.config.Shadows
}

// Release deletes every GPU object owned by the scene. Safe to call repeatedly.
func (s *Scene) Release() {
	if s.released {
		return
	}
	s.released = true
	for _, l := range s.Lights() {
		l.Dispose()
	}
	for _, d := range s.drawn {
		s.ctx.DeleteBuffer(d.vbo)
		s.ctx.DeleteBuffer(d.ibo)
	}
	s.drawn = nil
	s.casters = nil
	s.locs.Forget(s.program)
	s.programs.Release()
}
