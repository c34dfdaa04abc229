package shadow

import (
	"github.com/google/uuid"

	"github.com/Faultbox/midgard-shadows/pkg/math"
)

// DefaultOmniUnit is the first texture unit index an omnidirectional light
// samples from. Without cube attachments it occupies six consecutive units.
const DefaultOmniUnit uint32 = 2

// OmniLight is a point light casting shadows into all six cube directions.
type OmniLight struct {
	core *passCore
	cube CubeTarget

	position  math.Vec3
	intensity float32
	radius    float32
	near, far float32
	unit      uint32

	lightSpace [6]math.Mat4
	builds     int

	cached struct {
		valid     bool
		position  math.Vec3
		intensity float32
		radius    float32
		near, far float32
	}
}

// NewOmniLight creates a point light at the origin. The cube strategy is
// picked once from the context capabilities.
func NewOmniLight(bindings *Bindings, settings Settings) (*OmniLight, error) {
	cube := NewCubeTarget(bindings.Context())
	l := &OmniLight{
		core:      newPassCore(bindings, Omnidirectional, settings, cube),
		cube:      cube,
		intensity: 1,
		radius:    settings.OmniRadius,
		near:      settings.OmniNear,
		far:       settings.OmniFar,
		unit:      DefaultOmniUnit,
	}
	if l.near <= 0 || l.far <= l.near {
		l.near, l.far = 0.1, 50
	}
	if l.radius <= 0 {
		l.radius = l.far
	}
	l.lightSpace = OmniLightSpace(l.position, l.near, l.far)
	if err := l.core.init(); err != nil {
		l.core.dispose()
		return nil, err
	}
	return l, nil
}

// ID identifies the light in logs.
func (l *OmniLight) ID() uuid.UUID { return l.core.id }

// Kind is always Omnidirectional.
func (l *OmniLight) Kind() Kind { return Omnidirectional }

// Usable reports whether the shadow program compiled.
func (l *OmniLight) Usable() bool { return l.core.binding != nil }

// CastsShadows reports whether passes currently render into the cube target.
func (l *OmniLight) CastsShadows() bool { return l.core.active() }

// SetPosition moves the light. The face matrices follow on the next Update.
func (l *OmniLight) SetPosition(pos math.Vec3) { l.position = pos }

// Position returns the light position.
func (l *OmniLight) Position() math.Vec3 { return l.position }

// SetIntensity sets the main-pass intensity.
func (l *OmniLight) SetIntensity(v float32) { l.intensity = v }

// Intensity returns the main-pass intensity.
func (l *OmniLight) Intensity() float32 { return l.intensity }

// SetRadius sets the attenuation radius used by the main pass.
func (l *OmniLight) SetRadius(r float32) { l.radius = r }

// Radius returns the attenuation radius.
func (l *OmniLight) Radius() float32 { return l.radius }

// SetRange sets the near and far planes of the cube projection. The far
// plane also normalizes distances in the main pass. Invalid ranges are ignored.
func (l *OmniLight) SetRange(near, far float32) {
	if near <= 0 || far <= near {
		l.core.log.Warn("invalid omni range ignored")
		return
	}
	l.near, l.far = near, far
}

// Near returns the near plane of the cube projection.
func (l *OmniLight) Near() float32 { return l.near }

// Far returns the far plane of the cube projection.
func (l *OmniLight) Far() float32 { return l.far }

// SetTextureUnit sets the first unit index used by ApplyToShader.
func (l *OmniLight) SetTextureUnit(unit uint32) { l.unit = unit }

// Size returns the edge length of each cube face in texels.
func (l *OmniLight) Size() int32 { return l.core.size }

// Bias returns the depth bias of the active preset.
func (l *OmniLight) Bias() float32 { return l.core.bias }

// LightSpaceMatrices returns the per-face matrices of the last update.
func (l *OmniLight) LightSpaceMatrices() [6]math.Mat4 { return l.lightSpace }

// ShadowTextures returns the textures backing the cube faces, or nil.
func (l *OmniLight) ShadowTextures() []uint32 {
	if !l.core.active() {
		return nil
	}
	return l.cube.Textures()
}

// Update rebuilds the six face matrices if the position or range changed.
// The first call always reports a change.
func (l *OmniLight) Update() bool {
	moved := !l.cached.valid || l.position != l.cached.position ||
		l.near != l.cached.near || l.far != l.cached.far
	changed := moved || l.intensity != l.cached.intensity || l.radius != l.cached.radius

	if moved {
		l.lightSpace = OmniLightSpace(l.position, l.near, l.far)
		l.builds++
	}
	l.cached.valid = true
	l.cached.position = l.position
	l.cached.intensity = l.intensity
	l.cached.radius = l.radius
	l.cached.near, l.cached.far = l.near, l.far
	return changed
}

// Passes is always 6, one per cube face.
func (l *OmniLight) Passes() int { return len(CubeFaces) }

// BeginPass is BeginShadowPass.
func (l *OmniLight) BeginPass(face int) { l.BeginShadowPass(face) }

// BeginShadowPass starts rendering cube face 0..5 (+X,-X,+Y,-Y,+Z,-Z).
// All six faces must be rendered before the light is used in the main pass.
func (l *OmniLight) BeginShadowPass(face int) {
	if face < 0 || face >= len(CubeFaces) {
		l.core.violation("BeginShadowPass")
		return
	}
	if !l.core.begin("BeginShadowPass", face, l.lightSpace[face]) {
		return
	}
	locs := l.core.binding.Locations
	setVec3(l.core.ctx, locs.LightPos, l.position.X, l.position.Y, l.position.Z)
	setFloat(l.core.ctx, locs.FarPlane, l.far)
}

// RenderObjectToShadowMap draws obj into the current face.
func (l *OmniLight) RenderObjectToShadowMap(obj Caster) {
	l.core.render("RenderObjectToShadowMap", obj)
}

// EndShadowPass unbinds the face and restores the saved viewport.
func (l *OmniLight) EndShadowPass() {
	l.core.end("EndShadowPass")
}

// BindShadowMapTexture binds the cube shadow texture(s) starting at unit
// index unit and returns unit.
func (l *OmniLight) BindShadowMapTexture(unit uint32) uint32 {
	if !l.core.active() {
		return unit
	}
	l.cube.BindForSampling(unit)
	return unit
}

// ApplyToShader writes this light's main-pass uniforms into program, which
// must be in use. Index 0 uses the un-suffixed legacy names.
func (l *OmniLight) ApplyToShader(program uint32, index int) {
	ctx := l.core.ctx
	names := OmniUniformNames(index)
	loc := func(name string) int32 { return l.core.uniform(program, name) }

	setVec3(ctx, loc(names.Position), l.position.X, l.position.Y, l.position.Z)
	setFloat(ctx, loc(names.Radius), l.radius)
	setFloat(ctx, loc(names.Intensity), l.intensity)
	setFloat(ctx, loc(names.FarPlane), l.far)

	if !l.core.active() {
		setInt(ctx, loc(names.ShadowsEnabled), 0)
		return
	}

	unit := l.BindShadowMapTexture(l.unit)
	if l.core.ctx.Caps().CubeFaceAttachment {
		setInt(ctx, loc(names.ShadowMap), int32(unit))
	} else {
		for face, name := range names.FaceMaps {
			setInt(ctx, loc(name), int32(unit)+int32(face))
		}
		faces := make([][16]float32, len(l.lightSpace))
		for i, m := range l.lightSpace {
			faces[i] = m
		}
		setMat4Array(ctx, loc(names.FaceMatrices), faces)
	}
	setInt(ctx, loc(names.ShadowsEnabled), 1)
	setFloat(ctx, loc(names.Bias), l.core.bias)
}

// SetQualityPreset applies preset i and reallocates the cube target.
func (l *OmniLight) SetQualityPreset(i int) error {
	return l.core.setQualityPreset(i)
}

// SyncWithConstants adopts s, including the configured range and radius.
func (l *OmniLight) SyncWithConstants(s Settings) (bool, error) {
	old := l.core.settings
	changed, err := l.core.sync(s)
	if err != nil || !changed {
		return changed, err
	}
	if s.OmniNear != old.OmniNear || s.OmniFar != old.OmniFar {
		l.SetRange(s.OmniNear, s.OmniFar)
	}
	if s.OmniRadius != old.OmniRadius && s.OmniRadius > 0 {
		l.radius = s.OmniRadius
	}
	return true, nil
}

// Dispose releases the cube target and buffers. Safe to call repeatedly.
func (l *OmniLight) Dispose() {
	l.core.dispose()
}
