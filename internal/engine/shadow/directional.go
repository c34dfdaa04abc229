package shadow

import (
	"github.com/google/uuid"

	"github.com/Faultbox/midgard-shadows/internal/engine/framebuffer"
	"github.com/Faultbox/midgard-shadows/internal/engine/gpu"
	"github.com/Faultbox/midgard-shadows/pkg/math"
)

// DefaultDirectionalUnit is the texture unit index a directional light
// samples its shadow map from in the main pass.
const DefaultDirectionalUnit uint32 = 1

// DirectionalLight casts orthographic shadows along a single direction.
type DirectionalLight struct {
	core   *passCore
	target *mapTarget

	position  math.Vec3
	direction math.Vec3
	intensity float32
	unit      uint32

	lightSpace math.Mat4
	builds     int

	cached struct {
		valid     bool
		position  math.Vec3
		direction math.Vec3
		intensity float32
	}
}

// NewDirectionalLight creates a light pointing straight down from the origin.
// If the shadow program fails to compile the light is still returned, with
// Usable reporting false. An incomplete shadow map framebuffer is an error.
func NewDirectionalLight(bindings *Bindings, settings Settings) (*DirectionalLight, error) {
	target := &mapTarget{ctx: bindings.Context()}
	l := &DirectionalLight{
		core:       newPassCore(bindings, Directional, settings, target),
		target:     target,
		direction:  math.Vec3{X: 0, Y: -1, Z: 0},
		intensity:  1,
		unit:       DefaultDirectionalUnit,
		lightSpace: math.Identity(),
	}
	if err := l.core.init(); err != nil {
		l.core.dispose()
		return nil, err
	}
	return l, nil
}

// ID identifies the light in logs.
func (l *DirectionalLight) ID() uuid.UUID { return l.core.id }

// Kind is always Directional.
func (l *DirectionalLight) Kind() Kind { return Directional }

// Usable reports whether the shadow program compiled.
func (l *DirectionalLight) Usable() bool { return l.core.binding != nil }

// CastsShadows reports whether passes currently render into a shadow map.
func (l *DirectionalLight) CastsShadows() bool { return l.core.active() }

// SetDirection stores a normalized copy of dir. The light-space matrix is
// rebuilt by the next Update.
func (l *DirectionalLight) SetDirection(dir math.Vec3) {
	if n := dir.Normalize(); n != (math.Vec3{}) {
		l.direction = n
	}
}

// Direction returns the normalized light direction.
func (l *DirectionalLight) Direction() math.Vec3 { return l.direction }

// SetPosition moves the light-space eye. Takes effect on the next Update.
func (l *DirectionalLight) SetPosition(pos math.Vec3) { l.position = pos }

// Position returns the light-space eye position.
func (l *DirectionalLight) Position() math.Vec3 { return l.position }

// SetIntensity sets the main-pass diffuse intensity.
func (l *DirectionalLight) SetIntensity(v float32) { l.intensity = v }

// Intensity returns the main-pass diffuse intensity.
func (l *DirectionalLight) Intensity() float32 { return l.intensity }

// SetTextureUnit sets the unit index used by ApplyToShader.
func (l *DirectionalLight) SetTextureUnit(unit uint32) { l.unit = unit }

// Size returns the shadow map edge length of the current preset.
func (l *DirectionalLight) Size() int32 { return l.core.size }

// Bias returns the depth bias of the current preset.
func (l *DirectionalLight) Bias() float32 { return l.core.bias }

// Preset returns the index of the current quality preset.
func (l *DirectionalLight) Preset() int { return l.core.preset }

// LightSpaceMatrix returns the matrix computed by the last update.
func (l *DirectionalLight) LightSpaceMatrix() math.Mat4 { return l.lightSpace }

// ShadowMapTexture returns the color texture holding packed depth, or 0.
func (l *DirectionalLight) ShadowMapTexture() uint32 {
	if !l.core.active() {
		return 0
	}
	return l.target.fb.ColorTexture()
}

// DebugTexture returns the texture passes draw into while force-test mode is
// on, or 0 otherwise.
func (l *DirectionalLight) DebugTexture() uint32 { return l.core.debugTexture() }

// PreviewTexture returns what the shadow passes currently draw into: the
// debug texture in force-test mode, else the shadow map.
func (l *DirectionalLight) PreviewTexture() uint32 {
	if tex := l.DebugTexture(); tex != 0 {
		return tex
	}
	return l.ShadowMapTexture()
}

// ShadowMap returns the shadow map render target, or nil when not allocated.
func (l *DirectionalLight) ShadowMap() *framebuffer.Target {
	if !l.core.active() {
		return nil
	}
	return l.target.fb
}

// Update rebuilds the light-space matrix if position or direction changed.
// The first call always reports a change.
func (l *DirectionalLight) Update() bool {
	moved := !l.cached.valid || l.position != l.cached.position || l.direction != l.cached.direction
	changed := moved || l.intensity != l.cached.intensity

	if moved {
		l.UpdateLightSpaceMatrix(nil)
	}
	l.cached.valid = true
	l.cached.position = l.position
	l.cached.direction = l.direction
	l.cached.intensity = l.intensity
	return changed
}

// UpdateLightSpaceMatrix rebuilds the light-space matrix from bounds, or from
// the configured default bounds when bounds is nil. The box is used as given;
// it is not fitted to the scene.
func (l *DirectionalLight) UpdateLightSpaceMatrix(bounds *Bounds) {
	b := l.core.settings.Bounds
	if bounds != nil {
		b = *bounds
	}
	l.lightSpace = DirectionalLightSpace(l.position, l.direction, b, l.core.settings.fixedDistance())
	l.builds++
}

// Passes is always 1.
func (l *DirectionalLight) Passes() int { return 1 }

// BeginPass is BeginShadowPass; i is ignored.
func (l *DirectionalLight) BeginPass(int) { l.BeginShadowPass() }

// BeginShadowPass saves the viewport, binds and clears the shadow map and
// activates the shadow program with this light's matrix.
func (l *DirectionalLight) BeginShadowPass() {
	l.core.begin("BeginShadowPass", 0, l.lightSpace)
}

// RenderObjectToShadowMap draws obj into the shadow map. It must be called
// between BeginShadowPass and EndShadowPass.
func (l *DirectionalLight) RenderObjectToShadowMap(obj Caster) {
	l.core.render("RenderObjectToShadowMap", obj)
}

// EndShadowPass unbinds the shadow map and restores the saved viewport.
func (l *DirectionalLight) EndShadowPass() {
	l.core.end("EndShadowPass")
}

// BindShadowMapTexture binds the shadow map to texture unit index unit,
// clearing every other target on that unit first, and returns unit.
func (l *DirectionalLight) BindShadowMapTexture(unit uint32) uint32 {
	var tex uint32
	if l.core.active() {
		tex = l.target.fb.ColorTexture()
	}
	bindExclusive(l.core.ctx, unit, gpu.Texture2D, tex)
	return unit
}

// ApplyToShader writes this light's main-pass uniforms into program, which
// must be in use. Shadow inputs are written only while the light casts
// shadows; otherwise just the enabled flag is cleared.
func (l *DirectionalLight) ApplyToShader(program uint32, index int) {
	ctx := l.core.ctx
	names := DirectionalUniformNames(index)
	loc := func(name string) int32 { return l.core.uniform(program, name) }

	setVec3(ctx, loc(names.Direction), l.direction.X, l.direction.Y, l.direction.Z)
	setVec3(ctx, loc(names.Position), l.position.X, l.position.Y, l.position.Z)
	setFloat(ctx, loc(names.Intensity), l.intensity)

	if !l.core.active() {
		setInt(ctx, loc(names.ShadowsEnabled), 0)
		return
	}

	unit := l.BindShadowMapTexture(l.unit)
	setInt(ctx, loc(names.ShadowMap), int32(unit))
	setMat4(ctx, loc(names.LightSpaceMatrix), l.lightSpace)
	setInt(ctx, loc(names.ShadowsEnabled), 1)
	setFloat(ctx, loc(names.Bias), l.core.bias)
}

// SetQualityPreset applies preset i and reallocates the shadow map.
// An out-of-range index logs a warning and changes nothing.
func (l *DirectionalLight) SetQualityPreset(i int) error {
	return l.core.setQualityPreset(i)
}

// SyncWithConstants adopts s, reallocating or releasing the shadow map when
// the enabled flag, preset size or force-test mode changed.
func (l *DirectionalLight) SyncWithConstants(s Settings) (bool, error) {
	changed, err := l.core.sync(s)
	if changed && err == nil {
		l.UpdateLightSpaceMatrix(nil)
	}
	return changed, err
}

// Dispose releases every GPU object the light owns. Safe to call repeatedly.
func (l *DirectionalLight) Dispose() {
	l.core.dispose()
}
