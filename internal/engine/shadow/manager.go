package shadow

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-shadows/internal/engine/framebuffer"
	"github.com/Faultbox/midgard-shadows/internal/engine/gpu"
	"github.com/Faultbox/midgard-shadows/pkg/math"
)

// Manager renders a directional shadow map for a light it does not own.
// The caller passes the light transform on every matrix update.
type Manager struct {
	core       *passCore
	target     *mapTarget
	lightSpace math.Mat4
}

// NewManager creates a standalone directional shadow map.
func NewManager(bindings *Bindings, settings Settings) (*Manager, error) {
	target := &mapTarget{ctx: bindings.Context()}
	m := &Manager{
		core:       newPassCore(bindings, Directional, settings, target),
		target:     target,
		lightSpace: math.Identity(),
	}
	if err := m.core.init(); err != nil {
		m.core.dispose()
		return nil, err
	}
	return m, nil
}

// ID identifies the manager in logs.
func (m *Manager) ID() uuid.UUID { return m.core.id }

// Usable reports whether the shadow program compiled.
func (m *Manager) Usable() bool { return m.core.binding != nil }

// CastsShadows reports whether passes currently render into a shadow map.
func (m *Manager) CastsShadows() bool { return m.core.active() }

// Size returns the shadow map edge length in texels.
func (m *Manager) Size() int32 { return m.core.size }

// Bias returns the depth bias of the active preset.
func (m *Manager) Bias() float32 { return m.core.bias }

// UpdateLightSpaceMatrix rebuilds the matrix for a light at lightPos facing
// lightDir, with bounds (or the configured default when nil) used as given.
func (m *Manager) UpdateLightSpaceMatrix(lightPos, lightDir math.Vec3, bounds *Bounds) {
	b := m.core.settings.Bounds
	if bounds != nil {
		b = *bounds
	}
	m.lightSpace = DirectionalLightSpace(lightPos, lightDir.Normalize(), b, m.core.settings.fixedDistance())
}

// LightSpaceMatrix returns the matrix of the last UpdateLightSpaceMatrix.
func (m *Manager) LightSpaceMatrix() math.Mat4 { return m.lightSpace }

// ShadowMapTexture returns the color texture holding packed depth, or 0.
func (m *Manager) ShadowMapTexture() uint32 {
	if !m.core.active() {
		return 0
	}
	return m.target.fb.ColorTexture()
}

// ShadowMap returns the shadow map render target, or nil when not allocated.
func (m *Manager) ShadowMap() *framebuffer.Target {
	if !m.core.active() {
		return nil
	}
	return m.target.fb
}

// BeginShadowPass binds the shadow map and the depth program.
// It must be paired with EndShadowPass.
func (m *Manager) BeginShadowPass() {
	m.core.begin("BeginShadowPass", 0, m.lightSpace)
}

// RenderObjectToShadowMap draws obj into the current pass.
func (m *Manager) RenderObjectToShadowMap(obj Caster) {
	m.core.render("RenderObjectToShadowMap", obj)
}

// EndShadowPass unbinds the shadow map and restores the saved viewport.
func (m *Manager) EndShadowPass() {
	m.core.end("EndShadowPass")
}

// BindShadowMapTexture binds the shadow map to texture unit index unit and returns unit.
func (m *Manager) BindShadowMapTexture(unit uint32) uint32 {
	bindExclusive(m.core.ctx, unit, gpu.Texture2D, m.ShadowMapTexture())
	return unit
}

// SetQualityPreset applies preset i and reallocates the shadow map.
// Out-of-range indices are logged and ignored.
func (m *Manager) SetQualityPreset(i int) error {
	return m.core.setQualityPreset(i)
}

// SyncWithConstants adopts s and reports whether anything changed.
func (m *Manager) SyncWithConstants(s Settings) (bool, error) {
	return m.core.sync(s)
}

// Dispose releases the shadow map and buffers. Safe to call repeatedly.
func (m *Manager) Dispose() {
	m.core.dispose()
}

// Analysis is a sparse readback of the shadow map depth.
type Analysis struct {
	// Samples are center, bottom-left, bottom-right, top-left, top-right.
	Samples [5]float32
	Min     float32
	Max     float32
	// Varying is false when every sample holds the same depth, which
	// usually means nothing was rendered into the map.
	Varying bool
}

// DebugAnalyzeShadowMap reads five depth samples of the last rendered map
// through a temporary framebuffer. It needs float readback.
func (m *Manager) DebugAnalyzeShadowMap() (Analysis, error) {
	var a Analysis
	ctx := m.core.ctx
	if !ctx.Caps().FloatReadback {
		return a, ErrReadbackUnsupported
	}
	switch m.core.state {
	case stateDisposed:
		return a, ErrDisposed
	case stateRendering:
		m.core.violation("DebugAnalyzeShadowMap")
		return a, fmt.Errorf("analyze shadow map: pass in progress")
	}
	if !m.core.active() {
		return a, fmt.Errorf("analyze shadow map: no shadow map allocated")
	}

	fb := m.target.fb
	size := fb.Size()
	fbo := ctx.CreateFramebuffer()
	ctx.BindFramebuffer(gpu.Framebuffer, fbo)
	ctx.FramebufferTexture2D(gpu.Framebuffer, gpu.ColorAttachment0, gpu.Texture2D, fb.ColorTexture(), 0)
	ctx.FramebufferRenderbuffer(gpu.Framebuffer, gpu.DepthAttachment, gpu.Renderbuffer, fb.DepthRenderbuffer())
	defer func() {
		ctx.BindFramebuffer(gpu.Framebuffer, 0)
		ctx.DeleteFramebuffer(fbo)
	}()

	if status := ctx.CheckFramebufferStatus(gpu.Framebuffer); status != gpu.FramebufferComplete {
		return a, &framebuffer.IncompleteError{Status: status, Size: size}
	}

	last := size - 1
	points := [5][2]int32{{size / 2, size / 2}, {0, 0}, {last, 0}, {0, last}, {last, last}}
	for i, p := range points {
		a.Samples[i] = ctx.ReadDepth(p[0], p[1], 1, 1)[0]
	}

	a.Min, a.Max = a.Samples[0], a.Samples[0]
	for _, v := range a.Samples[1:] {
		a.Min = min(a.Min, v)
		a.Max = max(a.Max, v)
	}
	a.Varying = a.Max-a.Min > 1e-6

	m.core.log.Info("shadow map analysis",
		zap.Float32("min", a.Min),
		zap.Float32("max", a.Max),
		zap.Bool("varying", a.Varying))
	return a, nil
}
