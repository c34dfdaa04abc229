package shadow

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-shadows/internal/engine/gpu"
	"github.com/Faultbox/midgard-shadows/internal/engine/shader"
	"github.com/Faultbox/midgard-shadows/internal/logger"
	"github.com/Faultbox/midgard-shadows/pkg/math"
)

// passCore is the resource and pass-protocol state shared by every light
// kind and the standalone Manager.
type passCore struct {
	id       uuid.UUID
	kind     Kind
	ctx      gpu.Context
	log      *zap.Logger
	settings Settings

	// binding is nil when the shadow program failed to compile; the light
	// then never renders.
	binding *Binding
	locs    *shader.LocationCache

	target passTarget // steady-state target
	pass   passTarget // target, or its force-test wrapper

	buffers casterBuffers
	state   passState
	face    int
	saved   [4]int32

	preset int
	size   int32
	bias   float32
}

func newPassCore(bindings *Bindings, kind Kind, settings Settings, target passTarget) *passCore {
	id := uuid.New()
	ctx := bindings.Context()
	c := &passCore{
		id:       id,
		kind:     kind,
		ctx:      ctx,
		log:      logger.Named("shadow").With(zap.Stringer("light", id), zap.Stringer("kind", kind)),
		settings: settings,
		locs:     shader.NewLocationCache(ctx),
		target:   target,
		buffers:  casterBuffers{ctx: ctx},
	}
	p, idx := settings.preset()
	c.preset, c.size, c.bias = idx, p.MapSize, p.Bias

	binding, err := bindings.Bind(kind)
	if err != nil {
		c.log.Warn("shadow casting disabled", zap.Error(err))
	} else {
		c.binding = binding
	}
	return c
}

// init allocates the shadow map when shadows are enabled and the program is
// usable. An incomplete framebuffer is returned as an error.
func (c *passCore) init() error {
	if !c.settings.Enabled || c.binding == nil {
		return nil
	}
	return c.allocate()
}

// allocate (re)creates the target at the current size and wraps it for
// force-test mode when requested.
func (c *passCore) allocate() error {
	if c.pass != nil {
		c.pass.Release()
	}
	c.pass = c.target
	if c.settings.ForceShadowTest {
		c.pass = withForceTest(c.ctx, c.target)
	}
	if err := c.pass.Allocate(c.size); err != nil {
		c.state = stateUninitialized
		c.log.Error("shadow map allocation failed", zap.Int32("size", c.size), zap.Error(err))
		return err
	}
	c.state = stateReady
	c.log.Debug("shadow map allocated", zap.Int32("size", c.size), zap.Bool("force_test", c.settings.ForceShadowTest))
	return nil
}

// releaseTarget drops GPU storage but keeps the light usable for a later allocate.
func (c *passCore) releaseTarget() {
	if c.pass != nil {
		c.pass.Release()
		c.pass = nil
	}
	c.state = stateUninitialized
}

// active reports whether the light currently casts shadows.
func (c *passCore) active() bool {
	return c.settings.Enabled && c.binding != nil &&
		(c.state == stateReady || c.state == stateRendering) &&
		c.pass != nil && c.pass.Valid()
}

// debugTexture returns the force-test target's texture, or 0 outside force-test mode.
func (c *passCore) debugTexture() uint32 {
	ft, ok := c.pass.(*forceTestTarget)
	if !ok || !c.active() {
		return 0
	}
	return ft.DebugTexture()
}

// begin starts a pass into face. It returns false when the pass is skipped.
func (c *passCore) begin(op string, face int, lightSpace math.Mat4) bool {
	switch c.state {
	case stateUninitialized:
		// Disabled or degraded lights ignore the protocol
		return false
	case stateRendering, stateDisposed:
		c.violation(op)
		return false
	}

	c.saved = c.ctx.GetViewport()
	c.pass.Begin(face)

	locs := c.binding.Locations
	c.ctx.UseProgram(c.binding.Program)
	c.ctx.UniformMatrix4(locs.LightSpaceMatrix, lightSpace)
	setInt(c.ctx, locs.DebugShadowMap, boolInt(c.settings.DebugShadowMap))
	setInt(c.ctx, locs.ForceShadowMapTest, boolInt(c.settings.ForceShadowTest))
	setFloat(c.ctx, locs.ShadowMapSize, float32(c.size))

	c.state = stateRendering
	c.face = face
	return true
}

// render draws one caster into the current pass.
func (c *passCore) render(op string, obj Caster) {
	if c.state != stateRendering {
		if c.state != stateUninitialized {
			c.violation(op)
		}
		return
	}
	if !c.pass.DrawsCasters() {
		return
	}
	tris := obj.ShadowTriangles()
	if len(tris) == 0 {
		return
	}
	setMat4(c.ctx, c.binding.Locations.Model, modelMatrix(obj))
	c.buffers.draw(tris, c.binding.Locations.Position)
}

// end finishes the pass and restores the viewport saved by begin.
func (c *passCore) end(op string) {
	if c.state != stateRendering {
		if c.state != stateUninitialized {
			c.violation(op)
		}
		return
	}
	c.ctx.BindFramebuffer(gpu.Framebuffer, 0)
	c.ctx.Viewport(c.saved[0], c.saved[1], c.saved[2], c.saved[3])
	c.state = stateReady
}

// setQualityPreset applies preset i. Out-of-range indices are ignored.
func (c *passCore) setQualityPreset(i int) error {
	switch c.state {
	case stateDisposed:
		return ErrDisposed
	case stateRendering:
		c.violation("SetQualityPreset")
		return nil
	}
	if i < 0 || i >= len(c.settings.Presets) {
		c.log.Warn("quality preset out of range", zap.Int("index", i), zap.Int("presets", len(c.settings.Presets)))
		return nil
	}

	p := c.settings.Presets[i]
	c.settings.Preset = i
	c.preset, c.size, c.bias = i, p.MapSize, p.Bias
	c.log.Info("quality preset applied", zap.String("preset", p.Name), zap.Int32("size", p.MapSize))

	if c.state == stateReady {
		return c.allocate()
	}
	return nil
}

// sync adopts s and reconciles GPU resources with it. It reports whether
// anything observable changed.
func (c *passCore) sync(s Settings) (bool, error) {
	switch c.state {
	case stateDisposed:
		return false, ErrDisposed
	case stateRendering:
		c.violation("SyncWithConstants")
		return false, nil
	}

	old := c.settings
	p, idx := s.preset()
	c.settings = s
	c.settings.Preset = idx

	changed := old.Enabled != s.Enabled ||
		old.DebugShadowMap != s.DebugShadowMap ||
		old.ForceShadowTest != s.ForceShadowTest ||
		old.Strict != s.Strict ||
		old.Bounds != s.Bounds ||
		old.FixedDistance != s.FixedDistance ||
		old.OmniNear != s.OmniNear ||
		old.OmniFar != s.OmniFar ||
		old.OmniRadius != s.OmniRadius ||
		c.bias != p.Bias

	resize := c.size != p.MapSize
	c.preset, c.size, c.bias = idx, p.MapSize, p.Bias

	switch {
	case !s.Enabled || c.binding == nil:
		if c.state == stateReady {
			c.releaseTarget()
			c.log.Info("shadow map released")
			changed = true
		}
		return changed || resize, nil
	case c.state == stateUninitialized || resize || old.ForceShadowTest != s.ForceShadowTest:
		return true, c.allocate()
	}
	return changed, nil
}

// dispose releases every GPU object the light owns. The shared shadow
// program stays with its registry.
func (c *passCore) dispose() {
	if c.state == stateDisposed {
		return
	}
	if c.state == stateRendering {
		c.ctx.BindFramebuffer(gpu.Framebuffer, 0)
		c.ctx.Viewport(c.saved[0], c.saved[1], c.saved[2], c.saved[3])
	}
	if c.pass != nil {
		c.pass.Release()
		c.pass = nil
	}
	c.target.Release()
	c.buffers.release()
	c.state = stateDisposed
	c.log.Debug("light disposed")
}

// uniform looks up name in the main-pass program.
func (c *passCore) uniform(program uint32, name string) int32 {
	return c.locs.Uniform(program, name)
}
