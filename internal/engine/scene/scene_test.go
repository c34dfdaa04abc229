package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-shadows/internal/config"
	"github.com/Faultbox/midgard-shadows/internal/engine/framebuffer"
	"github.com/Faultbox/midgard-shadows/internal/engine/gpu"
	"github.com/Faultbox/midgard-shadows/internal/engine/gpu/gputest"
	"github.com/Faultbox/midgard-shadows/internal/engine/mesh"
	"github.com/Faultbox/midgard-shadows/internal/engine/shader/shaders"
	"github.com/Faultbox/midgard-shadows/internal/engine/shadow"
	"github.com/Faultbox/midgard-shadows/pkg/math"
)

func newTestScene(t *testing.T, caps gpu.Caps, cfg Config) (*Scene, *gputest.Recorder) {
	t.Helper()
	rec := gputest.New(caps)
	s, err := New(rec, cfg)
	require.NoError(t, err)
	s.Add(
		mesh.Plane(math.Vec3{}, 20),
		mesh.Box(math.Vec3{Y: 2}, math.Vec3{X: 1, Y: 2, Z: 1}),
	)
	return s, rec
}

func TestFrameRunsEveryPass(t *testing.T) {
	for _, caps := range []gpu.Caps{gpu.Modern, gpu.Legacy} {
		s, rec := newTestScene(t, caps, DefaultConfig())
		rec.Reset()

		s.Frame(math.Identity(), [4]int32{0, 0, 1280, 720})

		// one sun pass and six point passes over two casters, then two main draws
		assert.Len(t, rec.CallsNamed("DrawElements"), 2+6*2+2)
		assert.Zero(t, rec.BoundFramebuffer())
		assert.Equal(t, [4]int32{0, 0, 1280, 720}, rec.CurrentViewport())
		assert.True(t, rec.IsEnabled(gpu.DepthTest))

		enabled, ok := rec.Uniform("uShadowsEnabled")
		require.True(t, ok)
		assert.Equal(t, int32(1), enabled)
		enabled, ok = rec.Uniform("uPointShadowsEnabled")
		require.True(t, ok)
		assert.Equal(t, int32(1), enabled)

		_, ok = rec.Uniform("uViewProj")
		assert.True(t, ok)
		albedo, ok := rec.Uniform("uAlbedo")
		require.True(t, ok)
		assert.Equal(t, s.Meshes()[1].Albedo, albedo)
	}
}

func TestFrameWithoutPointLight(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PointLight = false
	s, rec := newTestScene(t, gpu.Modern, cfg)
	rec.Reset()

	s.Frame(math.Identity(), [4]int32{0, 0, 640, 480})

	assert.Nil(t, s.Point)
	assert.Len(t, s.Lights(), 1)
	assert.Len(t, rec.CallsNamed("DrawElements"), 2+2)
	_, ok := rec.Uniform("uPointShadowsEnabled")
	assert.False(t, ok)
}

func TestFrameWithShadowsDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shadows.Enabled = false
	s, rec := newTestScene(t, gpu.Modern, cfg)
	rec.Reset()

	s.Frame(math.Identity(), [4]int32{0, 0, 640, 480})

	assert.Len(t, rec.CallsNamed("DrawElements"), 2, "only the main pass draws")
	enabled, _ := rec.Uniform("uShadowsEnabled")
	assert.Equal(t, int32(0), enabled)
}

func TestSamplersGetDistinctUnitsWithoutShadows(t *testing.T) {
	tests := []struct {
		caps  gpu.Caps
		units map[string]int32
	}{
		{gpu.Modern, map[string]int32{
			"uShadowMap":      int32(shadow.DefaultDirectionalUnit),
			"uPointShadowMap": int32(shadow.DefaultOmniUnit),
		}},
		{gpu.Legacy, map[string]int32{
			"uShadowMap":        int32(shadow.DefaultDirectionalUnit),
			"uPointShadowFace0": int32(shadow.DefaultOmniUnit),
			"uPointShadowFace5": int32(shadow.DefaultOmniUnit) + 5,
		}},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Shadows.Enabled = false
		s, rec := newTestScene(t, tt.caps, cfg)

		for name, unit := range tt.units {
			got, ok := rec.Uniform(name)
			require.True(t, ok, "%s not set at creation", name)
			assert.Equal(t, unit, got, name)
		}

		rec.Reset()
		s.Frame(math.Identity(), [4]int32{0, 0, 640, 480})

		assert.Len(t, rec.CallsNamed("DrawElements"), 2)
		for name := range tt.units {
			_, ok := rec.Uniform(name)
			assert.False(t, ok, "disabled lights must not write %s", name)
		}
	}
}

func TestFitSunUsesSceneBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FitSun = true
	s, _ := newTestScene(t, gpu.Modern, cfg)

	s.Sun.SetDirection(math.Vec3{X: 0.3, Y: -1, Z: 0.2})
	s.Frame(math.Identity(), [4]int32{0, 0, 640, 480})

	fitted := shadow.BoundsFromAABB(s.Bounds(), shadow.FixedDistance)
	want := shadow.DirectionalLightSpace(s.Sun.Position(), s.Sun.Direction(), fitted, shadow.FixedDistance)
	assert.True(t, s.Sun.LightSpaceMatrix().ApproxEqual(want, 1e-5))
}

func TestApplySettingsReallocates(t *testing.T) {
	s, rec := newTestScene(t, gpu.Modern, DefaultConfig())
	settings := s.Settings()
	settings.Preset = 2

	changed, err := s.ApplySettings(settings)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, int32(2048), s.Sun.Size())
	assert.Equal(t, int32(2048), s.Point.Size())

	changed, err = s.ApplySettings(settings)
	require.NoError(t, err)
	assert.False(t, changed)

	s.Release()
	s.Release()
	assert.Zero(t, rec.LiveTotal())
}

func TestMainPassCompileFailure(t *testing.T) {
	rec := gputest.New(gpu.Modern)
	rec.FailCompile = true

	_, err := New(rec, DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "main pass")
	assert.Zero(t, rec.LiveTotal())
}

func TestSettingsFromConfig(t *testing.T) {
	assert.Equal(t, shadow.DefaultSettings(), SettingsFromConfig(config.Default().Shadows))

	cfg := config.Default().Shadows
	cfg.Presets = []config.PresetConfig{{Name: "tiny", MapSize: 256, Bias: 0.01}}
	cfg.Bounds = config.BoundsConfig{Left: 1, Right: -1}
	cfg.Strict = true

	s := SettingsFromConfig(cfg)
	assert.Equal(t, []shadow.QualityPreset{{Name: "tiny", MapSize: 256, Bias: 0.01}}, s.Presets)
	assert.Equal(t, shadow.DefaultBounds, s.Bounds, "inverted bounds keep the default")
	assert.True(t, s.Strict)

	assert.Equal(t, cfg.Presets, ConfigFromSettings(s).Presets)
}

func TestDialectOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dialect = shaders.Core
	s, rec := newTestScene(t, gpu.Legacy, cfg)

	_, ok := s.programs.Lookup(shaders.Name(shaders.Scene, shaders.Core))
	assert.True(t, ok)
	assert.Len(t, s.Point.ShadowTextures(), 6, "caps still pick the six-target strategy")

	s.Release()
	assert.Zero(t, rec.LiveTotal())
}

func TestFrameRendersToTarget(t *testing.T) {
	s, rec := newTestScene(t, gpu.Modern, DefaultConfig())
	out, err := framebuffer.New(rec, 512)
	require.NoError(t, err)
	s.RenderTo(out)
	rec.Reset()

	s.Frame(math.Identity(), [4]int32{0, 0, 1280, 720})

	binds := rec.CallsNamed("BindFramebuffer")
	require.GreaterOrEqual(t, len(binds), 2)
	assert.Equal(t, out.FBO(), binds[len(binds)-2].Args[1], "main pass draws into the target")
	assert.Zero(t, rec.BoundFramebuffer())
	assert.Equal(t, [4]int32{0, 0, 512, 512}, rec.CurrentViewport())
}
