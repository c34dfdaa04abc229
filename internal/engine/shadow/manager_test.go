package shadow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-shadows/internal/engine/gpu"
	"github.com/Faultbox/midgard-shadows/internal/engine/gpu/gputest"
	"github.com/Faultbox/midgard-shadows/pkg/math"
)

func TestManagerUpdateLightSpaceMatrix(t *testing.T) {
	_, bindings := newTestBindings(t, gpu.Modern)
	m, err := NewManager(bindings, DefaultSettings())
	require.NoError(t, err)

	pos := math.Vec3{X: 20, Y: 60, Z: 0}
	dir := math.Vec3{X: -2, Y: -6, Z: 0}
	m.UpdateLightSpaceMatrix(pos, dir, nil)
	assert.True(t, m.LightSpaceMatrix().ApproxEqual(
		DirectionalLightSpace(pos, dir.Normalize(), DefaultBounds, FixedDistance), 1e-6))

	b := Bounds{Left: -1, Right: 1, Bottom: -1, Top: 1, Near: 1, Far: 10}
	m.UpdateLightSpaceMatrix(pos, dir, &b)
	assert.True(t, m.LightSpaceMatrix().ApproxEqual(
		DirectionalLightSpace(pos, dir.Normalize(), b, FixedDistance), 1e-6))
}

func TestManagerPass(t *testing.T) {
	rec, bindings := newTestBindings(t, gpu.Modern)
	m, err := NewManager(bindings, DefaultSettings())
	require.NoError(t, err)
	m.UpdateLightSpaceMatrix(math.Vec3{Y: 50}, math.Vec3{X: 0.2, Y: -1}, nil)

	rec.SetViewport([4]int32{0, 0, 320, 200})
	m.BeginShadowPass()
	m.RenderObjectToShadowMap(quad(0))
	m.EndShadowPass()

	assert.Equal(t, 1, rec.Count("DrawElements"))
	assert.Equal(t, [4]int32{0, 0, 320, 200}, rec.CurrentViewport())
	assert.Equal(t, uint32(4), m.BindShadowMapTexture(4))
	assert.Equal(t, m.ShadowMapTexture(), rec.BoundTexture(gpu.Texture0+4, gpu.Texture2D))

	m.Dispose()
	assert.Zero(t, gpuObjects(rec))
}

func TestDebugAnalyzeShadowMap(t *testing.T) {
	t.Run("varying depth", func(t *testing.T) {
		rec, bindings := newTestBindings(t, gpu.Modern)
		rec.Depth = func(x, y int32) float32 { return float32(x+y) / 2048 }
		m, err := NewManager(bindings, DefaultSettings())
		require.NoError(t, err)
		fbos := rec.Live(gputest.KindFramebuffer)

		a, err := m.DebugAnalyzeShadowMap()
		require.NoError(t, err)

		assert.InDelta(t, 0.5, a.Samples[0], 1e-6, "center")
		assert.Zero(t, a.Samples[1], "bottom-left")
		assert.InDelta(t, 1023.0*2/2048, a.Samples[4], 1e-6, "top-right")
		assert.Equal(t, a.Samples[1], a.Min)
		assert.Equal(t, a.Samples[4], a.Max)
		assert.True(t, a.Varying)

		assert.Equal(t, 5, rec.Count("ReadDepth"))
		assert.Equal(t, fbos, rec.Live(gputest.KindFramebuffer), "temporary framebuffer is deleted")
		assert.Zero(t, rec.BoundFramebuffer())
	})

	t.Run("flat depth", func(t *testing.T) {
		rec, bindings := newTestBindings(t, gpu.Modern)
		rec.Depth = func(x, y int32) float32 { return 1 }
		m, err := NewManager(bindings, DefaultSettings())
		require.NoError(t, err)

		a, err := m.DebugAnalyzeShadowMap()
		require.NoError(t, err)
		assert.False(t, a.Varying)
		assert.Equal(t, float32(1), a.Min)
	})

	t.Run("legacy context", func(t *testing.T) {
		rec, bindings := newTestBindings(t, gpu.Legacy)
		m, err := NewManager(bindings, DefaultSettings())
		require.NoError(t, err)

		_, err = m.DebugAnalyzeShadowMap()
		assert.ErrorIs(t, err, ErrReadbackUnsupported)
		assert.Zero(t, rec.Count("ReadDepth"))
	})

	t.Run("disposed", func(t *testing.T) {
		_, bindings := newTestBindings(t, gpu.Modern)
		m, err := NewManager(bindings, DefaultSettings())
		require.NoError(t, err)
		m.Dispose()

		_, err = m.DebugAnalyzeShadowMap()
		assert.ErrorIs(t, err, ErrDisposed)
	})
}
