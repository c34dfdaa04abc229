package shadow

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-shadows/internal/engine/gpu"
	"github.com/Faultbox/midgard-shadows/internal/engine/gpu/gputest"
	"github.com/Faultbox/midgard-shadows/pkg/math"
)

func TestDirectionalEndToEnd(t *testing.T) {
	_, bindings := newTestBindings(t, gpu.Modern)

	l, err := NewDirectionalLight(bindings, DefaultSettings())
	require.NoError(t, err)
	require.Equal(t, int32(1024), l.Size())

	l.SetDirection(math.Vec3{X: 0, Y: -1, Z: 0})
	assert.True(t, l.Update(), "first update must report a change")

	b := DefaultBounds
	pos := l.Position()
	want := mgl32.Ortho(b.Left, b.Right, b.Bottom, b.Top, b.Near, b.Far).Mul4(mgl32.LookAtV(
		mgl32.Vec3{pos.X, pos.Y, pos.Z},
		mgl32.Vec3{pos.X, pos.Y - 100, pos.Z},
		mgl32.Vec3{0, 0, 1}, // vertical light swaps to the Z up vector
	))
	assert.True(t, l.LightSpaceMatrix().ApproxEqual(math.Mat4(want), 1e-5))

	assert.False(t, l.Update(), "second update without changes")
	assert.Equal(t, 1, l.builds, "unchanged update must not rebuild the matrix")
}

func TestDirectionalUpdateTracksChanges(t *testing.T) {
	_, bindings := newTestBindings(t, gpu.Modern)
	l, err := NewDirectionalLight(bindings, DefaultSettings())
	require.NoError(t, err)

	l.Update()

	l.SetIntensity(0.5)
	assert.True(t, l.Update(), "intensity change")
	assert.Equal(t, 1, l.builds, "intensity does not affect the matrix")

	l.SetPosition(math.Vec3{X: 1, Y: 50})
	assert.True(t, l.Update(), "position change")
	assert.Equal(t, 2, l.builds)

	l.SetDirection(math.Vec3{X: 1, Y: -1})
	assert.True(t, l.Update(), "direction change")
	assert.InDelta(t, 1, l.Direction().Length(), 1e-6, "direction is stored normalized")

	l.SetDirection(math.Vec3{})
	assert.False(t, l.Update(), "zero direction is ignored")
}

func TestDirectionalPassRestoresViewport(t *testing.T) {
	rec, bindings := newTestBindings(t, gpu.Modern)
	l, err := NewDirectionalLight(bindings, DefaultSettings())
	require.NoError(t, err)
	l.Update()

	rec.SetViewport([4]int32{10, 20, 640, 480})
	l.BeginShadowPass()

	assert.Equal(t, [4]int32{0, 0, 1024, 1024}, rec.CurrentViewport())
	assert.Equal(t, l.ShadowMap().FBO(), rec.BoundFramebuffer())
	m, ok := rec.Uniform("uLightSpaceMatrix")
	require.True(t, ok)
	assert.Equal(t, [16]float32(l.LightSpaceMatrix()), m)
	size, _ := rec.Uniform("uShadowMapSize")
	assert.Equal(t, float32(1024), size)

	clears := rec.CallsNamed("ClearColor")
	require.NotEmpty(t, clears)
	assert.Equal(t, []any{float32(0), float32(0), float32(0), float32(1)}, clears[len(clears)-1].Args)

	l.EndShadowPass()
	assert.Equal(t, [4]int32{10, 20, 640, 480}, rec.CurrentViewport())
	assert.Zero(t, rec.BoundFramebuffer())
}

func TestRenderObjectBuildsSequentialBuffers(t *testing.T) {
	rec, bindings := newTestBindings(t, gpu.Modern)
	l, err := NewDirectionalLight(bindings, DefaultSettings())
	require.NoError(t, err)
	l.Update()

	obj := quad(2)
	l.BeginShadowPass()
	l.RenderObjectToShadowMap(obj)
	l.EndShadowPass()

	indices := rec.BufferData(l.core.buffers.ibo)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, indices)

	positions, ok := rec.BufferData(l.core.buffers.vbo).([]float32)
	require.True(t, ok)
	require.Len(t, positions, 18)
	var want []float32
	for _, tri := range obj {
		for _, v := range tri.Vertices {
			want = append(want, v.X, v.Y, v.Z)
		}
	}
	assert.Equal(t, want, positions)

	draws := rec.CallsNamed("DrawElements")
	require.Len(t, draws, 1)
	assert.Equal(t, []any{gpu.Triangles, int32(6), gpu.UnsignedInt, 0}, draws[0].Args)

	for _, c := range rec.CallsNamed("BufferFloat32") {
		assert.Equal(t, gpu.DynamicDraw, c.Args[2])
	}
}

func TestRenderObjectReusesBuffers(t *testing.T) {
	rec, bindings := newTestBindings(t, gpu.Modern)
	l, err := NewDirectionalLight(bindings, DefaultSettings())
	require.NoError(t, err)

	big := append(quad(0), quad(1)...)
	l.BeginShadowPass()
	l.RenderObjectToShadowMap(big)
	l.RenderObjectToShadowMap(quad(3)[:1])
	l.RenderObjectToShadowMap(triangles{})
	l.EndShadowPass()

	assert.Equal(t, 2, rec.Created(gputest.KindBuffer), "one vertex and one index buffer per light")
	assert.Equal(t, 2, rec.Count("DrawElements"), "empty casters are skipped")
	assert.Equal(t, []uint32{0, 1, 2}, rec.BufferData(l.core.buffers.ibo))
	assert.GreaterOrEqual(t, cap(l.core.buffers.positions), 36)
}

func TestRenderObjectModelMatrix(t *testing.T) {
	rec, bindings := newTestBindings(t, gpu.Modern)
	l, err := NewDirectionalLight(bindings, DefaultSettings())
	require.NoError(t, err)

	l.BeginShadowPass()
	l.RenderObjectToShadowMap(quad(0))
	identity, _ := rec.Uniform("uModel")
	assert.Equal(t, [16]float32(math.Identity()), identity)

	moved := math.Translate(5, 0, -2)
	l.RenderObjectToShadowMap(placedCaster{triangles: quad(0), model: moved})
	got, _ := rec.Uniform("uModel")
	assert.Equal(t, [16]float32(moved), got)
	l.EndShadowPass()
}

func TestApplyToShader(t *testing.T) {
	t.Run("shadows disabled", func(t *testing.T) {
		rec, bindings := newTestBindings(t, gpu.Modern)
		settings := DefaultSettings()
		settings.Enabled = false
		l, err := NewDirectionalLight(bindings, settings)
		require.NoError(t, err)
		l.Update()

		program := mainProgram(rec)
		l.ApplyToShader(program, 0)

		assert.Equal(t, []string{"uDirLightDirection", "uDirLightPosition", "uDirLightIntensity", "uShadowsEnabled"}, rec.UniformNames())
		enabled, _ := rec.Uniform("uShadowsEnabled")
		assert.Equal(t, int32(0), enabled)
		assert.Zero(t, rec.Count("BindTexture"))
	})

	t.Run("shadows enabled", func(t *testing.T) {
		rec, bindings := newTestBindings(t, gpu.Modern)
		l, err := NewDirectionalLight(bindings, DefaultSettings())
		require.NoError(t, err)
		l.Update()

		program := mainProgram(rec)
		l.ApplyToShader(program, 0)

		sampler, _ := rec.Uniform("uShadowMap")
		assert.Equal(t, int32(DefaultDirectionalUnit), sampler)
		enabled, _ := rec.Uniform("uShadowsEnabled")
		assert.Equal(t, int32(1), enabled)
		bias, _ := rec.Uniform("uShadowBias")
		assert.Equal(t, l.Bias(), bias)
		m, _ := rec.Uniform("uLightSpaceMatrix")
		assert.Equal(t, [16]float32(l.LightSpaceMatrix()), m)
		assert.Equal(t, l.ShadowMapTexture(), rec.BoundTexture(gpu.Texture0+DefaultDirectionalUnit, gpu.Texture2D))
	})

	t.Run("suffixed names", func(t *testing.T) {
		rec, bindings := newTestBindings(t, gpu.Modern)
		l, err := NewDirectionalLight(bindings, DefaultSettings())
		require.NoError(t, err)

		program := mainProgram(rec)
		l.ApplyToShader(program, 2)

		for _, name := range rec.UniformNames() {
			assert.Regexp(t, `2$`, name)
		}
	})

	t.Run("absent uniforms are skipped", func(t *testing.T) {
		rec, bindings := newTestBindings(t, gpu.Modern)
		rec.MissingUniforms["uDirLightPosition"] = true
		l, err := NewDirectionalLight(bindings, DefaultSettings())
		require.NoError(t, err)

		program := mainProgram(rec)
		assert.NotPanics(t, func() { l.ApplyToShader(program, 0) })
		assert.NotContains(t, rec.UniformNames(), "uDirLightPosition")
	})
}

func TestBindShadowMapTextureClearsOtherTargets(t *testing.T) {
	for _, caps := range []gpu.Caps{gpu.Modern, gpu.Legacy} {
		t.Run(caps.Name(), func(t *testing.T) {
			rec, bindings := newTestBindings(t, caps)
			l, err := NewDirectionalLight(bindings, DefaultSettings())
			require.NoError(t, err)

			rec.ActiveTexture(gpu.Texture0 + 3)
			rec.BindTexture(gpu.TextureCubeMap, 99)
			rec.Reset()

			assert.Equal(t, uint32(3), l.BindShadowMapTexture(3))
			assert.Zero(t, rec.BoundTexture(gpu.Texture0+3, gpu.TextureCubeMap))
			assert.Equal(t, l.ShadowMapTexture(), rec.BoundTexture(gpu.Texture0+3, gpu.Texture2D))

			targets := map[uint32]bool{}
			for _, c := range rec.CallsNamed("BindTexture") {
				targets[c.Args[0].(uint32)] = true
			}
			assert.Equal(t, caps.ArrayTextures, targets[gpu.Texture2DArray])
			assert.Equal(t, caps.ArrayTextures, targets[gpu.Texture3D])
		})
	}
}

func TestSetQualityPreset(t *testing.T) {
	rec, bindings := newTestBindings(t, gpu.Modern)
	l, err := NewDirectionalLight(bindings, DefaultSettings())
	require.NoError(t, err)
	created := rec.Created(gputest.KindFramebuffer)

	for _, i := range []int{-1, 4, 100} {
		require.NoError(t, l.SetQualityPreset(i))
		assert.Equal(t, int32(1024), l.Size(), "index %d", i)
		assert.Equal(t, float32(0.005), l.Bias(), "index %d", i)
		assert.Equal(t, created, rec.Created(gputest.KindFramebuffer), "index %d must not allocate", i)
	}

	oldFBO := l.ShadowMap().FBO()
	require.NoError(t, l.SetQualityPreset(3))
	assert.Equal(t, int32(4096), l.Size())
	assert.Equal(t, float32(0.002), l.Bias())
	assert.Equal(t, 3, l.Preset())
	assert.False(t, rec.IsLive(gputest.KindFramebuffer, oldFBO))
	assert.Equal(t, 1, rec.Live(gputest.KindFramebuffer))
	assert.Equal(t, int32(4096), l.ShadowMap().Size())
}

func TestCompileFailureDegrades(t *testing.T) {
	rec, bindings := newTestBindings(t, gpu.Modern)
	rec.FailCompile = true

	l, err := NewDirectionalLight(bindings, DefaultSettings())
	require.NoError(t, err, "compile failure must not fail construction")
	assert.False(t, l.Usable())
	assert.False(t, l.CastsShadows())
	assert.Zero(t, rec.Created(gputest.KindFramebuffer))

	rec.Reset()
	l.Update()
	RenderShadows(l, []Caster{quad(0)})
	assert.Empty(t, rec.Calls, "every pass call is a no-op")

	program := mainProgram(rec)
	l.ApplyToShader(program, 0)
	enabled, _ := rec.Uniform("uShadowsEnabled")
	assert.Equal(t, int32(0), enabled)
}

func TestMissingPositionAttributeDegrades(t *testing.T) {
	rec, bindings := newTestBindings(t, gpu.Modern)
	rec.MissingUniforms["aPosition"] = true

	l, err := NewDirectionalLight(bindings, DefaultSettings())
	require.NoError(t, err)
	assert.False(t, l.Usable())
}

func TestIncompleteFramebufferFailsConstruction(t *testing.T) {
	rec, bindings := newTestBindings(t, gpu.Modern)
	rec.FramebufferStatus = gpu.FramebufferUnsupported

	l, err := NewDirectionalLight(bindings, DefaultSettings())
	require.Error(t, err)
	assert.Nil(t, l)
	assert.Zero(t, gpuObjects(rec))
}

func TestProtocolViolations(t *testing.T) {
	t.Run("strict render outside pass", func(t *testing.T) {
		_, bindings := newTestBindings(t, gpu.Modern)
		settings := DefaultSettings()
		settings.Strict = true
		l, err := NewDirectionalLight(bindings, settings)
		require.NoError(t, err)

		perr := recoverPrecondition(func() { l.RenderObjectToShadowMap(quad(0)) })
		require.NotNil(t, perr)
		assert.Equal(t, "RenderObjectToShadowMap", perr.Op)
		assert.Equal(t, "ready", perr.State)
	})

	t.Run("strict begin twice", func(t *testing.T) {
		_, bindings := newTestBindings(t, gpu.Modern)
		settings := DefaultSettings()
		settings.Strict = true
		l, err := NewDirectionalLight(bindings, settings)
		require.NoError(t, err)

		l.BeginShadowPass()
		perr := recoverPrecondition(l.BeginShadowPass)
		require.NotNil(t, perr)
		assert.Equal(t, "rendering", perr.State)
	})

	t.Run("strict use after dispose", func(t *testing.T) {
		_, bindings := newTestBindings(t, gpu.Modern)
		settings := DefaultSettings()
		settings.Strict = true
		l, err := NewDirectionalLight(bindings, settings)
		require.NoError(t, err)

		l.Dispose()
		perr := recoverPrecondition(l.BeginShadowPass)
		require.NotNil(t, perr)
		assert.Equal(t, "disposed", perr.State)
		assert.ErrorIs(t, l.SetQualityPreset(0), ErrDisposed)
	})

	t.Run("lenient violations are skipped", func(t *testing.T) {
		rec, bindings := newTestBindings(t, gpu.Modern)
		l, err := NewDirectionalLight(bindings, DefaultSettings())
		require.NoError(t, err)

		assert.NotPanics(t, func() {
			l.RenderObjectToShadowMap(quad(0))
			l.EndShadowPass()
			l.BeginShadowPass()
			l.BeginShadowPass()
		})
		assert.Zero(t, rec.Count("DrawElements"))
		assert.Equal(t, 1, rec.Count("GetViewport"), "second begin must not run")
	})
}

func TestForceShadowTestMode(t *testing.T) {
	rec, bindings := newTestBindings(t, gpu.Modern)
	settings := DefaultSettings()
	settings.ForceShadowTest = true

	l, err := NewDirectionalLight(bindings, settings)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Live(gputest.KindFramebuffer), "shadow map plus red debug target")
	require.NotZero(t, l.DebugTexture())
	assert.NotEqual(t, l.ShadowMapTexture(), l.DebugTexture())
	assert.Equal(t, l.DebugTexture(), l.PreviewTexture(), "preview shows the red target")

	rec.SetViewport([4]int32{0, 0, 800, 600})
	l.BeginShadowPass()
	assert.NotEqual(t, l.ShadowMap().FBO(), rec.BoundFramebuffer(), "passes go to the debug target")
	clears := rec.CallsNamed("ClearColor")
	assert.Equal(t, []any{float32(1), float32(0), float32(0), float32(1)}, clears[len(clears)-1].Args)
	force, _ := rec.Uniform("uForceShadowMapTest")
	assert.Equal(t, int32(1), force)

	l.RenderObjectToShadowMap(quad(0))
	assert.Zero(t, rec.Count("DrawElements"), "casters are skipped")
	l.EndShadowPass()
	assert.Equal(t, [4]int32{0, 0, 800, 600}, rec.CurrentViewport())

	settings.ForceShadowTest = false
	changed, err := l.SyncWithConstants(settings)
	require.NoError(t, err)
	require.True(t, changed)
	assert.Zero(t, l.DebugTexture())
	assert.Equal(t, l.ShadowMapTexture(), l.PreviewTexture())

	l.Dispose()
	assert.Zero(t, l.PreviewTexture())
	assert.Zero(t, gpuObjects(rec))
}

func TestSyncWithConstants(t *testing.T) {
	rec, bindings := newTestBindings(t, gpu.Modern)
	settings := DefaultSettings()
	l, err := NewDirectionalLight(bindings, settings)
	require.NoError(t, err)

	changed, err := l.SyncWithConstants(settings)
	require.NoError(t, err)
	assert.False(t, changed, "identical settings")

	settings.Preset = 0
	changed, err = l.SyncWithConstants(settings)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, int32(512), l.ShadowMap().Size())

	settings.Enabled = false
	changed, err = l.SyncWithConstants(settings)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, l.CastsShadows())
	assert.Zero(t, rec.Live(gputest.KindFramebuffer))

	settings.Enabled = true
	changed, err = l.SyncWithConstants(settings)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, l.CastsShadows())
	assert.Equal(t, 1, rec.Live(gputest.KindFramebuffer))

	settings.Bounds = Bounds{Left: -10, Right: 10, Bottom: -10, Top: 10, Near: 1, Far: 30}
	changed, err = l.SyncWithConstants(settings)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, l.LightSpaceMatrix().ApproxEqual(
		DirectionalLightSpace(l.Position(), l.Direction(), settings.Bounds, FixedDistance), 1e-6))
}

func TestUpdateLightSpaceMatrixBounds(t *testing.T) {
	_, bindings := newTestBindings(t, gpu.Modern)
	l, err := NewDirectionalLight(bindings, DefaultSettings())
	require.NoError(t, err)
	l.SetDirection(math.Vec3{X: 1, Y: -1, Z: 0})

	tight := Bounds{Left: -5, Right: 5, Bottom: -5, Top: 5, Near: 1, Far: 20}
	l.UpdateLightSpaceMatrix(&tight)
	assert.True(t, l.LightSpaceMatrix().ApproxEqual(
		DirectionalLightSpace(l.Position(), l.Direction(), tight, FixedDistance), 1e-6))

	l.UpdateLightSpaceMatrix(nil)
	assert.True(t, l.LightSpaceMatrix().ApproxEqual(
		DirectionalLightSpace(l.Position(), l.Direction(), DefaultBounds, FixedDistance), 1e-6))
}

func TestDisposeReleasesEverything(t *testing.T) {
	rec, bindings := newTestBindings(t, gpu.Modern)
	l, err := NewDirectionalLight(bindings, DefaultSettings())
	require.NoError(t, err)

	l.BeginShadowPass()
	l.RenderObjectToShadowMap(quad(0))
	l.EndShadowPass()
	require.NotZero(t, gpuObjects(rec))

	l.Dispose()
	l.Dispose()
	assert.Zero(t, gpuObjects(rec))
	assert.Equal(t, 1, rec.Live(gputest.KindProgram), "shared program stays with the registry")
}

func TestBindingsShareProgram(t *testing.T) {
	rec, bindings := newTestBindings(t, gpu.Modern)
	rec.MissingUniforms["uShadowMapSize"] = true

	a, err := NewDirectionalLight(bindings, DefaultSettings())
	require.NoError(t, err)
	b, err := NewManager(bindings, DefaultSettings())
	require.NoError(t, err)

	assert.Equal(t, 1, rec.Count("LinkProgram"))
	assert.Equal(t, a.core.binding, b.core.binding)
	assert.Equal(t, gpu.Absent, a.core.binding.Locations.ShadowMapSize)

	rec.Reset()
	a.BeginShadowPass()
	_, ok := rec.Uniform("uShadowMapSize")
	assert.False(t, ok, "absent optional uniform is not written")
	a.EndShadowPass()
}
