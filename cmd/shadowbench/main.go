// Package main benchmarks shadow passes at every quality preset.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-shadows/internal/config"
	"github.com/Faultbox/midgard-shadows/internal/engine/camera"
	"github.com/Faultbox/midgard-shadows/internal/engine/gpu"
	"github.com/Faultbox/midgard-shadows/internal/engine/gpu/glcore"
	"github.com/Faultbox/midgard-shadows/internal/engine/input"
	"github.com/Faultbox/midgard-shadows/internal/engine/lighting"
	"github.com/Faultbox/midgard-shadows/internal/engine/mesh"
	"github.com/Faultbox/midgard-shadows/internal/engine/scene"
	"github.com/Faultbox/midgard-shadows/internal/engine/shadow"
	"github.com/Faultbox/midgard-shadows/internal/engine/window"
	"github.com/Faultbox/midgard-shadows/internal/logger"
	"github.com/Faultbox/midgard-shadows/pkg/math"
)

var flagFrames = flag.Int("frames", 120, "Frames rendered per preset")

func main() {
	config.ParseFlags()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, *flagFrames); err != nil {
		logger.Error("benchmark failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, frames int) error {
	win, err := window.New(window.Config{
		Title:      "Shadow Bench",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      false,
		Legacy:     cfg.Graphics.LegacyGL,
	})
	if err != nil {
		return err
	}
	defer win.Close()

	caps := gpu.Modern
	if cfg.Graphics.LegacyGL {
		caps = gpu.Legacy
	}
	ctx, err := glcore.New(caps)
	if err != nil {
		return err
	}
	defer ctx.Close()
	logger.Info("opengl ready", zap.String("version", ctx.Version()))

	settings := scene.SettingsFromConfig(cfg.Shadows)
	sc, err := scene.New(ctx, scene.Config{
		Shadows:    settings,
		PointLight: cfg.Scene.PointLight,
		FitSun:     true,
	})
	if err != nil {
		return err
	}
	defer sc.Release()

	meshes, err := benchMeshes(cfg.Scene.Mesh)
	if err != nil {
		return err
	}
	sc.Add(meshes...)

	manager, err := shadow.NewManager(sc.Bindings(), settings)
	if err != nil {
		return err
	}
	defer manager.Dispose()

	cam := camera.NewOrbitCamera()
	bounds := sc.Bounds()
	cam.FitToBounds(math.Vec3{X: bounds.Min[0], Y: bounds.Min[1], Z: bounds.Min[2]},
		math.Vec3{X: bounds.Max[0], Y: bounds.Max[1], Z: bounds.Max[2]})

	in := input.New()
	for i, preset := range settings.Presets {
		settings.Preset = i
		if _, err := sc.ApplySettings(settings); err != nil {
			return fmt.Errorf("preset %q: %w", preset.Name, err)
		}

		timings := make([]time.Duration, 0, frames)
		for f := range frames {
			if in.Update() {
				logger.Info("benchmark interrupted")
				return nil
			}
			if in.IsKeyPressed(sdl.SCANCODE_N) {
				logger.Info("preset skipped", zap.String("preset", preset.Name))
				break
			}
			if in.IsKeyPressed(sdl.SCANCODE_F) {
				settings.ForceShadowTest = !settings.ForceShadowTest
				if _, err := sc.ApplySettings(settings); err != nil {
					return err
				}
			}
			dir := lighting.SunDirection(float32(f)*360/float32(frames), 45)
			sc.Sun.SetDirection(dir)
			sc.Sun.SetPosition(lighting.SunPosition(bounds.Center(), dir, shadow.FixedDistance))

			vp := win.Viewport()
			start := time.Now()
			sc.Frame(cam.ViewProjection(vp), vp)
			win.SwapBuffers()
			timings = append(timings, time.Since(start))
		}

		fields := []zap.Field{
			zap.String("preset", preset.Name),
			zap.Int32("size", preset.MapSize),
			zap.Int("frames", len(timings)),
			zap.Bool("force_shadow_test", settings.ForceShadowTest),
		}
		fields = append(fields, timingFields(timings)...)
		fields = append(fields, analysisFields(manager, settings, sc)...)
		logger.Info("preset done", fields...)
	}
	return nil
}

func benchMeshes(path string) ([]*mesh.Mesh, error) {
	if path != "" {
		return mesh.LoadGLTF(path)
	}
	meshes := []*mesh.Mesh{mesh.Plane(math.Vec3{}, 40)}
	for x := -3; x <= 3; x++ {
		for z := -3; z <= 3; z++ {
			h := float32(1 + (x+z+6)%4)
			meshes = append(meshes, mesh.Box(
				math.Vec3{X: float32(x) * 5, Y: h, Z: float32(z) * 5},
				math.Vec3{X: 1, Y: h, Z: 1}))
		}
	}
	return meshes, nil
}

// timingFields summarizes frame times as mean and 95th percentile.
func timingFields(timings []time.Duration) []zap.Field {
	if len(timings) == 0 {
		return nil
	}
	sorted := append([]time.Duration(nil), timings...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, t := range sorted {
		total += t
	}
	p95 := sorted[min(len(sorted)-1, len(sorted)*95/100)]
	return []zap.Field{
		zap.Duration("mean", total/time.Duration(len(sorted))),
		zap.Duration("p95", p95),
	}
}

// analysisFields renders the sun's view into the standalone manager and
// reports its depth samples. Legacy contexts cannot read depth back.
func analysisFields(m *shadow.Manager, settings shadow.Settings, sc *scene.Scene) []zap.Field {
	if _, err := m.SyncWithConstants(settings); err != nil {
		return []zap.Field{zap.NamedError("analysis", err)}
	}
	m.UpdateLightSpaceMatrix(sc.Sun.Position(), sc.Sun.Direction(), nil)
	m.BeginShadowPass()
	for _, c := range sc.Meshes() {
		m.RenderObjectToShadowMap(c)
	}
	m.EndShadowPass()

	a, err := m.DebugAnalyzeShadowMap()
	if err != nil {
		return []zap.Field{zap.NamedError("analysis", err)}
	}
	return []zap.Field{
		zap.Float32("depth_min", a.Min),
		zap.Float32("depth_max", a.Max),
		zap.Bool("varying", a.Varying),
	}
}
