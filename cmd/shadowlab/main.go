// Package main is the interactive shadow mapping viewer.
package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-shadows/internal/config"
	"github.com/Faultbox/midgard-shadows/internal/engine/camera"
	"github.com/Faultbox/midgard-shadows/internal/engine/debug"
	"github.com/Faultbox/midgard-shadows/internal/engine/framebuffer"
	"github.com/Faultbox/midgard-shadows/internal/engine/gpu"
	"github.com/Faultbox/midgard-shadows/internal/engine/gpu/glcore"
	"github.com/Faultbox/midgard-shadows/internal/engine/lighting"
	"github.com/Faultbox/midgard-shadows/internal/engine/mesh"
	"github.com/Faultbox/midgard-shadows/internal/engine/scene"
	"github.com/Faultbox/midgard-shadows/internal/engine/shader/shaders"
	"github.com/Faultbox/midgard-shadows/internal/engine/shadow"
	"github.com/Faultbox/midgard-shadows/internal/engine/ui"
	"github.com/Faultbox/midgard-shadows/internal/logger"
	"github.com/Faultbox/midgard-shadows/pkg/math"
)

const (
	panelWidth   = 300
	viewportSize = 1024
	sunLatitude  = 50
)

func main() {
	runtime.LockOSThread()

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

	logger.Info("=== Shadow Lab ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	app, err := NewApp(cfg)
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	app.Run()
	logger.Info("shadow lab closed normally")
}

// App is the shadow lab state.
type App struct {
	cfg     *config.Config
	backend *ui.Backend
	ctx     *glcore.Context

	scene    *scene.Scene
	manager  *shadow.Manager
	output   *framebuffer.Target
	camera   *camera.OrbitCamera
	panel    *ui.ShadowPanel
	picker   *ui.MeshPicker
	dumper   *debug.ShadowMapDump
	started  time.Time
	sweeping bool

	lastMouse imgui.Vec2
}

// NewApp creates the window, GL context, scene and panel.
func NewApp(cfg *config.Config) (*App, error) {
	app := &App{
		cfg:      cfg,
		camera:   camera.NewOrbitCamera(),
		picker:   ui.NewMeshPicker(),
		dumper:   debug.NewShadowMapDump("dumps", "shadow"),
		started:  time.Now(),
		sweeping: cfg.Scene.SunSpeed != 0,
	}

	var err error
	app.backend, err = ui.NewBackend("Shadow Lab", int32(cfg.Graphics.Width), int32(cfg.Graphics.Height))
	if err != nil {
		return nil, err
	}

	caps := gpu.Modern
	if cfg.Graphics.LegacyGL {
		caps = gpu.Legacy
	}
	app.ctx, err = glcore.New(caps)
	if err != nil {
		return nil, err
	}
	logger.Info("opengl ready", zap.String("version", app.ctx.Version()), zap.Bool("legacy_caps", cfg.Graphics.LegacyGL))

	// The backend window is always a core context
	app.scene, err = scene.New(app.ctx, scene.Config{
		Shadows:    scene.SettingsFromConfig(cfg.Shadows),
		PointLight: cfg.Scene.PointLight,
		FitSun:     true,
		Dialect:    shaders.Core,
	})
	if err != nil {
		return nil, err
	}

	app.output, err = framebuffer.New(app.ctx, viewportSize)
	if err != nil {
		return nil, fmt.Errorf("viewport target: %w", err)
	}
	app.scene.RenderTo(app.output)

	app.manager, err = shadow.NewManager(app.scene.Bindings(), app.scene.Settings())
	if err != nil {
		return nil, fmt.Errorf("analysis shadow map: %w", err)
	}

	if err := app.loadMeshes(cfg.Scene.Mesh); err != nil {
		return nil, err
	}

	app.panel = ui.NewShadowPanel(app.scene)
	app.panel.Analyze = app.analyze
	app.panel.Dump = app.dump
	app.panel.Preview = app.scene.Sun.PreviewTexture
	app.panel.OpenMesh = app.picker.Open
	return app, nil
}

// loadMeshes adds the glTF file at path, or the demo scene when path is empty.
func (app *App) loadMeshes(path string) error {
	var meshes []*mesh.Mesh
	if path == "" {
		meshes = demoMeshes()
	} else {
		loaded, err := mesh.LoadGLTF(path)
		if err != nil {
			return err
		}
		meshes = loaded
	}

	app.scene.Add(meshes...)
	bounds := app.scene.Bounds()
	if !bounds.Empty() {
		app.camera.FitToBounds(math.Vec3{X: bounds.Min[0], Y: bounds.Min[1], Z: bounds.Min[2]},
			math.Vec3{X: bounds.Max[0], Y: bounds.Max[1], Z: bounds.Max[2]})
	}
	if app.scene.Point != nil {
		center := bounds.Center()
		app.scene.Point.SetPosition(center.Add(math.Vec3{X: 3, Y: 6, Z: 2}))
	}
	return nil
}

func demoMeshes() []*mesh.Mesh {
	ground := mesh.Plane(math.Vec3{}, 25)
	ground.Albedo = [3]float32{0.7, 0.7, 0.65}

	meshes := []*mesh.Mesh{ground}
	for i, x := range []float32{-8, 0, 8} {
		box := mesh.Box(math.Vec3{X: x, Y: float32(i+1) * 1.5, Z: 0}, math.Vec3{X: 1.5, Y: float32(i+1) * 1.5, Z: 1.5})
		box.Albedo = [3]float32{0.8, 0.35 + 0.2*float32(i), 0.3}
		meshes = append(meshes, box)
	}
	return meshes
}

// Run starts the render loop.
func (app *App) Run() {
	app.backend.Run(app.render)
}

func (app *App) render() {
	if path, ok := app.picker.Poll(); ok && path != "" {
		if err := app.loadMeshes(path); err != nil {
			logger.Error("failed to load meshes", zap.String("path", path), zap.Error(err))
		}
	}

	if ui.IsKeyPressed(imgui.KeySpace) {
		app.sweeping = !app.sweeping
	}
	app.updateSun()

	vp := [4]int32{0, 0, viewportSize, viewportSize}
	app.scene.Frame(app.camera.ViewProjection(vp), vp)

	x, y, w, h := app.backend.GetViewport()
	app.drawViewport(x, y, w-panelWidth, h)
	app.panel.Draw(x+w-panelWidth, y, panelWidth)
}

func (app *App) updateSun() {
	if !app.sweeping {
		return
	}
	elapsed := float32(time.Since(app.started).Seconds())
	dir := lighting.SunDirection(lighting.Sweep(0, app.cfg.Scene.SunSpeed, elapsed), sunLatitude)
	center := app.scene.Bounds().Center()

	sun := app.scene.Sun
	sun.SetDirection(dir)
	sun.SetPosition(lighting.SunPosition(center, dir, shadow.FixedDistance))
}

func (app *App) drawViewport(x, y, w, h float32) {
	flags := imgui.WindowFlagsNoMove | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoCollapse | imgui.WindowFlagsNoScrollbar
	imgui.SetNextWindowPos(imgui.NewVec2(x, y))
	imgui.SetNextWindowSize(imgui.NewVec2(w, h))
	if imgui.BeginV("Viewport", nil, flags) {
		avail := imgui.ContentRegionAvail()
		size := avail.X
		if avail.Y < size {
			size = avail.Y
		}

		texRef := imgui.NewTextureRefTextureID(imgui.TextureID(app.output.ColorTexture()))
		imgui.ImageWithBgV(
			*texRef,
			imgui.NewVec2(size, size),
			imgui.NewVec2(0, 1), // UV flipped
			imgui.NewVec2(1, 0),
			imgui.NewVec4(0.15, 0.15, 0.15, 1.0),
			imgui.NewVec4(1, 1, 1, 1),
		)

		if imgui.IsItemHovered() {
			mousePos := imgui.MousePos()
			if imgui.IsMouseDragging(imgui.MouseButtonLeft) {
				app.camera.HandleDrag(mousePos.X-app.lastMouse.X, mousePos.Y-app.lastMouse.Y)
			}
			app.lastMouse = mousePos
			if wheel := imgui.CurrentIO().MouseWheel(); wheel != 0 {
				app.camera.HandleZoom(wheel)
			}
		}
	}
	imgui.End()
}

// analyze renders the sun's view into the standalone manager and samples it.
func (app *App) analyze() (shadow.Analysis, error) {
	if _, err := app.manager.SyncWithConstants(app.scene.Settings()); err != nil {
		return shadow.Analysis{}, err
	}
	sun := app.scene.Sun
	app.manager.UpdateLightSpaceMatrix(sun.Position(), sun.Direction(), nil)

	app.manager.BeginShadowPass()
	for _, m := range app.scene.Meshes() {
		app.manager.RenderObjectToShadowMap(m)
	}
	app.manager.EndShadowPass()
	return app.manager.DebugAnalyzeShadowMap()
}

func (app *App) dump() (string, error) {
	target := app.scene.Sun.ShadowMap()
	if target == nil {
		return "", fmt.Errorf("sun casts no shadows")
	}
	return app.dumper.CaptureTarget(target, true)
}

// Close releases GPU resources.
func (app *App) Close() {
	if app.manager != nil {
		app.manager.Dispose()
	}
	if app.scene != nil {
		app.scene.Release()
	}
	if app.output != nil {
		app.output.Release()
	}
	if app.ctx != nil {
		app.ctx.Close()
	}
}
