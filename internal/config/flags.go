package config

import "flag"

var (
	flagConfig          = flag.String("config", "", "Path to config file")
	flagDebug           = flag.Bool("debug", false, "Enable debug logging and strict shadow pass checks")
	flagPreset          = flag.Int("preset", -1, "Shadow quality preset index")
	flagForceShadowTest = flag.Bool("force-shadow-test", false, "Redirect shadow passes to the red test target")
	flagLegacyGL        = flag.Bool("legacy-gl", false, "Use the reduced GL capability set")
	flagMesh            = flag.String("mesh", "", "glTF/GLB file with shadow casters")
	flagWindowed        = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen      = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth           = flag.Int("width", 0, "Window width")
	flagHeight          = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Shadows.Strict = true
		cfg.Shadows.DebugShadowMap = true
	}
	if *flagPreset >= 0 {
		cfg.Shadows.Preset = *flagPreset
	}
	if *flagForceShadowTest {
		cfg.Shadows.ForceShadowTest = true
	}
	if *flagLegacyGL {
		cfg.Graphics.LegacyGL = true
	}
	if *flagMesh != "" {
		cfg.Scene.Mesh = *flagMesh
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
}
