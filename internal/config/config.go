// Package config handles application configuration loading and management.
package config

// Config holds all settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Shadows  ShadowsConfig  `yaml:"shadows"`
	Scene    SceneConfig    `yaml:"scene"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	LegacyGL   bool `yaml:"legacy_gl"` // Force the reduced capability set (six-framebuffer omni path)
}

// ShadowsConfig holds shadow-mapping settings.
type ShadowsConfig struct {
	Enabled         bool           `yaml:"enabled"`
	Preset          int            `yaml:"preset"`
	Presets         []PresetConfig `yaml:"presets"`
	Bounds          BoundsConfig   `yaml:"bounds"`
	FixedDistance   float32        `yaml:"fixed_distance"`
	OmniNear        float32        `yaml:"omni_near"`
	OmniFar         float32        `yaml:"omni_far"`
	OmniRadius      float32        `yaml:"omni_radius"`
	DebugShadowMap  bool           `yaml:"debug_shadow_map"`
	ForceShadowTest bool           `yaml:"force_shadow_test"`
	Strict          bool           `yaml:"strict"` // Panic on pass-ordering violations
}

// PresetConfig is one named shadow quality level.
type PresetConfig struct {
	Name    string  `yaml:"name"`
	MapSize int     `yaml:"map_size"`
	Bias    float32 `yaml:"bias"`
}

// BoundsConfig is the default orthographic frustum of directional shadows.
type BoundsConfig struct {
	Left   float32 `yaml:"left"`
	Right  float32 `yaml:"right"`
	Bottom float32 `yaml:"bottom"`
	Top    float32 `yaml:"top"`
	Near   float32 `yaml:"near"`
	Far    float32 `yaml:"far"`
}

// SceneConfig holds demo scene settings.
type SceneConfig struct {
	Mesh       string  `yaml:"mesh"`        // Optional glTF/GLB file of shadow casters
	PointLight bool    `yaml:"point_light"` // Add an omnidirectional light
	SunSpeed   float32 `yaml:"sun_speed"`   // Degrees of longitude per second
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			LegacyGL:   false,
		},
		Shadows: ShadowsConfig{
			Enabled: true,
			Preset:  1,
			Presets: []PresetConfig{
				{Name: "low", MapSize: 512, Bias: 0.008},
				{Name: "medium", MapSize: 1024, Bias: 0.005},
				{Name: "high", MapSize: 2048, Bias: 0.003},
				{Name: "ultra", MapSize: 4096, Bias: 0.002},
			},
			Bounds: BoundsConfig{
				Left: -50, Right: 50,
				Bottom: -50, Top: 50,
				Near: 0.1, Far: 200,
			},
			FixedDistance: 100,
			OmniNear:      0.1,
			OmniFar:       50,
			OmniRadius:    30,
		},
		Scene: SceneConfig{
			PointLight: true,
			SunSpeed:   10,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
