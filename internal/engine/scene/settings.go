package scene

import (
	"github.com/Faultbox/midgard-shadows/internal/config"
	"github.com/Faultbox/midgard-shadows/internal/engine/shadow"
)

// SettingsFromConfig maps the shadows config section to light settings.
// An empty preset list keeps the built-in presets.
func SettingsFromConfig(cfg config.ShadowsConfig) shadow.Settings {
	s := shadow.DefaultSettings()
	s.Enabled = cfg.Enabled
	s.Preset = cfg.Preset
	if len(cfg.Presets) > 0 {
		s.Presets = make([]shadow.QualityPreset, 0, len(cfg.Presets))
		for _, p := range cfg.Presets {
			s.Presets = append(s.Presets, shadow.QualityPreset{
				Name:    p.Name,
				MapSize: int32(p.MapSize),
				Bias:    p.Bias,
			})
		}
	}

	b := cfg.Bounds
	if b.Right > b.Left && b.Top > b.Bottom && b.Far > b.Near {
		s.Bounds = shadow.Bounds{
			Left: b.Left, Right: b.Right,
			Bottom: b.Bottom, Top: b.Top,
			Near: b.Near, Far: b.Far,
		}
	}
	if cfg.FixedDistance > 0 {
		s.FixedDistance = cfg.FixedDistance
	}
	if cfg.OmniNear > 0 && cfg.OmniFar > cfg.OmniNear {
		s.OmniNear, s.OmniFar = cfg.OmniNear, cfg.OmniFar
	}
	if cfg.OmniRadius > 0 {
		s.OmniRadius = cfg.OmniRadius
	}

	s.DebugShadowMap = cfg.DebugShadowMap
	s.ForceShadowTest = cfg.ForceShadowTest
	s.Strict = cfg.Strict
	return s
}

// ConfigFromSettings is the inverse of SettingsFromConfig, used when saving.
func ConfigFromSettings(s shadow.Settings) config.ShadowsConfig {
	cfg := config.ShadowsConfig{
		Enabled: s.Enabled,
		Preset:  s.Preset,
		Bounds: config.BoundsConfig{
			Left: s.Bounds.Left, Right: s.Bounds.Right,
			Bottom: s.Bounds.Bottom, Top: s.Bounds.Top,
			Near: s.Bounds.Near, Far: s.Bounds.Far,
		},
		FixedDistance:   s.FixedDistance,
		OmniNear:        s.OmniNear,
		OmniFar:         s.OmniFar,
		OmniRadius:      s.OmniRadius,
		DebugShadowMap:  s.DebugShadowMap,
		ForceShadowTest: s.ForceShadowTest,
		Strict:          s.Strict,
	}
	for _, p := range s.Presets {
		cfg.Presets = append(cfg.Presets, config.PresetConfig{
			Name:    p.Name,
			MapSize: int(p.MapSize),
			Bias:    p.Bias,
		})
	}
	return cfg
}
