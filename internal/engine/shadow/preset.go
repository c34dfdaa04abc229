package shadow

// QualityPreset is a named shadow map size and depth bias.
// Presets are applied whole; size and bias never change independently.
type QualityPreset struct {
	Name    string
	MapSize int32
	Bias    float32
}

// DefaultPresets are the built-in quality levels, lowest first.
var DefaultPresets = []QualityPreset{
	{Name: "low", MapSize: 512, Bias: 0.008},
	{Name: "medium", MapSize: 1024, Bias: 0.005},
	{Name: "high", MapSize: 2048, Bias: 0.003},
	{Name: "ultra", MapSize: 4096, Bias: 0.002},
}

// Settings holds the externally configured shadow parameters a light
// reconciles against in SyncWithConstants.
type Settings struct {
	Enabled bool
	Presets []QualityPreset
	Preset  int

	// Bounds is the default orthographic box of directional lights.
	Bounds        Bounds
	FixedDistance float32

	OmniNear   float32
	OmniFar    float32
	OmniRadius float32

	DebugShadowMap  bool
	ForceShadowTest bool
	// Strict turns pass-protocol violations into panics.
	Strict bool
}

// DefaultSettings returns shadows enabled at the medium preset.
func DefaultSettings() Settings {
	return Settings{
		Enabled:       true,
		Presets:       append([]QualityPreset(nil), DefaultPresets...),
		Preset:        1,
		Bounds:        DefaultBounds,
		FixedDistance: FixedDistance,
		OmniNear:      0.1,
		OmniFar:       50,
		OmniRadius:    30,
	}
}

// preset returns the preset selected by s, falling back to the first one
// when the index is out of range.
func (s Settings) preset() (QualityPreset, int) {
	if len(s.Presets) == 0 {
		return DefaultPresets[1], -1
	}
	if s.Preset < 0 || s.Preset >= len(s.Presets) {
		return s.Presets[0], 0
	}
	return s.Presets[s.Preset], s.Preset
}

func (s Settings) fixedDistance() float32 {
	if s.FixedDistance <= 0 {
		return FixedDistance
	}
	return s.FixedDistance
}
