package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// Explicit path takes priority over the standard locations
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks values the renderer cannot recover from.
func (c *Config) Validate() error {
	if len(c.Shadows.Presets) == 0 {
		return fmt.Errorf("shadows.presets: at least one preset is required")
	}
	for i, p := range c.Shadows.Presets {
		if p.MapSize <= 0 || p.MapSize&(p.MapSize-1) != 0 {
			return fmt.Errorf("shadows.presets[%d] %q: map_size %d is not a power of two", i, p.Name, p.MapSize)
		}
	}
	if c.Shadows.Preset < 0 || c.Shadows.Preset >= len(c.Shadows.Presets) {
		return fmt.Errorf("shadows.preset %d out of range [0, %d)", c.Shadows.Preset, len(c.Shadows.Presets))
	}
	if c.Shadows.OmniNear <= 0 || c.Shadows.OmniFar <= c.Shadows.OmniNear {
		return fmt.Errorf("shadows: omni_near %.3f / omni_far %.3f must satisfy 0 < near < far",
			c.Shadows.OmniNear, c.Shadows.OmniFar)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "MidgardShadows")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "MidgardShadows")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "midgard-shadows")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "midgard-shadows")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
