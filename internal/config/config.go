// Package config loads the viewer configuration from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Scene variants.
const (
	VariantPixel   = "pixel"
	VariantClassic = "classic"
)

var ErrInvalidConfig = errors.New("invalid config")

type WindowConfig struct {
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Title      string `toml:"title"`
	VSync      bool   `toml:"vsync"`
	Fullscreen bool   `toml:"fullscreen"`
}

// AssetsConfig names the asset files, relative to Dir unless absolute.
type AssetsConfig struct {
	Dir       string `toml:"dir"`
	Model     string `toml:"model"`
	Materials string `toml:"materials"`
	Ground    string `toml:"ground"`
}

// Path resolves name against Dir.
func (a AssetsConfig) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(a.Dir, name)
}

type ControlsConfig struct {
	Damping bool `toml:"damping"`
}

type Config struct {
	Variant  string         `toml:"variant"`
	Remote   string         `toml:"remote"`
	LogLevel string         `toml:"log_level"`
	Preset   string         `toml:"preset"`
	Window   WindowConfig   `toml:"window"`
	Assets   AssetsConfig   `toml:"assets"`
	Controls ControlsConfig `toml:"controls"`
	// Params overrides parameter defaults by name.
	Params map[string]any `toml:"params"`
}

func Default() Config {
	return Config{
		Variant:  VariantPixel,
		LogLevel: "info",
		Preset:   "preset.yaml",
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Piggy Viewer",
			VSync:  true,
		},
		Assets: AssetsConfig{
			Dir:       "assets",
			Model:     "piggy.obj",
			Materials: "piggy.mtl",
			Ground:    "checker.png",
		},
	}
}

// Load reads path over Default. Keys missing from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Variant {
	case VariantPixel, VariantClassic:
	default:
		return fmt.Errorf("%w: variant %q (want %q or %q)", ErrInvalidConfig, c.Variant, VariantPixel, VariantClassic)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	if c.Assets.Model == "" || c.Assets.Ground == "" {
		return fmt.Errorf("%w: model and ground assets are required", ErrInvalidConfig)
	}
	return nil
}

// ReadParams returns only the [params] table of the file at path.
func ReadParams(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	var doc struct {
		Params map[string]any `toml:"params"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	return doc.Params, nil
}
