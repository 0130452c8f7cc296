// Package config loads Orbit's optional YAML configuration.
//
// Settings are layered: built-in defaults, then ~/.config/orbit/config.yaml,
// then an explicit file passed with --config. CLI flags are applied on top by
// the caller.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/abelbrown/orbit/internal/images"
	"github.com/abelbrown/orbit/internal/store"
	"github.com/abelbrown/orbit/internal/theme"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir

const (
	userConfigDir  = ".config/orbit"
	configFileName = "config.yaml"
	dataDir        = ".orbit"
)

// Config is the full application configuration.
type Config struct {
	Theme  ThemeConfig  `yaml:"theme"`
	Author string       `yaml:"author"`
	Images ImagesConfig `yaml:"images"`
	Log    LogConfig    `yaml:"log"`
	Events EventsConfig `yaml:"events"`

	// Mouse is a pointer so an overlay can turn it off explicitly.
	Mouse *bool `yaml:"mouse,omitempty"`
}

// ThemeConfig is the initial look. Texture is a name parsed by Validate.
type ThemeConfig struct {
	Background string `yaml:"background"`
	Texture    string `yaml:"texture"`
}

// ImagesConfig points the image locator at a placeholder service.
type ImagesConfig struct {
	BaseURL string `yaml:"base_url"`
}

// LogConfig controls the diagnostic file logger.
type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// EventsConfig controls the JSONL event log.
type EventsConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Path    string `yaml:"path"`
}

// Default returns the built-in configuration. Paths are left empty and
// resolved against the home directory by Resolve.
func Default() Config {
	on := true
	return Config{
		Theme: ThemeConfig{
			Background: theme.DefaultBackground,
			Texture:    theme.None.String(),
		},
		Author: store.DefaultAuthor,
		Images: ImagesConfig{BaseURL: images.DefaultBaseURL},
		Log:    LogConfig{Level: "info"},
		Events: EventsConfig{Enabled: &on},
		Mouse:  &on,
	}
}

// Load layers the user config file and then explicitPath (if non-empty) over
// the defaults. A missing user file is fine; a missing explicit file is not.
func Load(explicitPath string) (Config, error) {
	cfg := Default()

	userPath, err := getUserConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else if _, err := os.Stat(userPath); !os.IsNotExist(err) {
		userCfg, err := loadConfigFromFile(userPath)
		if err != nil {
			return Config{}, fmt.Errorf("error loading user config from %s: %w", userPath, err)
		}
		cfg = merge(cfg, userCfg)
	}

	if explicitPath != "" {
		fileCfg, err := loadConfigFromFile(explicitPath)
		if err != nil {
			return Config{}, fmt.Errorf("error loading config from %s: %w", explicitPath, err)
		}
		cfg = merge(cfg, fileCfg)
	}

	if err := cfg.Resolve(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

func loadConfigFromFile(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// merge overlays non-zero fields of overlay onto base.
func merge(base, overlay Config) Config {
	out := base
	if overlay.Theme.Background != "" {
		out.Theme.Background = overlay.Theme.Background
	}
	if overlay.Theme.Texture != "" {
		out.Theme.Texture = overlay.Theme.Texture
	}
	if overlay.Author != "" {
		out.Author = overlay.Author
	}
	if overlay.Images.BaseURL != "" {
		out.Images.BaseURL = overlay.Images.BaseURL
	}
	if overlay.Log.Level != "" {
		out.Log.Level = overlay.Log.Level
	}
	if overlay.Log.Dir != "" {
		out.Log.Dir = overlay.Log.Dir
	}
	if overlay.Events.Enabled != nil {
		out.Events.Enabled = overlay.Events.Enabled
	}
	if overlay.Events.Path != "" {
		out.Events.Path = overlay.Events.Path
	}
	if overlay.Mouse != nil {
		out.Mouse = overlay.Mouse
	}
	return out
}

// Resolve fills empty log and event paths under ~/.orbit.
func (c *Config) Resolve() error {
	if c.Log.Dir != "" && c.Events.Path != "" {
		return nil
	}
	home, err := osUserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	if c.Log.Dir == "" {
		c.Log.Dir = filepath.Join(home, dataDir, "logs")
	}
	if c.Events.Path == "" {
		c.Events.Path = filepath.Join(home, dataDir, "events.jsonl")
	}
	return nil
}

// Validate checks values that cannot be checked by the YAML decoder.
func (c Config) Validate() error {
	if _, err := theme.ParseTexture(c.Theme.Texture); err != nil {
		return fmt.Errorf("theme.texture: %w", err)
	}
	if c.Theme.Background == "" {
		return fmt.Errorf("theme.background: must not be empty")
	}
	if c.Images.BaseURL == "" {
		return fmt.Errorf("images.base_url: must not be empty")
	}
	return nil
}

// ThemeConfig converts the validated theme section.
func (c Config) ThemeConfig() (theme.Config, error) {
	tex, err := theme.ParseTexture(c.Theme.Texture)
	if err != nil {
		return theme.Config{}, err
	}
	return theme.Config{Background: c.Theme.Background, Texture: tex}, nil
}

// MouseEnabled reports whether mouse input should be captured.
func (c Config) MouseEnabled() bool {
	return c.Mouse == nil || *c.Mouse
}

// EventsEnabled reports whether the JSONL event log is on.
func (c Config) EventsEnabled() bool {
	return c.Events.Enabled == nil || *c.Events.Enabled
}
