// Package config loads the docrender YAML configuration.
//
// Loading runs in a fixed order: .env files, ${VAR} expansion, YAML decoding,
// normalization, defaults, path resolution and validation.
package config

import (
	"os"
	"path/filepath"
	"slices"

	ferrors "git.home.luguber.info/inful/docrender/internal/foundation/errors"
	"git.home.luguber.info/inful/docrender/internal/textfile"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "docrender.yaml"

// Built-in plugin names accepted in the plugins list.
const (
	PluginAssets      = "assets"
	PluginSearchIndex = "searchindex"
	PluginJournal     = "journal"
)

// DefaultPlugins is used when the configuration omits the plugins key.
var DefaultPlugins = []string{PluginAssets, PluginSearchIndex, PluginJournal}

// Config is the root configuration document.
type Config struct {
	Theme     string         `yaml:"theme"`
	ThemeRoot string         `yaml:"theme_root"`
	Project   string         `yaml:"project"`
	Output    OutputConfig   `yaml:"output"`
	Render    RenderConfig   `yaml:"render"`
	Plugins   []string       `yaml:"plugins"`
	Journal   JournalConfig  `yaml:"journal"`
	Metrics   MetricsConfig  `yaml:"metrics"`
	Logging   LoggingConfig  `yaml:"logging"`
	Settings  map[string]any `yaml:"settings,omitempty"`
}

// OutputConfig selects where pages are written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// RenderConfig tunes the render loop.
type RenderConfig struct {
	MaxPageFailures int    `yaml:"max_page_failures"` // 0 = unlimited
	TemplatesDir    string `yaml:"templates_dir"`
}

// JournalConfig locates the render history database.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig controls Prometheus exposition. Both fields are optional.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // node_exporter textfile written after each render
	Listen   string `yaml:"listen"`   // host:port serving /metrics while watching
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// HasPlugin reports whether name is enabled.
func (c *Config) HasPlugin(name string) bool {
	return slices.Contains(c.Plugins, name)
}

// Load reads, expands, normalizes, defaults and validates the file at path.
// Relative paths in the file are resolved against the file's directory.
func Load(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, ferrors.ConfigError("invalid configuration path").
			WithContext("path", path).WithCause(err).Build()
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.NotFoundError("configuration file not found").
				WithContext("path", path).Build()
		}
		return nil, ferrors.ConfigError("cannot access configuration file").
			WithContext("path", path).WithCause(err).Build()
	}

	baseDir := filepath.Dir(abs)
	if err := loadEnvFiles(baseDir); err != nil {
		return nil, err
	}

	src, err := textfile.ReadFile(abs)
	if err != nil {
		return nil, ferrors.ConfigError("failed to read configuration file").
			WithContext("path", path).WithCause(err).Build()
	}
	cfg, err := Parse([]byte(os.ExpandEnv(src)))
	if err != nil {
		return nil, err
	}
	cfg.ResolvePaths(baseDir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes data and applies normalization and defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, ferrors.ConfigError("failed to parse configuration").WithCause(err).Build()
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ResolvePaths makes relative file paths absolute with respect to baseDir.
// The theme name is left alone because it is looked up under theme_root.
func (c *Config) ResolvePaths(baseDir string) {
	for _, p := range []*string{&c.ThemeRoot, &c.Project, &c.Output.Directory, &c.Journal.Path, &c.Metrics.Textfile} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(baseDir, *p)
		}
	}
}
