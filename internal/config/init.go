package config

import (
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/docrender/internal/foundation/errors"
	"gopkg.in/yaml.v3"
)

// Example returns the configuration written by Init.
func Example() *Config {
	return &Config{
		Theme:     DefaultTheme,
		ThemeRoot: "./" + DefaultThemeRoot,
		Project:   "./" + DefaultProject,
		Output:    OutputConfig{Directory: "./" + DefaultOutputDir},
		Render:    RenderConfig{TemplatesDir: DefaultTemplatesDir},
		Plugins:   DefaultPlugins,
		Journal:   JournalConfig{Path: "./" + DefaultJournalPath},
		Logging:   LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Settings:  map[string]any{"title": "My Docs"},
	}
}

// Init writes an example configuration file. An existing file is kept unless force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).Build()
	}
	data, err := yaml.Marshal(Example())
	if err != nil {
		return ferrors.InternalError("failed to encode example configuration").WithCause(err).Build()
	}
	if dir := filepath.Dir(path); dir != "." {
		// #nosec G301 -- configuration directory
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ferrors.FileSystemError("failed to create configuration directory").
				WithContext("path", dir).WithCause(err).Build()
		}
	}
	// #nosec G306 -- configuration file, no secrets inline
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ferrors.FileSystemError("failed to write configuration file").
			WithContext("path", path).WithCause(err).Build()
	}
	return nil
}
