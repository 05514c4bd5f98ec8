package config

import (
	"net"

	"git.home.luguber.info/inful/docrender/internal/foundation"
)

// Validate checks the loaded configuration and reports every problem at once.
func (c *Config) Validate() error {
	result := foundation.Required("theme")(c.Theme).
		Combine(foundation.Required("theme_root")(c.ThemeRoot)).
		Combine(foundation.Required("output.directory")(c.Output.Directory)).
		Combine(foundation.Required("render.templates_dir")(c.Render.TemplatesDir)).
		Combine(foundation.NonNegative("render.max_page_failures")(c.Render.MaxPageFailures)).
		Combine(c.validatePlugins())

	if c.HasPlugin(PluginJournal) {
		result = result.Combine(foundation.Required("journal.path")(c.Journal.Path))
	}
	if c.Metrics.Listen != "" {
		if _, _, err := net.SplitHostPort(c.Metrics.Listen); err != nil {
			result = result.Combine(foundation.Fail("metrics.listen", "format", "must be host:port (%v)", err))
		}
	}
	return result.ToError()
}

func (c *Config) validatePlugins() foundation.ValidationResult {
	result := foundation.Valid()
	known := foundation.OneOf("plugins", DefaultPlugins)
	seen := make(map[string]bool, len(c.Plugins))
	for _, p := range c.Plugins {
		result = result.Combine(known(p))
		if seen[p] {
			result = result.Combine(foundation.Fail("plugins", "duplicate", "%q listed twice", p))
		}
		seen[p] = true
	}
	return result
}
