package config

import (
	"strings"

	"git.home.luguber.info/inful/docrender/internal/foundation"
)

// normalize canonicalizes enum spellings and plugin names. Unknown enum values are
// reported rather than silently replaced.
func (c *Config) normalize() error {
	result := foundation.Valid()
	if c.Logging.Level != "" {
		level, err := logLevelNormalizer.NormalizeWithError(string(c.Logging.Level))
		if err != nil {
			result = result.Combine(foundation.Fail("logging.level", "one_of", "%v", err))
		}
		c.Logging.Level = level
	}
	if c.Logging.Format != "" {
		format, err := logFormatNormalizer.NormalizeWithError(string(c.Logging.Format))
		if err != nil {
			result = result.Combine(foundation.Fail("logging.format", "one_of", "%v", err))
		}
		c.Logging.Format = format
	}
	for i, p := range c.Plugins {
		c.Plugins[i] = strings.ToLower(strings.TrimSpace(p))
	}
	c.Theme = strings.TrimSpace(c.Theme)
	return result.ToError()
}
