package config

import "slices"

// Default values applied to empty fields.
const (
	DefaultTheme        = "default"
	DefaultThemeRoot    = "themes"
	DefaultProject      = "project.yaml"
	DefaultOutputDir    = "site"
	DefaultTemplatesDir = "templates"
	DefaultJournalPath  = ".docrender/journal.db"
)

// ApplyDefaults fills empty fields. An explicit empty plugins list is kept.
func (c *Config) ApplyDefaults() {
	setDefault(&c.Theme, DefaultTheme)
	setDefault(&c.ThemeRoot, DefaultThemeRoot)
	setDefault(&c.Project, DefaultProject)
	setDefault(&c.Output.Directory, DefaultOutputDir)
	setDefault(&c.Render.TemplatesDir, DefaultTemplatesDir)
	if c.Plugins == nil {
		c.Plugins = slices.Clone(DefaultPlugins)
	}
	if c.HasPlugin(PluginJournal) {
		setDefault(&c.Journal.Path, DefaultJournalPath)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
	if c.Settings == nil {
		c.Settings = map[string]any{}
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
