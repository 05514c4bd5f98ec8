package config

import (
	"os"
	"path/filepath"
	"testing"

	ferrors "git.home.luguber.info/inful/docrender/internal/foundation/errors"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func unsetAfter(t *testing.T, keys ...string) {
	t.Helper()
	t.Cleanup(func() {
		for _, k := range keys {
			_ = os.Unsetenv(k)
		}
	})
}

func TestLoad_FullFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
theme: ./custom
theme_root: ./themes
project: docs/project.yaml
output: { directory: /srv/site }
render: { max_page_failures: 3, templates_dir: layouts }
plugins: [Assets, journal]
journal: { path: state/journal.db }
metrics: { textfile: metrics/docrender.prom, listen: "127.0.0.1:9100" }
logging: { level: DEBUG, format: Json }
settings: { title: Handbook, hideGenerator: true }
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "./custom", cfg.Theme)
	require.Equal(t, filepath.Join(dir, "themes"), cfg.ThemeRoot)
	require.Equal(t, filepath.Join(dir, "docs", "project.yaml"), cfg.Project)
	require.Equal(t, "/srv/site", cfg.Output.Directory)
	require.Equal(t, 3, cfg.Render.MaxPageFailures)
	require.Equal(t, "layouts", cfg.Render.TemplatesDir)
	require.Equal(t, []string{PluginAssets, PluginJournal}, cfg.Plugins)
	require.Equal(t, filepath.Join(dir, "state", "journal.db"), cfg.Journal.Path)
	require.Equal(t, filepath.Join(dir, "metrics", "docrender.prom"), cfg.Metrics.Textfile)
	require.Equal(t, "127.0.0.1:9100", cfg.Metrics.Listen)
	require.Equal(t, LogLevelDebug, cfg.Logging.Level)
	require.Equal(t, LogFormatJSON, cfg.Logging.Format)
	require.Equal(t, "Handbook", cfg.Settings["title"])
	require.Equal(t, true, cfg.Settings["hideGenerator"])
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(writeConfig(t, dir, "{}\n"))
	require.NoError(t, err)

	require.Equal(t, DefaultTheme, cfg.Theme)
	require.Equal(t, filepath.Join(dir, DefaultThemeRoot), cfg.ThemeRoot)
	require.Equal(t, filepath.Join(dir, DefaultOutputDir), cfg.Output.Directory)
	require.Equal(t, DefaultTemplatesDir, cfg.Render.TemplatesDir)
	require.Zero(t, cfg.Render.MaxPageFailures)
	require.Equal(t, DefaultPlugins, cfg.Plugins)
	require.Equal(t, filepath.Join(dir, DefaultJournalPath), cfg.Journal.Path)
	require.Equal(t, LogLevelInfo, cfg.Logging.Level)
	require.Equal(t, LogFormatText, cfg.Logging.Format)
	require.NotNil(t, cfg.Settings)
}

func TestLoad_EmptyPluginListIsKept(t *testing.T) {
	cfg, err := Load(writeConfig(t, t.TempDir(), "plugins: []\n"))
	require.NoError(t, err)
	require.Empty(t, cfg.Plugins)
	require.Empty(t, cfg.Journal.Path)
}

func TestLoad_ExpandsEnvironmentAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	unsetAfter(t, "DOCRENDER_TEST_TITLE", "DOCRENDER_TEST_OUT")
	t.Setenv("DOCRENDER_TEST_OUT", "/from/env")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("DOCRENDER_TEST_TITLE=from-dotenv\nDOCRENDER_TEST_OUT=/from/dotenv\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"),
		[]byte("DOCRENDER_TEST_TITLE=from-local\n"), 0o600))

	cfg, err := Load(writeConfig(t, dir, `
output: { directory: "${DOCRENDER_TEST_OUT}" }
settings: { title: "${DOCRENDER_TEST_TITLE}" }
`))
	require.NoError(t, err)
	require.Equal(t, "/from/env", cfg.Output.Directory)
	require.Equal(t, "from-local", cfg.Settings["title"])
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		category ferrors.ErrorCategory
	}{
		{"malformed yaml", "theme: [unterminated\n", ferrors.CategoryConfig},
		{"negative failures", "render: { max_page_failures: -1 }\n", ferrors.CategoryValidation},
		{"unknown plugin", "plugins: [assets, sitemap]\n", ferrors.CategoryValidation},
		{"duplicate plugin", "plugins: [assets, assets]\n", ferrors.CategoryValidation},
		{"bad log level", "logging: { level: loud }\n", ferrors.CategoryValidation},
		{"bad listen address", "metrics: { listen: nine-one-hundred }\n", ferrors.CategoryValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), tt.content))
			require.Error(t, err)
			require.Equal(t, tt.category, ferrors.GetCategory(err), "error: %v", err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}

func TestValidate_ReportsEveryField(t *testing.T) {
	cfg := &Config{Plugins: []string{"journal", "bogus"}, Render: RenderConfig{MaxPageFailures: -2}}
	err := cfg.Validate()
	require.Error(t, err)

	classified, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	fields, ok := classified.Context().Get("fields")
	require.True(t, ok)
	require.ElementsMatch(t, []string{
		"theme", "theme_root", "output.directory", "render.templates_dir",
		"render.max_page_failures", "plugins", "journal.path",
	}, fields)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", DefaultPath)

	require.NoError(t, Init(path, false))
	err := Init(path, false)
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultTheme, cfg.Theme)
	require.Equal(t, DefaultPlugins, cfg.Plugins)
	require.Equal(t, "My Docs", cfg.Settings["title"])
	require.Equal(t, filepath.Join(dir, "nested", DefaultOutputDir), cfg.Output.Directory)
}

func TestLogging(t *testing.T) {
	require.Equal(t, LogLevelWarn, NormalizeLogLevel(" Warning "))
	require.Equal(t, LogLevelInfo, NormalizeLogLevel("chatty"))
	require.Equal(t, LogFormatJSON, NormalizeLogFormat("JSON"))

	logger := LoggingConfig{Level: LogLevelError, Format: LogFormatJSON}.NewLogger(os.Stderr, false)
	require.False(t, logger.Enabled(t.Context(), LogLevelWarn.Slog()))
	verbose := LoggingConfig{Level: LogLevelError}.NewLogger(os.Stderr, true)
	require.True(t, verbose.Enabled(t.Context(), LogLevelDebug.Slog()))
}
