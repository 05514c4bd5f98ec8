package render

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"git.home.luguber.info/inful/docrender/internal/events"
	"git.home.luguber.info/inful/docrender/internal/theme"
	"github.com/stretchr/testify/require"
)

const stubFactory = "render-test-stub"

// stubMarker marks a directory as stub-theme output.
const stubMarker = ".stub-output"

func init() {
	theme.MustRegister(stubFactory, func(_ theme.Host, basePath string) (theme.Theme, error) {
		return &stubTheme{base: basePath}, nil
	})
}

// stubTheme maps a []theme.URLMapping project onto itself.
type stubTheme struct {
	base string
}

func (s *stubTheme) BasePath() string { return s.base }

func (s *stubTheme) URLs(project any) ([]theme.URLMapping, error) {
	urls, _ := project.([]theme.URLMapping)
	return urls, nil
}

func (s *stubTheme) IsOutputDirectory(path string) bool {
	_, err := os.Stat(filepath.Join(path, stubMarker))
	return err == nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newStubTheme creates root/<name> as a stub theme with one template per name.
func newStubTheme(t *testing.T, root, name string, templates map[string]string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	mustWrite(t, filepath.Join(dir, theme.DefinitionFile), "name: "+name+"\nfactory: "+stubFactory+"\n")
	for file, body := range templates {
		mustWrite(t, filepath.Join(dir, DefaultTemplatesDir, file), body)
	}
	return dir
}

func newStubRenderer(t *testing.T, templates map[string]string, opts ...Option) *Renderer {
	t.Helper()
	root := t.TempDir()
	newStubTheme(t, root, "stub", templates)
	opts = append([]Option{WithLogger(discardLogger())}, opts...)
	return New(Config{Theme: "stub", ThemeRoot: root}, opts...)
}

func mappings(urls ...string) []theme.URLMapping {
	out := make([]theme.URLMapping, 0, len(urls))
	for _, u := range urls {
		out = append(out, theme.URLMapping{URL: u, Model: u, TemplateName: "page.tmpl"})
	}
	return out
}

// recordNames counts dispatched lifecycle events by name.
func recordNames(r *Renderer) map[events.Name]int {
	seen := map[events.Name]int{}
	for _, name := range []events.Name{BeginRender, EndRender} {
		r.RenderEvents().On(name, func(context.Context, *RenderEvent) error {
			seen[name]++
			return nil
		})
	}
	for _, name := range []events.Name{BeginPage, EndPage} {
		r.PageEvents().On(name, func(context.Context, *PageEvent) error {
			seen[name]++
			return nil
		})
	}
	return seen
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(dir, path)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	return files
}
