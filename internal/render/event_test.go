package render

import (
	"path/filepath"
	"testing"

	"git.home.luguber.info/inful/docrender/internal/theme"
	"github.com/stretchr/testify/require"
)

func TestNewPageEvent(t *testing.T) {
	out := t.TempDir()
	settings := map[string]any{"title": "Docs"}
	re := &RenderEvent{ID: "r1", OutputDirectory: out, Project: "proj", Settings: settings}

	p := re.NewPageEvent(theme.URLMapping{URL: "guides/start.html", Model: 42, TemplateName: "doc.tmpl"})
	require.Equal(t, "r1", p.RenderID)
	require.Equal(t, "proj", p.Project)
	require.Equal(t, 42, p.Model)
	require.Equal(t, "doc.tmpl", p.TemplateName)
	require.Equal(t, filepath.Join(out, "guides", "start.html"), p.Filename)
	require.Equal(t, "Docs", p.Setting("title"))
	require.Nil(t, p.Template)
	require.False(t, p.Cancelled())

	re.Cancel()
	require.False(t, re.NewPageEvent(theme.URLMapping{URL: "x.html"}).Cancelled())
}

func TestRelativeURL(t *testing.T) {
	tests := []struct {
		from, target, want string
	}{
		{"index.html", "assets/css/main.css", "assets/css/main.css"},
		{"pages/a.html", "assets/css/main.css", "../assets/css/main.css"},
		{"a/b/c.html", "/index.html", "../../index.html"},
		{"a/b.html", "https://example.com/x", "https://example.com/x"},
		{"a/b.html", "#top", "#top"},
		{"a/b.html", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.target, func(t *testing.T) {
			require.Equal(t, tt.want, relativeURL(tt.from, tt.target))
		})
	}
}
