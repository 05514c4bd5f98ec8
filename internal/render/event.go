package render

import (
	"maps"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docrender/internal/events"
	"git.home.luguber.info/inful/docrender/internal/theme"
)

// Lifecycle event names.
const (
	BeginRender events.Name = "beginRender"
	EndRender   events.Name = "endRender"
	BeginPage   events.Name = "beginPage"
	EndPage     events.Name = "endPage"
)

// RenderEvent is dispatched once before and once after all pages of a render.
// Listeners may mutate URLs at BeginRender to add, drop or reorder pages.
type RenderEvent struct {
	events.Cancellation

	ID              string
	OutputDirectory string
	Project         any
	Settings        map[string]any
	URLs            []theme.URLMapping

	// Written lists the URLs whose files were written. It is filled before EndRender.
	Written []string
}

// NewPageEvent builds the event for one mapping. Filename is resolved against the output directory.
func (e *RenderEvent) NewPageEvent(m theme.URLMapping) *PageEvent {
	return &PageEvent{
		RenderID:     e.ID,
		URL:          m.URL,
		Model:        m.Model,
		Project:      e.Project,
		Settings:     e.Settings,
		TemplateName: m.TemplateName,
		Filename:     filepath.Join(e.OutputDirectory, filepath.FromSlash(m.URL)),
		Root:         e.OutputDirectory,
	}
}

// PageEvent is dispatched before and after one page is rendered. Template data is the
// event itself, so templates reach the model as {{.Model}}.
type PageEvent struct {
	events.Cancellation

	RenderID     string
	URL          string
	Model        any
	Project      any
	Settings     map[string]any
	TemplateName string
	Filename     string

	// Root is the output directory. Filename must stay beneath it.
	Root string

	// Template overrides the cache lookup when set by a BeginPage listener.
	Template *Template

	// Contents holds the rendered text between template execution and the write.
	Contents string
}

// insideRoot reports whether Filename lies beneath Root. Events without a Root pass.
func (p *PageEvent) insideRoot() bool {
	if p.Root == "" {
		return true
	}
	rel, err := filepath.Rel(p.Root, p.Filename)
	if err != nil || rel == "." || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// RelativeURL returns target (a path relative to the output root) as seen from this page.
func (p *PageEvent) RelativeURL(target string) string {
	return relativeURL(p.URL, target)
}

// Setting returns the named setting or nil.
func (p *PageEvent) Setting(name string) any {
	return p.Settings[name]
}

func relativeURL(from, target string) string {
	if target == "" || strings.Contains(target, "://") || strings.HasPrefix(target, "#") {
		return target
	}
	target = strings.TrimPrefix(target, "/")
	depth := strings.Count(path.Clean(from), "/")
	return strings.Repeat("../", depth) + target
}

func cloneSettings(s map[string]any) map[string]any {
	if s == nil {
		return map[string]any{}
	}
	return maps.Clone(s)
}
