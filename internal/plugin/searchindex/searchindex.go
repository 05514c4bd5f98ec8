// Package searchindex writes a JSON index of rendered pages for client-side search.
package searchindex

import (
	"context"
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sync"

	ferrors "git.home.luguber.info/inful/docrender/internal/foundation/errors"
	"git.home.luguber.info/inful/docrender/internal/logfields"
	"git.home.luguber.info/inful/docrender/internal/observability"
	"git.home.luguber.info/inful/docrender/internal/options"
	"git.home.luguber.info/inful/docrender/internal/plugin"
	"git.home.luguber.info/inful/docrender/internal/project"
	"git.home.luguber.info/inful/docrender/internal/render"
)

// Name is the plugin name used in configuration.
const Name = "searchindex"

// IndexFile is the index location relative to the output directory.
const IndexFile = "assets/js/search.json"

// SettingEnabled turns the index off when set to false.
const SettingEnabled = "searchIndex"

// Entry is one indexed page.
type Entry struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Kind    string `json:"kind,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// Plugin collects entries at EndPage and writes those whose page was written at EndRender.
type Plugin struct {
	host plugin.Host

	mu      sync.Mutex
	entries []Entry
}

// New creates the search index plugin.
func New() *Plugin { return &Plugin{} }

func (p *Plugin) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        Name,
		Version:     "v1.0.0",
		Type:        plugin.PluginTypeIndex,
		Description: "Writes " + IndexFile + " listing every rendered page",
	}
}

func (p *Plugin) Parameters() []options.Descriptor {
	return []options.Descriptor{
		{Name: SettingEnabled, Kind: options.KindBool, Default: true, Help: "Write " + IndexFile},
	}
}

func (p *Plugin) Attach(host plugin.Host) error {
	p.host = host
	host.RenderEvents().On(render.BeginRender, p.onBeginRender)
	host.PageEvents().On(render.EndPage, p.onEndPage)
	host.RenderEvents().On(render.EndRender, p.onEndRender)
	return nil
}

// Entries returns the entries collected by the current or last render.
func (p *Plugin) Entries() []Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

func (p *Plugin) onBeginRender(context.Context, *render.RenderEvent) error {
	p.mu.Lock()
	p.entries = nil
	p.mu.Unlock()
	return nil
}

func (p *Plugin) onEndPage(_ context.Context, page *render.PageEvent) error {
	if !enabled(page.Settings) {
		return nil
	}
	p.mu.Lock()
	p.entries = append(p.entries, entryFor(page))
	p.mu.Unlock()
	return nil
}

func (p *Plugin) onEndRender(ctx context.Context, e *render.RenderEvent) error {
	if !enabled(e.Settings) {
		return nil
	}
	p.mu.Lock()
	p.entries = writtenOnly(p.entries, e.Written)
	data, err := json.MarshalIndent(struct {
		Pages []Entry `json:"pages"`
	}{Pages: p.entries}, "", "  ")
	count := len(p.entries)
	p.mu.Unlock()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryPlugin, "failed to encode search index").Build()
	}

	target := filepath.Join(e.OutputDirectory, filepath.FromSlash(IndexFile))
	// #nosec G301 -- published static files
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write search index").
			WithContext("file", target).Build()
	}
	// #nosec G306 -- published static files
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write search index").
			WithContext("file", target).Build()
	}
	observability.Logger(observability.WithPlugin(ctx, Name), p.host.Logger()).
		Debug("Wrote search index", logfields.File(target), logfields.Pages(count))
	return nil
}

func entryFor(page *render.PageEvent) Entry {
	switch m := page.Model.(type) {
	case *project.Project:
		return Entry{URL: page.URL, Title: m.Name, Kind: "index"}
	case *project.Document:
		return Entry{URL: page.URL, Title: m.Name, Kind: m.KindOrDefault(), Summary: m.Summary}
	default:
		return Entry{URL: page.URL, Title: path.Base(page.URL)}
	}
}

func enabled(settings map[string]any) bool {
	v, ok := settings[SettingEnabled].(bool)
	return !ok || v
}

// writtenOnly drops entries for pages that failed or were cancelled after EndPage.
func writtenOnly(entries []Entry, written []string) []Entry {
	keep := make(map[string]struct{}, len(written))
	for _, u := range written {
		keep[u] = struct{}{}
	}
	return slices.DeleteFunc(entries, func(e Entry) bool {
		_, ok := keep[e.URL]
		return !ok
	})
}
