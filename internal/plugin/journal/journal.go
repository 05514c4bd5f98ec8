// Package journal records render lifecycle events in the event store, including a
// content fingerprint for every page that reached EndPage.
package journal

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/docrender/internal/eventstore"
	ferrors "git.home.luguber.info/inful/docrender/internal/foundation/errors"
	"git.home.luguber.info/inful/docrender/internal/logfields"
	"git.home.luguber.info/inful/docrender/internal/observability"
	"git.home.luguber.info/inful/docrender/internal/plugin"
	"git.home.luguber.info/inful/docrender/internal/render"
	"github.com/inful/mdfp"
)

// Name is the plugin name used in configuration.
const Name = "journal"

// Plugin appends RenderStarted, PageRendered and RenderCompleted events.
// PageRendered events are held until the render reports which files were written, so pages
// cancelled or failing after EndPage are never recorded.
type Plugin struct {
	host  plugin.Host
	store eventstore.Store
	owned bool

	mu      sync.Mutex
	started map[string]time.Time
	pending map[string][]*eventstore.PageRendered
	ended   map[string]bool
}

// New creates a journal writing to store. The caller keeps ownership of store.
func New(store eventstore.Store) *Plugin {
	return &Plugin{
		store:   store,
		started: make(map[string]time.Time),
		pending: make(map[string][]*eventstore.PageRendered),
		ended:   make(map[string]bool),
	}
}

// Open creates a journal backed by a SQLite database at path, closed by Close.
func Open(path string) (*Plugin, error) {
	store, err := eventstore.NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	p := New(store)
	p.owned = true
	return p, nil
}

// Store returns the underlying event store.
func (p *Plugin) Store() eventstore.Store { return p.store }

func (p *Plugin) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        Name,
		Version:     "v1.0.0",
		Type:        plugin.PluginTypeJournal,
		Description: "Records render history with page fingerprints",
	}
}

func (p *Plugin) Attach(host plugin.Host) error {
	if p.store == nil {
		return errors.New("journal has no event store")
	}
	p.host = host
	host.RenderEvents().On(render.BeginRender, p.onBeginRender)
	host.PageEvents().On(render.EndPage, p.onEndPage)
	host.RenderEvents().On(render.EndRender, p.onEndRender)
	return nil
}

// Close closes the store when the journal opened it.
func (p *Plugin) Close() error {
	if !p.owned {
		return nil
	}
	return p.store.Close()
}

// Fingerprint is the content fingerprint recorded for a page.
func Fingerprint(contents string) string {
	return mdfp.CalculateFingerprintFromParts("", contents)
}

func (p *Plugin) onBeginRender(ctx context.Context, e *render.RenderEvent) error {
	p.mu.Lock()
	p.started[e.ID] = time.Now()
	p.mu.Unlock()

	evt, err := eventstore.NewRenderStarted(e.ID, e.OutputDirectory, p.host.Config().Theme, len(e.URLs))
	if err != nil {
		return err
	}
	if err := eventstore.Record(ctx, p.store, evt); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryPlugin, "journal could not record render start").
			WithContext("render_id", e.ID).
			Build()
	}
	return nil
}

func (p *Plugin) onEndPage(ctx context.Context, page *render.PageEvent) error {
	evt, err := eventstore.NewPageRendered(page.RenderID, page.URL, page.TemplateName,
		Fingerprint(page.Contents), len(page.Contents))
	if err != nil {
		p.logger(ctx).Warn("Journal could not record page", logfields.URL(page.URL), logfields.Error(err))
		return nil
	}
	p.mu.Lock()
	p.pending[page.RenderID] = append(p.pending[page.RenderID], evt)
	p.mu.Unlock()
	return nil
}

func (p *Plugin) onEndRender(ctx context.Context, e *render.RenderEvent) error {
	p.mu.Lock()
	duration := time.Since(p.started[e.ID])
	p.ended[e.ID] = true
	p.mu.Unlock()

	pages := p.flush(ctx, e.ID, e.Written)
	evt, err := eventstore.NewRenderCompleted(e.ID, pages, duration)
	if err == nil {
		err = eventstore.Record(ctx, p.store, evt)
	}
	if err != nil {
		p.logger(ctx).Warn("Journal could not record render completion", logfields.Error(err))
	}
	return nil
}

// flush records the held PageRendered events whose URL was written and returns their count.
func (p *Plugin) flush(ctx context.Context, renderID string, written []string) int {
	p.mu.Lock()
	pending := p.pending[renderID]
	delete(p.pending, renderID)
	p.mu.Unlock()

	keep := make(map[string]struct{}, len(written))
	for _, u := range written {
		keep[u] = struct{}{}
	}
	n := 0
	for _, evt := range pending {
		if _, ok := keep[evt.URL]; !ok {
			continue
		}
		if err := eventstore.Record(ctx, p.store, evt); err != nil {
			p.logger(ctx).Warn("Journal could not record page", logfields.URL(evt.URL), logfields.Error(err))
			continue
		}
		n++
	}
	return n
}

func (p *Plugin) logger(ctx context.Context) *slog.Logger {
	return observability.Logger(observability.WithPlugin(ctx, Name), p.host.Logger())
}

// Finish records a RenderFailed event for renders that ended without EndRender, such as
// cancelled or aborted ones. It is a no-op for completed renders and nil reports.
func (p *Plugin) Finish(ctx context.Context, report *render.Report, renderErr error) error {
	if report == nil {
		return nil
	}
	p.mu.Lock()
	ended := p.ended[report.RenderID]
	_, started := p.started[report.RenderID]
	delete(p.started, report.RenderID)
	delete(p.ended, report.RenderID)
	p.mu.Unlock()
	if ended || !started {
		p.flush(ctx, report.RenderID, nil)
		return nil
	}

	// the render context may already be done
	ctx = context.WithoutCancel(ctx)
	p.flush(ctx, report.RenderID, report.Written)

	reason, msg := "aborted", ""
	if report.Cancelled {
		reason = "cancelled"
	}
	if renderErr != nil {
		msg = renderErr.Error()
	}
	evt, err := eventstore.NewRenderFailed(report.RenderID, reason, msg)
	if err != nil {
		return err
	}
	return eventstore.Record(ctx, p.store, evt)
}
