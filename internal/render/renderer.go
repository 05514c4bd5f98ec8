// Package render turns a documentation project into a tree of output files.
//
// A Renderer resolves its theme once, prepares the output directory, then walks the
// theme's URL mappings in order. Plugins hook the four lifecycle events through
// RenderEvents and PageEvents; any listener may cancel the scope it was dispatched in.
package render

import (
	"log/slog"
	"path"
	"sync"

	"git.home.luguber.info/inful/docrender/internal/events"
	"git.home.luguber.info/inful/docrender/internal/logfields"
	"git.home.luguber.info/inful/docrender/internal/metrics"
	"git.home.luguber.info/inful/docrender/internal/options"
	"git.home.luguber.info/inful/docrender/internal/theme"
)

// DefaultTemplatesDir is the directory inside a theme holding page templates.
const DefaultTemplatesDir = "templates"

// Config holds the renderer's settings.
type Config struct {
	// Theme is a theme directory path or a name resolved under ThemeRoot.
	Theme string
	// ThemeRoot holds named themes; ThemeRoot/default is the template fallback.
	ThemeRoot string
	// TemplatesDir is joined with a mapping's TemplateName to form the cache key.
	TemplatesDir string
	// MaxPageFailures aborts a render once exceeded. Zero means unlimited.
	MaxPageFailures int
	// Settings is snapshotted into every RenderEvent.
	Settings map[string]any
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used by the renderer and handed to the theme.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Renderer) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithProgress sets the progress sink.
func WithProgress(p Progress) Option {
	return func(r *Renderer) {
		if p != nil {
			r.progress = p
		}
	}
}

// Renderer orchestrates theme resolution, output preparation and the page loop.
type Renderer struct {
	renderMu sync.Mutex // serializes Render

	cfg      Config
	logger   *slog.Logger
	recorder metrics.Recorder
	progress Progress

	renderEvents *events.Dispatcher[*RenderEvent]
	pageEvents   *events.Dispatcher[*PageEvent]

	themeMu sync.Mutex
	theme   theme.Theme

	templates *TemplateCache

	paramsMu sync.Mutex
	params   []options.Descriptor
}

// New creates a Renderer. The theme is not resolved until first needed.
func New(cfg Config, opts ...Option) *Renderer {
	if cfg.TemplatesDir == "" {
		cfg.TemplatesDir = DefaultTemplatesDir
	}
	if cfg.Theme == "" {
		cfg.Theme = theme.DefaultName
	}
	r := &Renderer{
		cfg:          cfg,
		logger:       slog.Default(),
		recorder:     metrics.NoopRecorder{},
		renderEvents: events.NewDispatcher[*RenderEvent](),
		pageEvents:   events.NewDispatcher[*PageEvent](),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.progress == nil {
		r.progress = NewLogProgress(r.logger)
	}
	r.templates = NewTemplateCache(r.logger)
	return r
}

// RenderEvents is the dispatcher for BeginRender and EndRender.
func (r *Renderer) RenderEvents() *events.Dispatcher[*RenderEvent] { return r.renderEvents }

// PageEvents is the dispatcher for BeginPage and EndPage.
func (r *Renderer) PageEvents() *events.Dispatcher[*PageEvent] { return r.pageEvents }

// Logger implements theme.Host.
func (r *Renderer) Logger() *slog.Logger { return r.logger }

// Settings implements theme.Host. The returned map is a copy.
func (r *Renderer) Settings() map[string]any { return cloneSettings(r.cfg.Settings) }

// Config returns the renderer's configuration.
func (r *Renderer) Config() Config { return r.cfg }

// Templates exposes the template cache for invalidation.
func (r *Renderer) Templates() *TemplateCache { return r.templates }

// Theme returns the resolved theme, or nil before PrepareTheme succeeded.
func (r *Renderer) Theme() theme.Theme {
	r.themeMu.Lock()
	defer r.themeMu.Unlock()
	return r.theme
}

// PrepareTheme resolves the configured theme once. Later calls return the same instance.
func (r *Renderer) PrepareTheme() (theme.Theme, error) {
	r.themeMu.Lock()
	defer r.themeMu.Unlock()

	if r.theme != nil {
		return r.theme, nil
	}
	t, err := theme.Load(r, r.cfg.Theme, r.cfg.ThemeRoot)
	if err != nil {
		r.logger.Error("The theme could not be loaded",
			logfields.Theme(r.cfg.Theme), logfields.Path(r.cfg.ThemeRoot), logfields.Error(err))
		return nil, err
	}
	r.theme = t
	r.logger.Debug("Resolved theme", logfields.Theme(r.cfg.Theme), logfields.Path(t.BasePath()))
	return t, nil
}

// Template returns the compiled template for fileName, a path relative to the theme directory.
func (r *Renderer) Template(fileName string) (*Template, error) {
	t := r.Theme()
	if t == nil {
		r.logger.Error("Cannot resolve templates before theme is set", logfields.Template(fileName))
		return nil, ErrThemeNotResolved.WithContext("template", fileName)
	}
	fallback := ""
	if r.cfg.ThemeRoot != "" {
		fallback = theme.DefaultDir(r.cfg.ThemeRoot)
	}
	return r.templates.Get(fileName, t.BasePath(), fallback)
}

func (r *Renderer) templateKey(name string) string {
	return path.Join(r.cfg.TemplatesDir, name)
}

// AddParameters registers descriptors contributed by attached plugins.
func (r *Renderer) AddParameters(descs ...options.Descriptor) {
	r.paramsMu.Lock()
	defer r.paramsMu.Unlock()
	r.params = append(r.params, descs...)
}

// Parameters lists the renderer's own descriptors, then plugin descriptors, then the
// theme's. It resolves the theme if needed.
func (r *Renderer) Parameters() ([]options.Descriptor, error) {
	t, err := r.PrepareTheme()
	if err != nil {
		return nil, err
	}
	out := []options.Descriptor{
		{Name: "theme", Kind: options.KindString, Default: theme.DefaultName, Help: "Theme name or path to a theme directory"},
		{Name: "maxPageFailures", Kind: options.KindInt, Default: 0, Help: "Abort after this many failed pages (0 = never)"},
	}
	r.paramsMu.Lock()
	out = append(out, r.params...)
	r.paramsMu.Unlock()
	return append(out, theme.Parameters(t)...), nil
}
