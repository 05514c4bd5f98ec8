package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docrender/internal/config"
	ferrors "git.home.luguber.info/inful/docrender/internal/foundation/errors"
	"git.home.luguber.info/inful/docrender/internal/logfields"
	"git.home.luguber.info/inful/docrender/internal/metrics"
	"git.home.luguber.info/inful/docrender/internal/plugin"
	"git.home.luguber.info/inful/docrender/internal/plugin/assets"
	"git.home.luguber.info/inful/docrender/internal/plugin/journal"
	"git.home.luguber.info/inful/docrender/internal/plugin/searchindex"
	"git.home.luguber.info/inful/docrender/internal/project"
	"git.home.luguber.info/inful/docrender/internal/render"
	prom "github.com/prometheus/client_golang/prometheus"
)

// session wires one renderer with its plugins and metrics for a configuration.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	renderer *render.Renderer
	plugins  []plugin.Plugin
	journal  *journal.Plugin
	registry *prom.Registry
}

func newSession(cfg *config.Config, logger *slog.Logger, progress render.Progress) (*session, error) {
	reg := prom.NewRegistry()
	opts := []render.Option{
		render.WithLogger(logger),
		render.WithRecorder(metrics.NewPrometheusRecorder(reg)),
	}
	if progress != nil {
		opts = append(opts, render.WithProgress(progress))
	}
	r := render.New(render.Config{
		Theme:           cfg.Theme,
		ThemeRoot:       cfg.ThemeRoot,
		TemplatesDir:    cfg.Render.TemplatesDir,
		MaxPageFailures: cfg.Render.MaxPageFailures,
		Settings:        cfg.Settings,
	}, opts...)

	s := &session{cfg: cfg, logger: logger, renderer: r, registry: reg}
	plugins, err := s.pluginRegistry()
	if err != nil {
		return nil, err
	}
	if len(cfg.Plugins) == 0 {
		return s, nil
	}
	attached, err := plugins.AttachAll(r, cfg.Plugins...)
	if err != nil {
		if s.journal != nil {
			_ = s.journal.Close()
		}
		return nil, err
	}
	s.plugins = attached
	return s, nil
}

// pluginRegistry registers the built-in plugins. The journal database is only opened
// when the journal is enabled.
func (s *session) pluginRegistry() (*plugin.Registry, error) {
	reg := plugin.NewRegistry()
	if err := reg.Register(assets.New()); err != nil {
		return nil, err
	}
	if err := reg.Register(searchindex.New()); err != nil {
		return nil, err
	}
	if s.cfg.HasPlugin(config.PluginJournal) {
		j, err := journal.Open(s.cfg.Journal.Path)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(j); err != nil {
			_ = j.Close()
			return nil, err
		}
		s.journal = j
	}
	return reg, nil
}

// renderOnce loads the project and renders it into the configured output directory.
func (s *session) renderOnce(ctx context.Context) (*render.Report, error) {
	proj, err := project.Load(s.cfg.Project)
	if err != nil {
		return nil, err
	}
	report, renderErr := s.renderer.Render(ctx, proj, s.cfg.Output.Directory)
	if s.journal != nil {
		if err := s.journal.Finish(ctx, report, renderErr); err != nil {
			s.logger.Warn("Journal could not record render outcome", logfields.Plugin(journal.Name), logfields.Error(err))
		}
	}
	s.writeMetrics()
	if renderErr != nil {
		return report, renderErr
	}
	for _, f := range report.Failed {
		s.logger.Warn("Page failed", logfields.URL(f.URL), "kind", string(f.Kind), logfields.Error(f.Err))
	}
	return report, nil
}

func (s *session) writeMetrics() {
	path := s.cfg.Metrics.Textfile
	if path == "" {
		return
	}
	// #nosec G301 -- metrics directory
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err == nil {
		err = metrics.WriteTextfile(path, s.registry)
	}
	if err != nil {
		s.logger.Warn("Failed to write metrics textfile", logfields.File(path), logfields.Error(err))
	}
}

func (s *session) Close() error {
	return plugin.CloseAll(s.plugins)
}

// reportError turns a partially failed render into a classified error so the CLI exits
// non-zero while still writing the pages that succeeded.
func reportError(report *render.Report) error {
	if report == nil || len(report.Failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(report.Failed))
	for _, f := range report.Failed {
		errs = append(errs, f.Err)
	}
	return ferrors.WrapError(errors.Join(errs...), ferrors.CategoryRender, "some pages failed to render").
		WithContext("failed", len(report.Failed)).
		WithContext("written", len(report.Written)).
		Build()
}
