package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/docrender/internal/logfields"
	"git.home.luguber.info/inful/docrender/internal/metrics"
	"git.home.luguber.info/inful/docrender/internal/render"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Output   string        `short:"o" help:"Override output.directory" type:"path"`
	Project  string        `short:"p" help:"Override the project file" type:"path"`
	Theme    string        `short:"t" help:"Override the theme name or directory"`
	Debounce time.Duration `help:"Quiet period before re-rendering" default:"300ms"`
}

func (c *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	applyOverrides(cfg, c.Output, c.Project, c.Theme)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// log lines instead of a bar: rebuilds interleave with watcher output
	s, err := newSession(cfg, g.Logger, render.NewLogProgress(g.Logger))
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if cfg.Metrics.Listen != "" {
		srv := &http.Server{
			Addr:              cfg.Metrics.Listen,
			Handler:           metricsMux(s),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			g.Logger.Info("Serving metrics", "addr", cfg.Metrics.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				g.Logger.Error("Metrics server failed", logfields.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// a failed render keeps the watcher alive so the next edit can fix it
	rebuild := func(ctx context.Context) error {
		report, err := s.renderOnce(ctx)
		if err == nil {
			err = reportError(report)
		}
		return err
	}
	if err := rebuild(ctx); err != nil {
		g.Logger.Error("Initial render failed", logfields.Error(err))
	}

	w := render.NewWatcher(s.renderer, rebuild, cfg.Project)
	w.SetDebounce(c.Debounce)
	return w.Run(ctx)
}

func metricsMux(s *session) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(s.registry))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}
