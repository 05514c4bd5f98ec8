package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	Output  string `short:"o" help:"Override output.directory" type:"path"`
	Project string `short:"p" help:"Override the project file" type:"path"`
	Theme   string `short:"t" help:"Override the theme name or directory"`
}

func (c *RenderCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	applyOverrides(cfg, c.Output, c.Project, c.Theme)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := newSession(cfg, g.Logger, newProgress(g.Logger))
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	report, err := s.renderOnce(ctx)
	if err != nil {
		return err
	}
	switch {
	case report.Cancelled:
		_, _ = fmt.Fprintln(g.stdout(), "Render cancelled")
	default:
		_, _ = fmt.Fprintf(g.stdout(), "Rendered %d pages to %s (%d skipped, %d failed)\n",
			len(report.Written), cfg.Output.Directory, len(report.Skipped), len(report.Failed))
	}
	return reportError(report)
}
