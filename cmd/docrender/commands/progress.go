package commands

import (
	"io"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/docrender/internal/render"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// barProgress draws a pterm progress bar, one increment per page.
type barProgress struct {
	out    io.Writer
	logger *slog.Logger
	bar    *pterm.ProgressbarPrinter
}

func (p *barProgress) Start(total int) {
	if total == 0 {
		return
	}
	bar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle("Rendering").
		WithRemoveWhenDone(true).
		WithWriter(p.out).
		Start()
	if err != nil {
		p.logger.Debug("Progress bar unavailable", "error", err)
		return
	}
	p.bar = bar
}

func (p *barProgress) Tick(url string) {
	if p.bar == nil {
		return
	}
	p.bar.UpdateTitle(url)
	p.bar.Increment()
}

func (p *barProgress) Done() {
	if p.bar == nil {
		return
	}
	_, _ = p.bar.Stop()
	p.bar = nil
}

// newProgress returns a progress bar on an interactive stderr and debug log lines otherwise.
func newProgress(logger *slog.Logger) render.Progress {
	fd := os.Stderr.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return render.NewLogProgress(logger)
	}
	return &barProgress{out: os.Stderr, logger: logger}
}
