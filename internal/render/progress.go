package render

import (
	"log/slog"

	"git.home.luguber.info/inful/docrender/internal/logfields"
)

// Progress receives one tick per page mapping of a render.
type Progress interface {
	Start(total int)
	Tick(url string)
	Done()
}

type logProgress struct {
	logger *slog.Logger
	total  int
	done   int
}

// NewLogProgress reports progress as debug log lines.
func NewLogProgress(logger *slog.Logger) Progress {
	return &logProgress{logger: logger}
}

func (p *logProgress) Start(total int) {
	p.total, p.done = total, 0
}

func (p *logProgress) Tick(url string) {
	p.done++
	p.logger.Debug("Rendering", logfields.URL(url), slog.Int("done", p.done), slog.Int("total", p.total))
}

func (p *logProgress) Done() {}
