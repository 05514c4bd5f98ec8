package plugin

import (
	"log/slog"

	"git.home.luguber.info/inful/docrender/internal/events"
	"git.home.luguber.info/inful/docrender/internal/options"
	"git.home.luguber.info/inful/docrender/internal/render"
	"git.home.luguber.info/inful/docrender/internal/theme"
)

// Host is the part of the renderer plugins attach to. *render.Renderer implements it.
type Host interface {
	RenderEvents() *events.Dispatcher[*render.RenderEvent]
	PageEvents() *events.Dispatcher[*render.PageEvent]
	Logger() *slog.Logger
	Config() render.Config
	PrepareTheme() (theme.Theme, error)
	AddParameters(descs ...options.Descriptor)
}

var _ Host = (*render.Renderer)(nil)
