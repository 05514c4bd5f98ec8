// Package theme defines the contract a rendering theme satisfies and resolves a configured
// theme name to a Theme instance.
//
// Themes are trusted code. A theme directory selects its implementation through an optional
// theme.yaml naming a factory registered in this package; directories without one get the
// built-in DefaultTheme.
package theme

import (
	"log/slog"

	"git.home.luguber.info/inful/docrender/internal/options"
)

// URLMapping ties one output path to the model it renders and the template that renders it.
type URLMapping struct {
	URL          string
	Model        any
	TemplateName string
}

// Theme supplies layout and URL strategy for one renderer.
type Theme interface {
	// BasePath is the resolved theme directory; templates are looked up beneath it.
	BasePath() string

	// URLs maps a project to the ordered pages that make up its documentation.
	URLs(project any) ([]URLMapping, error)

	// IsOutputDirectory reports whether path holds output previously generated by this
	// theme. It gates destructive cleaning only.
	IsOutputDirectory(path string) bool
}

// ParameterProvider is implemented by themes that contribute options.
type ParameterProvider interface {
	Parameters() []options.Descriptor
}

// Host is the part of the renderer a theme may use.
type Host interface {
	Logger() *slog.Logger
	Settings() map[string]any
}

// Parameters returns t's option descriptors, or nil when it has none.
func Parameters(t Theme) []options.Descriptor {
	if p, ok := t.(ParameterProvider); ok {
		return p.Parameters()
	}
	return nil
}
