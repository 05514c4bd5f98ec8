// Package observability carries render-scoped logging context through context.Context so
// listeners can log with the identifiers of the render and page they are handling.
package observability

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/docrender/internal/logfields"
)

// LogContext holds the identifiers attached to log lines.
type LogContext struct {
	RenderID string
	URL      string
	Plugin   string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithRenderID adds a render ID to the context.
func WithRenderID(ctx context.Context, renderID string) context.Context {
	lc := GetContext(ctx)
	lc.RenderID = renderID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithURL adds the page URL being rendered to the context.
func WithURL(ctx context.Context, url string) context.Context {
	lc := GetContext(ctx)
	lc.URL = url
	return context.WithValue(ctx, logContextKey, lc)
}

// WithPlugin adds the name of the plugin handling an event.
func WithPlugin(ctx context.Context, name string) context.Context {
	lc := GetContext(ctx)
	lc.Plugin = name
	return context.WithValue(ctx, logContextKey, lc)
}

// GetContext returns the log context, or the zero value when none was set.
func GetContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

// Attrs returns the non-empty identifiers as slog attributes.
func Attrs(ctx context.Context) []any {
	lc := GetContext(ctx)
	var attrs []any
	if lc.RenderID != "" {
		attrs = append(attrs, logfields.RenderID(lc.RenderID))
	}
	if lc.URL != "" {
		attrs = append(attrs, logfields.URL(lc.URL))
	}
	if lc.Plugin != "" {
		attrs = append(attrs, logfields.Plugin(lc.Plugin))
	}
	return attrs
}

// Logger returns base with the context identifiers attached.
func Logger(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	attrs := Attrs(ctx)
	if len(attrs) == 0 {
		return base
	}
	return base.With(attrs...)
}
