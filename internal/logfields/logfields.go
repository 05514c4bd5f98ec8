package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRenderID   = "render_id"
	KeyURL        = "url"
	KeyTemplate   = "template"
	KeyTheme      = "theme"
	KeyOutputDir  = "output_dir"
	KeyFile       = "file"
	KeyPath       = "path"
	KeyEvent      = "event"
	KeyPlugin     = "plugin"
	KeyPages      = "pages"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RenderID(id string) slog.Attr    { return slog.String(KeyRenderID, id) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Template(name string) slog.Attr  { return slog.String(KeyTemplate, name) }
func Theme(name string) slog.Attr     { return slog.String(KeyTheme, name) }
func OutputDir(dir string) slog.Attr  { return slog.String(KeyOutputDir, dir) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Event(name string) slog.Attr     { return slog.String(KeyEvent, name) }
func Plugin(name string) slog.Attr    { return slog.String(KeyPlugin, name) }
func Pages(n int) slog.Attr           { return slog.Int(KeyPages, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
