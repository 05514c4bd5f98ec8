// Package assets copies the theme's static files into the output directory before any
// page is rendered.
package assets

import (
	"context"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/docrender/internal/foundation/errors"
	"git.home.luguber.info/inful/docrender/internal/logfields"
	"git.home.luguber.info/inful/docrender/internal/observability"
	"git.home.luguber.info/inful/docrender/internal/plugin"
	"git.home.luguber.info/inful/docrender/internal/render"
	"git.home.luguber.info/inful/docrender/internal/theme"
)

// Name is the plugin name used in configuration.
const Name = "assets"

// Dir is the directory copied from the theme and written to the output.
const Dir = "assets"

// Plugin copies <theme>/assets, falling back to the default theme's assets.
type Plugin struct {
	host plugin.Host
}

// New creates the assets plugin.
func New() *Plugin { return &Plugin{} }

func (p *Plugin) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        Name,
		Version:     "v1.0.0",
		Type:        plugin.PluginTypeAsset,
		Description: "Copies theme assets into the output directory",
	}
}

func (p *Plugin) Attach(host plugin.Host) error {
	p.host = host
	host.RenderEvents().On(render.BeginRender, p.onBeginRender)
	return nil
}

func (p *Plugin) onBeginRender(ctx context.Context, e *render.RenderEvent) error {
	log := observability.Logger(observability.WithPlugin(ctx, Name), p.host.Logger())
	src, ok := p.sourceDir()
	if !ok {
		log.Debug("Theme has no assets")
		return nil
	}
	dst := filepath.Join(e.OutputDirectory, Dir)
	n, err := copyTree(src, dst)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to copy theme assets").
			WithContext("source", src).
			WithContext("target", dst).
			Build()
	}
	log.Debug("Copied theme assets", logfields.Path(src), "files", n)
	return nil
}

func (p *Plugin) sourceDir() (string, bool) {
	t, err := p.host.PrepareTheme()
	if err == nil {
		if dir := filepath.Join(t.BasePath(), Dir); isDir(dir) {
			return dir, true
		}
	}
	if root := p.host.Config().ThemeRoot; root != "" {
		if dir := filepath.Join(theme.DefaultDir(root), Dir); isDir(dir) {
			return dir, true
		}
	}
	return "", false
}

func copyTree(src, dst string) (int, error) {
	files := 0
	err := filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			// #nosec G301 -- published static files
			return os.MkdirAll(target, 0o755)
		}
		// #nosec G304 -- file inside the resolved theme directory
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files++
		// #nosec G306 -- published static files
		return os.WriteFile(target, data, 0o644)
	})
	return files, err
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
