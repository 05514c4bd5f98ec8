package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/docrender/internal/logfields"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last change before a rebuild runs.
const DefaultDebounce = 300 * time.Millisecond

// Watcher re-renders when the theme directory or one of the extra files changes.
// Changed templates are evicted from the renderer's cache before the rebuild.
type Watcher struct {
	renderer *Renderer
	rebuild  func(ctx context.Context) error
	files    map[string]struct{}
	debounce time.Duration
}

// NewWatcher creates a watcher for r's theme. files are extra inputs (project, config)
// that trigger a rebuild without touching the template cache.
func NewWatcher(r *Renderer, rebuild func(ctx context.Context) error, files ...string) *Watcher {
	w := &Watcher{renderer: r, rebuild: rebuild, files: make(map[string]struct{}), debounce: DefaultDebounce}
	for _, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			w.files[abs] = struct{}{}
		}
	}
	return w
}

// SetDebounce overrides DefaultDebounce.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Run blocks until ctx is done. Rebuild errors are logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	t, err := w.renderer.PrepareTheme()
	if err != nil {
		return err
	}
	themeDir := t.BasePath()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := addDirsRecursive(watcher, themeDir); err != nil {
		return err
	}
	for f := range w.files {
		if err := watcher.Add(filepath.Dir(f)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", f, err)
		}
	}

	log := w.renderer.logger
	log.Info("Watching for changes", logfields.Path(themeDir), "files", len(w.files))

	rebuildReq, trigger, stop := newDebouncer(w.debounce)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if w.handle(watcher, themeDir, ev) {
				trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watcher error", logfields.Error(err))
		case <-rebuildReq:
			if err := w.rebuild(ctx); err != nil {
				log.Error("Rebuild failed", logfields.Error(err))
			}
		}
	}
}

// handle reacts to one event and reports whether it should trigger a rebuild.
func (w *Watcher) handle(watcher *fsnotify.Watcher, themeDir string, ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod || shouldIgnore(ev.Name) {
		return false
	}
	log := w.renderer.logger
	if _, ok := w.files[ev.Name]; ok {
		log.Debug("Input changed", logfields.File(ev.Name), "op", ev.Op.String())
		return true
	}
	if !isWithin(themeDir, ev.Name) {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(watcher, ev.Name)
		}
	}

	cache := w.renderer.templates
	templatesDir := filepath.Join(themeDir, filepath.FromSlash(w.renderer.cfg.TemplatesDir))
	if isWithin(templatesDir, ev.Name) && cache.InvalidateSource(ev.Name) > 0 {
		log.Debug("Template changed", logfields.File(ev.Name), "op", ev.Op.String())
	} else {
		cache.Reset()
		log.Debug("Theme file changed", logfields.File(ev.Name), "op", ev.Op.String())
	}
	return true
}

func newDebouncer(d time.Duration) (<-chan struct{}, func(), func()) {
	var mu sync.Mutex
	var timer *time.Timer
	req := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(d, func() {
			select {
			case req <- struct{}{}:
			default:
			}
		})
	}
	stop := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}
	return req, trigger, stop
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
		}
		return nil
	})
}

func shouldIgnore(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".tmp")
}

func isWithin(dir, name string) bool {
	rel, err := filepath.Rel(dir, name)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
