package render

import (
	"errors"
	htmltemplate "html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	texttemplate "text/template"

	ferrors "git.home.luguber.info/inful/docrender/internal/foundation/errors"
	"git.home.luguber.info/inful/docrender/internal/logfields"
	"git.home.luguber.info/inful/docrender/internal/markup"
	"git.home.luguber.info/inful/docrender/internal/textfile"
)

var (
	ErrThemeNotResolved = ferrors.TemplateError("cannot resolve templates before the theme is set").Build()
	ErrTemplateNotFound = ferrors.NotFoundError("template not found").Build()
	ErrTemplateCompile  = ferrors.TemplateError("template could not be compiled").Build()
	ErrTemplateExecute  = ferrors.TemplateError("template execution failed").Build()
)

// PlainTextSuffix marks templates compiled without HTML escaping.
const PlainTextSuffix = ".txt.tmpl"

type executor interface {
	Execute(w io.Writer, data any) error
}

// Template is a compiled page template. Templates are HTML-escaping unless their file
// name ends in PlainTextSuffix.
type Template struct {
	name      string
	source    string
	plainText bool
	tmpl      executor
}

// Name is the cache key the template was compiled under.
func (t *Template) Name() string { return t.name }

// Source is the file the template was read from.
func (t *Template) Source() string { return t.source }

// PlainText reports whether output is left unescaped.
func (t *Template) PlainText() bool { return t.plainText }

// Execute renders the template against page.
func (t *Template) Execute(page *PageEvent) (string, error) {
	var sb strings.Builder
	if err := t.tmpl.Execute(&sb, page); err != nil {
		return "", ErrTemplateExecute.Wrap(err, "template", t.name, "url", page.URL)
	}
	return sb.String(), nil
}

// CompileTemplate compiles src under name. Whitespace and indentation in src are kept verbatim.
func CompileTemplate(name, src string) (*Template, error) {
	base := filepath.Base(name)
	t := &Template{name: name, plainText: strings.HasSuffix(name, PlainTextSuffix)}
	var err error
	if t.plainText {
		t.tmpl, err = texttemplate.New(base).Funcs(texttemplate.FuncMap(funcMap())).Parse(src)
	} else {
		t.tmpl, err = htmltemplate.New(base).Funcs(htmltemplate.FuncMap(funcMap())).Parse(src)
	}
	if err != nil {
		return nil, ErrTemplateCompile.Wrap(err, "template", name)
	}
	return t, nil
}

func funcMap() map[string]any {
	return map[string]any{
		"markdown":    markdown,
		"relativeURL": relativeURL,
	}
}

// markdown marks the converted HTML as safe; the converter drops raw HTML from its input.
func markdown(src string) (htmltemplate.HTML, error) {
	out, err := markup.ToHTML(src)
	// #nosec G203 -- goldmark output without raw HTML passthrough
	return htmltemplate.HTML(out), err
}

// TemplateCache compiles templates on first use and keeps them until invalidated.
// Lookups try the theme directory first, then the fallback directory.
type TemplateCache struct {
	mu        sync.Mutex
	templates map[string]*Template
	logger    *slog.Logger
}

// NewTemplateCache creates an empty cache.
func NewTemplateCache(logger *slog.Logger) *TemplateCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &TemplateCache{templates: make(map[string]*Template), logger: logger}
}

// Get returns the template for fileName, compiling it from themeDir or fallbackDir on a miss.
func (c *TemplateCache) Get(fileName, themeDir, fallbackDir string) (*Template, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.templates[fileName]; ok {
		return t, nil
	}

	source := filepath.Join(themeDir, filepath.FromSlash(fileName))
	if !exists(source) {
		source = filepath.Join(fallbackDir, filepath.FromSlash(fileName))
		if fallbackDir == "" || !exists(source) {
			c.logger.Error("Cannot find template", logfields.Template(fileName))
			return nil, ErrTemplateNotFound.Wrap(nil, "template", fileName, "theme_dir", themeDir)
		}
	}

	src, err := textfile.ReadFile(source)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read template").
			WithContext("file", source).
			Build()
	}
	t, err := CompileTemplate(fileName, src)
	if err != nil {
		return nil, err
	}
	t.source = source
	c.templates[fileName] = t
	c.logger.Debug("Compiled template", logfields.Template(fileName), logfields.File(source))
	return t, nil
}

// Invalidate drops one entry; the next Get recompiles it.
func (c *TemplateCache) Invalidate(fileName string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.templates[fileName]
	delete(c.templates, fileName)
	return ok
}

// InvalidateSource drops every entry compiled from the given file.
func (c *TemplateCache) InvalidateSource(source string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, t := range c.templates {
		if t.source == source {
			delete(c.templates, k)
			n++
		}
	}
	return n
}

// Reset empties the cache.
func (c *TemplateCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.templates = make(map[string]*Template)
}

// Len returns the number of compiled templates.
func (c *TemplateCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.templates)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}
