package theme

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docrender/internal/options"
	"git.home.luguber.info/inful/docrender/internal/project"
	"golang.org/x/net/html"
)

// Generator is the value of the generator meta tag the default templates emit.
const Generator = "docrender"

// MarkerAsset is copied into every output by the default theme's assets.
const MarkerAsset = "assets/css/main.css"

const (
	indexTemplate    = "index.tmpl"
	documentTemplate = "document.tmpl"
)

func init() {
	MustRegister(DefaultName, func(host Host, basePath string) (Theme, error) {
		return NewDefaultTheme(host, basePath), nil
	})
}

// DefaultTheme maps a *project.Project to an index page plus one page per document.
type DefaultTheme struct {
	host     Host
	basePath string
}

// NewDefaultTheme binds the built-in theme to basePath.
func NewDefaultTheme(host Host, basePath string) *DefaultTheme {
	return &DefaultTheme{host: host, basePath: basePath}
}

func (t *DefaultTheme) BasePath() string { return t.basePath }

// URLs returns index.html first, then documents depth-first in declaration order.
// Children live next to their parent as <kind>s/<parent>.<child>.html.
func (t *DefaultTheme) URLs(model any) ([]URLMapping, error) {
	p, ok := model.(*project.Project)
	if !ok {
		return nil, fmt.Errorf("default theme cannot map project of type %T", model)
	}

	urls := []URLMapping{{URL: "index.html", Model: p, TemplateName: indexTemplate}}
	var walk func(prefix string, docs []project.Document)
	walk = func(prefix string, docs []project.Document) {
		for i := range docs {
			d := &docs[i]
			slug := d.URLSlug()
			if prefix != "" {
				slug = prefix + "." + slug
			}
			urls = append(urls, URLMapping{
				URL:          path.Join(d.KindOrDefault()+"s", slug+".html"),
				Model:        d,
				TemplateName: documentTemplate,
			})
			walk(slug, d.Children)
		}
	}
	walk("", p.Documents)
	return urls, nil
}

// IsOutputDirectory recognises a previous default-theme render: an index.html plus either
// the marker asset or the generator meta tag in that index.
func (t *DefaultTheme) IsOutputDirectory(dir string) bool {
	index := filepath.Join(dir, "index.html")
	if !isFile(index) {
		return false
	}
	if isFile(filepath.Join(dir, filepath.FromSlash(MarkerAsset))) {
		return true
	}
	return hasGeneratorMeta(index)
}

func (t *DefaultTheme) Parameters() []options.Descriptor {
	return []options.Descriptor{
		{Name: "title", Kind: options.KindString, Help: "Title shown in the page header"},
		{Name: "hideGenerator", Kind: options.KindBool, Default: false, Help: "Omit the generator link in the page footer"},
	}
}

func hasGeneratorMeta(file string) bool {
	// #nosec G304 -- file is index.html inside the configured output directory.
	f, err := os.Open(file)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	doc, err := html.Parse(f)
	if err != nil {
		return false
	}

	found := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode && n.Data == "meta" &&
			strings.EqualFold(getAttr(n, "name"), "generator") &&
			strings.HasPrefix(getAttr(n, "content"), Generator) {
			found = true
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
