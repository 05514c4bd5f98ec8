// Package project holds the minimal documentation model understood by the built-in theme.
//
// The renderer treats projects as opaque values; this model exists so the CLI can render a
// YAML-described project end to end.
package project

import (
	"fmt"
	"regexp"
	"strings"

	ferrors "git.home.luguber.info/inful/docrender/internal/foundation/errors"
	"git.home.luguber.info/inful/docrender/internal/textfile"
	"gopkg.in/yaml.v3"
)

// Project is the root of the documentation model.
type Project struct {
	Name      string     `yaml:"name"`
	Readme    string     `yaml:"readme,omitempty"` // markdown
	Documents []Document `yaml:"documents,omitempty"`
}

// Document is one documented item. Children are rendered as separate pages.
type Document struct {
	Name     string     `yaml:"name"`
	Slug     string     `yaml:"slug,omitempty"`
	Kind     string     `yaml:"kind,omitempty"`
	Summary  string     `yaml:"summary,omitempty"`
	Body     string     `yaml:"body,omitempty"` // markdown
	Children []Document `yaml:"children,omitempty"`
}

// DefaultKind is used for documents that do not declare a kind.
const DefaultKind = "page"

var slugUnsafe = regexp.MustCompile(`[^a-z0-9_-]+`)

// Slugify lowercases s and collapses everything outside [a-z0-9_-] to single dashes.
func Slugify(s string) string {
	slug := slugUnsafe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	return strings.Trim(slug, "-")
}

// URLSlug returns the explicit slug or one derived from the name.
func (d Document) URLSlug() string {
	if d.Slug != "" {
		return d.Slug
	}
	return Slugify(d.Name)
}

// KindOrDefault returns the document kind, falling back to DefaultKind.
func (d Document) KindOrDefault() string {
	if d.Kind == "" {
		return DefaultKind
	}
	return d.Kind
}

// Validate checks names, slug uniqueness per kind, and that explicit slugs and kinds stay
// inside their output directory.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ferrors.ValidationError("project name is required").Build()
	}
	seen := make(map[string]string)
	var walk func(prefix string, docs []Document) error
	walk = func(prefix string, docs []Document) error {
		for _, d := range docs {
			slug := d.URLSlug()
			if slug == "" {
				return ferrors.ValidationError("document name is required").
					WithContext("parent", prefix).
					Build()
			}
			if err := checkSegment("slug", d.Slug, d.Name); err != nil {
				return err
			}
			if d.Kind != "" && Slugify(d.Kind) != d.Kind {
				return ferrors.ValidationError("document kind may only contain lowercase letters, digits, '-' and '_'").
					WithContext("kind", d.Kind).
					WithContext("document", d.Name).
					Build()
			}
			full := slug
			if prefix != "" {
				full = prefix + "." + slug
			}
			key := d.KindOrDefault() + "/" + full
			if other, dup := seen[key]; dup {
				return ferrors.ValidationError("duplicate document slug").
					WithContext("slug", key).
					WithContext("first", other).
					WithContext("second", d.Name).
					Build()
			}
			seen[key] = d.Name
			if err := walk(full, d.Children); err != nil {
				return err
			}
		}
		return nil
	}
	return walk("", p.Documents)
}

// checkSegment rejects values that would not stay a single path segment.
func checkSegment(field, value, document string) error {
	if value == "" {
		return nil
	}
	if strings.ContainsAny(value, `/\`) || strings.Contains(value, "..") || strings.HasPrefix(value, ".") {
		return ferrors.ValidationError("document "+field+" must be a single path segment").
			WithContext(field, value).
			WithContext("document", document).
			Build()
	}
	return nil
}

// Parse decodes a YAML project description.
func Parse(data []byte) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, ferrors.ValidationError("invalid project description").WithCause(err).Build()
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads and parses a YAML project description, honouring byte-order marks.
func Load(path string) (*Project, error) {
	src, err := textfile.ReadFile(path)
	if err != nil {
		return nil, ferrors.ConfigError("could not read project file").
			WithContext("path", path).
			WithCause(err).
			Build()
	}
	p, err := Parse([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", path, err)
	}
	return p, nil
}
