package project

import (
	"os"
	"path/filepath"
	"testing"

	ferrors "git.home.luguber.info/inful/docrender/internal/foundation/errors"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Getting Started":  "getting-started",
		"  Renderer.go  ":  "renderer-go",
		"already_slugged":  "already_slugged",
		"Über & Co":        "ber-co",
		"":                 "",
	}
	for in, want := range tests {
		require.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestParse(t *testing.T) {
	src := `
name: Example
readme: "# Hello"
documents:
  - name: Renderer
    kind: type
    summary: Drives rendering
    children:
      - name: Render
  - name: Install Guide
`
	p, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Equal(t, "Example", p.Name)
	require.Len(t, p.Documents, 2)
	require.Equal(t, "type", p.Documents[0].KindOrDefault())
	require.Equal(t, DefaultKind, p.Documents[1].KindOrDefault())
	require.Equal(t, "install-guide", p.Documents[1].URLSlug())
	require.Equal(t, "render", p.Documents[0].Children[0].URLSlug())
}

func TestValidate(t *testing.T) {
	t.Run("missing project name", func(t *testing.T) {
		err := (&Project{}).Validate()
		require.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	})

	t.Run("duplicate slug within kind", func(t *testing.T) {
		p := &Project{Name: "x", Documents: []Document{{Name: "A"}, {Name: "a"}}}
		require.Error(t, p.Validate())
	})

	t.Run("same slug in different kinds", func(t *testing.T) {
		p := &Project{Name: "x", Documents: []Document{{Name: "A", Kind: "type"}, {Name: "A"}}}
		require.NoError(t, p.Validate())
	})

	t.Run("unnamed document", func(t *testing.T) {
		p := &Project{Name: "x", Documents: []Document{{Summary: "no name"}}}
		require.Error(t, p.Validate())
	})
	for _, slug := range []string{"../../escaped", "a/b", `a\b`, "..", ".hidden", "x..y"} {
		t.Run("slug "+slug+" is rejected", func(t *testing.T) {
			p := &Project{Name: "x", Documents: []Document{{Name: "A", Children: []Document{{Name: "B", Slug: slug}}}}}
			err := p.Validate()
			require.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
		})
	}

	for _, kind := range []string{"../x", "Type", "a/b"} {
		t.Run("kind "+kind+" is rejected", func(t *testing.T) {
			p := &Project{Name: "x", Documents: []Document{{Name: "A", Kind: kind}}}
			require.True(t, ferrors.HasCategory(p.Validate(), ferrors.CategoryValidation))
		})
	}

	t.Run("explicit safe slug", func(t *testing.T) {
		p := &Project{Name: "x", Documents: []Document{{Name: "A", Slug: "custom_slug-1"}}}
		require.NoError(t, p.Validate())
	})
}

func TestParse_RejectsEscapingSlug(t *testing.T) {
	_, err := Parse([]byte("name: x\ndocuments:\n  - name: Evil\n    slug: ../../escaped\n"))
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name: Marked\n")...)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Marked", p.Name)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}
