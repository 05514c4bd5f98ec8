package theme

import (
	"errors"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/docrender/internal/foundation/errors"
	"git.home.luguber.info/inful/docrender/internal/textfile"
	"gopkg.in/yaml.v3"
)

// DefinitionFile is the optional file inside a theme directory selecting a registered factory.
const DefinitionFile = "theme.yaml"

// DefaultName is the directory name of the built-in theme under the theme root.
const DefaultName = "default"

var (
	ErrThemeNotFound     = ferrors.ThemeError("theme could not be found").Build()
	ErrInvalidDefinition = ferrors.ThemeError("invalid theme definition").Build()
	ErrUnknownFactory    = ferrors.ThemeError("theme definition names an unregistered factory").Build()
)

// Definition is the content of theme.yaml.
type Definition struct {
	Name        string `yaml:"name"`
	Factory     string `yaml:"factory"`
	Version     string `yaml:"version,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// ResolveDir finds the directory for name: name itself when it is an existing path,
// otherwise root/name.
func ResolveDir(name, root string) (string, error) {
	if name == "" {
		return "", ErrThemeNotFound.WithContext("theme", name)
	}
	if isDir(name) {
		return filepath.Abs(name)
	}
	candidate := filepath.Join(root, name)
	if isDir(candidate) {
		return filepath.Abs(candidate)
	}
	return "", ErrThemeNotFound.Wrap(nil, "theme", name, "root", root)
}

// DefaultDir is the directory of the built-in theme, used as template fallback.
func DefaultDir(root string) string {
	return filepath.Join(root, DefaultName)
}

// LoadDefinition reads dir/theme.yaml. The boolean is false when the file does not exist.
func LoadDefinition(dir string) (*Definition, bool, error) {
	path := filepath.Join(dir, DefinitionFile)
	src, err := textfile.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, ErrInvalidDefinition.Wrap(err, "path", path)
	}
	var def Definition
	if err := yaml.Unmarshal([]byte(src), &def); err != nil {
		return nil, true, ErrInvalidDefinition.Wrap(err, "path", path)
	}
	if def.Factory == "" {
		return nil, true, ErrInvalidDefinition.Wrap(errors.New("factory is required"), "path", path)
	}
	return &def, true, nil
}

// Load resolves name against root and instantiates the theme for host.
func Load(host Host, name, root string) (Theme, error) {
	dir, err := ResolveDir(name, root)
	if err != nil {
		return nil, err
	}
	def, ok, err := LoadDefinition(dir)
	if err != nil {
		return nil, err
	}
	if !ok {
		def = &Definition{Name: name, Factory: DefaultName}
	}
	factory, found := Lookup(def.Factory)
	if !found {
		return nil, ErrUnknownFactory.Wrap(nil, "factory", def.Factory, "theme", name, "path", dir)
	}
	t, err := factory(host, dir)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryTheme, "theme factory failed").
			Fatal().
			WithContext("factory", def.Factory).
			Build()
	}
	return t, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
