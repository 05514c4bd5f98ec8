package theme

import (
	"sort"
	"sync"

	ferrors "git.home.luguber.info/inful/docrender/internal/foundation/errors"
)

// Factory constructs a Theme bound to host and basePath.
type Factory func(host Host, basePath string) (Theme, error)

var (
	regMu sync.RWMutex
	reg   = map[string]Factory{}
)

// ErrDuplicateFactory is returned when a factory name is registered twice.
var ErrDuplicateFactory = ferrors.ThemeError("theme factory already registered").Build()

// Register adds a named factory. Themes call it from init().
func Register(name string, f Factory) error {
	if name == "" || f == nil {
		return ferrors.ValidationError("theme factory requires a name and a constructor").Build()
	}
	regMu.Lock()
	defer regMu.Unlock()
	if _, exists := reg[name]; exists {
		return ErrDuplicateFactory.WithContext("factory", name)
	}
	reg[name] = f
	return nil
}

// MustRegister is Register for init() blocks.
func MustRegister(name string, f Factory) {
	if err := Register(name, f); err != nil {
		panic(err)
	}
}

// Lookup retrieves a factory by name.
func Lookup(name string) (Factory, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	f, ok := reg[name]
	return f, ok
}

// Factories lists registered factory names in sorted order.
func Factories() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
