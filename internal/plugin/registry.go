package plugin

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"git.home.luguber.info/inful/docrender/internal/logfields"
)

// Registry manages plugin registration and discovery.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]map[string]Plugin // map[name]map[version]Plugin
}

// NewRegistry creates a new empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]map[string]Plugin),
	}
}

// Register adds a plugin to the registry.
// Returns an error if a plugin with the same name and version already exists.
func (r *Registry) Register(plugin Plugin) error {
	if plugin == nil {
		return errors.New("cannot register nil plugin")
	}

	metadata := plugin.Metadata()
	if err := metadata.Validate(); err != nil {
		return fmt.Errorf("invalid plugin metadata: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Initialize version map if needed
	if r.plugins[metadata.Name] == nil {
		r.plugins[metadata.Name] = make(map[string]Plugin)
	}

	// Check for duplicate
	if _, exists := r.plugins[metadata.Name][metadata.Version]; exists {
		return fmt.Errorf("plugin %s@%s already registered", metadata.Name, metadata.Version)
	}

	r.plugins[metadata.Name][metadata.Version] = plugin
	return nil
}

// Get retrieves a specific plugin by name and version.
// Returns an error if the plugin is not found.
func (r *Registry) Get(name, version string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions, ok := r.plugins[name]
	if !ok {
		return nil, fmt.Errorf("plugin %s not found", name)
	}

	plugin, ok := versions[version]
	if !ok {
		return nil, fmt.Errorf("plugin %s@%s not found", name, version)
	}

	return plugin, nil
}

// GetLatest retrieves the highest registered version of a plugin by name.
func (r *Registry) GetLatest(name string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions, ok := r.plugins[name]
	if !ok || len(versions) == 0 {
		return nil, fmt.Errorf("plugin %s not found", name)
	}

	var latest string
	for v := range versions {
		if latest == "" || compareVersions(v, latest) > 0 {
			latest = v
		}
	}
	return versions[latest], nil
}

// List returns all registered plugins ordered by name, then version.
func (r *Registry) List() []Plugin {
	return r.filter(func(Plugin) bool { return true })
}

// ListByType returns all plugins of a specific type ordered by name, then version.
func (r *Registry) ListByType(pluginType PluginType) []Plugin {
	return r.filter(func(p Plugin) bool { return p.Metadata().Type == pluginType })
}

func (r *Registry) filter(keep func(Plugin) bool) []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Plugin
	for _, versions := range r.plugins {
		for _, plugin := range versions {
			if keep(plugin) {
				result = append(result, plugin)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].Metadata(), result[j].Metadata()
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return compareVersions(a.Version, b.Version) < 0
	})
	return result
}

// ListVersions returns all registered versions of a plugin.
func (r *Registry) ListVersions(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions, ok := r.plugins[name]
	if !ok {
		return nil
	}

	result := make([]string, 0, len(versions))
	for version := range versions {
		result = append(result, version)
	}
	sort.Slice(result, func(i, j int) bool { return compareVersions(result[i], result[j]) < 0 })

	return result
}

// Names returns the registered plugin names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has checks if a plugin with the given name exists (any version).
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.plugins[name]
	return ok
}

// Unregister removes a plugin from the registry.
func (r *Registry) Unregister(name, version string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	versions, ok := r.plugins[name]
	if !ok {
		return fmt.Errorf("plugin %s not found", name)
	}

	if _, ok := versions[version]; !ok {
		return fmt.Errorf("plugin %s@%s not found", name, version)
	}

	delete(versions, version)

	// Clean up empty version map
	if len(versions) == 0 {
		delete(r.plugins, name)
	}

	return nil
}

// Count returns the total number of registered plugins (all versions).
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, versions := range r.plugins {
		count += len(versions)
	}

	return count
}

// AttachAll attaches the latest version of each named plugin to host, in the given order.
// With no names every registered plugin is attached in name order. Plugins providing
// parameters have them registered on host. The attached plugins are returned so the
// caller can close them.
func (r *Registry) AttachAll(host Host, names ...string) ([]Plugin, error) {
	var selected []Plugin
	if len(names) == 0 {
		seen := map[string]bool{}
		for _, p := range r.List() {
			name := p.Metadata().Name
			if seen[name] {
				continue
			}
			seen[name] = true
			latest, err := r.GetLatest(name)
			if err != nil {
				return nil, err
			}
			selected = append(selected, latest)
		}
	} else {
		for _, name := range names {
			if !r.Has(name) {
				return nil, NewPluginError(name, "lookup",
					fmt.Errorf("not registered (available: %s)", strings.Join(r.Names(), ", ")))
			}
			p, err := r.GetLatest(name)
			if err != nil {
				return nil, NewPluginError(name, "lookup", err)
			}
			selected = append(selected, p)
		}
	}

	attached := make([]Plugin, 0, len(selected))
	for _, p := range selected {
		meta := p.Metadata()
		if err := p.Attach(host); err != nil {
			_ = CloseAll(attached)
			return nil, NewPluginError(meta.Name, "attach", err)
		}
		if pp, ok := p.(ParameterProvider); ok {
			host.AddParameters(pp.Parameters()...)
		}
		host.Logger().Debug("Attached plugin", logfields.Plugin(meta.Name), "version", meta.Version)
		attached = append(attached, p)
	}
	return attached, nil
}

// CloseAll closes every plugin implementing Closer and joins their errors.
func CloseAll(plugins []Plugin) error {
	var errs []error
	for _, p := range plugins {
		if c, ok := p.(Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, NewPluginError(p.Metadata().Name, "close", err))
			}
		}
	}
	return errors.Join(errs...)
}

// compareVersions orders dotted numeric versions with an optional "v" prefix.
// Non-numeric parts compare lexically.
func compareVersions(a, b string) int {
	as := strings.Split(strings.TrimPrefix(a, "v"), ".")
	bs := strings.Split(strings.TrimPrefix(b, "v"), ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var x, y string
		if i < len(as) {
			x = as[i]
		}
		if i < len(bs) {
			y = bs[i]
		}
		xn, xerr := strconv.Atoi(x)
		yn, yerr := strconv.Atoi(y)
		switch {
		case xerr == nil && yerr == nil && xn != yn:
			if xn < yn {
				return -1
			}
			return 1
		case (xerr != nil || yerr != nil) && x != y:
			return strings.Compare(x, y)
		}
	}
	return 0
}
