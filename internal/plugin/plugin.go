// Package plugin provides the plugin system that hooks into the renderer's lifecycle.
// Plugins subscribe to render and page events when attached and may contribute
// parameters shown by the options command.
package plugin

import (
	"errors"
	"fmt"

	"git.home.luguber.info/inful/docrender/internal/options"
)

// Plugin represents a renderer plugin with metadata and an attach hook.
type Plugin interface {
	// Metadata returns the plugin's metadata (name, version, type).
	Metadata() PluginMetadata

	// Attach registers the plugin's listeners on host. It is called once per renderer.
	Attach(host Host) error
}

// ParameterProvider is implemented by plugins that contribute option descriptors.
type ParameterProvider interface {
	Parameters() []options.Descriptor
}

// Closer is implemented by plugins holding resources past a render.
type Closer interface {
	Close() error
}

// PluginMetadata describes a plugin's identity.
type PluginMetadata struct {
	// Name is the unique plugin identifier (e.g., "assets", "journal").
	Name string

	// Version is the semantic version (e.g., "v1.0.0").
	Version string

	// Type identifies the plugin category.
	Type PluginType

	// Description provides a human-readable summary of the plugin's purpose.
	Description string
}

// String returns a human-readable representation of the plugin metadata.
func (m PluginMetadata) String() string {
	return fmt.Sprintf("%s@%s (%s)", m.Name, m.Version, m.Type)
}

// Validate checks if the plugin metadata is valid.
func (m PluginMetadata) Validate() error {
	if m.Name == "" {
		return errors.New("plugin name is required")
	}
	if m.Version == "" {
		return errors.New("plugin version is required")
	}
	if !m.Type.IsValid() {
		return fmt.Errorf("invalid plugin type: %s", m.Type)
	}
	return nil
}
