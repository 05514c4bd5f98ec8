// Package options describes user-facing parameters contributed by the renderer, its plugins
// and the active theme.
package options

import "fmt"

// Kind is the value type of a parameter.
type Kind string

const (
	KindString Kind = "string"
	KindBool   Kind = "bool"
	KindInt    Kind = "int"
	KindMap    Kind = "map"
)

// Descriptor declares one parameter.
type Descriptor struct {
	Name    string `json:"name"`
	Help    string `json:"help"`
	Kind    Kind   `json:"kind"`
	Default any    `json:"default,omitempty"`
}

func (d Descriptor) String() string {
	if d.Default == nil {
		return fmt.Sprintf("%s (%s): %s", d.Name, d.Kind, d.Help)
	}
	return fmt.Sprintf("%s (%s, default %v): %s", d.Name, d.Kind, d.Default, d.Help)
}
