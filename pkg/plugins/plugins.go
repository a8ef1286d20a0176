package plugins

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// OwnPlugin identifies firekit's own plugin.
const OwnPlugin = "firekit/main"

var (
	// ErrPluginNotFound is returned when no descriptor matches the name.
	ErrPluginNotFound = errors.New("plugins: no plugin matches the name")
	// ErrNotRegistered is returned when firekit's own plugin is missing.
	ErrNotRegistered = errors.New("plugins: firekit plugin is not registered")
)

// Descriptor is anything with a plugin path.
type Descriptor interface {
	Source() string
}

// Path is a bare plugin path.
type Path string

// Source implements Descriptor.
func (p Path) Source() string { return string(p) }

// Ref is a plugin descriptor with a path field.
// In YAML it accepts either a scalar path or a mapping.
type Ref struct {
	Src     string         `yaml:"src"`
	Options map[string]any `yaml:"options,omitempty"`
}

// Source implements Descriptor.
func (r Ref) Source() string { return r.Src }

// UnmarshalYAML accepts "path" as well as {src: path}.
func (r *Ref) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.Src = node.Value
		return nil
	}

	type plain Ref
	var p plain
	if err := node.Decode(&p); err != nil {
		return fmt.Errorf("plugins: decode descriptor: %w", err)
	}
	*r = Ref(p)
	return nil
}

// Index returns the position of the first descriptor whose path contains
// name, or -1.
func Index[D Descriptor](list []D, name string) int {
	for i, d := range list {
		if strings.Contains(d.Source(), name) {
			return i
		}
	}
	return -1
}

// MoveAfterFirekit moves the first descriptor whose path contains name to
// the position directly after firekit's own plugin. The relative order of all
// other descriptors is preserved. The slice is modified in place.
func MoveAfterFirekit[D Descriptor](list []D, name string) error {
	return MoveAfter(list, name, OwnPlugin)
}

// MoveAfter is MoveAfterFirekit with a custom anchor.
func MoveAfter[D Descriptor](list []D, name, anchor string) error {
	from := Index(list, name)
	if from < 0 {
		return fmt.Errorf("%w: %q", ErrPluginNotFound, name)
	}
	own := Index(list, anchor)
	if own < 0 {
		return fmt.Errorf("%w: %q", ErrNotRegistered, anchor)
	}
	if from == own {
		return nil
	}

	// Destination is computed after removal, so it always lies within the slice.
	to := own + 1
	if from < own {
		to = own
	}

	moved := list[from]
	switch {
	case from < to:
		copy(list[from:to], list[from+1:to+1])
	case from > to:
		copy(list[to+1:from+1], list[to:from])
	}
	list[to] = moved
	return nil
}
