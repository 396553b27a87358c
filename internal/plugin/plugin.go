package plugin

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/rea/internal/timeline"
	"github.com/roach88/rea/internal/value"
)

// Class is one of Render, Extension or App.
type Class int

const (
	ClassRender Class = iota + 1
	ClassExtension
	ClassApp
)

func (c Class) String() string {
	switch c {
	case ClassRender:
		return "render"
	case ClassExtension:
		return "extension"
	case ClassApp:
		return "app"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// ParseClass converts a class name back into a Class.
func ParseClass(s string) (Class, error) {
	switch strings.ToLower(s) {
	case "render":
		return ClassRender, nil
	case "extension":
		return ClassExtension, nil
	case "app":
		return ClassApp, nil
	}
	return 0, fmt.Errorf("unknown plugin class %q", s)
}

// Ports maps port names to their declared type tag.
type Ports map[string]value.Type

// Names returns the port names sorted, for deterministic iteration.
func (p Ports) Names() []string {
	names := make([]string, 0, len(p))
	for n := range p {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Validate checks that every port has a name and a known type.
func (p Ports) Validate() error {
	for _, n := range p.Names() {
		if n == "" {
			return fmt.Errorf("port name is required")
		}
		if !p[n].Valid() {
			return fmt.Errorf("port %q: unknown type %q", n, p[n])
		}
	}
	return nil
}

// Descriptor is the contract shared by every class.
//
// Inputs may be computed on every call; the Pipeline re-reads it whenever it
// resolves connections.
type Descriptor interface {
	// Name is the stable type identifier used by catalogs and persisted
	// topologies.
	Name() string
	Inputs() Ports
}

// Render observes a snapshot of the timeline.
type Render interface {
	Descriptor
	Run(snapshot timeline.Reader, inputs value.Map) error
}

// Extension transforms typed inputs into typed outputs.
type Extension interface {
	Descriptor
	Outputs() Ports
	Run(inputs value.Map) (value.Map, error)
}

// App receives its own copy of the timeline and returns the replacement.
type App interface {
	Descriptor
	Run(tl *timeline.Table, inputs value.Map) (*timeline.Table, error)
}

// Plugin is the tagged container for exactly one of Render, Extension or App.
// The zero value is invalid.
type Plugin struct {
	class     Class
	render    Render
	extension Extension
	app       App
}

// NewRender wraps r.
func NewRender(r Render) Plugin { return Plugin{class: ClassRender, render: r} }

// NewExtension wraps e.
func NewExtension(e Extension) Plugin { return Plugin{class: ClassExtension, extension: e} }

// NewApp wraps a.
func NewApp(a App) Plugin { return Plugin{class: ClassApp, app: a} }

// Class returns the capability class.
func (p Plugin) Class() Class { return p.class }

// Valid reports whether p wraps an implementation.
func (p Plugin) Valid() bool { return p.descriptor() != nil }

// Name returns the type identifier of the wrapped implementation.
func (p Plugin) Name() string {
	if d := p.descriptor(); d != nil {
		return d.Name()
	}
	return ""
}

// Inputs returns the declared input ports.
func (p Plugin) Inputs() Ports {
	if d := p.descriptor(); d != nil {
		return d.Inputs()
	}
	return nil
}

// Outputs returns the declared output ports. Only Extensions have outputs.
func (p Plugin) Outputs() Ports {
	if p.class == ClassExtension && p.extension != nil {
		return p.extension.Outputs()
	}
	return nil
}

// Render returns the wrapped Render.
func (p Plugin) Render() (Render, bool) { return p.render, p.class == ClassRender && p.render != nil }

// Extension returns the wrapped Extension.
func (p Plugin) Extension() (Extension, bool) {
	return p.extension, p.class == ClassExtension && p.extension != nil
}

// App returns the wrapped App.
func (p Plugin) App() (App, bool) { return p.app, p.class == ClassApp && p.app != nil }

// Validate checks the wrapper and declared ports.
func (p Plugin) Validate() error {
	if !p.Valid() {
		return fmt.Errorf("plugin has no implementation")
	}
	if p.Name() == "" {
		return fmt.Errorf("plugin name is required")
	}
	if err := p.Inputs().Validate(); err != nil {
		return fmt.Errorf("plugin %s inputs: %w", p.Name(), err)
	}
	if err := p.Outputs().Validate(); err != nil {
		return fmt.Errorf("plugin %s outputs: %w", p.Name(), err)
	}
	return nil
}

func (p Plugin) descriptor() Descriptor {
	switch p.class {
	case ClassRender:
		if p.render != nil {
			return p.render
		}
	case ClassExtension:
		if p.extension != nil {
			return p.extension
		}
	case ClassApp:
		if p.app != nil {
			return p.app
		}
	}
	return nil
}
