package plugin

import (
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/rea/internal/value"
)

// Factory builds a fresh Plugin from typed parameters.
type Factory func(params value.Map) (Plugin, error)

// Entry describes one constructible plugin type.
type Entry struct {
	// Name is the stable type identifier. It must equal the Name() of the
	// plugins the factory builds.
	Name string

	// Class is the class the factory produces.
	Class Class

	// Params declares the construction parameters. A parameter listed here
	// is required.
	Params Ports

	New Factory
}

// Catalog maps type identifiers to factories. Persisted topologies refer to
// plugins through it, never through memory identity.
type Catalog struct {
	mu     sync.RWMutex
	byName map[string]Entry
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{byName: make(map[string]Entry)}
}

// Register adds an entry. Names must be unique.
func (c *Catalog) Register(e Entry) error {
	if e.Name == "" {
		return fmt.Errorf("catalog entry name is required")
	}
	if e.New == nil {
		return fmt.Errorf("catalog entry %q has no factory", e.Name)
	}
	if err := e.Params.Validate(); err != nil {
		return fmt.Errorf("catalog entry %q params: %w", e.Name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byName[e.Name]; exists {
		return fmt.Errorf("plugin type %q already registered", e.Name)
	}
	c.byName[e.Name] = e
	return nil
}

// Lookup returns the entry for name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byName[name]
	return e, ok
}

// Names returns all registered type identifiers, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.byName))
	for n := range c.byName {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// New builds a plugin of type name. params must match the entry's declared
// parameters exactly.
func (c *Catalog) New(name string, params value.Map) (Plugin, error) {
	e, ok := c.Lookup(name)
	if !ok {
		return Plugin{}, fmt.Errorf("unknown plugin type %q", name)
	}
	for _, pn := range e.Params.Names() {
		v, present := params[pn]
		if !present {
			return Plugin{}, fmt.Errorf("plugin type %q: missing parameter %q", name, pn)
		}
		if v.Type() != e.Params[pn] {
			return Plugin{}, fmt.Errorf("plugin type %q: parameter %q must be %s, got %s", name, pn, e.Params[pn], v.Type())
		}
	}
	for pn := range params {
		if _, declared := e.Params[pn]; !declared {
			return Plugin{}, fmt.Errorf("plugin type %q: unknown parameter %q", name, pn)
		}
	}

	p, err := e.New(params.Clone())
	if err != nil {
		return Plugin{}, fmt.Errorf("plugin type %q: %w", name, err)
	}
	if err := p.Validate(); err != nil {
		return Plugin{}, err
	}
	if p.Class() != e.Class {
		return Plugin{}, fmt.Errorf("plugin type %q: factory built a %s, entry declares %s", name, p.Class(), e.Class)
	}
	if p.Name() != name {
		return Plugin{}, fmt.Errorf("plugin type %q: factory built %q", name, p.Name())
	}
	return p, nil
}
