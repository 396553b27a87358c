package topology

import (
	"fmt"
	"strings"
)

// Version is the document format version this package reads and writes.
const Version = 1

// Document is the persisted form of a pipeline's wiring.
type Document struct {
	Version      int          `json:"version" yaml:"version"`
	CheckClasses bool         `json:"check_classes" yaml:"check_classes"`
	Instances    []Instance   `json:"instances" yaml:"instances"`
	Connections  []Connection `json:"connections,omitempty" yaml:"connections,omitempty"`
	Baseline     []Step       `json:"baseline" yaml:"baseline"`
}

// Instance is one registered plugin instance.
type Instance struct {
	// ID is the reference other entries use. Any string without a '.' works;
	// Import with PreserveIDs requires a UUID.
	ID string `json:"id" yaml:"id"`

	// Type is the catalog type id.
	Type string `json:"type" yaml:"type"`

	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Connection links an Extension output to an input, both written "id.port".
type Connection struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Step is one baseline step.
type Step struct {
	App     string   `json:"app" yaml:"app"`
	Renders []string `json:"renders,omitempty" yaml:"renders,omitempty"`
}

// Endpoint is a parsed "id.port" reference.
type Endpoint struct {
	Instance string
	Port     string
}

func (e Endpoint) String() string {
	return e.Instance + "." + e.Port
}

// ParseEndpoint splits "id.port".
func ParseEndpoint(s string) (Endpoint, error) {
	id, port, ok := strings.Cut(s, ".")
	if !ok || id == "" || port == "" {
		return Endpoint{}, fmt.Errorf("endpoint %q must be written instance.port", s)
	}
	return Endpoint{Instance: id, Port: port}, nil
}

// Validate checks the document structure: version, instance ids and types,
// endpoint syntax, and that every reference names a declared instance.
// It does not consult a catalog.
func (d *Document) Validate() error {
	if d.Version != Version {
		return invalid("version", "unsupported version %d (want %d)", d.Version, Version)
	}

	ids := make(map[string]bool, len(d.Instances))
	for i, in := range d.Instances {
		field := fmt.Sprintf("instances[%d]", i)
		if in.ID == "" {
			return invalid(field+".id", "id is required")
		}
		if strings.Contains(in.ID, ".") {
			return invalid(field+".id", "id %q must not contain '.'", in.ID)
		}
		if ids[in.ID] {
			return invalid(field+".id", "duplicate id %q", in.ID)
		}
		if in.Type == "" {
			return invalid(field+".type", "type is required")
		}
		ids[in.ID] = true
	}

	ref := func(field, id string) error {
		if !ids[id] {
			return badRef(field, "unknown instance %q", id)
		}
		return nil
	}

	for i, c := range d.Connections {
		for _, end := range []struct{ name, raw string }{{"from", c.From}, {"to", c.To}} {
			field := fmt.Sprintf("connections[%d].%s", i, end.name)
			ep, err := ParseEndpoint(end.raw)
			if err != nil {
				return &Error{Code: ErrCodeInvalidDocument, Field: field, Message: "bad endpoint", Err: err}
			}
			if err := ref(field, ep.Instance); err != nil {
				return err
			}
		}
	}

	for i, s := range d.Baseline {
		if err := ref(fmt.Sprintf("baseline[%d].app", i), s.App); err != nil {
			return err
		}
		for j, r := range s.Renders {
			if err := ref(fmt.Sprintf("baseline[%d].renders[%d]", i, j), r); err != nil {
				return err
			}
		}
	}
	return nil
}
