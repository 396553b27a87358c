package pipeline

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/roach88/rea/internal/plugin"
	"github.com/roach88/rea/internal/value"
)

// Endpoint names one port of one instance.
type Endpoint struct {
	Instance uuid.UUID
	Port     string
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s.%s", e.Instance, e.Port)
}

// Connection is a directed data-flow edge from an Extension output to an
// input of any instance.
type Connection struct {
	From Endpoint
	To   Endpoint
}

func (c Connection) String() string {
	return fmt.Sprintf("%s -> %s", c.From, c.To)
}

// Connect adds a connection after checking both ports exist and carry the
// same type tag. Every input port accepts at most one connection.
//
// Dependency cycles are not checked here; they fail the next Build.
func (p *Pipeline) Connect(from, to Endpoint) error {
	c := Connection{From: from, To: to}
	if _, err := p.checkConnection(c); err != nil {
		return err
	}
	if slices.ContainsFunc(p.connections, func(existing Connection) bool { return existing.To == to }) {
		return portError(ErrCodeDuplicateConnection, to.Instance, to.Port, "input already connected")
	}

	p.connections = append(p.connections, c)
	p.invalidate()
	return nil
}

// Disconnect removes the connection terminating at to.
func (p *Pipeline) Disconnect(to Endpoint) error {
	i := slices.IndexFunc(p.connections, func(c Connection) bool { return c.To == to })
	if i < 0 {
		return portError(ErrCodeMissingConnection, to.Instance, to.Port, "no connection to remove")
	}
	p.connections = slices.Delete(p.connections, i, i+1)
	p.invalidate()
	return nil
}

// Connections returns the connections in the order they were added.
func (p *Pipeline) Connections() []Connection {
	return slices.Clone(p.connections)
}

// checkConnection verifies c against the ports declared right now and
// returns the shared type tag.
func (p *Pipeline) checkConnection(c Connection) (value.Type, error) {
	src, ok := p.instances[c.From.Instance]
	if !ok {
		return "", newError(ErrCodeUnknownInstance, c.From.Instance, "connection source not registered")
	}
	dst, ok := p.instances[c.To.Instance]
	if !ok {
		return "", newError(ErrCodeUnknownInstance, c.To.Instance, "connection target not registered")
	}
	if src.plugin.Class() != plugin.ClassExtension {
		return "", portError(ErrCodeUnknownPort, c.From.Instance, c.From.Port, "%s %s has no outputs", src.plugin.Class(), src.plugin.Name())
	}
	fromType, ok := src.plugin.Outputs()[c.From.Port]
	if !ok {
		return "", portError(ErrCodeUnknownPort, c.From.Instance, c.From.Port, "%s declares no output %q", src.plugin.Name(), c.From.Port)
	}
	toType, ok := dst.plugin.Inputs()[c.To.Port]
	if !ok {
		return "", portError(ErrCodeUnknownPort, c.To.Instance, c.To.Port, "%s declares no input %q", dst.plugin.Name(), c.To.Port)
	}
	if fromType != toType {
		return "", NewTypeMismatchError(c, string(fromType), string(toType))
	}
	return toType, nil
}

// resolveInput finds the connection feeding (id, port) and re-checks its
// types against the current declarations.
func (p *Pipeline) resolveInput(id uuid.UUID, port string) (Connection, error) {
	to := Endpoint{Instance: id, Port: port}
	i := slices.IndexFunc(p.connections, func(c Connection) bool { return c.To == to })
	if i < 0 {
		return Connection{}, portError(ErrCodeMissingConnection, id, port, "input %q has no connection", port)
	}
	c := p.connections[i]
	if _, err := p.checkConnection(c); err != nil {
		return Connection{}, err
	}
	return c, nil
}

// upstream returns the distinct source instances feeding id.
func (p *Pipeline) upstream(id uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	for _, c := range p.connections {
		if c.To.Instance == id && !slices.Contains(out, c.From.Instance) {
			out = append(out, c.From.Instance)
		}
	}
	return out
}
