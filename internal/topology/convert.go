package topology

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/rea/internal/pipeline"
	"github.com/roach88/rea/internal/plugin"
	"github.com/roach88/rea/internal/value"
)

// Export captures p's instances, connections, baseline, and check_classes.
// Instance ids are written as UUID strings.
func Export(p *pipeline.Pipeline) *Document {
	doc := &Document{
		Version:      Version,
		CheckClasses: p.CheckClasses(),
		Instances:    []Instance{},
		Baseline:     []Step{},
	}
	for _, in := range p.Instances() {
		var params map[string]any
		if len(in.Params) > 0 {
			params = make(map[string]any, len(in.Params))
			for _, k := range in.Params.SortedKeys() {
				params[k] = value.ToAny(in.Params[k])
			}
		}
		doc.Instances = append(doc.Instances, Instance{
			ID:     in.ID.String(),
			Type:   in.Name,
			Params: params,
		})
	}
	for _, c := range p.Connections() {
		doc.Connections = append(doc.Connections, Connection{
			From: Endpoint{Instance: c.From.Instance.String(), Port: c.From.Port}.String(),
			To:   Endpoint{Instance: c.To.Instance.String(), Port: c.To.Port}.String(),
		})
	}
	for _, s := range p.Baseline() {
		step := Step{App: s.App.String()}
		for _, r := range s.Renders {
			step.Renders = append(step.Renders, r.String())
		}
		doc.Baseline = append(doc.Baseline, step)
	}
	return doc
}

// ImportOptions configures Import.
type ImportOptions struct {
	// PreserveIDs registers instances under their document ids, which must
	// then be UUIDs. Otherwise fresh ids are allocated.
	PreserveIDs bool

	// Pipeline options applied when constructing the result, e.g. a logger.
	// check_classes always comes from the document.
	Pipeline []pipeline.Option
}

// Import builds a new Pipeline from doc, resolving plugin types in catalog.
// The pipeline is only returned when every instance, connection, and step
// was accepted; on error nothing is returned.
//
// Import does not compute an execution order, so a document with a cycle
// imports fine and fails at Build.
func Import(doc *Document, catalog *plugin.Catalog, opts ImportOptions) (*pipeline.Pipeline, map[string]uuid.UUID, error) {
	if err := doc.Validate(); err != nil {
		return nil, nil, err
	}

	pipeOpts := append(append([]pipeline.Option{}, opts.Pipeline...), pipeline.WithCheckClasses(doc.CheckClasses))
	p := pipeline.New(pipeOpts...)
	ids := make(map[string]uuid.UUID, len(doc.Instances))

	for i, in := range doc.Instances {
		field := fmt.Sprintf("instances[%d]", i)
		pl, params, err := build(catalog, in, field)
		if err != nil {
			return nil, nil, err
		}

		regOpts := []pipeline.RegisterOption{pipeline.WithParams(params)}
		if opts.PreserveIDs {
			id, err := uuid.Parse(in.ID)
			if err != nil {
				return nil, nil, &Error{Code: ErrCodeBadReference, Field: field + ".id", Message: fmt.Sprintf("id %q cannot be preserved", in.ID), Err: err}
			}
			regOpts = append(regOpts, pipeline.WithInstanceID(id))
		}
		id, err := p.Register(pl, regOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", field, err)
		}
		ids[in.ID] = id
	}

	for i, c := range doc.Connections {
		from, _ := ParseEndpoint(c.From)
		to, _ := ParseEndpoint(c.To)
		err := p.Connect(
			pipeline.Endpoint{Instance: ids[from.Instance], Port: from.Port},
			pipeline.Endpoint{Instance: ids[to.Instance], Port: to.Port},
		)
		if err != nil {
			return nil, nil, fmt.Errorf("connections[%d] %s -> %s: %w", i, c.From, c.To, err)
		}
	}

	for i, s := range doc.Baseline {
		renders := make([]uuid.UUID, len(s.Renders))
		for j, r := range s.Renders {
			renders[j] = ids[r]
		}
		if _, err := p.AppendStep(ids[s.App], renders...); err != nil {
			return nil, nil, fmt.Errorf("baseline[%d]: %w", i, err)
		}
	}

	return p, ids, nil
}

// build converts raw params to the entry's declared types and constructs
// the plugin.
func build(catalog *plugin.Catalog, in Instance, field string) (plugin.Plugin, value.Map, error) {
	entry, ok := catalog.Lookup(in.Type)
	if !ok {
		return plugin.Plugin{}, nil, &Error{Code: ErrCodeUnknownType, Field: field + ".type", Message: fmt.Sprintf("unknown plugin type %q", in.Type)}
	}

	params := make(value.Map, len(in.Params))
	for name, raw := range in.Params {
		t, declared := entry.Params[name]
		if !declared {
			return plugin.Plugin{}, nil, invalid(field+".params."+name, "%s takes no parameter %q", in.Type, name)
		}
		v, err := value.FromAny(t, raw)
		if err != nil {
			return plugin.Plugin{}, nil, &Error{Code: ErrCodeInvalidDocument, Field: field + ".params." + name, Message: "bad parameter", Err: err}
		}
		params[name] = v
	}

	pl, err := catalog.New(in.Type, params)
	if err != nil {
		return plugin.Plugin{}, nil, &Error{Code: ErrCodeInvalidDocument, Field: field, Message: "cannot build plugin", Err: err}
	}
	return pl, params, nil
}
