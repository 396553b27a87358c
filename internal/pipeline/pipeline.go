package pipeline

import (
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/roach88/rea/internal/plugin"
	"github.com/roach88/rea/internal/timeline"
	"github.com/roach88/rea/internal/value"
)

// Pipeline owns plugin instances, the connections between their ports, the
// baseline, and the current timeline, and runs them.
//
// Thread-safety model: none. A Pipeline is single-writer; every method must
// be called from one goroutine. Plugins run strictly one at a time.
//
// INVARIANTS:
//   - every Connection refers to registered instances and declared ports
//   - every input port has at most one incoming Connection
//   - every baseline slot refers to a registered instance
//   - with check_classes on, App slots hold Apps and Render lists hold Renders
type Pipeline struct {
	checkClasses bool
	instances    map[uuid.UUID]*instance
	connections  []Connection
	baseline     []Step

	// order caches the execution order for a run starting at step 0.
	// nil means topology changed since it was computed.
	order [][]uuid.UUID

	buffer  *Buffer
	current *timeline.Table
	status  Status

	clock  *Clock
	ids    IDGenerator
	logger *slog.Logger
}

type instance struct {
	id     uuid.UUID
	plugin plugin.Plugin
	seq    int64
	params value.Map
}

// InstanceInfo describes a registered instance.
type InstanceInfo struct {
	ID     uuid.UUID
	Name   string
	Class  plugin.Class
	Params value.Map
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithCheckClasses turns baseline class verification on or off.
func WithCheckClasses(on bool) Option {
	return func(p *Pipeline) {
		p.checkClasses = on
	}
}

// WithIDGenerator replaces the UUIDv7 instance id source.
func WithIDGenerator(g IDGenerator) Option {
	return func(p *Pipeline) {
		p.ids = g
	}
}

// WithTimeline sets the initial timeline. Default: an empty table.
func WithTimeline(t *timeline.Table) Option {
	return func(p *Pipeline) {
		p.current = t
	}
}

// New creates an empty pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		instances: make(map[uuid.UUID]*instance),
		buffer:    newBuffer(),
		current:   timeline.New(),
		status:    Status{State: StateIdle, Step: -1, Committed: -1},
		clock:     NewClock(),
		ids:       V7IDs{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RegisterOption configures a single registration.
type RegisterOption func(*instance)

// WithInstanceID registers under a caller-chosen id instead of a fresh one.
func WithInstanceID(id uuid.UUID) RegisterOption {
	return func(in *instance) {
		in.id = id
	}
}

// WithParams records the construction parameters so they can be exported.
func WithParams(params value.Map) RegisterOption {
	return func(in *instance) {
		in.params = params.Clone()
	}
}

// Register adds a plugin instance and returns its id. The same
// implementation may be registered several times; each registration is a
// separate instance that runs at most once per run.
func (p *Pipeline) Register(pl plugin.Plugin, opts ...RegisterOption) (uuid.UUID, error) {
	if err := pl.Validate(); err != nil {
		return uuid.Nil, &Error{Code: ErrCodeInvalidPlugin, Message: "plugin rejected", Err: err}
	}

	in := &instance{plugin: pl}
	for _, opt := range opts {
		opt(in)
	}
	if in.id == uuid.Nil {
		in.id = p.ids.NewID()
	}
	if _, exists := p.instances[in.id]; exists {
		return uuid.Nil, newError(ErrCodeDuplicateInstance, in.id, "instance id already registered")
	}

	in.seq = p.clock.Next()
	p.instances[in.id] = in
	p.invalidate()

	p.logger.Debug("instance registered",
		"instance", in.id,
		"plugin", pl.Name(),
		"class", pl.Class().String(),
	)
	return in.id, nil
}

// Unregister removes an instance that no connection or baseline slot refers to.
func (p *Pipeline) Unregister(id uuid.UUID) error {
	if _, ok := p.instances[id]; !ok {
		return newError(ErrCodeUnknownInstance, id, "instance not registered")
	}
	for _, c := range p.connections {
		if c.From.Instance == id || c.To.Instance == id {
			return newError(ErrCodeInstanceInUse, id, "instance is connected (%s)", c)
		}
	}
	for i, s := range p.baseline {
		if s.App == id || slices.Contains(s.Renders, id) {
			return newError(ErrCodeInstanceInUse, id, "instance is scheduled in baseline step %d", i)
		}
	}
	delete(p.instances, id)
	p.invalidate()
	return nil
}

// Instance returns information about a registered instance.
func (p *Pipeline) Instance(id uuid.UUID) (InstanceInfo, bool) {
	in, ok := p.instances[id]
	if !ok {
		return InstanceInfo{}, false
	}
	return in.info(), true
}

// Instances returns every registered instance in registration order.
func (p *Pipeline) Instances() []InstanceInfo {
	sorted := p.sortedInstances()
	out := make([]InstanceInfo, len(sorted))
	for i, in := range sorted {
		out[i] = in.info()
	}
	return out
}

// CheckClasses reports whether baseline class verification is on.
func (p *Pipeline) CheckClasses() bool {
	return p.checkClasses
}

// SetCheckClasses turns baseline class verification on or off. Turning it on
// fails with ErrCodeClassMismatch if the current baseline violates it.
func (p *Pipeline) SetCheckClasses(on bool) error {
	prev := p.checkClasses
	p.checkClasses = on
	if err := p.verifyBaseline(p.baseline); err != nil {
		p.checkClasses = prev
		return err
	}
	return nil
}

// Timeline returns a copy of the current timeline.
func (p *Pipeline) Timeline() *timeline.Table {
	return p.current.Clone()
}

// SetTimeline replaces the current timeline. The pipeline takes ownership of
// t; callers must not keep mutating it.
func (p *Pipeline) SetTimeline(t *timeline.Table) error {
	if t == nil {
		return &Error{Code: ErrCodeInvalidOutput, Message: "timeline is nil"}
	}
	if err := t.Validate(); err != nil {
		return err
	}
	p.current = t
	return nil
}

// Buffer returns a copy of the memory buffer left by the last run.
func (p *Pipeline) Buffer() *Buffer {
	return p.buffer.Clone()
}

// Status returns the run state machine's current state.
func (p *Pipeline) Status() Status {
	return p.status
}

func (in *instance) info() InstanceInfo {
	return InstanceInfo{
		ID:     in.id,
		Name:   in.plugin.Name(),
		Class:  in.plugin.Class(),
		Params: in.params.Clone(),
	}
}

func (p *Pipeline) sortedInstances() []*instance {
	out := make([]*instance, 0, len(p.instances))
	for _, in := range p.instances {
		out = append(out, in)
	}
	slices.SortFunc(out, func(a, b *instance) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
	return out
}

func (p *Pipeline) invalidate() {
	p.order = nil
}
