package pipeline

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/rea/internal/plugin"
	"github.com/roach88/rea/internal/timeline"
	"github.com/roach88/rea/internal/value"
)

// State is a node of the run state machine:
//
//	Idle -> Building -> Executing(step) -> Executing(step+1) | Completed | Failed
//
// There is no automatic retry. After Failed, callers repair the topology
// and resume with RunRange(Committed+1, ...).
type State string

const (
	StateIdle      State = "idle"
	StateBuilding  State = "building"
	StateExecuting State = "executing"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Status is a snapshot of the state machine.
type Status struct {
	State State

	// Step is the baseline step being (or last) executed, -1 before any.
	Step int

	// Instance is the instance executing, or the one that failed.
	Instance uuid.UUID

	// Committed is the last step whose effects are on the timeline. A run
	// over from..to starts at from-1, so Committed+1 is always the step to
	// resume at. It is -1 when the range itself was rejected.
	Committed int

	// Err is set in StateFailed.
	Err error
}

// run is the per-run state. It lives for exactly one RunRange call.
type run struct {
	buffer   *Buffer
	executed map[uuid.UUID]bool
}

func newRun() *run {
	return &run{buffer: newBuffer(), executed: make(map[uuid.UUID]bool)}
}

// RunFull runs every baseline step.
func (p *Pipeline) RunFull() error {
	return p.RunBaselineUntil(len(p.baseline) - 1)
}

// RunBaselineUntil runs steps 0..=step as one run.
func (p *Pipeline) RunBaselineUntil(step int) error {
	return p.RunRange(0, step)
}

// RunRange runs steps from..=to as one run.
//
// Each call is a new run: the memory buffer starts empty and every scheduled
// instance may execute once. Steps run against the timeline left by the
// previous call, so calling twice re-executes the range on the advanced
// timeline.
//
// Before any plugin executes, every input of every scheduled instance is
// resolved and type-checked. On failure, steps already completed in this
// run keep their effects; the failing step's App result is discarded.
func (p *Pipeline) RunRange(from, to int) error {
	p.status = Status{State: StateBuilding, Step: -1, Committed: -1}
	if len(p.baseline) == 0 {
		return p.fail(newError(ErrCodeInvalidStep, uuid.Nil, "baseline is empty"), -1, uuid.Nil)
	}
	if from < 0 || to >= len(p.baseline) || from > to {
		return p.fail(newError(ErrCodeInvalidStep, uuid.Nil, "step range [%d, %d] invalid for %d step(s)", from, to, len(p.baseline)), -1, uuid.Nil)
	}
	p.status.Committed = from - 1

	p.logger.Info("run starting", "from", from, "to", to)

	order, err := p.computeOrder(from)
	if err != nil {
		return p.fail(err, from, uuid.Nil)
	}
	if from == 0 {
		p.order = order
	}
	order = order[:to-from+1]

	if err := p.preflight(from, order); err != nil {
		return err
	}

	r := newRun()
	p.buffer = r.buffer
	for i, ids := range order {
		step := from + i
		for _, id := range ids {
			p.status.State = StateExecuting
			p.status.Step = step
			p.status.Instance = id
			if err := p.executeElement(r, id); err != nil {
				return p.fail(err, step, id)
			}
		}
		p.status.Committed = step
		p.logger.Info("step committed", "step", step, "events", p.current.Len())
	}

	p.status.State = StateCompleted
	p.status.Instance = uuid.Nil
	p.logger.Info("run completed", "from", from, "to", to, "buffered", r.buffer.Len())
	return nil
}

// preflight resolves every input of every scheduled instance, so missing
// connections and type mismatches fail before anything executes.
func (p *Pipeline) preflight(from int, order [][]uuid.UUID) error {
	for i, ids := range order {
		for _, id := range ids {
			in := p.instances[id]
			for _, port := range in.plugin.Inputs().Names() {
				if _, err := p.resolveInput(id, port); err != nil {
					return p.fail(err, from+i, id)
				}
			}
		}
	}
	return nil
}

func (p *Pipeline) fail(err error, step int, id uuid.UUID) error {
	runErr := &RunError{Step: step, Instance: id, Err: err}
	p.status.State = StateFailed
	p.status.Step = step
	p.status.Instance = id
	p.status.Err = runErr
	p.logger.Warn("run failed", "step", step, "instance", id, "err", err)
	return runErr
}

// pullInputs assembles the inputs of id from its connections and the run's
// buffer.
func (p *Pipeline) pullInputs(r *run, id uuid.UUID) (value.Map, error) {
	in, ok := p.instances[id]
	if !ok {
		return nil, newError(ErrCodeUnknownInstance, id, "instance not registered")
	}
	declared := in.plugin.Inputs()
	inputs := make(value.Map, len(declared))
	for _, port := range declared.Names() {
		c, err := p.resolveInput(id, port)
		if err != nil {
			return nil, err
		}
		v, err := r.buffer.Get(c.From.Instance, c.From.Port)
		if err != nil {
			return nil, err
		}
		if v.Type() != declared[port] {
			return nil, NewTypeMismatchError(c, string(v.Type()), string(declared[port]))
		}
		inputs[port] = v
	}
	return inputs, nil
}

// executeElement runs one instance, dispatching on its class.
func (p *Pipeline) executeElement(r *run, id uuid.UUID) error {
	in, ok := p.instances[id]
	if !ok {
		return newError(ErrCodeUnknownInstance, id, "instance not registered")
	}
	if r.executed[id] {
		return newError(ErrCodeRepeatExecution, id, "instance already executed in this run")
	}
	r.executed[id] = true

	inputs, err := p.pullInputs(r, id)
	if err != nil {
		return err
	}

	p.logger.Debug("executing instance",
		"instance", id,
		"plugin", in.plugin.Name(),
		"class", in.plugin.Class().String(),
	)

	switch in.plugin.Class() {
	case plugin.ClassRender:
		render, _ := in.plugin.Render()
		if err := render.Run(timeline.ReadOnly(p.current.Clone()), inputs); err != nil {
			return pluginFailed(id, in, err)
		}
		return nil

	case plugin.ClassExtension:
		ext, _ := in.plugin.Extension()
		out, err := ext.Run(inputs)
		if err != nil {
			return pluginFailed(id, in, err)
		}
		return p.storeOutputs(r, in, out)

	case plugin.ClassApp:
		app, _ := in.plugin.App()
		next, err := app.Run(p.current.Clone(), inputs)
		if err != nil {
			return pluginFailed(id, in, err)
		}
		if next == nil {
			return newError(ErrCodeInvalidOutput, id, "app %s returned no timeline", in.plugin.Name())
		}
		if err := next.Validate(); err != nil {
			return &Error{Code: ErrCodeInvalidOutput, Message: "app returned an invalid timeline", Instance: id, Err: err}
		}
		p.current = next
		return nil

	default:
		panic(fmt.Sprintf("pipeline: instance %s has invalid class %d", id, in.plugin.Class()))
	}
}

// storeOutputs checks out against the declared outputs and writes every
// port to the buffer. Nothing is written unless all ports check out.
func (p *Pipeline) storeOutputs(r *run, in *instance, out value.Map) error {
	declared := in.plugin.Outputs()
	for _, port := range declared.Names() {
		v, ok := out[port]
		if !ok || v == nil {
			return portError(ErrCodeInvalidOutput, in.id, port, "%s did not produce output %q", in.plugin.Name(), port)
		}
		if v.Type() != declared[port] {
			return portError(ErrCodeInvalidOutput, in.id, port, "%s produced %s for output %q declared %s", in.plugin.Name(), v.Type(), port, declared[port])
		}
	}
	for port := range out {
		if _, ok := declared[port]; !ok {
			return portError(ErrCodeInvalidOutput, in.id, port, "%s produced undeclared output %q", in.plugin.Name(), port)
		}
	}
	for _, port := range out.SortedKeys() {
		if err := r.buffer.Put(in.id, port, out[port]); err != nil {
			return err
		}
	}
	return nil
}

func pluginFailed(id uuid.UUID, in *instance, err error) error {
	return &Error{
		Code:     ErrCodePluginFailed,
		Message:  fmt.Sprintf("%s %s returned an error", in.plugin.Class(), in.plugin.Name()),
		Instance: id,
		Err:      err,
	}
}
