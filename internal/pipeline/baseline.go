package pipeline

import (
	"slices"

	"github.com/google/uuid"

	"github.com/roach88/rea/internal/plugin"
)

// Step is one macro-step of the baseline: its Renders run first, in list
// order, then its App.
type Step struct {
	App     uuid.UUID
	Renders []uuid.UUID
}

func (s Step) clone() Step {
	return Step{App: s.App, Renders: slices.Clone(s.Renders)}
}

// Baseline returns a copy of the macro-steps.
func (p *Pipeline) Baseline() []Step {
	out := make([]Step, len(p.baseline))
	for i, s := range p.baseline {
		out[i] = s.clone()
	}
	return out
}

// AppendStep adds a step at the end of the baseline and returns its index.
func (p *Pipeline) AppendStep(app uuid.UUID, renders ...uuid.UUID) (int, error) {
	next := append(p.Baseline(), Step{App: app, Renders: slices.Clone(renders)})
	if err := p.setBaseline(next); err != nil {
		return -1, err
	}
	return len(next) - 1, nil
}

// InsertStep inserts a step before index i (i == len appends).
func (p *Pipeline) InsertStep(i int, app uuid.UUID, renders ...uuid.UUID) error {
	if i < 0 || i > len(p.baseline) {
		return newError(ErrCodeInvalidStep, uuid.Nil, "step %d out of range [0, %d]", i, len(p.baseline))
	}
	next := slices.Insert(p.Baseline(), i, Step{App: app, Renders: slices.Clone(renders)})
	return p.setBaseline(next)
}

// SetStep replaces step i.
func (p *Pipeline) SetStep(i int, app uuid.UUID, renders ...uuid.UUID) error {
	if i < 0 || i >= len(p.baseline) {
		return newError(ErrCodeInvalidStep, uuid.Nil, "step %d out of range [0, %d)", i, len(p.baseline))
	}
	next := p.Baseline()
	next[i] = Step{App: app, Renders: slices.Clone(renders)}
	return p.setBaseline(next)
}

// RemoveStep deletes step i.
func (p *Pipeline) RemoveStep(i int) error {
	if i < 0 || i >= len(p.baseline) {
		return newError(ErrCodeInvalidStep, uuid.Nil, "step %d out of range [0, %d)", i, len(p.baseline))
	}
	return p.setBaseline(slices.Delete(p.Baseline(), i, i+1))
}

func (p *Pipeline) setBaseline(next []Step) error {
	if err := p.verifyBaseline(next); err != nil {
		return err
	}
	p.baseline = next
	p.invalidate()
	return nil
}

// verifyBaseline checks that every slot refers to a registered instance and
// that no instance is scheduled twice. With check_classes on it also checks
// each slot's class.
func (p *Pipeline) verifyBaseline(steps []Step) error {
	seen := make(map[uuid.UUID]int)
	claim := func(id uuid.UUID, step int) error {
		if _, ok := p.instances[id]; !ok {
			return newError(ErrCodeUnknownInstance, id, "baseline step %d refers to unregistered instance", step)
		}
		if prev, dup := seen[id]; dup {
			return newError(ErrCodeDuplicateSchedule, id, "instance scheduled in steps %d and %d", prev, step)
		}
		seen[id] = step
		return nil
	}

	for i, s := range steps {
		for _, r := range s.Renders {
			if err := claim(r, i); err != nil {
				return err
			}
			if err := p.checkSlotClass(r, plugin.ClassRender, i); err != nil {
				return err
			}
		}
		if err := claim(s.App, i); err != nil {
			return err
		}
		if err := p.checkSlotClass(s.App, plugin.ClassApp, i); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) checkSlotClass(id uuid.UUID, want plugin.Class, step int) error {
	if !p.checkClasses {
		return nil
	}
	got := p.instances[id].plugin.Class()
	if got != want {
		err := newError(ErrCodeClassMismatch, id, "baseline step %d expects %s, instance is %s", step, want, got)
		err.Details = map[string]string{"expected": want.String(), "actual": got.String()}
		return err
	}
	return nil
}
