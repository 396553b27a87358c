package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/roach88/rea/internal/plugin"
	"github.com/roach88/rea/internal/timeline"
	"github.com/roach88/rea/internal/value"
)

// trace records plugin invocations in call order.
type trace struct {
	calls []string
}

func (tr *trace) add(name string) { tr.calls = append(tr.calls, name) }

type fakeExtension struct {
	name    string
	inputs  plugin.Ports
	outputs plugin.Ports
	tr      *trace
	run     func(in value.Map) (value.Map, error)
}

func (e *fakeExtension) Name() string          { return e.name }
func (e *fakeExtension) Inputs() plugin.Ports  { return e.inputs }
func (e *fakeExtension) Outputs() plugin.Ports { return e.outputs }

func (e *fakeExtension) Run(in value.Map) (value.Map, error) {
	if e.tr != nil {
		e.tr.add(e.name)
	}
	if e.run != nil {
		return e.run(in)
	}
	return value.Map{}, nil
}

type fakeRender struct {
	name   string
	inputs plugin.Ports
	tr     *trace
	seen   []int
	got    []value.Map
}

func (r *fakeRender) Name() string         { return r.name }
func (r *fakeRender) Inputs() plugin.Ports { return r.inputs }

func (r *fakeRender) Run(snapshot timeline.Reader, in value.Map) error {
	if r.tr != nil {
		r.tr.add(r.name)
	}
	r.seen = append(r.seen, snapshot.Len())
	r.got = append(r.got, in)
	return nil
}

type fakeApp struct {
	name   string
	inputs plugin.Ports
	tr     *trace
	run    func(tl *timeline.Table, in value.Map) (*timeline.Table, error)
}

func (a *fakeApp) Name() string         { return a.name }
func (a *fakeApp) Inputs() plugin.Ports { return a.inputs }

func (a *fakeApp) Run(tl *timeline.Table, in value.Map) (*timeline.Table, error) {
	if a.tr != nil {
		a.tr.add(a.name)
	}
	if a.run != nil {
		return a.run(tl, in)
	}
	return tl, nil
}

// constInt returns an Extension that outputs n on port "n".
func constInt(name string, n int64, tr *trace) *fakeExtension {
	return &fakeExtension{
		name:    name,
		outputs: plugin.Ports{"n": value.TypeInt},
		tr:      tr,
		run: func(value.Map) (value.Map, error) {
			return value.Map{"n": value.Int(n)}, nil
		},
	}
}

// addInt returns an Extension that sums inputs "a" and "b" into "n".
func addInt(name string, tr *trace) *fakeExtension {
	return &fakeExtension{
		name:    name,
		inputs:  plugin.Ports{"a": value.TypeInt, "b": value.TypeInt},
		outputs: plugin.Ports{"n": value.TypeInt},
		tr:      tr,
		run: func(in value.Map) (value.Map, error) {
			return value.Map{"n": in["a"].(value.Int) + in["b"].(value.Int)}, nil
		},
	}
}

// adder returns an App that appends n one-minute events labelled prefix-i.
func adder(name string, tr *trace) *fakeApp {
	return &fakeApp{
		name:   name,
		inputs: plugin.Ports{"n": value.TypeInt},
		tr:     tr,
		run: func(tl *timeline.Table, in value.Map) (*timeline.Table, error) {
			for range int(in["n"].(value.Int)) {
				k := tl.Len()
				start := anchor.Add(time.Duration(k) * time.Minute)
				if _, err := tl.Add(fmt.Sprintf("%s-%d", name, k), start, start.Add(time.Minute)); err != nil {
					return nil, err
				}
			}
			return tl, nil
		},
	}
}

// noopApp returns an App with no inputs that leaves the timeline alone.
func noopApp(name string, tr *trace) *fakeApp {
	return &fakeApp{name: name, tr: tr}
}

var (
	anchor  = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	errBoom = errors.New("boom")
)

func labelsOf(tl *timeline.Table) []string {
	var out []string
	for e := range tl.All() {
		out = append(out, e.Label())
	}
	return out
}
