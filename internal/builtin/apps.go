package builtin

import (
	"fmt"

	"github.com/roach88/rea/internal/plugin"
	"github.com/roach88/rea/internal/timeline"
	"github.com/roach88/rea/internal/value"
)

// AddEvent appends one event built from its inputs.
type AddEvent struct{}

func (AddEvent) Name() string { return "add-event" }

func (AddEvent) Inputs() plugin.Ports {
	return plugin.Ports{
		"label": value.TypeString,
		"start": value.TypeTime,
		"end":   value.TypeTime,
	}
}

func (AddEvent) Run(tl *timeline.Table, in value.Map) (*timeline.Table, error) {
	label := string(in["label"].(value.String))
	start := in["start"].(value.Time).Std()
	end := in["end"].(value.Time).Std()
	if _, err := tl.Add(label, start, end); err != nil {
		return nil, fmt.Errorf("add %q: %w", label, err)
	}
	return tl, nil
}

// Tag appends a suffix to the label of every event.
type Tag struct{}

func (Tag) Name() string         { return "tag" }
func (Tag) Inputs() plugin.Ports { return plugin.Ports{"suffix": value.TypeString} }

func (Tag) Run(tl *timeline.Table, in value.Map) (*timeline.Table, error) {
	suffix := string(in["suffix"].(value.String))
	for e := range tl.All() {
		if err := tl.AppendLabel(e.ID(), suffix); err != nil {
			return nil, err
		}
	}
	return tl, nil
}

// Shift moves every event by an offset.
type Shift struct{}

func (Shift) Name() string         { return "shift" }
func (Shift) Inputs() plugin.Ports { return plugin.Ports{"offset": value.TypeDuration} }

func (Shift) Run(tl *timeline.Table, in value.Map) (*timeline.Table, error) {
	offset := in["offset"].(value.Duration).Std()
	for e := range tl.All() {
		if err := tl.SetTimes(e.ID(), e.Start().Add(offset), e.End().Add(offset)); err != nil {
			return nil, err
		}
	}
	return tl, nil
}

// Pomodoro splits every event longer than work into work-sized chunks
// separated by rest-sized breaks. The last chunk is clipped to the event end.
// Children are labelled with a " [i/n]" suffix.
type Pomodoro struct{}

func (Pomodoro) Name() string { return "pomodoro" }

func (Pomodoro) Inputs() plugin.Ports {
	return plugin.Ports{"work": value.TypeDuration, "rest": value.TypeDuration}
}

func (Pomodoro) Run(tl *timeline.Table, in value.Map) (*timeline.Table, error) {
	work := in["work"].(value.Duration).Std()
	rest := in["rest"].(value.Duration).Std()
	if work <= 0 {
		return nil, fmt.Errorf("work must be positive, got %s", work)
	}
	if rest < 0 {
		return nil, fmt.Errorf("rest must not be negative, got %s", rest)
	}

	for _, e := range tl.Events() {
		if e.Duration() <= work {
			continue
		}
		var parts []timeline.SplitPart
		for start := e.Start(); start.Before(e.End()); start = start.Add(work + rest) {
			end := start.Add(work)
			if end.After(e.End()) {
				end = e.End()
			}
			parts = append(parts, timeline.SplitPart{Start: start, End: end})
		}
		for i := range parts {
			parts[i].Suffix = fmt.Sprintf(" [%d/%d]", i+1, len(parts))
		}
		if _, err := tl.Split(e.ID(), parts); err != nil {
			return nil, err
		}
	}
	return tl, nil
}
