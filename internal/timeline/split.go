package timeline

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// SplitPart describes one child of a split.
type SplitPart struct {
	Start  time.Time
	End    time.Time
	Suffix string
}

// Split replaces event id with one child per part. Each child's label is the
// parent's label followed by the part's Suffix.
//
// Rules:
//   - at least one part
//   - each part satisfies Start <= End
//   - each part lies inside the parent's [start, end]
//   - parts do not overlap each other; touching endpoints and gaps are fine
//   - no two zero-length parts sit at the same instant
//
// Children take the parent's position in the table, ordered by start then
// end. The
// new ids are returned in that order. On any violation the table is
// unchanged.
func (t *Table) Split(id uuid.UUID, parts []SplitPart) ([]uuid.UUID, error) {
	i, err := t.index(id)
	if err != nil {
		return nil, err
	}
	parent := t.events[i]
	t.lazyInit()

	if len(parts) == 0 {
		return nil, splitError(id, "at least one part is required")
	}

	sorted := slices.Clone(parts)
	slices.SortStableFunc(sorted, func(a, b SplitPart) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return a.End.Compare(b.End)
	})

	children := make([]Event, 0, len(sorted))
	for k, p := range sorted {
		if p.Start.After(p.End) {
			return nil, orderingError(id)
		}
		if p.Start.Before(parent.start) || p.End.After(parent.end) {
			return nil, splitError(id, "part %d [%s, %s] is outside the parent span", k, p.Start.Format(time.RFC3339), p.End.Format(time.RFC3339))
		}
		if k > 0 {
			prev := sorted[k-1]
			if p.Start.Before(prev.End) {
				return nil, splitError(id, "part %d overlaps the previous part", k)
			}
			if p.Start.Equal(p.End) && prev.Start.Equal(p.Start) && prev.End.Equal(p.End) {
				return nil, splitError(id, "part %d repeats the zero-length part at %s", k, p.Start.Format(time.RFC3339))
			}
		}
		childID := t.gen.NewID()
		if _, exists := t.ids[childID]; exists || slices.ContainsFunc(children, func(c Event) bool { return c.id == childID }) {
			return nil, corruptionError(childID, "generated id already in use")
		}
		children = append(children, newEvent(childID, parent.label+p.Suffix, p.Start, p.End))
	}

	oldEvents := slices.Clone(t.events)
	t.events = slices.Replace(t.events, i, i+1, children...)
	delete(t.ids, id)
	for _, c := range children {
		t.ids[c.id] = struct{}{}
	}

	if err := t.Validate(); err != nil {
		t.events = oldEvents
		for _, c := range children {
			delete(t.ids, c.id)
		}
		t.ids[id] = struct{}{}
		return nil, err
	}

	out := make([]uuid.UUID, len(children))
	for k, c := range children {
		out[k] = c.id
	}
	return out, nil
}
