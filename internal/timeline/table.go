package timeline

import (
	"bytes"
	"iter"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/rea/internal/value"
)

// Table is the validated, ordered collection of Events.
//
// INVARIANTS (checked by Validate after every mutation):
//   - len(ids) == len(events)
//   - every event id is in ids
//   - every event satisfies start <= end
//
// The zero Table is empty and ready to use. A Table is not safe for concurrent use. Ownership is linear: whoever holds
// the *Table is the only party allowed to mutate it, and it is handed to
// other holders as a Clone.
type Table struct {
	events []Event
	ids    map[uuid.UUID]struct{}
	gen    IDGenerator
}

// Option configures a Table.
type Option func(*Table)

// WithIDGenerator replaces the random id source, mainly for tests.
func WithIDGenerator(g IDGenerator) Option {
	return func(t *Table) {
		t.gen = g
	}
}

// New creates an empty table.
func New(opts ...Option) *Table {
	t := &Table{
		ids: make(map[uuid.UUID]struct{}),
		gen: RandomIDs{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Restore rebuilds a table from stored records, keeping their ids and order.
// Duplicate ids and invalid ranges fail with ErrCodeCorruption.
func Restore(records []Record, opts ...Option) (*Table, error) {
	t := New(opts...)
	for _, r := range records {
		if _, dup := t.ids[r.ID]; dup {
			return nil, corruptionError(r.ID, "duplicate event id")
		}
		e := newEvent(r.ID, r.Label, r.Start, r.End)
		if err := ValidateEvent(e); err != nil {
			return nil, corruptionError(r.ID, "stored event is invalid: %v", err)
		}
		t.events = append(t.events, e)
		t.ids[r.ID] = struct{}{}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the table invariants and fails with ErrCodeCorruption.
func (t *Table) Validate() error {
	if len(t.events) != len(t.ids) {
		return corruptionError(uuid.Nil, "length mismatch between events (%d) and ids (%d)", len(t.events), len(t.ids))
	}
	for _, e := range t.events {
		if _, ok := t.ids[e.id]; !ok {
			return corruptionError(e.id, "event id missing from id set")
		}
		if err := ValidateEvent(e); err != nil {
			return corruptionError(e.id, "contains invalid event: %v", err)
		}
	}
	return nil
}

// Len returns the number of events.
func (t *Table) Len() int {
	return len(t.events)
}

// Add creates an event with a fresh id and appends it.
func (t *Table) Add(label string, start, end time.Time) (uuid.UUID, error) {
	t.lazyInit()
	id := t.gen.NewID()
	e := newEvent(id, label, start, end)
	if err := ValidateEvent(e); err != nil {
		return uuid.Nil, err
	}
	if _, exists := t.ids[id]; exists {
		return uuid.Nil, corruptionError(id, "generated id already in use")
	}

	t.events = append(t.events, e)
	t.ids[id] = struct{}{}

	if err := t.Validate(); err != nil {
		t.events = t.events[:len(t.events)-1]
		delete(t.ids, id)
		return uuid.Nil, err
	}
	return id, nil
}

// AppendLabel concatenates suffix onto the label of event id. It is the only
// way to change a label.
func (t *Table) AppendLabel(id uuid.UUID, suffix string) error {
	i, err := t.index(id)
	if err != nil {
		return err
	}
	old := t.events[i].label
	t.events[i].label = old + suffix

	if err := t.Validate(); err != nil {
		t.events[i].label = old
		return err
	}
	return nil
}

// SetTimes replaces the bounds of event id. Invalid bounds fail with
// ErrCodeOrdering and leave the event untouched.
func (t *Table) SetTimes(id uuid.UUID, start, end time.Time) error {
	i, err := t.index(id)
	if err != nil {
		return err
	}
	candidate := newEvent(id, t.events[i].label, start, end)
	if err := ValidateEvent(candidate); err != nil {
		return err
	}

	old := t.events[i]
	t.events[i] = candidate
	if err := t.Validate(); err != nil {
		t.events[i] = old
		return err
	}
	return nil
}

// Remove deletes event id.
func (t *Table) Remove(id uuid.UUID) error {
	i, err := t.index(id)
	if err != nil {
		return err
	}
	old := t.events[i]
	t.events = slices.Delete(t.events, i, i+1)
	delete(t.ids, id)

	if err := t.Validate(); err != nil {
		t.events = slices.Insert(t.events, i, old)
		t.ids[id] = struct{}{}
		return err
	}
	return nil
}

// Get returns event id.
func (t *Table) Get(id uuid.UUID) (Event, bool) {
	i, err := t.index(id)
	if err != nil {
		return Event{}, false
	}
	return t.events[i], true
}

// Events returns a copy of the events in table order.
func (t *Table) Events() []Event {
	return slices.Clone(t.events)
}

// All returns a restartable read-only sequence over the events as they were
// when All was called.
func (t *Table) All() iter.Seq[Event] {
	snapshot := slices.Clone(t.events)
	return func(yield func(Event) bool) {
		for _, e := range snapshot {
			if !yield(e) {
				return
			}
		}
	}
}

// Records returns the storage form of every event in table order.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.events))
	for i, e := range t.events {
		out[i] = e.Record()
	}
	return out
}

// Clone returns an independent copy sharing no mutable state with t.
func (t *Table) Clone() *Table {
	ids := make(map[uuid.UUID]struct{}, len(t.ids))
	for id := range t.ids {
		ids[id] = struct{}{}
	}
	return &Table{
		events: slices.Clone(t.events),
		ids:    ids,
		gen:    t.gen,
	}
}

// Digest returns a stable hash of the table contents, ids included.
func (t *Table) Digest() (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, e := range t.events {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := value.MarshalCanonicalMap(value.Map{
			"id":    value.String(e.id.String()),
			"label": value.String(e.label),
			"start": value.NewTime(e.start),
			"end":   value.NewTime(e.end),
		})
		if err != nil {
			return "", err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return value.Digest(value.DomainTimeline, buf.Bytes()), nil
}

// lazyInit makes the zero Table usable like New().
func (t *Table) lazyInit() {
	if t.ids == nil {
		t.ids = make(map[uuid.UUID]struct{})
	}
	if t.gen == nil {
		t.gen = RandomIDs{}
	}
}

func (t *Table) index(id uuid.UUID) (int, error) {
	if _, ok := t.ids[id]; !ok {
		return -1, notFoundError(id)
	}
	i := slices.IndexFunc(t.events, func(e Event) bool { return e.id == id })
	if i < 0 {
		return -1, corruptionError(id, "id registered but event missing")
	}
	return i, nil
}
