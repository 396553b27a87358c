package timeline

import (
	"time"

	"github.com/google/uuid"
)

// Event is one time-ranged record. Fields are unexported; the label can only
// grow through Table.AppendLabel.
type Event struct {
	id    uuid.UUID
	label string
	start time.Time
	end   time.Time
}

// Record is the plain form of an Event used at storage boundaries.
type Record struct {
	ID    uuid.UUID `json:"id" yaml:"id"`
	Label string    `json:"label" yaml:"label"`
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

func newEvent(id uuid.UUID, label string, start, end time.Time) Event {
	return Event{id: id, label: label, start: start.UTC(), end: end.UTC()}
}

// ID returns the event's identifier.
func (e Event) ID() uuid.UUID { return e.id }

// Label returns the accumulated label, for display.
func (e Event) Label() string { return e.label }

// Start returns the start instant in UTC.
func (e Event) Start() time.Time { return e.start }

// End returns the end instant in UTC.
func (e Event) End() time.Time { return e.end }

// Duration returns End - Start.
func (e Event) Duration() time.Duration { return e.end.Sub(e.start) }

// Record returns the storage form of e.
func (e Event) Record() Record {
	return Record{ID: e.id, Label: e.label, Start: e.start, End: e.end}
}

// ValidateEvent fails with ErrCodeOrdering if e starts after it ends.
func ValidateEvent(e Event) error {
	if e.start.After(e.end) {
		return orderingError(e.id)
	}
	return nil
}
