package timeline

import (
	"iter"

	"github.com/google/uuid"
)

// Reader is the read-only view handed to Renders. It has no mutating methods.
type Reader interface {
	Len() int
	Get(id uuid.UUID) (Event, bool)
	Events() []Event
	All() iter.Seq[Event]
}

var _ Reader = (*Table)(nil)

// ReadOnly wraps t so that only the Reader methods are reachable, even via a
// type assertion.
func ReadOnly(t *Table) Reader {
	return readOnly{t: t}
}

type readOnly struct {
	t *Table
}

func (r readOnly) Len() int                       { return r.t.Len() }
func (r readOnly) Get(id uuid.UUID) (Event, bool) { return r.t.Get(id) }
func (r readOnly) Events() []Event                { return r.t.Events() }
func (r readOnly) All() iter.Seq[Event]           { return r.t.All() }
