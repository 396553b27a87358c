// Package timeline holds the consistency-checked collection of Events that
// forms the single mutable state a Pipeline works on.
//
// Every mutating operation on a Table validates before it commits. A failed
// call leaves the table exactly as it was; no partially-updated table is ever
// observable.
//
// Labels are append-only. AppendLabel is the only way to change an Event's
// label, so two independently written Apps sharing a timeline cannot
// overwrite each other's contributions.
package timeline
