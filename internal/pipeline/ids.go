package pipeline

import "github.com/google/uuid"

// IDGenerator produces instance identifiers.
// Implemented by V7IDs (production) and testutil.SequentialIDs (tests).
type IDGenerator interface {
	NewID() uuid.UUID
}

// V7IDs generates time-sortable UUIDv7 instance ids.
type V7IDs struct{}

// NewID panics if the system random source fails.
func (V7IDs) NewID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}
