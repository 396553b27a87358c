package timeline

import "github.com/google/uuid"

// IDGenerator produces fresh event identifiers.
type IDGenerator interface {
	NewID() uuid.UUID
}

// RandomIDs generates random (version 4) UUIDs. Collisions are treated as
// impossible; a collision still surfaces as a CORRUPTION error rather than
// being silently accepted.
type RandomIDs struct{}

// NewID returns a fresh random UUID.
func (RandomIDs) NewID() uuid.UUID {
	return uuid.New()
}
