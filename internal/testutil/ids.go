package testutil

import (
	"encoding/binary"
	"sync"

	"github.com/google/uuid"
)

// SequentialIDs hands out predictable UUIDs for tests: the first call returns
// 00000000-0000-0000-0000-000000000001, the next ...0002, and so on.
//
// An optional namespace byte goes into the first byte so that two generators
// (events vs. plugin instances) never produce the same id.
//
// Thread-safety: all methods are safe for concurrent use.
type SequentialIDs struct {
	mu        sync.Mutex
	namespace byte
	seq       uint64
}

// NewSequentialIDs creates a generator starting at 1.
func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{}
}

// NewSequentialIDsIn creates a generator whose ids start with namespace.
func NewSequentialIDsIn(namespace byte) *SequentialIDs {
	return &SequentialIDs{namespace: namespace}
}

// NewID returns the next id.
func (g *SequentialIDs) NewID() uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return SequentialID(g.namespace, g.seq)
}

// Reset restarts the sequence at 1.
func (g *SequentialIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}

// SequentialID is the id a generator in namespace returns on call n.
func SequentialID(namespace byte, n uint64) uuid.UUID {
	var id uuid.UUID
	id[0] = namespace
	binary.BigEndian.PutUint64(id[8:], n)
	return id
}
