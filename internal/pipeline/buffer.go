package pipeline

import (
	"bytes"
	"slices"

	"github.com/google/uuid"

	"github.com/roach88/rea/internal/value"
)

// Buffer holds Extension outputs for the duration of one run.
//
// Each (producer, port) is written at most once per run and may be read any
// number of times after that. A fresh Buffer is created at the start of
// every run.
type Buffer struct {
	entries map[uuid.UUID]value.Map
}

func newBuffer() *Buffer {
	return &Buffer{entries: make(map[uuid.UUID]value.Map)}
}

// Put writes v for (producer, port).
func (b *Buffer) Put(producer uuid.UUID, port string, v value.Value) error {
	ports := b.entries[producer]
	if ports == nil {
		ports = make(value.Map)
		b.entries[producer] = ports
	}
	if _, written := ports[port]; written {
		return portError(ErrCodeBufferOverwrite, producer, port, "output already written in this run")
	}
	ports[port] = v
	return nil
}

// Get reads the value written for (producer, port).
func (b *Buffer) Get(producer uuid.UUID, port string) (value.Value, error) {
	v, ok := b.entries[producer][port]
	if !ok {
		return nil, portError(ErrCodeBufferMiss, producer, port, "no value buffered; producer has not run or did not write this port")
	}
	return v, nil
}

// Outputs returns a copy of everything producer wrote.
func (b *Buffer) Outputs(producer uuid.UUID) value.Map {
	return b.entries[producer].Clone()
}

// Producers returns producer ids with at least one entry, sorted by id.
func (b *Buffer) Producers() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(b.entries))
	for id := range b.entries {
		out = append(out, id)
	}
	slices.SortFunc(out, func(a, c uuid.UUID) int { return bytes.Compare(a[:], c[:]) })
	return out
}

// Len returns the number of buffered values.
func (b *Buffer) Len() int {
	n := 0
	for _, ports := range b.entries {
		n += len(ports)
	}
	return n
}

// Clone returns an independent copy.
func (b *Buffer) Clone() *Buffer {
	out := newBuffer()
	for id, ports := range b.entries {
		out.entries[id] = ports.Clone()
	}
	return out
}

// Digest returns a stable hash of the buffer contents.
func (b *Buffer) Digest() (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range b.Producers() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`"` + id.String() + `":`)
		ports, err := value.MarshalCanonicalMap(b.entries[id])
		if err != nil {
			return "", err
		}
		buf.Write(ports)
	}
	buf.WriteByte('}')
	return value.Digest(value.DomainBuffer, buf.Bytes()), nil
}
