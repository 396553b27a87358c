package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/rea/internal/topology"
	"github.com/roach88/rea/internal/value"
)

const domainTopology = "rea/topology/v1"

// SaveTopology stores doc under name as JSON, replacing any previous
// document.
func (s *Store) SaveTopology(ctx context.Context, name string, doc *topology.Document) error {
	if name == "" {
		return fmt.Errorf("save topology: name is required")
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("save topology %q: %w", name, err)
	}
	data, err := topology.EncodeJSON(doc)
	if err != nil {
		return fmt.Errorf("save topology %q: %w", name, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO topologies (name, document, digest)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET document = excluded.document, digest = excluded.digest
	`, name, string(data), value.Digest(domainTopology, data))
	if err != nil {
		return fmt.Errorf("save topology %q: %w", name, err)
	}
	return nil
}

// LoadTopology returns the document stored under name.
func (s *Store) LoadTopology(ctx context.Context, name string) (*topology.Document, error) {
	var data, digest string
	err := s.db.QueryRowContext(ctx, `SELECT document, digest FROM topologies WHERE name = ?`, name).Scan(&data, &digest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("topology %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load topology %q: %w", name, err)
	}
	if got := value.Digest(domainTopology, []byte(data)); got != digest {
		return nil, fmt.Errorf("load topology %q: %w", name, ErrDigestMismatch)
	}

	doc, err := topology.DecodeJSON([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("load topology %q: %w", name, err)
	}
	return doc, nil
}
