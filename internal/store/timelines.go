package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/rea/internal/timeline"
)

// TimelineInfo summarizes a stored timeline.
type TimelineInfo struct {
	Name   string
	Events int
	Digest string
}

// SaveTimeline stores t under name, replacing any previous contents in one
// transaction.
func (s *Store) SaveTimeline(ctx context.Context, name string, t *timeline.Table) error {
	if name == "" {
		return fmt.Errorf("save timeline: name is required")
	}
	digest, err := t.Digest()
	if err != nil {
		return fmt.Errorf("save timeline %q: %w", name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save timeline %q: begin: %w", name, err)
	}
	defer tx.Rollback()

	records := t.Records()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO timelines (name, digest, event_count)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET digest = excluded.digest, event_count = excluded.event_count
	`, name, digest, len(records)); err != nil {
		return fmt.Errorf("save timeline %q: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE timeline = ?`, name); err != nil {
		return fmt.Errorf("save timeline %q: clear events: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (timeline, position, id, label, start_sec, start_nsec, end_sec, end_nsec)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("save timeline %q: %w", name, err)
	}
	defer stmt.Close()

	for i, r := range records {
		startSec, startNsec := unixParts(r.Start)
		endSec, endNsec := unixParts(r.End)
		if _, err := stmt.ExecContext(ctx, name, i, r.ID.String(), r.Label, startSec, startNsec, endSec, endNsec); err != nil {
			return fmt.Errorf("save timeline %q: event %s: %w", name, r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save timeline %q: commit: %w", name, err)
	}
	return nil
}

// LoadTimeline restores the timeline stored under name. opts are passed to
// timeline.Restore, e.g. an id generator for events added later.
func (s *Store) LoadTimeline(ctx context.Context, name string, opts ...timeline.Option) (*timeline.Table, error) {
	var digest string
	err := s.db.QueryRowContext(ctx, `SELECT digest FROM timelines WHERE name = ?`, name).Scan(&digest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("timeline %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load timeline %q: %w", name, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, start_sec, start_nsec, end_sec, end_nsec
		FROM events
		WHERE timeline = ?
		ORDER BY position ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("load timeline %q: %w", name, err)
	}
	defer rows.Close()

	var records []timeline.Record
	for rows.Next() {
		var (
			rawID                                string
			r                                    timeline.Record
			startSec, startNsec, endSec, endNsec int64
		)
		if err := rows.Scan(&rawID, &r.Label, &startSec, &startNsec, &endSec, &endNsec); err != nil {
			return nil, fmt.Errorf("load timeline %q: scan: %w", name, err)
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("load timeline %q: event id %q: %w", name, rawID, err)
		}
		r.ID = id
		r.Start = time.Unix(startSec, startNsec).UTC()
		r.End = time.Unix(endSec, endNsec).UTC()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load timeline %q: %w", name, err)
	}

	t, err := timeline.Restore(records, opts...)
	if err != nil {
		return nil, fmt.Errorf("load timeline %q: %w", name, err)
	}
	got, err := t.Digest()
	if err != nil {
		return nil, fmt.Errorf("load timeline %q: %w", name, err)
	}
	if got != digest {
		return nil, fmt.Errorf("load timeline %q: stored %s, computed %s: %w", name, digest, got, ErrDigestMismatch)
	}
	return t, nil
}

// ListTimelines returns every stored timeline ordered by name.
func (s *Store) ListTimelines(ctx context.Context) ([]TimelineInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, event_count, digest
		FROM timelines
		ORDER BY name ASC COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("list timelines: %w", err)
	}
	defer rows.Close()

	var out []TimelineInfo
	for rows.Next() {
		var info TimelineInfo
		if err := rows.Scan(&info.Name, &info.Events, &info.Digest); err != nil {
			return nil, fmt.Errorf("list timelines: scan: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteTimeline removes a timeline and its events.
func (s *Store) DeleteTimeline(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM timelines WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete timeline %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete timeline %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("timeline %q: %w", name, ErrNotFound)
	}
	return nil
}

// unixParts splits t into unix seconds and a nanosecond remainder, which
// covers every time.Time unlike UnixNano.
func unixParts(t time.Time) (sec, nsec int64) {
	return t.Unix(), int64(t.Nanosecond())
}
