package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesFileAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rea.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	require.NoError(t, err, "database file was not created")

	for _, table := range []string{"timelines", "events", "topologies"} {
		var name string
		err := s.db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, "table %q", table)
	}
	version, err := s.pragma("user_version")
	require.NoError(t, err)
	assert.Equal(t, "2", version)
}

func TestOpen_MigratesNanosecondEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rea.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(schemaSQL)
	require.NoError(t, err)
	_, err = db.Exec(`PRAGMA user_version = 1`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO timelines (name, digest, event_count) VALUES ('old', 'x', 2)`)
	require.NoError(t, err)
	// 1969-12-31T23:59:59.5Z and 2026-01-05T09:00:00.000000123Z
	_, err = db.Exec(`INSERT INTO events (timeline, position, id, label, start_ns, end_ns) VALUES
		('old', 0, 'a', 'before epoch', -500000000, -500000000),
		('old', 1, 'b', 'after epoch', 1767603600000000123, 1767603600000000123)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	rows, err := s.db.Query(`SELECT start_sec, start_nsec FROM events ORDER BY position`)
	require.NoError(t, err)
	defer rows.Close()
	var got []time.Time
	for rows.Next() {
		var sec, nsec int64
		require.NoError(t, rows.Scan(&sec, &nsec))
		got = append(got, time.Unix(sec, nsec).UTC())
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []time.Time{
		time.Unix(0, -500000000).UTC(),
		time.Unix(0, 1767603600000000123).UTC(),
	}, got)
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rea.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO timelines (name, digest, event_count) VALUES ('kept', 'x', 0)`)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	for i := 0; i < 2; i++ {
		s, err := Open(path)
		require.NoError(t, err, "reopen %d", i)
		var n int
		require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM timelines`).Scan(&n))
		assert.Equal(t, 1, n)
		require.NoError(t, s.Close())
	}
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rea.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec(`PRAGMA user_version = 99`)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/rea.db")
	assert.Error(t, err)
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	mode, err := s.pragma("journal_mode")
	require.NoError(t, err)
	assert.Equal(t, "memory", mode)

	fk, err := s.pragma("foreign_keys")
	require.NoError(t, err)
	assert.Equal(t, "1", fk)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Close())
}

func TestPragmas(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "rea.db"))
	require.NoError(t, err)
	defer s.Close()

	tests := []struct {
		name     string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.pragma(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
