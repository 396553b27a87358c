package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRun(t *testing.T, out string) RunResult {
	t.Helper()
	resp := decodeResponse(t, out)
	require.Equal(t, "ok", resp.Status)
	var result RunResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	return result
}

func TestRun_FullBaseline(t *testing.T) {
	db := tempDB(t)

	out, err := execute(t, "--db", db, "--format", "json", "run", "--timeline", "monday", "testdata/day.yaml")
	require.NoError(t, err)

	result := decodeRun(t, out)
	assert.Equal(t, "monday", result.Timeline)
	assert.Equal(t, 0, result.From)
	assert.Equal(t, 1, result.Committed)
	assert.Equal(t, 1, result.Events)
	assert.Len(t, result.Digest, 64)
	// agenda renders before tag runs in the same step.
	assert.Equal(t, []string{"2026-01-05 09:00-09:15 Standup"}, result.Output)

	events := listEvents(t, db, "monday")
	require.Len(t, events, 1)
	assert.Equal(t, "Standup-confirmed", events[0].Label)
}

func TestRun_TextOutput(t *testing.T) {
	out, err := execute(t, "--db", tempDB(t), "run", "testdata/day.cue")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-05 09:00-09:15 Standup\n"+
		"✓ Steps 0..1 committed to \"default\" (1 event(s))\n", out)
}

func TestRun_UntilThenResume(t *testing.T) {
	db := tempDB(t)

	out, err := execute(t, "--db", db, "--format", "json", "run", "--until", "0", "testdata/day.yaml")
	require.NoError(t, err)
	first := decodeRun(t, out)
	assert.Equal(t, 0, first.Committed)
	assert.Empty(t, first.Output)
	assert.Equal(t, "Standup", listEvents(t, db, DefaultTimeline)[0].Label)

	out, err = execute(t, "--db", db, "--format", "json", "run", "--from", "1", "testdata/day.yaml")
	require.NoError(t, err)
	second := decodeRun(t, out)
	assert.Equal(t, 1, second.From)
	assert.Equal(t, 1, second.Committed)
	assert.Equal(t, []string{"2026-01-05 09:00-09:15 Standup"}, second.Output)

	events := listEvents(t, db, DefaultTimeline)
	require.Len(t, events, 1)
	assert.Equal(t, "Standup-confirmed", events[0].Label)
	assert.NotEqual(t, first.Digest, second.Digest)
}

func TestRun_AppendsToExistingTimeline(t *testing.T) {
	db := tempDB(t)
	_, err := execute(t, "--db", db, "events", "add",
		"--label", "Breakfast", "--start", "2026-01-05 07:00", "--end", "2026-01-05 07:30")
	require.NoError(t, err)

	_, err = execute(t, "--db", db, "run", "testdata/day.yaml")
	require.NoError(t, err)

	events := listEvents(t, db, DefaultTimeline)
	require.Len(t, events, 2)
	assert.Equal(t, "Breakfast-confirmed", events[0].Label)
	assert.Equal(t, "Standup-confirmed", events[1].Label)
}

func TestRun_FailureKeepsCommittedSteps(t *testing.T) {
	db := tempDB(t)

	out, err := execute(t, "--db", db, "--format", "json", "run", "testdata/late.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, Reported(err))

	resp := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeRunFailed, resp.Error.Code)
	details, ok := resp.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "PLUGIN_FAILED", details["code"])
	assert.Equal(t, float64(1), details["step"])
	assert.Equal(t, float64(0), details["committed"])
	assert.Equal(t, "backwards", details["instance"])

	events := listEvents(t, db, DefaultTimeline)
	require.Len(t, events, 1)
	assert.Equal(t, "Standup", events[0].Label)
}

func TestRun_InvalidRange(t *testing.T) {
	db := tempDB(t)
	out, err := execute(t, "--db", db, "--format", "json", "run", "--until", "5", "testdata/day.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	details := decodeResponse(t, out).Error.Details.(map[string]any)
	assert.Equal(t, "INVALID_STEP", details["code"])
	assert.NotContains(t, details, "instance")

	// Nothing ran, so nothing was stored.
	_, err = execute(t, "--db", db, "events", "list")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRun_BadTopology(t *testing.T) {
	_, err := execute(t, "--db", tempDB(t), "run", "testdata/unknown.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "--db", tempDB(t), "run", "testdata/cycle.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
