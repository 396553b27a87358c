package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the golden-file form of a result. Assertion outcomes are left
// out so a golden file only changes when pipeline behavior does.
type Snapshot struct {
	Scenario   string        `json:"scenario"`
	Order      [][]string    `json:"order"`
	Events     []EventResult `json:"events"`
	Output     []string      `json:"output"`
	Error      string        `json:"error,omitempty"`
	FailedStep *int          `json:"failed_step,omitempty"`
	Committed  int           `json:"committed"`
}

// MarshalSnapshot renders the snapshot of result as indented JSON.
func MarshalSnapshot(name string, result *Result) ([]byte, error) {
	data, err := json.MarshalIndent(Snapshot{
		Scenario:   name,
		Order:      result.Order,
		Events:     result.Events,
		Output:     result.Output,
		Error:      result.Error,
		FailedStep: result.FailedStep,
		Committed:  result.Committed,
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
