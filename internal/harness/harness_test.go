package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rea/internal/topology"
)

func loadScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestScenarios_Golden(t *testing.T) {
	for _, name := range []string{"pomodoro_day", "pomodoro_until", "failed_step"} {
		t.Run(name, func(t *testing.T) {
			s := loadScenario(t, name)
			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	s := loadScenario(t, "pomodoro_day")

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRun_FailingAssertionsReported(t *testing.T) {
	s := loadScenario(t, "pomodoro_until")
	s.Assertions = []Assertion{
		{Type: AssertEventCount, Count: 7},
		{Type: AssertErrorCode, Code: "PLUGIN_FAILED"},
		{Type: AssertOutputContains, Text: "Tuesday"},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 3)
}

func TestRun_CycleReportedAsResult(t *testing.T) {
	doc, err := topology.DecodeYAML([]byte(`version: 1
instances:
  - {id: x, type: concat}
  - {id: y, type: concat}
  - {id: tag, type: tag}
connections:
  - {from: x.out, to: y.a}
  - {from: y.out, to: x.a}
  - {from: x.out, to: tag.suffix}
baseline:
  - app: tag
`))
	require.NoError(t, err)

	result, err := Run(&Scenario{Name: "cycle", Pipeline: doc})
	require.NoError(t, err)
	assert.Equal(t, "CYCLIC_DEPENDENCY", result.Error)
	assert.Empty(t, result.Order)
	assert.Nil(t, result.FailedStep)
	assert.Equal(t, -1, result.Committed)
}

func TestRun_ImportErrorReturned(t *testing.T) {
	doc := &topology.Document{
		Version:   topology.Version,
		Instances: []topology.Instance{{ID: "x", Type: "no-such-plugin"}},
	}
	_, err := Run(&Scenario{Name: "bad", Pipeline: doc})
	assert.Error(t, err)
}

func TestLoadScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing name", "pipeline: {version: 1, instances: [], baseline: []}\n"},
		{"missing pipeline", "name: x\n"},
		{"unknown field", "name: x\nflow: []\npipeline: {version: 1, instances: [], baseline: []}\n"},
		{"bad assertion", "name: x\npipeline: {version: 1, instances: [], baseline: []}\nassertions: [{type: trace_order}]\n"},
		{"label_present without label", "name: x\npipeline: {version: 1, instances: [], baseline: []}\nassertions: [{type: label_present}]\n"},
		{"negative until", "name: x\nuntil: -1\npipeline: {version: 1, instances: [], baseline: []}\n"},
		{"both sources", "name: x\ntopology: t.yaml\npipeline: {version: 1, instances: [], baseline: []}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scenario.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := LoadScenario(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadScenario_ResolvesTopologyRelativeToFile(t *testing.T) {
	s := loadScenario(t, "pomodoro_day")
	require.NotNil(t, s.Pipeline)
	assert.Len(t, s.Pipeline.Instances, 8)
	assert.Len(t, s.Events, 2)
	assert.Nil(t, s.Until)
}
