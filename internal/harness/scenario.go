package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rea/internal/topology"
)

// Scenario defines one pipeline run and what it should produce.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario shows.
	Description string `yaml:"description"`

	// Topology is a topology file path, relative to the scenario file.
	Topology string `yaml:"topology,omitempty"`

	// Pipeline is an inline topology document. Exactly one of Topology and
	// Pipeline must be set; LoadScenario resolves Topology into Pipeline.
	Pipeline *topology.Document `yaml:"pipeline,omitempty"`

	// Events seed the initial timeline, in order.
	Events []EventSpec `yaml:"events,omitempty"`

	// Until is the last baseline step to run. Nil runs every step.
	Until *int `yaml:"until,omitempty"`

	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// EventSpec is one seeded event.
type EventSpec struct {
	Label string    `yaml:"label"`
	Start time.Time `yaml:"start"`
	End   time.Time `yaml:"end"`
}

// Assertion is a check on the run result.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Count is used by event_count.
	Count int `yaml:"count,omitempty"`

	// Label is used by label_present.
	Label string `yaml:"label,omitempty"`

	// Code is used by error_code.
	Code string `yaml:"code,omitempty"`

	// Text is used by output_contains.
	Text string `yaml:"text,omitempty"`
}

// Assertion type constants.
const (
	AssertEventCount     = "event_count"
	AssertLabelPresent   = "label_present"
	AssertErrorCode      = "error_code"
	AssertOutputContains = "output_contains"
)

// LoadScenario reads and parses a scenario YAML file, resolving a topology
// path relative to the scenario's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Topology != "" {
		if scenario.Pipeline != nil {
			return nil, fmt.Errorf("invalid scenario: topology and pipeline are mutually exclusive")
		}
		ref := scenario.Topology
		if !filepath.IsAbs(ref) {
			ref = filepath.Join(filepath.Dir(path), ref)
		}
		doc, err := topology.LoadFile(ref)
		if err != nil {
			return nil, fmt.Errorf("invalid scenario: %w", err)
		}
		scenario.Pipeline = doc
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Pipeline == nil {
		return fmt.Errorf("one of topology or pipeline is required")
	}
	if err := s.Pipeline.Validate(); err != nil {
		return err
	}
	if s.Until != nil && *s.Until < 0 {
		return fmt.Errorf("until must not be negative")
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case AssertEventCount:
		if a.Count < 0 {
			return fmt.Errorf("assertion[%d]: count must not be negative", index)
		}
	case AssertLabelPresent:
		if a.Label == "" {
			return fmt.Errorf("assertion[%d]: label_present requires label", index)
		}
	case AssertErrorCode:
		if a.Code == "" {
			return fmt.Errorf("assertion[%d]: error_code requires code", index)
		}
	case AssertOutputContains:
		if a.Text == "" {
			return fmt.Errorf("assertion[%d]: output_contains requires text", index)
		}
	default:
		return fmt.Errorf("assertion[%d]: unknown type %q", index, a.Type)
	}
	return nil
}
