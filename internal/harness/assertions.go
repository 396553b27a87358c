package harness

import (
	"fmt"
	"slices"
	"strings"
)

// EvaluateAssertions checks every assertion against result and returns a
// message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if msg := evaluate(result, a); msg != "" {
			failures = append(failures, fmt.Sprintf("assertion[%d] %s: %s", i, a.Type, msg))
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion) string {
	switch a.Type {
	case AssertEventCount:
		if len(result.Events) != a.Count {
			return fmt.Sprintf("expected %d event(s), got %d", a.Count, len(result.Events))
		}
	case AssertLabelPresent:
		if !slices.ContainsFunc(result.Events, func(e EventResult) bool { return e.Label == a.Label }) {
			return fmt.Sprintf("no event labelled %q", a.Label)
		}
	case AssertErrorCode:
		if result.Error != a.Code {
			return fmt.Sprintf("expected error %s, got %q", a.Code, result.Error)
		}
	case AssertOutputContains:
		if !slices.ContainsFunc(result.Output, func(line string) bool { return strings.Contains(line, a.Text) }) {
			return fmt.Sprintf("no output line contains %q", a.Text)
		}
	default:
		return fmt.Sprintf("unknown assertion type %q", a.Type)
	}
	return ""
}
