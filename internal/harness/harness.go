package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/rea/internal/builtin"
	"github.com/roach88/rea/internal/pipeline"
	"github.com/roach88/rea/internal/store"
	"github.com/roach88/rea/internal/testutil"
	"github.com/roach88/rea/internal/timeline"
	"github.com/roach88/rea/internal/topology"
)

// EventNamespace is the first byte of every event id a scenario generates.
// Instance ids use namespace 0.
const EventNamespace = 0xEE

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Seed a timeline with the scenario events
//  2. Import the pipeline against the builtin catalog
//  3. Run baseline steps 0..until (all by default)
//  4. Save the final timeline to an in-memory store and reload it
//  5. Evaluate assertions
//
// A failing pipeline run is part of the result, not an error. Errors are
// returned only when the scenario cannot be set up.
func Run(scenario *Scenario) (*Result, error) {
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	tl := timeline.New(timeline.WithIDGenerator(testutil.NewSequentialIDsIn(EventNamespace)))
	for i, e := range scenario.Events {
		if _, err := tl.Add(e.Label, e.Start, e.End); err != nil {
			return nil, fmt.Errorf("events[%d]: %w", i, err)
		}
	}

	var out bytes.Buffer
	p, refs, err := topology.Import(scenario.Pipeline, builtin.NewCatalog(&out), topology.ImportOptions{
		Pipeline: []pipeline.Option{
			pipeline.WithIDGenerator(testutil.NewSequentialIDs()),
			pipeline.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
			pipeline.WithTimeline(tl),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("import pipeline: %w", err)
	}
	names := make(map[uuid.UUID]string, len(refs))
	for ref, id := range refs {
		names[id] = ref
	}

	result := NewResult()
	order, orderErr := p.ExecutionOrder()
	for _, step := range order {
		ids := make([]string, len(step))
		for i, id := range step {
			ids[i] = names[id]
		}
		result.Order = append(result.Order, ids)
	}

	var runErr error
	switch {
	case orderErr != nil:
		runErr = p.Build()
	case scenario.Until != nil:
		runErr = p.RunBaselineUntil(*scenario.Until)
	default:
		runErr = p.RunFull()
	}
	if runErr != nil {
		result.Error = string(pipeline.CodeOf(runErr))
		var re *pipeline.RunError
		if errors.As(runErr, &re) {
			step := re.Step
			result.FailedStep = &step
		}
	}
	result.Committed = p.Status().Committed

	final, err := roundTrip(p.Timeline())
	if err != nil {
		return nil, err
	}
	for e := range final.All() {
		result.Events = append(result.Events, EventResult{
			ID:    e.ID().String(),
			Label: e.Label(),
			Start: e.Start().UTC().Format(time.RFC3339Nano),
			End:   e.End().UTC().Format(time.RFC3339Nano),
		})
	}

	for _, line := range strings.Split(out.String(), "\n") {
		if line != "" {
			result.Output = append(result.Output, line)
		}
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// roundTrip saves tl to a fresh in-memory store and loads it back.
func roundTrip(tl *timeline.Table) (*timeline.Table, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.SaveTimeline(ctx, "scenario", tl); err != nil {
		return nil, err
	}
	return st.LoadTimeline(ctx, "scenario")
}
