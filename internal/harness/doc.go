// Package harness runs pipeline scenarios described in YAML and compares
// the outcome against golden files.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario shows"
//	topology: ../topologies/day.yaml   # or an inline pipeline: document
//	events:
//	  - label: Standup
//	    start: 2026-01-05T09:00:00Z
//	    end: 2026-01-05T09:15:00Z
//	until: 0                           # optional; default runs every step
//	assertions:
//	  - type: event_count
//	    count: 3
//	  - type: label_present
//	    label: "Standup (focus)"
//
// # Assertion Types
//
//   - event_count: the final timeline holds exactly count events
//   - label_present: some final event has the given label
//   - error_code: the run failed with the given pipeline error code
//   - output_contains: some render output line contains text
//
// # Deterministic Testing
//
// Instance ids and event ids come from sequential generators, render output
// is captured in memory, and the final timeline is saved to and reloaded
// from an in-memory store, so identical scenarios give identical snapshots.
package harness
