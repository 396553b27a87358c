// Package pipeline wires plugin instances into a dependency graph and runs
// them against a timeline.
//
// A Pipeline owns:
//   - registered instances (Render, Extension, App), each under its own id
//   - connections from Extension outputs to instance inputs
//   - the baseline: macro-steps of zero or more Renders followed by one App
//   - the current timeline and the memory buffer of the last run
//
// Per baseline step, a run executes the Extensions the step transitively
// needs (Kahn order, registration order breaking ties), then the step's
// Renders, then its App. The App works on its own copy of the timeline and
// the result replaces the current timeline only after it validates.
package pipeline
