// Package plugin defines the three capability classes a Pipeline can run.
//
//   - Render:    read-only observer of the timeline, side effects only
//   - Extension: pure input -> output transform, no timeline access at all
//   - App:       the only class that may return a replacement timeline
//
// All classes share Descriptor (name and declared input ports). Instances are
// wrapped in a Plugin value whose class is fixed by the constructor used
// (NewRender, NewExtension, NewApp), never by inspecting the concrete type.
package plugin
