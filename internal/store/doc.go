// Package store provides SQLite-backed persistence for rea.
//
// Two kinds of records are kept:
//   - Timelines: named event tables, replaced atomically on save
//   - Topologies: named pipeline documents stored as JSON
//
// Every saved timeline carries its digest. LoadTimeline recomputes it and
// refuses a table whose contents no longer match.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
