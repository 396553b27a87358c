// Package builtin provides the plugins compiled into rea and the catalog
// that makes them addressable by type id from topology documents.
//
// Extensions: const-<type>, concat, sum, minutes.
// Apps: add-event, tag, shift, pomodoro.
// Renders: agenda, summary.
package builtin
