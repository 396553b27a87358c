// Package topology persists pipeline wiring as a Document.
//
// A Document names plugin types by their catalog id, never by memory
// identity. Instance ids inside a document are references: Import either
// keeps them (they must then be UUIDs) or allocates fresh ids and remaps
// every connection and baseline slot.
//
// Documents can be written in YAML, JSON, or CUE. CUE documents are
// unified with an embedded #Pipeline schema before decoding.
package topology
