// Package value defines the closed set of payloads that can travel between
// plugin ports.
//
// Every port declares a Type tag. A Connection is only legal when both ends
// declare the same tag, so type checking is a comparison of two Type values
// and never a runtime downcast.
//
// Supported payloads:
//   - String:     UTF-8 text
//   - Int:        int64 (no floats, they break determinism)
//   - Bool
//   - Time:       an instant, always normalised to UTC
//   - Duration
//   - StringList: ordered list of strings
//
// MarshalCanonical produces RFC 8785 style JSON (sorted keys, NFC strings, no
// HTML escaping) so buffer contents and timelines can be compared byte for
// byte across runs.
package value
