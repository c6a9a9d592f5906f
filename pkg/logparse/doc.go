// Package logparse parses pipe-delimited log lines of the form
//
//	timestamp|LEVEL|message|key=value|key=value
//
// in three ways that trade allocation for convenience.
//
// # Variants
//
//   - ParseNaive splits every line into a fresh slice, copies each field into
//     an owned string and builds a metadata map. Results outlive the input.
//   - Parse and ParseBytes scan delimiter positions and return Entries whose
//     fields are substrings of the input. One allocation for the result slice
//     plus one per line that carries metadata.
//   - Parser reuses a fixed pool of Entries. Each line is parsed into a pooled
//     slot, handed to a callback and released, so steady-state parsing does
//     not allocate. The Entry passed to the callback is only valid during the
//     call.
//
// # Line rules
//
// Lines are separated by '\n' with an optional trailing '\r'. A line with
// fewer than three fields is skipped. Metadata items without '=' are
// ignored; '=' splits at its first occurrence. All three variants agree on
// every input with distinct metadata keys.
package logparse
