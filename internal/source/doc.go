// Package source provides the immutable source-text snapshot and the line
// index derived from it. These are the foundation for all position
// correspondence: every other package exchanges positions as byte offsets
// or half-open Spans over a Buffer's text.
//
// A Buffer is immutable for the duration of a render pass. Edits replace
// the Buffer wholesale; the LineIndex is rebuilt with it and is read-only
// everywhere else.
//
// Position Types:
//
//   - Offset: raw byte position in the text
//   - Point: line and column position (0-indexed, column in bytes)
//   - Span: half-open [Start, End) byte range; Start == End is a caret
package source
