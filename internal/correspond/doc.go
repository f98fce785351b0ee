// Package correspond builds the syntax-stripped correspondence tables that
// map rendered-text offsets back to source-text offsets across markup that
// is consumed during rendering.
//
// A single dual-cursor scan drives each table: zero-width syntax tokens
// advance the source cursor alone, matching characters advance both cursors
// and record a mapping, and anything else is treated as rendering noise.
// Tables are monotone and built lazily, once per inline run per render
// pass, never per keystroke.
package correspond
