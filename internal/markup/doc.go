// Package markup supplies the parsing collaborators the correspondence
// engine depends on: a Parser interface reporting block-level line ranges,
// a built-in Scanner implementation, and the TokenSet grammar table of
// syntax consumed during rendering.
//
// The engine itself never interprets markup beyond this table; a different
// parser can be substituted as long as it reports line ranges.
package markup
