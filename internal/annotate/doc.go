// Package annotate implements the provenance annotator: rendering a source
// buffer into a visual tree in which every block node and literal
// inline-text run carries the exact source span it derives from.
//
// The annotator is deterministic and read-only with respect to the buffer.
// Synthetic constructs (thematic-break rules, code fences) receive no
// annotation and are excluded from position lookups.
package annotate
