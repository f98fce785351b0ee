// Package vtree models the rendered visual tree the annotator produces.
// Block nodes and inline-text runs carry provenance spans back into the
// source text; fragments hold the display text a run is currently split
// into; cursor and highlight nodes are transient decorations that never
// carry meaning.
//
// Each tree is stamped with a generation ID. Resolvers check a node's
// generation before trusting its provenance, so positions can never be
// resolved against a tree that a re-render has already replaced.
package vtree
