// Package overlay manages the transient, non-semantic markers decorating a
// visual tree: a single cursor marker and batches of selection-highlight
// wraps. Insertion splits display fragments; removal restores the
// pre-insertion structure exactly, so overlays never leak into the
// semantic tree or survive a render pass.
package overlay
