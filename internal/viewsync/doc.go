// Package viewsync keeps two viewports over the same document scrolled to
// corresponding content: the plain-text buffer view with measured
// soft-wrapped line heights, and the rendered view addressed through node
// geometry. Both directions resolve the content at one viewport's top edge
// through the annotation tables and fall back to scroll-ratio
// proportionality when no annotation is usable. A time-based Guard
// suppresses the reciprocal sync while one direction is in flight.
package viewsync
