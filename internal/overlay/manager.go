package overlay

import (
	"errors"

	"github.com/dshills/marksync/internal/resolve"
	"github.com/dshills/marksync/internal/source"
	"github.com/dshills/marksync/internal/vtree"
)

// Errors returned by overlay operations.
var (
	ErrNoPlacement = errors.New("placement has no node")
	ErrNotTextRun  = errors.New("placement node is not a text run")
)

// Manager owns the transient overlay markers on one visual tree: at most
// one cursor marker, plus any number of highlight wraps removable as a
// batch. Markers are never part of the semantic tree; inserting one splits
// a display fragment and removing it restores the pre-insertion structure
// exactly.
type Manager struct {
	tree *vtree.Tree

	// cursor is the currently inserted cursor marker, if any.
	cursor *vtree.Node

	// cursorSplit records whether placing the cursor split a fragment,
	// so removal knows whether a merge restores the original structure.
	cursorSplit bool

	// highlights are the active highlight wraps in insertion order.
	highlights []*vtree.Node
}

// NewManager creates an overlay manager for the given tree.
func NewManager(tree *vtree.Tree) *Manager {
	return &Manager{tree: tree}
}

// Cursor returns the active cursor marker, or nil.
func (m *Manager) Cursor() *vtree.Node {
	return m.cursor
}

// HighlightCount returns the number of active highlight wraps.
func (m *Manager) HighlightCount() int {
	return len(m.highlights)
}

// PlaceCursor inserts a cursor marker at the placement's display offset
// inside its text run. Any previous cursor is removed first: at most one
// cursor marker exists at a time. Interior offsets split the fragment they
// fall in; boundary offsets insert without splitting.
func (m *Manager) PlaceCursor(p resolve.Placement) error {
	if p.Node == nil {
		return ErrNoPlacement
	}
	if p.Node.Kind != vtree.KindText {
		return ErrNotTextRun
	}

	m.RemoveCursor()

	marker := &vtree.Node{Kind: vtree.KindCursor}
	m.insertMarker(p.Node, marker, p.DisplayOffset)
	m.cursor = marker
	return nil
}

// insertMarker places the marker at the display offset within container,
// descending into highlight wraps when the offset falls inside one.
func (m *Manager) insertMarker(container, marker *vtree.Node, off int) {
	cum := 0
	for i := 0; i < len(container.Children); i++ {
		c := container.Children[i]

		// A boundary offset inserts before the child regardless of its
		// kind, so a cursor at a highlight wrap's left edge stays put.
		if off == cum {
			container.InsertChildAt(i, marker)
			m.cursorSplit = false
			return
		}

		if c.Kind != vtree.KindFragment {
			clen := len(c.TextContent())
			if off > cum && off < cum+clen {
				m.insertMarker(c, marker, off-cum)
				return
			}
			cum += clen
			continue
		}

		fEnd := cum + len(c.Text)
		if off > cum && off < fEnd {
			vtree.SplitFragmentAt(c, off-cum)
			container.InsertChildAt(i+1, marker)
			m.cursorSplit = true
			return
		}
		cum = fEnd
	}

	// At or past the end of the container's content: append.
	container.AppendChild(marker)
	m.cursorSplit = false
}

// RemoveCursor deletes the cursor marker and, when insertion split a
// fragment, merges the two halves back. Text content is byte-identical to
// the pre-insertion state.
func (m *Manager) RemoveCursor() {
	if m.cursor == nil {
		return
	}
	parent := m.cursor.Parent
	if parent == nil {
		m.cursor = nil
		return
	}

	i := parent.ChildIndex(m.cursor)
	parent.RemoveChildAt(i)

	if m.cursorSplit && i > 0 && i < len(parent.Children) &&
		parent.Children[i-1].Kind == vtree.KindFragment &&
		parent.Children[i].Kind == vtree.KindFragment {
		vtree.MergeFragments(parent, i-1)
	}

	m.cursor = nil
	m.cursorSplit = false
}

// HighlightSpan wraps every display sub-range the source span covers, one
// wrap per overlapping text run. Wraps from repeated calls accumulate and
// are removed together by ClearHighlights.
func (m *Manager) HighlightSpan(r *resolve.Resolver, span source.Span) {
	m.tree.Walk(func(n *vtree.Node) bool {
		if n.Kind != vtree.KindText {
			return true
		}
		if dStart, dEnd, ok := r.DisplayRange(n, span); ok {
			m.wrapRun(n, dStart, dEnd)
		}
		return false // fragments under a run never need a separate visit
	})
}

// wrapRun wraps the display range [dStart, dEnd) of one run's fragments in
// highlight nodes. Boundary fragments are split first so wrapped fragments
// are always fully covered.
func (m *Manager) wrapRun(run *vtree.Node, dStart, dEnd int) {
	splitBoundary(run, dStart)
	splitBoundary(run, dEnd)

	cum := 0
	var wrap *vtree.Node
	for i := 0; i < len(run.Children); i++ {
		c := run.Children[i]
		if c.Kind != vtree.KindFragment {
			cum += len(c.TextContent())
			wrap = nil
			continue
		}
		fEnd := cum + len(c.Text)

		if cum >= dStart && fEnd <= dEnd && fEnd > cum {
			if wrap == nil {
				wrap = &vtree.Node{Kind: vtree.KindHighlight}
				run.InsertChildAt(i, wrap)
				m.highlights = append(m.highlights, wrap)
				i++
			}
			run.RemoveChildAt(i)
			wrap.AppendChild(c)
			i--
		} else {
			wrap = nil
		}
		cum = fEnd
	}
}

// splitBoundary ensures a fragment boundary exists at display offset d.
func splitBoundary(run *vtree.Node, d int) {
	cum := 0
	for i := 0; i < len(run.Children); i++ {
		c := run.Children[i]
		if c.Kind != vtree.KindFragment {
			cum += len(c.TextContent())
			if cum >= d {
				return
			}
			continue
		}
		fEnd := cum + len(c.Text)
		if d > cum && d < fEnd {
			vtree.SplitFragmentAt(c, d-cum)
			return
		}
		cum = fEnd
		if cum >= d {
			return
		}
	}
}

// ClearHighlights removes every highlight wrap as a batch, unwrapping its
// fragments back into the run and coalescing adjacent fragments so the
// structure matches the pre-highlight state.
func (m *Manager) ClearHighlights() {
	for _, wrap := range m.highlights {
		parent := wrap.Parent
		if parent == nil {
			continue
		}
		i := parent.ChildIndex(wrap)
		parent.RemoveChildAt(i)
		for j, c := range wrap.Children {
			c.Parent = nil
			parent.InsertChildAt(i+j, c)
		}
		wrap.Children = nil
		coalesceFragments(parent)
	}
	m.highlights = nil
}

// coalesceFragments merges consecutive plain-text fragments under parent.
func coalesceFragments(parent *vtree.Node) {
	for i := 0; i+1 < len(parent.Children); {
		if parent.Children[i].Kind == vtree.KindFragment &&
			parent.Children[i+1].Kind == vtree.KindFragment {
			vtree.MergeFragments(parent, i)
			continue
		}
		i++
	}
}
