package viewsync

import (
	"math"
	"sync"

	"github.com/dshills/marksync/internal/resolve"
	"github.com/dshills/marksync/internal/source"
	"github.com/dshills/marksync/internal/vtree"
)

// NodeGeometry is the capability interface onto the rendered view's
// geometry. The layout layer implements it; the synchronizer never measures
// pixels or cells itself.
type NodeGeometry interface {
	// NodeExtent returns the node's top edge and height in the rendered
	// view's scroll coordinates.
	NodeExtent(n *vtree.Node) (top, height float64, ok bool)

	// NodeAt returns the first annotated node intersecting the horizontal
	// edge at y.
	NodeAt(y float64) (*vtree.Node, bool)

	// ContentHeight returns the total rendered content height.
	ContentHeight() float64
}

// Synchronizer computes, from the content at the top of one viewport, the
// scroll offset that places the corresponding content at the top of the
// other. It reads annotation state but never mutates it; both directions
// degrade to scroll-ratio proportionality when no annotation is usable.
// Heights are installed from the recompute goroutine while scroll events
// read them, so access goes through the synchronizer's own lock.
type Synchronizer struct {
	mu      sync.RWMutex
	heights *LineHeights
}

// NewSynchronizer creates a synchronizer. Heights must be set before the
// buffer side can be mapped precisely; until then everything falls back to
// proportional sync.
func NewSynchronizer() *Synchronizer {
	return &Synchronizer{}
}

// SetHeights installs freshly measured line heights, replacing the old
// ones wholesale.
func (s *Synchronizer) SetHeights(lh *LineHeights) {
	s.mu.Lock()
	s.heights = lh
	s.mu.Unlock()
}

// Heights returns the current measured line heights, or nil.
func (s *Synchronizer) Heights() *LineHeights {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.heights
}

// SyncToVisual maps a buffer viewport scroll position (in rendered rows,
// fractional) to the rendered view's scroll offset that places the
// corresponding content at its top edge.
func (s *Synchronizer) SyncToVisual(buf *source.Buffer, r *resolve.Resolver, geom NodeGeometry, scrollRows float64) float64 {
	lh := s.Heights()
	if lh == nil || lh.TotalRows() == 0 {
		return proportionalToVisual(lh, geom, scrollRows)
	}

	topRow := int(math.Floor(scrollRows))
	subRow := scrollRows - math.Floor(scrollRows)

	line, rowInLine := lh.LineAtRow(topRow)
	lineText := buf.LineText(line)

	// Character offset of the wrapped row's first cell, plus the sub-line
	// fraction carried by the scroll remainder.
	off := buf.Lines().LineStart(line) +
		source.Offset(CellToOffset(lineText, rowInLine*lh.Width()))

	placement, err := r.Locate(off)
	if err != nil {
		return proportionalToVisual(lh, geom, scrollRows)
	}
	top, height, ok := geom.NodeExtent(placement.Node)
	if !ok {
		return proportionalToVisual(lh, geom, scrollRows)
	}

	rowsInNode := float64(lh.RowsOf(line))
	y := top + placement.Fraction*height + subRow*height/math.Max(rowsInNode, 1)
	return clampScroll(y, geom.ContentHeight())
}

// SyncToBuffer maps the rendered view's scroll offset to the buffer
// viewport scroll position (in rendered rows) showing the same content at
// its top edge.
func (s *Synchronizer) SyncToBuffer(buf *source.Buffer, r *resolve.Resolver, geom NodeGeometry, visualTop float64) float64 {
	lh := s.Heights()
	node, ok := geom.NodeAt(visualTop)
	if !ok || lh == nil {
		return proportionalToBuffer(lh, geom, visualTop)
	}
	if !r.Tree().Contains(node) || !node.Annotated() {
		return proportionalToBuffer(lh, geom, visualTop)
	}

	top, height, ok := geom.NodeExtent(node)
	if !ok || height <= 0 {
		return proportionalToBuffer(lh, geom, visualTop)
	}
	fraction := (visualTop - top) / height
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	span := *node.Prov
	off := span.Start + source.Offset(math.Round(float64(span.Len())*fraction))

	line := buf.Lines().LineAt(off)
	lineText := buf.LineText(line)
	col := OffsetToCell(lineText, int(off-buf.Lines().LineStart(line)))

	rowInLine := 0.0
	if w := lh.Width(); w > 0 {
		rowInLine = float64(col) / float64(w)
	}
	rows := float64(lh.FirstRowOf(line)) + rowInLine
	return clampScroll(rows, float64(lh.TotalRows()))
}

// proportionalToVisual is the annotation-free fallback: plain scroll-ratio
// proportionality.
func proportionalToVisual(lh *LineHeights, geom NodeGeometry, scrollRows float64) float64 {
	total := 0
	if lh != nil {
		total = lh.TotalRows()
	}
	if total == 0 {
		return 0
	}
	return clampScroll(geom.ContentHeight()*scrollRows/float64(total), geom.ContentHeight())
}

// proportionalToBuffer mirrors proportionalToVisual for the other
// direction.
func proportionalToBuffer(lh *LineHeights, geom NodeGeometry, visualTop float64) float64 {
	ch := geom.ContentHeight()
	if ch == 0 || lh == nil {
		return 0
	}
	return clampScroll(float64(lh.TotalRows())*visualTop/ch, float64(lh.TotalRows()))
}

func clampScroll(v, max float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

var _ NodeGeometry = (*StackGeometry)(nil)

// StackGeometry is a simple NodeGeometry for views that lay annotated
// nodes out vertically with known per-node heights, in tree document
// order. The demo layout and tests both use it.
type StackGeometry struct {
	nodes   []*vtree.Node
	tops    []float64
	heights []float64
	total   float64
}

// NewStackGeometry creates an empty stack geometry.
func NewStackGeometry() *StackGeometry {
	return &StackGeometry{}
}

// Push appends a node with the given rendered height below the previous
// one.
func (g *StackGeometry) Push(n *vtree.Node, height float64) {
	g.nodes = append(g.nodes, n)
	g.tops = append(g.tops, g.total)
	g.heights = append(g.heights, height)
	g.total += height
}

// NodeExtent implements NodeGeometry.
func (g *StackGeometry) NodeExtent(n *vtree.Node) (float64, float64, bool) {
	for cur := n; cur != nil; cur = cur.Parent {
		for i, cand := range g.nodes {
			if cand == cur {
				return g.tops[i], g.heights[i], true
			}
		}
	}
	return 0, 0, false
}

// NodeAt implements NodeGeometry.
func (g *StackGeometry) NodeAt(y float64) (*vtree.Node, bool) {
	for i, n := range g.nodes {
		if y < g.tops[i]+g.heights[i] && n.Annotated() {
			return n, true
		}
	}
	return nil, false
}

// ContentHeight implements NodeGeometry.
func (g *StackGeometry) ContentHeight() float64 {
	return g.total
}
