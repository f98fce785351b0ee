package resolve

import (
	"errors"
	"math"

	"github.com/dshills/marksync/internal/correspond"
	"github.com/dshills/marksync/internal/source"
	"github.com/dshills/marksync/internal/vtree"
)

// Errors in the resolution taxonomy. None of these are fatal: call sites
// degrade to a defined fallback (enclosing block, proportional offset, or
// "no marker") and precision silently drops.
var (
	// ErrUnresolved means no usable annotation covers the position: an
	// empty line, a synthetic node, a gap between blocks.
	ErrUnresolved = errors.New("position has no usable annotation")

	// ErrStaleTree means the node being resolved belongs to a tree
	// generation that a re-render has already replaced.
	ErrStaleTree = errors.New("node belongs to a stale tree generation")
)

// Hit is a text insertion point reported by a platform coordinate-to-text
// primitive: a visual-tree node and, for fragments, a byte offset into the
// fragment's display text.
type Hit struct {
	Node   *vtree.Node
	Offset int
}

// HitTester is the platform capability that maps viewport coordinates to
// the nearest text insertion point. Implementations come from the layout
// layer; the resolver never does geometry itself.
type HitTester interface {
	HitTest(x, y int) (Hit, bool)
}

// Placement is the inverse-resolution result: the most specific annotated
// node containing a source position and the fractional offset inside it.
type Placement struct {
	// Node is the annotated node the position falls in.
	Node *vtree.Node

	// DisplayOffset is the byte offset into the node's display text, for
	// text runs. Zero for block nodes.
	DisplayOffset int

	// Fraction is the position inside the node, in [0, 1].
	Fraction float64
}

// Resolver answers position queries against one render pass: an annotated
// tree, its correspondence cache, and the buffer both derive from. It reads
// but never mutates any of them.
type Resolver struct {
	tree  *vtree.Tree
	cache *correspond.Cache
	buf   *source.Buffer
}

// New creates a resolver over one render pass.
func New(tree *vtree.Tree, cache *correspond.Cache, buf *source.Buffer) *Resolver {
	return &Resolver{tree: tree, cache: cache, buf: buf}
}

// Tree returns the tree generation this resolver answers for.
func (r *Resolver) Tree() *vtree.Tree {
	return r.tree
}

// ResolveHit converts a text insertion point into a source span: a caret
// for precise hits, the enclosing block's full range when only block-level
// annotation is available.
func (r *Resolver) ResolveHit(hit Hit) (source.Span, error) {
	if hit.Node == nil {
		return source.Span{}, ErrUnresolved
	}
	if !r.tree.Contains(hit.Node) {
		return source.Span{}, ErrStaleTree
	}

	if run := hit.Node.TextRun(); run != nil && run.Annotated() {
		display := r.cumulativeDisplayOffset(run, hit)
		return source.Caret(r.displayToSource(run, display)), nil
	}

	// Fall back to the nearest enclosing annotated block's range.
	if anc := hit.Node.AnnotatedAncestor(); anc != nil {
		return *anc.Prov, nil
	}
	return source.Span{}, ErrUnresolved
}

// ResolveSelection resolves both endpoints of a live selection
// independently and merges them into one ordered source span. Endpoints in
// different annotated nodes still produce a single coherent range.
func (r *Resolver) ResolveSelection(anchor, focus Hit) (source.Span, error) {
	a, errA := r.ResolveHit(anchor)
	b, errB := r.ResolveHit(focus)

	switch {
	case errA != nil && errB != nil:
		return source.Span{}, errA
	case errA != nil:
		return b.Ordered(), nil
	case errB != nil:
		return a.Ordered(), nil
	}

	return a.Union(b).Ordered(), nil
}

// BlockMidpoint returns the midpoint of the node's enclosing annotated
// block, the fallback for a failed platform hit test.
func (r *Resolver) BlockMidpoint(n *vtree.Node) (source.Span, error) {
	if n == nil {
		return source.Span{}, ErrUnresolved
	}
	if !r.tree.Contains(n) {
		return source.Span{}, ErrStaleTree
	}
	anc := n.AnnotatedAncestor()
	if anc == nil {
		return source.Span{}, ErrUnresolved
	}
	mid := anc.Prov.Start + anc.Prov.Len()/2
	return source.Caret(mid), nil
}

// Locate finds the most specific annotated node containing the source
// offset, preferring the smallest range and, on ties, inline text over
// blocks. Positions strictly between two ranges (an empty line, a gap
// between blocks) return ErrUnresolved: no marker, never a guess.
func (r *Resolver) Locate(off source.Offset) (Placement, error) {
	var best *vtree.Node
	r.tree.Walk(func(n *vtree.Node) bool {
		if !n.Annotated() {
			return true
		}
		if off < n.Prov.Start || off > n.Prov.End {
			return false // children are contained; skip the subtree
		}
		if best == nil || betterMatch(n, best) {
			best = n
		}
		return true
	})

	if best == nil {
		return Placement{}, ErrUnresolved
	}

	return r.placementIn(best, off), nil
}

// betterMatch reports whether candidate n is more specific than cur:
// smaller range wins; equal ranges prefer text runs over blocks.
func betterMatch(n, cur *vtree.Node) bool {
	nl, cl := n.Prov.Len(), cur.Prov.Len()
	if nl != cl {
		return nl < cl
	}
	return n.Kind == vtree.KindText && cur.Kind != vtree.KindText
}

// placementIn computes the display offset and fraction for off inside node.
func (r *Resolver) placementIn(node *vtree.Node, off source.Offset) Placement {
	p := Placement{Node: node}

	if node.Kind == vtree.KindText {
		if tbl := r.cache.For(node); tbl != nil && tbl.Len() > 0 {
			p.DisplayOffset = tbl.DisplayOffset(int(off - node.Prov.Start))
			p.Fraction = float64(p.DisplayOffset) / float64(tbl.Len())
			return p
		}
	}

	if l := node.Prov.Len(); l > 0 {
		p.Fraction = float64(off-node.Prov.Start) / float64(l)
	}
	if p.Fraction < 0 {
		p.Fraction = 0
	}
	if p.Fraction > 1 {
		p.Fraction = 1
	}
	return p
}

// DisplayRange maps a source span to the display byte range it covers
// within an annotated text run, for highlighting sub-ranges. The span is
// intersected with the run's provenance first.
func (r *Resolver) DisplayRange(run *vtree.Node, span source.Span) (start, end int, ok bool) {
	if run == nil || run.Kind != vtree.KindText || !run.Annotated() {
		return 0, 0, false
	}
	inter := span.Ordered().Intersect(*run.Prov)
	if inter.Start >= inter.End {
		return 0, 0, false
	}

	if tbl := r.cache.For(run); tbl != nil && tbl.Len() > 0 {
		start = tbl.DisplayOffset(int(inter.Start - run.Prov.Start))
		end = tbl.DisplayOffset(int(inter.End - run.Prov.Start))
	} else {
		total := len(run.TextContent())
		l := run.Prov.Len()
		if l == 0 || total == 0 {
			return 0, 0, false
		}
		start = int(math.Round(float64(total) * float64(inter.Start-run.Prov.Start) / float64(l)))
		end = int(math.Round(float64(total) * float64(inter.End-run.Prov.Start) / float64(l)))
	}
	if end <= start {
		return 0, 0, false
	}
	return start, end, true
}

// cumulativeDisplayOffset converts an in-fragment offset into the offset
// within the run's whole display text. Later transforms may split one
// logical run into several fragments, so lengths of preceding fragments
// under the same run are summed.
func (r *Resolver) cumulativeDisplayOffset(run *vtree.Node, hit Hit) int {
	if hit.Node == run {
		return hit.Offset
	}

	total := 0
	found := false
	run.Walk(func(n *vtree.Node) bool {
		if found {
			return false
		}
		if n == hit.Node {
			total += hit.Offset
			found = true
			return false
		}
		if n.Kind == vtree.KindFragment {
			total += len(n.Text)
		}
		return true
	})
	return total
}

// displayToSource applies the run's correspondence table, or the
// proportional fallback when no table can be built.
func (r *Resolver) displayToSource(run *vtree.Node, display int) source.Offset {
	if tbl := r.cache.For(run); tbl != nil && tbl.Len() > 0 {
		return tbl.Resolve(*run.Prov, display)
	}

	// Proportional fallback: sourceStart + round(len * ratio).
	total := len(run.TextContent())
	if total == 0 {
		return run.Prov.Start
	}
	ratio := float64(display) / float64(total)
	off := run.Prov.Start + source.Offset(math.Round(float64(run.Prov.Len())*ratio))
	if off > run.Prov.End {
		off = run.Prov.End
	}
	return off
}
