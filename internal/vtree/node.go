package vtree

import (
	"strings"

	"github.com/dshills/marksync/internal/markup"
	"github.com/dshills/marksync/internal/source"
)

// Kind identifies what a visual-tree node represents.
type Kind uint8

const (
	// KindBlock is a block-level container (paragraph, heading, quote...).
	KindBlock Kind = iota
	// KindText is an annotated inline-text run. Its children are the
	// display fragments the run is currently split into.
	KindText
	// KindFragment is a literal piece of display text. Fragments carry no
	// provenance of their own; their enclosing KindText run does.
	KindFragment
	// KindCursor is a transient, non-semantic cursor marker.
	KindCursor
	// KindHighlight is a transient wrapper around fragments belonging to a
	// highlighted sub-range.
	KindHighlight
)

// String returns the name of the node kind.
func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindText:
		return "text"
	case KindFragment:
		return "fragment"
	case KindCursor:
		return "cursor"
	case KindHighlight:
		return "highlight"
	default:
		return "unknown"
	}
}

// Node is one node of the rendered visual tree. Nodes annotated with
// provenance carry the half-open source span they derive from; synthetic
// nodes carry none and are excluded from lookups.
type Node struct {
	Kind Kind

	// Block is the block construct for KindBlock nodes.
	Block markup.BlockKind

	// Text is the display text of KindFragment nodes.
	Text string

	// Prov is the source span this node derives from, or nil for
	// synthetic and transient nodes.
	Prov *source.Span

	// Raw is the raw source substring an annotated text run derives
	// from, retained for correspondence-table building.
	Raw string

	// Parent and Children form the tree. Children are in document order.
	Parent   *Node
	Children []*Node

	gen generation
}

// Annotated returns true if the node carries provenance.
func (n *Node) Annotated() bool {
	return n != nil && n.Prov != nil
}

// AppendChild adds a child at the end of the node's children.
func (n *Node) AppendChild(c *Node) {
	c.Parent = n
	c.gen = n.gen
	n.Children = append(n.Children, c)
}

// InsertChildAt inserts a child at index i.
func (n *Node) InsertChildAt(i int, c *Node) {
	c.Parent = n
	c.gen = n.gen
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = c
}

// RemoveChildAt removes and returns the child at index i.
func (n *Node) RemoveChildAt(i int) *Node {
	c := n.Children[i]
	n.Children = append(n.Children[:i], n.Children[i+1:]...)
	c.Parent = nil
	return c
}

// ChildIndex returns the index of c among n's children, or -1.
func (n *Node) ChildIndex(c *Node) int {
	for i, ch := range n.Children {
		if ch == c {
			return i
		}
	}
	return -1
}

// AnnotatedAncestor returns the nearest ancestor-or-self carrying
// provenance, or nil.
func (n *Node) AnnotatedAncestor() *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Annotated() {
			return cur
		}
	}
	return nil
}

// TextRun returns the nearest ancestor-or-self of KindText, or nil.
func (n *Node) TextRun() *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Kind == KindText {
			return cur
		}
	}
	return nil
}

// TextContent returns the concatenated display text of all fragments under
// the node, in document order. Transient markers contribute nothing.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.Walk(func(d *Node) bool {
		if d.Kind == KindFragment {
			b.WriteString(d.Text)
		}
		return true
	})
	return b.String()
}

// Walk visits the node and its descendants in document order. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
