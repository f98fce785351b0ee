package vtree

import (
	"github.com/google/uuid"
)

// generation identifies one render pass. Nodes remember the generation they
// were produced in so resolvers can reject nodes from a discarded tree.
type generation = uuid.UUID

// Tree is the annotated visual tree of one render pass. Trees are produced
// whole and discarded whole; they are never edited semantically after
// annotation, only decorated with transient markers.
type Tree struct {
	Root *Node

	// Generation uniquely identifies this render pass.
	Generation uuid.UUID
}

// NewTree creates an empty tree with a fresh generation.
func NewTree() *Tree {
	gen := uuid.New()
	root := &Node{Kind: KindBlock, gen: gen}
	return &Tree{Root: root, Generation: gen}
}

// Contains reports whether the node belongs to this tree's generation.
// A node from a superseded tree must not be trusted for resolution.
func (t *Tree) Contains(n *Node) bool {
	return n != nil && n.gen == t.Generation
}

// Adopt stamps a detached node with this tree's generation. Used when
// transient markers are created outside a render pass.
func (t *Tree) Adopt(n *Node) {
	n.gen = t.Generation
}

// Walk visits every node in document order.
func (t *Tree) Walk(fn func(*Node) bool) {
	t.Root.Walk(fn)
}

// SplitFragmentAt splits a fragment node at the given byte offset within
// its text, replacing it in its parent with two fragments. The offset must
// be strictly inside the text; boundary insertions do not need a split.
func SplitFragmentAt(frag *Node, off int) (left, right *Node) {
	parent := frag.Parent
	i := parent.ChildIndex(frag)

	left = &Node{Kind: KindFragment, Text: frag.Text[:off], gen: frag.gen}
	right = &Node{Kind: KindFragment, Text: frag.Text[off:], gen: frag.gen}

	parent.RemoveChildAt(i)
	parent.InsertChildAt(i, right)
	parent.InsertChildAt(i, left)
	return left, right
}

// MergeFragments merges the fragment at index i with the fragment at i+1
// under parent, restoring the structure a split created. Both children must
// be plain fragments.
func MergeFragments(parent *Node, i int) *Node {
	a := parent.Children[i]
	b := parent.Children[i+1]

	merged := &Node{Kind: KindFragment, Text: a.Text + b.Text, gen: a.gen}
	parent.RemoveChildAt(i + 1)
	parent.RemoveChildAt(i)
	parent.InsertChildAt(i, merged)
	return merged
}
