package annotate

import (
	"testing"

	"github.com/dshills/marksync/internal/source"
	"github.com/dshills/marksync/internal/vtree"
)

func TestRenderAnnotatesBlocks(t *testing.T) {
	buf := source.NewBuffer("# Title\n\n**bold** text\n")
	tree, err := New().Render(buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	blocks := tree.Root.Children
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}

	// Heading covers line 0: [0:7).
	h := blocks[0]
	if !h.Annotated() || h.Prov.Start != 0 || h.Prov.End != 7 {
		t.Errorf("heading span = %v, want [0:7)", h.Prov)
	}

	// Paragraph covers line 2: [9:22).
	p := blocks[1]
	if !p.Annotated() || p.Prov.Start != 9 || p.Prov.End != 22 {
		t.Errorf("paragraph span = %v, want [9:22)", p.Prov)
	}
}

func TestRenderInlineRuns(t *testing.T) {
	buf := source.NewBuffer("**bold** text")
	tree, err := New().Render(buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	para := tree.Root.Children[0]
	if len(para.Children) != 1 {
		t.Fatalf("got %d runs, want 1", len(para.Children))
	}

	run := para.Children[0]
	if run.Kind != vtree.KindText {
		t.Fatalf("run kind = %v, want text", run.Kind)
	}
	if run.Raw != "**bold** text" {
		t.Errorf("run raw = %q", run.Raw)
	}
	if got := run.TextContent(); got != "bold text" {
		t.Errorf("run display = %q, want %q", got, "bold text")
	}
	if run.Prov.Start != 0 || run.Prov.End != 13 {
		t.Errorf("run span = %v, want [0:13)", run.Prov)
	}
}

func TestRenderDeterministic(t *testing.T) {
	buf := source.NewBuffer("# A\n\npara *x*\n\n- item\n")
	a := New()

	t1, err := a.Render(buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	t2, err := a.Render(buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var spans1, spans2 []source.Span
	collect := func(out *[]source.Span) func(*vtree.Node) bool {
		return func(n *vtree.Node) bool {
			if n.Annotated() {
				*out = append(*out, *n.Prov)
			}
			return true
		}
	}
	t1.Walk(collect(&spans1))
	t2.Walk(collect(&spans2))

	if len(spans1) == 0 || len(spans1) != len(spans2) {
		t.Fatalf("span counts differ: %d vs %d", len(spans1), len(spans2))
	}
	for i := range spans1 {
		if spans1[i] != spans2[i] {
			t.Errorf("span %d differs: %v vs %v", i, spans1[i], spans2[i])
		}
	}

	if t1.Generation == t2.Generation {
		t.Error("each render pass must get a fresh generation")
	}
}

func TestRenderSiblingInvariants(t *testing.T) {
	buf := source.NewBuffer("# A\n\nfirst\n\nsecond line\nmore\n\n> quote\n")
	tree, err := New().Render(buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	// No-overlap and monotonic order among annotated siblings.
	tree.Walk(func(n *vtree.Node) bool {
		var prev *source.Span
		for _, c := range n.Children {
			if !c.Annotated() {
				continue
			}
			if prev != nil && c.Prov.Start < prev.End {
				t.Errorf("sibling spans overlap or out of order: %v then %v", prev, c.Prov)
			}
			prev = c.Prov
		}
		return true
	})

	// Containment: parent spans contain annotated children.
	tree.Walk(func(n *vtree.Node) bool {
		if !n.Annotated() {
			return true
		}
		for _, c := range n.Children {
			if c.Annotated() && !n.Prov.ContainsSpan(*c.Prov) {
				t.Errorf("parent %v does not contain child %v", n.Prov, c.Prov)
			}
		}
		return true
	})
}

func TestRenderCodeBlock(t *testing.T) {
	buf := source.NewBuffer("```\ncode line\n```\n")
	tree, err := New().Render(buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	code := tree.Root.Children[0]
	if len(code.Children) != 1 {
		t.Fatalf("got %d code runs, want 1 (fences are synthetic)", len(code.Children))
	}
	run := code.Children[0]
	if run.TextContent() != "code line" {
		t.Errorf("code run = %q, want %q", run.TextContent(), "code line")
	}
	if run.Prov.Start != 4 || run.Prov.End != 13 {
		t.Errorf("code run span = %v, want [4:13)", run.Prov)
	}
}

func TestRenderThematicBreakSynthetic(t *testing.T) {
	buf := source.NewBuffer("---\n")
	tree, err := New().Render(buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	hr := tree.Root.Children[0]
	if len(hr.Children) != 0 {
		t.Errorf("thematic break should have no inline runs, got %d", len(hr.Children))
	}
	// The block itself still carries its line range.
	if !hr.Annotated() {
		t.Error("block node should carry its line range")
	}
}

func TestRenderNilBuffer(t *testing.T) {
	if _, err := New().Render(nil); err == nil {
		t.Error("expected error for nil buffer")
	}
}
