package annotate

import (
	"errors"

	"github.com/dshills/marksync/internal/markup"
	"github.com/dshills/marksync/internal/source"
	"github.com/dshills/marksync/internal/vtree"
)

// ErrNilBuffer is returned when Render is called without a buffer.
var ErrNilBuffer = errors.New("nil source buffer")

// Annotator renders a source buffer to a visual tree in which every block
// node and every literal inline-text run carries the source span it derives
// from. The annotator never mutates the buffer; identical input always
// yields identical spans.
type Annotator struct {
	parser markup.Parser
	tokens *markup.TokenSet
}

// Option configures an Annotator.
type Option func(*Annotator)

// WithParser sets the block-level parser collaborator.
func WithParser(p markup.Parser) Option {
	return func(a *Annotator) {
		a.parser = p
	}
}

// WithTokenSet sets the syntax token table used to derive display text.
func WithTokenSet(ts *markup.TokenSet) Option {
	return func(a *Annotator) {
		a.tokens = ts
	}
}

// New creates an annotator with the built-in scanner and default tokens.
func New(opts ...Option) *Annotator {
	a := &Annotator{
		parser: markup.NewScanner(),
		tokens: markup.DefaultTokenSet(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Tokens returns the token table the annotator renders with. Correspondence
// tables must be built against the same table.
func (a *Annotator) Tokens() *markup.TokenSet {
	return a.tokens
}

// Render produces the annotated visual tree for the buffer's current text.
// Block nodes inherit their span from the parser's line range translated
// through the line index; each literal inline run becomes its own annotated
// text node with the raw source substring retained.
func (a *Annotator) Render(buf *source.Buffer) (*vtree.Tree, error) {
	if buf == nil {
		return nil, ErrNilBuffer
	}

	tree := vtree.NewTree()
	blocks := a.parser.Parse(buf.Text())

	for _, blk := range blocks {
		span := buf.Lines().SpanForLines(blk.StartLine, blk.EndLine)
		node := &vtree.Node{
			Kind:  vtree.KindBlock,
			Block: blk.Kind,
			Prov:  &span,
		}
		tree.Root.AppendChild(node)

		switch blk.Kind {
		case markup.KindThematicBreak:
			// Rendered output is synthetic (a rule); no inline run.

		case markup.KindCodeBlock:
			a.annotateCodeBlock(buf, blk, node)

		default:
			a.annotateInlineRuns(buf, blk, node)
		}
	}

	return tree, nil
}

// annotateInlineRuns wraps each source line of the block as an annotated
// inline-text run whose display text has the consumed syntax stripped.
func (a *Annotator) annotateInlineRuns(buf *source.Buffer, blk markup.Block, parent *vtree.Node) {
	for line := blk.StartLine; line <= blk.EndLine; line++ {
		span := buf.Lines().LineSpan(line)
		raw := buf.Slice(span)
		display := markup.StripInline(raw, a.tokens)
		if display == "" && raw == "" {
			continue
		}

		runSpan := span
		run := &vtree.Node{
			Kind: vtree.KindText,
			Prov: &runSpan,
			Raw:  raw,
		}
		parent.AppendChild(run)
		run.AppendChild(&vtree.Node{Kind: vtree.KindFragment, Text: display})
	}
}

// annotateCodeBlock emits the interior lines of a fenced code block
// verbatim. The fence lines themselves render to nothing and stay
// unannotated.
func (a *Annotator) annotateCodeBlock(buf *source.Buffer, blk markup.Block, parent *vtree.Node) {
	if blk.EndLine <= blk.StartLine {
		return
	}
	last := blk.EndLine
	if markup.IsFenceLine(buf.LineText(last)) {
		last--
	}
	for line := blk.StartLine + 1; line <= last; line++ {
		span := buf.Lines().LineSpan(line)
		raw := buf.Slice(span)

		runSpan := span
		run := &vtree.Node{
			Kind: vtree.KindText,
			Prov: &runSpan,
			Raw:  raw,
		}
		parent.AppendChild(run)
		run.AppendChild(&vtree.Node{Kind: vtree.KindFragment, Text: raw})
	}
}
