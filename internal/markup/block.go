package markup

import "fmt"

// BlockKind identifies the construct a block-level node represents.
type BlockKind uint8

const (
	// KindParagraph is a run of plain text lines.
	KindParagraph BlockKind = iota
	// KindHeading is an ATX heading line.
	KindHeading
	// KindBlockquote is a quoted region.
	KindBlockquote
	// KindListItem is a single bulleted or ordered list item.
	KindListItem
	// KindCodeBlock is a fenced code block.
	KindCodeBlock
	// KindThematicBreak is a horizontal rule.
	KindThematicBreak
)

// String returns the name of the block kind.
func (k BlockKind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindBlockquote:
		return "blockquote"
	case KindListItem:
		return "list-item"
	case KindCodeBlock:
		return "code-block"
	case KindThematicBreak:
		return "thematic-break"
	default:
		return "unknown"
	}
}

// Block describes one block-level construct with its source line range.
// StartLine and EndLine are 0-indexed and inclusive.
type Block struct {
	Kind      BlockKind
	StartLine uint32
	EndLine   uint32

	// Level is the heading level for KindHeading, otherwise 0.
	Level int
}

// String returns a human-readable representation of the block.
func (b Block) String() string {
	return fmt.Sprintf("%s lines %d-%d", b.Kind, b.StartLine, b.EndLine)
}

// Parser supplies block-level line ranges for a source text. Generic markup
// parsing is an external concern: any parser that can report which lines
// each block covers can drive the annotator. Scanner is the built-in
// implementation.
type Parser interface {
	Parse(text string) []Block
}
