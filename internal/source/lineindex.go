package source

import "sort"

// LineIndex maps line numbers to byte offsets of their first character.
// It is a pure function of the buffer text: rebuilt on every buffer change,
// read-only everywhere else.
type LineIndex struct {
	// starts[i] is the byte offset of line i's first character.
	// starts[0] is always 0, even for empty text.
	starts []Offset

	// length is the total byte length of the indexed text.
	length Offset
}

// NewLineIndex builds a line index for the given text.
func NewLineIndex(text string) *LineIndex {
	starts := make([]Offset, 1, 16)
	starts[0] = 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, Offset(i+1))
		}
	}
	return &LineIndex{starts: starts, length: Offset(len(text))}
}

// Count returns the number of lines. Empty text has one (empty) line.
func (ix *LineIndex) Count() uint32 {
	return uint32(len(ix.starts))
}

// LineStart returns the byte offset of the start of the given line.
// Lines past the end clamp to the text length.
func (ix *LineIndex) LineStart(line uint32) Offset {
	if int(line) >= len(ix.starts) {
		return ix.length
	}
	return ix.starts[line]
}

// LineEnd returns the byte offset of the end of the given line, before its
// newline.
func (ix *LineIndex) LineEnd(line uint32) Offset {
	if int(line)+1 < len(ix.starts) {
		return ix.starts[line+1] - 1
	}
	return ix.length
}

// LineSpan returns the span of the given line, excluding the newline.
func (ix *LineIndex) LineSpan(line uint32) Span {
	return Span{Start: ix.LineStart(line), End: ix.LineEnd(line)}
}

// SpanForLines returns the span covering lines [startLine, endLine]
// inclusive, excluding the final newline.
func (ix *LineIndex) SpanForLines(startLine, endLine uint32) Span {
	return Span{Start: ix.LineStart(startLine), End: ix.LineEnd(endLine)}
}

// LineAt returns the line containing the given byte offset. Offsets past
// the end of the text map to the last line.
func (ix *LineIndex) LineAt(off Offset) uint32 {
	if off <= 0 {
		return 0
	}
	// First start strictly greater than off, minus one.
	i := sort.Search(len(ix.starts), func(i int) bool {
		return ix.starts[i] > off
	})
	return uint32(i - 1)
}
