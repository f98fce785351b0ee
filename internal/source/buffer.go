package source

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrSpanInvalid      = errors.New("invalid span")
)

// Buffer is an immutable snapshot of the source text for one render pass.
// It is the single source of truth for offsets; edits produce a new Buffer
// rather than mutating an existing one, so a Buffer is always safe to share
// across the annotation tables built from it.
type Buffer struct {
	text  string
	lines *LineIndex
}

// NewBuffer creates a buffer from the given text. Line endings are
// normalized to LF so offsets are stable across platforms.
func NewBuffer(text string) *Buffer {
	text = normalizeLineEndings(text)
	return &Buffer{
		text:  text,
		lines: NewLineIndex(text),
	}
}

// normalizeLineEndings converts CRLF and CR line endings to LF.
func normalizeLineEndings(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Text returns the full source text.
func (b *Buffer) Text() string {
	return b.text
}

// Len returns the total byte length of the text.
func (b *Buffer) Len() Offset {
	return Offset(len(b.text))
}

// Slice returns the text within the given span. The span is clamped to the
// buffer bounds.
func (b *Buffer) Slice(s Span) string {
	s = s.Ordered().Clamp(b.Len())
	return b.text[s.Start:s.End]
}

// RuneAt returns the rune at the given byte offset and its size in bytes.
// Returns utf8.RuneError and size 0 if offset is out of range.
func (b *Buffer) RuneAt(off Offset) (rune, int) {
	if off < 0 || off >= b.Len() {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(b.text[off:])
}

// Lines returns the line index derived from this buffer's text.
func (b *Buffer) Lines() *LineIndex {
	return b.lines
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() uint32 {
	return b.lines.Count()
}

// LineText returns the text of a specific line, without the trailing newline.
func (b *Buffer) LineText(line uint32) string {
	return b.Slice(b.lines.LineSpan(line))
}

// OffsetToPoint converts a byte offset to a line/column position.
func (b *Buffer) OffsetToPoint(off Offset) Point {
	if off < 0 {
		return Point{}
	}
	if off > b.Len() {
		off = b.Len()
	}
	line := b.lines.LineAt(off)
	return Point{Line: line, Column: uint32(off - b.lines.LineStart(line))}
}

// PointToOffset converts a line/column position to a byte offset. The
// column is clamped to the line's length.
func (b *Buffer) PointToOffset(p Point) Offset {
	start := b.lines.LineStart(p.Line)
	end := b.lines.LineEnd(p.Line)
	off := start + Offset(p.Column)
	if off > end {
		off = end
	}
	return off
}
