package correspond

import (
	"sort"
	"unicode/utf8"

	"github.com/dshills/marksync/internal/markup"
	"github.com/dshills/marksync/internal/source"
)

// Table maps display-text byte offsets of one inline run to byte offsets
// within the run's raw source text. Mappings are monotonically
// non-decreasing; indices past the last resolved character clamp to the
// offset just past the final matched source character.
type Table struct {
	// toSource[i] is the raw-text offset for display byte i.
	toSource []int

	// tail is the raw-text offset just past the last matched character.
	tail int
}

// Build constructs the table for one inline run with a dual-cursor scan
// over the raw source text and its rendered display text.
//
// At each step: a zero-width syntax token at the source cursor advances the
// source cursor alone; matching characters record a mapping and advance
// both cursors; anything else is rendering noise and advances the source
// cursor alone. The scan is O(len(raw) + len(display)).
func Build(raw, display string, ts *markup.TokenSet) *Table {
	t := &Table{toSource: make([]int, len(display))}

	si, di := 0, 0
	atLineStart := true

	for si < len(raw) && di < len(display) {
		if atLineStart {
			atLineStart = false
			if n := ts.LineMarkerLen(raw[si:]); n > 0 {
				si += n
				continue
			}
		}

		rest := raw[si:]

		if n := ts.MatchLinkClose(rest); n > 0 {
			si += n
			continue
		}
		if ts.Links && (rest[0] == '[' || rest[0] == ']') {
			si++
			continue
		}
		if n := ts.MatchPaired(rest); n > 0 {
			si += n
			continue
		}

		sr, sn := utf8.DecodeRuneInString(rest)
		dr, dn := utf8.DecodeRuneInString(display[di:])

		if sr == dr {
			for b := 0; b < dn; b++ {
				t.toSource[di+b] = si
			}
			si += sn
			di += dn
			t.tail = si
			if sr == '\n' {
				atLineStart = true
			}
			continue
		}

		// Rendering noise: a deliberate leniency, not a hard failure.
		si += sn
		if sr == '\n' {
			atLineStart = true
		}
	}

	// Pad trailing display bytes by clamping to the final mapped offset.
	for ; di < len(display); di++ {
		t.toSource[di] = t.tail
	}

	return t
}

// SourceOffset returns the raw-text byte offset for the given display byte
// index. Out-of-range indices clamp.
func (t *Table) SourceOffset(displayIdx int) int {
	if displayIdx < 0 {
		displayIdx = 0
	}
	if displayIdx >= len(t.toSource) {
		return t.tail
	}
	return t.toSource[displayIdx]
}

// DisplayOffset returns the smallest display byte index whose mapping is at
// least the given raw-text offset. Inverse of SourceOffset; used to place a
// caret in display text for a source position. Offsets past the final
// mapping clamp to the display length.
func (t *Table) DisplayOffset(srcRel int) int {
	return sort.Search(len(t.toSource), func(i int) bool {
		return t.toSource[i] >= srcRel
	})
}

// Len returns the display length the table covers, in bytes.
func (t *Table) Len() int {
	return len(t.toSource)
}

// Resolve translates a display offset within the run into an absolute
// source offset, given the run's provenance span.
func (t *Table) Resolve(span source.Span, displayIdx int) source.Offset {
	off := span.Start + source.Offset(t.SourceOffset(displayIdx))
	if off > span.End {
		off = span.End
	}
	return off
}
