package viewsync

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/dshills/marksync/internal/source"
)

// LineHeights holds the measured rendered height, in rows, of every source
// line at one wrap width. Soft-wrapped lines occupy multiple rows; heights
// are measured from the text, never assumed uniform. Recomputed on resize
// and on text change, not on scroll.
type LineHeights struct {
	width int

	// rows[i] is the rendered row count of source line i, always >= 1.
	rows []int

	// firstRow[i] is the first rendered row of source line i.
	firstRow []int

	total int
}

// MeasureBuffer measures every line of the buffer at the given wrap width
// in cells. A non-positive width disables wrapping.
func MeasureBuffer(buf *source.Buffer, width int) *LineHeights {
	count := int(buf.LineCount())
	lh := &LineHeights{
		width:    width,
		rows:     make([]int, count),
		firstRow: make([]int, count),
	}

	row := 0
	for i := 0; i < count; i++ {
		lh.firstRow[i] = row
		r := rowsForLine(buf.LineText(uint32(i)), width)
		lh.rows[i] = r
		row += r
	}
	lh.total = row
	return lh
}

// rowsForLine returns how many rendered rows a line occupies at the wrap
// width. Widths are measured in terminal cells.
func rowsForLine(line string, width int) int {
	if width <= 0 {
		return 1
	}
	cells := runewidth.StringWidth(line)
	if cells <= width {
		return 1
	}
	rows := cells / width
	if cells%width != 0 {
		rows++
	}
	return rows
}

// Width returns the wrap width the heights were measured at.
func (lh *LineHeights) Width() int {
	return lh.width
}

// TotalRows returns the total rendered row count.
func (lh *LineHeights) TotalRows() int {
	return lh.total
}

// RowsOf returns the rendered row count of a source line.
func (lh *LineHeights) RowsOf(line uint32) int {
	if int(line) >= len(lh.rows) {
		return 1
	}
	return lh.rows[line]
}

// FirstRowOf returns the first rendered row of a source line.
func (lh *LineHeights) FirstRowOf(line uint32) int {
	if int(line) >= len(lh.firstRow) {
		return lh.total
	}
	return lh.firstRow[line]
}

// LineAtRow returns the source line occupying the given rendered row and
// the row's index within that line's wrapped rows. Rows past the end clamp
// to the last line.
func (lh *LineHeights) LineAtRow(row int) (line uint32, rowInLine int) {
	if row < 0 || len(lh.rows) == 0 {
		return 0, 0
	}
	if row >= lh.total {
		last := len(lh.rows) - 1
		return uint32(last), lh.rows[last] - 1
	}

	// Binary search over firstRow.
	lo, hi := 0, len(lh.firstRow)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if lh.firstRow[mid] <= row {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return uint32(lo), row - lh.firstRow[lo]
}

// CellToOffset returns the byte offset within the line text of the grapheme
// cluster at the given cell column, walking clusters so wide characters and
// combining sequences stay intact.
func CellToOffset(line string, cell int) int {
	if cell <= 0 {
		return 0
	}
	g := uniseg.NewGraphemes(line)
	col := 0
	for g.Next() {
		w := runewidth.StringWidth(g.Str())
		if col+w > cell {
			start, _ := g.Positions()
			return start
		}
		col += w
	}
	return len(line)
}

// OffsetToCell returns the cell column of the given byte offset within the
// line text.
func OffsetToCell(line string, off int) int {
	if off <= 0 {
		return 0
	}
	g := uniseg.NewGraphemes(line)
	col := 0
	for g.Next() {
		start, _ := g.Positions()
		if start >= off {
			return col
		}
		col += runewidth.StringWidth(g.Str())
	}
	return col
}
