package viewsync

import (
	"strings"
	"testing"
	"time"

	"github.com/dshills/marksync/internal/annotate"
	"github.com/dshills/marksync/internal/correspond"
	"github.com/dshills/marksync/internal/resolve"
	"github.com/dshills/marksync/internal/source"
)

func TestMeasureBufferWrapping(t *testing.T) {
	long := strings.Repeat("x", 200)
	buf := source.NewBuffer("short\n" + long + "\nend")

	lh := MeasureBuffer(buf, 80)

	if lh.RowsOf(0) != 1 {
		t.Errorf("short line rows = %d, want 1", lh.RowsOf(0))
	}
	if lh.RowsOf(1) != 3 {
		t.Errorf("200-cell line rows = %d, want 3", lh.RowsOf(1))
	}
	if lh.TotalRows() != 5 {
		t.Errorf("total rows = %d, want 5", lh.TotalRows())
	}
	if lh.FirstRowOf(2) != 4 {
		t.Errorf("last line first row = %d, want 4", lh.FirstRowOf(2))
	}
}

func TestLineAtRow(t *testing.T) {
	long := strings.Repeat("x", 200)
	buf := source.NewBuffer("short\n" + long + "\nend")
	lh := MeasureBuffer(buf, 80)

	tests := []struct {
		row       int
		line      uint32
		rowInLine int
	}{
		{0, 0, 0},
		{1, 1, 0},
		{2, 1, 1},
		{3, 1, 2},
		{4, 2, 0},
		{99, 2, 0}, // clamps
	}
	for _, tt := range tests {
		line, ril := lh.LineAtRow(tt.row)
		if line != tt.line || ril != tt.rowInLine {
			t.Errorf("LineAtRow(%d) = (%d,%d), want (%d,%d)",
				tt.row, line, ril, tt.line, tt.rowInLine)
		}
	}
}

func TestCellOffsetConversion(t *testing.T) {
	line := "abc日本語def"

	// '日' occupies two cells.
	if off := CellToOffset(line, 3); off != 3 {
		t.Errorf("CellToOffset(3) = %d, want 3", off)
	}
	if off := CellToOffset(line, 5); off != 6 {
		t.Errorf("CellToOffset(5) = %d, want 6 (second CJK char)", off)
	}
	if col := OffsetToCell(line, 6); col != 5 {
		t.Errorf("OffsetToCell(6) = %d, want 5", col)
	}
	// A cell in the middle of a wide char does not split it.
	if off := CellToOffset(line, 4); off != 3 {
		t.Errorf("CellToOffset(4) = %d, want 3", off)
	}
}

func TestGuard(t *testing.T) {
	g := NewGuard(50 * time.Millisecond)
	clock := time.Now()
	g.now = func() time.Time { return clock }

	if g.Active() {
		t.Error("new guard should be inactive")
	}
	g.Begin()
	if !g.Active() {
		t.Error("guard should be active after Begin")
	}

	clock = clock.Add(60 * time.Millisecond)
	if g.Active() {
		t.Error("guard should expire after its window")
	}

	g.Begin()
	g.Cancel()
	if g.Active() {
		t.Error("guard should be inactive after Cancel")
	}
}

// renderPass builds a full render pass plus a stack geometry giving each
// top-level block a rendered height.
func renderPass(t *testing.T, text string, blockHeight float64) (*source.Buffer, *resolve.Resolver, *StackGeometry) {
	t.Helper()
	buf := source.NewBuffer(text)
	ann := annotate.New()
	tree, err := ann.Render(buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	r := resolve.New(tree, correspond.NewCache(ann.Tokens()), buf)

	geom := NewStackGeometry()
	for _, blk := range tree.Root.Children {
		geom.Push(blk, blockHeight)
	}
	return buf, r, geom
}

func TestSyncToVisualTracksBlocks(t *testing.T) {
	buf, r, geom := renderPass(t, "aaa\n\nbbb\n\nccc", 10)

	s := NewSynchronizer()
	s.SetHeights(MeasureBuffer(buf, 80))

	// Top of the buffer: top of the rendered view.
	if y := s.SyncToVisual(buf, r, geom, 0); y != 0 {
		t.Errorf("sync(0) = %f, want 0", y)
	}

	// Line 2 ("bbb") is the second block, whose top edge is 10.
	y := s.SyncToVisual(buf, r, geom, 2)
	if y != 10 {
		t.Errorf("sync(2) = %f, want 10", y)
	}

	// Line 4 ("ccc") is the third block at 20.
	y = s.SyncToVisual(buf, r, geom, 4)
	if y != 20 {
		t.Errorf("sync(4) = %f, want 20", y)
	}
}

func TestSyncToVisualWrappedMidLine(t *testing.T) {
	// A 200-character logical line wraps into 3 rows at width 80.
	// Scrolling the buffer so row 2 sits at the top must sync to the
	// mid-line offset, not the line's start.
	long := strings.Repeat("x", 200)
	buf, r, geom := renderPass(t, long, 30)

	s := NewSynchronizer()
	s.SetHeights(MeasureBuffer(buf, 80))

	y0 := s.SyncToVisual(buf, r, geom, 0)
	y1 := s.SyncToVisual(buf, r, geom, 1)

	if y1 <= y0 {
		t.Errorf("row 2 sync = %f, want below row 1 sync %f", y1, y0)
	}
	// Row 1 is cell 80 of 200: fraction 0.4 of the 30-high block.
	if y1 < 10 || y1 > 14 {
		t.Errorf("row 2 sync = %f, want ~12", y1)
	}
}

func TestSyncToBufferInverse(t *testing.T) {
	buf, r, geom := renderPass(t, "aaa\n\nbbb\n\nccc", 10)

	s := NewSynchronizer()
	s.SetHeights(MeasureBuffer(buf, 80))

	// Top edge at the second block maps back to line 2's row.
	rows := s.SyncToBuffer(buf, r, geom, 10)
	if rows < 1.5 || rows > 2.5 {
		t.Errorf("sync back = %f rows, want ~2", rows)
	}

	if rows := s.SyncToBuffer(buf, r, geom, 0); rows != 0 {
		t.Errorf("sync back at top = %f, want 0", rows)
	}
}

func TestSyncProportionalFallback(t *testing.T) {
	buf, r, geom := renderPass(t, "aaa\n\nbbb\n\nccc\n\nddd", 10)

	s := NewSynchronizer()
	// No heights installed: both directions fall back proportionally.
	if y := s.SyncToVisual(buf, r, geom, 2); y != 0 {
		t.Errorf("sync without heights = %f, want 0 fallback", y)
	}

	s.SetHeights(MeasureBuffer(buf, 80))

	// Geometry that cannot answer falls back to ratio.
	empty := NewStackGeometry()
	y := s.SyncToVisual(buf, r, empty, 2)
	if y != 0 {
		t.Errorf("sync with empty geometry = %f, want 0", y)
	}
}
