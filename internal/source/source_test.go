package source

import "testing"

func TestNewBufferNormalizesLineEndings(t *testing.T) {
	b := NewBuffer("one\r\ntwo\rthree\n")
	if b.Text() != "one\ntwo\nthree\n" {
		t.Errorf("expected normalized text, got %q", b.Text())
	}
}

func TestLineIndexCount(t *testing.T) {
	tests := []struct {
		text  string
		count uint32
	}{
		{"", 1},
		{"a", 1},
		{"a\n", 2},
		{"a\nb", 2},
		{"a\nb\nc\n", 4},
		{"\n\n", 3},
	}

	for _, tt := range tests {
		ix := NewLineIndex(tt.text)
		if ix.Count() != tt.count {
			t.Errorf("Count(%q) = %d, want %d", tt.text, ix.Count(), tt.count)
		}
	}
}

func TestLineIndexStarts(t *testing.T) {
	ix := NewLineIndex("ab\ncde\n\nf")

	starts := []Offset{0, 3, 7, 8}
	for line, want := range starts {
		if got := ix.LineStart(uint32(line)); got != want {
			t.Errorf("LineStart(%d) = %d, want %d", line, got, want)
		}
	}

	// Past the end clamps to text length.
	if got := ix.LineStart(99); got != 9 {
		t.Errorf("LineStart(99) = %d, want 9", got)
	}
}

func TestLineIndexLineAt(t *testing.T) {
	ix := NewLineIndex("ab\ncde\n\nf")

	tests := []struct {
		off  Offset
		line uint32
	}{
		{0, 0},
		{2, 0}, // the newline itself belongs to line 0
		{3, 1},
		{6, 1},
		{7, 2}, // empty line
		{8, 3},
		{9, 3}, // end of text
		{-1, 0},
		{100, 3},
	}

	for _, tt := range tests {
		if got := ix.LineAt(tt.off); got != tt.line {
			t.Errorf("LineAt(%d) = %d, want %d", tt.off, got, tt.line)
		}
	}
}

func TestLineIndexSpans(t *testing.T) {
	ix := NewLineIndex("ab\ncde\n\nf")

	if s := ix.LineSpan(1); s.Start != 3 || s.End != 6 {
		t.Errorf("LineSpan(1) = %v, want [3:6)", s)
	}
	if s := ix.LineSpan(2); s.Start != 7 || s.End != 7 {
		t.Errorf("LineSpan(2) = %v, want [7:7)", s)
	}
	if s := ix.SpanForLines(0, 1); s.Start != 0 || s.End != 6 {
		t.Errorf("SpanForLines(0,1) = %v, want [0:6)", s)
	}
}

func TestBufferPointConversion(t *testing.T) {
	b := NewBuffer("ab\ncde\n\nf")

	p := b.OffsetToPoint(4)
	if p.Line != 1 || p.Column != 1 {
		t.Errorf("OffsetToPoint(4) = %v, want (1:1)", p)
	}

	if off := b.PointToOffset(Point{Line: 1, Column: 1}); off != 4 {
		t.Errorf("PointToOffset((1:1)) = %d, want 4", off)
	}

	// Column past line end clamps to line end.
	if off := b.PointToOffset(Point{Line: 0, Column: 50}); off != 2 {
		t.Errorf("PointToOffset((0:50)) = %d, want 2", off)
	}
}

func TestSpanOps(t *testing.T) {
	a := NewSpan(2, 8)
	b := NewSpan(5, 12)

	if got := a.Intersect(b); got.Start != 5 || got.End != 8 {
		t.Errorf("Intersect = %v, want [5:8)", got)
	}
	if got := a.Union(b); got.Start != 2 || got.End != 12 {
		t.Errorf("Union = %v, want [2:12)", got)
	}
	if !a.Overlaps(b) {
		t.Error("expected spans to overlap")
	}
	if a.Contains(8) {
		t.Error("end offset should be exclusive")
	}
	if !Caret(3).IsCaret() {
		t.Error("expected caret span")
	}

	rev := Span{Start: 9, End: 4}
	if ord := rev.Ordered(); ord.Start != 4 || ord.End != 9 {
		t.Errorf("Ordered = %v, want [4:9)", ord)
	}
}
