package markup

import "testing"

func TestScannerBlocks(t *testing.T) {
	text := "# Title\n\npara one\nstill para\n\n> quoted\n> more\n\n- item one\n- item two\n\n```\ncode\n```\n\n---\n"

	blocks := NewScanner().Parse(text)

	want := []Block{
		{Kind: KindHeading, StartLine: 0, EndLine: 0, Level: 1},
		{Kind: KindParagraph, StartLine: 2, EndLine: 3},
		{Kind: KindBlockquote, StartLine: 5, EndLine: 6},
		{Kind: KindListItem, StartLine: 8, EndLine: 8},
		{Kind: KindListItem, StartLine: 9, EndLine: 9},
		{Kind: KindCodeBlock, StartLine: 11, EndLine: 13},
		{Kind: KindThematicBreak, StartLine: 15, EndLine: 15},
	}

	if len(blocks) != len(want) {
		t.Fatalf("got %d blocks, want %d: %v", len(blocks), len(want), blocks)
	}
	for i, w := range want {
		if blocks[i] != w {
			t.Errorf("block %d = %v, want %v", i, blocks[i], w)
		}
	}
}

func TestScannerListContinuation(t *testing.T) {
	text := "- item\n  continued\n- next"

	blocks := NewScanner().Parse(text)
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2: %v", len(blocks), blocks)
	}
	if blocks[0].EndLine != 1 {
		t.Errorf("first item end line = %d, want 1", blocks[0].EndLine)
	}
}

func TestScannerThematicBreakNotListItem(t *testing.T) {
	blocks := NewScanner().Parse("- - -")
	if len(blocks) != 1 || blocks[0].Kind != KindThematicBreak {
		t.Errorf("got %v, want one thematic break", blocks)
	}
}

func TestTokenSetMatchPaired(t *testing.T) {
	ts := DefaultTokenSet()

	// Longest delimiter wins.
	if n := ts.MatchPaired("**bold**"); n != 2 {
		t.Errorf("MatchPaired(**) = %d, want 2", n)
	}
	if n := ts.MatchPaired("*em*"); n != 1 {
		t.Errorf("MatchPaired(*) = %d, want 1", n)
	}
	if n := ts.MatchPaired("plain"); n != 0 {
		t.Errorf("MatchPaired(plain) = %d, want 0", n)
	}
}

func TestTokenSetAddPaired(t *testing.T) {
	ts := DefaultTokenSet()
	ts.AddPaired("==")
	ts.AddPaired("==") // duplicate ignored

	if n := ts.MatchPaired("==mark=="); n != 2 {
		t.Errorf("MatchPaired(==) = %d, want 2", n)
	}

	count := 0
	for _, tok := range ts.Paired() {
		if tok == "==" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("duplicate delimiter registered %d times", count)
	}
}

func TestTokenSetLineMarkerLen(t *testing.T) {
	ts := DefaultTokenSet()

	tests := []struct {
		line string
		want int
	}{
		{"# Title", 2},
		{"### Deep", 4},
		{"> quote", 2},
		{"- item", 2},
		{"12. item", 4},
		{"3) item", 3},
		{"  - nested", 4},
		{"plain", 0},
	}

	for _, tt := range tests {
		if got := ts.LineMarkerLen(tt.line); got != tt.want {
			t.Errorf("LineMarkerLen(%q) = %d, want %d", tt.line, got, tt.want)
		}
	}
}

func TestStripInline(t *testing.T) {
	ts := DefaultTokenSet()

	tests := []struct {
		raw  string
		want string
	}{
		{"**bold** text", "bold text"},
		{"*em* and ~~gone~~", "em and gone"},
		{"`code` span", "code span"},
		{"[go](https://golang.org) rocks", "go rocks"},
		{"# Title", "Title"},
		{"> quoted *words*", "quoted words"},
		{"- item **one**", "item one"},
		{"plain text", "plain text"},
	}

	for _, tt := range tests {
		if got := StripInline(tt.raw, ts); got != tt.want {
			t.Errorf("StripInline(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
