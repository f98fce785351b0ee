package markup

import (
	"sort"
	"strings"
)

// TokenSet is the grammar table of syntax consumed during rendering. Both
// the inline stripper and the correspondence scan are driven by the same
// table, so the two cannot silently drift apart.
type TokenSet struct {
	// paired holds zero-width paired delimiters, longest first so that
	// "**" wins over "*" at the same position.
	paired []string

	// Links enables link-bracket consumption: "[text](url)" renders as
	// "text".
	Links bool

	// LineMarkers enables line-anchored marker consumption: heading
	// hashes, blockquote angles, list bullets and ordered-list numbers.
	LineMarkers bool
}

// DefaultTokenSet returns the standard markdown token table.
func DefaultTokenSet() *TokenSet {
	ts := &TokenSet{
		Links:       true,
		LineMarkers: true,
	}
	for _, tok := range []string{"**", "__", "~~", "*", "_", "`"} {
		ts.AddPaired(tok)
	}
	return ts
}

// AddPaired registers a zero-width paired delimiter. Duplicates are ignored.
func (ts *TokenSet) AddPaired(tok string) {
	if tok == "" {
		return
	}
	for _, t := range ts.paired {
		if t == tok {
			return
		}
	}
	ts.paired = append(ts.paired, tok)
	sort.Slice(ts.paired, func(i, j int) bool {
		return len(ts.paired[i]) > len(ts.paired[j])
	})
}

// Paired returns the registered paired delimiters, longest first.
func (ts *TokenSet) Paired() []string {
	out := make([]string, len(ts.paired))
	copy(out, ts.paired)
	return out
}

// MatchPaired returns the byte length of the paired delimiter at the start
// of s, or 0 if none matches.
func (ts *TokenSet) MatchPaired(s string) int {
	for _, tok := range ts.paired {
		if strings.HasPrefix(s, tok) {
			return len(tok)
		}
	}
	return 0
}

// LineMarkerLen returns the byte length of the line-anchored marker prefix
// at the start of line, including its trailing space and any leading
// indentation, or 0 if the line carries no marker.
func (ts *TokenSet) LineMarkerLen(line string) int {
	if !ts.LineMarkers {
		return 0
	}

	indent := 0
	for indent < len(line) && (line[indent] == ' ' || line[indent] == '\t') {
		indent++
	}
	rest := line[indent:]

	// Heading: one to six hashes plus a space.
	if n := headingLevel(rest); n > 0 {
		end := n
		for end < len(rest) && (rest[end] == ' ' || rest[end] == '\t') {
			end++
		}
		return indent + end
	}

	// Blockquote: "> " (space optional).
	if strings.HasPrefix(rest, ">") {
		end := 1
		for end < len(rest) && rest[end] == ' ' {
			end++
		}
		return indent + end
	}

	// Bullet list: "- ", "* ", "+ ".
	if len(rest) >= 2 && (rest[0] == '-' || rest[0] == '*' || rest[0] == '+') &&
		(rest[1] == ' ' || rest[1] == '\t') && !isThematicBreak(rest) {
		return indent + 2
	}

	// Ordered list: "12. " or "3) ".
	if n := orderedMarkerLen(rest); n > 0 {
		return indent + n
	}

	if indent > 0 {
		return indent
	}
	return 0
}

// MatchLinkClose reports whether s starts with the "](...)" tail of a link
// and returns its byte length, or 0.
func (ts *TokenSet) MatchLinkClose(s string) int {
	if !ts.Links {
		return 0
	}
	if len(s) < 3 || s[0] != ']' || s[1] != '(' {
		return 0
	}
	for i := 2; i < len(s); i++ {
		if s[i] == ')' {
			return i + 1
		}
		if s[i] == '\n' {
			return 0
		}
	}
	return 0
}
