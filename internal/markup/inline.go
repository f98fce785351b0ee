package markup

import "strings"

// StripInline renders the raw inline source to its display form by
// consuming the syntax in the token table: paired emphasis delimiters,
// code backticks, link brackets and URLs, and line-anchored markers.
// The resulting text is what a renderer shows for the run.
func StripInline(raw string, ts *TokenSet) string {
	var b strings.Builder
	b.Grow(len(raw))

	atLineStart := true
	i := 0
	for i < len(raw) {
		if atLineStart {
			if n := ts.LineMarkerLen(raw[i:]); n > 0 {
				i += n
			}
			atLineStart = false
			continue
		}

		rest := raw[i:]

		if n := ts.MatchLinkClose(rest); n > 0 {
			i += n
			continue
		}
		if ts.Links && rest[0] == '[' {
			i++
			continue
		}
		if ts.Links && rest[0] == ']' {
			i++
			continue
		}
		if n := ts.MatchPaired(rest); n > 0 {
			i += n
			continue
		}

		b.WriteByte(raw[i])
		if raw[i] == '\n' {
			atLineStart = true
		}
		i++
	}

	return b.String()
}
