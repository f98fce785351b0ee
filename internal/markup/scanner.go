package markup

import "strings"

// Scanner is the built-in block-level parser. It recognizes the constructs
// the correspondence engine needs line ranges for: ATX headings, paragraphs,
// blockquotes, list items, fenced code blocks, and thematic breaks.
type Scanner struct{}

// NewScanner creates a block scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Parse splits the text into blocks with inclusive 0-indexed line ranges.
func (s *Scanner) Parse(text string) []Block {
	lines := strings.Split(text, "\n")
	var blocks []Block

	i := 0
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			i++

		case isFence(trimmed):
			start := i
			i++
			for i < len(lines) && !isFence(strings.TrimSpace(lines[i])) {
				i++
			}
			if i < len(lines) {
				i++ // closing fence
			}
			blocks = append(blocks, Block{
				Kind:      KindCodeBlock,
				StartLine: uint32(start),
				EndLine:   uint32(i - 1),
			})

		case headingLevel(line) > 0:
			blocks = append(blocks, Block{
				Kind:      KindHeading,
				StartLine: uint32(i),
				EndLine:   uint32(i),
				Level:     headingLevel(line),
			})
			i++

		case isThematicBreak(trimmed):
			blocks = append(blocks, Block{
				Kind:      KindThematicBreak,
				StartLine: uint32(i),
				EndLine:   uint32(i),
			})
			i++

		case strings.HasPrefix(trimmed, ">"):
			start := i
			for i < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i]), ">") {
				i++
			}
			blocks = append(blocks, Block{
				Kind:      KindBlockquote,
				StartLine: uint32(start),
				EndLine:   uint32(i - 1),
			})

		case isListItem(line):
			// Each item is its own block; continuation lines are indented.
			start := i
			i++
			for i < len(lines) && isListContinuation(lines[i]) {
				i++
			}
			blocks = append(blocks, Block{
				Kind:      KindListItem,
				StartLine: uint32(start),
				EndLine:   uint32(i - 1),
			})

		default:
			start := i
			for i < len(lines) && isParagraphLine(lines[i]) {
				i++
			}
			blocks = append(blocks, Block{
				Kind:      KindParagraph,
				StartLine: uint32(start),
				EndLine:   uint32(i - 1),
			})
		}
	}

	return blocks
}

// IsFenceLine reports whether the line opens or closes a fenced code block.
func IsFenceLine(line string) bool {
	return isFence(strings.TrimSpace(line))
}

// isFence reports whether the line opens or closes a fenced code block.
func isFence(trimmed string) bool {
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

// headingLevel returns the ATX heading level (1-6), or 0 if the line is not
// a heading.
func headingLevel(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n > 6 {
		return 0
	}
	if n == len(line) || line[n] == ' ' || line[n] == '\t' {
		return n
	}
	return 0
}

// isThematicBreak reports whether the line is a horizontal rule.
func isThematicBreak(trimmed string) bool {
	if len(trimmed) < 3 {
		return false
	}
	c := trimmed[0]
	if c != '-' && c != '*' && c != '_' {
		return false
	}
	count := 0
	for i := 0; i < len(trimmed); i++ {
		switch trimmed[i] {
		case c:
			count++
		case ' ', '\t':
		default:
			return false
		}
	}
	return count >= 3
}

// isListItem reports whether the line starts a bulleted or ordered list item.
func isListItem(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	if len(trimmed) >= 2 && (trimmed[0] == '-' || trimmed[0] == '*' || trimmed[0] == '+') &&
		(trimmed[1] == ' ' || trimmed[1] == '\t') {
		// Rule out thematic breaks like "- - -".
		return !isThematicBreak(trimmed)
	}
	return orderedMarkerLen(trimmed) > 0
}

// orderedMarkerLen returns the byte length of an ordered-list marker
// ("12. " or "3) ") at the start of the string, or 0.
func orderedMarkerLen(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n == 0 || n > 9 {
		return 0
	}
	if n >= len(s) || (s[n] != '.' && s[n] != ')') {
		return 0
	}
	if n+1 >= len(s) || (s[n+1] != ' ' && s[n+1] != '\t') {
		return 0
	}
	return n + 2
}

// isListContinuation reports whether the line continues the current list
// item (indented, non-blank, not itself a new item).
func isListContinuation(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	if !strings.HasPrefix(line, "  ") && !strings.HasPrefix(line, "\t") {
		return false
	}
	return !isListItem(line)
}

// isParagraphLine reports whether the line continues a paragraph.
func isParagraphLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if isFence(trimmed) || headingLevel(line) > 0 || isThematicBreak(trimmed) {
		return false
	}
	if strings.HasPrefix(trimmed, ">") || isListItem(line) {
		return false
	}
	return true
}
