package source

import "fmt"

// Span represents a byte range in the source text.
// Start is inclusive, End is exclusive: [Start, End).
// A span with Start == End denotes a caret position.
type Span struct {
	Start Offset // Inclusive start position
	End   Offset // Exclusive end position
}

// NewSpan creates a new Span from start and end offsets.
func NewSpan(start, end Offset) Span {
	return Span{Start: start, End: end}
}

// Caret creates a zero-length span at the given offset.
func Caret(off Offset) Span {
	return Span{Start: off, End: off}
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	return fmt.Sprintf("[%d:%d)", s.Start, s.End)
}

// Len returns the length of the span in bytes.
func (s Span) Len() Offset {
	return s.End - s.Start
}

// IsCaret returns true if the span has zero length.
func (s Span) IsCaret() bool {
	return s.Start == s.End
}

// IsValid returns true if the span is well-formed (0 <= Start <= End).
func (s Span) IsValid() bool {
	return s.Start >= 0 && s.Start <= s.End
}

// Contains returns true if the given offset is within the span.
func (s Span) Contains(off Offset) bool {
	return off >= s.Start && off < s.End
}

// ContainsSpan returns true if the given span is entirely within this span.
func (s Span) ContainsSpan(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// Overlaps returns true if this span overlaps with another span.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Intersect returns the intersection of two spans, or an empty span if they
// do not overlap.
func (s Span) Intersect(other Span) Span {
	start := s.Start
	if other.Start > start {
		start = other.Start
	}
	end := s.End
	if other.End < end {
		end = other.End
	}
	if start >= end {
		return Span{Start: start, End: start}
	}
	return Span{Start: start, End: end}
}

// Union returns the smallest span that contains both spans.
func (s Span) Union(other Span) Span {
	start := s.Start
	if other.Start < start {
		start = other.Start
	}
	end := s.End
	if other.End > end {
		end = other.End
	}
	return Span{Start: start, End: end}
}

// Ordered returns the span with endpoints swapped if necessary so that
// Start <= End. Selection endpoints resolved independently may arrive in
// either order.
func (s Span) Ordered() Span {
	if s.Start > s.End {
		return Span{Start: s.End, End: s.Start}
	}
	return s
}

// Clamp restricts the span to [0, max].
func (s Span) Clamp(max Offset) Span {
	r := s
	if r.Start < 0 {
		r.Start = 0
	}
	if r.End > max {
		r.End = max
	}
	if r.Start > r.End {
		r.Start = r.End
	}
	return r
}
