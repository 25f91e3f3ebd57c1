package soundlaw

import "fmt"

//  ---- Location ----

// Location is a position within the rule source, carrying both
// line/column coordinates and the absolute rune offset of the cursor.
type Location struct {
	Line   int
	Column int
	Cursor int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line+1, l.Column+1)
}

//  ---- Span ----

// Span delimits the region of the rule source that a statement or an
// error was read from.
type Span struct {
	Start Location
	End   Location
}

func NewSpan(start, end Location) Span {
	return Span{Start: start, End: end}
}

func (s Span) String() string {
	if s.Start.Line == s.End.Line {
		if s.Start.Column == s.End.Column {
			return s.Start.String()
		}
		return fmt.Sprintf("%d:%d..%d", s.Start.Line+1, s.Start.Column+1, s.End.Column+1)
	}
	return fmt.Sprintf("%s..%s", s.Start, s.End)
}

//  ---- Range ----

// Range is a half-open interval of token indexes within a word's
// phone sequence.
type Range struct {
	Start int
	End   int
}

func NewRange(start, end int) Range {
	return Range{Start: start, End: end}
}

func (r Range) Len() int { return r.End - r.Start }

func (r Range) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

func (r Range) Contains(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}
