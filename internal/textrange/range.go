package textrange

import "fmt"

// Range is a span of byte offsets in a single document. Both ends are
// inclusive when testing containment.
type Range struct {
	Start int
	End   int
}

// New returns the range [start, end]. Reversed bounds are swapped so that
// Start <= End always holds.
func New(start, end int) Range {
	if end < start {
		start, end = end, start
	}
	return Range{Start: start, End: end}
}

// FromLength returns the range starting at start and covering length bytes.
func FromLength(start, length int) Range {
	return New(start, start+length)
}

// Contains reports whether offset lies within r.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset <= r.End
}

// Encloses reports whether other is nested inside r (or equal to it).
func (r Range) Encloses(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// Len returns the number of bytes covered by r.
func (r Range) Len() int {
	return r.End - r.Start
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d]", r.Start, r.End)
}
