package flux

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// Range is a byte range within a single file's source text.
type Range struct{ Start, End int }

// NewRange builds a Range, asserting the well-formedness invariant from the
// spec (start <= end) rather than silently normalizing it: callers that
// violate it have a bug in their span arithmetic.
func NewRange(start, end int) Range {
	if start > end {
		icePanic("NewRange: start %d > end %d", start, end)
	}
	return Range{Start: start, End: end}
}

func (r Range) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

func (r Range) Len() int { return r.End - r.Start }

func (r Range) Str(src []byte) string { return string(src[r.Start:r.End]) }

func (r Range) Contains(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// Span pairs a byte Range with the file it came from. Two spans are
// combinable only when they share a file and are adjacent or ordered
// (a.End <= b.Start).
type Span struct {
	Range Range
	File  FileID
}

func NewSpan(r Range, file FileID) Span { return Span{Range: r, File: file} }

func (s Span) String() string { return fmt.Sprintf("%s@%d", s.Range, s.File) }

// Combine merges two spans from the same file into one spanning both, per
// the ordering invariant in spec section 3. Returns ok=false when the spans
// aren't combinable.
func (s Span) Combine(other Span) (Span, bool) {
	if s.File != other.File {
		return Span{}, false
	}
	if s.Range.End <= other.Range.Start {
		return NewSpan(NewRange(s.Range.Start, other.Range.End), s.File), true
	}
	if other.Range.End <= s.Range.Start {
		return NewSpan(NewRange(other.Range.Start, s.Range.End), s.File), true
	}
	return Span{}, false
}

// Location is a human-facing line/column position, derived from a byte
// cursor via LineIndex. It exists purely for debugging/test output; the
// core Span type never carries one, matching the spec's byte-oriented
// model and keeping line/column rendering out of the compiler front-end
// (that belongs to the out-of-scope reporting module).
type Location struct {
	Line   int32
	Column int32
	Cursor int
}

func (l Location) String() string { return fmt.Sprintf("%d:%d", l.Line, l.Column) }

// LineIndex allows fast conversion from byte cursor offsets to line/column.
//
// It stores the start byte offset of each line (0-based). Given a
// cursor, it finds the line by binary searching line starts (O(log
// lines)) and computes the column as (runes since lineStart + 1).
//
// Construction is O(n) over the input and is intended to be cached
// per input.
type LineIndex struct {
	input     []byte
	lineStart []int
}

func NewLineIndex(input []byte) *LineIndex {
	lineStart := make([]int, 1, 64)
	lineStart[0] = 0
	for i, b := range input {
		if b == '\n' {
			lineStart = append(lineStart, i+1)
		}
	}
	return &LineIndex{input: input, lineStart: lineStart}
}

func (li *LineIndex) RangeString(r Range) string {
	start := li.LocationAt(r.Start)
	end := li.LocationAt(r.End)
	if start.Line == end.Line && start.Column == end.Column {
		return start.String()
	}
	if start.Line == end.Line {
		return fmt.Sprintf("%d:%d..%d", start.Line, start.Column, end.Column)
	}
	return fmt.Sprintf("%s..%s", start, end)
}

func (li *LineIndex) LocationAt(cursor int) Location {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(li.input) {
		cursor = len(li.input)
	}

	lineIdx := sort.Search(len(li.lineStart), func(i int) bool {
		return li.lineStart[i] > cursor
	}) - 1
	if lineIdx < 0 {
		lineIdx = 0
	}

	lineStart := li.lineStart[lineIdx]
	col := int32(utf8.RuneCount(li.input[lineStart:cursor])) + 1

	return Location{
		Line:   int32(lineIdx + 1),
		Column: col,
		Cursor: cursor,
	}
}
