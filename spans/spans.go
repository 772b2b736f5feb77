// Package spans provides an immutable interval map associating typed data
// with half-open ranges over the same byte coordinate space a rope uses.
// Ranges are ordered and non-overlapping, gaps are permitted, and adjacent
// ranges carrying equal data are always stored as one span. Values are
// built once through a Builder and never modified; edits are mirrored with
// Splice and overlays are combined with Merge.
package spans

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/weft/btree"
)

// Leaves split and merge on span count; extent per leaf is unbounded.
const (
	minSpansPerLeaf = 32
	maxSpansPerLeaf = 64
)

// Range is a half-open interval [Start, End) in base units.
type Range struct {
	Start int
	End   int
}

// Len returns the width of the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty reports whether the range covers nothing.
func (r Range) IsEmpty() bool {
	return r.End <= r.Start
}

// Contains reports whether offset lies inside the range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Shift returns the range moved by delta.
func (r Range) Shift(delta int) Range {
	return Range{Start: r.Start + delta, End: r.End + delta}
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// Span is one range and the data attached to it.
type Span[T comparable] struct {
	Range Range
	Data  T
}

func (s Span[T]) String() string {
	return fmt.Sprintf("%v: %v", s.Range, s.Data)
}

// Summary aggregates a subtree: the number of spans, the base-unit extent,
// and the bounding range of covered positions relative to the subtree
// start. Covered is meaningful only while Spans > 0.
type Summary struct {
	Spans   int
	Extent  int
	Covered Range
}

// Add combines two adjacent summaries, left to right.
func (s Summary) Add(other Summary) Summary {
	covered := other.Covered.Shift(s.Extent)
	switch {
	case other.Spans == 0:
		covered = s.Covered
	case s.Spans == 0:
	default:
		covered.Start = s.Covered.Start
	}
	return Summary{
		Spans:   s.Spans + other.Spans,
		Extent:  s.Extent + other.Extent,
		Covered: covered,
	}
}

// spanLeaf holds ordered non-overlapping spans relative to the leaf window.
// The window may extend past the last span; uncovered positions are gaps.
// A span never crosses a leaf seam.
type spanLeaf[T comparable] struct {
	extent int
	spans  []Span[T]
}

func (l spanLeaf[T]) Len() int {
	return l.extent
}

func (l spanLeaf[T]) Summarize() Summary {
	s := Summary{Spans: len(l.spans), Extent: l.extent}
	if len(l.spans) > 0 {
		s.Covered = Range{Start: l.spans[0].Range.Start, End: l.spans[len(l.spans)-1].Range.End}
	}
	return s
}

func (l spanLeaf[T]) IsUndersized() bool {
	return len(l.spans) < minSpansPerLeaf
}

// Append combines two adjacent leaves, merging a touching equal-data pair
// at the seam, and splits at the span-count midpoint when over capacity.
func (l spanLeaf[T]) Append(other spanLeaf[T]) (spanLeaf[T], spanLeaf[T], bool) {
	combined := make([]Span[T], 0, len(l.spans)+len(other.spans))
	combined = append(combined, l.spans...)
	for _, sp := range other.spans {
		combined = appendSpan(combined, Span[T]{Range: sp.Range.Shift(l.extent), Data: sp.Data})
	}
	extent := l.extent + other.extent
	if len(combined) <= maxSpansPerLeaf {
		return spanLeaf[T]{extent: extent, spans: combined}, spanLeaf[T]{}, false
	}
	mid := len(combined) / 2
	cut := combined[mid].Range.Start
	right := spanLeaf[T]{extent: extent - cut, spans: make([]Span[T], len(combined)-mid)}
	for i, sp := range combined[mid:] {
		right.spans[i] = Span[T]{Range: sp.Range.Shift(-cut), Data: sp.Data}
	}
	return spanLeaf[T]{extent: cut, spans: combined[:mid:mid]}, right, true
}

// Slice returns the sub-window [start, end), clipping spans that straddle
// an edge and dropping spans left with no width.
func (l spanLeaf[T]) Slice(start, end int) spanLeaf[T] {
	out := spanLeaf[T]{extent: end - start}
	for _, sp := range l.spans {
		if sp.Range.End <= start {
			continue
		}
		if sp.Range.Start >= end {
			break
		}
		r := Range{Start: sp.Range.Start - start, End: sp.Range.End - start}
		if r.Start < 0 {
			r.Start = 0
		}
		if r.End > out.extent {
			r.End = out.extent
		}
		out.spans = append(out.spans, Span[T]{Range: r, Data: sp.Data})
	}
	return out
}

// Fixup is a no-op for spans: every construction path runs through the
// Builder, which resolves touching equal-data spans before leaves form.
func (l spanLeaf[T]) Fixup(next spanLeaf[T]) (spanLeaf[T], spanLeaf[T], bool) {
	return l, next, true
}

// appendSpan appends sp, extending the tail instead when sp touches it
// with equal data.
func appendSpan[T comparable](spans []Span[T], sp Span[T]) []Span[T] {
	if n := len(spans); n > 0 {
		if tail := &spans[n-1]; tail.Range.End == sp.Range.Start && tail.Data == sp.Data {
			tail.Range.End = sp.Range.End
			return spans
		}
	}
	return append(spans, sp)
}

// Spans is an immutable interval map with value semantics. The zero value
// is an empty map over a zero-length domain.
type Spans[T comparable] struct {
	t btree.Tree[spanLeaf[T], Summary]
}

// New returns an empty map over a domain of the given length.
func New[T comparable](length int) Spans[T] {
	if length < 0 {
		panic(fmt.Sprintf("spans: negative domain length %d", length))
	}
	var b Builder[T]
	b.Skip(length)
	return b.Build()
}

// Len returns the domain length in base units.
func (s Spans[T]) Len() int {
	return s.t.Len()
}

// Count returns the number of spans.
func (s Spans[T]) Count() int {
	return s.t.Summary().Spans
}

// Covered returns the bounding range of covered positions. Meaningful only
// while Count is non-zero.
func (s Spans[T]) Covered() Range {
	return s.t.Summary().Covered
}

// Height returns the tree height.
func (s Spans[T]) Height() int {
	return s.t.Height()
}

// SpanAt returns the span containing offset. The second result is false
// when offset falls in a gap or at the end of the domain. Panics when
// offset is outside [0, Len].
func (s Spans[T]) SpanAt(offset int) (Span[T], bool) {
	if offset < 0 || offset > s.Len() {
		panic(fmt.Sprintf("spans: offset %d out of range [0, %d]", offset, s.Len()))
	}
	if offset == s.Len() {
		return Span[T]{}, false
	}
	leaf, start := s.t.LeafAt(offset)
	local := offset - start
	i := sort.Search(len(leaf.spans), func(i int) bool { return local < leaf.spans[i].Range.End })
	if i == len(leaf.spans) || !leaf.spans[i].Range.Contains(local) {
		return Span[T]{}, false
	}
	sp := leaf.spans[i]
	return Span[T]{Range: sp.Range.Shift(start), Data: sp.Data}, true
}

// DataAt returns the data covering offset, or the zero value and false
// when offset is uncovered.
func (s Spans[T]) DataAt(offset int) (T, bool) {
	sp, ok := s.SpanAt(offset)
	return sp.Data, ok
}

// Splice rebuilds the map with [start, end) replaced by an uncovered gap
// of newLen base units, mirroring an edit to the underlying sequence.
// Spans straddling an edge are clipped; leaves outside the edited range
// are reused.
func (s Spans[T]) Splice(start, end, newLen int) Spans[T] {
	if start < 0 || end < start || end > s.Len() {
		panic(fmt.Sprintf("spans: splice range [%d, %d) invalid for length %d", start, end, s.Len()))
	}
	if newLen < 0 {
		panic(fmt.Sprintf("spans: negative splice length %d", newLen))
	}
	var b Builder[T]
	b.PushSliced(s, 0, start)
	b.Skip(newLen)
	b.PushSliced(s, end, s.Len())
	return b.Build()
}

// Collect returns all spans in order with absolute ranges.
func (s Spans[T]) Collect() []Span[T] {
	out := make([]Span[T], 0, s.Count())
	it := s.Iter()
	for it.Next() {
		out = append(out, it.Span())
	}
	return out
}

func (s Spans[T]) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, sp := range s.Collect() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(sp.String())
	}
	sb.WriteByte('}')
	return sb.String()
}

// Iterator walks spans in domain order. Next must be called before Span.
type Iterator[T comparable] struct {
	cursor  *btree.Cursor[spanLeaf[T], Summary]
	idx     int
	started bool
}

// Iter returns an iterator over all spans.
func (s Spans[T]) Iter() *Iterator[T] {
	return &Iterator[T]{cursor: btree.NewCursor(s.t)}
}

// Next advances to the next span.
func (it *Iterator[T]) Next() bool {
	if !it.started {
		it.started = true
		it.cursor.Seek(0)
		if !it.cursor.Valid() {
			return false
		}
		it.idx = -1
	}
	for {
		it.idx++
		if it.idx < len(it.cursor.Leaf().spans) {
			return true
		}
		if !it.cursor.NextLeaf() {
			return false
		}
		it.idx = -1
	}
}

// Span returns the current span with its absolute range.
func (it *Iterator[T]) Span() Span[T] {
	sp := it.cursor.Leaf().spans[it.idx]
	return Span[T]{Range: sp.Range.Shift(it.cursor.LeafStart()), Data: sp.Data}
}
