package spans

import (
	"fmt"

	"github.com/dshills/weft/btree"
)

// Builder assembles a Spans value from spans supplied in non-decreasing
// range order. Touching spans with equal data are merged as they arrive.
// The zero value is ready to use; Build resets it for reuse.
type Builder[T comparable] struct {
	tb      btree.Builder[spanLeaf[T], Summary]
	pending []Span[T] // absolute ranges not yet cut into a leaf
	base    int       // domain offset where the flushed prefix ends
	at      int       // frontier: end of the last span, skip, or splice
}

// Add appends a span covering [start, end). Ranges must not regress
// behind the frontier or overlap earlier spans; empty ranges are ignored.
// A gap between the frontier and start is left uncovered.
func (b *Builder[T]) Add(start, end int, data T) {
	if end < start {
		panic(fmt.Sprintf("spans: negative span [%d, %d)", start, end))
	}
	if start == end {
		return
	}
	if start < b.at {
		panic(fmt.Sprintf("spans: span [%d, %d) regresses before offset %d", start, end, b.at))
	}
	b.at = end
	if n := len(b.pending); n > 0 {
		if tail := &b.pending[n-1]; tail.Range.End == start && tail.Data == data {
			tail.Range.End = end
			return
		}
	}
	if len(b.pending) == maxSpansPerLeaf {
		b.flush(start)
	}
	b.pending = append(b.pending, Span[T]{Range: Range{Start: start, End: end}, Data: data})
}

// Skip advances the frontier by n base units, leaving the gap uncovered.
func (b *Builder[T]) Skip(n int) {
	if n < 0 {
		panic(fmt.Sprintf("spans: negative skip %d", n))
	}
	b.at += n
}

// PushSliced splices the [from, to) window of other at the frontier.
// Leaves wholly inside the window are shared with other; the edge spans
// are re-cut, and a window-leading span that touches the frontier tail
// with equal data merges into it.
func (b *Builder[T]) PushSliced(other Spans[T], from, to int) {
	if from < 0 || to < from || to > other.Len() {
		panic(fmt.Sprintf("spans: push range [%d, %d) invalid for length %d", from, to, other.Len()))
	}
	if from == to {
		return
	}
	w := Spans[T]{t: other.t.Slice(from, to)}
	startAt := b.at
	sum := w.t.Summary()
	if sum.Spans == 0 {
		b.at = startAt + (to - from)
		return
	}

	first, _ := w.SpanAt(sum.Covered.Start)
	b.Add(startAt+first.Range.Start, startAt+first.Range.End, first.Data)

	if sum.Spans > 1 {
		// The interior subtree is reused as-is; its trailing span moves
		// into pending so the next push can merge against it.
		last, _ := w.SpanAt(sum.Covered.End - 1)
		b.flush(startAt + first.Range.End)
		b.tb.PushTreeRange(w.t, first.Range.End, last.Range.Start)
		b.base = startAt + last.Range.Start
		b.pending = append(b.pending, Span[T]{
			Range: last.Range.Shift(startAt),
			Data:  last.Data,
		})
	}
	b.at = startAt + (to - from)
}

// Build finalizes and returns the immutable map. The domain length is the
// frontier position.
func (b *Builder[T]) Build() Spans[T] {
	b.flush(b.at)
	t := b.tb.Build()
	*b = Builder[T]{}
	return Spans[T]{t: t}
}

// flush emits the pending spans as one leaf whose window ends at upto.
func (b *Builder[T]) flush(upto int) {
	if upto == b.base && len(b.pending) == 0 {
		return
	}
	leaf := spanLeaf[T]{extent: upto - b.base, spans: make([]Span[T], len(b.pending))}
	for i, sp := range b.pending {
		leaf.spans[i] = Span[T]{Range: sp.Range.Shift(-b.base), Data: sp.Data}
	}
	b.tb.Push(leaf)
	b.pending = b.pending[:0]
	b.base = upto
}
