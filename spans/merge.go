package spans

import "fmt"

// Merge combines two maps over the same domain length. transform is called
// with the data covering each position on either side, nil where a side is
// uncovered, and returns the output data or nil to leave the output
// uncovered. One span is emitted per maximal sub-interval with a constant
// (left, right) pairing; sub-intervals uncovered on both sides are skipped
// without calling transform, and touching equal outputs coalesce.
func Merge[T, U, O comparable](a Spans[T], b Spans[U], transform func(*T, *U) *O) Spans[O] {
	if a.Len() != b.Len() {
		panic(fmt.Sprintf("spans: merging domains of different lengths %d and %d", a.Len(), b.Len()))
	}
	total := a.Len()

	var out Builder[O]
	ia, ib := a.Iter(), b.Iter()
	sa, oka := nextSpan(ia)
	sb, okb := nextSpan(ib)

	pos := 0
	for pos < total {
		for oka && sa.Range.End <= pos {
			sa, oka = nextSpan(ia)
		}
		for okb && sb.Range.End <= pos {
			sb, okb = nextSpan(ib)
		}
		if !oka && !okb {
			break
		}

		// The segment runs to the nearest edge of an active or upcoming
		// span on either side.
		hi := total
		var left *T
		var right *U
		if oka {
			if sa.Range.Start <= pos {
				left = &sa.Data
				if sa.Range.End < hi {
					hi = sa.Range.End
				}
			} else if sa.Range.Start < hi {
				hi = sa.Range.Start
			}
		}
		if okb {
			if sb.Range.Start <= pos {
				right = &sb.Data
				if sb.Range.End < hi {
					hi = sb.Range.End
				}
			} else if sb.Range.Start < hi {
				hi = sb.Range.Start
			}
		}

		if left != nil || right != nil {
			if o := transform(left, right); o != nil {
				out.Add(pos, hi, *o)
			}
		}
		pos = hi
	}

	out.Skip(total - out.at)
	return out.Build()
}

func nextSpan[T comparable](it *Iterator[T]) (Span[T], bool) {
	if !it.Next() {
		return Span[T]{}, false
	}
	return it.Span(), true
}
