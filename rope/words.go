package rope

import (
	"github.com/clipperhouse/uax29/v2/words"
)

// WordIterator walks UAX #29 word segments that intersect a byte range.
// Segmentation runs one line at a time. '\n' is a word boundary on both
// sides in every context, so per-line segmentation produces the same
// segments as segmenting the full text, without materializing it.
type WordIterator struct {
	r    Rope
	from int
	end  int
	line int
	segs []wordSegment
	idx  int
}

type wordSegment struct {
	start int
	end   int
	text  string
}

// Words returns an iterator over the word segments intersecting the byte
// range [start, end). Segments are not clipped, so the first and last may
// extend past the range.
func (r Rope) Words(start, end int) *WordIterator {
	r.checkRange(start, end)
	return &WordIterator{
		r:    r,
		from: start,
		end:  end,
		line: r.LineIndex(start),
		idx:  -1,
	}
}

// Next advances to the next word segment.
// Returns true if there is a segment, false when iteration is complete.
func (it *WordIterator) Next() bool {
	it.idx++
	for it.idx >= len(it.segs) {
		if !it.fillLine() {
			return false
		}
		it.idx = 0
	}
	return true
}

// Value returns the text of the current segment.
func (it *WordIterator) Value() string {
	return it.segs[it.idx].text
}

// Start returns the byte offset of the start of the current segment.
func (it *WordIterator) Start() int {
	return it.segs[it.idx].start
}

// End returns the byte offset one past the current segment.
func (it *WordIterator) End() int {
	return it.segs[it.idx].end
}

// fillLine segments lines until one yields a segment inside the range.
// Word segments tile a line completely, so offsets accumulate from the
// line start.
func (it *WordIterator) fillLine() bool {
	lineCount := it.r.Count(Lines)
	for it.line < lineCount {
		lineStart, lineEnd := it.r.LineRange(it.line)
		it.line++
		if lineStart >= it.end {
			return false
		}
		if lineStart == lineEnd {
			continue
		}
		it.segs = it.segs[:0]
		text := it.r.Slice(lineStart, lineEnd)
		tokens := words.FromString(text)
		off := lineStart
		for tokens.Next() {
			v := tokens.Value()
			seg := wordSegment{start: off, end: off + len(v), text: v}
			off = seg.end
			if seg.end <= it.from || seg.start >= it.end {
				continue
			}
			it.segs = append(it.segs, seg)
		}
		if len(it.segs) > 0 {
			return true
		}
	}
	return false
}
