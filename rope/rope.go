package rope

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dshills/weft/btree"
)

// Rope is an immutable UTF-8 text sequence backed by a balanced tree of
// chunks. Operations return new Rope values; the original is never modified.
// Unmodified chunks are shared between old and new values, so snapshots are
// cheap and concurrent reads of distinct values are safe.
//
// All offsets are byte offsets into the text. Conversions to and from the
// other units go through Count, the Index methods, and the line helpers.
type Rope struct {
	t btree.Tree[Chunk, TextSummary]
}

// New returns an empty rope.
func New() Rope {
	return Rope{}
}

// FromString builds a rope from s.
// Panics if s is not valid UTF-8.
func FromString(s string) Rope {
	if !utf8.ValidString(s) {
		panic("rope: text is not valid UTF-8")
	}
	var b btree.Builder[Chunk, TextSummary]
	pushString(&b, s, GraphemeBreaker{})
	return Rope{t: b.Build()}
}

// FromReader builds a rope from the contents of r.
// Returns an error if the input is not valid UTF-8.
func FromReader(r io.Reader) (Rope, error) {
	var b Builder
	if _, err := b.ReadFrom(r); err != nil {
		return Rope{}, err
	}
	return b.Build()
}

// pushString cuts s into chunks within the size bounds and pushes them onto
// b. brk is the segmentation state at the start of s; it is threaded through
// successive chunks so each chunk's start state carries over from its
// predecessor.
func pushString(b *btree.Builder[Chunk, TextSummary], s string, brk GraphemeBreaker) {
	for len(s) > MaxChunkSize {
		cut := chunkCut(s)
		c := makeChunk(s[:cut], brk)
		b.Push(c)
		brk = c.end
		s = s[cut:]
	}
	if len(s) > 0 {
		b.Push(makeChunk(s, brk))
	}
}

// Len returns the length in bytes.
func (r Rope) Len() int {
	return r.t.Len()
}

// IsEmpty reports whether the rope contains no text.
func (r Rope) IsEmpty() bool {
	return r.t.IsEmpty()
}

// Count returns the length of the rope in the given unit. Lines counts
// newline-separated segments, so an empty rope has one line and text ending
// in '\n' has a final empty line.
func (r Rope) Count(unit Unit) int {
	if unit == Lines {
		return r.t.Measure(lineMetric) + 1
	}
	return r.t.Measure(metricFor(unit))
}

// Summary returns the aggregated counts for the entire rope.
func (r Rope) Summary() TextSummary {
	return r.t.Summary()
}

// Height returns the height of the underlying tree. Zero for a rope that
// fits in a single chunk.
func (r Rope) Height() int {
	return r.t.Height()
}

// String returns the full text as a string.
// Use sparingly for large ropes.
func (r Rope) String() string {
	if r.IsEmpty() {
		return ""
	}
	var sb strings.Builder
	sb.Grow(r.Len())
	it := r.Chunks()
	for it.Next() {
		sb.WriteString(it.Text())
	}
	return sb.String()
}

// WriteTo writes the full text to w, one chunk at a time.
func (r Rope) WriteTo(w io.Writer) (int64, error) {
	var n int64
	it := r.Chunks()
	for it.Next() {
		m, err := io.WriteString(w, it.Text())
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// Slice returns the text in the byte range [start, end).
func (r Rope) Slice(start, end int) string {
	r.checkRange(start, end)
	if start == end {
		return ""
	}
	var sb strings.Builder
	sb.Grow(end - start)
	c := btree.NewCursor(r.t)
	c.Seek(start)
	for c.Valid() && c.LeafStart() < end {
		chunk := c.Leaf()
		lo := start - c.LeafStart()
		if lo < 0 {
			lo = 0
		}
		hi := end - c.LeafStart()
		if hi > chunk.Len() {
			hi = chunk.Len()
		}
		sb.WriteString(chunk.text[lo:hi])
		if !c.NextLeaf() {
			break
		}
	}
	return sb.String()
}

// Subrope returns the rope covering [start, end) without copying untouched
// chunks. Bounds are rounded down to the nearest boundary of the given
// granularity before slicing.
func (r Rope) Subrope(start, end int, g Granularity) Rope {
	r.checkRange(start, end)
	switch g {
	case GranScalar:
		start = r.floorScalar(start)
		end = r.floorScalar(end)
	case GranChar:
		start = r.floorChar(start)
		end = r.floorChar(end)
	default:
		panic("rope: unknown granularity")
	}
	return Rope{t: normalizeFront(r.t.Slice(start, end))}
}

// ByteAt returns the byte at the given offset.
func (r Rope) ByteAt(offset int) byte {
	if offset < 0 || offset >= r.Len() {
		panic(fmt.Sprintf("rope: offset %d out of range [0, %d)", offset, r.Len()))
	}
	chunk, local := r.t.LeafAt(offset)
	return chunk.text[local]
}

// ScalarAt returns the Unicode scalar starting at the given offset.
// Panics if offset does not fall on a scalar boundary.
func (r Rope) ScalarAt(offset int) rune {
	if offset < 0 || offset >= r.Len() {
		panic(fmt.Sprintf("rope: offset %d out of range [0, %d)", offset, r.Len()))
	}
	chunk, local := r.t.LeafAt(offset)
	if !utf8.RuneStart(chunk.text[local]) {
		panic(fmt.Sprintf("rope: offset %d is not a scalar boundary", offset))
	}
	rn, _ := utf8.DecodeRuneInString(chunk.text[local:])
	return rn
}

// CharAt returns the character (extended grapheme cluster) starting at the
// given offset. The cluster may span multiple scalars and multiple chunks.
// Panics if offset does not fall on a character boundary.
func (r Rope) CharAt(offset int) string {
	if offset < 0 || offset >= r.Len() {
		panic(fmt.Sprintf("rope: offset %d out of range [0, %d)", offset, r.Len()))
	}
	if !r.t.IsBoundary(charMetric, offset) {
		panic(fmt.Sprintf("rope: offset %d is not a character boundary", offset))
	}
	end, _ := r.t.NextBoundary(charMetric, offset)
	return r.Slice(offset, end)
}

// Replace replaces the byte range [start, end) with text, returning a new
// rope. Both bounds are rounded down to scalar boundaries before the edit,
// so a range can never begin or end inside an encoded scalar. Character
// segmentation across the edit seams is recomputed, never carried over.
// Panics if text is not valid UTF-8.
func (r Rope) Replace(start, end int, text string) Rope {
	r.checkRange(start, end)
	if !utf8.ValidString(text) {
		panic("rope: text is not valid UTF-8")
	}
	start = r.floorScalar(start)
	end = r.floorScalar(end)
	if start == end && len(text) == 0 {
		return r
	}
	var b btree.Builder[Chunk, TextSummary]
	b.PushTreeRange(r.t, 0, start)
	pushString(&b, text, GraphemeBreaker{})
	b.PushTreeRange(r.t, end, r.Len())
	return Rope{t: b.Build()}
}

// Insert inserts text at the given byte offset.
func (r Rope) Insert(offset int, text string) Rope {
	return r.Replace(offset, offset, text)
}

// Delete removes the byte range [start, end).
func (r Rope) Delete(start, end int) Rope {
	return r.Replace(start, end, "")
}

// Concat concatenates two ropes. Character segmentation across the joined
// seam is recomputed, so a combining scalar at the start of other attaches
// to the final character of r.
func (r Rope) Concat(other Rope) Rope {
	return Rope{t: r.t.Concat(other.t)}
}

// Split splits the rope at offset, rounded down to a scalar boundary.
// The left rope covers [0, offset), the right [offset, Len).
func (r Rope) Split(offset int) (Rope, Rope) {
	r.checkOffset(offset)
	offset = r.floorScalar(offset)
	left := Rope{t: r.t.Slice(0, offset)}
	right := Rope{t: normalizeFront(r.t.Slice(offset, r.Len()))}
	return left, right
}

// Equals reports whether two ropes hold the same scalar sequence. The
// comparison is independent of chunk layout and does not normalize, so
// canonically equivalent but differently encoded text compares unequal.
func (r Rope) Equals(other Rope) bool {
	if r.t.Shares(other.t) {
		return true
	}
	if r.Len() != other.Len() {
		return false
	}
	if r.IsEmpty() {
		return true
	}
	ca := btree.NewCursor(r.t)
	cb := btree.NewCursor(other.t)
	ca.Seek(0)
	cb.Seek(0)
	sa, sb := ca.Leaf().text, cb.Leaf().text
	for {
		n := len(sa)
		if len(sb) < n {
			n = len(sb)
		}
		if n == 0 {
			if len(sa) == 0 {
				if !ca.NextLeaf() {
					return true
				}
				sa = ca.Leaf().text
			}
			if len(sb) == 0 {
				if !cb.NextLeaf() {
					return true
				}
				sb = cb.Leaf().text
			}
			continue
		}
		if sa[:n] != sb[:n] {
			return false
		}
		sa, sb = sa[n:], sb[n:]
	}
}

// Line returns the text of line i, including its trailing newline. The last
// line has no newline; text ending in '\n' therefore has a final empty line.
func (r Rope) Line(i int) string {
	start, end := r.LineRange(i)
	return r.Slice(start, end)
}

// LineRange returns the byte range [start, end) of line i. Line i spans
// from the start of line i to the start of line i+1, or to the end of the
// rope for the last line.
func (r Rope) LineRange(i int) (int, int) {
	newlines := r.t.Measure(lineMetric)
	if i < 0 || i > newlines {
		panic(fmt.Sprintf("rope: line %d out of range [0, %d]", i, newlines))
	}
	start := r.t.BaseFromUnits(lineMetric, i)
	if i == newlines {
		return start, r.Len()
	}
	return start, r.t.BaseFromUnits(lineMetric, i+1)
}

// LineIndex returns the index of the line containing the given byte offset.
// An offset of Len maps to the last line.
func (r Rope) LineIndex(offset int) int {
	r.checkOffset(offset)
	return r.t.UnitsFromBase(lineMetric, offset)
}

// floorScalar rounds base down to the nearest scalar boundary. Chunks never
// split an encoded scalar, so backing up within the chunk is enough.
func (r Rope) floorScalar(base int) int {
	if base <= 0 || base >= r.Len() {
		return base
	}
	chunk, local := r.t.LeafAt(base)
	start := base - local
	for local > 0 && !utf8.RuneStart(chunk.text[local]) {
		local--
	}
	return start + local
}

// floorChar rounds base down to the nearest character boundary.
func (r Rope) floorChar(base int) int {
	if base <= 0 || base >= r.Len() {
		return base
	}
	if r.t.IsBoundary(charMetric, base) {
		return base
	}
	off, ok := r.t.PrevBoundary(charMetric, base)
	if !ok {
		return 0
	}
	return off
}

// normalizeFront resets the leading chunk of a freshly sliced tree so its
// segmentation starts fresh at offset zero. A slice keeps the carry state of
// text that is no longer part of the sequence; as an independent rope the
// first character begins at the start.
func normalizeFront(t btree.Tree[Chunk, TextSummary]) btree.Tree[Chunk, TextSummary] {
	if t.IsEmpty() {
		return t
	}
	first, _ := t.LeafAt(0)
	if first.start.Equal(GraphemeBreaker{}) {
		return t
	}
	var b btree.Builder[Chunk, TextSummary]
	b.Push(makeChunk(first.text, GraphemeBreaker{}))
	b.PushTreeRange(t, first.Len(), t.Len())
	return b.Build()
}

func (r Rope) checkOffset(base int) {
	if base < 0 || base > r.Len() {
		panic(fmt.Sprintf("rope: offset %d out of range [0, %d]", base, r.Len()))
	}
}

func (r Rope) checkRange(start, end int) {
	if start < 0 || end < start || end > r.Len() {
		panic(fmt.Sprintf("rope: range [%d, %d) invalid for length %d", start, end, r.Len()))
	}
}
