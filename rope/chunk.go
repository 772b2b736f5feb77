package rope

import (
	"strings"
	"unicode/utf8"
)

// Chunk size bounds in bytes. Every chunk except a lone root stays within
// them; seams between chunks always fall on scalar boundaries.
const (
	// MinChunkSize is the smallest interior chunk.
	MinChunkSize = 511

	// MaxChunkSize is the largest chunk.
	MaxChunkSize = 1023
)

// Chunk is the leaf payload of a rope: a bounded run of UTF-8 text plus the
// grapheme state carried across its seams. Chunks are immutable.
//
// prefix is the byte offset of the first grapheme cluster that starts inside
// the chunk, or the chunk length when the whole chunk continues a cluster
// begun earlier. start and end are the breaker states entering and leaving
// the chunk; summaries count only what begins inside the chunk, so they stay
// additive across seams.
type Chunk struct {
	text    string
	prefix  int
	start   GraphemeBreaker
	end     GraphemeBreaker
	summary TextSummary
}

// makeChunk builds a chunk from text and the breaker state at its start,
// computing the prefix, the carried end state, and the summary in one scan.
func makeChunk(text string, start GraphemeBreaker) Chunk {
	c := Chunk{text: text, start: start, prefix: len(text)}
	first := true
	c.end = start.scanText(text, func(p int) bool {
		if first {
			c.prefix = p
			first = false
		}
		c.summary.Chars++
		return true
	})
	for _, r := range text {
		c.summary.Scalars++
		c.summary.UTF16 += utf16Len(r)
		if r == '\n' {
			c.summary.Newlines++
		}
	}
	return c
}

// String returns the chunk's text.
func (c Chunk) String() string {
	return c.text
}

// Summary returns the chunk's cached metrics.
func (c Chunk) Summary() TextSummary {
	return c.summary
}

// Summarize implements the leaf contract.
func (c Chunk) Summarize() TextSummary {
	return c.summary
}

// Len returns the byte length of the chunk.
func (c Chunk) Len() int {
	return len(c.text)
}

// IsUndersized reports whether the chunk is below the minimum size.
func (c Chunk) IsUndersized() bool {
	return len(c.text) < MinChunkSize
}

// Append combines other onto the end of the chunk, splitting when the
// result would exceed MaxChunkSize. Both results are rescanned from the
// receiver's start state, so the shared seam needs no further repair.
func (c Chunk) Append(other Chunk) (Chunk, Chunk, bool) {
	combined := c.text + other.text
	if len(combined) <= MaxChunkSize {
		return makeChunk(combined, c.start), Chunk{}, false
	}
	cut := splitCut(combined)
	left := makeChunk(combined[:cut], c.start)
	return left, makeChunk(combined[cut:], left.end), true
}

// Slice returns the sub-chunk covering bytes [start, end). The breaker
// state at start is replayed from the chunk's own start state, so the
// sliced chunk keeps its surrounding context.
func (c Chunk) Slice(start, end int) Chunk {
	if start == 0 && end == len(c.text) {
		return c
	}
	st := c.start
	if start > 0 {
		st = c.start.scanText(c.text[:start], nil)
	}
	return makeChunk(c.text[start:end], st)
}

// Fixup repairs the grapheme seam after c and next become newly adjacent.
// When the carried states already agree nothing changes. Otherwise next is
// rescanned from c's end state; repair is complete once next's own end
// state is unaffected, since every later seam then still holds.
func (c Chunk) Fixup(next Chunk) (Chunk, Chunk, bool) {
	if c.end.Equal(next.start) {
		return c, next, true
	}
	repaired := makeChunk(next.text, c.end)
	return c, repaired, repaired.end.Equal(next.end)
}

// charStarts calls fn with each grapheme cluster start offset in the chunk,
// in increasing order, until fn returns false. Scanning restarts fresh at
// the prefix, which is a known boundary.
func (c Chunk) charStarts(fn func(int) bool) {
	if c.prefix >= len(c.text) {
		return
	}
	(GraphemeBreaker{}).scanText(c.text[c.prefix:], func(p int) bool {
		return fn(c.prefix + p)
	})
}

// isCharStart reports whether a grapheme cluster starts at local.
func (c Chunk) isCharStart(local int) bool {
	if local < c.prefix || local >= len(c.text) {
		return false
	}
	if local == c.prefix {
		return true
	}
	found := false
	c.charStarts(func(p int) bool {
		if p == local {
			found = true
		}
		return p < local
	})
	return found
}

// nextCharStart returns the smallest cluster start greater than local, or
// -1 when the chunk has none.
func (c Chunk) nextCharStart(local int) int {
	next := -1
	c.charStarts(func(p int) bool {
		if p > local {
			next = p
			return false
		}
		return true
	})
	return next
}

// prevCharStart returns the largest cluster start smaller than local, or -1.
func (c Chunk) prevCharStart(local int) int {
	prev := -1
	c.charStarts(func(p int) bool {
		if p >= local {
			return false
		}
		prev = p
		return true
	})
	return prev
}

// charStartsBefore counts cluster starts strictly before local.
func (c Chunk) charStartsBefore(local int) int {
	n := 0
	c.charStarts(func(p int) bool {
		if p >= local {
			return false
		}
		n++
		return true
	})
	return n
}

// charStartAt returns the offset of the u-th cluster start in the chunk.
// The caller guarantees u is in range.
func (c Chunk) charStartAt(u int) int {
	pos := -1
	c.charStarts(func(p int) bool {
		if u == 0 {
			pos = p
			return false
		}
		u--
		return true
	})
	if pos < 0 {
		panic("rope: grapheme offset out of range in chunk")
	}
	return pos
}

// splitCut picks the split point for combined text longer than MaxChunkSize,
// preferring a point just after a newline and otherwise the scalar boundary
// nearest the midpoint. Combined input never exceeds MinChunkSize-1 +
// MaxChunkSize bytes, so a window keeping both halves within bounds exists
// whenever scalar boundaries allow.
func splitCut(s string) int {
	lo := len(s) - MaxChunkSize
	if lo < MinChunkSize {
		lo = MinChunkSize
	}
	hi := MaxChunkSize
	if m := len(s) - MinChunkSize; m < hi {
		hi = m
	}
	if lo <= hi {
		if idx := strings.LastIndexByte(s[lo-1:hi], '\n'); idx >= 0 {
			return lo + idx
		}
	}
	cut := (len(s) + 1) / 2
	if cut > hi {
		cut = hi
	}
	if cut < lo {
		cut = lo
	}
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return cut
}

// chunkCut picks a cut point for streaming construction: as much as fits in
// one chunk, pulled back to just after the last newline in the legal window
// when one exists, and to a scalar boundary otherwise. The remainder may be
// arbitrarily short; trailing merges handle it.
func chunkCut(s string) int {
	if idx := strings.LastIndexByte(s[MinChunkSize-1:MaxChunkSize], '\n'); idx >= 0 {
		return MinChunkSize + idx
	}
	cut := MaxChunkSize
	for !utf8.RuneStart(s[cut]) {
		cut--
	}
	return cut
}
