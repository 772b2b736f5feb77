package rope

import (
	"strings"
	"unicode/utf8"

	"github.com/dshills/weft/btree"
)

// TextSummary aggregates the counts cached per subtree. Byte counts are the
// tree's base units and are tracked by the tree itself. All fields count
// only what begins inside the summarized text, so summaries add cleanly
// across chunk seams.
type TextSummary struct {
	// UTF16 is the UTF-16 code unit count.
	UTF16 int

	// Scalars is the Unicode scalar value count.
	Scalars int

	// Chars is the number of grapheme clusters that start in the text.
	Chars int

	// Newlines is the newline byte count.
	Newlines int
}

// Add combines two summaries covering adjacent text.
func (s TextSummary) Add(other TextSummary) TextSummary {
	return TextSummary{
		UTF16:    s.UTF16 + other.UTF16,
		Scalars:  s.Scalars + other.Scalars,
		Chars:    s.Chars + other.Chars,
		Newlines: s.Newlines + other.Newlines,
	}
}

// Unit selects the coordinate system of a rope query. All units share the
// same underlying byte positions; converting between them goes through the
// tree's cached summaries.
type Unit int

const (
	// Bytes addresses raw UTF-8 bytes.
	Bytes Unit = iota

	// UTF16 addresses UTF-16 code units. Offsets inside a surrogate pair
	// round down to the scalar's start.
	UTF16

	// Scalars addresses Unicode scalar values.
	Scalars

	// Chars addresses grapheme clusters, the default user-perceived unit.
	Chars

	// Lines addresses lines split after each newline byte.
	Lines
)

// String returns the unit's name.
func (u Unit) String() string {
	switch u {
	case Bytes:
		return "bytes"
	case UTF16:
		return "utf16"
	case Scalars:
		return "scalars"
	case Chars:
		return "chars"
	case Lines:
		return "lines"
	}
	return "unknown"
}

// Granularity selects the boundary rule used when cutting a sub-rope.
type Granularity int

const (
	// GranScalar rounds cut points down to scalar boundaries. A cut may
	// split a grapheme cluster; the pieces rescan as their own clusters.
	GranScalar Granularity = iota

	// GranChar rounds cut points down to grapheme cluster boundaries.
	GranChar
)

func utf16Len(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}

// Metric singletons, one per unit.
var (
	byteMetric   btree.Metric[Chunk, TextSummary] = bytesMetric{}
	utf16Metric  btree.Metric[Chunk, TextSummary] = utf16UnitsMetric{}
	scalarMetric btree.Metric[Chunk, TextSummary] = scalarsMetric{}
	charMetric   btree.Metric[Chunk, TextSummary] = charsMetric{}
	lineMetric   btree.Metric[Chunk, TextSummary] = linesMetric{}
)

func metricFor(u Unit) btree.Metric[Chunk, TextSummary] {
	switch u {
	case Bytes:
		return byteMetric
	case UTF16:
		return utf16Metric
	case Scalars:
		return scalarMetric
	case Chars:
		return charMetric
	case Lines:
		return lineMetric
	}
	panic("rope: unknown unit")
}

// scalarBoundary helpers shared by the scalar and UTF-16 metrics, whose
// base positions are both the scalar starts.

func scalarIsBoundary(c Chunk, base int) bool {
	return base >= 0 && base < len(c.text) && utf8.RuneStart(c.text[base])
}

func scalarNext(c Chunk, base int) int {
	for i := base + 1; i < len(c.text); i++ {
		if utf8.RuneStart(c.text[i]) {
			return i
		}
	}
	return -1
}

func scalarPrev(c Chunk, base int) int {
	for i := base - 1; i >= 0; i-- {
		if utf8.RuneStart(c.text[i]) {
			return i
		}
	}
	return -1
}

type bytesMetric struct{}

func (bytesMetric) Measure(_ TextSummary, count int) int { return count }
func (bytesMetric) ToBase(_ Chunk, units int) int { return units }
func (bytesMetric) FromBase(_ Chunk, base int) int { return base }
func (bytesMetric) IsBoundary(_ Chunk, _ int) bool { return true }
func (bytesMetric) CanFragment() bool { return false }
func (bytesMetric) Edge() btree.EdgeKind { return btree.EdgeAtomic }

func (bytesMetric) Next(c Chunk, base int) int {
	if base+1 < len(c.text) {
		return base + 1
	}
	return -1
}

func (bytesMetric) Prev(_ Chunk, base int) int {
	if base >= 1 {
		return base - 1
	}
	return -1
}

type scalarsMetric struct{}

func (scalarsMetric) Measure(s TextSummary, _ int) int { return s.Scalars }

func (scalarsMetric) ToBase(c Chunk, units int) int {
	i := 0
	for u := 0; u < units; u++ {
		_, size := utf8.DecodeRuneInString(c.text[i:])
		i += size
	}
	return i
}

func (scalarsMetric) FromBase(c Chunk, base int) int {
	n := 0
	for i := 0; i < base; i++ {
		if utf8.RuneStart(c.text[i]) {
			n++
		}
	}
	return n
}

func (scalarsMetric) IsBoundary(c Chunk, base int) bool { return scalarIsBoundary(c, base) }
func (scalarsMetric) Next(c Chunk, base int) int { return scalarNext(c, base) }
func (scalarsMetric) Prev(c Chunk, base int) int { return scalarPrev(c, base) }
func (scalarsMetric) CanFragment() bool { return false }
func (scalarsMetric) Edge() btree.EdgeKind { return btree.EdgeLeading }

type utf16UnitsMetric struct{}

func (utf16UnitsMetric) Measure(s TextSummary, _ int) int { return s.UTF16 }

// ToBase rounds an offset landing inside a surrogate pair down to the start
// of the scalar that owns the pair.
func (utf16UnitsMetric) ToBase(c Chunk, units int) int {
	u := 0
	for i, r := range c.text {
		n := utf16Len(r)
		if units < u+n {
			return i
		}
		u += n
	}
	return len(c.text)
}

func (utf16UnitsMetric) FromBase(c Chunk, base int) int {
	u := 0
	for i, r := range c.text {
		if i >= base {
			break
		}
		u += utf16Len(r)
	}
	return u
}

func (utf16UnitsMetric) IsBoundary(c Chunk, base int) bool { return scalarIsBoundary(c, base) }
func (utf16UnitsMetric) Next(c Chunk, base int) int { return scalarNext(c, base) }
func (utf16UnitsMetric) Prev(c Chunk, base int) int { return scalarPrev(c, base) }
func (utf16UnitsMetric) CanFragment() bool { return false }
func (utf16UnitsMetric) Edge() btree.EdgeKind { return btree.EdgeLeading }

type charsMetric struct{}

func (charsMetric) Measure(s TextSummary, _ int) int { return s.Chars }
func (charsMetric) ToBase(c Chunk, units int) int { return c.charStartAt(units) }
func (charsMetric) FromBase(c Chunk, base int) int { return c.charStartsBefore(base) }
func (charsMetric) IsBoundary(c Chunk, base int) bool { return c.isCharStart(base) }
func (charsMetric) Next(c Chunk, base int) int { return c.nextCharStart(base) }
func (charsMetric) Prev(c Chunk, base int) int { return c.prevCharStart(base) }
func (charsMetric) CanFragment() bool { return true }
func (charsMetric) Edge() btree.EdgeKind { return btree.EdgeLeading }

type linesMetric struct{}

func (linesMetric) Measure(s TextSummary, _ int) int { return s.Newlines }

func (linesMetric) ToBase(c Chunk, units int) int {
	seen := 0
	for i := 0; i < len(c.text); i++ {
		if c.text[i] == '\n' {
			seen++
			if seen == units {
				return i + 1
			}
		}
	}
	if units == 0 {
		return 0
	}
	panic("rope: line offset out of range in chunk")
}

func (linesMetric) FromBase(c Chunk, base int) int {
	return strings.Count(c.text[:base], "\n")
}

func (linesMetric) IsBoundary(c Chunk, base int) bool {
	return base > 0 && c.text[base-1] == '\n'
}

func (linesMetric) Next(c Chunk, base int) int {
	from := base
	if from < 0 {
		from = 0
	}
	if from >= len(c.text) {
		return -1
	}
	idx := strings.IndexByte(c.text[from:], '\n')
	if idx < 0 {
		return -1
	}
	return from + idx + 1
}

func (linesMetric) Prev(c Chunk, base int) int {
	if base <= 1 {
		return -1
	}
	idx := strings.LastIndexByte(c.text[:base-1], '\n')
	if idx < 0 {
		return -1
	}
	return idx + 1
}

func (linesMetric) CanFragment() bool { return true }
func (linesMetric) Edge() btree.EdgeKind { return btree.EdgeTrailing }
