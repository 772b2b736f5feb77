package rope

import (
	"fmt"

	"github.com/dshills/weft/btree"
)

// Index is a position within a rope, held as a byte offset bound to the
// rope value it was created from. Mutating operations return new ropes, so
// an index is only meaningful against its source; using it with any other
// rope panics rather than returning a plausible but wrong position.
type Index struct {
	base int
	tree btree.Tree[Chunk, TextSummary]
}

// Base returns the byte offset of the index.
func (ix Index) Base() int {
	return ix.base
}

// Start returns the index of the first position in the rope.
func (r Rope) Start() Index {
	return Index{base: 0, tree: r.t}
}

// End returns the index one past the last byte of the rope.
func (r Rope) End() Index {
	return Index{base: r.Len(), tree: r.t}
}

// IndexAt returns the index of the n-th boundary in the given unit, so
// IndexAt(0, unit) is Start and IndexAt(Count(unit), unit) is End. For
// Lines, n selects the start of line n.
func (r Rope) IndexAt(n int, unit Unit) Index {
	if unit == Lines {
		count := r.Count(Lines)
		if n < 0 || n > count {
			panic(fmt.Sprintf("rope: line index %d out of range [0, %d]", n, count))
		}
		if n == count {
			return r.End()
		}
		return Index{base: r.t.BaseFromUnits(lineMetric, n), tree: r.t}
	}
	return Index{base: r.t.BaseFromUnits(metricFor(unit), n), tree: r.t}
}

// IndexBefore returns the nearest boundary in the given unit strictly
// before ix. Panics at the start of the rope.
func (r Rope) IndexBefore(ix Index, unit Unit) Index {
	r.validate(ix)
	off, ok := r.t.PrevBoundary(metricFor(unit), ix.base)
	if !ok {
		panic("rope: no boundary before start")
	}
	return Index{base: off, tree: r.t}
}

// IndexAfter returns the nearest boundary in the given unit strictly after
// ix. Panics at the end of the rope.
func (r Rope) IndexAfter(ix Index, unit Unit) Index {
	r.validate(ix)
	off, ok := r.t.NextBoundary(metricFor(unit), ix.base)
	if !ok {
		panic("rope: no boundary after end")
	}
	return Index{base: off, tree: r.t}
}

// IndexOffsetBy returns the boundary n units away from ix. The index is
// first rounded down to a boundary of the unit, so the result always lands
// on a valid boundary. Panics if the target falls outside the rope.
func (r Rope) IndexOffsetBy(ix Index, n int, unit Unit) Index {
	r.validate(ix)
	m := metricFor(unit)
	u := r.t.UnitsFromBase(m, r.floorBoundary(ix.base, m)) + n
	if u < 0 || u > r.t.Measure(m) {
		panic(fmt.Sprintf("rope: offset by %d %s out of range", n, unit))
	}
	return Index{base: r.t.BaseFromUnits(m, u), tree: r.t}
}

// Distance returns the number of boundaries of the given unit between a and
// b, negative when b precedes a. Both indices are rounded down to unit
// boundaries first.
func (r Rope) Distance(a, b Index, unit Unit) int {
	r.validate(a)
	r.validate(b)
	m := metricFor(unit)
	ua := r.t.UnitsFromBase(m, r.floorBoundary(a.base, m))
	ub := r.t.UnitsFromBase(m, r.floorBoundary(b.base, m))
	return ub - ua
}

// floorBoundary rounds base down to the nearest boundary of m.
func (r Rope) floorBoundary(base int, m btree.Metric[Chunk, TextSummary]) int {
	if r.t.IsBoundary(m, base) {
		return base
	}
	off, ok := r.t.PrevBoundary(m, base)
	if !ok {
		return 0
	}
	return off
}

func (r Rope) validate(ix Index) {
	if !ix.tree.Shares(r.t) {
		panic("rope: index from a different rope")
	}
}
