package btree

import "fmt"

// Tree structure parameters. Internal nodes hold between MinChildren and
// MaxChildren children except the root, which may hold fewer.
const (
	MinChildren = 4
	MaxChildren = 8
)

// Summary is a fixed-size aggregate computed from leaf content. Add must be
// associative, and the zero value of S must be the identity: combining any
// summary with a zero summary yields the original.
type Summary[S any] interface {
	// Add combines two summaries covering adjacent content, receiver first.
	Add(other S) S
}

// Leaf is the payload stored at height zero. Implementations are immutable
// values: every method returns new leaves and leaves the receiver intact.
type Leaf[L, S any] interface {
	// Summarize computes the summary for the leaf's content.
	Summarize() S

	// Len reports the leaf's length in base units.
	Len() int

	// IsUndersized reports whether the leaf is below its minimum size and
	// must be merged with a neighbor before construction finishes.
	IsUndersized() bool

	// Append combines other onto the end of the receiver. When the combined
	// content fits in one leaf it returns (combined, zero, false). Otherwise
	// it splits at a content-appropriate boundary and returns
	// (left, right, true) where both results satisfy the size bounds.
	Append(other L) (L, L, bool)

	// Slice returns the sub-leaf covering base units [start, end), renumbered
	// to start at zero. Callers guarantee 0 <= start <= end <= Len.
	Slice(start, end int) L

	// Fixup repairs cross-leaf state after the receiver and next become
	// newly adjacent. It returns the rewritten receiver, the rewritten next
	// leaf, and whether repair is complete. A false result requests that the
	// caller continue fixing up at the seam after next.
	Fixup(next L) (L, L, bool)
}

// EdgeKind declares how a metric resolves positions that fall exactly on an
// element edge.
type EdgeKind int

const (
	// EdgeAtomic marks metrics where every base offset is a boundary.
	EdgeAtomic EdgeKind = iota
	// EdgeLeading marks metrics that count an element at its start. A
	// boundary on a leaf seam belongs to the righthand leaf at offset zero.
	EdgeLeading
	// EdgeTrailing marks metrics that count an element at its end. A
	// boundary on a leaf seam belongs to the lefthand leaf at its length.
	EdgeTrailing
)

// Metric is a coordinate system derived from a tree's summaries. Conversions
// inside a single leaf may scan the leaf; conversions across the tree use
// cached summaries and touch O(log n) nodes.
//
// Boundary positions are leaf-local base offsets. Leading metrics report
// boundaries in [0, Len); trailing metrics report boundaries in (0, Len].
// Together with the seam-ownership rules on EdgeKind this keeps every tree
// boundary reported by exactly one leaf.
type Metric[L, S any] interface {
	// Measure projects a summary plus its base-unit count to metric units.
	Measure(summary S, count int) int

	// ToBase converts a metric offset inside leaf to a base offset.
	ToBase(leaf L, units int) int

	// FromBase converts a base offset inside leaf to metric units, counting
	// whole units strictly before the offset.
	FromBase(leaf L, base int) int

	// IsBoundary reports whether the leaf-local base offset is a unit
	// boundary under this metric.
	IsBoundary(leaf L, base int) bool

	// Next returns the smallest boundary greater than base within the leaf,
	// or -1 when none exists.
	Next(leaf L, base int) int

	// Prev returns the largest boundary smaller than base within the leaf,
	// or -1 when none exists.
	Prev(leaf L, base int) int

	// CanFragment reports whether a single element of this metric may span
	// multiple leaves.
	CanFragment() bool

	// Edge declares the metric's boundary-ownership rule.
	Edge() EdgeKind
}

// Tree is an immutable balanced sequence of leaves. The zero value is an
// empty tree. Trees are cheap values: copying one copies a single pointer,
// and all mutating operations return new trees sharing unmodified nodes.
type Tree[L Leaf[L, S], S Summary[S]] struct {
	root *node[L, S]
}

// FromLeaf returns a tree holding a single leaf. The leaf may be undersized;
// a lone root leaf is exempt from the minimum-size invariant.
func FromLeaf[L Leaf[L, S], S Summary[S]](leaf L) Tree[L, S] {
	return Tree[L, S]{root: newLeafNode[L, S](leaf)}
}

// Len reports the total length in base units.
func (t Tree[L, S]) Len() int {
	if t.root == nil {
		return 0
	}
	return t.root.count
}

// IsEmpty reports whether the tree holds no content.
func (t Tree[L, S]) IsEmpty() bool {
	return t.root == nil || t.root.count == 0
}

// Summary returns the combined summary of the whole tree.
func (t Tree[L, S]) Summary() S {
	if t.root == nil {
		var zero S
		return zero
	}
	return t.root.summary
}

// Height reports the root height; an empty or single-leaf tree has height 0.
func (t Tree[L, S]) Height() int {
	if t.root == nil {
		return 0
	}
	return int(t.root.height)
}

// Shares reports whether both trees are backed by the same root node. It is
// the identity test used to validate externally held positions against the
// tree that produced them.
func (t Tree[L, S]) Shares(other Tree[L, S]) bool {
	return t.root == other.root
}

// Measure projects the whole tree into m's units.
func (t Tree[L, S]) Measure(m Metric[L, S]) int {
	if t.root == nil {
		return 0
	}
	return m.Measure(t.root.summary, t.root.count)
}

// LeafAt returns the leaf containing the base offset and the absolute offset
// at which that leaf begins. An offset equal to Len resolves to the final
// leaf. Panics when the tree is empty or the offset is out of range.
func (t Tree[L, S]) LeafAt(base int) (L, int) {
	if t.root == nil {
		panic("btree: leaf lookup on empty tree")
	}
	t.checkOffset(base)
	n, start := t.root, 0
	for n.height > 0 {
		i := 0
		for ; i < len(n.children)-1; i++ {
			c := n.children[i].count
			if base < c {
				break
			}
			base -= c
			start += c
		}
		n = n.children[i]
	}
	return n.leaf, start
}

// leafBefore returns the leaf containing base under trailing ownership:
// base resolves into the leaf whose content ends at or after base, so a
// seam offset lands at the end of the lefthand leaf.
func (t Tree[L, S]) leafBefore(base int) (L, int) {
	if t.root == nil {
		panic("btree: leaf lookup on empty tree")
	}
	n, start := t.root, 0
	for n.height > 0 {
		i := 0
		for ; i < len(n.children)-1; i++ {
			c := n.children[i].count
			if base <= c {
				break
			}
			base -= c
			start += c
		}
		n = n.children[i]
	}
	return n.leaf, start
}

// BaseFromUnits converts an offset expressed in m's units to base units.
// Panics when units is outside [0, Measure(m)].
func (t Tree[L, S]) BaseFromUnits(m Metric[L, S], units int) int {
	total := t.Measure(m)
	if units < 0 || units > total {
		panic(fmt.Sprintf("btree: metric offset out of range [%d] with measure %d", units, total))
	}
	if t.root == nil {
		return 0
	}
	trailing := m.Edge() == EdgeTrailing
	if trailing && units == 0 {
		return 0
	}
	if !trailing && units == total {
		// The units-th element does not exist; the only position with that
		// many whole units before it is the end of the tree.
		return t.Len()
	}
	n, base := t.root, 0
	for n.height > 0 {
		i := 0
		for ; i < len(n.children)-1; i++ {
			c := n.children[i]
			cm := m.Measure(c.summary, c.count)
			if units < cm || (trailing && units <= cm && units > 0) {
				break
			}
			units -= cm
			base += c.count
		}
		n = n.children[i]
	}
	return base + m.ToBase(n.leaf, units)
}

// UnitsFromBase converts a base offset to m's units, counting whole unit
// boundaries at or before the offset. Panics when base is out of range.
func (t Tree[L, S]) UnitsFromBase(m Metric[L, S], base int) int {
	t.checkOffset(base)
	if t.root == nil {
		return 0
	}
	n, units := t.root, 0
	for n.height > 0 {
		i := 0
		for ; i < len(n.children)-1; i++ {
			c := n.children[i]
			if base < c.count {
				break
			}
			base -= c.count
			units += m.Measure(c.summary, c.count)
		}
		n = n.children[i]
	}
	return units + m.FromBase(n.leaf, base)
}

// IsBoundary reports whether base lies on a unit boundary of m. The start
// and end of the tree count as boundaries for every metric.
func (t Tree[L, S]) IsBoundary(m Metric[L, S], base int) bool {
	t.checkOffset(base)
	if base == 0 || base == t.Len() {
		return true
	}
	if m.Edge() == EdgeTrailing {
		leaf, start := t.leafBefore(base)
		return m.IsBoundary(leaf, base-start)
	}
	leaf, start := t.LeafAt(base)
	return m.IsBoundary(leaf, base-start)
}

// NextBoundary returns the smallest boundary of m strictly greater than
// base, or (Len, true) when the next boundary is the end of the tree. The
// second result is false when base is already at or past the end.
func (t Tree[L, S]) NextBoundary(m Metric[L, S], base int) (int, bool) {
	return NewCursor(t).NextBoundary(m, base)
}

// PrevBoundary returns the largest boundary of m strictly smaller than
// base, or (0, true) when the previous boundary is the start of the tree.
// The second result is false when base is already at the start.
func (t Tree[L, S]) PrevBoundary(m Metric[L, S], base int) (int, bool) {
	return NewCursor(t).PrevBoundary(m, base)
}

// Slice returns the subtree covering base units [start, end). Fully covered
// leaves are shared with the receiver; only the two edge leaves are re-cut.
func (t Tree[L, S]) Slice(start, end int) Tree[L, S] {
	if start < 0 || end < start || end > t.Len() {
		panic(fmt.Sprintf("btree: slice bounds out of range [%d:%d] with length %d", start, end, t.Len()))
	}
	if start == end {
		return Tree[L, S]{}
	}
	if start == 0 && end == t.Len() {
		return t
	}
	var b Builder[L, S]
	b.pushNodeRange(t.root, start, end)
	return b.Build()
}

// Concat returns the concatenation of t and other. Both inputs are left
// intact; the result shares their unmodified nodes.
func (t Tree[L, S]) Concat(other Tree[L, S]) Tree[L, S] {
	if t.root == nil {
		return other
	}
	if other.root == nil {
		return t
	}
	var b Builder[L, S]
	b.PushTree(t)
	b.PushTree(other)
	return b.Build()
}

func (t Tree[L, S]) checkOffset(base int) {
	if base < 0 || base > t.Len() {
		panic(fmt.Sprintf("btree: offset out of range [%d] with length %d", base, t.Len()))
	}
}
