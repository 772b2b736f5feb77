package btree

// Cursor walks a tree's leaves while remembering the root-to-leaf path, so
// sequential stepping costs amortized O(1) and a reposition costs O(log n).
// A cursor reads a single tree; mutating operations return new trees, which
// need new cursors.
type Cursor[L Leaf[L, S], S Summary[S]] struct {
	tree      Tree[L, S]
	stack     []cursorFrame[L, S]
	leaf      L
	leafStart int
	onLeaf    bool
}

// cursorFrame records one descent step: the internal node and the index of
// the child the path continues through.
type cursorFrame[L Leaf[L, S], S Summary[S]] struct {
	n   *node[L, S]
	idx int
}

// NewCursor returns a cursor over t, positioned on nothing. Call Seek or a
// boundary method to place it.
func NewCursor[L Leaf[L, S], S Summary[S]](t Tree[L, S]) *Cursor[L, S] {
	return &Cursor[L, S]{tree: t}
}

// Valid reports whether the cursor is positioned on a leaf.
func (c *Cursor[L, S]) Valid() bool {
	return c.onLeaf
}

// Leaf returns the current leaf. Only meaningful while Valid.
func (c *Cursor[L, S]) Leaf() L {
	return c.leaf
}

// LeafStart returns the absolute base offset of the current leaf's start.
func (c *Cursor[L, S]) LeafStart() int {
	return c.leafStart
}

// Clone returns an independent cursor at the same position.
func (c *Cursor[L, S]) Clone() *Cursor[L, S] {
	cp := *c
	cp.stack = make([]cursorFrame[L, S], len(c.stack))
	copy(cp.stack, c.stack)
	return &cp
}

// Seek positions the cursor on the leaf containing base, resolving a seam
// offset to the righthand leaf. An offset equal to the tree length lands on
// the final leaf. Panics when base is out of range; seeking an empty tree
// leaves the cursor invalid.
func (c *Cursor[L, S]) Seek(base int) {
	c.tree.checkOffset(base)
	c.stack = c.stack[:0]
	c.onLeaf = false
	n := c.tree.root
	if n == nil {
		return
	}
	start := 0
	local := base
	for n.height > 0 {
		i := 0
		for ; i < len(n.children)-1; i++ {
			cnt := n.children[i].count
			if local < cnt {
				break
			}
			local -= cnt
			start += cnt
		}
		c.stack = append(c.stack, cursorFrame[L, S]{n: n, idx: i})
		n = n.children[i]
	}
	c.leaf = n.leaf
	c.leafStart = start
	c.onLeaf = true
}

// seekBefore positions the cursor on the leaf whose content ends at or
// after base, resolving a seam offset to the lefthand leaf.
func (c *Cursor[L, S]) seekBefore(base int) {
	c.tree.checkOffset(base)
	c.stack = c.stack[:0]
	c.onLeaf = false
	n := c.tree.root
	if n == nil {
		return
	}
	start := 0
	local := base
	for n.height > 0 {
		i := 0
		for ; i < len(n.children)-1; i++ {
			cnt := n.children[i].count
			if local <= cnt {
				break
			}
			local -= cnt
			start += cnt
		}
		c.stack = append(c.stack, cursorFrame[L, S]{n: n, idx: i})
		n = n.children[i]
	}
	c.leaf = n.leaf
	c.leafStart = start
	c.onLeaf = true
}

// NextLeaf advances to the following leaf. It reports false and invalidates
// the cursor when the current leaf is the last one.
func (c *Cursor[L, S]) NextLeaf() bool {
	if !c.onLeaf {
		return false
	}
	next := c.leafStart + c.leaf.Len()
	for len(c.stack) > 0 {
		f := &c.stack[len(c.stack)-1]
		if f.idx+1 < len(f.n.children) {
			f.idx++
			c.descendFirst(f.n.children[f.idx])
			c.leafStart = next
			return true
		}
		c.stack = c.stack[:len(c.stack)-1]
	}
	c.onLeaf = false
	return false
}

// PrevLeaf steps back to the preceding leaf. It reports false and
// invalidates the cursor when the current leaf is the first one.
func (c *Cursor[L, S]) PrevLeaf() bool {
	if !c.onLeaf {
		return false
	}
	for len(c.stack) > 0 {
		f := &c.stack[len(c.stack)-1]
		if f.idx > 0 {
			f.idx--
			c.descendLast(f.n.children[f.idx])
			c.leafStart -= c.leaf.Len()
			return true
		}
		c.stack = c.stack[:len(c.stack)-1]
	}
	c.onLeaf = false
	return false
}

// NextBoundary returns the smallest boundary of m strictly greater than
// base. The end of the tree is a boundary for every metric, so the result
// is (Len, true) when no interior boundary remains; it is false only when
// base is already at or past the end.
func (c *Cursor[L, S]) NextBoundary(m Metric[L, S], base int) (int, bool) {
	c.tree.checkOffset(base)
	if base >= c.tree.Len() {
		return 0, false
	}
	c.Seek(base)
	local := base - c.leafStart
	for {
		if p := m.Next(c.leaf, local); p >= 0 {
			return c.leafStart + p, true
		}
		if !c.NextLeaf() {
			return c.tree.Len(), true
		}
		local = -1
	}
}

// PrevBoundary returns the largest boundary of m strictly smaller than
// base. The start of the tree is a boundary for every metric, so the result
// is (0, true) when no interior boundary precedes base; it is false only
// when base is already zero.
func (c *Cursor[L, S]) PrevBoundary(m Metric[L, S], base int) (int, bool) {
	c.tree.checkOffset(base)
	if base <= 0 {
		return 0, false
	}
	c.seekBefore(base)
	local := base - c.leafStart
	for {
		if p := m.Prev(c.leaf, local); p >= 0 {
			return c.leafStart + p, true
		}
		if !c.PrevLeaf() {
			return 0, true
		}
		n := c.leaf.Len()
		if m.Edge() == EdgeTrailing && m.IsBoundary(c.leaf, n) {
			return c.leafStart + n, true
		}
		local = n
	}
}

func (c *Cursor[L, S]) descendFirst(n *node[L, S]) {
	for n.height > 0 {
		c.stack = append(c.stack, cursorFrame[L, S]{n: n, idx: 0})
		n = n.children[0]
	}
	c.leaf = n.leaf
	c.onLeaf = true
}

func (c *Cursor[L, S]) descendLast(n *node[L, S]) {
	for n.height > 0 {
		last := len(n.children) - 1
		c.stack = append(c.stack, cursorFrame[L, S]{n: n, idx: last})
		n = n.children[last]
	}
	c.leaf = n.leaf
	c.onLeaf = true
}
