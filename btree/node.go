package btree

// node is a tree node. Height zero nodes carry a leaf payload; taller nodes
// carry 2-8 children of uniform height. Nodes are immutable once built and
// may be shared by any number of trees; mutation always goes through copies.
type node[L Leaf[L, S], S Summary[S]] struct {
	height  uint8
	count   int
	summary S

	children []*node[L, S]
	leaf     L
}

func newLeafNode[L Leaf[L, S], S Summary[S]](leaf L) *node[L, S] {
	return &node[L, S]{
		count:   leaf.Len(),
		summary: leaf.Summarize(),
		leaf:    leaf,
	}
}

func newInternalNode[L Leaf[L, S], S Summary[S]](children []*node[L, S]) *node[L, S] {
	n := &node[L, S]{
		height:   children[0].height + 1,
		children: children,
	}
	n.recompute()
	return n
}

// clone returns a shallow copy with its own children slice, the unit of
// path-copying during edits.
func (n *node[L, S]) clone() *node[L, S] {
	c := *n
	if len(n.children) > 0 {
		c.children = make([]*node[L, S], len(n.children))
		copy(c.children, n.children)
	}
	return &c
}

// recompute refreshes count and summary from the current children.
func (n *node[L, S]) recompute() {
	var s S
	n.count = 0
	for _, c := range n.children {
		n.count += c.count
		s = s.Add(c.summary)
	}
	n.summary = s
}

// okChild reports whether n can serve as an interior child without
// violating the minimum size bounds.
func okChild[L Leaf[L, S], S Summary[S]](n *node[L, S]) bool {
	if n.height == 0 {
		return !n.leaf.IsUndersized()
	}
	return len(n.children) >= MinChildren
}

func (n *node[L, S]) firstLeaf() L {
	for n.height > 0 {
		n = n.children[0]
	}
	return n.leaf
}

func (n *node[L, S]) lastLeaf() L {
	for n.height > 0 {
		n = n.children[len(n.children)-1]
	}
	return n.leaf
}

// withTrailingLeaf returns a copy of n whose rightmost leaf is replaced.
// Only the rightmost spine is copied; everything else is shared.
func withTrailingLeaf[L Leaf[L, S], S Summary[S]](n *node[L, S], leaf L) *node[L, S] {
	if n.height == 0 {
		return newLeafNode[L, S](leaf)
	}
	c := n.clone()
	last := len(c.children) - 1
	c.children[last] = withTrailingLeaf(c.children[last], leaf)
	c.recompute()
	return c
}

// walkLeaves visits n's leaves in order until fn returns false.
func walkLeaves[L Leaf[L, S], S Summary[S]](n *node[L, S], fn func(L) bool) bool {
	if n.height == 0 {
		return fn(n.leaf)
	}
	for _, c := range n.children {
		if !walkLeaves(c, fn) {
			return false
		}
	}
	return true
}

// withLeadingLeaves returns a copy of n whose leftmost leaves are replaced
// by vals in order, consuming from the front of vals. The remainder of vals
// is returned; the caller guarantees len(vals) does not exceed n's leaf
// count. Replaced spines are copied, the rest of n is shared.
func withLeadingLeaves[L Leaf[L, S], S Summary[S]](n *node[L, S], vals []L) (*node[L, S], []L) {
	if len(vals) == 0 {
		return n, vals
	}
	if n.height == 0 {
		return newLeafNode[L, S](vals[0]), vals[1:]
	}
	c := n.clone()
	for i := range c.children {
		if len(vals) == 0 {
			break
		}
		c.children[i], vals = withLeadingLeaves(c.children[i], vals)
	}
	c.recompute()
	return c, vals
}

// concatNodes joins two subtrees of any heights into one balanced tree.
// Boundary leaves merge through Append when either is undersized; otherwise
// the seam leaves must already be mutually consistent, which the builder
// guarantees by repairing seams before structural joins. The result may be
// one level taller than the taller input.
func concatNodes[L Leaf[L, S], S Summary[S]](a, b *node[L, S]) *node[L, S] {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.height < b.height:
		left := concatNodes(a, b.children[0])
		if left.height == b.height {
			return mergeNodes(left.children, b.children[1:])
		}
		return mergeNodes([]*node[L, S]{left}, b.children[1:])
	case a.height > b.height:
		last := len(a.children) - 1
		right := concatNodes(a.children[last], b)
		if right.height == a.height {
			return mergeNodes(a.children[:last], right.children)
		}
		return mergeNodes(a.children[:last], []*node[L, S]{right})
	case a.height == 0:
		return concatLeafNodes(a, b)
	default:
		return mergeNodes(a.children, b.children)
	}
}

// concatLeafNodes joins two height-zero nodes. Undersized leaves merge via
// Append; well-sized pairs become siblings under a new parent.
func concatLeafNodes[L Leaf[L, S], S Summary[S]](a, b *node[L, S]) *node[L, S] {
	if a.leaf.IsUndersized() || b.leaf.IsUndersized() {
		merged, right, split := a.leaf.Append(b.leaf)
		if !split {
			return newLeafNode[L, S](merged)
		}
		return newInternalNode([]*node[L, S]{
			newLeafNode[L, S](merged),
			newLeafNode[L, S](right),
		})
	}
	return newInternalNode([]*node[L, S]{a, b})
}

// mergeNodes combines two runs of equal-height nodes into a single parent,
// or a parent of two redistributed halves when the combined run exceeds
// MaxChildren. Both halves of a split stay within child bounds because the
// combined length never exceeds 2*MaxChildren.
func mergeNodes[L Leaf[L, S], S Summary[S]](xs, ys []*node[L, S]) *node[L, S] {
	combined := make([]*node[L, S], 0, len(xs)+len(ys))
	combined = append(combined, xs...)
	combined = append(combined, ys...)
	if len(combined) <= MaxChildren {
		return newInternalNode(combined)
	}
	half := len(combined) / 2
	return newInternalNode([]*node[L, S]{
		newInternalNode(combined[:half:half]),
		newInternalNode(combined[half:]),
	})
}
