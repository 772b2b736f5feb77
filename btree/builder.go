package btree

import "fmt"

// Builder assembles a tree from leaves and subtree slices pushed in left to
// right order. The zero value is ready to use.
//
// Internally it keeps a stack of finished subtree groups: each group holds
// up to MaxChildren nodes of one height, and heights strictly decrease from
// the bottom of the stack to the top, so the frontier of the tree under
// construction is always the top of the stack. Every push repairs the seam
// between the existing frontier and the incoming content before the content
// is linked in, so cross-leaf invariants hold at all times.
type Builder[L Leaf[L, S], S Summary[S]] struct {
	stack [][]*node[L, S]
}

// Push appends a leaf at the frontier. Undersized leaves are merged with
// the frontier leaf; well-sized leaves have the shared seam repaired. Empty
// leaves are dropped.
func (b *Builder[L, S]) Push(leaf L) {
	if leaf.Len() == 0 {
		return
	}
	if b.isEmpty() {
		b.pushNode(newLeafNode[L, S](leaf))
		return
	}
	if prev, ok := b.popTrailingLeafNode(); ok {
		if prev.IsUndersized() || leaf.IsUndersized() {
			merged, right, split := prev.Append(leaf)
			b.pushNode(newLeafNode[L, S](merged))
			if split {
				b.pushNode(newLeafNode[L, S](right))
			}
			return
		}
		p2, l2, _ := prev.Fixup(leaf)
		b.pushNode(newLeafNode[L, S](p2))
		b.pushNode(newLeafNode[L, S](l2))
		return
	}
	// The frontier leaf is buried inside a taller subtree.
	if leaf.IsUndersized() || b.rightmostLeaf().IsUndersized() {
		g := b.collapseTopGroup()
		b.pushNode(concatNodes(g, newLeafNode[L, S](leaf)))
		return
	}
	p2, l2, _ := b.rightmostLeaf().Fixup(leaf)
	b.setRightmostLeaf(p2)
	b.pushNode(newLeafNode[L, S](l2))
}

// PushTree splices an entire tree at the frontier, sharing its nodes.
func (b *Builder[L, S]) PushTree(t Tree[L, S]) {
	b.pushSubtree(t.root)
}

// PushTreeRange splices the [start, end) base-unit range of t at the
// frontier. Leaves fully inside the range are shared; the edge leaves are
// re-cut. Panics when the range is out of bounds.
func (b *Builder[L, S]) PushTreeRange(t Tree[L, S], start, end int) {
	if start < 0 || end < start || end > t.Len() {
		panic(fmt.Sprintf("btree: push range out of range [%d:%d] with length %d", start, end, t.Len()))
	}
	if start == end || t.root == nil {
		return
	}
	b.pushNodeRange(t.root, start, end)
}

// Build finalizes the tree. An undersized trailing leaf is merged into its
// left neighbor so that only a lone root leaf may sit below the minimum
// size. The builder is empty afterward and may be reused.
func (b *Builder[L, S]) Build() Tree[L, S] {
	if b.isEmpty() {
		return Tree[L, S]{}
	}
	if !b.loneLeaf() {
		last := b.rightmostLeaf()
		if last.IsUndersized() {
			if tiny, ok := b.popTrailingLeafNode(); ok {
				root := concatNodes(b.collapseAll(), newLeafNode[L, S](tiny))
				return Tree[L, S]{root: root}
			}
			// Buried trailing leaf: cut it off and re-join so Append can
			// redistribute content across the final seam.
			root := b.collapseAll()
			cut := root.count - last.Len()
			var left Builder[L, S]
			left.pushNodeRange(root, 0, cut)
			root = concatNodes(left.collapseAll(), newLeafNode[L, S](last))
			return Tree[L, S]{root: root}
		}
	}
	return Tree[L, S]{root: b.collapseAll()}
}

func (b *Builder[L, S]) isEmpty() bool {
	return len(b.stack) == 0
}

// loneLeaf reports whether the builder holds exactly one leaf.
func (b *Builder[L, S]) loneLeaf() bool {
	return len(b.stack) == 1 && len(b.stack[0]) == 1 && b.stack[0][0].height == 0
}

// pushSubtree links a balanced subtree at the frontier after repairing the
// seam. An undersized frontier leaf is first merged with the subtree's
// leading leaf so no undersized leaf is left in the interior.
func (b *Builder[L, S]) pushSubtree(n *node[L, S]) {
	if n == nil || n.count == 0 {
		return
	}
	if b.isEmpty() {
		b.pushNode(n)
		return
	}
	if n.height == 0 {
		b.Push(n.leaf)
		return
	}
	prev := b.rightmostLeaf()
	if prev.IsUndersized() {
		first := n.firstLeaf()
		b.Push(first)
		b.pushNodeRange(n, first.Len(), n.count)
		return
	}
	p2, n2 := repairLeading(prev, n)
	b.setRightmostLeaf(p2)
	b.pushNode(n2)
}

// pushNodeRange pushes the [start, end) slice of n, sharing fully covered
// children and re-cutting partially covered leaves.
func (b *Builder[L, S]) pushNodeRange(n *node[L, S], start, end int) {
	if start >= end {
		return
	}
	if start == 0 && end == n.count {
		b.pushSubtree(n)
		return
	}
	if n.height == 0 {
		b.Push(n.leaf.Slice(start, end))
		return
	}
	off := 0
	for _, c := range n.children {
		if end <= off {
			break
		}
		s := start - off
		if s < 0 {
			s = 0
		}
		e := end - off
		if e > c.count {
			e = c.count
		}
		if s < e {
			b.pushNodeRange(c, s, e)
		}
		off += c.count
	}
}

// pushNode inserts a finished node into the stack, regrouping as needed.
// Seams are repaired by the callers before nodes reach this point.
func (b *Builder[L, S]) pushNode(n *node[L, S]) {
	for {
		if b.isEmpty() {
			b.stack = append(b.stack, []*node[L, S]{n})
			return
		}
		top := b.stack[len(b.stack)-1]
		h := top[0].height
		switch {
		case h > n.height:
			b.stack = append(b.stack, []*node[L, S]{n})
			return
		case h == n.height:
			last := top[len(top)-1]
			if okChild(last) && okChild(n) {
				top = append(top, n)
				if len(top) < MaxChildren {
					b.stack[len(b.stack)-1] = top
					return
				}
				b.stack = b.stack[:len(b.stack)-1]
				n = newInternalNode(top)
				continue
			}
			// An under-filled node cannot sit in a group, or it would end
			// up as an interior child below the minimum bounds. Merge it
			// with its neighbor and retry; the merge redistributes.
			if len(top) == 1 {
				b.stack = b.stack[:len(b.stack)-1]
			} else {
				b.stack[len(b.stack)-1] = top[:len(top)-1]
			}
			n = concatNodes(last, n)
		default:
			// The incoming node is taller than the frontier group; fold the
			// group into it and retry one level up.
			n = concatNodes(b.collapseTopGroup(), n)
		}
	}
}

// rightmostLeaf returns the frontier leaf. The builder must not be empty.
func (b *Builder[L, S]) rightmostLeaf() L {
	top := b.stack[len(b.stack)-1]
	return top[len(top)-1].lastLeaf()
}

// setRightmostLeaf replaces the frontier leaf, copying the rightmost spine
// of the node that holds it.
func (b *Builder[L, S]) setRightmostLeaf(leaf L) {
	top := b.stack[len(b.stack)-1]
	top[len(top)-1] = withTrailingLeaf(top[len(top)-1], leaf)
}

// popTrailingLeafNode removes and returns the frontier leaf when it sits in
// a height-zero node at the top of the stack. It reports false when the
// frontier leaf is buried inside a taller subtree.
func (b *Builder[L, S]) popTrailingLeafNode() (L, bool) {
	top := b.stack[len(b.stack)-1]
	last := top[len(top)-1]
	if last.height != 0 {
		var zero L
		return zero, false
	}
	if len(top) == 1 {
		b.stack = b.stack[:len(b.stack)-1]
	} else {
		b.stack[len(b.stack)-1] = top[:len(top)-1]
	}
	return last.leaf, true
}

// collapseTopGroup pops the top group and folds it into a single node.
func (b *Builder[L, S]) collapseTopGroup() *node[L, S] {
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	if len(top) == 1 {
		return top[0]
	}
	return newInternalNode(top)
}

// collapseAll folds the whole stack into one root, joining groups from the
// frontier backward. The builder is empty afterward.
func (b *Builder[L, S]) collapseAll() *node[L, S] {
	var t *node[L, S]
	for !b.isEmpty() {
		t = concatNodes(b.collapseTopGroup(), t)
	}
	return t
}

// repairLeading rewrites n's leading leaves so their carried state is
// consistent with prev ending immediately before n's content. The fixup
// cascade walks leaf by leaf and stops as soon as a leaf reports that the
// repair is complete. Returns the rewritten prev and n.
func repairLeading[L Leaf[L, S], S Summary[S]](prev L, n *node[L, S]) (L, *node[L, S]) {
	run := []L{prev}
	walkLeaves(n, func(leaf L) bool {
		p, cur, done := run[len(run)-1].Fixup(leaf)
		run[len(run)-1] = p
		run = append(run, cur)
		return !done
	})
	n2, _ := withLeadingLeaves(n, run[1:])
	return run[0], n2
}
