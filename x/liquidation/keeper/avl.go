package keeper

import (
	"fmt"

	"cosmossdk.io/math"

	"github.com/kettle-labs/kettle/x/liquidation/types"
)

// The tree code keeps two cached aggregates per branch: subtree height for
// AVL balancing and subtree tez for weight-bounded splits. Leaves are the
// only nodes carrying payload; branch caches are refreshed bottom-up after
// every structural change.
//
// Alloc may grow the backing slice, so node pointers are never held across a
// call that can allocate. Handles are re-resolved instead.

// NewTree allocates an empty root and returns its handle.
func (a *Arena) NewTree() types.TreeID {
	return types.TreeID(a.Alloc(node{kind: kindRoot}))
}

func (a *Arena) newLeaf(s types.Slice) types.NodeID {
	return a.Alloc(node{kind: kindLeaf, slice: s})
}

// newBranch allocates a branch over l and r and wires the parent links. Both
// children must be live leaves or branches.
func (a *Arena) newBranch(l, r types.NodeID) types.NodeID {
	b := a.Alloc(node{
		kind:        kindBranch,
		left:        l,
		right:       r,
		leftHeight:  a.subHeight(l),
		rightHeight: a.subHeight(r),
		leftTez:     a.subTez(l),
		rightTez:    a.subTez(r),
	})
	a.at(l).parent = b
	a.at(r).parent = b
	return b
}

func (a *Arena) subHeight(id types.NodeID) int64 {
	n := a.at(id)
	switch n.kind {
	case kindLeaf:
		return 1
	case kindBranch:
		if n.leftHeight > n.rightHeight {
			return n.leftHeight + 1
		}
		return n.rightHeight + 1
	default:
		panic(fmt.Sprintf("invariant violation: height of non-tree node %d", id))
	}
}

func (a *Arena) subTez(id types.NodeID) math.Int {
	n := a.at(id)
	switch n.kind {
	case kindLeaf:
		return n.slice.Contents.Tez
	case kindBranch:
		return n.leftTez.Add(n.rightTez)
	default:
		panic(fmt.Sprintf("invariant violation: tez of non-tree node %d", id))
	}
}

// refreshBranch recomputes the cached aggregates of a branch from its
// children.
func (a *Arena) refreshBranch(id types.NodeID) {
	n := a.at(id)
	if n.kind != kindBranch {
		panic(fmt.Sprintf("invariant violation: refresh of non-branch node %d", id))
	}
	l, r := n.left, n.right
	lh, rh := a.subHeight(l), a.subHeight(r)
	lt, rt := a.subTez(l), a.subTez(r)
	n = a.at(id)
	n.leftHeight, n.rightHeight = lh, rh
	n.leftTez, n.rightTez = lt, rt
}

// replaceChild repoints the link from parent to old so it refers to new
// instead, and sets new's parent.
func (a *Arena) replaceChild(parent, old, new types.NodeID) {
	p := a.at(parent)
	switch {
	case p.kind == kindRoot && p.child == old:
		p.child = new
	case p.kind == kindBranch && p.left == old:
		p.left = new
	case p.kind == kindBranch && p.right == old:
		p.right = new
	default:
		panic(fmt.Sprintf("invariant violation: node %d is not a child of %d", old, parent))
	}
	a.at(new).parent = parent
}

// rotateLeft lifts the right child of id above it and returns the new
// subtree root. The caller reattaches the result to id's former parent.
func (a *Arena) rotateLeft(id types.NodeID) types.NodeID {
	n := a.at(id)
	r := n.right
	rn := a.at(r)
	if rn.kind != kindBranch {
		panic(fmt.Sprintf("invariant violation: left rotation around leaf %d", r))
	}
	rl := rn.left

	a.at(id).right = rl
	a.at(rl).parent = id
	a.refreshBranch(id)

	a.at(r).left = id
	a.at(id).parent = r
	a.refreshBranch(r)
	return r
}

// rotateRight is the mirror of rotateLeft.
func (a *Arena) rotateRight(id types.NodeID) types.NodeID {
	n := a.at(id)
	l := n.left
	ln := a.at(l)
	if ln.kind != kindBranch {
		panic(fmt.Sprintf("invariant violation: right rotation around leaf %d", l))
	}
	lr := ln.right

	a.at(id).left = lr
	a.at(lr).parent = id
	a.refreshBranch(id)

	a.at(l).right = id
	a.at(id).parent = l
	a.refreshBranch(l)
	return l
}

// rebalance restores the AVL invariant at id, assuming both subtrees are
// balanced and the caches at id are fresh. Returns the subtree root, which
// the caller must reattach when it changed.
func (a *Arena) rebalance(id types.NodeID) types.NodeID {
	n := a.at(id)
	if n.kind != kindBranch {
		return id
	}
	bal := n.leftHeight - n.rightHeight
	switch {
	case bal > 1:
		l := a.at(n.left)
		if l.rightHeight > l.leftHeight {
			nl := a.rotateLeft(n.left)
			a.at(id).left = nl
			a.at(nl).parent = id
			a.refreshBranch(id)
		}
		return a.rotateRight(id)
	case bal < -1:
		r := a.at(n.right)
		if r.leftHeight > r.rightHeight {
			nr := a.rotateRight(n.right)
			a.at(id).right = nr
			a.at(nr).parent = id
			a.refreshBranch(id)
		}
		return a.rotateLeft(id)
	default:
		return id
	}
}

// join concatenates two balanced subtrees, keeping l's leaves in front of
// r's, and returns the root of the combined balanced subtree. The result's
// parent link is left for the caller to set.
func (a *Arena) join(l, r types.NodeID) types.NodeID {
	lh, rh := a.subHeight(l), a.subHeight(r)
	switch {
	case lh-rh <= 1 && rh-lh <= 1:
		return a.newBranch(l, r)
	case lh > rh:
		lr := a.at(l).right
		nr := a.join(lr, r)
		a.at(l).right = nr
		a.at(nr).parent = l
		a.refreshBranch(l)
		return a.rebalance(l)
	default:
		rl := a.at(r).left
		nl := a.join(l, rl)
		a.at(r).left = nl
		a.at(nl).parent = r
		a.refreshBranch(r)
		return a.rebalance(r)
	}
}

func (a *Arena) appendNode(tree types.TreeID, leaf types.NodeID, back bool) {
	root := a.at(types.NodeID(tree))
	if root.kind != kindRoot {
		panic(fmt.Sprintf("invariant violation: append to non-root %d", tree))
	}
	child := root.child
	if child == types.NilNode {
		root.child = leaf
		a.at(leaf).parent = types.NodeID(tree)
		return
	}
	var joined types.NodeID
	if back {
		joined = a.join(child, leaf)
	} else {
		joined = a.join(leaf, child)
	}
	a.at(types.NodeID(tree)).child = joined
	a.at(joined).parent = types.NodeID(tree)
}

// PushBack appends s as the youngest leaf of tree and returns its handle.
func (a *Arena) PushBack(tree types.TreeID, s types.Slice) types.LeafID {
	leaf := a.newLeaf(s)
	a.appendNode(tree, leaf, true)
	return types.LeafID(leaf)
}

// PushFront prepends s as the oldest leaf of tree and returns its handle.
func (a *Arena) PushFront(tree types.TreeID, s types.Slice) types.LeafID {
	leaf := a.newLeaf(s)
	a.appendNode(tree, leaf, false)
	return types.LeafID(leaf)
}

func (a *Arena) frontNode(id types.NodeID) types.NodeID {
	for a.at(id).kind == kindBranch {
		id = a.at(id).left
	}
	return id
}

func (a *Arena) backNode(id types.NodeID) types.NodeID {
	for a.at(id).kind == kindBranch {
		id = a.at(id).right
	}
	return id
}

// PeekFront returns the oldest leaf of tree without removing it.
func (a *Arena) PeekFront(tree types.TreeID) (types.LeafID, types.Slice, bool) {
	child := a.at(types.NodeID(tree)).child
	if child == types.NilNode {
		return types.NilLeaf, types.Slice{}, false
	}
	leaf := a.frontNode(child)
	return types.LeafID(leaf), a.at(leaf).slice, true
}

// LeafValue returns the slice stored at leaf.
func (a *Arena) LeafValue(leaf types.LeafID) types.Slice {
	n := a.at(types.NodeID(leaf))
	if n.kind != kindLeaf {
		panic(fmt.Sprintf("invariant violation: leaf access on non-leaf %d", leaf))
	}
	return n.slice
}

// UpdateLeaf applies f to the slice stored at leaf. The tez amount must not
// change, since branch caches are not recomputed.
func (a *Arena) UpdateLeaf(leaf types.LeafID, f func(*types.Slice)) {
	n := a.at(types.NodeID(leaf))
	if n.kind != kindLeaf {
		panic(fmt.Sprintf("invariant violation: leaf update on non-leaf %d", leaf))
	}
	before := n.slice.Contents.Tez
	f(&n.slice)
	if !n.slice.Contents.Tez.Equal(before) {
		panic(fmt.Sprintf("invariant violation: leaf update changed tez of %d", leaf))
	}
}

// Del removes leaf from its tree, rebalancing up to the root, and returns
// the tree the leaf belonged to.
func (a *Arena) Del(leaf types.LeafID) types.TreeID {
	id := types.NodeID(leaf)
	n := a.at(id)
	if n.kind != kindLeaf {
		panic(fmt.Sprintf("invariant violation: delete of non-leaf %d", leaf))
	}
	parent := n.parent
	a.Free(id)

	p := a.at(parent)
	if p.kind == kindRoot {
		p.child = types.NilNode
		return types.TreeID(parent)
	}

	// Promote the sibling into the branch's slot.
	var sibling types.NodeID
	switch {
	case p.left == id:
		sibling = p.right
	case p.right == id:
		sibling = p.left
	default:
		panic(fmt.Sprintf("invariant violation: leaf %d not a child of its parent %d", leaf, parent))
	}
	grand := p.parent
	a.Free(parent)
	a.replaceChild(grand, parent, sibling)

	// Walk up refreshing caches and rebalancing.
	cur := grand
	for a.at(cur).kind == kindBranch {
		a.refreshBranch(cur)
		up := a.at(cur).parent
		nb := a.rebalance(cur)
		if nb != cur {
			a.replaceChild(up, cur, nb)
		}
		cur = up
	}
	return types.TreeID(cur)
}

// PopFront removes and returns the oldest leaf of tree.
func (a *Arena) PopFront(tree types.TreeID) (types.Slice, bool) {
	leaf, s, ok := a.PeekFront(tree)
	if !ok {
		return types.Slice{}, false
	}
	a.Del(leaf)
	return s, true
}

// PopBack removes and returns the newest leaf of tree.
func (a *Arena) PopBack(tree types.TreeID) (types.Slice, bool) {
	child := a.at(types.NodeID(tree)).child
	if child == types.NilNode {
		return types.Slice{}, false
	}
	leaf := a.backNode(child)
	s := a.at(leaf).slice
	a.Del(types.LeafID(leaf))
	return s, true
}

// FindRoot walks the parent chain of leaf up to its tree handle.
func (a *Arena) FindRoot(leaf types.LeafID) types.TreeID {
	id := types.NodeID(leaf)
	for a.at(id).kind != kindRoot {
		id = a.at(id).parent
	}
	return types.TreeID(id)
}

// Weight returns the total tez of all leaves in tree.
func (a *Arena) Weight(tree types.TreeID) math.Int {
	child := a.at(types.NodeID(tree)).child
	if child == types.NilNode {
		return math.ZeroInt()
	}
	return a.subTez(child)
}

// TreeHeight returns the height of tree's subtree, zero when empty.
func (a *Arena) TreeHeight(tree types.TreeID) int64 {
	child := a.at(types.NodeID(tree)).child
	if child == types.NilNode {
		return 0
	}
	return a.subHeight(child)
}

// IsEmpty reports whether tree has no leaves.
func (a *Arena) IsEmpty(tree types.TreeID) bool {
	return a.at(types.NodeID(tree)).child == types.NilNode
}

// DeleteEmptyTree frees the root handle of an empty tree.
func (a *Arena) DeleteEmptyTree(tree types.TreeID) {
	root := a.at(types.NodeID(tree))
	if root.kind != kindRoot {
		panic(fmt.Sprintf("invariant violation: delete of non-root %d", tree))
	}
	if root.child != types.NilNode {
		panic(fmt.Sprintf("invariant violation: delete of non-empty tree %d", tree))
	}
	a.Free(types.NodeID(tree))
}

// RootOutcome returns the auction outcome attached to tree, if any.
func (a *Arena) RootOutcome(tree types.TreeID) (*types.AuctionOutcome, bool) {
	root := a.at(types.NodeID(tree))
	if root.kind != kindRoot || root.outcome == nil {
		return nil, false
	}
	return root.outcome, true
}

// SetRootOutcome attaches an outcome to tree. The outcome slot must be
// empty.
func (a *Arena) SetRootOutcome(tree types.TreeID, o types.AuctionOutcome) {
	root := a.at(types.NodeID(tree))
	if root.kind != kindRoot {
		panic(fmt.Sprintf("invariant violation: outcome on non-root %d", tree))
	}
	if root.outcome != nil {
		panic(fmt.Sprintf("invariant violation: outcome already set on %d", tree))
	}
	root.outcome = &o
}

// ModifyRootOutcome applies f to the outcome attached to tree.
func (a *Arena) ModifyRootOutcome(tree types.TreeID, f func(*types.AuctionOutcome)) {
	root := a.at(types.NodeID(tree))
	if root.kind != kindRoot || root.outcome == nil {
		panic(fmt.Sprintf("invariant violation: outcome access on %d", tree))
	}
	f(root.outcome)
}

// Take moves a front prefix of tree weighing at most limit into a fresh
// tree and returns it. Slices are moved whole.
func (a *Arena) Take(tree types.TreeID, limit math.Int) types.TreeID {
	newTree := a.NewTree()
	child := a.at(types.NodeID(tree)).child
	if child == types.NilNode {
		return newTree
	}
	taken, rest := a.splitByTez(child, limit)
	if taken != types.NilNode {
		a.at(types.NodeID(newTree)).child = taken
		a.at(taken).parent = types.NodeID(newTree)
	}
	a.at(types.NodeID(tree)).child = rest
	if rest != types.NilNode {
		a.at(rest).parent = types.NodeID(tree)
	}
	return newTree
}

// splitByTez splits the subtree at id into a front part weighing at most
// limit and the rest, preserving leaf order. Either part may be nil. Whole
// leaves only; a leaf heavier than the remaining limit goes to the rest.
func (a *Arena) splitByTez(id types.NodeID, limit math.Int) (types.NodeID, types.NodeID) {
	if a.subTez(id).LTE(limit) {
		return id, types.NilNode
	}
	n := a.at(id)
	if n.kind == kindLeaf {
		return types.NilNode, id
	}
	l, r, lt := n.left, n.right, n.leftTez
	a.Free(id)
	if lt.LTE(limit) {
		rl, rr := a.splitByTez(r, limit.Sub(lt))
		if rl == types.NilNode {
			return l, r
		}
		return a.join(l, rl), rr
	}
	ll, lr := a.splitByTez(l, limit)
	if lr == types.NilNode {
		return ll, r
	}
	return ll, a.join(lr, r)
}

// WalkLeaves visits every leaf of tree front to back. The visitor must not
// mutate the tree.
func (a *Arena) WalkLeaves(tree types.TreeID, visit func(types.LeafID, types.Slice)) {
	child := a.at(types.NodeID(tree)).child
	if child == types.NilNode {
		return
	}
	a.walkLeaves(child, visit)
}

func (a *Arena) walkLeaves(id types.NodeID, visit func(types.LeafID, types.Slice)) {
	n := a.at(id)
	if n.kind == kindLeaf {
		visit(types.LeafID(id), n.slice)
		return
	}
	a.walkLeaves(n.left, visit)
	a.walkLeaves(n.right, visit)
}
