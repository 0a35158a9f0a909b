package keeper

import (
	"fmt"

	"github.com/kettle-labs/kettle/x/liquidation/types"
)

// CheckInvariants verifies the structural invariants of the whole state:
// tree shape and caches, burrow chains, the completed list and the queue
// height bound. Intended for tests and debugging; it walks everything.
func (k *Keeper) CheckInvariants() error {
	a := k.state.arena

	// Every root in the arena must be accounted for: the queue, the current
	// lot, members of the completed list, or an unreclaimed drained lot.
	roots := map[types.TreeID]bool{}
	for i := 1; i < len(a.nodes); i++ {
		if a.nodes[i].kind == kindRoot {
			roots[types.TreeID(i)] = false
		}
	}

	mark := func(tree types.TreeID) error {
		if _, ok := roots[tree]; !ok {
			return fmt.Errorf("tree %d is not a live root", tree)
		}
		if roots[tree] {
			return fmt.Errorf("tree %d referenced twice", tree)
		}
		roots[tree] = true
		return nil
	}

	if err := mark(k.state.queued); err != nil {
		return err
	}
	if err := k.checkTree(k.state.queued); err != nil {
		return fmt.Errorf("queued: %w", err)
	}
	if a.TreeHeight(k.state.queued) > k.params.MaxQueueHeight {
		return fmt.Errorf("queue height %d above limit %d",
			a.TreeHeight(k.state.queued), k.params.MaxQueueHeight)
	}
	if _, done := a.RootOutcome(k.state.queued); done {
		return fmt.Errorf("queued tree carries an outcome")
	}

	if cur := k.state.current; cur != nil {
		if err := mark(cur.Tree); err != nil {
			return err
		}
		if err := k.checkTree(cur.Tree); err != nil {
			return fmt.Errorf("current: %w", err)
		}
		if a.IsEmpty(cur.Tree) {
			return fmt.Errorf("current auction is empty")
		}
		if _, done := a.RootOutcome(cur.Tree); done {
			return fmt.Errorf("current auction carries an outcome")
		}
	}

	if err := k.checkCompletedList(mark); err != nil {
		return err
	}

	// Remaining roots are unreclaimed drained lots: empty, with an outcome,
	// unlinked.
	for tree, seen := range roots {
		if seen {
			continue
		}
		outcome, done := a.RootOutcome(tree)
		if !done {
			return fmt.Errorf("orphan tree %d without outcome", tree)
		}
		if !a.IsEmpty(tree) {
			return fmt.Errorf("unreclaimed lot %d still has slices", tree)
		}
		if outcome.YoungerAuction != types.NilTree || outcome.OlderAuction != types.NilTree {
			return fmt.Errorf("unreclaimed lot %d still linked into the completed list", tree)
		}
	}

	return k.checkBurrowChains()
}

// checkTree verifies parent links, cached aggregates and AVL balance of
// every node under tree.
func (k *Keeper) checkTree(tree types.TreeID) error {
	a := k.state.arena
	root := a.at(types.NodeID(tree))
	if root.kind != kindRoot {
		return fmt.Errorf("node %d is not a root", tree)
	}
	if root.child == types.NilNode {
		return nil
	}
	if a.at(root.child).parent != types.NodeID(tree) {
		return fmt.Errorf("child of root %d has wrong parent", tree)
	}
	_, _, err := k.checkSubtree(root.child)
	return err
}

func (k *Keeper) checkSubtree(id types.NodeID) (int64, string, error) {
	a := k.state.arena
	n := a.at(id)
	switch n.kind {
	case kindLeaf:
		return 1, n.slice.Contents.Tez.String(), nil
	case kindBranch:
		if a.at(n.left).parent != id || a.at(n.right).parent != id {
			return 0, "", fmt.Errorf("child of branch %d has wrong parent", id)
		}
		lh, lt, err := k.checkSubtree(n.left)
		if err != nil {
			return 0, "", err
		}
		rh, rt, err := k.checkSubtree(n.right)
		if err != nil {
			return 0, "", err
		}
		if lh != n.leftHeight || rh != n.rightHeight {
			return 0, "", fmt.Errorf("branch %d has stale height cache", id)
		}
		if lt != n.leftTez.String() || rt != n.rightTez.String() {
			return 0, "", fmt.Errorf("branch %d has stale tez cache", id)
		}
		if lh-rh > 1 || rh-lh > 1 {
			return 0, "", fmt.Errorf("branch %d is unbalanced (%d/%d)", id, lh, rh)
		}
		h := lh
		if rh > h {
			h = rh
		}
		return h + 1, n.leftTez.Add(n.rightTez).String(), nil
	default:
		return 0, "", fmt.Errorf("node %d has kind %d inside a tree", id, n.kind)
	}
}

// checkCompletedList walks the completed list youngest to oldest, verifying
// linkage, and marks each member.
func (k *Keeper) checkCompletedList(mark func(types.TreeID) error) error {
	a := k.state.arena
	head := k.state.completed
	if head == nil {
		return nil
	}
	prev := types.NilTree
	tree := head.Youngest
	for tree != types.NilTree {
		if err := mark(tree); err != nil {
			return fmt.Errorf("completed list: %w", err)
		}
		if err := k.checkTree(tree); err != nil {
			return fmt.Errorf("completed lot %d: %w", tree, err)
		}
		outcome, done := a.RootOutcome(tree)
		if !done {
			return fmt.Errorf("completed lot %d has no outcome", tree)
		}
		if a.IsEmpty(tree) {
			return fmt.Errorf("completed lot %d is empty but still listed", tree)
		}
		if outcome.YoungerAuction != prev {
			return fmt.Errorf("completed lot %d has broken younger link", tree)
		}
		prev = tree
		tree = outcome.OlderAuction
	}
	if head.Oldest != prev {
		return fmt.Errorf("completed list oldest endpoint mismatch")
	}
	return nil
}

// checkBurrowChains verifies that each burrow's chain is reflexive and that
// it covers exactly the leaves carrying that burrow anywhere in the arena.
func (k *Keeper) checkBurrowChains() error {
	a := k.state.arena

	leavesByBurrow := map[types.Address]map[types.LeafID]bool{}
	for i := 1; i < len(a.nodes); i++ {
		if a.nodes[i].kind != kindLeaf {
			continue
		}
		b := a.nodes[i].slice.Contents.Burrow
		if leavesByBurrow[b] == nil {
			leavesByBurrow[b] = map[types.LeafID]bool{}
		}
		leavesByBurrow[b][types.LeafID(i)] = true
	}

	for e := k.state.burrowSlices.Front(); e != nil; e = e.Next() {
		burrow := types.Address(e.Key().(string))
		head := e.Value.(types.BurrowSlicesHead)
		expected := leavesByBurrow[burrow]
		if expected == nil {
			return fmt.Errorf("burrow %s has a head but no slices", burrow)
		}

		prev := types.NilLeaf
		for leaf := head.Oldest; leaf != types.NilLeaf; {
			if !a.IsLeaf(leaf) {
				return fmt.Errorf("burrow %s chain holds dangling leaf %d", burrow, leaf)
			}
			s := a.LeafValue(leaf)
			if s.Contents.Burrow != burrow {
				return fmt.Errorf("burrow %s chain crosses into burrow %s", burrow, s.Contents.Burrow)
			}
			if s.Older != prev {
				return fmt.Errorf("burrow %s chain has broken older link at %d", burrow, leaf)
			}
			if !expected[leaf] {
				return fmt.Errorf("burrow %s chain revisits leaf %d", burrow, leaf)
			}
			delete(expected, leaf)
			prev = leaf
			leaf = s.Younger
		}
		if head.Youngest != prev {
			return fmt.Errorf("burrow %s youngest endpoint mismatch", burrow)
		}
		if len(expected) != 0 {
			return fmt.Errorf("burrow %s has %d slices outside its chain", burrow, len(expected))
		}
		delete(leavesByBurrow, burrow)
	}

	if len(leavesByBurrow) != 0 {
		return fmt.Errorf("%d burrows have slices but no head", len(leavesByBurrow))
	}
	return nil
}
