package keeper

import (
	errorsmod "cosmossdk.io/errors"

	"github.com/kettle-labs/kettle/x/liquidation/types"
)

// sendSliceToAuction appends contents to the back of the queue as the
// youngest slice of its burrow and returns the new leaf.
func (k *Keeper) sendSliceToAuction(contents types.SliceContents) (types.LeafID, error) {
	if k.state.arena.TreeHeight(k.state.queued) >= k.params.MaxQueueHeight {
		return types.NilLeaf, errorsmod.Wrapf(types.ErrQueueTooLong,
			"queue height %d at limit %d", k.state.arena.TreeHeight(k.state.queued), k.params.MaxQueueHeight)
	}

	head, known := k.state.burrowHead(contents.Burrow)
	slice := types.Slice{Contents: contents, Older: types.NilLeaf, Younger: types.NilLeaf}
	if known {
		slice.Older = head.Youngest
	}

	leaf := k.state.arena.PushBack(k.state.queued, slice)

	if known {
		k.state.arena.UpdateLeaf(head.Youngest, func(s *types.Slice) {
			s.Younger = leaf
		})
		head.Youngest = leaf
	} else {
		head = types.BurrowSlicesHead{Oldest: leaf, Youngest: leaf}
	}
	k.state.setBurrowHead(contents.Burrow, head)
	return leaf, nil
}

// popSlice removes leaf from its tree and splices it out of its burrow
// chain. It returns the slice value and the tree it was removed from.
func (k *Keeper) popSlice(leaf types.LeafID) (types.Slice, types.TreeID) {
	slice := k.state.arena.LeafValue(leaf)
	tree := k.state.arena.Del(leaf)
	k.spliceOutOfChain(leaf, slice)
	return slice, tree
}

// spliceOutOfChain repairs the burrow chain around a removed leaf: the
// neighbours are linked to each other and the head endpoints updated. When
// the leaf was the burrow's only slice the head entry is dropped.
func (k *Keeper) spliceOutOfChain(leaf types.LeafID, slice types.Slice) {
	burrow := slice.Contents.Burrow
	head, ok := k.state.burrowHead(burrow)
	if !ok {
		panic("invariant violation: popped slice of unknown burrow " + string(burrow))
	}

	if slice.Older != types.NilLeaf {
		k.state.arena.UpdateLeaf(slice.Older, func(s *types.Slice) {
			s.Younger = slice.Younger
		})
	}
	if slice.Younger != types.NilLeaf {
		k.state.arena.UpdateLeaf(slice.Younger, func(s *types.Slice) {
			s.Older = slice.Older
		})
	}

	switch {
	case head.Oldest == leaf && head.Youngest == leaf:
		k.state.delBurrowHead(burrow)
	case head.Oldest == leaf:
		head.Oldest = slice.Younger
		k.state.setBurrowHead(burrow, head)
	case head.Youngest == leaf:
		head.Youngest = slice.Older
		k.state.setBurrowHead(burrow, head)
	default:
		// interior leaf, endpoints untouched
	}
}

// appendSliceToTree pushes contents to the back of tree as the burrow's
// youngest slice. Used when rebuilding state from a genesis snapshot, where
// slices arrive in global age order.
func (k *Keeper) appendSliceToTree(tree types.TreeID, contents types.SliceContents) types.LeafID {
	head, known := k.state.burrowHead(contents.Burrow)
	slice := types.Slice{Contents: contents, Older: types.NilLeaf, Younger: types.NilLeaf}
	if known {
		slice.Older = head.Youngest
	}
	leaf := k.state.arena.PushBack(tree, slice)
	if known {
		k.state.arena.UpdateLeaf(head.Youngest, func(s *types.Slice) {
			s.Younger = leaf
		})
		head.Youngest = leaf
	} else {
		head = types.BurrowSlicesHead{Oldest: leaf, Youngest: leaf}
	}
	k.state.setBurrowHead(contents.Burrow, head)
	return leaf
}

// ensureNoUnclaimedSlices fails when any of the burrow's slices sits in a
// completed lot.
func (k *Keeper) ensureNoUnclaimedSlices(burrow types.Address) error {
	head, ok := k.state.burrowHead(burrow)
	if !ok {
		return nil
	}
	for leaf := head.Oldest; leaf != types.NilLeaf; {
		root := k.state.arena.FindRoot(leaf)
		if _, done := k.state.arena.RootOutcome(root); done {
			return errorsmod.Wrapf(types.ErrBurrowHasCompletedLiquidation,
				"burrow %s has an unclaimed completed slice", burrow)
		}
		leaf = k.state.arena.LeafValue(leaf).Younger
	}
	return nil
}
