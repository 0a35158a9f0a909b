package keeper

import (
	"time"

	"cosmossdk.io/math"

	"github.com/kettle-labs/kettle/x/liquidation/types"
)

// touchAuctions advances the lifecycle: it closes the current lot when its
// bid intervals elapsed, then starts a new lot from the queue prefix. price
// is the oracle start price in scaled kit per whole tez.
func (k *Keeper) touchAuctions(ctx types.Context, price types.Ratio) []types.Event {
	var events []types.Event
	if e, ok := k.completeAuctionIfPossible(ctx); ok {
		events = append(events, e)
	}
	if e, ok := k.startAuctionIfPossible(ctx, price); ok {
		events = append(events, e)
	}
	return events
}

// completeAuctionIfPossible closes the current lot when it is ascending and
// both bid intervals have elapsed since the last bid.
func (k *Keeper) completeAuctionIfPossible(ctx types.Context) (types.Event, bool) {
	cur := k.state.current
	if cur == nil || cur.Phase != types.PhaseAscending {
		return types.Event{}, false
	}
	if ctx.Now.Sub(cur.BidTime) <= time.Duration(k.params.BidIntervalSec)*time.Second {
		return types.Event{}, false
	}
	if ctx.BlockHeight-cur.BidBlock <= k.params.BidIntervalBlocks {
		return types.Event{}, false
	}

	tree := cur.Tree
	soldTez := k.state.arena.Weight(tree)
	outcome := types.AuctionOutcome{
		WinningBid: cur.Leading,
		SoldTez:    soldTez,
		SettledKit: math.ZeroInt(),
	}

	// Link the lot in as the youngest completed auction.
	if k.state.completed == nil {
		k.state.completed = &types.CompletedAuctionsHead{Youngest: tree, Oldest: tree}
	} else {
		prev := k.state.completed.Youngest
		k.state.arena.ModifyRootOutcome(prev, func(o *types.AuctionOutcome) {
			o.YoungerAuction = tree
		})
		outcome.OlderAuction = prev
		k.state.completed.Youngest = tree
	}
	k.state.arena.SetRootOutcome(tree, outcome)
	k.state.current = nil

	k.logger.Info("auction completed",
		"tree", int64(tree),
		"winner", string(cur.Leading.Bidder),
		"kit", cur.Leading.Kit.String(),
		"sold_tez", soldTez.String(),
	)
	return types.NewEvent(types.EventTypeAuctionCompleted,
		types.AttributeKeyTree, math.NewInt(int64(tree)).String(),
		types.AttributeKeyBidder, string(cur.Leading.Bidder),
		types.AttributeKeyKit, cur.Leading.Kit.String(),
		types.AttributeKeySoldTez, soldTez.String(),
	), true
}

// startAuctionIfPossible carves a lot off the front of the queue and opens
// it in the descending phase. No-op when an auction is already running or
// the queue is empty.
func (k *Keeper) startAuctionIfPossible(ctx types.Context, price types.Ratio) (types.Event, bool) {
	if k.state.current != nil || k.state.arena.IsEmpty(k.state.queued) {
		return types.Event{}, false
	}

	// Lots are capped at MaxLotSize, except when the queue is so large that
	// a bigger lot is needed to drain it in a bounded number of auctions.
	queuedWeight := k.state.arena.Weight(k.state.queued)
	limit := k.params.MinLotQueueFraction.MulIntFloor(queuedWeight)
	if limit.LT(k.params.MaxLotSize) {
		limit = k.params.MaxLotSize
	}

	tree := k.takeWithSplitting(limit)
	weight := k.state.arena.Weight(tree)

	// scaled kit = ceil(weight_mutez * price / mutez_per_tez)
	perMutez := types.Ratio{Num: price.Num, Den: price.Den.Mul(types.MutezPerTez)}
	startValue := perMutez.MulIntCeil(weight)

	k.state.current = &types.CurrentAuction{
		Tree:       tree,
		Phase:      types.PhaseDescending,
		StartValue: startValue,
		StartTime:  ctx.Now,
	}

	k.logger.Info("auction started",
		"tree", int64(tree),
		"tez", weight.String(),
		"start_kit", startValue.String(),
	)
	return types.NewEvent(types.EventTypeAuctionStarted,
		types.AttributeKeyTree, math.NewInt(int64(tree)).String(),
		types.AttributeKeyTez, weight.String(),
		types.AttributeKeyStartKit, startValue.String(),
	), true
}

// takeWithSplitting moves a front prefix of the queue weighing exactly
// min(limit, queue weight) into a fresh lot tree. When whole slices cannot
// reach the limit the boundary slice is split, the front part joining the
// lot and the remainder staying at the front of the queue. Both halves keep
// their place in the burrow chain.
func (k *Keeper) takeWithSplitting(limit math.Int) types.TreeID {
	tree := k.state.arena.Take(k.state.queued, limit)
	got := k.state.arena.Weight(tree)
	if got.GTE(limit) || k.state.arena.IsEmpty(k.state.queued) {
		return tree
	}

	need := limit.Sub(got)
	leaf, slice, _ := k.state.arena.PeekFront(k.state.queued)
	// need < slice tez, otherwise Take would have moved the slice whole
	k.state.arena.Del(leaf)

	leftContents, rightContents := slice.Contents.Split(need)

	leftLeaf := k.state.arena.PushBack(tree, types.Slice{
		Contents: leftContents,
		Older:    slice.Older,
		Younger:  types.NilLeaf,
	})
	rightLeaf := k.state.arena.PushFront(k.state.queued, types.Slice{
		Contents: rightContents,
		Older:    leftLeaf,
		Younger:  slice.Younger,
	})
	k.state.arena.UpdateLeaf(leftLeaf, func(s *types.Slice) {
		s.Younger = rightLeaf
	})

	// Repair the burrow chain: the two halves stand where the original stood.
	if slice.Older != types.NilLeaf {
		k.state.arena.UpdateLeaf(slice.Older, func(s *types.Slice) {
			s.Younger = leftLeaf
		})
	}
	if slice.Younger != types.NilLeaf {
		k.state.arena.UpdateLeaf(slice.Younger, func(s *types.Slice) {
			s.Older = rightLeaf
		})
	}
	head, ok := k.state.burrowHead(slice.Contents.Burrow)
	if !ok {
		panic("invariant violation: split slice of unknown burrow " + string(slice.Contents.Burrow))
	}
	if head.Oldest == leaf {
		head.Oldest = leftLeaf
	}
	if head.Youngest == leaf {
		head.Youngest = rightLeaf
	}
	k.state.setBurrowHead(slice.Contents.Burrow, head)

	return tree
}

// popCompletedAuction splices a fully drained lot out of the completed list.
// The outcome stays on the root until the winner reclaims it.
func (k *Keeper) popCompletedAuction(tree types.TreeID) {
	outcome, ok := k.state.arena.RootOutcome(tree)
	if !ok {
		panic("invariant violation: completed pop of lot without outcome")
	}
	younger, older := outcome.YoungerAuction, outcome.OlderAuction

	if younger != types.NilTree {
		k.state.arena.ModifyRootOutcome(younger, func(o *types.AuctionOutcome) {
			o.OlderAuction = older
		})
	}
	if older != types.NilTree {
		k.state.arena.ModifyRootOutcome(older, func(o *types.AuctionOutcome) {
			o.YoungerAuction = younger
		})
	}

	head := k.state.completed
	if head == nil {
		panic("invariant violation: completed pop with empty list")
	}
	switch {
	case head.Youngest == tree && head.Oldest == tree:
		k.state.completed = nil
	case head.Youngest == tree:
		head.Youngest = older
	case head.Oldest == tree:
		head.Oldest = younger
	}

	k.state.arena.ModifyRootOutcome(tree, func(o *types.AuctionOutcome) {
		o.YoungerAuction = types.NilTree
		o.OlderAuction = types.NilTree
	})
}
