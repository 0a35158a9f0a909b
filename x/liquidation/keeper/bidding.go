package keeper

import (
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"

	"github.com/kettle-labs/kettle/x/liquidation/types"
)

// currentMinBid returns the smallest acceptable bid for the current lot.
// While descending this is the decayed reserve, while ascending it is the
// leading bid grown by the improvement factor.
func (k *Keeper) currentMinBid(ctx types.Context) (math.Int, error) {
	cur := k.state.current
	if cur == nil {
		return math.Int{}, errorsmod.Wrap(types.ErrNoOpenAuction, "no current auction")
	}
	switch cur.Phase {
	case types.PhaseDescending:
		elapsed := int64(ctx.Now.Sub(cur.StartTime).Seconds())
		if elapsed < 0 {
			elapsed = 0
		}
		decay := k.params.AuctionDecayRate.Complement().PowCeil(elapsed)
		return decay.MulIntCeil(cur.StartValue), nil
	case types.PhaseAscending:
		return k.params.BidImprovementFactor.Grow().MulIntCeil(cur.Leading.Kit), nil
	default:
		panic("invariant violation: unknown auction phase")
	}
}

// placeBid records bid as the new leading bid of the current lot and returns
// the handle the bidder later reclaims with. The previous leading bid, if
// any, becomes reclaimable through its own handle.
func (k *Keeper) placeBid(ctx types.Context, bid types.Bid) (types.BidHandle, error) {
	minBid, err := k.currentMinBid(ctx)
	if err != nil {
		return types.BidHandle{}, err
	}
	if bid.Kit.LT(minBid) {
		return types.BidHandle{}, errorsmod.Wrapf(types.ErrBidTooLow,
			"bid %s below minimum %s", bid.Kit, minBid)
	}

	cur := k.state.current
	cur.Phase = types.PhaseAscending
	cur.Leading = bid
	cur.BidTime = ctx.Now
	cur.BidBlock = ctx.BlockHeight

	k.logger.Info("bid placed",
		"tree", int64(cur.Tree),
		"bidder", string(bid.Bidder),
		"kit", bid.Kit.String(),
	)
	return types.BidHandle{AuctionID: cur.Tree, Bid: bid}, nil
}

// isLeadingBid reports whether handle is the leading bid of the current lot.
func (k *Keeper) isLeadingBid(handle types.BidHandle) bool {
	cur := k.state.current
	return cur != nil &&
		cur.Phase == types.PhaseAscending &&
		cur.Tree == handle.AuctionID &&
		cur.Leading.Equal(handle.Bid)
}

// reclaimLosingBid returns the kit of a bid that was outbid or lost. The
// leading bid of the live lot and the winning bid of a completed lot cannot
// be reclaimed this way.
func (k *Keeper) reclaimLosingBid(handle types.BidHandle) (math.Int, error) {
	if k.isLeadingBid(handle) {
		return math.Int{}, errorsmod.Wrap(types.ErrCannotReclaimLeadingBid,
			"bid is leading the current auction")
	}
	if k.state.arena.IsTree(handle.AuctionID) {
		if outcome, done := k.state.arena.RootOutcome(handle.AuctionID); done &&
			outcome.WinningBid.Equal(handle.Bid) {
			return math.Int{}, errorsmod.Wrap(types.ErrCannotReclaimWinningBid,
				"bid won its auction, reclaim the winning bid instead")
		}
	}
	return handle.Bid.Kit, nil
}

// reclaimWinningBid hands the auctioned collateral of a fully drained lot to
// its winner and retires the lot's root.
func (k *Keeper) reclaimWinningBid(handle types.BidHandle) (math.Int, error) {
	if !k.state.arena.IsTree(handle.AuctionID) {
		return math.Int{}, errorsmod.Wrap(types.ErrNotAWinningBid, "unknown auction")
	}
	outcome, done := k.state.arena.RootOutcome(handle.AuctionID)
	if !done || !outcome.WinningBid.Equal(handle.Bid) {
		return math.Int{}, errorsmod.Wrap(types.ErrNotAWinningBid, "bid did not win this auction")
	}
	if !k.state.arena.IsEmpty(handle.AuctionID) {
		return math.Int{}, errorsmod.Wrap(types.ErrNotAllSlicesClaimed,
			"lot still has undrained slices")
	}
	soldTez := outcome.SoldTez
	k.state.arena.DeleteEmptyTree(handle.AuctionID)

	k.logger.Info("winning bid reclaimed",
		"tree", int64(handle.AuctionID),
		"bidder", string(handle.Bid.Bidder),
		"tez", soldTez.String(),
	)
	return soldTez, nil
}
