package keeper

import (
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"

	"github.com/kettle-labs/kettle/x/liquidation/types"
)

// drainedSlice is one slice taken out of a completed lot, with its computed
// settlement split.
type drainedSlice struct {
	contents types.SliceContents
	repayKit math.Int
	burnKit  math.Int
}

// drainSlice removes leaf from its completed lot and computes its share of
// the winning bid. When the lot empties, the accumulated rounding residual
// is added to this slice's burn and the lot leaves the completed list.
func (k *Keeper) drainSlice(leaf types.LeafID) (drainedSlice, error) {
	if !k.state.arena.IsLeaf(leaf) {
		return drainedSlice{}, errorsmod.Wrap(types.ErrNotACompletedSlice, "unknown slice")
	}
	root := k.state.arena.FindRoot(leaf)
	outcome, done := k.state.arena.RootOutcome(root)
	if !done {
		return drainedSlice{}, errorsmod.Wrap(types.ErrNotACompletedSlice,
			"slice is not in a completed auction")
	}

	slice, _ := k.popSlice(leaf)

	// The slice's proceeds are its pro rata share of the winning bid,
	// rounded down.
	corresponding := slice.Contents.Tez.Mul(outcome.WinningBid.Kit).Quo(outcome.SoldTez)

	// A liquidation was warranted when the proceeds fall short of the
	// recorded floor; only then is the penalty kept.
	var penalty math.Int
	if corresponding.LT(slice.Contents.MinKitForUnwarranted) {
		penalty = k.params.LiquidationPenalty.MulIntCeil(corresponding)
	} else {
		penalty = math.ZeroInt()
	}

	d := drainedSlice{
		contents: slice.Contents,
		repayKit: corresponding.Sub(penalty),
		burnKit:  penalty,
	}

	settled := outcome.SettledKit.Add(corresponding)
	if k.state.arena.IsEmpty(root) {
		// Flooring left a residual; burn it with the final slice so the
		// whole winning bid is accounted for.
		d.burnKit = d.burnKit.Add(outcome.WinningBid.Kit.Sub(settled))
		settled = outcome.WinningBid.Kit
		k.state.arena.ModifyRootOutcome(root, func(o *types.AuctionOutcome) {
			o.SettledKit = settled
		})
		k.popCompletedAuction(root)
	} else {
		k.state.arena.ModifyRootOutcome(root, func(o *types.AuctionOutcome) {
			o.SettledKit = settled
		})
	}
	return d, nil
}

// touchLiquidationSlices drains the listed slices and assembles the effects:
// one collateral return per slice in list order, then a single settlement
// call to the minter carrying every payout and the total burn.
func (k *Keeper) touchLiquidationSlices(leaves []types.LeafID) ([]types.Effect, []types.Event, error) {
	if len(leaves) > k.params.NumberOfSlicesToProcess {
		return nil, nil, errorsmod.Wrapf(types.ErrTooManySlices,
			"%d slices given, at most %d per call", len(leaves), k.params.NumberOfSlicesToProcess)
	}

	var (
		effects     []types.Effect
		events      []types.Event
		settlements []types.SettlementEntry
		totalBurn   = math.ZeroInt()
	)
	for _, leaf := range leaves {
		d, err := k.drainSlice(leaf)
		if err != nil {
			return nil, nil, err
		}
		effects = append(effects, types.CallBurrowSendSliceToChecker{
			Burrow: d.contents.Burrow,
			Tez:    d.contents.Tez,
		})
		events = append(events, types.NewEvent(types.EventTypeSliceDrained,
			types.AttributeKeyLeaf, math.NewInt(int64(leaf)).String(),
			types.AttributeKeyBurrow, string(d.contents.Burrow),
			types.AttributeKeyTez, d.contents.Tez.String(),
			types.AttributeKeyRepayKit, d.repayKit.String(),
			types.AttributeKeyBurnKit, d.burnKit.String(),
		))
		settlements = append(settlements, types.SettlementEntry{
			Contents: d.contents,
			RepayKit: d.repayKit,
		})
		totalBurn = totalBurn.Add(d.burnKit)
	}

	effects = append(effects, types.CallTouchLiquidationSlices{
		Minter:      k.minter,
		Settlements: settlements,
		TotalBurn:   totalBurn,
	})
	return effects, events, nil
}

// touchOldestSlices drains up to max of the globally oldest completed
// slices, oldest lot first. Draining fewer than max is not an error; with no
// completed slices at all it is a no-op.
func (k *Keeper) touchOldestSlices(max int) ([]types.Effect, []types.Event, error) {
	if max > k.params.NumberOfSlicesToProcess {
		max = k.params.NumberOfSlicesToProcess
	}

	var (
		effects     []types.Effect
		events      []types.Event
		settlements []types.SettlementEntry
		totalBurn   = math.ZeroInt()
	)
	for n := 0; n < max && k.state.completed != nil; n++ {
		oldest := k.state.completed.Oldest
		leaf, _, ok := k.state.arena.PeekFront(oldest)
		if !ok {
			panic("invariant violation: empty lot on the completed list")
		}
		// Draining the lot's last slice retires the lot and advances the
		// list head, so the next iteration sees the next oldest lot.
		d, err := k.drainSlice(leaf)
		if err != nil {
			return nil, nil, err
		}
		effects = append(effects, types.CallBurrowSendSliceToChecker{
			Burrow: d.contents.Burrow,
			Tez:    d.contents.Tez,
		})
		events = append(events, types.NewEvent(types.EventTypeSliceDrained,
			types.AttributeKeyLeaf, math.NewInt(int64(leaf)).String(),
			types.AttributeKeyBurrow, string(d.contents.Burrow),
			types.AttributeKeyTez, d.contents.Tez.String(),
			types.AttributeKeyRepayKit, d.repayKit.String(),
			types.AttributeKeyBurnKit, d.burnKit.String(),
		))
		settlements = append(settlements, types.SettlementEntry{
			Contents: d.contents,
			RepayKit: d.repayKit,
		})
		totalBurn = totalBurn.Add(d.burnKit)
	}
	if len(settlements) == 0 {
		return nil, nil, nil
	}

	effects = append(effects, types.CallTouchLiquidationSlices{
		Minter:      k.minter,
		Settlements: settlements,
		TotalBurn:   totalBurn,
	})
	return effects, events, nil
}
