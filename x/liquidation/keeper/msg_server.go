package keeper

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"

	"github.com/kettle-labs/kettle/x/liquidation/types"
)

// MsgServer dispatches typed messages to the keeper. Every transition runs
// against a clone of the state; on error the clone is discarded, so partial
// mutations never leak out.
type MsgServer struct {
	*Keeper
}

// NewMsgServerImpl returns the message server wrapping k.
func NewMsgServerImpl(k *Keeper) MsgServer {
	return MsgServer{k}
}

// Handle validates and executes one message, returning its effects and
// events. State is modified only on success.
func (ms MsgServer) Handle(ctx types.Context, msg types.Msg) (*types.Result, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if !ctx.Amount.IsNil() && !ctx.Amount.IsZero() {
		return nil, errorsmod.Wrapf(types.ErrUnwantedTezGiven,
			"message %s does not accept tez", msg.Type())
	}

	saved := ms.state
	ms.state = saved.Clone()
	res, err := ms.dispatch(ctx, msg)
	if err != nil {
		ms.state = saved
		return nil, err
	}
	return res, nil
}

func (ms MsgServer) dispatch(ctx types.Context, msg types.Msg) (*types.Result, error) {
	switch m := msg.(type) {
	case *types.MsgTouch:
		return ms.handleTouch(ctx, m)
	case *types.MsgEnsureNoUnclaimedSlices:
		return ms.handleEnsureNoUnclaimedSlices(m)
	case *types.MsgSendSliceToAuction:
		return ms.handleSendSliceToAuction(m)
	case *types.MsgCancelSliceLiquidation:
		return ms.handleCancelSliceLiquidation(m)
	case *types.MsgTouchSlices:
		return ms.handleTouchSlices(m)
	case *types.MsgTouchOldestSlices:
		return ms.handleTouchOldestSlices(m)
	case *types.MsgPlaceBid:
		return ms.handlePlaceBid(ctx, m)
	case *types.MsgReclaimBid:
		return ms.handleReclaimBid(m)
	case *types.MsgReclaimWinningBid:
		return ms.handleReclaimWinningBid(m)
	default:
		panic(fmt.Sprintf("invariant violation: unroutable message %T", msg))
	}
}

// requireMinter guards the entry points reserved for the minter.
func (ms MsgServer) requireMinter(sender types.Address) error {
	if sender != ms.minter {
		return errorsmod.Wrapf(types.ErrUnauthorized, "sender %s is not the minter", sender)
	}
	return nil
}

// requireSelf guards the entry points reserved for the host tick.
func (ms MsgServer) requireSelf(sender types.Address) error {
	if sender != ms.self {
		return errorsmod.Wrapf(types.ErrUnauthorized, "sender %s is not the auctioneer", sender)
	}
	return nil
}

func (ms MsgServer) handleTouch(ctx types.Context, m *types.MsgTouch) (*types.Result, error) {
	if err := ms.requireSelf(m.Sender); err != nil {
		return nil, err
	}
	events := ms.touchAuctions(ctx, m.Price)
	return &types.Result{Events: events}, nil
}

func (ms MsgServer) handleEnsureNoUnclaimedSlices(m *types.MsgEnsureNoUnclaimedSlices) (*types.Result, error) {
	if err := ms.requireMinter(m.Sender); err != nil {
		return nil, err
	}
	if err := ms.ensureNoUnclaimedSlices(m.Burrow); err != nil {
		return nil, err
	}
	return &types.Result{}, nil
}

func (ms MsgServer) handleSendSliceToAuction(m *types.MsgSendSliceToAuction) (*types.Result, error) {
	if err := ms.requireMinter(m.Sender); err != nil {
		return nil, err
	}
	leaf, err := ms.sendSliceToAuction(m.Contents)
	if err != nil {
		return nil, err
	}
	return &types.Result{
		Events: []types.Event{types.NewEvent(types.EventTypeSliceQueued,
			types.AttributeKeyLeaf, math.NewInt(int64(leaf)).String(),
			types.AttributeKeyBurrow, string(m.Contents.Burrow),
			types.AttributeKeyTez, m.Contents.Tez.String(),
		)},
	}, nil
}

func (ms MsgServer) handleCancelSliceLiquidation(m *types.MsgCancelSliceLiquidation) (*types.Result, error) {
	if err := ms.requireMinter(m.Sender); err != nil {
		return nil, err
	}
	if !ms.state.arena.IsLeaf(m.Leaf) {
		return nil, errorsmod.Wrap(types.ErrUnwarrantedCancellation, "unknown slice")
	}
	// Mutating before the membership check is fine; the dispatcher rolls the
	// clone back on error.
	slice, tree := ms.popSlice(m.Leaf)
	if tree != ms.state.queued {
		return nil, errorsmod.Wrap(types.ErrUnwarrantedCancellation,
			"slice already left the queue")
	}
	return &types.Result{
		Effects: []types.Effect{types.CallCancelSliceLiquidation{
			Minter:     ms.minter,
			Permission: m.Permission,
			Contents:   slice.Contents,
		}},
		Events: []types.Event{types.NewEvent(types.EventTypeSliceCancelled,
			types.AttributeKeyLeaf, math.NewInt(int64(m.Leaf)).String(),
			types.AttributeKeyBurrow, string(slice.Contents.Burrow),
			types.AttributeKeyTez, slice.Contents.Tez.String(),
		)},
	}, nil
}

func (ms MsgServer) handleTouchSlices(m *types.MsgTouchSlices) (*types.Result, error) {
	if err := ms.requireMinter(m.Sender); err != nil {
		return nil, err
	}
	effects, events, err := ms.touchLiquidationSlices(m.Leaves)
	if err != nil {
		return nil, err
	}
	return &types.Result{Effects: effects, Events: events}, nil
}

func (ms MsgServer) handleTouchOldestSlices(m *types.MsgTouchOldestSlices) (*types.Result, error) {
	if err := ms.requireMinter(m.Sender); err != nil {
		return nil, err
	}
	effects, events, err := ms.touchOldestSlices(m.Max)
	if err != nil {
		return nil, err
	}
	return &types.Result{Effects: effects, Events: events}, nil
}

func (ms MsgServer) handlePlaceBid(ctx types.Context, m *types.MsgPlaceBid) (*types.Result, error) {
	handle, err := ms.placeBid(ctx, types.Bid{Bidder: m.Sender, Kit: m.Kit})
	if err != nil {
		return nil, err
	}
	return &types.Result{
		Effects: []types.Effect{types.CallTransferBidTicket{
			Bidder: m.Sender,
			Handle: handle,
		}},
		Events: []types.Event{types.NewEvent(types.EventTypeBidPlaced,
			types.AttributeKeyTree, math.NewInt(int64(handle.AuctionID)).String(),
			types.AttributeKeyBidder, string(m.Sender),
			types.AttributeKeyKit, m.Kit.String(),
		)},
	}, nil
}

func (ms MsgServer) handleReclaimBid(m *types.MsgReclaimBid) (*types.Result, error) {
	kit, err := ms.reclaimLosingBid(m.Handle)
	if err != nil {
		return nil, err
	}
	return &types.Result{
		Effects: []types.Effect{types.CallTransferKit{
			Bidder: m.Handle.Bid.Bidder,
			Kit:    kit,
		}},
	}, nil
}

func (ms MsgServer) handleReclaimWinningBid(m *types.MsgReclaimWinningBid) (*types.Result, error) {
	tez, err := ms.reclaimWinningBid(m.Handle)
	if err != nil {
		return nil, err
	}
	return &types.Result{
		Effects: []types.Effect{types.CallUnitTransfer{
			Addr: m.Handle.Bid.Bidder,
			Tez:  tez,
		}},
		Events: []types.Event{types.NewEvent(types.EventTypeLotReclaimed,
			types.AttributeKeyTree, math.NewInt(int64(m.Handle.AuctionID)).String(),
			types.AttributeKeyBidder, string(m.Handle.Bid.Bidder),
			types.AttributeKeySoldTez, tez.String(),
		)},
	}, nil
}
