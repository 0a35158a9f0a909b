package types

import (
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
)

// Msg is the typed message surface of the module. The host routes inbound
// calls here; the dispatcher applies role and payability checks before the
// state transition.
type Msg interface {
	// Type is the routing tag of the message.
	Type() string
	// GetSender returns the claimed sender, which the host has authenticated.
	GetSender() Address
	// ValidateBasic performs stateless validation.
	ValidateBasic() error
}

const (
	TypeMsgTouch                  = "touch"
	TypeMsgEnsureNoUnclaimed      = "ensure_no_unclaimed_slices"
	TypeMsgSendSliceToAuction     = "send_slice_to_auction"
	TypeMsgCancelSliceLiquidation = "cancel_slice_liquidation"
	TypeMsgTouchSlices            = "touch_slices"
	TypeMsgTouchOldestSlices      = "touch_oldest_slices"
	TypeMsgPlaceBid               = "place_bid"
	TypeMsgReclaimBid             = "reclaim_bid"
	TypeMsgReclaimWinningBid      = "reclaim_winning_bid"
)

var (
	_ Msg = &MsgTouch{}
	_ Msg = &MsgEnsureNoUnclaimedSlices{}
	_ Msg = &MsgSendSliceToAuction{}
	_ Msg = &MsgCancelSliceLiquidation{}
	_ Msg = &MsgTouchSlices{}
	_ Msg = &MsgTouchOldestSlices{}
	_ Msg = &MsgPlaceBid{}
	_ Msg = &MsgReclaimBid{}
	_ Msg = &MsgReclaimWinningBid{}
)

// MsgTouch advances the auction lifecycle: closes the current lot if its bid
// intervals elapsed and starts a new one from the queue prefix. Price is the
// oracle start price in scaled kit per tez.
type MsgTouch struct {
	Sender Address
	Price  Ratio
}

func (m *MsgTouch) Type() string       { return TypeMsgTouch }
func (m *MsgTouch) GetSender() Address { return m.Sender }
func (m *MsgTouch) ValidateBasic() error {
	if m.Sender.Empty() {
		return errorsmod.Wrap(ErrInvalidMsg, "empty sender")
	}
	if err := m.Price.Validate(); err != nil {
		return errorsmod.Wrapf(ErrInvalidMsg, "price: %s", err)
	}
	if m.Price.IsZero() {
		return errorsmod.Wrap(ErrInvalidMsg, "zero start price")
	}
	return nil
}

// MsgEnsureNoUnclaimedSlices fails when the burrow still has slices sitting
// in completed lots; the minter calls it before allowing burrow operations.
type MsgEnsureNoUnclaimedSlices struct {
	Sender Address
	Burrow Address
}

func (m *MsgEnsureNoUnclaimedSlices) Type() string       { return TypeMsgEnsureNoUnclaimed }
func (m *MsgEnsureNoUnclaimedSlices) GetSender() Address { return m.Sender }
func (m *MsgEnsureNoUnclaimedSlices) ValidateBasic() error {
	if m.Sender.Empty() || m.Burrow.Empty() {
		return errorsmod.Wrap(ErrInvalidMsg, "empty address")
	}
	return nil
}

// MsgSendSliceToAuction appends a freshly chopped slice to the liquidation
// queue as the youngest slice of its burrow.
type MsgSendSliceToAuction struct {
	Sender   Address
	Contents SliceContents
}

func (m *MsgSendSliceToAuction) Type() string       { return TypeMsgSendSliceToAuction }
func (m *MsgSendSliceToAuction) GetSender() Address { return m.Sender }
func (m *MsgSendSliceToAuction) ValidateBasic() error {
	if m.Sender.Empty() {
		return errorsmod.Wrap(ErrInvalidMsg, "empty sender")
	}
	if m.Contents.Burrow.Empty() {
		return errorsmod.Wrap(ErrInvalidMsg, "empty burrow")
	}
	if m.Contents.Tez.IsNil() || !m.Contents.Tez.IsPositive() {
		return errorsmod.Wrap(ErrInvalidMsg, "slice tez must be positive")
	}
	if m.Contents.MinKitForUnwarranted.IsNil() || m.Contents.MinKitForUnwarranted.IsNegative() {
		return errorsmod.Wrap(ErrInvalidMsg, "min kit for unwarranted must be non-negative")
	}
	return nil
}

// MsgCancelSliceLiquidation removes a slice that is still waiting in the
// queue and returns it to its burrow. Permission is the opaque capability
// ticket forwarded back to the minter.
type MsgCancelSliceLiquidation struct {
	Sender     Address
	Leaf       LeafID
	Permission []byte
}

func (m *MsgCancelSliceLiquidation) Type() string       { return TypeMsgCancelSliceLiquidation }
func (m *MsgCancelSliceLiquidation) GetSender() Address { return m.Sender }
func (m *MsgCancelSliceLiquidation) ValidateBasic() error {
	if m.Sender.Empty() {
		return errorsmod.Wrap(ErrInvalidMsg, "empty sender")
	}
	if m.Leaf == NilLeaf {
		return errorsmod.Wrap(ErrInvalidMsg, "nil leaf")
	}
	return nil
}

// MsgTouchSlices drains the listed slices out of their completed lots,
// emitting per-slice settlement back to the minter.
type MsgTouchSlices struct {
	Sender Address
	Leaves []LeafID
}

func (m *MsgTouchSlices) Type() string       { return TypeMsgTouchSlices }
func (m *MsgTouchSlices) GetSender() Address { return m.Sender }
func (m *MsgTouchSlices) ValidateBasic() error {
	if m.Sender.Empty() {
		return errorsmod.Wrap(ErrInvalidMsg, "empty sender")
	}
	if len(m.Leaves) == 0 {
		return errorsmod.Wrap(ErrInvalidMsg, "no slices given")
	}
	for _, leaf := range m.Leaves {
		if leaf == NilLeaf {
			return errorsmod.Wrap(ErrInvalidMsg, "nil leaf")
		}
	}
	return nil
}

// MsgTouchOldestSlices drains up to Max of the globally oldest completed
// slices.
type MsgTouchOldestSlices struct {
	Sender Address
	Max    int
}

func (m *MsgTouchOldestSlices) Type() string       { return TypeMsgTouchOldestSlices }
func (m *MsgTouchOldestSlices) GetSender() Address { return m.Sender }
func (m *MsgTouchOldestSlices) ValidateBasic() error {
	if m.Sender.Empty() {
		return errorsmod.Wrap(ErrInvalidMsg, "empty sender")
	}
	if m.Max <= 0 {
		return errorsmod.Wrap(ErrInvalidMsg, "max must be positive")
	}
	return nil
}

// MsgPlaceBid offers kit for the current lot.
type MsgPlaceBid struct {
	Sender Address
	Kit    math.Int
}

func (m *MsgPlaceBid) Type() string       { return TypeMsgPlaceBid }
func (m *MsgPlaceBid) GetSender() Address { return m.Sender }
func (m *MsgPlaceBid) ValidateBasic() error {
	if m.Sender.Empty() {
		return errorsmod.Wrap(ErrInvalidMsg, "empty sender")
	}
	if m.Kit.IsNil() || !m.Kit.IsPositive() {
		return errorsmod.Wrap(ErrInvalidMsg, "bid kit must be positive")
	}
	return nil
}

// MsgReclaimBid reclaims the kit of a bid that lost (or was outbid).
type MsgReclaimBid struct {
	Sender Address
	Handle BidHandle
}

func (m *MsgReclaimBid) Type() string       { return TypeMsgReclaimBid }
func (m *MsgReclaimBid) GetSender() Address { return m.Sender }
func (m *MsgReclaimBid) ValidateBasic() error {
	return validateHandleMsg(m.Sender, m.Handle)
}

// MsgReclaimWinningBid claims the auctioned collateral of a fully drained
// lot won by the sender's bid.
type MsgReclaimWinningBid struct {
	Sender Address
	Handle BidHandle
}

func (m *MsgReclaimWinningBid) Type() string       { return TypeMsgReclaimWinningBid }
func (m *MsgReclaimWinningBid) GetSender() Address { return m.Sender }
func (m *MsgReclaimWinningBid) ValidateBasic() error {
	return validateHandleMsg(m.Sender, m.Handle)
}

func validateHandleMsg(sender Address, handle BidHandle) error {
	if sender.Empty() {
		return errorsmod.Wrap(ErrInvalidMsg, "empty sender")
	}
	if handle.AuctionID == NilTree {
		return errorsmod.Wrap(ErrInvalidMsg, "nil auction id")
	}
	if handle.Bid.Bidder.Empty() {
		return errorsmod.Wrap(ErrInvalidMsg, "empty bidder")
	}
	if handle.Bid.Kit.IsNil() || !handle.Bid.Kit.IsPositive() {
		return errorsmod.Wrap(ErrInvalidMsg, "handle kit must be positive")
	}
	return nil
}
