package types

import (
	"cosmossdk.io/math"
)

// Effect is an outbound call descriptor. The core never performs foreign
// calls itself; handlers append effects to the result and the host
// interprets them after the transition commits.
type Effect interface {
	isEffect()
}

// CallCancelSliceLiquidation returns a cancelled slice to the minter.
type CallCancelSliceLiquidation struct {
	Minter     Address
	Permission []byte
	Contents   SliceContents
}

// CallBurrowSendSliceToChecker returns drained collateral to its burrow.
type CallBurrowSendSliceToChecker struct {
	Burrow Address
	Tez    math.Int
}

// SettlementEntry is the per-slice payout of a drained lot.
type SettlementEntry struct {
	Contents SliceContents
	RepayKit math.Int
}

// CallTouchLiquidationSlices hands the minter the settlement data of one
// drain batch, in slice order, plus the total kit to burn.
type CallTouchLiquidationSlices struct {
	Minter      Address
	Settlements []SettlementEntry
	TotalBurn   math.Int
}

// CallTransferBidTicket delivers the bid handle ticket to a bidder.
type CallTransferBidTicket struct {
	Bidder Address
	Handle BidHandle
}

// CallTransferKit returns reclaimed kit to a bidder.
type CallTransferKit struct {
	Bidder Address
	Kit    math.Int
}

// CallUnitTransfer sends won collateral to the auction winner.
type CallUnitTransfer struct {
	Addr Address
	Tez  math.Int
}

func (CallCancelSliceLiquidation) isEffect()   {}
func (CallBurrowSendSliceToChecker) isEffect() {}
func (CallTouchLiquidationSlices) isEffect()   {}
func (CallTransferBidTicket) isEffect()        {}
func (CallTransferKit) isEffect()              {}
func (CallUnitTransfer) isEffect()             {}
