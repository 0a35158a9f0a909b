package types

import (
	errorsmod "cosmossdk.io/errors"
)

// Liquidation auction errors. Every failure here aborts the current message
// and leaves the auction state untouched. Internal inconsistencies are not
// errors; they panic.
var (
	// ErrQueueTooLong error raised when the liquidation queue reached its height bound
	ErrQueueTooLong = errorsmod.Register(ModuleName, 2, "liquidation queue too long")

	// ErrBidTooLow error raised when a bid is below the current minimum bid
	ErrBidTooLow = errorsmod.Register(ModuleName, 3, "bid too low")

	// ErrNoOpenAuction error raised when bidding while no auction is in progress
	ErrNoOpenAuction = errorsmod.Register(ModuleName, 4, "no open auction")

	// ErrUnwarrantedCancellation error raised when cancelling a slice that already left the queue
	ErrUnwarrantedCancellation = errorsmod.Register(ModuleName, 5, "unwarranted cancellation")

	// ErrCannotReclaimLeadingBid error raised when reclaiming the currently leading bid
	ErrCannotReclaimLeadingBid = errorsmod.Register(ModuleName, 6, "cannot reclaim leading bid")

	// ErrCannotReclaimWinningBid error raised when reclaiming a winning bid through the losing path
	ErrCannotReclaimWinningBid = errorsmod.Register(ModuleName, 7, "cannot reclaim winning bid")

	// ErrNotAWinningBid error raised when the winner-reclaim handle does not match any outcome
	ErrNotAWinningBid = errorsmod.Register(ModuleName, 8, "not a winning bid")

	// ErrNotAllSlicesClaimed error raised when the winner reclaims before the lot is drained
	ErrNotAllSlicesClaimed = errorsmod.Register(ModuleName, 9, "not all slices claimed")

	// ErrNotACompletedSlice error raised when draining a slice that is not in a completed lot
	ErrNotACompletedSlice = errorsmod.Register(ModuleName, 10, "not a completed slice")

	// ErrBurrowHasCompletedLiquidation error raised when a burrow still has unclaimed completed slices
	ErrBurrowHasCompletedLiquidation = errorsmod.Register(ModuleName, 11, "burrow has completed liquidation")

	// ErrUnauthorized error raised when the sender does not match the entrypoint's role
	ErrUnauthorized = errorsmod.Register(ModuleName, 12, "unauthorized")

	// ErrUnwantedTezGiven error raised when value is attached to a non-payable entrypoint
	ErrUnwantedTezGiven = errorsmod.Register(ModuleName, 13, "unwanted tez given")

	// ErrTooManySlices error raised when a bulk touch exceeds the per-message slice cap
	ErrTooManySlices = errorsmod.Register(ModuleName, 14, "too many slices")

	// ErrInvalidMsg error raised when a message fails basic validation
	ErrInvalidMsg = errorsmod.Register(ModuleName, 15, "invalid message")
)
