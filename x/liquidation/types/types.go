package types

import (
	"time"

	"cosmossdk.io/math"
)

// MutezPerTez converts between the mutez amounts collateral is held in and
// the whole-tez unit oracle prices are quoted against.
var MutezPerTez = math.NewInt(1_000_000)

// Address identifies an account on the host ledger. The host authenticates
// senders; the module only compares addresses for equality.
type Address string

func (a Address) Empty() bool {
	return len(a) == 0
}

// NodeID is an opaque handle into the arena. The zero value is the nil
// handle; slot zero of the arena is never allocated.
type NodeID int64

// NilNode is the absent node handle.
const NilNode NodeID = 0

// LeafID is an arena handle known to point at a leaf.
type LeafID NodeID

// TreeID is an arena handle known to point at a tree root.
type TreeID NodeID

const (
	NilLeaf LeafID = LeafID(NilNode)
	NilTree TreeID = TreeID(NilNode)
)

// SliceContents is the payload of one liquidation slice: a chunk of
// collateral scheduled for auction on behalf of a burrow.
type SliceContents struct {
	// Burrow is the owning collateral position.
	Burrow Address
	// Tez is the collateral amount in mutez. Always positive.
	Tez math.Int
	// MinKitForUnwarranted is the kit proceeds (scaled) above which the
	// liquidation would have been unnecessary.
	MinKitForUnwarranted math.Int
}

// Slice is the leaf payload stored in the arena: the slice contents plus the
// per-burrow age chain. Older and Younger link only slices of the same
// burrow and are reflexive-consistent.
type Slice struct {
	Contents SliceContents
	Older    LeafID
	Younger  LeafID
}

// BurrowSlicesHead records the endpoints of one burrow's slice chain. A head
// exists iff the burrow has at least one slice in any collection.
type BurrowSlicesHead struct {
	Oldest   LeafID
	Youngest LeafID
}

// Bid is an offer of kit for a whole lot.
type Bid struct {
	Bidder Address
	Kit    math.Int
}

func (b Bid) Equal(o Bid) bool {
	return b.Bidder == o.Bidder && b.Kit.Equal(o.Kit)
}

// BidHandle is returned to a bidder on a successful bid and presented back
// on reclaim. The host wraps it in a ticket; the module only checks that the
// handle matches its records.
type BidHandle struct {
	AuctionID TreeID
	Bid       Bid
}

// AuctionOutcome is attached to the root of a completed lot. YoungerAuction
// and OlderAuction chain the completed lots into a doubly-linked list.
type AuctionOutcome struct {
	WinningBid     Bid
	SoldTez        math.Int
	YoungerAuction TreeID
	OlderAuction   TreeID
	// SettledKit accumulates the floored per-slice proceeds already drained
	// from this lot, so the rounding residual can be burned with the final
	// batch.
	SettledKit math.Int
}

// AuctionPhase discriminates the two phases of the running auction.
type AuctionPhase uint8

const (
	// PhaseDescending is the reserve-price decay phase before the first bid.
	PhaseDescending AuctionPhase = iota + 1
	// PhaseAscending is the English-auction phase after the first bid.
	PhaseAscending
)

// CurrentAuction is the single live lot, if any. While descending only
// StartValue and StartTime are meaningful; while ascending only Leading,
// BidTime and BidBlock are.
type CurrentAuction struct {
	Tree  TreeID
	Phase AuctionPhase

	StartValue math.Int
	StartTime  time.Time

	Leading  Bid
	BidTime  time.Time
	BidBlock int64
}

// CompletedAuctionsHead records the endpoints of the completed-lot list,
// youngest first.
type CompletedAuctionsHead struct {
	Youngest TreeID
	Oldest   TreeID
}

// Context carries the read-only host-provided environment of one message.
type Context struct {
	// Now is the host block timestamp.
	Now time.Time
	// BlockHeight is the host block height.
	BlockHeight int64
	// Sender is the authenticated message sender.
	Sender Address
	// Amount is the mutez attached to the message.
	Amount math.Int
}

// NewContext returns a Context with no attached amount.
func NewContext(now time.Time, height int64, sender Address) Context {
	return Context{
		Now:         now,
		BlockHeight: height,
		Sender:      sender,
		Amount:      math.ZeroInt(),
	}
}

// WithAmount returns a copy of the context with the given attached mutez.
func (c Context) WithAmount(amount math.Int) Context {
	c.Amount = amount
	return c
}
