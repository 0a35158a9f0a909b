package keeper

import (
	"cosmossdk.io/math"

	"github.com/kettle-labs/kettle/x/liquidation/types"
)

// Querier exposes the read-only views of the auction state.
type Querier struct {
	*Keeper
}

func NewQuerier(k *Keeper) Querier {
	return Querier{k}
}

// QueuedWeight returns the total mutez waiting in the queue.
func (q Querier) QueuedWeight() math.Int {
	return q.state.arena.Weight(q.state.queued)
}

// QueuedSlices returns the queue contents front to back.
func (q Querier) QueuedSlices() []types.SliceContents {
	var out []types.SliceContents
	q.state.arena.WalkLeaves(q.state.queued, func(_ types.LeafID, s types.Slice) {
		out = append(out, s.Contents)
	})
	return out
}

// CurrentAuctionDetails is a copy of the live lot's state plus its weight.
type CurrentAuctionDetails struct {
	Auction types.CurrentAuction
	Tez     math.Int
}

// CurrentAuction returns the live lot, if any.
func (q Querier) CurrentAuction() (CurrentAuctionDetails, bool) {
	cur := q.state.current
	if cur == nil {
		return CurrentAuctionDetails{}, false
	}
	return CurrentAuctionDetails{
		Auction: *cur,
		Tez:     q.state.arena.Weight(cur.Tree),
	}, true
}

// CurrentMinBid returns the smallest acceptable bid right now.
func (q Querier) CurrentMinBid(ctx types.Context) (math.Int, error) {
	return q.currentMinBid(ctx)
}

// CompletedLot summarises one completed lot awaiting drain.
type CompletedLot struct {
	Tree       types.TreeID
	WinningBid types.Bid
	SoldTez    math.Int
	Remaining  []types.SliceContents
}

// CompletedAuctions returns the completed lots oldest first.
func (q Querier) CompletedAuctions() []CompletedLot {
	var out []CompletedLot
	if q.state.completed == nil {
		return out
	}
	for tree := q.state.completed.Oldest; tree != types.NilTree; {
		outcome, _ := q.state.arena.RootOutcome(tree)
		lot := CompletedLot{
			Tree:       tree,
			WinningBid: outcome.WinningBid,
			SoldTez:    outcome.SoldTez,
		}
		q.state.arena.WalkLeaves(tree, func(_ types.LeafID, s types.Slice) {
			lot.Remaining = append(lot.Remaining, s.Contents)
		})
		out = append(out, lot)
		tree = outcome.YoungerAuction
	}
	return out
}

// BurrowSlices returns the leaves of one burrow's chain, oldest first.
func (q Querier) BurrowSlices(burrow types.Address) []types.LeafID {
	head, ok := q.state.burrowHead(burrow)
	if !ok {
		return nil
	}
	var out []types.LeafID
	for leaf := head.Oldest; leaf != types.NilLeaf; {
		out = append(out, leaf)
		leaf = q.state.arena.LeafValue(leaf).Younger
	}
	return out
}

// SliceDetails returns the slice stored at leaf.
func (q Querier) SliceDetails(leaf types.LeafID) (types.SliceContents, bool) {
	if !q.state.arena.IsLeaf(leaf) {
		return types.SliceContents{}, false
	}
	return q.state.arena.LeafValue(leaf).Contents, true
}

// IsLeadingBid reports whether handle currently leads the live lot.
func (q Querier) IsLeadingBid(handle types.BidHandle) bool {
	return q.isLeadingBid(handle)
}
