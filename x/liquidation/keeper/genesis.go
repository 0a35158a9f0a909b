package keeper

import (
	"time"

	"github.com/kettle-labs/kettle/x/liquidation/types"
)

// InitGenesis rebuilds the state from a flat snapshot. Slices are replayed
// in global age order (completed lots oldest to youngest, then the current
// lot, then the queue) so the rebuilt burrow chains preserve relative age.
// Handles are assigned fresh; tickets issued before an export are void. The
// rebuilt state is checked with CheckInvariants before returning.
func (k *Keeper) InitGenesis(g *types.GenesisState) error {
	if err := g.Validate(); err != nil {
		return err
	}
	k.params = g.Params
	k.state = NewState()
	a := k.state.arena

	for _, c := range g.Completed {
		tree := a.NewTree()
		for _, contents := range c.Slices {
			k.appendSliceToTree(tree, contents)
		}
		outcome := types.AuctionOutcome{
			WinningBid: c.Outcome.WinningBid,
			SoldTez:    c.Outcome.SoldTez,
			SettledKit: c.Outcome.SettledKit,
		}
		if k.state.completed == nil {
			k.state.completed = &types.CompletedAuctionsHead{Youngest: tree, Oldest: tree}
		} else {
			prev := k.state.completed.Youngest
			a.ModifyRootOutcome(prev, func(o *types.AuctionOutcome) {
				o.YoungerAuction = tree
			})
			outcome.OlderAuction = prev
			k.state.completed.Youngest = tree
		}
		a.SetRootOutcome(tree, outcome)
	}

	if g.Current != nil {
		tree := a.NewTree()
		for _, contents := range g.Current.Slices {
			k.appendSliceToTree(tree, contents)
		}
		cur := &types.CurrentAuction{
			Tree:  tree,
			Phase: g.Current.Phase,
		}
		switch g.Current.Phase {
		case types.PhaseDescending:
			cur.StartValue = g.Current.StartValue
			cur.StartTime = time.Unix(g.Current.StartTime, 0).UTC()
		case types.PhaseAscending:
			cur.Leading = g.Current.Leading
			cur.BidTime = time.Unix(g.Current.BidTime, 0).UTC()
			cur.BidBlock = g.Current.BidBlock
		}
		k.state.current = cur
	}

	for _, contents := range g.Queued {
		k.appendSliceToTree(k.state.queued, contents)
	}

	for _, o := range g.UnreclaimedLots {
		tree := a.NewTree()
		a.SetRootOutcome(tree, types.AuctionOutcome{
			WinningBid: o.WinningBid,
			SoldTez:    o.SoldTez,
			SettledKit: o.SettledKit,
		})
	}

	return k.CheckInvariants()
}

// ExportGenesis flattens the state into a snapshot InitGenesis can replay.
func (k *Keeper) ExportGenesis() *types.GenesisState {
	a := k.state.arena
	g := &types.GenesisState{Params: k.params}

	listed := map[types.TreeID]bool{}
	if k.state.completed != nil {
		// Oldest first, following the younger links.
		for tree := k.state.completed.Oldest; tree != types.NilTree; {
			listed[tree] = true
			outcome, _ := a.RootOutcome(tree)
			c := types.GenesisCompletedAuction{
				Outcome: types.GenesisOutcome{
					WinningBid: outcome.WinningBid,
					SoldTez:    outcome.SoldTez,
					SettledKit: outcome.SettledKit,
				},
			}
			a.WalkLeaves(tree, func(_ types.LeafID, s types.Slice) {
				c.Slices = append(c.Slices, s.Contents)
			})
			g.Completed = append(g.Completed, c)
			tree = outcome.YoungerAuction
		}
	}

	if cur := k.state.current; cur != nil {
		gc := &types.GenesisCurrentAuction{Phase: cur.Phase}
		a.WalkLeaves(cur.Tree, func(_ types.LeafID, s types.Slice) {
			gc.Slices = append(gc.Slices, s.Contents)
		})
		switch cur.Phase {
		case types.PhaseDescending:
			gc.StartValue = cur.StartValue
			gc.StartTime = cur.StartTime.Unix()
		case types.PhaseAscending:
			gc.Leading = cur.Leading
			gc.BidTime = cur.BidTime.Unix()
			gc.BidBlock = cur.BidBlock
		}
		g.Current = gc
	}

	a.WalkLeaves(k.state.queued, func(_ types.LeafID, s types.Slice) {
		g.Queued = append(g.Queued, s.Contents)
	})

	// Unreclaimed lots are the roots with outcomes that left the completed
	// list: fully drained, waiting for the winner.
	for i := 1; i < len(a.nodes); i++ {
		tree := types.TreeID(i)
		if a.nodes[i].kind != kindRoot || listed[tree] {
			continue
		}
		outcome, done := a.RootOutcome(tree)
		if !done {
			continue
		}
		g.UnreclaimedLots = append(g.UnreclaimedLots, types.GenesisOutcome{
			WinningBid: outcome.WinningBid,
			SoldTez:    outcome.SoldTez,
			SettledKit: outcome.SettledKit,
		})
	}

	return g
}
