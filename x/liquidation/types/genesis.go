package types

import (
	"fmt"

	"cosmossdk.io/math"
)

// GenesisOutcome is the exported form of a completed lot's outcome. Tree
// linkage is positional and rebuilt on import.
type GenesisOutcome struct {
	WinningBid Bid
	SoldTez    math.Int
	SettledKit math.Int
}

// GenesisCompletedAuction is one completed lot, oldest first in the genesis
// list, with its remaining slices front to back.
type GenesisCompletedAuction struct {
	Slices  []SliceContents
	Outcome GenesisOutcome
}

// GenesisCurrentAuction is the live lot, if any.
type GenesisCurrentAuction struct {
	Slices []SliceContents
	Phase  AuctionPhase

	StartValue math.Int
	StartTime  int64 // unix seconds

	Leading  Bid
	BidTime  int64 // unix seconds
	BidBlock int64
}

// GenesisState is a flat snapshot of the auction state. Slice chains, heads
// and tree shapes are reconstructed on import by replaying slices in global
// age order: completed lots oldest to youngest, then the current lot, then
// the queue.
type GenesisState struct {
	Params Params

	Completed []GenesisCompletedAuction
	Current   *GenesisCurrentAuction
	Queued    []SliceContents

	// UnreclaimedLots are fully drained lots whose winners have not yet
	// reclaimed the collateral.
	UnreclaimedLots []GenesisOutcome
}

func DefaultGenesisState() *GenesisState {
	return &GenesisState{Params: DefaultParams()}
}

func (g GenesisState) Validate() error {
	if err := g.Params.Validate(); err != nil {
		return err
	}

	for _, c := range g.Queued {
		if err := validateGenesisSlice(c); err != nil {
			return err
		}
	}
	if g.Current != nil {
		if len(g.Current.Slices) == 0 {
			return fmt.Errorf("current auction has no slices")
		}
		for _, c := range g.Current.Slices {
			if err := validateGenesisSlice(c); err != nil {
				return err
			}
		}
		switch g.Current.Phase {
		case PhaseDescending:
			if g.Current.StartValue.IsNil() || !g.Current.StartValue.IsPositive() {
				return fmt.Errorf("descending auction start value must be positive")
			}
		case PhaseAscending:
			if err := validateGenesisBid(g.Current.Leading); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown auction phase %d", g.Current.Phase)
		}
	}
	for _, c := range g.Completed {
		if len(c.Slices) == 0 {
			return fmt.Errorf("completed auction has no slices")
		}
		for _, s := range c.Slices {
			if err := validateGenesisSlice(s); err != nil {
				return err
			}
		}
		if err := validateGenesisOutcome(c.Outcome); err != nil {
			return err
		}
	}
	for _, o := range g.UnreclaimedLots {
		if err := validateGenesisOutcome(o); err != nil {
			return err
		}
	}

	return nil
}

func validateGenesisSlice(c SliceContents) error {
	if c.Burrow.Empty() {
		return fmt.Errorf("slice burrow is empty")
	}
	if c.Tez.IsNil() || !c.Tez.IsPositive() {
		return fmt.Errorf("slice tez must be positive")
	}
	if c.MinKitForUnwarranted.IsNil() || c.MinKitForUnwarranted.IsNegative() {
		return fmt.Errorf("slice min kit must be non-negative")
	}
	return nil
}

func validateGenesisBid(b Bid) error {
	if b.Bidder.Empty() {
		return fmt.Errorf("bid bidder is empty")
	}
	if b.Kit.IsNil() || !b.Kit.IsPositive() {
		return fmt.Errorf("bid kit must be positive")
	}
	return nil
}

func validateGenesisOutcome(o GenesisOutcome) error {
	if err := validateGenesisBid(o.WinningBid); err != nil {
		return err
	}
	if o.SoldTez.IsNil() || !o.SoldTez.IsPositive() {
		return fmt.Errorf("outcome sold tez must be positive")
	}
	if o.SettledKit.IsNil() || o.SettledKit.IsNegative() {
		return fmt.Errorf("outcome settled kit must be non-negative")
	}
	return nil
}
