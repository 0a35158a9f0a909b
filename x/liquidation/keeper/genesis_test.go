package keeper_test

import (
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/kettle-labs/kettle/x/liquidation/keeper"
	"github.com/kettle-labs/kettle/x/liquidation/types"
)

func Test_Genesis_Default(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.k.InitGenesis(types.DefaultGenesisState()))
	require.NoError(t, env.k.CheckInvariants())
	require.True(t, env.q.QueuedWeight().IsZero())
}

func Test_Genesis_RoundTrip(t *testing.T) {
	env := newTestEnv(t)

	// an unreclaimed drained lot
	env.runAuction("burrowA", 1_000_000, bobAddr)
	env.drainOldest(5)

	// a completed lot still waiting for its drain
	env.runAuction("burrowB", 2_000_000, aliceAddr)

	// a live ascending lot
	env.sendSlice("burrowC", 3_000_000, 10)
	env.touch()
	env.placeBid(bobAddr, env.minBid())

	// and a queued slice behind it
	env.sendSlice("burrowA", 4_000_000, 20)

	exported := env.k.ExportGenesis()
	require.NoError(t, exported.Validate())
	require.Len(t, exported.Completed, 1)
	require.NotNil(t, exported.Current)
	require.Equal(t, types.PhaseAscending, exported.Current.Phase)
	require.Len(t, exported.Queued, 1)
	require.Len(t, exported.UnreclaimedLots, 1)

	fresh, err := keeper.NewKeeper(log.NewNopLogger(), types.DefaultParams(), minterAddr, selfAddr)
	require.NoError(t, err)
	require.NoError(t, fresh.InitGenesis(exported))
	require.NoError(t, fresh.CheckInvariants())

	// a second export reproduces the snapshot exactly
	require.Equal(t, exported, fresh.ExportGenesis())

	// the rebuilt state behaves: the completed lot drains and settles
	q := keeper.NewQuerier(fresh)
	require.Equal(t, math.NewInt(4_000_000), q.QueuedWeight())

	ms := keeper.NewMsgServerImpl(fresh)
	res, err := ms.Handle(env.ctx(minterAddr), &types.MsgTouchOldestSlices{Sender: minterAddr, Max: 5})
	require.NoError(t, err)
	require.NoError(t, fresh.CheckInvariants())

	back := res.Effects[0].(types.CallBurrowSendSliceToChecker)
	require.Equal(t, types.Address("burrowB"), back.Burrow)
	require.Equal(t, math.NewInt(2_000_000), back.Tez)
}

func Test_Genesis_ValidateRejectsBadState(t *testing.T) {
	g := types.DefaultGenesisState()
	g.Queued = append(g.Queued, types.SliceContents{
		Burrow:               "burrow1",
		Tez:                  math.ZeroInt(),
		MinKitForUnwarranted: math.ZeroInt(),
	})
	require.Error(t, g.Validate())

	g = types.DefaultGenesisState()
	g.Current = &types.GenesisCurrentAuction{Phase: types.PhaseDescending}
	require.Error(t, g.Validate())

	g = types.DefaultGenesisState()
	g.UnreclaimedLots = append(g.UnreclaimedLots, types.GenesisOutcome{
		WinningBid: types.Bid{Bidder: "alice", Kit: math.NewInt(1)},
		SoldTez:    math.ZeroInt(),
		SettledKit: math.ZeroInt(),
	})
	require.Error(t, g.Validate())
}
