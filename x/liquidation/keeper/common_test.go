package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/kettle-labs/kettle/x/liquidation/keeper"
	"github.com/kettle-labs/kettle/x/liquidation/types"
)

const (
	minterAddr types.Address = "minter"
	selfAddr   types.Address = "liquidation"
	burrowAddr types.Address = "burrow1"
	aliceAddr  types.Address = "alice"
	bobAddr    types.Address = "bob"
)

// startPrice is three kit per tez at six kit decimals.
var startPrice = types.NewRatio(3_000_000, 1)

type testEnv struct {
	t  *testing.T
	k  *keeper.Keeper
	ms keeper.MsgServer
	q  keeper.Querier

	now    time.Time
	height int64
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithParams(t, types.DefaultParams())
}

func newTestEnvWithParams(t *testing.T, params types.Params) *testEnv {
	k, err := keeper.NewKeeper(log.NewNopLogger(), params, minterAddr, selfAddr)
	require.NoError(t, err)
	return &testEnv{
		t:      t,
		k:      k,
		ms:     keeper.NewMsgServerImpl(k),
		q:      keeper.NewQuerier(k),
		now:    time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		height: 100,
	}
}

func (e *testEnv) ctx(sender types.Address) types.Context {
	return types.NewContext(e.now, e.height, sender)
}

func (e *testEnv) advance(d time.Duration, blocks int64) {
	e.now = e.now.Add(d)
	e.height += blocks
}

// handle dispatches msg and verifies the state invariants after a successful
// transition.
func (e *testEnv) handle(sender types.Address, msg types.Msg) (*types.Result, error) {
	res, err := e.ms.Handle(e.ctx(sender), msg)
	if err == nil {
		require.NoError(e.t, e.k.CheckInvariants())
	}
	return res, err
}

func (e *testEnv) mustHandle(sender types.Address, msg types.Msg) *types.Result {
	res, err := e.handle(sender, msg)
	require.NoError(e.t, err)
	return res
}

// sendSlice queues tez mutez for burrow and returns the new leaf.
func (e *testEnv) sendSlice(burrow types.Address, tez, minKit int64) types.LeafID {
	e.mustHandle(minterAddr, &types.MsgSendSliceToAuction{
		Sender: minterAddr,
		Contents: types.SliceContents{
			Burrow:               burrow,
			Tez:                  math.NewInt(tez),
			MinKitForUnwarranted: math.NewInt(minKit),
		},
	})
	leaves := e.q.BurrowSlices(burrow)
	require.NotEmpty(e.t, leaves)
	return leaves[len(leaves)-1]
}

// touch advances the auction lifecycle at the current oracle price. Only the
// auctioneer's own address may tick.
func (e *testEnv) touch() *types.Result {
	return e.mustHandle(selfAddr, &types.MsgTouch{Sender: selfAddr, Price: startPrice})
}

// drainOldest settles up to max completed slices on behalf of the minter.
func (e *testEnv) drainOldest(max int) *types.Result {
	return e.mustHandle(minterAddr, &types.MsgTouchOldestSlices{Sender: minterAddr, Max: max})
}

// placeBid bids kit on the current lot and returns the issued handle.
func (e *testEnv) placeBid(bidder types.Address, kit math.Int) types.BidHandle {
	res := e.mustHandle(bidder, &types.MsgPlaceBid{Sender: bidder, Kit: kit})
	for _, eff := range res.Effects {
		if ticket, ok := eff.(types.CallTransferBidTicket); ok {
			return ticket.Handle
		}
	}
	e.t.Fatal("no bid ticket effect in result")
	return types.BidHandle{}
}

// minBid is the smallest acceptable bid right now.
func (e *testEnv) minBid() math.Int {
	min, err := e.q.CurrentMinBid(e.ctx(aliceAddr))
	require.NoError(e.t, err)
	return min
}

// runAuction queues tez for burrow, opens a lot, lets bidder win it at the
// starting price and closes it. Returns the winning handle.
func (e *testEnv) runAuction(burrow types.Address, tez int64, bidder types.Address) types.BidHandle {
	e.sendSlice(burrow, tez, 0)
	e.touch()
	handle := e.placeBid(bidder, e.minBid())
	e.advance(time.Duration(e.k.Params().BidIntervalSec+1)*time.Second, e.k.Params().BidIntervalBlocks+1)
	e.touch()
	return handle
}
