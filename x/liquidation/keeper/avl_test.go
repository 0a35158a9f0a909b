package keeper

import (
	"math/rand"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/kettle-labs/kettle/x/liquidation/types"
)

func testSlice(tez int64) types.Slice {
	return types.Slice{Contents: types.SliceContents{
		Burrow:               "burrow1",
		Tez:                  math.NewInt(tez),
		MinKitForUnwarranted: math.ZeroInt(),
	}}
}

func collectTez(a *Arena, tree types.TreeID) []int64 {
	var out []int64
	a.WalkLeaves(tree, func(_ types.LeafID, s types.Slice) {
		out = append(out, s.Contents.Tez.Int64())
	})
	return out
}

// requireWellFormed re-verifies caches, balance and parent links of tree.
func requireWellFormed(t *testing.T, a *Arena, tree types.TreeID) {
	t.Helper()
	k := &Keeper{params: types.DefaultParams(), state: &State{arena: a}}
	require.NoError(t, k.checkTree(tree))
}

func Test_AVL_PushBackKeepsOrder(t *testing.T) {
	a := NewArena()
	tree := a.NewTree()
	for i := int64(1); i <= 10; i++ {
		a.PushBack(tree, testSlice(i))
	}
	require.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, collectTez(a, tree))
	require.Equal(t, math.NewInt(55), a.Weight(tree))
	requireWellFormed(t, a, tree)
}

func Test_AVL_PushFrontKeepsOrder(t *testing.T) {
	a := NewArena()
	tree := a.NewTree()
	for i := int64(1); i <= 5; i++ {
		a.PushFront(tree, testSlice(i))
	}
	require.Equal(t, []int64{5, 4, 3, 2, 1}, collectTez(a, tree))
	requireWellFormed(t, a, tree)
}

func Test_AVL_HeightStaysLogarithmic(t *testing.T) {
	a := NewArena()
	tree := a.NewTree()
	for i := int64(1); i <= 200; i++ {
		a.PushBack(tree, testSlice(1))
	}
	requireWellFormed(t, a, tree)
	require.LessOrEqual(t, a.TreeHeight(tree), int64(13))
	require.Equal(t, math.NewInt(200), a.Weight(tree))
}

func Test_AVL_PopFront(t *testing.T) {
	a := NewArena()
	tree := a.NewTree()
	for i := int64(1); i <= 4; i++ {
		a.PushBack(tree, testSlice(i))
	}

	for i := int64(1); i <= 4; i++ {
		s, ok := a.PopFront(tree)
		require.True(t, ok)
		require.Equal(t, i, s.Contents.Tez.Int64())
		requireWellFormed(t, a, tree)
	}
	require.True(t, a.IsEmpty(tree))
	_, ok := a.PopFront(tree)
	require.False(t, ok)

	// only the root handle remains live
	require.Equal(t, 1, a.InUse())
}

func Test_AVL_PopBack(t *testing.T) {
	a := NewArena()
	tree := a.NewTree()
	for i := int64(1); i <= 4; i++ {
		a.PushBack(tree, testSlice(i))
	}

	for i := int64(4); i >= 1; i-- {
		s, ok := a.PopBack(tree)
		require.True(t, ok)
		require.Equal(t, i, s.Contents.Tez.Int64())
		requireWellFormed(t, a, tree)
	}
	require.True(t, a.IsEmpty(tree))
	_, ok := a.PopBack(tree)
	require.False(t, ok)
}

func Test_AVL_DelInteriorLeaf(t *testing.T) {
	a := NewArena()
	tree := a.NewTree()
	var leaves []types.LeafID
	for i := int64(1); i <= 7; i++ {
		leaves = append(leaves, a.PushBack(tree, testSlice(i)))
	}

	got := a.Del(leaves[3])
	require.Equal(t, tree, got)
	require.Equal(t, []int64{1, 2, 3, 5, 6, 7}, collectTez(a, tree))
	require.Equal(t, math.NewInt(24), a.Weight(tree))
	requireWellFormed(t, a, tree)
}

func Test_AVL_DelRebalances(t *testing.T) {
	a := NewArena()
	tree := a.NewTree()
	var leaves []types.LeafID
	for i := int64(1); i <= 64; i++ {
		leaves = append(leaves, a.PushBack(tree, testSlice(i)))
	}

	// strip one side to force rotations on the way up
	for i := 0; i < 48; i++ {
		a.Del(leaves[i])
		requireWellFormed(t, a, tree)
	}
	require.Equal(t, int64(16), int64(len(collectTez(a, tree))))
	require.LessOrEqual(t, a.TreeHeight(tree), int64(6))
}

func Test_AVL_FindRoot(t *testing.T) {
	a := NewArena()
	tree := a.NewTree()
	var leaves []types.LeafID
	for i := int64(1); i <= 9; i++ {
		leaves = append(leaves, a.PushBack(tree, testSlice(i)))
	}
	for _, leaf := range leaves {
		require.Equal(t, tree, a.FindRoot(leaf))
	}
}

func Test_AVL_UpdateLeafRejectsTezChange(t *testing.T) {
	a := NewArena()
	tree := a.NewTree()
	leaf := a.PushBack(tree, testSlice(5))

	a.UpdateLeaf(leaf, func(s *types.Slice) {
		s.Older = 42
	})
	require.Equal(t, types.LeafID(42), a.LeafValue(leaf).Older)

	require.Panics(t, func() {
		a.UpdateLeaf(leaf, func(s *types.Slice) {
			s.Contents.Tez = math.NewInt(6)
		})
	})
}

func Test_AVL_TakeWholeLeavesOnly(t *testing.T) {
	a := NewArena()
	tree := a.NewTree()
	for _, tez := range []int64{10, 20, 30} {
		a.PushBack(tree, testSlice(tez))
	}

	// 10+20 fits, 30 does not
	taken := a.Take(tree, math.NewInt(35))
	require.Equal(t, []int64{10, 20}, collectTez(a, taken))
	require.Equal(t, []int64{30}, collectTez(a, tree))
	requireWellFormed(t, a, taken)
	requireWellFormed(t, a, tree)
}

func Test_AVL_TakeStopsAtHeavyLeaf(t *testing.T) {
	a := NewArena()
	tree := a.NewTree()
	for _, tez := range []int64{10, 20, 30} {
		a.PushBack(tree, testSlice(tez))
	}

	taken := a.Take(tree, math.NewInt(25))
	require.Equal(t, []int64{10}, collectTez(a, taken))
	require.Equal(t, []int64{20, 30}, collectTez(a, tree))
}

func Test_AVL_TakeEverything(t *testing.T) {
	a := NewArena()
	tree := a.NewTree()
	for _, tez := range []int64{10, 20, 30} {
		a.PushBack(tree, testSlice(tez))
	}

	taken := a.Take(tree, math.NewInt(60))
	require.Equal(t, []int64{10, 20, 30}, collectTez(a, taken))
	require.True(t, a.IsEmpty(tree))
}

func Test_AVL_TakeFromEmptyTree(t *testing.T) {
	a := NewArena()
	tree := a.NewTree()
	taken := a.Take(tree, math.NewInt(100))
	require.True(t, a.IsEmpty(taken))
	require.True(t, a.IsEmpty(tree))
}

func Test_AVL_TakeLargePrefixStaysBalanced(t *testing.T) {
	a := NewArena()
	tree := a.NewTree()
	for i := int64(0); i < 100; i++ {
		a.PushBack(tree, testSlice(1))
	}

	taken := a.Take(tree, math.NewInt(37))
	require.Equal(t, math.NewInt(37), a.Weight(taken))
	require.Equal(t, math.NewInt(63), a.Weight(tree))
	requireWellFormed(t, a, taken)
	requireWellFormed(t, a, tree)
}

func Test_AVL_RootOutcome(t *testing.T) {
	a := NewArena()
	tree := a.NewTree()

	_, ok := a.RootOutcome(tree)
	require.False(t, ok)

	outcome := types.AuctionOutcome{
		WinningBid: types.Bid{Bidder: "alice", Kit: math.NewInt(100)},
		SoldTez:    math.NewInt(50),
		SettledKit: math.ZeroInt(),
	}
	a.SetRootOutcome(tree, outcome)

	got, ok := a.RootOutcome(tree)
	require.True(t, ok)
	require.Equal(t, outcome.WinningBid, got.WinningBid)

	require.Panics(t, func() { a.SetRootOutcome(tree, outcome) })

	a.ModifyRootOutcome(tree, func(o *types.AuctionOutcome) {
		o.SettledKit = math.NewInt(100)
	})
	got, _ = a.RootOutcome(tree)
	require.Equal(t, math.NewInt(100), got.SettledKit)
}

func Test_AVL_RandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	a := NewArena()
	tree := a.NewTree()

	var want []int64
	var leaves []types.LeafID
	removeAt := func(i int) {
		want = append(want[:i], want[i+1:]...)
		leaves = append(leaves[:i], leaves[i+1:]...)
	}

	for i := 0; i < 1500; i++ {
		op := rng.Intn(6)
		if len(want) == 0 {
			op = 0
		}
		switch op {
		case 0, 1:
			v := int64(rng.Intn(1_000) + 1)
			leaves = append(leaves, a.PushBack(tree, testSlice(v)))
			want = append(want, v)
		case 2:
			v := int64(rng.Intn(1_000) + 1)
			leaves = append([]types.LeafID{a.PushFront(tree, testSlice(v))}, leaves...)
			want = append([]int64{v}, want...)
		case 3:
			s, ok := a.PopFront(tree)
			require.True(t, ok)
			require.Equal(t, want[0], s.Contents.Tez.Int64())
			removeAt(0)
		case 4:
			s, ok := a.PopBack(tree)
			require.True(t, ok)
			require.Equal(t, want[len(want)-1], s.Contents.Tez.Int64())
			removeAt(len(want) - 1)
		case 5:
			j := rng.Intn(len(leaves))
			require.Equal(t, tree, a.Del(leaves[j]))
			removeAt(j)
		}

		requireWellFormed(t, a, tree)
		got := collectTez(a, tree)
		require.Len(t, got, len(want))
		if len(want) > 0 {
			require.Equal(t, want, got)
		}

		var total int64
		for _, v := range want {
			total += v
		}
		require.Equal(t, math.NewInt(total), a.Weight(tree))

		if n := len(want); n > 1 {
			bound := int64(2)
			for m := n; m > 0; m >>= 1 {
				bound += 2
			}
			require.LessOrEqual(t, a.TreeHeight(tree), bound)
		}
	}
}

func Test_AVL_DeleteEmptyTree(t *testing.T) {
	a := NewArena()
	tree := a.NewTree()
	leaf := a.PushBack(tree, testSlice(5))

	require.Panics(t, func() { a.DeleteEmptyTree(tree) })

	a.Del(leaf)
	a.DeleteEmptyTree(tree)
	require.False(t, a.IsTree(tree))
	require.Equal(t, 0, a.InUse())
}
