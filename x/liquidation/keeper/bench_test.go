package keeper

import (
	"testing"

	"cosmossdk.io/math"

	"github.com/kettle-labs/kettle/x/liquidation/types"
)

func BenchmarkPushBack(b *testing.B) {
	a := NewArena()
	tree := a.NewTree()
	s := testSlice(1_000_000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.PushBack(tree, s)
	}
}

func BenchmarkPushPopFront(b *testing.B) {
	a := NewArena()
	tree := a.NewTree()
	s := testSlice(1_000_000)
	for i := 0; i < 1024; i++ {
		a.PushBack(tree, s)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.PushBack(tree, s)
		a.PopFront(tree)
	}
}

func BenchmarkTakePrefix(b *testing.B) {
	s := testSlice(1_000_000)
	limit := math.NewInt(64_000_000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		a := NewArena()
		tree := a.NewTree()
		for j := 0; j < 1024; j++ {
			a.PushBack(tree, s)
		}
		b.StartTimer()

		a.Take(tree, limit)
	}
}

func BenchmarkStateClone(b *testing.B) {
	state := NewState()
	for i := 0; i < 1024; i++ {
		leaf := state.arena.PushBack(state.queued, testSlice(1_000_000))
		state.setBurrowHead(types.Address("burrow"+string(rune('a'+i%26))),
			types.BurrowSlicesHead{Oldest: leaf, Youngest: leaf})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		state.Clone()
	}
}
