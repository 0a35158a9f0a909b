package types

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func Test_SliceContents_Split(t *testing.T) {
	c := SliceContents{
		Burrow:               "burrow1",
		Tez:                  math.NewInt(1_000),
		MinKitForUnwarranted: math.NewInt(100),
	}

	left, right := c.Split(math.NewInt(300))
	require.Equal(t, math.NewInt(300), left.Tez)
	require.Equal(t, math.NewInt(700), right.Tez)
	require.Equal(t, c.Burrow, left.Burrow)
	require.Equal(t, c.Burrow, right.Burrow)

	// pro rata floors, rounded up on each half
	require.Equal(t, math.NewInt(30), left.MinKitForUnwarranted)
	require.Equal(t, math.NewInt(70), right.MinKitForUnwarranted)

	// tez is conserved exactly, the floor may overshoot by at most one per half
	require.Equal(t, c.Tez, left.Tez.Add(right.Tez))
	require.True(t, left.MinKitForUnwarranted.Add(right.MinKitForUnwarranted).GTE(c.MinKitForUnwarranted))
}

func Test_SliceContents_SplitRoundsUp(t *testing.T) {
	c := SliceContents{
		Burrow:               "burrow1",
		Tez:                  math.NewInt(3),
		MinKitForUnwarranted: math.NewInt(10),
	}

	left, right := c.Split(math.NewInt(1))
	// 10*1/3 and 10*2/3, both ceiled
	require.Equal(t, math.NewInt(4), left.MinKitForUnwarranted)
	require.Equal(t, math.NewInt(7), right.MinKitForUnwarranted)
}

func Test_SliceContents_SplitBounds(t *testing.T) {
	c := SliceContents{
		Burrow:               "burrow1",
		Tez:                  math.NewInt(10),
		MinKitForUnwarranted: math.ZeroInt(),
	}

	require.Panics(t, func() { c.Split(math.ZeroInt()) })
	require.Panics(t, func() { c.Split(math.NewInt(10)) })
	require.Panics(t, func() { c.Split(math.NewInt(11)) })
}
