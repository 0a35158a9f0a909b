package types

import (
	"fmt"

	"cosmossdk.io/math"
)

// Split cuts the slice contents into a front part of exactly tez collateral
// and the remainder. The unwarranted floor is apportioned pro rata, rounded
// up on both halves so neither underestimates its share. Requires
// 0 < tez < c.Tez.
func (c SliceContents) Split(tez math.Int) (SliceContents, SliceContents) {
	if !tez.IsPositive() || tez.GTE(c.Tez) {
		panic(fmt.Sprintf("invariant violation: split of %s tez out of %s", tez, c.Tez))
	}
	rest := c.Tez.Sub(tez)

	left := SliceContents{
		Burrow:               c.Burrow,
		Tez:                  tez,
		MinKitForUnwarranted: ceilDiv(c.MinKitForUnwarranted.Mul(tez), c.Tez),
	}
	right := SliceContents{
		Burrow:               c.Burrow,
		Tez:                  rest,
		MinKitForUnwarranted: ceilDiv(c.MinKitForUnwarranted.Mul(rest), c.Tez),
	}
	return left, right
}
