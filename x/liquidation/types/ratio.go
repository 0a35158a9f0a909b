package types

import (
	"fmt"

	"cosmossdk.io/math"
)

// powPrecision is the fixed-point scale used while exponentiating ratios.
// Intermediate products are rounded back to this scale at every step so the
// numbers stay bounded regardless of the exponent.
var powPrecision = math.NewIntWithDecimal(1, 18)

// Ratio is an exact non-negative rational. All monetary scaling in the
// module goes through ratios applied to math.Int amounts with an explicit
// rounding direction; no floats anywhere.
type Ratio struct {
	Num math.Int
	Den math.Int
}

// NewRatio returns num/den.
func NewRatio(num, den int64) Ratio {
	return Ratio{Num: math.NewInt(num), Den: math.NewInt(den)}
}

// ZeroRatio returns 0/1.
func ZeroRatio() Ratio {
	return Ratio{Num: math.ZeroInt(), Den: math.OneInt()}
}

// OneRatio returns 1/1.
func OneRatio() Ratio {
	return Ratio{Num: math.OneInt(), Den: math.OneInt()}
}

func (r Ratio) Validate() error {
	if r.Num.IsNil() || r.Den.IsNil() {
		return fmt.Errorf("ratio is uninitialized")
	}
	if !r.Den.IsPositive() {
		return fmt.Errorf("ratio denominator must be positive, got %s", r.Den)
	}
	if r.Num.IsNegative() {
		return fmt.Errorf("ratio numerator must be non-negative, got %s", r.Num)
	}
	return nil
}

func (r Ratio) String() string {
	return fmt.Sprintf("%s/%s", r.Num, r.Den)
}

func (r Ratio) IsZero() bool {
	return r.Num.IsZero()
}

// LT reports r < o.
func (r Ratio) LT(o Ratio) bool {
	return r.Num.Mul(o.Den).LT(o.Num.Mul(r.Den))
}

// GTE reports r >= o.
func (r Ratio) GTE(o Ratio) bool {
	return !r.LT(o)
}

// Mul returns r*o without reduction.
func (r Ratio) Mul(o Ratio) Ratio {
	return Ratio{Num: r.Num.Mul(o.Num), Den: r.Den.Mul(o.Den)}
}

// Complement returns 1 - r. Requires r <= 1.
func (r Ratio) Complement() Ratio {
	if r.Num.GT(r.Den) {
		panic(fmt.Sprintf("invariant violation: complement of ratio %s above one", r))
	}
	return Ratio{Num: r.Den.Sub(r.Num), Den: r.Den}
}

// Grow returns 1 + r.
func (r Ratio) Grow() Ratio {
	return Ratio{Num: r.Den.Add(r.Num), Den: r.Den}
}

// MulIntFloor returns floor(x * r).
func (r Ratio) MulIntFloor(x math.Int) math.Int {
	return x.Mul(r.Num).Quo(r.Den)
}

// MulIntCeil returns ceil(x * r).
func (r Ratio) MulIntCeil(x math.Int) math.Int {
	return ceilDiv(x.Mul(r.Num), r.Den)
}

// PowFloor returns r^n at powPrecision, truncating at every step. n must be
// non-negative.
func (r Ratio) PowFloor(n int64) Ratio {
	return r.pow(n, false)
}

// PowCeil returns r^n at powPrecision, rounding up at every step. n must be
// non-negative.
func (r Ratio) PowCeil(n int64) Ratio {
	return r.pow(n, true)
}

// pow is exponentiation by squaring over a fixed-point representation scaled
// by powPrecision, with the rounding direction applied at every
// multiplication.
func (r Ratio) pow(n int64, up bool) Ratio {
	if n < 0 {
		panic(fmt.Sprintf("invariant violation: negative ratio exponent %d", n))
	}

	round := func(num, den math.Int) math.Int {
		if up {
			return ceilDiv(num, den)
		}
		return num.Quo(den)
	}

	// scale the base once
	base := round(r.Num.Mul(powPrecision), r.Den)
	acc := powPrecision // 1.0

	for n > 0 {
		if n&1 == 1 {
			acc = round(acc.Mul(base), powPrecision)
		}
		base = round(base.Mul(base), powPrecision)
		n >>= 1
	}

	return Ratio{Num: acc, Den: powPrecision}
}

// ceilDiv returns ceil(a/b) for non-negative a and positive b.
func ceilDiv(a, b math.Int) math.Int {
	q := a.Quo(b)
	if !a.Mod(b).IsZero() {
		q = q.Add(math.OneInt())
	}
	return q
}
