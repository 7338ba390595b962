// Package rational provides the exact rational arithmetic the rest of the
// pipeline uses for every duration and absolute time. No arithmetic in this
// package uses float64; Float64 is only an explicit conversion for the edges.
package rational

import (
	"fmt"
	"math/big"
)

// Rat is an exact fraction of arbitrary-precision integers. The zero value
// is 0/1, a valid rational.
type Rat struct {
	v big.Rat
}

// Zero returns the rational 0.
func Zero() Rat { return Rat{} }

// NewInt returns the rational n/1.
func NewInt(n int64) Rat {
	var r Rat
	r.v.SetInt64(n)
	return r
}

// NewFrac returns the rational num/den. It panics if den is zero, the same
// contract big.Rat.SetFrac64 carries.
func NewFrac(num, den int64) Rat {
	var r Rat
	r.v.SetFrac64(num, den)
	return r
}

func fromBig(v *big.Rat) Rat {
	var r Rat
	r.v.Set(v)
	return r
}

// namedDurationBases maps the single-letter duration names of spec.md §3 to
// their value as a fraction of a whole note.
var namedDurationBases = map[byte]Rat{
	'w': NewFrac(1, 1),
	'h': NewFrac(1, 2),
	'q': NewFrac(1, 4),
	'e': NewFrac(1, 8),
	's': NewFrac(1, 16),
	't': NewFrac(1, 32),
	'x': NewFrac(1, 64),
}

// NamedDurationBase resolves one of w,h,q,e,s,t,x to its base value. The
// second return is false for any other letter.
func NamedDurationBase(name byte) (Rat, bool) {
	base, ok := namedDurationBases[name]
	return base, ok
}

// Dotted computes base·(2−2⁻ᵈᵒᵗˢ): each dot adds half of the previous
// increment, per spec.md §3.
func Dotted(base Rat, dots int) Rat {
	total := base
	term := base
	two := NewInt(2)
	for i := 0; i < dots; i++ {
		term = term.Quo(two)
		total = total.Add(term)
	}
	return total
}

func (a Rat) Add(b Rat) Rat { return fromBig(new(big.Rat).Add(&a.v, &b.v)) }
func (a Rat) Sub(b Rat) Rat { return fromBig(new(big.Rat).Sub(&a.v, &b.v)) }
func (a Rat) Mul(b Rat) Rat { return fromBig(new(big.Rat).Mul(&a.v, &b.v)) }
func (a Rat) Quo(b Rat) Rat { return fromBig(new(big.Rat).Quo(&a.v, &b.v)) }

// Cmp returns -1, 0 or +1 as a is less than, equal to, or greater than b.
func (a Rat) Cmp(b Rat) int { return a.v.Cmp(&b.v) }

func (a Rat) Equal(b Rat) bool  { return a.Cmp(b) == 0 }
func (a Rat) LessThan(b Rat) bool { return a.Cmp(b) < 0 }
func (a Rat) IsZero() bool     { return a.v.Sign() == 0 }
func (a Rat) IsNegative() bool { return a.v.Sign() < 0 }
func (a Rat) Sign() int        { return a.v.Sign() }

// Max returns the larger of a and b.
func Max(a, b Rat) Rat {
	if a.LessThan(b) {
		return b
	}
	return a
}

// Float64 returns an inexact float64 approximation; used only at the very
// edge of the system (logging, a backend's seconds conversion), never inside
// the CORE's own comparisons.
func (a Rat) Float64() float64 {
	f, _ := a.v.Float64()
	return f
}

func (a Rat) String() string {
	if a.v.IsInt() {
		return a.v.RatString()
	}
	return fmt.Sprintf("%s/%s", a.v.Num().String(), a.v.Denom().String())
}
