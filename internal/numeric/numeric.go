// Package numeric holds the float-equality tolerance shared by constant
// folding (internal/ssa) and runtime evaluation (internal/bytecode,
// internal/vm), so the two stages can never disagree on whether two
// Floats compare equal.
package numeric

import (
	"math"
	"math/big"
)

// Epsilon is the IEEE-754 double machine epsilon: the distance from 1 to
// the next larger representable double (2^-52).
var Epsilon = math.Nextafter(1, 2) - 1

// FloatEqual reports whether a and b are equal within Epsilon.
func FloatEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < Epsilon
}

// BigFloatEqual is FloatEqual for the arbitrary-precision Float values
// bytecode.Value carries.
func BigFloatEqual(a, b *big.Float) bool {
	d := new(big.Float).Sub(a, b)
	d.Abs(d)
	return d.Cmp(big.NewFloat(Epsilon)) < 0
}
