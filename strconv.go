// Copyright 2020 Aleksandr Demakin. All rights reserved.

package binfloat

import (
	"fmt"
	"math/big"
	"math/bits"

	"github.com/shopspring/decimal"

	"github.com/avdva/binfloat/internal/bitutil"
)

var bigFive = big.NewInt(5)

// Decimal returns the exact decimal representation of a finite value.
// Every binary floating-point number has a finite decimal expansion, so no digits are lost.
// Returns an error for infinities and NaNs. The sign of zero is not preserved.
func (v Value) Decimal() (decimal.Decimal, error) {
	if !v.IsFinite() {
		return decimal.Zero, errNotFinite
	}
	if v.Frac == 0 {
		return decimal.Zero, nil
	}
	tz := bits.TrailingZeros64(v.Frac)
	coef := new(big.Int).SetUint64(v.Frac >> uint(tz))
	// v = coef * 2^pow2
	pow2 := v.Exp - (bitutil.WordBits - 1) + tz
	var d decimal.Decimal
	if pow2 >= 0 {
		d = decimal.NewFromBigInt(coef.Lsh(coef, uint(pow2)), 0)
	} else {
		// coef * 2^-k = coef * 5^k * 10^-k
		k := bitutil.AbsInt(pow2)
		coef.Mul(coef, new(big.Int).Exp(bigFive, big.NewInt(int64(k)), nil))
		d = decimal.NewFromBigInt(coef, int32(-k))
	}
	if v.Neg {
		d = d.Neg()
	}
	return d, nil
}

// String returns the exact decimal representation of v,
// or one of "NaN", "+Inf", "-Inf".
func (v Value) String() string {
	switch {
	case v.NaN:
		return "NaN"
	case v.Inf:
		if v.Neg {
			return "-Inf"
		}
		return "+Inf"
	case v.IsZero():
		if v.Neg {
			return "-0"
		}
		return "0"
	}
	d, _ := v.Decimal()
	return d.String()
}

// GoString returns debug string representation.
func (v Value) GoString() string {
	return v.String() + fmt.Sprintf(" {neg: %v, exp: %d, frac: %#016x, inf: %v, nan: %v}", v.Neg, v.Exp, v.Frac, v.Inf, v.NaN)
}
