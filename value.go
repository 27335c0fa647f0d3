// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Package binfloat converts between IEEE-754 half (binary16), single (binary32)
// and double (binary64) encodings without losing information.
// A bit pattern is first decomposed into a Value, and then the Value is recomposed
// into the target format. Recomposition never rounds, never flushes to zero and never
// overflows to infinity: if the value does not fit the target exactly, an error is returned.
package binfloat

import (
	"errors"
	"math"

	"github.com/avdva/binfloat/internal/bitutil"
)

var (
	// ErrDomain is returned when the target mantissa is too narrow to hold the value
	// exactly, or when a NaN payload would be truncated.
	ErrDomain = errors.New("value cannot be represented exactly")
	// ErrRange is returned when the exponent does not fit the target format,
	// subnormals included.
	ErrRange = errors.New("exponent out of range")

	errNotFinite = errors.New("value is not finite")
)

// Value is a floating-point number in a format-independent form.
//
//	63 62                                                            0
//	__|______________________________________________________________
//	1 ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff
//
// For finite non-zero values Frac holds the leading one bit at bit 63, followed by the
// fraction bits, so that the number is (-1)^Neg * Frac/2^63 * 2^Exp.
// Zero has Exp == 0 and Frac == 0. Infinities have Inf set and zero Exp and Frac.
// NaNs have NaN set, zero Exp, and the payload in the upper bits of Frac (below bit 63).
type Value struct {
	Neg  bool
	Exp  int
	Frac uint64
	Inf  bool
	NaN  bool
}

// Inf returns an infinity with the given sign.
func Inf(neg bool) Value {
	return Value{Neg: neg, Inf: true}
}

// QuietNaN returns a quiet NaN with the given sign.
// The payload is the single most significant mantissa bit, so the value fits any format.
func QuietNaN(neg bool) Value {
	return Value{Neg: neg, NaN: true, Frac: bitutil.HighBit >> 1}
}

// Decompose returns a value for the 'bits' pattern of the format f.
// Only the f.Bits() least significant bits are used.
// Decompose panics if f is not a valid format.
func Decompose(f Format, bits uint64) Value {
	l := f.layout()
	mant := bits & l.mantMask
	biased := bits >> uint(l.mantBits) & l.expMask
	v := Value{
		Neg:  bits&l.signBit != 0,
		Frac: mant << uint(l.fracShift),
	}
	switch biased {
	case l.expMask: // +-inf or NaN, the payload stays in Frac.
		if mant == 0 {
			v.Inf = true
		} else {
			v.NaN = true
		}
	case 0:
		if mant != 0 { // subnormal
			v.Exp = l.minNormal
			v.normalize()
		}
	default:
		v.Exp = int(biased) - l.bias
		v.Frac |= bitutil.HighBit
	}
	return v
}

// FromHalf returns a value for a binary16 bit pattern.
func FromHalf(h uint16) Value {
	return Decompose(Half, uint64(h))
}

// FromSingle returns a value for a binary32 bit pattern.
func FromSingle(s uint32) Value {
	return Decompose(Single, uint64(s))
}

// FromDouble returns a value for a binary64 bit pattern.
func FromDouble(d uint64) Value {
	return Decompose(Double, d)
}

// FromFloat32 returns a value for a float32.
func FromFloat32(f float32) Value {
	return FromSingle(math.Float32bits(f))
}

// FromFloat64 returns a value for a float64.
func FromFloat64(f float64) Value {
	return FromDouble(math.Float64bits(f))
}

// Recompose returns the bit pattern of v in the format f.
// It returns ErrRange, if the exponent of v is out of the format's range,
// and ErrDomain, if some significant bits of v do not fit the format's mantissa.
// In case of an error the returned bits are 0.
// Recompose panics if f is not a valid format.
func Recompose(f Format, v Value) (uint64, error) {
	l := f.layout()
	var sign uint64
	if v.Neg {
		sign = l.signBit
	}
	special := l.expMask << uint(l.mantBits)
	switch {
	case v.Inf:
		return sign | special, nil
	case v.NaN:
		payload := v.Frac >> uint(l.fracShift) & l.mantMask
		// a zero payload would turn the NaN into an infinity.
		if v.Frac&l.lostMask != 0 || payload == 0 {
			return 0, ErrDomain
		}
		return sign | special | payload, nil
	case v.Exp < l.minExp || v.Exp > l.maxExp:
		return 0, ErrRange
	case v.Exp == 0 && v.Frac == 0:
		return sign, nil
	}
	var biased uint64
	if v.Exp < l.minNormal {
		v.denormalize(l.minNormal)
	} else {
		biased = uint64(v.Exp+l.bias) & l.expMask
	}
	if v.Frac&l.lostMask != 0 {
		return 0, ErrDomain
	}
	return sign | biased<<uint(l.mantBits) | v.Frac>>uint(l.fracShift)&l.mantMask, nil
}

// Half returns the binary16 bit pattern of v. See Recompose for possible errors.
func (v Value) Half() (uint16, error) {
	bits, err := Recompose(Half, v)
	return uint16(bits), err
}

// Single returns the binary32 bit pattern of v. See Recompose for possible errors.
func (v Value) Single() (uint32, error) {
	bits, err := Recompose(Single, v)
	return uint32(bits), err
}

// Double returns the binary64 bit pattern of v. See Recompose for possible errors.
func (v Value) Double() (uint64, error) {
	return Recompose(Double, v)
}

// Float32 returns v as a float32.
func (v Value) Float32() (float32, error) {
	bits, err := v.Single()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// Float64 returns v as a float64.
func (v Value) Float64() (float64, error) {
	bits, err := v.Double()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// Shortest returns the narrowest format among Half, Single and Double that holds v exactly,
// and the bit pattern of v in that format.
// The error is only returned if v doesn't fit even a Double, which never happens
// for values obtained from Decompose.
func (v Value) Shortest() (Format, uint64, error) {
	var err error
	for _, f := range [...]Format{Half, Single, Double} {
		var bits uint64
		if bits, err = Recompose(f, v); err == nil {
			return f, bits, nil
		}
	}
	return Double, 0, err
}

// IsZero returns true for +0 and -0.
func (v Value) IsZero() bool {
	return v.IsFinite() && v.Exp == 0 && v.Frac == 0
}

// IsFinite returns true, if v is neither an infinity nor a NaN.
func (v Value) IsFinite() bool {
	return !v.Inf && !v.NaN
}

// Sign returns -1 if v < 0, 0 if v is zero or NaN, 1 if v > 0.
func (v Value) Sign() int {
	if v.NaN || v.IsZero() {
		return 0
	}
	if v.Neg {
		return -1
	}
	return 1
}

// normalize shifts Frac left until its leading bit is at bit 63.
func (v *Value) normalize() {
	for i := 0; i < bitutil.WordBits && v.Frac&bitutil.HighBit == 0; i++ {
		v.Frac <<= 1
		v.Exp--
	}
}

// denormalize shifts Frac right until Exp reaches 'exp'.
// At least one significant bit must be left, otherwise v was malformed.
func (v *Value) denormalize(exp int) {
	for n := exp - v.Exp; n > 0; n-- {
		v.Frac >>= 1
		v.Exp++
	}
	if v.Frac == 0 {
		panic("binfloat: denormalized fraction is zero")
	}
}
