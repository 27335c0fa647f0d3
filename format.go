// Copyright 2020 Aleksandr Demakin. All rights reserved.

package binfloat

import (
	"fmt"
	"strings"

	"github.com/avdva/binfloat/internal/bitutil"
)

// Format is an IEEE-754 binary interchange format.
type Format int

const (
	// Half is the 16-bit binary16 format.
	Half Format = iota + 1
	// Single is the 32-bit binary32 format.
	Single
	// Double is the 64-bit binary64 format.
	Double
)

// layout holds the parameters of a format, all derived from its storage
// width and exponent field width.
type layout struct {
	name     string
	bits     int
	expBits  int
	mantBits int

	bias      int
	minNormal int // the smallest exponent of a normal number
	minExp    int // the smallest exponent of a subnormal number
	maxExp    int

	signBit   uint64
	expMask   uint64 // all-ones exponent field, unshifted
	mantMask  uint64
	fracShift int    // how far the mantissa field is shifted into Value.Frac
	lostMask  uint64 // Value.Frac bits that do not fit the mantissa field
}

func newLayout(name string, bits, expBits int) layout {
	l := layout{
		name:     name,
		bits:     bits,
		expBits:  expBits,
		mantBits: bits - 1 - expBits,
		bias:     1<<(expBits-1) - 1,
	}
	l.minNormal = 1 - l.bias
	l.minExp = l.minNormal - l.mantBits
	l.maxExp = l.bias
	l.signBit = 1 << uint(bits-1)
	l.expMask = bitutil.LowMask(expBits)
	l.mantMask = bitutil.LowMask(l.mantBits)
	l.fracShift = bitutil.WordBits - 1 - l.mantBits
	l.lostMask = bitutil.LowMask(l.fracShift)
	return l
}

var layouts = [...]layout{
	Half:   newLayout("half", 16, 5),
	Single: newLayout("single", 32, 8),
	Double: newLayout("double", 64, 11),
}

var formatNames = map[string]Format{
	"half":    Half,
	"float16": Half,
	"16":      Half,
	"single":  Single,
	"float32": Single,
	"32":      Single,
	"double":  Double,
	"float64": Double,
	"64":      Double,
}

// ParseFormat returns a format for its name.
// Accepted names are half, single, double, float16, float32, float64, 16, 32 and 64.
func ParseFormat(s string) (Format, error) {
	if f, found := formatNames[strings.ToLower(strings.TrimSpace(s))]; found {
		return f, nil
	}
	return 0, fmt.Errorf("unknown format %q", s)
}

// Valid returns true, if f is one of Half, Single, or Double.
func (f Format) Valid() bool {
	return f >= Half && f <= Double
}

func (f Format) layout() *layout {
	if !f.Valid() {
		panic(fmt.Sprintf("binfloat: unknown format %d", int(f)))
	}
	return &layouts[f]
}

// Bits returns the storage width of f in bits.
func (f Format) Bits() int {
	return f.layout().bits
}

// Bytes returns the storage width of f in bytes.
func (f Format) Bytes() int {
	return f.layout().bits / 8
}

// MantBits returns the width of the stored mantissa field.
func (f Format) MantBits() int {
	return f.layout().mantBits
}

// Bias returns the exponent bias.
func (f Format) Bias() int {
	return f.layout().bias
}

// ExpRange returns the smallest subnormal exponent, the smallest normal exponent,
// and the largest exponent representable by f.
func (f Format) ExpRange() (minExp, minNormal, maxExp int) {
	l := f.layout()
	return l.minExp, l.minNormal, l.maxExp
}

// String returns the name of the format.
func (f Format) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return layouts[f].name
}

// MarshalText marshals f as its name.
func (f Format) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("unknown format %d", int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText accepts any name ParseFormat does.
func (f *Format) UnmarshalText(data []byte) error {
	parsed, err := ParseFormat(string(data))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
