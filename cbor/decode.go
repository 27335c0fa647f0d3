// Copyright 2020 Aleksandr Demakin. All rights reserved.

package cbor

import (
	"fmt"

	"github.com/avdva/binfloat"
	"github.com/avdva/binfloat/internal/bitutil"
)

// Item is a decoded CBOR head.
type Item struct {
	Major Major
	Info  byte
	// Value is the argument of the head. For floats, it is the raw bit pattern.
	Value uint64
	// Float is set for floats of any width.
	Float float64
	// Indefinite is set for info 31: an indefinite-length item, or a break for Simple.
	Indefinite bool
}

// IsFloat returns true, if the item is a half, single, or double float.
func (it Item) IsFloat() bool {
	return it.Major == Simple && it.Info >= info2Bytes && it.Info <= info8Bytes
}

// IsBreak returns true for the 'break' stop code.
func (it Item) IsBreak() bool {
	return it.Major == Simple && it.Indefinite
}

// FloatFormat returns the width a float was encoded with.
func (it Item) FloatFormat() (binfloat.Format, bool) {
	if !it.IsFloat() {
		return 0, false
	}
	return formatForLen(1 << (it.Info - info1Byte))
}

func formatForLen(n int) (binfloat.Format, bool) {
	switch n {
	case 2:
		return binfloat.Half, true
	case 4:
		return binfloat.Single, true
	case 8:
		return binfloat.Double, true
	}
	return 0, false
}

// Decode decodes a head at data[pos:]. It returns the item and the position right after it.
// Halfs and singles are widened to float64 exactly.
func Decode(data []byte, pos int) (Item, int, error) {
	if pos < 0 || pos >= len(data) {
		return Item{}, pos, ErrNoInput
	}
	b := data[pos]
	it := Item{Major: Major(b & majorMask), Info: b & infoMask}
	var n int
	switch {
	case it.Info < info1Byte:
		it.Value = uint64(it.Info)
		return it, pos + 1, nil
	case it.Info <= info8Bytes:
		n = 1 << (it.Info - info1Byte)
	case it.Info == infoIndef:
		it.Indefinite = true
		return it, pos + 1, nil
	default:
		return Item{}, pos, fmt.Errorf("%w %d at pos %d", ErrInvalidInfo, it.Info, pos)
	}
	if len(data)-pos-1 < n {
		return Item{}, pos, fmt.Errorf("%w: need %d bytes at pos %d", ErrShortInput, n, pos+1)
	}
	it.Value = bitutil.BigEndian(data[pos+1 : pos+1+n])
	if f, isFloat := formatForLen(n); isFloat && it.Major == Simple {
		var err error
		if it.Float, err = widen(f, it.Value); err != nil {
			return Item{}, pos, err
		}
	}
	return it, pos + 1 + n, nil
}

// UnpackFloat converts a big-endian half, single, or double to a float64.
// The width is taken from the length of b.
func UnpackFloat(b []byte) (float64, error) {
	f, found := formatForLen(len(b))
	if !found {
		return 0, fmt.Errorf("%w: %d bytes", ErrFloatWidth, len(b))
	}
	return widen(f, bitutil.BigEndian(b))
}

func widen(f binfloat.Format, bits uint64) (float64, error) {
	result, err := binfloat.Decompose(f, bits).Float64()
	if err != nil {
		return 0, fmt.Errorf("widening %s %#x: %w", f, bits, err)
	}
	return result, nil
}
