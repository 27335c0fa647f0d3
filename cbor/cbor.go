// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Package cbor encodes and decodes single CBOR (RFC 8949) data item heads.
// Floating-point values are written in the narrowest width that holds them exactly,
// or in a requested width, using package binfloat for the conversions.
// Container contents (strings, arrays, maps) are left to the caller.
package cbor

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/avdva/binfloat"
	"github.com/avdva/binfloat/internal/bitutil"
)

// Major is a CBOR major type, stored in the upper 3 bits of the initial byte.
type Major byte

const (
	Uint   Major = 0x00
	Nint   Major = 0x20
	Bytes  Major = 0x40
	Text   Major = 0x60
	Array  Major = 0x80
	Map    Major = 0xa0
	Tag    Major = 0xc0
	Simple Major = 0xe0
)

const (
	majorMask = 0xe0
	infoMask  = 0x1f

	info1Byte  = 24
	info2Bytes = 25
	info4Bytes = 26
	info8Bytes = 27
	infoIndef  = 31

	// Break terminates an indefinite-length item.
	Break = byte(Simple) | infoIndef
)

var (
	// ErrNoInput is returned when there is no data at the requested position.
	ErrNoInput = errors.New("no input")
	// ErrShortInput is returned when the argument of a head is truncated.
	ErrShortInput = errors.New("no more input")
	// ErrInvalidInfo is returned for the reserved additional information values 28-30.
	ErrInvalidInfo = errors.New("invalid additional information")
	// ErrFloatWidth is returned for floating-point data not 2, 4, or 8 bytes long.
	ErrFloatWidth = errors.New("invalid float width")
)

var majorNames = map[Major]string{
	Uint:   "uint",
	Nint:   "nint",
	Bytes:  "bytes",
	Text:   "text",
	Array:  "array",
	Map:    "map",
	Tag:    "tag",
	Simple: "simple",
}

func (m Major) String() string {
	if name, found := majorNames[m]; found {
		return name
	}
	return fmt.Sprintf("Major(%#02x)", byte(m))
}

// infoForLen returns additional information for an argument of n bytes, where n is 1, 2, 4, or 8.
func infoForLen(n int) byte {
	return info1Byte + byte(bits.TrailingZeros(uint(n)))
}

// AppendHead appends the shortest head of major type m with argument v to dst.
// For Simple, v must not exceed 255, floats are written with the AppendFloat* functions.
func AppendHead(dst []byte, m Major, v uint64) []byte {
	if m&infoMask != 0 {
		panic(fmt.Sprintf("cbor: invalid major type %#02x", byte(m)))
	}
	if m == Simple && v > 0xff {
		panic(fmt.Sprintf("cbor: simple value %d out of range", v))
	}
	if v < info1Byte {
		return append(dst, byte(m)|byte(v))
	}
	n := bitutil.ByteLen(v)
	return bitutil.AppendBigEndian(append(dst, byte(m)|infoForLen(n)), v, n)
}

// AppendIndefinite appends the head of an indefinite-length item.
// m must be one of Bytes, Text, Array, or Map.
func AppendIndefinite(dst []byte, m Major) []byte {
	switch m {
	case Bytes, Text, Array, Map:
		return append(dst, byte(m)|infoIndef)
	default:
		panic(fmt.Sprintf("cbor: %s cannot have indefinite length", m))
	}
}

// AppendBreak appends the 'break' stop code.
func AppendBreak(dst []byte) []byte {
	return append(dst, Break)
}

// AppendFloatBits appends a float with the raw bit pattern 'bits' of the format f.
// Any pattern, including infinities and NaN payloads, is written as is.
func AppendFloatBits(dst []byte, f binfloat.Format, bits uint64) []byte {
	n := f.Bytes()
	return bitutil.AppendBigEndian(append(dst, byte(Simple)|infoForLen(n)), bits, n)
}

// AppendValue appends v in the narrowest format that holds it exactly.
func AppendValue(dst []byte, v binfloat.Value) ([]byte, error) {
	f, bits, err := v.Shortest()
	if err != nil {
		return dst, err
	}
	return AppendFloatBits(dst, f, bits), nil
}

// AppendFloat appends f as a half, single, or double, whichever is the narrowest
// that holds f exactly.
func AppendFloat(dst []byte, f float64) []byte {
	dst, err := AppendValue(dst, binfloat.FromFloat64(f))
	if err != nil { // double always succeeds
		panic(err)
	}
	return dst
}

// AppendFloat32 is like AppendFloat for float32 numbers.
func AppendFloat32(dst []byte, f float32) []byte {
	dst, err := AppendValue(dst, binfloat.FromFloat32(f))
	if err != nil {
		panic(err)
	}
	return dst
}

// AppendFloatWidth appends f in the format fm.
// Returns an error wrapping binfloat.ErrDomain or binfloat.ErrRange, if f cannot be
// represented exactly. In that case dst is returned unchanged.
func AppendFloatWidth(dst []byte, fm binfloat.Format, f float64) ([]byte, error) {
	bits, err := binfloat.Recompose(fm, binfloat.FromFloat64(f))
	if err != nil {
		return dst, fmt.Errorf("cannot convert %v to %s: %w", f, fm, err)
	}
	return AppendFloatBits(dst, fm, bits), nil
}
