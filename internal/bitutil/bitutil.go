// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Package bitutil contains bit manipulation helpers shared by binfloat packages.
package bitutil

import "unsafe"

// WordBits is the number of bits in a uint64 word.
const WordBits = int(8 * unsafe.Sizeof(uint64(0)))

// HighBit is the most significant bit of a uint64 word.
const HighBit = uint64(1) << (WordBits - 1)

// LowMask returns a mask with the n least significant bits set.
// n is clamped to [0, WordBits].
func LowMask(n int) uint64 {
	switch {
	case n <= 0:
		return 0
	case n >= WordBits:
		return ^uint64(0)
	}
	return 1<<uint(n) - 1
}

// ByteLen returns the minimal number of bytes among 1, 2, 4 and 8 needed to store 'value'.
func ByteLen(value uint64) int {
	switch {
	case value <= 0xff:
		return 1
	case value <= 0xffff:
		return 2
	case value <= 0xffffffff:
		return 4
	default:
		return 8
	}
}

// AppendBigEndian appends the n least significant bytes of v to dst, most significant first.
func AppendBigEndian(dst []byte, v uint64, n int) []byte {
	for shift := (n - 1) * 8; shift >= 0; shift -= 8 {
		dst = append(dst, byte(v>>uint(shift)))
	}
	return dst
}

// BigEndian reads len(b) bytes as an unsigned big-endian number.
// Only the last 8 bytes are significant for longer inputs.
func BigEndian(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

func AbsInt(val int) int {
	mask := val >> (unsafe.Sizeof(int(0))*8 - 1)
	return (val + mask) ^ mask
}
