// Copyright 2020 Aleksandr Demakin. All rights reserved.

package binfloat

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/avdva/binfloat/internal/bitutil"
)

const hb = bitutil.HighBit

func TestDecompose(t *testing.T) {
	a := assert.New(t)
	tests := []struct {
		f    Format
		bits uint64
		v    Value
	}{
		{Half, 0x0000, Value{}},
		{Half, 0x8000, Value{Neg: true}},
		{Half, 0x3c00, Value{Frac: hb}},
		{Half, 0xc000, Value{Neg: true, Exp: 1, Frac: hb}},
		{Half, 0x3e00, Value{Frac: hb | hb>>1}},
		{Half, 0x7bff, Value{Exp: 15, Frac: 0xffe0000000000000}},
		{Half, 0x0400, Value{Exp: -14, Frac: hb}},
		{Half, 0x0001, Value{Exp: -24, Frac: hb}},
		{Half, 0x03ff, Value{Exp: -15, Frac: 0xffc0000000000000}},
		{Half, 0x7c00, Value{Inf: true}},
		{Half, 0xfc00, Value{Neg: true, Inf: true}},
		{Half, 0x7e00, Value{NaN: true, Frac: 0x4000000000000000}},
		{Half, 0xfc01, Value{Neg: true, NaN: true, Frac: 1 << 53}},
		{Half, 0xffff3c00, Value{Frac: hb}},

		{Single, 0x3f800000, Value{Frac: hb}},
		{Single, 0x00000001, Value{Exp: -149, Frac: hb}},
		{Single, 0x00800000, Value{Exp: -126, Frac: hb}},
		{Single, 0x7f7fffff, Value{Exp: 127, Frac: 0xffffff0000000000}},
		{Single, 0x7f800000, Value{Inf: true}},
		{Single, 0x7fc00001, Value{NaN: true, Frac: 0x4000010000000000}},
		{Single, 0x80000000, Value{Neg: true}},

		{Double, 0x3ff0000000000000, Value{Frac: hb}},
		{Double, 0x3ff0000000000001, Value{Frac: hb | 1<<11}},
		{Double, 0x0000000000000001, Value{Exp: -1074, Frac: hb}},
		{Double, 0x000fffffffffffff, Value{Exp: -1023, Frac: 0xfffffffffffff000}},
		{Double, 0x7fefffffffffffff, Value{Exp: 1023, Frac: math.MaxUint64 &^ 0x7ff}},
		{Double, 0xfff0000000000000, Value{Neg: true, Inf: true}},
		{Double, 0x7ff0000000000001, Value{NaN: true, Frac: 1 << 11}},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			v := Decompose(test.f, test.bits)
			a.Empty(cmp.Diff(test.v, v), "%s %#x", test.f, test.bits)
		})
	}
}

func TestRecompose(t *testing.T) {
	a := assert.New(t)
	tests := []struct {
		v    Value
		f    Format
		bits uint64
		err  error
	}{
		{Value{}, Half, 0, nil},
		{Value{Neg: true}, Single, 0x80000000, nil},
		{FromFloat64(1), Half, 0x3c00, nil},
		{FromFloat64(-2), Half, 0xc000, nil},
		{FromFloat64(65504), Half, 0x7bff, nil},
		{FromFloat64(65520), Half, 0, ErrDomain},
		{FromFloat64(1 << 15), Half, 0x7800, nil},
		{FromFloat64(1 << 16), Half, 0, ErrRange},
		{FromFloat64(1 + 1.0/(1<<10)), Half, 0x3c01, nil},
		{FromFloat64(1 + 1.0/(1<<11)), Half, 0, ErrDomain},
		{FromFloat64(1 + 1.0/(1<<11)), Single, 0x3f801000, nil},
		{FromFloat64(math.Ldexp(1, -14)), Half, 0x0400, nil},
		{FromFloat64(math.Ldexp(1, -24)), Half, 0x0001, nil},
		{FromFloat64(math.Ldexp(3, -24)), Half, 0x0003, nil},
		{FromFloat64(math.Ldexp(3, -25)), Half, 0, ErrDomain},
		{FromFloat64(math.Ldexp(1, -25)), Half, 0, ErrRange},
		{FromFloat64(math.Ldexp(1, -149)), Single, 0x00000001, nil},
		{FromFloat64(math.Ldexp(1, -150)), Single, 0, ErrRange},
		{FromFloat64(math.MaxFloat32), Single, 0x7f7fffff, nil},
		{FromFloat64(math.MaxFloat64), Single, 0, ErrRange},
		{FromFloat64(math.MaxFloat64), Double, 0x7fefffffffffffff, nil},
		{FromFloat64(math.SmallestNonzeroFloat64), Double, 1, nil},
		{FromFloat64(0.1), Single, 0, ErrDomain},

		{Inf(false), Half, 0x7c00, nil},
		{Inf(true), Half, 0xfc00, nil},
		{Inf(true), Single, 0xff800000, nil},
		{Inf(false), Double, 0x7ff0000000000000, nil},
		{QuietNaN(false), Half, 0x7e00, nil},
		{QuietNaN(true), Single, 0xffc00000, nil},
		{QuietNaN(false), Double, 0x7ff8000000000000, nil},
		{Value{NaN: true}, Double, 0, ErrDomain},
		{FromSingle(0x7fc00001), Single, 0x7fc00001, nil},
		{FromSingle(0x7fc00001), Double, 0x7ff8000020000000, nil},
		{FromSingle(0x7fc00001), Half, 0, ErrDomain},
		{FromSingle(0x7fe00000), Half, 0x7f00, nil},
		{FromDouble(0x7ff0000000000001), Single, 0, ErrDomain},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			bits, err := Recompose(test.f, test.v)
			if test.err == nil {
				if a.NoError(err) {
					a.Equal(test.bits, bits, "%#v -> %s", test.v, test.f)
				}
			} else {
				a.ErrorIs(err, test.err, "%#v -> %s", test.v, test.f)
				a.Zero(bits)
			}
		})
	}
}

func TestRecomposeMalformed(t *testing.T) {
	a := assert.New(t)
	a.Panics(func() {
		_, _ = Recompose(Half, Value{Exp: -20})
	})
	a.Panics(func() {
		_, _ = Recompose(Format(0), Value{})
	})
	a.Panics(func() {
		Decompose(Format(42), 0)
	})
}

func TestRecomposeDoesNotModify(t *testing.T) {
	a := assert.New(t)
	v := FromHalf(0x0001)
	orig := v
	_, err := Recompose(Half, v)
	a.NoError(err)
	a.Equal(orig, v)
}

func TestDoubleRoundTrip(t *testing.T) {
	a := assert.New(t)
	edges := []uint64{
		0, 1 << 63, 1, 0x000fffffffffffff, 0x0010000000000000, 0x3ff0000000000000,
		0x7fefffffffffffff, 0x7ff0000000000000, 0xfff0000000000000, 0x7ff0000000000001,
		0x7ff8000000000000, 0xffffffffffffffff, 0x8000000000000001,
	}
	for _, x := range edges {
		bits, err := Recompose(Double, FromDouble(x))
		if a.NoError(err) {
			a.Equal(x, bits)
		}
	}
	rnd := rand.New(rand.NewSource(time.Now().Unix()))
	for i := 0; i < 1000000; i++ {
		x := rnd.Uint64()
		bits, err := FromDouble(x).Double()
		if !a.NoError(err) || !a.Equal(x, bits) {
			return
		}
	}
}

func TestHalfRoundTrip(t *testing.T) {
	a := assert.New(t)
	for i := 0; i <= math.MaxUint16; i++ {
		h := uint16(i)
		bits, err := FromHalf(h).Half()
		if !a.NoError(err, "%#04x", h) || !a.Equal(h, bits) {
			return
		}
	}
}

func TestSingleRoundTrip(t *testing.T) {
	a := assert.New(t)
	rnd := rand.New(rand.NewSource(time.Now().Unix()))
	for i := 0; i < 1000000; i++ {
		x := rnd.Uint32()
		bits, err := FromSingle(x).Single()
		if !a.NoError(err) || !a.Equal(x, bits) {
			return
		}
	}
}

func TestHalfWidening(t *testing.T) {
	a := assert.New(t)
	for i := 0; i <= math.MaxUint16; i++ {
		h := uint16(i)
		v := FromHalf(h)
		s, err := v.Single()
		if !a.NoError(err, "%#04x", h) {
			return
		}
		d, err := v.Double()
		if !a.NoError(err, "%#04x", h) {
			return
		}
		if v.NaN {
			sign, payload := uint32(h&0x8000)<<16, uint32(h&0x3ff)<<13
			a.Equal(sign|0x7f800000|payload, s)
			a.Equal(uint64(sign)<<32|0x7ff0000000000000|uint64(payload)<<29, d)
			continue
		}
		f := halfToFloat32(h)
		if !a.Equal(math.Float32bits(f), s, "%#04x", h) {
			return
		}
		a.Equal(math.Float64bits(float64(f)), d, "%#04x", h)
		// widening then narrowing gets the original pattern back.
		back, err := FromSingle(s).Half()
		a.NoError(err)
		a.Equal(h, back)
		back, err = FromDouble(d).Half()
		a.NoError(err)
		a.Equal(h, back)
	}
}

func TestSignedZero(t *testing.T) {
	a := assert.New(t)
	pos, neg := FromFloat64(0), FromFloat64(math.Copysign(0, -1))
	a.False(pos.Neg)
	a.True(neg.Neg)
	neg.Neg = false
	a.Equal(pos, neg)
	neg.Neg = true

	for _, f := range []Format{Half, Single, Double} {
		bits, err := Recompose(f, pos)
		a.NoError(err)
		a.Zero(bits)
		bits, err = Recompose(f, neg)
		a.NoError(err)
		a.Equal(uint64(1)<<uint(f.Bits()-1), bits, f.String())
	}
	a.True(pos.IsZero())
	a.True(neg.IsZero())
	a.Equal(0, neg.Sign())
}

func TestNaNPayload(t *testing.T) {
	a := assert.New(t)
	v := FromSingle(0x7f800123)
	a.True(v.NaN)
	a.False(v.Inf)
	s, err := v.Single()
	a.NoError(err)
	a.Equal(uint32(0x7f800123), s)
	_, err = v.Half()
	a.ErrorIs(err, ErrDomain)
	d, err := v.Double()
	a.NoError(err)
	s, err = FromDouble(d).Single()
	a.NoError(err)
	a.Equal(uint32(0x7f800123), s)
}

func TestSmallestSubnormal(t *testing.T) {
	a := assert.New(t)
	v := FromHalf(0x0001)
	a.Equal(Value{Exp: -24, Frac: hb}, v)
	h, err := v.Half()
	a.NoError(err)
	a.Equal(uint16(0x0001), h)
	f, err := v.Float32()
	a.NoError(err)
	a.Equal(float32(math.Ldexp(1, -24)), f)
	d, err := v.Float64()
	a.NoError(err)
	a.Equal(math.Ldexp(1, -24), d)
	a.Equal("0.000000059604644775390625", v.String())
}

func TestShortest(t *testing.T) {
	a := assert.New(t)
	tests := []struct {
		v    Value
		f    Format
		bits uint64
	}{
		{FromFloat64(0), Half, 0},
		{FromFloat64(1.5), Half, 0x3e00},
		{FromFloat64(100000), Single, 0x47c35000},
		{FromFloat64(1.1), Double, 0x3ff199999999999a},
		{FromFloat64(math.Ldexp(1, -30)), Single, 0x30800000},
		{FromFloat64(math.Ldexp(1, -140)), Single, 0x00000200},
		{FromFloat64(math.Inf(-1)), Half, 0xfc00},
		{FromDouble(0x7ff8000000000000), Half, 0x7e00},
		{FromFloat64(math.NaN()), Double, 0x7ff8000000000001},
		{FromSingle(0x7fc00001), Single, 0x7fc00001},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			f, bits, err := test.v.Shortest()
			if a.NoError(err) {
				a.Equal(test.f, f)
				a.Equal(test.bits, bits)
			}
		})
	}
	_, _, err := Value{NaN: true}.Shortest()
	a.ErrorIs(err, ErrDomain)
}

func TestFloat64(t *testing.T) {
	a := assert.New(t)
	for _, f := range []float64{0, 1, -1, math.Pi, math.MaxFloat64, math.SmallestNonzeroFloat64, math.Inf(1)} {
		res, err := FromFloat64(f).Float64()
		a.NoError(err)
		a.Equal(f, res)
	}
	res, err := FromFloat64(math.NaN()).Float64()
	a.NoError(err)
	a.True(math.IsNaN(res))

	_, err = FromFloat64(math.Pi).Float32()
	a.ErrorIs(err, ErrDomain)
	f32, err := FromFloat64(0.5).Float32()
	a.NoError(err)
	a.Equal(float32(0.5), f32)
}

func TestSign(t *testing.T) {
	a := assert.New(t)
	a.Equal(1, FromFloat64(2).Sign())
	a.Equal(-1, FromFloat64(-2).Sign())
	a.Equal(-1, Inf(true).Sign())
	a.Equal(0, QuietNaN(true).Sign())
	a.Equal(0, Value{}.Sign())
	a.False(Inf(false).IsFinite())
	a.False(QuietNaN(false).IsFinite())
	a.True(FromFloat32(3).IsFinite())
}

// halfToFloat32 converts a non-NaN binary16 pattern with float64 arithmetic.
func halfToFloat32(h uint16) float32 {
	sign := 1.0
	if h&0x8000 != 0 {
		sign = -1
	}
	exp, mant := int(h>>10&0x1f), float64(h&0x3ff)
	switch exp {
	case 0x1f:
		return float32(math.Inf(int(sign)))
	case 0:
		return float32(sign * math.Ldexp(mant, -24))
	}
	return float32(sign * math.Ldexp(1024+mant, exp-25))
}

func BenchmarkDecompose(b *testing.B) {
	rnd := rand.New(rand.NewSource(time.Now().Unix()))
	var dummy int
	for i := 0; i < b.N; i++ {
		dummy += FromDouble(rnd.Uint64()).Exp
	}
	// this metric is just to prevent unwanted optimisations in calculations of `dummy.`
	b.ReportMetric(float64(dummy), "dummy_metric")
}

func BenchmarkShortest(b *testing.B) {
	rnd := rand.New(rand.NewSource(time.Now().Unix()))
	values := make([]Value, 1024)
	for i := range values {
		values[i] = FromFloat32(float32(rnd.Int31n(1 << 20)))
	}
	var dummy uint64
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, bits, _ := values[i%len(values)].Shortest()
		dummy += bits
	}
	b.ReportMetric(float64(dummy), "dummy_metric")
}
