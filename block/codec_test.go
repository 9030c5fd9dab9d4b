package block

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zfpgo/zfp/bitstream"
)

func reversibleParamsInt32() Params {
	return Params{
		IsFloat: false,
		W:       32,
		MinBits: 0,
		MaxBits: 1 << 20,
		MaxPrec: 32,
		MinExp:  -(1 << 30),
	}
}

func reversibleParamsInt64() Params {
	return Params{
		IsFloat: false,
		W:       64,
		MinBits: 0,
		MaxBits: 1 << 20,
		MaxPrec: 64,
		MinExp:  -(1 << 30),
	}
}

func reversibleParamsFloat32() Params {
	return Params{
		IsFloat: true,
		Q:       30,
		EBits:   8,
		EBias:   127,
		W:       32,
		MinBits: 0,
		MaxBits: 1 << 20,
		MaxPrec: 32,
		MinExp:  -(1 << 30),
	}
}

func TestEncodeDecodeBlockInt32Reversible(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p := reversibleParamsInt32()

	for d := 1; d <= MaxDim; d++ {
		n := Size(d)
		raw := make([]int32, n)
		for i := range raw {
			raw[i] = int32(rng.Intn(2000) - 1000)
		}

		s, err := bitstream.New(64)
		require.NoError(t, err)

		EncodeBlock(s, raw, d, 0, p)
		s.Rewind()

		out, _, hasData := DecodeBlock[int32](s, d, p)
		require.True(t, hasData)
		require.Equal(t, raw, out, "dimension %d", d)

		s.Release()
	}
}

// TestEncodeDecodeBlockInt32ReversibleFullRange covers the top bit plane
// (W-1) that TestEncodeDecodeBlockInt32Reversible's [-1000,1000] values
// never touch: negabinary's (x+M)^M mapping sets bit 31 for roughly half
// of all 32-bit values, and values approaching math.MinInt32/MaxInt32
// only round-trip correctly if topPlane actually reaches W-1.
func TestEncodeDecodeBlockInt32ReversibleFullRange(t *testing.T) {
	p := reversibleParamsInt32()
	d := 2
	n := Size(d)

	raw := make([]int32, n)
	extremes := []int32{math.MinInt32, math.MinInt32 + 1, -1, 0, 1, math.MaxInt32 - 1, math.MaxInt32}
	for i := range raw {
		raw[i] = extremes[i%len(extremes)]
	}

	s, err := bitstream.New(64)
	require.NoError(t, err)
	defer s.Release()

	EncodeBlock(s, raw, d, 0, p)
	s.Rewind()

	out, _, hasData := DecodeBlock[int32](s, d, p)
	require.True(t, hasData)
	require.Equal(t, raw, out)
}

// TestEncodeDecodeBlockInt64ReversibleFullRange is the int64 counterpart,
// using magnitudes around 2^61 and beyond where int64's negabinary form
// first needs bit planes above what a narrower test would ever exercise.
func TestEncodeDecodeBlockInt64ReversibleFullRange(t *testing.T) {
	p := reversibleParamsInt64()
	d := 2
	n := Size(d)

	raw := make([]int64, n)
	extremes := []int64{math.MinInt64, math.MinInt64 + 1, -1, 0, 1, math.MaxInt64 - 1, math.MaxInt64}
	for i := range raw {
		raw[i] = extremes[i%len(extremes)]
	}

	s, err := bitstream.New(64)
	require.NoError(t, err)
	defer s.Release()

	EncodeBlock(s, raw, d, 0, p)
	s.Rewind()

	out, _, hasData := DecodeBlock[int64](s, d, p)
	require.True(t, hasData)
	require.Equal(t, raw, out)
}

// TestEncodeDecodeBlockInt32ReversibleMaxPrecAboveWidth uses
// scalar.MaxPrecBound (64), above int32's own width, the configuration
// stream.SetReversible actually produces: minPlane's floor-at-0 clamp is
// what keeps the bit-plane loop from running off the bottom of the
// coefficient's 32 real bits.
func TestEncodeDecodeBlockInt32ReversibleMaxPrecAboveWidth(t *testing.T) {
	p := reversibleParamsInt32()
	p.MaxPrec = 64
	require.Equal(t, 0, p.minPlane(0))

	d := 1
	n := Size(d)
	raw := make([]int32, n)
	for i := range raw {
		raw[i] = int32(i)*104729 - 1<<20
	}

	s, err := bitstream.New(64)
	require.NoError(t, err)
	defer s.Release()

	EncodeBlock(s, raw, d, 0, p)
	s.Rewind()

	out, _, hasData := DecodeBlock[int32](s, d, p)
	require.True(t, hasData)
	require.Equal(t, raw, out)
}

func TestEncodeDecodeBlockAllZero(t *testing.T) {
	p := reversibleParamsInt32()
	d := 2
	n := Size(d)
	raw := make([]int32, n)

	s, err := bitstream.New(64)
	require.NoError(t, err)
	defer s.Release()

	bits := EncodeBlock(s, raw, d, 0, p)
	require.Equal(t, 1, bits)

	s.Rewind()
	out, _, hasData := DecodeBlock[int32](s, d, p)
	require.False(t, hasData)
	require.Equal(t, raw, out)
}

func TestEncodeDecodeBlockFloat32Reversible(t *testing.T) {
	p := reversibleParamsFloat32()
	d := 2
	n := Size(d)

	vals := make([]float32, n)
	for i := range vals {
		vals[i] = float32(i) - float32(n)/2
	}
	emax, allZero := Exponent32(vals)
	require.False(t, allZero)

	raw := ScaleToInt32(vals, emax)

	s, err := bitstream.New(64)
	require.NoError(t, err)
	defer s.Release()

	EncodeBlock(s, raw, d, emax, p)
	s.Rewind()

	out, gotEmax, hasData := DecodeBlock[int32](s, d, p)
	require.True(t, hasData)
	require.Equal(t, emax, gotEmax)
	require.Equal(t, raw, out)

	back := UnscaleFromInt32(out, gotEmax)
	for i, v := range vals {
		require.InDelta(t, float64(v), float64(back[i]), 1e-5)
	}
}

func TestEncodeBlockRespectsMinBits(t *testing.T) {
	p := reversibleParamsInt32()
	p.MinBits = 64
	d := 1
	raw := make([]int32, Size(d))

	s, err := bitstream.New(64)
	require.NoError(t, err)
	defer s.Release()

	bits := EncodeBlock(s, raw, d, 0, p)
	require.Equal(t, 64, bits)
	require.Equal(t, 64, s.TellW())
}

func TestEncodeBlockRespectsMaxBits(t *testing.T) {
	p := reversibleParamsInt32()
	p.MaxBits = 10
	d := 2
	n := Size(d)
	raw := make([]int32, n)
	for i := range raw {
		raw[i] = int32(i*31 - 200)
	}

	s, err := bitstream.New(64)
	require.NoError(t, err)
	defer s.Release()

	bits := EncodeBlock(s, raw, d, 0, p)
	require.LessOrEqual(t, bits, 10)
}
