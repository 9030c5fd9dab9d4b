package stream

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zfpgo/zfp/scalar"
)

func TestSetRateRounding(t *testing.T) {
	p, eff, err := SetRate(scalar.Float64, 2, 8.0)
	require.NoError(t, err)
	require.Equal(t, p.MinBits, p.MaxBits)
	require.InDelta(t, 8.0, eff, 0.1)
}

func TestSetRateRejectsBadDim(t *testing.T) {
	_, _, err := SetRate(scalar.Float64, 5, 8.0)
	require.Error(t, err)
}

func TestSetPrecisionClamps(t *testing.T) {
	_, eff, err := SetPrecision(scalar.Int32, 1000)
	require.NoError(t, err)
	require.Equal(t, scalar.MaxPrecBound, eff)

	_, eff, err = SetPrecision(scalar.Int32, -5)
	require.NoError(t, err)
	require.Equal(t, 1, eff)
}

func TestSetAccuracyRejectsIntegerKind(t *testing.T) {
	_, _, err := SetAccuracy(scalar.Int32, 0.001)
	require.Error(t, err)
}

func TestSetAccuracyComputesMinExp(t *testing.T) {
	_, minExp, err := SetAccuracy(scalar.Float64, 0.0009765625) // 2^-10
	require.NoError(t, err)
	require.Equal(t, -10, minExp)
}

func TestSetReversibleMaximizesPrecision(t *testing.T) {
	p, err := SetReversible(scalar.Int64)
	require.NoError(t, err)
	require.Equal(t, scalar.MaxPrecBound, p.MaxPrec)
	require.Equal(t, Unbounded, p.MaxBits)
}

func TestSetExpertRejectsInvertedRange(t *testing.T) {
	_, err := SetExpert(scalar.Float32, 100, 50, 32, -100)
	require.Error(t, err)
}

func TestSetExpertRejectsMinExpBelowFloor(t *testing.T) {
	_, err := SetExpert(scalar.Float32, 0, 1000, 32, -1000)
	require.Error(t, err)
}

func TestSetExpertAccepts(t *testing.T) {
	p, err := SetExpert(scalar.Float32, 0, 1000, 32, -100)
	require.NoError(t, err)
	require.Equal(t, 1000, p.MaxBits)
}

func TestEffectiveBitsPerBlockPanicsOutsideFixedRate(t *testing.T) {
	p, err := SetReversible(scalar.Int32)
	require.NoError(t, err)
	require.Panics(t, func() { p.EffectiveBitsPerBlock(2) })
}
