package block

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransformRoundTripInt64(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for d := 1; d <= MaxDim; d++ {
		n := Size(d)
		block := make([]int64, n)
		for i := range block {
			block[i] = int64(rng.Intn(2000) - 1000)
		}
		orig := append([]int64(nil), block...)

		ForwardTransform(block, d)
		InverseTransform(block, d)

		require.Equal(t, orig, block, "dimension %d", d)
	}
}

func TestTransformRoundTripInt32Extremes(t *testing.T) {
	for d := 1; d <= MaxDim; d++ {
		n := Size(d)
		block := make([]int32, n)
		for i := range block {
			switch i % 4 {
			case 0:
				block[i] = 0
			case 1:
				block[i] = 1<<20 - 1
			case 2:
				block[i] = -(1 << 20)
			default:
				block[i] = int32(i)
			}
		}
		orig := append([]int32(nil), block...)

		ForwardTransform(block, d)
		InverseTransform(block, d)

		require.Equal(t, orig, block, "dimension %d", d)
	}
}

func TestGroupCount(t *testing.T) {
	require.Equal(t, 1, GroupCount(1))
	require.Equal(t, 4, GroupCount(2))
	require.Equal(t, 16, GroupCount(3))
	require.Equal(t, 64, GroupCount(4))
}

func TestSizePanicsOutOfRange(t *testing.T) {
	require.Panics(t, func() { Size(0) })
	require.Panics(t, func() { Size(5) })
}
