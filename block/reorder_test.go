package block

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPermutationIsBijection(t *testing.T) {
	for d := 1; d <= MaxDim; d++ {
		perm := Permutation(d)
		n := Size(d)
		require.Len(t, perm, n)

		seen := make([]bool, n)
		for _, p := range perm {
			require.False(t, seen[p], "duplicate index %d in permutation for d=%d", p, d)
			seen[p] = true
		}
	}
}

func TestReorderRoundTrip(t *testing.T) {
	for d := 1; d <= MaxDim; d++ {
		n := Size(d)
		block := make([]int32, n)
		for i := range block {
			block[i] = int32(i * 7)
		}

		reordered := make([]int32, n)
		Reorder(block, d, reordered)

		back := make([]int32, n)
		InverseReorder(reordered, d, back)

		require.Equal(t, block, back, "dimension %d", d)
	}
}

func TestPermutationOrdersByCoordinateSum(t *testing.T) {
	perm := Permutation(2)
	for i := 1; i < len(perm); i++ {
		require.LessOrEqual(t, coordSum(perm[i-1], 2), coordSum(perm[i], 2))
	}
}
