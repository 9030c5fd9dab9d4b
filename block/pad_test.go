package block

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGatherFullBlockNoPadding(t *testing.T) {
	// 8x8 2D array, gather the 4x4 block at origin (4,4).
	const nx = 8
	data := make([]int32, nx*nx)
	for i := range data {
		data[i] = int32(i)
	}

	stride := [4]int{1, nx, 0, 0}
	extent := [4]int{4, 4, 0, 0}
	base := 4*stride[1] + 4*stride[0]

	block := Gather(data, 2, extent, stride, base)
	require.Len(t, block, 16)
	require.Equal(t, data[base], block[0])
	// (x=1,y=0) -> flat 1 in block order, source offset base+1
	require.Equal(t, data[base+1], block[1])
}

func TestGatherPartialBlockReplicatesLastValidLine(t *testing.T) {
	// 6-wide axis: a block starting at x=4 only has 2 valid columns (4,5),
	// so block-local x in {2,3} should replicate column 1 (x=5).
	const nx = 6
	data := make([]int32, nx)
	for i := range data {
		data[i] = int32(i)
	}

	stride := [4]int{1, 0, 0, 0}
	extent := [4]int{2, 0, 0, 0}
	base := 4

	block := Gather(data, 1, extent, stride, base)
	require.Equal(t, []int32{4, 5, 5, 5}, block)
}

func TestScatterOnlyWritesValidPositions(t *testing.T) {
	const nx = 6
	data := make([]int32, nx)
	stride := [4]int{1, 0, 0, 0}
	extent := [4]int{2, 0, 0, 0}
	base := 4

	block := []int32{10, 20, 99, 99}
	Scatter(block, 1, extent, stride, base, data)

	require.Equal(t, int32(10), data[4])
	require.Equal(t, int32(20), data[5])
}
