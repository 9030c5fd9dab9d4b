package field

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDefaultStrides(t *testing.T) {
	data := make([]float64, 3*4)
	f, err := New(data, 3, 4)
	require.NoError(t, err)
	require.Equal(t, 2, f.D)
	require.Equal(t, 1, f.Strides[0])
	require.Equal(t, 3, f.Strides[1])
	require.Equal(t, 12, f.Size())
}

func TestNewRejectsBadDims(t *testing.T) {
	_, err := New([]float64{1}, 0)
	require.Error(t, err)

	_, err = New([]float64{1}, 1, 2, 3, 4, 5)
	require.Error(t, err)
}

func TestNewRejectsUndersizedData(t *testing.T) {
	_, err := New(make([]float64, 2), 3, 4)
	require.Error(t, err)
}

func TestBlockGridRoundsUp(t *testing.T) {
	f, err := New(make([]float64, 10*6), 10, 6)
	require.NoError(t, err)

	grid := f.BlockGrid()
	require.Equal(t, 3, grid[0]) // ceil(10/4)
	require.Equal(t, 2, grid[1]) // ceil(6/4)
}

func TestBlockExtentPartialAtEdge(t *testing.T) {
	f, err := New(make([]float64, 10*6), 10, 6)
	require.NoError(t, err)

	full := f.BlockExtent([MaxDim]int{0, 0, 0, 0})
	require.Equal(t, 4, full[0])
	require.Equal(t, 4, full[1])

	edge := f.BlockExtent([MaxDim]int{2, 1, 0, 0})
	require.Equal(t, 2, edge[0]) // 10 - 2*4 = 2
	require.Equal(t, 2, edge[1]) // 6 - 1*4 = 2
}

func TestBlockBase(t *testing.T) {
	f, err := New(make([]float64, 8*8), 8, 8)
	require.NoError(t, err)

	base := f.BlockBase([MaxDim]int{1, 1, 0, 0})
	require.Equal(t, 4*f.Strides[0]+4*f.Strides[1], base)
}
