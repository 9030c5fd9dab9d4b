// Package field describes the strided N-dimensional array a compressor
// reads from or a decompressor writes into (spec §3's "field"): a
// caller-owned slice plus up to four dimensions and their strides.
package field

import "fmt"

// MaxDim is the highest supported field dimensionality.
const MaxDim = 4

// Field is a view over a caller-owned slice, describing a 1..4
// dimensional array with per-axis extents and strides (in elements, not
// bytes). Element (0,...,0) is always Data[0] and there is no base
// offset, so a negative stride addresses indices below 0; reversed axes
// are not supported, and block gather/scatter panic on such a field.
// Field never copies Data; callers retain ownership and must keep it
// alive and correctly sized for the lifetime of any driver call using
// this Field.
type Field[T any] struct {
	Data []T

	// Dims holds the per-axis extents (Dims[0]=Nx, Dims[1]=Ny, ...); unused
	// trailing axes beyond D are 1.
	Dims [MaxDim]int

	// Strides holds the per-axis element strides; unused trailing axes
	// beyond D are 0. When Strides is the zero value, New fills in the
	// default row-major (x-fastest) strides.
	Strides [MaxDim]int

	// D is the field's dimensionality, 1..MaxDim.
	D int
}

// New builds a Field with default row-major (x-fastest) strides:
// Strides[0]=1, Strides[1]=Dims[0], Strides[2]=Dims[0]*Dims[1], etc.
// dims must have length 1..MaxDim and len(data) must be at least the
// product of dims.
func New[T any](data []T, dims ...int) (Field[T], error) {
	d := len(dims)
	if d < 1 || d > MaxDim {
		return Field[T]{}, fmt.Errorf("field: dimensionality %d out of range [1,%d]", d, MaxDim)
	}

	var f Field[T]
	f.D = d
	f.Data = data

	size := 1
	stride := 1
	for i := 0; i < d; i++ {
		if dims[i] <= 0 {
			return Field[T]{}, fmt.Errorf("field: axis %d extent %d must be positive", i, dims[i])
		}
		f.Dims[i] = dims[i]
		f.Strides[i] = stride
		size *= dims[i]
		stride *= dims[i]
	}
	for i := d; i < MaxDim; i++ {
		f.Dims[i] = 1
	}

	if len(data) < size {
		return Field[T]{}, fmt.Errorf("field: data length %d smaller than field size %d", len(data), size)
	}

	return f, nil
}

// NewStrided builds a Field with explicit, possibly non-contiguous
// strides, for callers describing a sub-array or a transposed view over
// an existing buffer. It does not check the sign of strides; a negative
// stride is accepted here but not usable (see Field).
func NewStrided[T any](data []T, dims, strides [MaxDim]int, d int) (Field[T], error) {
	if d < 1 || d > MaxDim {
		return Field[T]{}, fmt.Errorf("field: dimensionality %d out of range [1,%d]", d, MaxDim)
	}
	for i := 0; i < d; i++ {
		if dims[i] <= 0 {
			return Field[T]{}, fmt.Errorf("field: axis %d extent %d must be positive", i, dims[i])
		}
	}

	return Field[T]{Data: data, Dims: dims, Strides: strides, D: d}, nil
}

// Size returns the total number of logical elements in the field
// (product of Dims[0:D]).
func (f Field[T]) Size() int {
	n := 1
	for i := 0; i < f.D; i++ {
		n *= f.Dims[i]
	}

	return n
}

// BlockGrid returns, per axis, the number of 4-wide blocks needed to
// cover the field, rounding up (spec §4.2's block traversal operates over
// this grid, including partial blocks at the high edge of any axis whose
// extent is not a multiple of 4).
func (f Field[T]) BlockGrid() [MaxDim]int {
	var grid [MaxDim]int
	for i := 0; i < f.D; i++ {
		grid[i] = (f.Dims[i] + 3) / 4
	}
	for i := f.D; i < MaxDim; i++ {
		grid[i] = 1
	}

	return grid
}

// BlockExtent returns the valid (non-padded) extent along each axis for
// the block whose block-grid coordinate is blockIdx: 4 for every axis
// except where the block runs up against the field's high edge, in which
// case it is the remainder.
func (f Field[T]) BlockExtent(blockIdx [MaxDim]int) [MaxDim]int {
	var extent [MaxDim]int
	for i := 0; i < f.D; i++ {
		remaining := f.Dims[i] - blockIdx[i]*4
		if remaining > 4 {
			remaining = 4
		}
		extent[i] = remaining
	}
	for i := f.D; i < MaxDim; i++ {
		extent[i] = 1
	}

	return extent
}

// BlockBase returns the flat element offset of block-local origin (all
// zero coordinates) for the block at blockIdx.
func (f Field[T]) BlockBase(blockIdx [MaxDim]int) int {
	base := 0
	for i := 0; i < f.D; i++ {
		base += blockIdx[i] * 4 * f.Strides[i]
	}

	return base
}
