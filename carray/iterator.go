package carray

import "fmt"

// Iterator walks a CompressedArray in block-wise order — every cell of
// one block before advancing to the next — so that a full pass keeps
// each block cache-resident for all of its writes, maximizing cache hit
// rate and avoiding a partially-updated block being evicted mid-pass
// (spec §4.5, §8's traversal-coverage property). 1-D arrays are random
// access via Seek, since block-wise order coincides exactly with flat
// order when there is only one axis; higher-dimensional iterators are
// forward-only.
type Iterator[T Scalar] struct {
	a     *CompressedArray[T]
	order []int // block-wise traversal order, one entry per flat index
	n     int   // number of steps taken so far, [0, len(order)]
}

// NewIterator builds an Iterator over the whole of a, positioned before
// its first element.
func NewIterator[T Scalar](a *CompressedArray[T]) *Iterator[T] {
	return &Iterator[T]{a: a, order: blockWiseOrder(a)}
}

// blockWiseOrder visits every block in row-major block order and, within
// each block, every valid (non-padded) cell in row-major order.
func blockWiseOrder[T Scalar](a *CompressedArray[T]) []int {
	order := make([]int, 0, a.size)

	for b := 0; b < a.totalBlocks; b++ {
		extent := a.blockExtent(b)
		base := a.blockBase(b)

		n := 1
		for axis := 0; axis < a.d; axis++ {
			n *= extent[axis]
		}

		for flatInBlock := 0; flatInBlock < n; flatInBlock++ {
			rem, off := flatInBlock, 0
			for axis := 0; axis < a.d; axis++ {
				e := extent[axis]
				idx := rem % e
				rem /= e
				off += idx * a.strides[axis]
			}
			order = append(order, base+off)
		}
	}

	return order
}

// Next advances the iterator to its next cell, reporting whether one
// exists.
func (it *Iterator[T]) Next() bool {
	if it.n >= len(it.order) {
		return false
	}
	it.n++
	return true
}

// Flat returns the current cell's flat index.
func (it *Iterator[T]) Flat() int { return it.order[it.n-1] }

// Get returns the current cell's value.
func (it *Iterator[T]) Get() (T, error) {
	return it.a.GetFlat(it.order[it.n-1])
}

// Set writes v at the current cell.
func (it *Iterator[T]) Set(v T) error {
	return it.a.SetFlat(v, it.order[it.n-1])
}

// Coords returns the current cell's per-axis coordinates.
func (it *Iterator[T]) Coords() []int {
	return it.a.coordsOf(it.order[it.n-1])
}

// I, J, K, L recover the current cell's coordinate along x, y, z, w
// respectively; axes beyond the array's dimensionality report 0.
func (it *Iterator[T]) I() int { return it.axisCoord(0) }
func (it *Iterator[T]) J() int { return it.axisCoord(1) }
func (it *Iterator[T]) K() int { return it.axisCoord(2) }
func (it *Iterator[T]) L() int { return it.axisCoord(3) }

func (it *Iterator[T]) axisCoord(axis int) int {
	if axis >= it.a.d {
		return 0
	}
	return it.Coords()[axis]
}

// Seek repositions a 1-D iterator to pos, the only dimensionality for
// which block-wise order coincides with flat order and so supports
// random access (spec §4.5: "1-D iterators are random access").
func (it *Iterator[T]) Seek(pos int) error {
	if it.a.d != 1 {
		return fmt.Errorf("carray: Seek is only supported for 1-D arrays")
	}
	if pos < 0 || pos > len(it.order) {
		return fmt.Errorf("carray: seek position %d out of range [0,%d]", pos, len(it.order))
	}
	it.n = pos
	return nil
}
