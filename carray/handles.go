package carray

import "fmt"

// Reference is a small value-type handle — (array, flat index) — that
// borrows logically from a CompressedArray rather than pinning a decoded
// value's memory: get/set re-enter the cache on every access, since the
// scalar a reference names only exists for as long as its block stays
// resident (spec §9's proxy-handle design note). This is new code, with
// no teacher analogue (arloliu-mebo never holds decoded state behind a
// handle like this), grounded on the closest shape the teacher does
// offer — blob.MaterializedNumericBlob's value-type, O(1)-access-after-
// decode pattern — generalized from one-shot materialization to
// decode-with-possible-latency (see DESIGN.md).
type Reference[T Scalar] struct {
	a    *CompressedArray[T]
	flat int
}

// NewReference builds a Reference at flat index flat into a.
func NewReference[T Scalar](a *CompressedArray[T], flat int) Reference[T] {
	return Reference[T]{a: a, flat: flat}
}

// Get dereferences the reference, decoding its block if not already
// cache-resident.
func (r Reference[T]) Get() (T, error) {
	return r.a.GetFlat(r.flat)
}

// Set writes through the reference into the cache, marking its
// containing block dirty.
func (r Reference[T]) Set(v T) error {
	return r.a.SetFlat(v, r.flat)
}

// Assign copies src's current value into r — a get immediately followed
// by a set, per spec §4.5's "assignment from one reference to another is
// a get+set".
func (r Reference[T]) Assign(src Reference[T]) error {
	v, err := src.Get()
	if err != nil {
		return err
	}
	return r.Set(v)
}

// Flat returns the reference's flat index.
func (r Reference[T]) Flat() int { return r.flat }

// Pointer is a Reference plus flat-index arithmetic: two pointers into
// the same array are orderable and differenceable by flat index (spec
// §4.5, §8's pointer-difference property).
type Pointer[T Scalar] struct {
	Reference[T]
}

// NewPointer builds a Pointer at flat index flat into a.
func NewPointer[T Scalar](a *CompressedArray[T], flat int) Pointer[T] {
	return Pointer[T]{Reference[T]{a: a, flat: flat}}
}

// Add returns a new pointer offset by n flat positions.
func (p Pointer[T]) Add(n int) Pointer[T] {
	return NewPointer(p.a, p.flat+n)
}

// Sub returns a new pointer offset by -n flat positions.
func (p Pointer[T]) Sub(n int) Pointer[T] {
	return p.Add(-n)
}

// Diff returns flat(p) - flat(q). p and q must point into the same
// array.
func (p Pointer[T]) Diff(q Pointer[T]) (int, error) {
	if p.a != q.a {
		return 0, fmt.Errorf("carray: pointer difference across distinct arrays")
	}
	return p.flat - q.flat, nil
}

// Compare returns -1, 0, or 1 as p's flat index is less than, equal to,
// or greater than q's. Two pointers into the same array are totally
// ordered by flat index (spec §4.5).
func (p Pointer[T]) Compare(q Pointer[T]) int {
	switch {
	case p.flat < q.flat:
		return -1
	case p.flat > q.flat:
		return 1
	default:
		return 0
	}
}
