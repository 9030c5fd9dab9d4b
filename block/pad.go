package block

// Gather reads a 4^d sub-block out of data starting at flat offset base,
// with per-axis stride stride[0:d] and per-axis valid extent
// extent[0:d] (1..4: how many real samples exist along that axis from
// base before the array edge is reached). Block-local coordinates at or
// past an axis's extent are clamped to the last valid coordinate on that
// axis, independently per axis (spec §4.2 step 1, §9 Open Question (b)):
// clamping each axis separately reproduces the same x-then-y-then-z-
// then-w replication cascade the spec describes, since replicating the
// last valid line along one axis is itself independent of what happens
// on the others.
func Gather[T any](data []T, d int, extent, stride [4]int, base int) []T {
	n := Size(d)
	out := make([]T, n)

	for flat := 0; flat < n; flat++ {
		rem := flat
		srcOff := base
		for axis := 0; axis < d; axis++ {
			idx := rem % 4
			rem /= 4

			e := extent[axis]
			if e < 1 {
				e = 1
			} else if e > 4 {
				e = 4
			}
			if idx >= e {
				idx = e - 1
			}

			srcOff += idx * stride[axis]
		}
		out[flat] = data[srcOff]
	}

	return out
}

// Scatter writes block back into data, the inverse of Gather: only
// block-local positions that fall within extent on every axis (i.e. the
// real, non-replicated samples) are written.
func Scatter[T any](block []T, d int, extent, stride [4]int, base int, data []T) {
	n := Size(d)

	for flat := 0; flat < n; flat++ {
		rem := flat
		dstOff := base
		valid := true
		for axis := 0; axis < d; axis++ {
			idx := rem % 4
			rem /= 4

			if idx >= extent[axis] {
				valid = false
				break
			}
			dstOff += idx * stride[axis]
		}
		if valid {
			data[dstOff] = block[flat]
		}
	}
}
