package block

import "sort"

// permTables and invPermTables hold the precomputed per-dimension
// reorder permutations (spec §4.2 step 4), built once at package init.
var (
	permTables    [MaxDim + 1][]int
	invPermTables [MaxDim + 1][]int
)

func init() {
	for d := 1; d <= MaxDim; d++ {
		permTables[d] = buildPermutation(d)
		invPermTables[d] = invertPermutation(permTables[d])
	}
}

// coordSum returns the sum of the d base-4 digits of the flat index o,
// i.e. the sum of its per-axis coordinates within a d-dimensional
// 4x...x4 block.
func coordSum(o, d int) int {
	sum := 0
	for axis := 0; axis < d; axis++ {
		sum += (o / axisStride(axis)) % 4
	}

	return sum
}

// buildPermutation computes a deterministic total order over the 4^d
// block-local indices that concentrates low-frequency (small
// coordinate-sum) coefficients toward the front: coefficients are sorted
// by ascending coordinate sum, ties broken by the natural (row-major)
// index. This is this module's resolution of spec §9 Open Question (b)
// for the reorder table specifically (see DESIGN.md): the original's
// exact zig-zag tables are not recoverable from the spec text alone, so
// this module defines its own permutation with the same stated property
// ("concentrates significance toward the front") rather than guessing at
// the original's bit-exact layout.
func buildPermutation(d int) []int {
	n := Size(d)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	sort.Slice(perm, func(i, j int) bool {
		si, sj := coordSum(perm[i], d), coordSum(perm[j], d)
		if si != sj {
			return si < sj
		}

		return perm[i] < perm[j]
	})

	return perm
}

func invertPermutation(perm []int) []int {
	inv := make([]int, len(perm))
	for i, p := range perm {
		inv[p] = i
	}

	return inv
}

// Permutation returns the reorder permutation for dimension d: the
// result of applying it, out[i] = in[Permutation(d)[i]], lists
// coefficients in significance order.
func Permutation(d int) []int { return permTables[d] }

// InversePermutation returns the inverse of Permutation(d).
func InversePermutation(d int) []int { return invPermTables[d] }

// Reorder writes block permuted by Permutation(d) into out. len(block)
// and len(out) must equal Size(d).
func Reorder[T any](block []T, d int, out []T) {
	perm := Permutation(d)
	for i, p := range perm {
		out[i] = block[p]
	}
}

// InverseReorder undoes Reorder: it scatters reordered values back into
// natural block order.
func InverseReorder[T any](reordered []T, d int, out []T) {
	perm := Permutation(d)
	for i, p := range perm {
		out[p] = reordered[i]
	}
}
