package block

import "math"

// Exponent32 reports the block exponent of a slice of float32 samples
// (spec §4.2 step 2, glossary entry "Block exponent"): the largest
// base-2 exponent among the samples' magnitudes, i.e.
// floor(log2(max(|x_i|))). allZero is true when every sample is zero, in
// which case emax is meaningless (the block is emitted as a single 0 bit
// upstream and never reaches the float→integer mapping at all).
func Exponent32(vals []float32) (emax int, allZero bool) {
	var maxAbs float64
	for _, v := range vals {
		av := math.Abs(float64(v))
		if av > maxAbs {
			maxAbs = av
		}
	}
	if maxAbs == 0 {
		return 0, true
	}

	return int(math.Floor(math.Log2(maxAbs))), false
}

// Exponent64 is Exponent32's float64 counterpart.
func Exponent64(vals []float64) (emax int, allZero bool) {
	var maxAbs float64
	for _, v := range vals {
		av := math.Abs(v)
		if av > maxAbs {
			maxAbs = av
		}
	}
	if maxAbs == 0 {
		return 0, true
	}

	return int(math.Floor(math.Log2(maxAbs))), false
}

// ScaleToInt32 maps float32 samples to Q30 fixed-point int32 coefficients
// relative to block exponent emax: each sample is scaled by 2^(q-emax)
// and rounded to the nearest integer (spec §4.2 step 2; q = 30 for
// float32, scalar.TraitFloat32.Q).
func ScaleToInt32(vals []float32, emax int) []int32 {
	const q = 30
	scale := math.Ldexp(1, q-emax)
	out := make([]int32, len(vals))
	for i, v := range vals {
		out[i] = int32(math.Round(float64(v) * scale))
	}

	return out
}

// UnscaleFromInt32 undoes ScaleToInt32.
func UnscaleFromInt32(vals []int32, emax int) []float32 {
	const q = 30
	scale := math.Ldexp(1, emax-q)
	out := make([]float32, len(vals))
	for i, v := range vals {
		out[i] = float32(float64(v) * scale)
	}

	return out
}

// ScaleToInt64 is ScaleToInt32's float64/Q62 counterpart.
func ScaleToInt64(vals []float64, emax int) []int64 {
	const q = 62
	scale := math.Ldexp(1, q-emax)
	out := make([]int64, len(vals))
	for i, v := range vals {
		out[i] = int64(math.Round(v * scale))
	}

	return out
}

// UnscaleFromInt64 undoes ScaleToInt64.
func UnscaleFromInt64(vals []int64, emax int) []float64 {
	const q = 62
	scale := math.Ldexp(1, emax-q)
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = float64(v) * scale
	}

	return out
}
