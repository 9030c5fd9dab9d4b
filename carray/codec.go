package carray

import (
	"fmt"

	"github.com/zfpgo/zfp/block"
)

// encodeInto runs the single-block forward pipeline for whichever of the
// four scalar kinds T actually is, writing to w. raw must have length
// equal to the block size (4^d); it is gathered/padded data straight out
// of a cache slot, not yet mapped to fixed-point integers for float
// kinds — that mapping happens here, mirroring driver.compress's mapper
// but inlined per kind since carray addresses one block at a time rather
// than a whole field.
func encodeInto[T Scalar](w block.Writer, raw []T, d int, p block.Params) {
	switch vs := any(raw).(type) {
	case []int32:
		block.EncodeBlock(w, vs, d, 0, p)
	case []int64:
		block.EncodeBlock(w, vs, d, 0, p)
	case []float32:
		emax, allZero := block.Exponent32(vs)
		if allZero {
			block.EncodeBlock(w, make([]int32, len(vs)), d, 0, p)
			return
		}
		block.EncodeBlock(w, block.ScaleToInt32(vs, emax), d, emax, p)
	case []float64:
		emax, allZero := block.Exponent64(vs)
		if allZero {
			block.EncodeBlock(w, make([]int64, len(vs)), d, 0, p)
			return
		}
		block.EncodeBlock(w, block.ScaleToInt64(vs, emax), d, emax, p)
	default:
		panic(fmt.Sprintf("carray: unsupported scalar type %T", raw))
	}
}

// decodeInto is encodeInto's inverse, writing the block's decoded
// samples into out (preallocated by the caller, typically a cache
// slot's resident buffer, so decoding a block never allocates).
func decodeInto[T Scalar](r block.Reader, d int, p block.Params, out []T) {
	var zero T
	switch any(zero).(type) {
	case int32:
		vals, _, _ := block.DecodeBlock[int32](r, d, p)
		copy(any(out).([]int32), vals)
	case int64:
		vals, _, _ := block.DecodeBlock[int64](r, d, p)
		copy(any(out).([]int64), vals)
	case float32:
		vals, emax, _ := block.DecodeBlock[int32](r, d, p)
		copy(any(out).([]float32), block.UnscaleFromInt32(vals, emax))
	case float64:
		vals, emax, _ := block.DecodeBlock[int64](r, d, p)
		copy(any(out).([]float64), block.UnscaleFromInt64(vals, emax))
	default:
		panic(fmt.Sprintf("carray: unsupported scalar type %T", zero))
	}
}
