// Package driver walks a field's blocks in row-major block order,
// feeding each one through the block package's per-block codec and
// packing the results into a bitstream.Stream (spec §4's compress/
// decompress entry points, §5's execution policies).
package driver

import (
	"github.com/zfpgo/zfp/bitstream"
	"github.com/zfpgo/zfp/block"
	"github.com/zfpgo/zfp/field"
	"github.com/zfpgo/zfp/scalar"
	"github.com/zfpgo/zfp/stream"
)

// mapper converts a field's native samples to/from the block package's
// fixed-point integer coefficients, and reports the block exponent for
// floating-point kinds (constant 0, ignored, for integer kinds).
type mapper[S any, I block.Int] struct {
	toInt   func(raw []S) (vals []I, emax int, allZero bool)
	fromInt func(vals []I, emax int) []S
}

// forEachBlock iterates every block-grid coordinate of f in row-major
// order (w slowest, x fastest, matching field.Field's own axis-stride
// convention), invoking fn with the block's grid coordinate, its valid
// extent, and its flat base offset into f.Data.
func forEachBlock[S any](f field.Field[S], fn func(blockIdx, extent [field.MaxDim]int, base int)) {
	grid := f.BlockGrid()

	var idx [field.MaxDim]int
	total := 1
	for i := 0; i < f.D; i++ {
		total *= grid[i]
	}

	for n := 0; n < total; n++ {
		rem := n
		for i := 0; i < f.D; i++ {
			idx[i] = rem % grid[i]
			rem /= grid[i]
		}

		extent := f.BlockExtent(idx)
		base := f.BlockBase(idx)
		fn(idx, extent, base)
	}
}

// compress runs the shared traversal for any (S,I) pair, writing one
// EncodeBlock call per block of f to dst, dispatching on p.Exec (spec
// §5): ExecOffload first asks backend to claim the whole call (fixed-rate
// only, per the backend contract — see tryOffloadCompress), falling back
// to ExecSerial when it declines; ExecThreaded fans the block loop out
// across a worker pool when fixed-rate (each worker owns a disjoint
// Cursor into a pre-reserved byte range) and otherwise falls back to
// ExecSerial, since non-fixed-rate block offsets are data-dependent and
// cannot be precomputed (spec §5).
func compress[S any, I block.Int](dst *bitstream.Stream, f field.Field[S], p stream.Params, m mapper[S, I], backend OffloadBackend) {
	fixedRate := p.MinBits == p.MaxBits

	if p.Exec == stream.ExecOffload {
		if _, ok := tryOffloadCompress(dst, f, p, backend, fixedRate); ok {
			return
		}
	}

	if p.Exec == stream.ExecThreaded && fixedRate {
		compressThreaded(dst, f, p, m)
		return
	}

	compressSerial(dst, f, p, m)
}

// compressSerial is the baseline single-goroutine traversal every other
// execution policy falls back to.
func compressSerial[S any, I block.Int](dst *bitstream.Stream, f field.Field[S], p stream.Params, m mapper[S, I]) {
	bp := blockParams(p, f.D)

	var strideArr, extentArr [4]int
	copy(strideArr[:], f.Strides[:])

	forEachBlock(f, func(_, extent [field.MaxDim]int, base int) {
		copy(extentArr[:], extent[:])
		gathered := block.Gather(f.Data, f.D, extentArr, strideArr, base)

		vals, emax, _ := m.toInt(gathered)
		block.EncodeBlock(dst, vals, f.D, emax, bp)

		if p.MinBits == p.MaxBits {
			dst.AlignWrite()
		}
	})
}

// compressThreaded partitions the block loop across a worker pool. Every
// block consumes exactly p.MinBits bits (the caller has already checked
// fixed-rate), so each job's absolute bit offset is known up front; the
// stream's backing buffer is reserved once before any worker starts, and
// each worker writes through its own Cursor into a disjoint bit range
// (spec §5: no synchronization needed beyond the join barrier in
// runThreaded).
func compressThreaded[S any, I block.Int](dst *bitstream.Stream, f field.Field[S], p stream.Params, m mapper[S, I]) {
	bp := blockParams(p, f.D)
	jobs := collectJobs(f)
	bitsPerBlock := p.MinBits

	dst.Reserve(len(jobs) * bitsPerBlock)

	var strideArr [4]int
	copy(strideArr[:], f.Strides[:])

	runThreaded(jobs, func(idx int, j blockJob) {
		var extentArr [4]int
		copy(extentArr[:], j.extent[:])
		gathered := block.Gather(f.Data, f.D, extentArr, strideArr, j.base)

		vals, emax, _ := m.toInt(gathered)
		cur := dst.WriterAt(idx * bitsPerBlock)
		block.EncodeBlock(cur, vals, f.D, emax, bp)
	})

	dst.WSeek(len(jobs) * bitsPerBlock)
}

// decompress is compress's inverse: it reads one DecodeBlock call per
// block of f from src and scatters the results back into f.Data, with
// the same ExecPolicy dispatch as compress.
func decompress[S any, I block.Int](src *bitstream.Stream, f field.Field[S], p stream.Params, m mapper[S, I], backend OffloadBackend) {
	fixedRate := p.MinBits == p.MaxBits

	if p.Exec == stream.ExecOffload {
		if ok := tryOffloadDecompress(src, f, p, backend, fixedRate); ok {
			return
		}
	}

	if p.Exec == stream.ExecThreaded && fixedRate {
		decompressThreaded(src, f, p, m)
		return
	}

	decompressSerial(src, f, p, m)
}

// decompressSerial is the baseline single-goroutine traversal.
func decompressSerial[S any, I block.Int](src *bitstream.Stream, f field.Field[S], p stream.Params, m mapper[S, I]) {
	bp := blockParams(p, f.D)

	var strideArr, extentArr [4]int
	copy(strideArr[:], f.Strides[:])

	forEachBlock(f, func(_, extent [field.MaxDim]int, base int) {
		start := src.TellR()
		vals, emax, _ := block.DecodeBlock[I](src, f.D, bp)
		out := m.fromInt(vals, emax)

		copy(extentArr[:], extent[:])
		block.Scatter(out, f.D, extentArr, strideArr, base, f.Data)

		if p.MinBits == p.MaxBits {
			src.RSeek(start + p.MinBits)
		}
	})
}

// decompressThreaded is compressThreaded's read-side counterpart.
func decompressThreaded[S any, I block.Int](src *bitstream.Stream, f field.Field[S], p stream.Params, m mapper[S, I]) {
	bp := blockParams(p, f.D)
	jobs := collectJobs(f)
	bitsPerBlock := p.MinBits

	var strideArr [4]int
	copy(strideArr[:], f.Strides[:])

	runThreaded(jobs, func(idx int, j blockJob) {
		cur := src.ReaderAt(idx * bitsPerBlock)
		vals, emax, _ := block.DecodeBlock[I](cur, f.D, bp)
		out := m.fromInt(vals, emax)

		var extentArr [4]int
		copy(extentArr[:], j.extent[:])
		block.Scatter(out, f.D, extentArr, strideArr, j.base, f.Data)
	})
}

// blockParams narrows a stream.Params down to the single-block subset
// block.EncodeBlock/DecodeBlock need.
func blockParams(p stream.Params, dim int) block.Params {
	tr, err := scalar.For(p.Kind)
	if err != nil {
		panic(err)
	}

	return block.Params{
		IsFloat: tr.IsFloat,
		Q:       tr.Q,
		EBits:   tr.EBits,
		EBias:   tr.EBias,
		W:       tr.W,
		MinBits: p.MinBits,
		MaxBits: p.MaxBits,
		MaxPrec: p.MaxPrec,
		MinExp:  p.MinExp,
	}
}

// pickBackend returns the first backend in backends, or NoOffloadBackend
// when none was supplied (the common case: every exported Compress*/
// Decompress* function takes the backend as a trailing optional argument
// so ExecSerial/ExecThreaded callers never have to mention it).
func pickBackend(backends []OffloadBackend) OffloadBackend {
	if len(backends) > 0 {
		return backends[0]
	}

	return NoOffloadBackend{}
}

// CompressFloat32 encodes f into dst under p.
func CompressFloat32(dst *bitstream.Stream, f field.Field[float32], p stream.Params, backend ...OffloadBackend) {
	compress(dst, f, p, mapper[float32, int32]{
		toInt: func(raw []float32) ([]int32, int, bool) {
			emax, allZero := block.Exponent32(raw)
			if allZero {
				return make([]int32, len(raw)), 0, true
			}

			return block.ScaleToInt32(raw, emax), emax, false
		},
		fromInt: func(vals []int32, emax int) []float32 {
			return block.UnscaleFromInt32(vals, emax)
		},
	}, pickBackend(backend))
}

// DecompressFloat32 decodes into f from src under p.
func DecompressFloat32(src *bitstream.Stream, f field.Field[float32], p stream.Params, backend ...OffloadBackend) {
	decompress(src, f, p, mapper[float32, int32]{
		fromInt: func(vals []int32, emax int) []float32 {
			return block.UnscaleFromInt32(vals, emax)
		},
	}, pickBackend(backend))
}

// CompressFloat64 encodes f into dst under p.
func CompressFloat64(dst *bitstream.Stream, f field.Field[float64], p stream.Params, backend ...OffloadBackend) {
	compress(dst, f, p, mapper[float64, int64]{
		toInt: func(raw []float64) ([]int64, int, bool) {
			emax, allZero := block.Exponent64(raw)
			if allZero {
				return make([]int64, len(raw)), 0, true
			}

			return block.ScaleToInt64(raw, emax), emax, false
		},
		fromInt: func(vals []int64, emax int) []float64 {
			return block.UnscaleFromInt64(vals, emax)
		},
	}, pickBackend(backend))
}

// DecompressFloat64 decodes into f from src under p.
func DecompressFloat64(src *bitstream.Stream, f field.Field[float64], p stream.Params, backend ...OffloadBackend) {
	decompress(src, f, p, mapper[float64, int64]{
		fromInt: func(vals []int64, emax int) []float64 {
			return block.UnscaleFromInt64(vals, emax)
		},
	}, pickBackend(backend))
}

// CompressInt32 encodes f into dst under p.
func CompressInt32(dst *bitstream.Stream, f field.Field[int32], p stream.Params, backend ...OffloadBackend) {
	compress(dst, f, p, mapper[int32, int32]{
		toInt: func(raw []int32) ([]int32, int, bool) {
			return raw, 0, false
		},
		fromInt: func(vals []int32, _ int) []int32 { return vals },
	}, pickBackend(backend))
}

// DecompressInt32 decodes into f from src under p.
func DecompressInt32(src *bitstream.Stream, f field.Field[int32], p stream.Params, backend ...OffloadBackend) {
	decompress(src, f, p, mapper[int32, int32]{
		fromInt: func(vals []int32, _ int) []int32 { return vals },
	}, pickBackend(backend))
}

// CompressInt64 encodes f into dst under p.
func CompressInt64(dst *bitstream.Stream, f field.Field[int64], p stream.Params, backend ...OffloadBackend) {
	compress(dst, f, p, mapper[int64, int64]{
		toInt: func(raw []int64) ([]int64, int, bool) {
			return raw, 0, false
		},
		fromInt: func(vals []int64, _ int) []int64 { return vals },
	}, pickBackend(backend))
}

// DecompressInt64 decodes into f from src under p.
func DecompressInt64(src *bitstream.Stream, f field.Field[int64], p stream.Params, backend ...OffloadBackend) {
	decompress(src, f, p, mapper[int64, int64]{
		fromInt: func(vals []int64, _ int) []int64 { return vals },
	}, pickBackend(backend))
}

// PartialBlockExtent reports whether f has any partial (edge) blocks
// along its active axes, i.e. whether any axis extent is not a multiple
// of 4.
func PartialBlockExtent[S any](f field.Field[S]) bool {
	for i := 0; i < f.D; i++ {
		if f.Dims[i]%4 != 0 {
			return true
		}
	}

	return false
}
