package driver

import (
	"runtime"
	"sync"
	"unsafe"

	"github.com/zfpgo/zfp/bitstream"
	"github.com/zfpgo/zfp/field"
	"github.com/zfpgo/zfp/stream"
)

// OffloadBackend lets a pluggable accelerator claim an entire
// compress/decompress call instead of the driver's own serial/threaded
// traversal (spec §5, §7). A backend that can't or won't handle a given
// call must leave its stream argument completely untouched and report
// unsupported, so the driver can fall back to ExecSerial with no partial
// side effects to unwind. src/dst are raw byte views of the field's
// contiguous native memory and the encoded stream's words respectively —
// the same raw-pointer shape a real GPU/FFI accelerator would take —
// which is why this interface only ever sees contiguous row-major
// fields (see tryOffloadCompress).
type OffloadBackend interface {
	// Name identifies the backend for logging/diagnostics.
	Name() string

	// TryCompress attempts to encode src (fieldSize elements of the
	// field's native scalar type, raw bytes) into dst under p, a
	// fixed-rate configuration. It returns (bitsWritten, true) on success,
	// or (0, false) if it declines (dst must be left exactly as it was
	// passed in when declining).
	TryCompress(dst []byte, src []byte, fieldSize int, p stream.Params) (bitsWritten int, ok bool)

	// TryDecompress is TryCompress's inverse: it attempts to decode src
	// (the encoded stream's raw bytes) into dst (fieldSize elements of
	// the field's native scalar type, raw bytes).
	TryDecompress(dst []byte, src []byte, fieldSize int, p stream.Params) (ok bool)
}

// NoOffloadBackend always declines, the default backend when none is
// configured: every call falls through to ExecSerial.
type NoOffloadBackend struct{}

// Name implements OffloadBackend.
func (NoOffloadBackend) Name() string { return "none" }

// TryCompress implements OffloadBackend by always declining.
func (NoOffloadBackend) TryCompress(_, _ []byte, _ int, _ stream.Params) (int, bool) {
	return 0, false
}

// TryDecompress implements OffloadBackend by always declining.
func (NoOffloadBackend) TryDecompress(_, _ []byte, _ int, _ stream.Params) bool {
	return false
}

// rawBytesOf reinterprets a contiguous slice of scalars as raw bytes
// without copying, the same zero-copy technique bitstream.RawHostView
// uses to hand a raw word buffer to the wire format.
func rawBytesOf[S any](data []S) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero S
	elemSize := int(unsafe.Sizeof(zero))

	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*elemSize)
}

// contiguous reports whether f's strides describe the default row-major,
// x-fastest, non-negative layout — the only layout a raw byte-view
// backend can consume. Offload declines on anything else, matching spec
// §5's "falls back to serial if the backend reports unsupported
// configuration".
func contiguous[S any](f field.Field[S]) bool {
	stride := 1
	for i := 0; i < f.D; i++ {
		if f.Strides[i] != stride {
			return false
		}
		stride *= f.Dims[i]
	}

	return true
}

// tryOffloadCompress asks backend to claim an entire compress call. Per
// spec §5/§7, a non-fixed-rate call is never even offered to the
// backend: it is rejected at this layer (not merely expected to be
// declined by a well-behaved backend), so the "BitstreamUntouchedAndRet
// urnsZero" property (spec §8 scenario 5) holds for every OffloadBackend,
// not just compliant ones.
func tryOffloadCompress[S any](dst *bitstream.Stream, f field.Field[S], p stream.Params, backend OffloadBackend, fixedRate bool) (int, bool) {
	if !fixedRate || backend == nil || !contiguous(f) {
		return 0, false
	}

	buf := make([]byte, (f.Size()*p.MinBits+7)/8)
	bits, ok := backend.TryCompress(buf, rawBytesOf(f.Data), f.Size(), p)
	if !ok {
		return 0, false
	}

	dst.WSeek(0)
	remaining, byteOff := bits, 0
	for remaining > 0 {
		take := remaining
		if take > 64 {
			take = 64
		}

		end := byteOff + 8
		if end > len(buf) {
			end = len(buf)
		}
		var chunk [8]byte
		copy(chunk[:], buf[byteOff:end])
		dst.WriteBits(leUint64(chunk), take)

		remaining -= take
		byteOff += 8
	}

	return bits, true
}

// tryOffloadDecompress is tryOffloadCompress's read-side counterpart.
func tryOffloadDecompress[S any](src *bitstream.Stream, f field.Field[S], p stream.Params, backend OffloadBackend, fixedRate bool) bool {
	if !fixedRate || backend == nil || !contiguous(f) {
		return false
	}

	srcBytes := src.Bytes()
	dstBytes := rawBytesOf(f.Data)

	return backend.TryDecompress(dstBytes, srcBytes, f.Size(), p)
}

func leUint64(b [8]byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}

	return v
}

// blockJob describes one unit of threaded-traversal work: a block-grid
// coordinate plus its precomputed extent and base offset.
type blockJob struct {
	extent [field.MaxDim]int
	base   int
}

// collectJobs materializes forEachBlock's traversal order into a slice,
// the shape a worker pool needs to hand out disjoint chunks of work.
func collectJobs[S any](f field.Field[S]) []blockJob {
	var jobs []blockJob
	forEachBlock(f, func(_, extent [field.MaxDim]int, base int) {
		jobs = append(jobs, blockJob{extent: extent, base: base})
	})

	return jobs
}

// runThreaded partitions jobs across a worker pool and calls work(idx, job)
// for each (idx is the job's position in jobs, i.e. its block index),
// waiting for every worker to finish before returning. Workers never
// share mutable state beyond f.Data itself, and each job only ever
// touches the byte range implied by its own base+extent (or, in
// compressThreaded/decompressThreaded, its own idx*bitsPerBlock offset
// into the stream), so disjoint jobs never race on writes.
func runThreaded(jobs []blockJob, work func(idx int, j blockJob)) {
	workers := runtime.GOMAXPROCS(0)
	if workers > len(jobs) {
		workers = len(jobs)
	}
	if workers < 1 {
		return
	}

	var wg sync.WaitGroup
	chunk := (len(jobs) + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= len(jobs) {
			break
		}
		end := start + chunk
		if end > len(jobs) {
			end = len(jobs)
		}

		wg.Add(1)
		go func(base int, slice []blockJob) {
			defer wg.Done()
			for i, j := range slice {
				work(base+i, j)
			}
		}(start, jobs[start:end])
	}

	wg.Wait()
}
