package carray

import (
	"fmt"

	"github.com/zfpgo/zfp/archive"
	"github.com/zfpgo/zfp/bitstream"
)

// Archive flushes the cache and runs the array's compressed buffer
// through codec, for cold storage or network transfer (the supplemental
// archive package of SPEC_FULL.md's DOMAIN STACK section). The zfp block codec already produced a
// valid fixed-rate buffer; this is a second, general-purpose byte
// codec layered on top, never required for correctness.
func (a *CompressedArray[T]) Archive(codec archive.Codec) ([]byte, error) {
	data := a.CompressedData()
	out, err := codec.Compress(data)
	if err != nil {
		return nil, fmt.Errorf("carray: archive compress failed: %w", err)
	}
	return out, nil
}

// Restore reverses Archive: it decodes archived via codec and loads the
// result as this array's compressed buffer in bulk, bypassing the cache
// (mirroring SetBulk's invalidate-without-write-back contract). The
// decoded byte length must exactly match CompressedSize(); archived data
// produced against a different rate or shape is rejected rather than
// silently truncated or zero-padded.
func (a *CompressedArray[T]) Restore(archived []byte, codec archive.Codec) error {
	data, err := codec.Decompress(archived)
	if err != nil {
		return fmt.Errorf("carray: archive decompress failed: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	want := a.compressedSizeLocked()
	if len(data) != want {
		return fmt.Errorf("carray: restored buffer is %d bytes, want %d for this array's rate/shape", len(data), want)
	}

	words, err := bitstream.FromBytes(data, 64)
	if err != nil {
		return err
	}
	a.words = words
	a.clearCacheLocked()

	return nil
}
