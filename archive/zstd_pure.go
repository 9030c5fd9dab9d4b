//go:build !nobuild

package archive

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compress archives data with Zstandard.
//
// Unlike the teacher's per-metric payload compressor, which runs inside
// a tight per-call loop over many small mebo payloads and so pools its
// encoder/decoder to amortize setup cost, Archive is called once per
// CompressedArray flush: there is exactly one buffer to archive, not a
// stream of them, so a pooled encoder would sit idle between calls for
// no benefit. A fresh encoder per call keeps the call self-contained.
//
// The level is zstd.SpeedFastest rather than the teacher's SpeedDefault:
// the bytes being archived here are a flushed zfp buffer, already a
// dense, near-maximum-entropy bit-packed encoding (unlike mebo's
// delta-encoded timestamps, which still carry exploitable redundancy for
// a general-purpose compressor). A higher effort level spends
// substantially more CPU chasing ratio gains a bit-packed buffer won't
// yield.
func (c ZstdCodec) Compress(data []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedFastest),
		zstd.WithEncoderCRC(false),
	)
	if err != nil {
		return nil, fmt.Errorf("archive: failed to create zstd encoder: %w", err)
	}
	defer encoder.Close()

	return encoder.EncodeAll(data, nil), nil
}

// Decompress reverses Compress.
func (c ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	decoder, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		return nil, fmt.Errorf("archive: failed to create zstd decoder: %w", err)
	}
	defer decoder.Close()

	decompressed, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("archive: zstd decompression failed: %w", err)
	}

	return decompressed, nil
}
