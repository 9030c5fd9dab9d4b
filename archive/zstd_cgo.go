//go:build nobuild

package archive

import "github.com/valyala/gozstd"

// Compress archives data with Zstandard via gozstd's cgo bindings to the
// reference C library. Disabled by the nobuild tag, mirroring the
// teacher's own choice: a cgo zstd path pulls in a C toolchain
// dependency that isn't available in every build environment this
// module targets, so the pure-Go path in zstd_pure.go is what actually
// ships; this file documents the cgo alternative without gating default
// builds on it.
func (c ZstdCodec) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, 3), nil
}

func (c ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.Decompress(nil, data)
}
