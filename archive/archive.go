// Package archive wraps a compressed array's flushed backing buffer
// (carray.CompressedArray.CompressedData) with a second, general-purpose
// byte codec for cold storage or network transfer. The zfp block codec
// is a fixed-rate entropy stage in its own right (spec §1), so this is
// never required for correctness — it is the supplemental feature
// SPEC_FULL.md's DOMAIN STACK section describes: an optional archival pass over an already
// valid compressed buffer, adapted from the teacher's compress package.
package archive

import "fmt"

// Compressor archives a compressed array's buffer into a second byte
// format for storage or transfer.
type Compressor interface {
	// Compress compresses data and returns the compressed result.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller
	//   - Input slice is not modified
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor's archival pass.
type Decompressor interface {
	// Decompress decompresses data and returns the original bytes.
	//
	// Returns an error if data is corrupted or was archived with a
	// different codec than this Decompressor implements.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both archival directions.
type Codec interface {
	Compressor
	Decompressor
}

// Type identifies a concrete Codec implementation.
type Type uint8

const (
	// TypeNone performs no archival pass.
	TypeNone Type = 0x1
	// TypeZstd archives via Zstandard.
	TypeZstd Type = 0x2
	// TypeS2 archives via S2, klauspost's Snappy-compatible codec.
	TypeS2 Type = 0x3
	// TypeLZ4 archives via LZ4.
	TypeLZ4 Type = 0x4
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeZstd:
		return "zstd"
	case TypeS2:
		return "s2"
	case TypeLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// New is a factory function that creates a Codec for the given Type.
func New(t Type) (Codec, error) {
	switch t {
	case TypeNone:
		return NewNoOpCodec(), nil
	case TypeZstd:
		return NewZstdCodec(), nil
	case TypeS2:
		return NewS2Codec(), nil
	case TypeLZ4:
		return NewLZ4Codec(), nil
	default:
		return nil, fmt.Errorf("archive: invalid codec type: %s", t)
	}
}

var builtinCodecs = map[Type]Codec{
	TypeNone: NewNoOpCodec(),
	TypeZstd: NewZstdCodec(),
	TypeS2:   NewS2Codec(),
	TypeLZ4:  NewLZ4Codec(),
}

// Get retrieves a shared, stateless built-in Codec for t.
func Get(t Type) (Codec, error) {
	if codec, ok := builtinCodecs[t]; ok {
		return codec, nil
	}
	return nil, fmt.Errorf("archive: unsupported codec type: %s", t)
}
