package archive

import "github.com/klauspost/compress/s2"

// S2Codec archives via S2, klauspost's Snappy-compatible format tuned
// for throughput rather than ratio — a reasonable default when a
// compressed array is archived and re-read frequently.
type S2Codec struct{}

var _ Codec = (*S2Codec)(nil)

// NewS2Codec creates an S2 archival codec.
func NewS2Codec() S2Codec {
	return S2Codec{}
}

// Compress archives data with S2.
func (c S2Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress reverses Compress.
func (c S2Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}
