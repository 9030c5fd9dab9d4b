package archive

// NoOpCodec archives data by passing it through unchanged. Useful for
// benchmarking the archival stage's overhead in isolation, or for
// disabling archival without changing call sites.
type NoOpCodec struct{}

var _ Codec = (*NoOpCodec)(nil)

// NewNoOpCodec creates a codec that bypasses archival entirely.
func NewNoOpCodec() NoOpCodec {
	return NoOpCodec{}
}

// Compress returns data unchanged. The returned slice aliases the input;
// callers must not mutate data afterward if they retain the result.
func (c NoOpCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data unchanged, mirroring Compress.
func (c NoOpCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
