package archive

// ZstdCodec archives via Zstandard at klauspost's fastest level (see
// zstd_pure.go for why a higher level buys little on already-dense
// compressed-array buffers). The Compress/Decompress methods that are
// compiled live in zstd_pure.go (pure Go, klauspost/compress/zstd);
// zstd_cgo.go (cgo, valyala/gozstd) sits behind the nobuild tag, the
// same split the teacher uses.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a Zstd archival codec with default settings.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}
