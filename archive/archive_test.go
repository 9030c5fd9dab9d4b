package archive

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TypeNone, "none"},
		{TypeZstd, "zstd"},
		{TypeS2, "s2"},
		{TypeLZ4, "lz4"},
		{Type(0xFF), "Type(255)"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, tt.typ.String())
	}
}

func TestNewAndGetDispatchByType(t *testing.T) {
	for _, typ := range []Type{TypeNone, TypeZstd, TypeS2, TypeLZ4} {
		codec, err := New(typ)
		require.NoError(t, err)
		require.NotNil(t, codec)

		codec2, err := Get(typ)
		require.NoError(t, err)
		require.NotNil(t, codec2)
	}

	_, err := New(Type(0xFF))
	require.Error(t, err)

	_, err = Get(Type(0xFF))
	require.Error(t, err)
}

func TestNoOpCodecRoundTrip(t *testing.T) {
	codec := NewNoOpCodec()

	compressed, err := codec.Compress(nil)
	require.NoError(t, err)
	require.Nil(t, compressed)

	data := []byte("hello world")
	compressed, err = codec.Compress(data)
	require.NoError(t, err)
	require.Equal(t, data, compressed)
	require.Same(t, &data[0], &compressed[0])

	decompressed, err := codec.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

// getAllCodecs returns every built-in Codec, keyed by name, for table-driven
// coverage across the whole archive package.
func getAllCodecs() map[string]Codec {
	return map[string]Codec{
		"NoOp": NewNoOpCodec(),
		"LZ4":  NewLZ4Codec(),
		"S2":   NewS2Codec(),
		"Zstd": NewZstdCodec(),
	}
}

func TestAllCodecsEmptyData(t *testing.T) {
	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(nil)
			require.NoError(t, err)
			require.Nil(t, compressed)

			decompressed, err := codec.Decompress(nil)
			require.NoError(t, err)
			require.Nil(t, decompressed)
		})
	}
}

func TestAllCodecsRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"small_text", []byte("Hello, compressed array archive!")},
		{"repeated_pattern", bytes.Repeat([]byte("ABCD"), 100)},
		{"binary_data", []byte{0x00, 0x01, 0x02, 0x03, 0xFF, 0xFE, 0xFD, 0xFC}},
		{"single_byte", []byte{0x42}},
		{"highly_compressible", make([]byte, 256*1024)},
		{
			"pseudo_random",
			func() []byte {
				data := make([]byte, 4096)
				for i := range data {
					if i%100 < 50 {
						data[i] = byte(i % 256)
					} else {
						data[i] = byte((i*7 + i*i) % 256)
					}
				}
				return data
			}(),
		},
	}

	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			for _, tc := range cases {
				t.Run(tc.name, func(t *testing.T) {
					compressed, err := codec.Compress(tc.data)
					require.NoError(t, err)

					decompressed, err := codec.Decompress(compressed)
					require.NoError(t, err)
					require.Equal(t, tc.data, decompressed)
				})
			}
		})
	}
}

func TestAllCodecsCompressHighlyCompressibleData(t *testing.T) {
	original := make([]byte, 1024*1024)

	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(original)
			require.NoError(t, err)

			if name == "NoOp" {
				require.Equal(t, len(original), len(compressed))
			} else {
				require.Less(t, len(compressed), len(original)/10)
			}

			decompressed, err := codec.Decompress(compressed)
			require.NoError(t, err)
			require.Equal(t, original, decompressed)
		})
	}
}

func TestAllCodecsInvalidData(t *testing.T) {
	invalid := [][]byte{
		{0xFF, 0xFF, 0xFF, 0xFF},
		[]byte("this is not compressed data"),
		{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07},
	}

	for name, codec := range getAllCodecs() {
		if name == "NoOp" {
			continue // NoOp never validates its input
		}
		t.Run(name, func(t *testing.T) {
			for i, data := range invalid {
				t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
					_, err := codec.Decompress(data)
					require.Error(t, err)
				})
			}
		})
	}
}

func TestAllCodecsInterfaceCompliance(t *testing.T) {
	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			var _ Codec = codec
			require.NotNil(t, codec)
		})
	}
}

func TestAllCodecsConcurrentUsage(t *testing.T) {
	const n = 16
	data := []byte("concurrent archive compression test data with enough content to compress")

	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			done := make(chan error, n)
			for range n {
				go func() {
					got, err := codec.Decompress(compressed)
					if err != nil {
						done <- err
						return
					}
					if !bytes.Equal(data, got) {
						done <- fmt.Errorf("mismatch")
						return
					}
					done <- nil
				}()
			}
			for range n {
				require.NoError(t, <-done)
			}
		})
	}
}
