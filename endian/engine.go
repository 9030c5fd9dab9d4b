// Package endian provides byte-order utilities for the bit stream's
// word-granular storage.
//
// The compressed stream format fixes its on-disk word order to
// little-endian (spec §4.1, §6) regardless of the host's native byte
// order. This package supplies host-endianness detection and a
// word-granular byte-swap helper, which bitstream.Stream.WireBytes uses
// to turn a host-order word view into that layout on big-endian hosts.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary
// into one interface, satisfied by binary.LittleEndian and
// binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte
// order.
func CheckEndianness() binary.ByteOrder {
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittleEndian reports whether the host is little-endian.
func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

// GetLittleEndianEngine returns the little-endian engine, the wire order
// the compressed stream format always uses.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// SwapWords byte-swaps every word of the given bit width in place within
// buf. wordBits must be one of 8, 16, 32, 64; 8 is a no-op. len(buf) must
// be a multiple of wordBits/8.
//
// bitstream.Stream.WireBytes calls this on a copy of the stream's raw
// host-order words when the host is big-endian, so the result matches the
// spec's fixed little-endian-on-disk layout. Bytes, BytesN and FromBytes
// do not use it; they encode and decode each word as little-endian
// directly.
func SwapWords(buf []byte, wordBits int) {
	switch wordBits {
	case 8:
		return
	case 16:
		for i := 0; i+2 <= len(buf); i += 2 {
			buf[i], buf[i+1] = buf[i+1], buf[i]
		}
	case 32:
		for i := 0; i+4 <= len(buf); i += 4 {
			buf[i], buf[i+1], buf[i+2], buf[i+3] = buf[i+3], buf[i+2], buf[i+1], buf[i]
		}
	case 64:
		for i := 0; i+8 <= len(buf); i += 8 {
			buf[i], buf[i+1], buf[i+2], buf[i+3], buf[i+4], buf[i+5], buf[i+6], buf[i+7] =
				buf[i+7], buf[i+6], buf[i+5], buf[i+4], buf[i+3], buf[i+2], buf[i+1], buf[i]
		}
	}
}
