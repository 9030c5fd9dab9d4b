// Package checksum provides the deterministic data hashes spec §2's
// "checksum/test harness (≈5%)" component describes but never gives a
// concrete shape for: a CRC32 helper for pinning a compressed block's
// emitted bytes against a fixed reference hash (spec §8 scenario 2), an
// xxHash64 helper grounded on the teacher's internal/hash.ID, and a small
// ConformanceSuite harness for folding a whole sequence of encode/decode
// round trips into one digest a test can pin a golden value against.
package checksum

import (
	"hash/crc32"

	"github.com/cespare/xxhash/v2"
)

// BlockCRC32 returns the IEEE CRC-32 checksum of data. Stdlib hash/crc32
// is used here rather than a third-party CRC implementation: CRC32 is
// the exact algorithm spec §8 scenario 2 names, the standard library's
// implementation is the canonical IEEE polynomial table already used
// throughout the Go ecosystem for this, and no example repo in the pack
// wraps a third-party CRC32 (see DESIGN.md).
func BlockCRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// BlockXXHash64 returns the 64-bit xxHash of data, grounded on the
// teacher's internal/hash.ID (which hashes a string via
// xxhash.Sum64String); generalized to raw bytes here since a compressed
// block or buffer is binary, not textual.
func BlockXXHash64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// RoundTrip is one conformance-suite sample: a labeled encode/decode
// round trip's byte payloads.
type RoundTrip struct {
	Label   string
	Encoded []byte
	Decoded []byte
}

// ConformanceSuite accumulates a sequence of encode/decode round trips
// and folds them into one running xxHash64 digest (spec §2's "checksum/
// test harness" component). Folding every sample into a single digest,
// rather than keeping a list of per-sample hashes, is deliberate: a
// conformance run either reproduces a fixed reference digest bit-for-bit
// or it doesn't, and one final value is what a test fixture pins against
// a golden constant.
type ConformanceSuite struct {
	samples []RoundTrip
}

// Add records one round trip's encoded and decoded payloads under label.
func (c *ConformanceSuite) Add(label string, encoded, decoded []byte) {
	c.samples = append(c.samples, RoundTrip{Label: label, Encoded: encoded, Decoded: decoded})
}

// Len reports how many round trips have been recorded.
func (c *ConformanceSuite) Len() int { return len(c.samples) }

// Digest folds every recorded sample, in recording order, into a single
// xxHash64 value: each sample contributes its label, encoded bytes, and
// decoded bytes, each length-prefixed so two differently-segmented but
// byte-identical concatenations never collide. Two suites produce the
// same digest only if they recorded the same samples, in the same order,
// with identical content.
func (c *ConformanceSuite) Digest() uint64 {
	var buf []byte
	for _, s := range c.samples {
		buf = appendLenPrefixed(buf, []byte(s.Label))
		buf = appendLenPrefixed(buf, s.Encoded)
		buf = appendLenPrefixed(buf, s.Decoded)
	}
	return xxhash.Sum64(buf)
}

// Mismatches compares every recorded sample's Encoded bytes against a
// reference CRC32 keyed by label (e.g. a fixed-hash table pinned per
// spec §8 scenario 2), returning the labels whose CRC32 doesn't match.
// Labels absent from reference are not checked.
func (c *ConformanceSuite) Mismatches(reference map[string]uint32) []string {
	var bad []string
	for _, s := range c.samples {
		want, ok := reference[s.Label]
		if !ok {
			continue
		}
		if BlockCRC32(s.Encoded) != want {
			bad = append(bad, s.Label)
		}
	}
	return bad
}

func appendLenPrefixed(buf, data []byte) []byte {
	var lenBytes [8]byte
	n := len(data)
	for i := 0; i < 8; i++ {
		lenBytes[i] = byte(n >> uint(8*i))
	}
	buf = append(buf, lenBytes[:]...)
	return append(buf, data...)
}
