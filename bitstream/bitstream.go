// Package bitstream implements the word-granular, random-access bit
// stream described in spec §4.1: sequential read/write of up to 64 bits
// at a time, independent read/write cursors, seek, flush, and align.
//
// Bits are packed LSB-first: bit 0 of a logical word is the first bit
// written to it. The configured word size (8/16/32/64 bits, default 64)
// only affects the granularity of Align/Flush and of the wire format —
// it has no bearing on how WriteBits/ReadBits pack bits internally.
package bitstream

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/zfpgo/zfp/endian"
	"github.com/zfpgo/zfp/internal/pool"
)

// DefaultWordBits is the bit stream's default word width.
const DefaultWordBits = 64

// validWordBits reports whether bits is one of the four build-time word
// sizes spec §4.1 allows.
func validWordBits(bits int) bool {
	switch bits {
	case 8, 16, 32, 64:
		return true
	default:
		return false
	}
}

// Stream is a bit stream with independent read and write cursors over a
// shared word buffer, matching spec §4.1's description of a single
// bit-addressable backing store that a compressor writes into and a
// decompressor later reads from (including re-reading a block just
// written, as the compressed array's cache does on a cache miss right
// after a write-back).
type Stream struct {
	words    *pool.WordBuffer
	wordBits int
	wpos     int // absolute write position, in bits
	rpos     int // absolute read position, in bits
	pooled   bool
}

// New creates an empty Stream ready for writing, using wordBits as the
// alignment/flush granularity (8, 16, 32, or 64; 0 selects the default).
func New(wordBits int) (*Stream, error) {
	if wordBits == 0 {
		wordBits = DefaultWordBits
	}
	if !validWordBits(wordBits) {
		return nil, fmt.Errorf("bitstream: invalid word size %d, must be 8/16/32/64", wordBits)
	}

	return &Stream{
		words:    pool.GetWordBuffer(),
		wordBits: wordBits,
		pooled:   true,
	}, nil
}

// FromBytes builds a read-only Stream over previously encoded bytes,
// reconstituting the internal word slice from the spec's fixed
// little-endian-on-disk layout regardless of host byte order.
func FromBytes(data []byte, wordBits int) (*Stream, error) {
	if wordBits == 0 {
		wordBits = DefaultWordBits
	}
	if !validWordBits(wordBits) {
		return nil, fmt.Errorf("bitstream: invalid word size %d, must be 8/16/32/64", wordBits)
	}

	nWords := (len(data) + 7) / 8
	wb := pool.NewWordBuffer(nWords)
	wb.ExtendOrGrow(nWords)
	for i := 0; i < nWords; i++ {
		var chunk [8]byte
		start := i * 8
		end := start + 8
		if end > len(data) {
			end = len(data)
		}
		copy(chunk[:], data[start:end])
		wb.W[i] = binary.LittleEndian.Uint64(chunk[:])
	}

	return &Stream{
		words:    wb,
		wordBits: wordBits,
		wpos:     len(data) * 8,
	}, nil
}

// Release returns the Stream's backing buffer to the package pool. Only
// call this on streams created with New; streams built with FromBytes
// own a private buffer and Release is a no-op for them.
func (s *Stream) Release() {
	if s.pooled {
		pool.PutWordBuffer(s.words)
		s.words = nil
		s.pooled = false
	}
}

// ensureBit grows the backing word slice so bit position pos is
// addressable.
func (s *Stream) ensureBit(pos int) {
	need := pos/64 + 1
	for s.words.Len() < need {
		s.words.ExtendOrGrow(1)
	}
}

// Reserve pre-grows the backing word slice to hold at least nBits bits,
// without moving the write cursor. A threaded driver calls this once,
// before spawning workers, so each worker's WriterAt can write into its
// own disjoint bit range without any worker triggering a concurrent
// buffer growth.
func (s *Stream) Reserve(nBits int) {
	if nBits > 0 {
		s.ensureBit(nBits - 1)
	}
}

// WriterAt returns a cursor for writing bits at explicit, caller-managed
// absolute bit positions, bypassing the stream's own write cursor. It is
// safe for concurrent use by multiple WriterAt cursors over the same
// Stream as long as the backing buffer has already been sized with
// Reserve and the bit ranges each cursor writes are disjoint: each write
// only ever touches the uint64 words its own range covers, which are
// distinct memory locations from another range's words (Go's race
// detector flags conflicting access to the same location, not concurrent
// writes to different elements of one slice).
func (s *Stream) WriterAt(pos int) *Cursor {
	return &Cursor{words: s.words.W, pos: pos}
}

// Cursor is a position-explicit bit writer over a shared word slice; see
// Stream.WriterAt.
type Cursor struct {
	words []uint64
	pos   int
}

// WriteBits writes the low n bits of x starting at the cursor's current
// position and advances it by n, exactly like Stream.WriteBits but
// against an explicit, non-shared position.
func (c *Cursor) WriteBits(x uint64, n int) {
	if n <= 0 {
		return
	}
	if n > 64 {
		panic("bitstream: Cursor.WriteBits: n must be <= 64")
	}
	if n < 64 {
		x &= (uint64(1) << uint(n)) - 1
	}

	written := 0
	for written < n {
		wordIdx := c.pos / 64
		bitOff := uint(c.pos % 64)

		avail := 64 - int(bitOff)
		take := n - written
		if take > avail {
			take = avail
		}

		var mask uint64
		if take == 64 {
			mask = ^uint64(0)
		} else {
			mask = (uint64(1) << uint(take)) - 1
		}
		chunk := (x >> uint(written)) & mask

		c.words[wordIdx] |= chunk << bitOff
		written += take
		c.pos += take
	}
}

// WriteBit writes a single bit.
func (c *Cursor) WriteBit(b uint64) { c.WriteBits(b&1, 1) }

// Pad writes n zero bits, matching Stream.Pad.
func (c *Cursor) Pad(n int) {
	for n > 0 {
		chunk := n
		if chunk > 64 {
			chunk = 64
		}
		c.WriteBits(0, chunk)
		n -= chunk
	}
}

// ReaderAt returns a cursor for reading bits at explicit, caller-managed
// absolute bit positions, the read-side counterpart to WriterAt.
func (s *Stream) ReaderAt(pos int) *ReadCursor {
	return &ReadCursor{words: s.words.W, pos: pos}
}

// ReadCursor is a position-explicit bit reader; see Stream.ReaderAt.
type ReadCursor struct {
	words []uint64
	pos   int
}

// ReadBits reads n bits starting at the cursor's current position and
// advances it by n. Positions past the end of the backing buffer read as
// zero, same as Stream.ReadBits.
func (c *ReadCursor) ReadBits(n int) uint64 {
	if n <= 0 {
		return 0
	}
	if n > 64 {
		panic("bitstream: ReadCursor.ReadBits: n must be <= 64")
	}

	var result uint64
	read := 0
	for read < n {
		wordIdx := c.pos / 64
		bitOff := uint(c.pos % 64)

		var word uint64
		if wordIdx >= 0 && wordIdx < len(c.words) {
			word = c.words[wordIdx]
		}

		avail := 64 - int(bitOff)
		take := n - read
		if take > avail {
			take = avail
		}

		var mask uint64
		if take == 64 {
			mask = ^uint64(0)
		} else {
			mask = (uint64(1) << uint(take)) - 1
		}
		chunk := (word >> bitOff) & mask

		result |= chunk << uint(read)
		read += take
		c.pos += take
	}

	return result
}

// ReadBit reads a single bit.
func (c *ReadCursor) ReadBit() uint64 { return c.ReadBits(1) }

// WriteBits appends the low n bits of x (0 <= n <= 64), in order of
// increasing position, i.e. bit 0 of x is written first and ends up as
// the lowest unwritten bit of the stream.
func (s *Stream) WriteBits(x uint64, n int) {
	if n <= 0 {
		return
	}
	if n > 64 {
		panic("bitstream: WriteBits: n must be <= 64")
	}
	if n < 64 {
		x &= (uint64(1) << uint(n)) - 1
	}

	written := 0
	for written < n {
		wordIdx := s.wpos / 64
		bitOff := uint(s.wpos % 64)
		s.ensureBit(s.wpos)

		avail := 64 - int(bitOff)
		take := n - written
		if take > avail {
			take = avail
		}

		var mask uint64
		if take == 64 {
			mask = ^uint64(0)
		} else {
			mask = (uint64(1) << uint(take)) - 1
		}
		chunk := (x >> uint(written)) & mask

		s.words.W[wordIdx] |= chunk << bitOff
		written += take
		s.wpos += take
	}
}

// WriteBit writes a single bit (the low bit of b).
func (s *Stream) WriteBit(b uint64) { s.WriteBits(b&1, 1) }

// ReadBits returns the next n bits (0 <= n <= 64), zero-extended, without
// disturbing the write cursor. Bits past the end of what has been
// written decode as zero, matching spec §4.2's graceful-degradation rule
// for truncated streams.
func (s *Stream) ReadBits(n int) uint64 {
	if n <= 0 {
		return 0
	}
	if n > 64 {
		panic("bitstream: ReadBits: n must be <= 64")
	}

	var result uint64
	read := 0
	for read < n {
		wordIdx := s.rpos / 64
		bitOff := uint(s.rpos % 64)

		var word uint64
		if wordIdx < s.words.Len() {
			word = s.words.W[wordIdx]
		}

		avail := 64 - int(bitOff)
		take := n - read
		if take > avail {
			take = avail
		}

		var mask uint64
		if take == 64 {
			mask = ^uint64(0)
		} else {
			mask = (uint64(1) << uint(take)) - 1
		}
		chunk := (word >> bitOff) & mask

		result |= chunk << uint(read)
		read += take
		s.rpos += take
	}

	return result
}

// ReadBit reads a single bit.
func (s *Stream) ReadBit() uint64 { return s.ReadBits(1) }

// Pad writes n zero bits.
func (s *Stream) Pad(n int) {
	for n > 0 {
		chunk := n
		if chunk > 64 {
			chunk = 64
		}
		s.WriteBits(0, chunk)
		n -= chunk
	}
}

// Flush writes zero bits until the write cursor reaches the next word
// boundary (per the stream's configured word size) and returns how many
// zero bits it wrote (0..wordBits-1).
func (s *Stream) Flush() int {
	rem := s.wpos % s.wordBits
	if rem == 0 {
		return 0
	}
	zeros := s.wordBits - rem
	s.Pad(zeros)

	return zeros
}

// AlignWrite rounds the write position up to the next word boundary,
// without necessarily materializing written zero bits (the freshly
// grown word slice is already zero-initialized).
func (s *Stream) AlignWrite() {
	rem := s.wpos % s.wordBits
	if rem == 0 {
		return
	}
	s.wpos += s.wordBits - rem
	s.ensureBit(s.wpos - 1)
}

// AlignRead rounds the read position up to the next word boundary.
func (s *Stream) AlignRead() {
	rem := s.rpos % s.wordBits
	if rem != 0 {
		s.rpos += s.wordBits - rem
	}
}

// WSeek sets the absolute write position, in bits, from the start of the
// stream.
func (s *Stream) WSeek(pos int) {
	if pos < 0 {
		panic("bitstream: WSeek: negative position")
	}
	if pos > 0 {
		s.ensureBit(pos - 1)
	}
	s.wpos = pos
}

// RSeek sets the absolute read position, in bits, from the start of the
// stream.
func (s *Stream) RSeek(pos int) {
	if pos < 0 {
		panic("bitstream: RSeek: negative position")
	}
	s.rpos = pos
}

// TellW returns the current write position, in bits.
func (s *Stream) TellW() int { return s.wpos }

// TellR returns the current read position, in bits.
func (s *Stream) TellR() int { return s.rpos }

// Rewind resets the read cursor to the start of the stream; the write
// cursor and the written words are left as they are. This is the usual way
// to switch a stream from "just finished writing" to "about to be
// decoded from the top", e.g. re-decoding a block the cache just wrote.
func (s *Stream) Rewind() {
	s.rpos = 0
}

// Bytes returns the encoded bit stream as a byte slice, sized to the
// current write position (ceil(TellW()/8) bytes), serialized in the
// spec's fixed little-endian-on-disk word layout regardless of host byte
// order. The returned slice is a copy; callers may retain and mutate it
// freely.
func (s *Stream) Bytes() []byte {
	return s.BytesN((s.wpos + 7) / 8)
}

// BytesN is Bytes with an explicit byte count rather than one derived
// from the write cursor, for callers that pre-size their own buffer (a
// compressed array's backing store is sized once, at construction, from
// its fixed per-block bit budget, never from a write cursor that might
// lag behind blocks written out of order through random-access Cursors).
func (s *Stream) BytesN(nBytes int) []byte {
	out := make([]byte, nBytes)

	var chunk [8]byte
	for i := 0; i*8 < nBytes; i++ {
		var word uint64
		if i < s.words.Len() {
			word = s.words.W[i]
		}
		binary.LittleEndian.PutUint64(chunk[:], word)
		copy(out[i*8:], chunk[:min(8, nBytes-i*8)])
	}

	return out
}

// ZeroRange clears nBits starting at startBit back to zero, without
// moving either cursor. WriteBits/Cursor.WriteBits OR new bits into the
// backing words, which is correct the first time a range is written but
// cannot by itself clear a stale 1 bit left over from a previous encode
// of the same range — exactly the situation a compressed array's
// write-back cache creates when it re-encodes a block into the offset it
// already occupied. Callers that overwrite a previously-written range
// must ZeroRange it first.
func (s *Stream) ZeroRange(startBit, nBits int) {
	if nBits <= 0 {
		return
	}
	s.ensureBit(startBit + nBits - 1)

	pos, end := startBit, startBit+nBits
	for pos < end {
		wordIdx := pos / 64
		bitOff := uint(pos % 64)
		avail := 64 - int(bitOff)
		take := end - pos
		if take > avail {
			take = avail
		}

		var mask uint64
		if take == 64 {
			mask = ^uint64(0)
		} else {
			mask = (uint64(1) << uint(take)) - 1
		}
		s.words.W[wordIdx] &^= mask << bitOff
		pos += take
	}
}

// RawHostView returns a zero-copy view of the stream's backing words,
// interpreted directly as host-native memory the way the original C
// implementation's raw word array would be. On a little-endian host this
// is byte-identical to Bytes(); on a big-endian host it is NOT, and the
// caller must run endian.SwapWords(view, 64) before treating it as the
// canonical wire format (spec §4.1, §6). Prefer Bytes() unless avoiding
// the copy is worth reasoning about host order explicitly.
func (s *Stream) RawHostView() []byte {
	nBytes := (s.wpos + 7) / 8
	if s.words.Len() == 0 {
		return nil
	}

	full := unsafe.Slice((*byte)(unsafe.Pointer(&s.words.W[0])), s.words.Len()*8)

	return full[:nBytes]
}

// WireBytes returns the canonical little-endian wire bytes derived from
// RawHostView, applying endian.SwapWords only when the host is
// big-endian. This is functionally equivalent to Bytes() but goes
// through the zero-copy + conditional swap path, exercising the same
// code a pluggable offload backend would use to hand a raw device buffer
// back to the core.
func (s *Stream) WireBytes() []byte {
	raw := s.RawHostView()
	out := make([]byte, len(raw))
	copy(out, raw)
	if !endian.IsNativeLittleEndian() {
		endian.SwapWords(out, 64)
	}

	return out
}
