// Package pool provides an amortized-growth word buffer for the bit
// stream, pooled via sync.Pool to avoid repeated allocation across
// many short-lived block encodes.
package pool

import "sync"

// Default growth/threshold constants for WordBuffer, mirroring the
// byte-buffer pool's strategy but counted in words rather than bytes:
// small buffers grow by a fixed chunk, larger ones by 25% of current
// capacity.
const (
	WordBufferDefaultWords  = 256          // 256 words, e.g. 2KiB at 64-bit words
	WordBufferMaxThreshold  = 1024 * 8     // discard pooled buffers larger than this many words
	wordBufferGrowThreshold = 4 * WordBufferDefaultWords
)

// WordBuffer is a growable slice of fixed-width words (the bit stream's
// storage unit). It grows by a fixed chunk of WordBufferDefaultWords
// while small and by 25% of its capacity once large, the same way the
// teacher's byte buffer does, just one level up: in words, not bytes.
type WordBuffer struct {
	W []uint64
}

// NewWordBuffer creates a WordBuffer with the given initial word capacity.
func NewWordBuffer(defaultWords int) *WordBuffer {
	return &WordBuffer{W: make([]uint64, 0, defaultWords)}
}

// Words returns the underlying word slice.
func (wb *WordBuffer) Words() []uint64 { return wb.W }

// Len returns the number of words currently in use.
func (wb *WordBuffer) Len() int { return len(wb.W) }

// Cap returns the word capacity.
func (wb *WordBuffer) Cap() int { return cap(wb.W) }

// Reset empties the buffer while retaining its backing array.
func (wb *WordBuffer) Reset() { wb.W = wb.W[:0] }

// SetLength sets the buffer's length to n words, which must not exceed
// capacity.
func (wb *WordBuffer) SetLength(n int) {
	if n < 0 || n > cap(wb.W) {
		panic("pool: WordBuffer.SetLength out of range")
	}
	wb.W = wb.W[:n]
}

// Grow ensures the buffer can hold at least n more words without
// reallocating.
//
// Growth strategy:
//   - Below wordBufferGrowThreshold words of capacity: grow by
//     WordBufferDefaultWords.
//   - Above it: grow by 25% of current capacity.
//   - Either way, grow by at least n words.
func (wb *WordBuffer) Grow(n int) {
	available := cap(wb.W) - len(wb.W)
	if available >= n {
		return
	}

	growBy := WordBufferDefaultWords
	if cap(wb.W) > wordBufferGrowThreshold {
		growBy = cap(wb.W) / 4
	}
	if growBy < n {
		growBy = n
	}

	newBuf := make([]uint64, len(wb.W), len(wb.W)+growBy)
	copy(newBuf, wb.W)
	wb.W = newBuf
}

// ExtendOrGrow extends the buffer's length by n words, growing the
// backing array first if needed, and zeroing the newly exposed words.
func (wb *WordBuffer) ExtendOrGrow(n int) {
	wb.Grow(n)
	start := len(wb.W)
	wb.W = wb.W[:start+n]
	for i := start; i < start+n; i++ {
		wb.W[i] = 0
	}
}

// WordBufferPool pools WordBuffers to minimize allocations across
// repeated bit-stream encodes.
type WordBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewWordBufferPool creates a pool whose buffers start with defaultWords
// capacity; buffers grown past maxThreshold words are discarded instead
// of being returned to the pool.
func NewWordBufferPool(defaultWords, maxThreshold int) *WordBufferPool {
	return &WordBufferPool{
		pool: sync.Pool{
			New: func() any { return NewWordBuffer(defaultWords) },
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a WordBuffer from the pool.
func (p *WordBufferPool) Get() *WordBuffer {
	wb, _ := p.pool.Get().(*WordBuffer)
	return wb
}

// Put returns a WordBuffer to the pool, discarding it instead if it grew
// past the pool's maxThreshold.
func (p *WordBufferPool) Put(wb *WordBuffer) {
	if wb == nil {
		return
	}
	if p.maxThreshold > 0 && cap(wb.W) > p.maxThreshold {
		return
	}
	wb.Reset()
	p.pool.Put(wb)
}

var defaultWordPool = NewWordBufferPool(WordBufferDefaultWords, WordBufferMaxThreshold)

// GetWordBuffer retrieves a WordBuffer from the package-default pool.
func GetWordBuffer() *WordBuffer { return defaultWordPool.Get() }

// PutWordBuffer returns a WordBuffer to the package-default pool.
func PutWordBuffer(wb *WordBuffer) { defaultWordPool.Put(wb) }
