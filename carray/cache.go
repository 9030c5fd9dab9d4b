package carray

// cacheSlot holds one decoded block's full 4^d samples, including
// whatever padding lanes beyond the block's valid extent decoded to
// (initially all zero, since a freshly allocated backing buffer decodes
// every block as all-zero — see CompressedArray.readBlock). Padding
// lanes are never addressed by Get/Set, only ever round-tripped through
// encode/decode as part of the block, so they only need to stay
// self-consistent across write-back cycles, not replicate a "true" edge
// value the way block.Gather does for a field compress.
type cacheSlot[T Scalar] struct {
	valid    bool
	dirty    bool
	blockIdx int
	data     []T
}

// blockCache is a direct-mapped, write-back cache of decoded blocks
// (spec §4.5, §9: "direct-mapped table keyed by block index modulo table
// size... set-associativity >= 1 is acceptable"). This implementation
// uses associativity 1, the minimum the spec allows.
type blockCache[T Scalar] struct {
	slots []cacheSlot[T]
}

func newBlockCache[T Scalar](nSlots, blockSize int) *blockCache[T] {
	slots := make([]cacheSlot[T], nSlots)
	for i := range slots {
		slots[i].data = make([]T, blockSize)
	}
	return &blockCache[T]{slots: slots}
}

func (c *blockCache[T]) slotFor(blockIdx int) int {
	return blockIdx % len(c.slots)
}
