package pool

import "testing"

func TestWordBufferGrowPreservesContent(t *testing.T) {
	wb := NewWordBuffer(2)
	wb.ExtendOrGrow(2)
	wb.W[0] = 0xAAAA
	wb.W[1] = 0xBBBB

	wb.Grow(100)
	if wb.W[0] != 0xAAAA || wb.W[1] != 0xBBBB {
		t.Fatalf("Grow corrupted existing words: %v", wb.W)
	}
	if cap(wb.W) < 102 {
		t.Fatalf("Grow did not reserve enough capacity: cap=%d", cap(wb.W))
	}
}

func TestWordBufferPoolRoundTrip(t *testing.T) {
	p := NewWordBufferPool(4, 16)
	wb := p.Get()
	wb.ExtendOrGrow(4)
	wb.W[0] = 42

	p.Put(wb)

	wb2 := p.Get()
	if wb2.Len() != 0 {
		t.Fatalf("pooled buffer was not reset, len=%d", wb2.Len())
	}
}

func TestWordBufferPoolDiscardsOversized(t *testing.T) {
	p := NewWordBufferPool(4, 8)
	wb := p.Get()
	wb.Grow(100)
	p.Put(wb) // should be discarded, not reset-and-pooled

	wb2 := p.Get()
	if wb2.Cap() > 100 {
		t.Fatalf("expected a fresh small buffer, got cap=%d", wb2.Cap())
	}
}
