package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackRoundTrip(t *testing.T) {
	tests := []struct {
		size      uint32
		prevAlloc bool
		currAlloc bool
	}{
		{16, false, false},
		{16, true, false},
		{16, false, true},
		{16, true, true},
		{4096, true, false},
		{0, true, true}, // epilogue shape
	}
	for _, tt := range tests {
		w := Pack(tt.size, tt.prevAlloc, tt.currAlloc)
		assert.Equal(t, tt.size, Size(w))
		assert.Equal(t, tt.prevAlloc, PrevAlloc(w))
		assert.Equal(t, tt.currAlloc, CurrAlloc(w))
	}
}

func TestPackMasksLowBits(t *testing.T) {
	// A size with stray low bits must not leak into the flag bits.
	w := Pack(17, false, false)
	assert.Equal(t, uint32(16), Size(w))
	assert.False(t, CurrAlloc(w))
	assert.False(t, PrevAlloc(w))
}

func TestPackFooterDropsPrevAlloc(t *testing.T) {
	w := PackFooter(64, true)
	assert.Equal(t, uint32(64), Size(w))
	assert.True(t, CurrAlloc(w))
	assert.False(t, PrevAlloc(w), "footers never carry PREV_ALLOC")
}

func TestSetPrevAlloc(t *testing.T) {
	w := Pack(32, false, true)
	assert.True(t, PrevAlloc(SetPrevAlloc(w, true)))
	assert.False(t, PrevAlloc(SetPrevAlloc(SetPrevAlloc(w, true), false)))
	assert.Equal(t, uint32(32), Size(SetPrevAlloc(w, true)), "size must be untouched")
	assert.True(t, CurrAlloc(SetPrevAlloc(w, true)))
}

func TestBinIndexBoundaries(t *testing.T) {
	tests := []struct {
		size uint32
		bin  int
	}{
		{16, 0},
		{50, 0},
		{51, 1},
		{100, 1},
		{101, 2},
		{1000, 2},
		{1001, 3},
		{2000, 3},
		{2001, 4},
		{3000, 4},
		{3001, 5},
		{4500, 5},
		{4501, 6},
		{1 << 20, 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.bin, BinIndex(tt.size), "BinIndex(%d)", tt.size)
	}
}

func TestAlign8(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 0},
		{1, 8},
		{7, 8},
		{8, 8},
		{9, 16},
		{4095, 4096},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Align8(tt.in), "Align8(%d)", tt.in)
		assert.Equal(t, uint32(tt.want), Align8U32(uint32(tt.in)), "Align8U32(%d)", tt.in)
	}

	assert.True(t, Aligned8(16))
	assert.False(t, Aligned8(12))
}

func TestLayoutConstants(t *testing.T) {
	// The prologue payload and every block payload must land on an 8-byte
	// boundary given the head array and padding word.
	assert.Zero(t, ProloguePayload%DWordSize)
	assert.Zero(t, FirstBlock%DWordSize)
	assert.Equal(t, HeadArraySize+WordSize, PrologueHeader)
	assert.Equal(t, FirstBlock, BaseSize)

	for bin := range NumBins {
		assert.Equal(t, bin*BinSlotSize, HeadSlot(bin))
	}
	assert.Less(t, HeadSlot(NumBins-1)+BinSlotSize, PrologueHeader+WordSize,
		"head array must fit below the prologue")
}
