package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heapkit/heapkit/internal/format"
)

// TestSplitKeepsMinimumResidual verifies that carving 48 bytes out of the
// bootstrap 64-byte free block leaves a 16-byte residual on a bin list
// rather than absorbing it.
func TestSplitKeepsMinimumResidual(t *testing.T) {
	a := newSmallAllocator(t)

	// Request 44 -> block of 48, residual 64-48 = 16 = minimum block.
	ref, _ := mustAlloc(t, a, 44)
	require.Equal(t, Ref(format.FirstBlock), ref)

	assert.Equal(t, uint32(48), a.blockSize(int(ref)), "allocated block should be trimmed to 48")

	residual := int(ref) + 48
	assert.Equal(t, uint32(16), a.blockSize(residual), "residual should be exactly 16 bytes")
	assert.False(t, format.CurrAlloc(a.header(residual)), "residual should be free")
	assert.Equal(t, residual, a.head(format.BinIndex(16)), "residual should head its bin")

	assert.Equal(t, 1, a.Stats().SplitCount)
	assertInvariants(t, a)
}

// TestSplitAbsorbsSubMinimumResidual verifies that a residual below the
// minimum block size is absorbed into the allocation as slack.
func TestSplitAbsorbsSubMinimumResidual(t *testing.T) {
	a := newSmallAllocator(t)

	// Request 52 -> block of 56, residual 8 < 16, so the caller gets all 64.
	ref, payload := mustAlloc(t, a, 52)
	require.Equal(t, Ref(format.FirstBlock), ref)

	assert.Equal(t, uint32(64), a.blockSize(int(ref)), "whole block should be absorbed")
	assert.Equal(t, 60, len(payload), "payload spans the block minus its header")

	s := a.Stats()
	assert.Zero(t, s.SplitCount)
	assert.Zero(t, s.FreeBlocks, "no free block should remain")
	assertInvariants(t, a)
}

// TestSplitSameBinResidual drives the in-place list swap: when the residual
// maps to the same bin as the donor block, it takes over the donor's list
// position.
func TestSplitSameBinResidual(t *testing.T) {
	a := newSmallAllocator(t)

	// Carve a 40-byte donor out of the bootstrap block; 40 sits in the
	// smallest bin alongside any residual of at least 16.
	ref1, _ := mustAlloc(t, a, 16) // 24-byte block, residual 40
	residual := int(ref1) + 24
	require.Equal(t, uint32(40), a.blockSize(residual))

	// Request 16 again: 24 from the 40-byte donor leaves 16, same bin.
	ref2, _ := mustAlloc(t, a, 16)
	assert.Equal(t, Ref(residual), ref2, "donor block should satisfy the request")

	tail := int(ref2) + 24
	assert.Equal(t, uint32(16), a.blockSize(tail))
	assert.Equal(t, tail, a.head(format.BinIndex(16)))
	assertInvariants(t, a)
}
