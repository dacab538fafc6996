package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/heapkit/heapkit/heap"
	"github.com/heapkit/heapkit/heap/verify"
	"github.com/heapkit/heapkit/internal/format"
)

// ============================================================================
// Allocator Creation Utilities
// ============================================================================

// newTestAllocator creates an allocator over a fresh region capped at max
// bytes. The region is closed when the test ends.
func newTestAllocator(t testing.TB, max int) *Allocator {
	t.Helper()

	r, err := heap.NewRegion(max)
	require.NoError(t, err, "NewRegion should succeed")
	t.Cleanup(func() { _ = r.Close() })

	a, err := New(r)
	require.NoError(t, err, "New should succeed")
	return a
}

// newSmallAllocator creates an allocator over a 1MB region, enough for every
// test that does not exercise growth limits.
func newSmallAllocator(t testing.TB) *Allocator {
	t.Helper()
	return newTestAllocator(t, 1<<20)
}

// assertInvariants runs the full structural checker over the live heap.
func assertInvariants(t testing.TB, a *Allocator) {
	t.Helper()
	require.NoError(t, verify.All(a.r.Bytes()), "heap invariants should hold")
}

// mustAlloc allocates and fails the test on error.
func mustAlloc(t testing.TB, a *Allocator, size uint32) (Ref, []byte) {
	t.Helper()
	ref, payload, err := a.Alloc(size)
	require.NoError(t, err, "Alloc(%d) should succeed", size)
	require.NotEqual(t, Ref(0), ref, "Alloc(%d) should return a real ref", size)
	return ref, payload
}

// freeBlockCount walks the heap from the first block to the epilogue and
// counts blocks whose CURR_ALLOC bit is clear.
func freeBlockCount(a *Allocator) int {
	n := 0
	for bp := format.FirstBlock; a.blockSize(bp) != 0; bp = a.nextBlock(bp) {
		if !format.CurrAlloc(a.header(bp)) {
			n++
		}
	}
	return n
}
