package alloc

import (
	"fmt"
	"os"

	"github.com/heapkit/heapkit/internal/format"
)

// extendHeap grows the region by the given number of words, rounded up to
// an even count to keep payloads 8-byte aligned, and carves the new bytes
// into a free block. The old epilogue header becomes the new block's
// header; a fresh epilogue is written one word past the new block. The new
// block is handed to coalescing, so the returned payload offset may point
// at a merged block that began before the extension.
func (a *Allocator) extendHeap(words int) (int, error) {
	if words%2 != 0 {
		words++
	}
	nbytes := words * format.WordSize

	off, err := a.r.Extend(nbytes)
	if err != nil {
		return 0, fmt.Errorf("%w: extending by %d bytes: %v", ErrGrowFail, nbytes, err)
	}
	a.stats.GrowCalls++
	a.stats.GrowBytes += int64(nbytes)

	if logAlloc {
		fmt.Fprintf(os.Stderr, "[GROW] #%d: +%d bytes, heap now %d bytes\n",
			a.stats.GrowCalls, nbytes, a.r.Size())
	}

	// The region handed back the bytes starting at the old break, which is
	// exactly the old epilogue's would-be payload. Its header word already
	// carries the PREV_ALLOC of the last real block.
	bp := off
	prevAlloc := format.PrevAlloc(a.header(bp))
	size := uint32(nbytes)
	a.writeHeader(bp, size, prevAlloc, false)
	a.writeFooter(bp, size, false)

	// New epilogue: size 0, allocated, preceded by the new free block.
	epilogue := bp + int(size)
	a.setHeader(epilogue, format.Pack(0, false, true))

	return a.coalesce(bp), nil
}
