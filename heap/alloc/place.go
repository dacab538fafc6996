package alloc

import "github.com/heapkit/heapkit/internal/format"

// place converts the prefix of the free block at bp into an allocated block
// of asize bytes. The caller guarantees asize ≤ size(bp) and that bp sits
// on a bin list. If the residual would be at least a minimum block, the
// block is split and the residual stays free; otherwise the whole block is
// absorbed and the trailing bytes become slack. Returns the payload offset
// of the allocated block.
func (a *Allocator) place(bp int, asize uint32) int {
	csize := a.blockSize(bp)
	prevAlloc := format.PrevAlloc(a.header(bp))
	rem := csize - asize

	if rem >= format.MinBlockSize {
		a.stats.SplitCount++
		residual := bp + int(asize)

		if format.BinIndex(rem) == format.BinIndex(csize) {
			// Residual stays in the same bin: swap it into the old
			// block's list position without walking the list. The old
			// link words are still intact because only the two headers
			// and the residual's footer are rewritten here, none of
			// which overlaps them.
			a.writeHeader(bp, asize, prevAlloc, true)
			a.writeHeader(residual, rem, true, false)
			a.writeFooter(residual, rem, false)
			a.replace(bp, residual)
		} else {
			a.remove(bp)
			a.writeHeader(bp, asize, prevAlloc, true)
			a.writeHeader(residual, rem, true, false)
			a.writeFooter(residual, rem, false)
			a.insert(residual)
		}
		// The block after the residual already saw a free predecessor.
		a.setPrevAlloc(residual+int(rem), false)
		return bp
	}

	a.remove(bp)
	a.writeHeader(bp, csize, prevAlloc, true)
	a.setPrevAlloc(bp+int(csize), true)
	return bp
}
