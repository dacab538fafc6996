package alloc

import "github.com/heapkit/heapkit/internal/format"

// coalesce merges the free block at bp with its heap-order neighbours and
// inserts the result into the correct bin. bp's header and footer must
// already read free; bp must not be on any list. Returns the payload offset
// of the resulting block.
//
// The four cases dispatch on (PREV_ALLOC of bp, CURR_ALLOC of the next
// block). In every case the block following the result has its PREV_ALLOC
// cleared, and the result keeps the PREV_ALLOC of the earliest absorbed
// block.
func (a *Allocator) coalesce(bp int) int {
	size := a.blockSize(bp)
	prevAlloc := format.PrevAlloc(a.header(bp))
	next := bp + int(size)
	nextAlloc := format.CurrAlloc(a.header(next))

	switch {
	case prevAlloc && nextAlloc:
		a.insert(bp)

	case prevAlloc && !nextAlloc:
		a.stats.CoalesceForward++
		a.remove(next)
		size += a.blockSize(next)
		a.writeHeader(bp, size, true, false)
		a.writeFooter(bp, size, false)
		a.insert(bp)

	case !prevAlloc && nextAlloc:
		a.stats.CoalesceBackward++
		prev := a.prevBlock(bp)
		a.remove(prev)
		size += a.blockSize(prev)
		prevPA := format.PrevAlloc(a.header(prev))
		a.writeHeader(prev, size, prevPA, false)
		a.writeFooter(prev, size, false)
		a.insert(prev)
		bp = prev

	default: // both neighbours free
		a.stats.CoalesceForward++
		a.stats.CoalesceBackward++
		a.remove(next)
		prev := a.prevBlock(bp)
		a.remove(prev)
		size += a.blockSize(next) + a.blockSize(prev)
		prevPA := format.PrevAlloc(a.header(prev))
		a.writeHeader(prev, size, prevPA, false)
		a.writeFooter(prev, size, false)
		a.insert(prev)
		bp = prev
	}

	a.setPrevAlloc(bp+int(a.blockSize(bp)), false)
	return bp
}
