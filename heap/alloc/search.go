package alloc

import "github.com/heapkit/heapkit/internal/format"

// findFit returns the payload offset of the first free block that can hold
// asize bytes, scanning the target bin in list order and then each larger
// bin. Returns 0 when every bin is exhausted.
//
// Lists are LIFO, so "first fit" means most-recently inserted; no ordering
// by size is maintained within a bin.
func (a *Allocator) findFit(asize uint32) int {
	for bin := format.BinIndex(asize); bin < format.NumBins; bin++ {
		for bp := a.head(bin); bp != 0; bp = a.succBlock(bp) {
			if a.blockSize(bp) >= asize {
				return bp
			}
		}
	}
	return 0
}
