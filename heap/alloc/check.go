package alloc

import (
	"fmt"
	"os"

	"github.com/heapkit/heapkit/heap/verify"
	"github.com/heapkit/heapkit/internal/format"
)

// CheckHeap verifies every heap invariant and aborts the process with a
// diagnostic when one fails. line identifies the call site in the
// diagnostic. The checker never allocates from the heap it is inspecting;
// it is the last line of defence against a corrupt heap.
func (a *Allocator) CheckHeap(line int) {
	if err := verify.All(a.bytes()); err != nil {
		fmt.Fprintf(os.Stderr, "heap check failed (line %d): %v\n", line, err)
		if debugAlloc {
			a.dumpHeap(os.Stderr)
		}
		os.Exit(1)
	}
}

// dumpHeap writes a block-by-block listing of the heap for debugging.
func (a *Allocator) dumpHeap(w *os.File) {
	fmt.Fprintf(w, "heap: %d bytes, lo=0x%X hi=0x%X\n", a.r.Size(), a.r.Lo(), a.r.Hi())
	for bin := range format.NumBins {
		fmt.Fprintf(w, "bin %d head: 0x%X\n", bin, a.head(bin))
	}

	bp := format.FirstBlock
	for {
		h := a.header(bp)
		size := format.Size(h)
		if size == 0 {
			fmt.Fprintf(w, "  0x%X: epilogue (prev_alloc=%v)\n", bp, format.PrevAlloc(h))
			return
		}
		if format.CurrAlloc(h) {
			fmt.Fprintf(w, "  0x%X: alloc size=%d prev_alloc=%v\n",
				bp, size, format.PrevAlloc(h))
		} else {
			a.dumpFreeBlock(w, bp)
		}
		bp += int(size)
	}
}

// dumpFreeBlock writes one free block's metadata, links included.
func (a *Allocator) dumpFreeBlock(w *os.File, bp int) {
	h := a.header(bp)
	size := format.Size(h)
	fmt.Fprintf(w, "  0x%X: free  size=%d prev_alloc=%v pred=0x%X succ=0x%X bin=%d\n",
		bp, size, format.PrevAlloc(h), a.predWord(bp), a.succWord(bp),
		format.BinIndex(size))
}
