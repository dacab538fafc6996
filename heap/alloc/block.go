package alloc

import (
	"github.com/heapkit/heapkit/internal/buf"
	"github.com/heapkit/heapkit/internal/format"
)

// Block metadata access. Blocks are identified by their payload offset (bp)
// from the heap base. The header word sits at bp-4; the footer of a free
// block sits at bp+size-8, just below the next block's header.

func (a *Allocator) bytes() []byte {
	return a.r.Bytes()
}

// header reads the header word of the block at bp.
func (a *Allocator) header(bp int) uint32 {
	return buf.ReadU32(a.bytes(), bp-format.WordSize)
}

// setHeader overwrites the header word of the block at bp.
func (a *Allocator) setHeader(bp int, w uint32) {
	buf.PutU32LE(a.bytes(), bp-format.WordSize, w)
}

// blockSize reads the size of the block at bp from its header.
func (a *Allocator) blockSize(bp int) uint32 {
	return format.Size(a.header(bp))
}

// writeHeader writes a full header word for the block at bp.
func (a *Allocator) writeHeader(bp int, size uint32, prevAlloc, currAlloc bool) {
	a.setHeader(bp, format.Pack(size, prevAlloc, currAlloc))
}

// writeFooter writes the footer word of the free block at bp. Callers must
// have written the header first; the footer position derives from the size.
func (a *Allocator) writeFooter(bp int, size uint32, currAlloc bool) {
	buf.PutU32LE(a.bytes(), bp+int(size)-2*format.WordSize, format.PackFooter(size, currAlloc))
}

// nextBlock returns the payload offset of the block following bp in heap
// order. Calling it on the epilogue (size 0) would not advance.
func (a *Allocator) nextBlock(bp int) int {
	return bp + int(a.blockSize(bp))
}

// prevBlock returns the payload offset of the block preceding bp. The
// preceding block must be free (checked via PREV_ALLOC by the caller), as
// only free blocks carry the footer this reads.
func (a *Allocator) prevBlock(bp int) int {
	fw := buf.ReadU32(a.bytes(), bp-2*format.WordSize)
	return bp - int(format.Size(fw))
}

// setPrevAlloc forces the PREV_ALLOC bit in the header of the block at bp.
// Footer copies never carry PREV_ALLOC, so the header is the only word to
// touch even when bp is free.
func (a *Allocator) setPrevAlloc(bp int, v bool) {
	a.setHeader(bp, format.SetPrevAlloc(a.header(bp), v))
}
