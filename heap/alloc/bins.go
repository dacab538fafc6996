package alloc

import (
	"fmt"

	"github.com/heapkit/heapkit/internal/buf"
	"github.com/heapkit/heapkit/internal/format"
)

// Segregated free-list registry. Each of the seven bins is an unordered
// doubly-linked list rooted in the head array at the heap base. Free blocks
// store their links as 32-bit offsets in the first two payload words:
//
//	word 0 (PRED): offset of the predecessor's PRED word, 0 = none
//	word 1 (SUCC): offset of the successor's SUCC word, 0 = none
//
// A block's PRED word is its payload offset and its SUCC word is payload+4,
// so PRED holds the predecessor's payload offset while SUCC holds the
// successor's payload offset plus one word. Offset 0 is a safe sentinel
// because the head array occupies the heap base.

// head returns the payload offset of the first block in bin, or 0.
func (a *Allocator) head(bin int) int {
	return int(buf.ReadU32(a.bytes(), format.HeadSlot(bin)))
}

// setHead points bin's head at the block at bp (0 empties the bin).
func (a *Allocator) setHead(bin, bp int) {
	buf.PutU32LE(a.bytes(), format.HeadSlot(bin), uint32(bp))
}

// predWord reads the PRED link of the free block at bp.
func (a *Allocator) predWord(bp int) uint32 {
	return buf.ReadU32(a.bytes(), bp)
}

// succWord reads the SUCC link of the free block at bp.
func (a *Allocator) succWord(bp int) uint32 {
	return buf.ReadU32(a.bytes(), bp+format.WordSize)
}

func (a *Allocator) setPredWord(bp int, v uint32) {
	buf.PutU32LE(a.bytes(), bp, v)
}

func (a *Allocator) setSuccWord(bp int, v uint32) {
	buf.PutU32LE(a.bytes(), bp+format.WordSize, v)
}

// succBlock returns the payload offset of bp's list successor, or 0.
func (a *Allocator) succBlock(bp int) int {
	w := a.succWord(bp)
	if w == 0 {
		return 0
	}
	return int(w) - format.WordSize
}

// predBlock returns the payload offset of bp's list predecessor, or 0.
func (a *Allocator) predBlock(bp int) int {
	return int(a.predWord(bp))
}

// insert prepends the free block at bp to the bin its size maps to.
func (a *Allocator) insert(bp int) {
	size := a.blockSize(bp)
	if size < format.MinBlockSize {
		panic(fmt.Sprintf("alloc: insert of undersized block at 0x%X (size %d)", bp, size))
	}
	bin := format.BinIndex(size)
	old := a.head(bin)

	a.setPredWord(bp, 0)
	if old == 0 {
		a.setSuccWord(bp, 0)
	} else {
		a.setSuccWord(bp, uint32(old+format.WordSize))
		a.setPredWord(old, uint32(bp))
	}
	a.setHead(bin, bp)
}

// remove splices the free block at bp out of its bin and zeroes its links.
func (a *Allocator) remove(bp int) {
	size := a.blockSize(bp)
	bin := format.BinIndex(size)
	pred := a.predBlock(bp)
	succW := a.succWord(bp)

	if pred == 0 {
		if a.head(bin) != bp {
			panic(fmt.Sprintf("alloc: remove of unlisted block at 0x%X (size %d, bin %d)", bp, size, bin))
		}
		if succW == 0 {
			a.setHead(bin, 0)
		} else {
			succ := int(succW) - format.WordSize
			a.setPredWord(succ, 0)
			a.setHead(bin, succ)
		}
	} else {
		if succW == 0 {
			a.setSuccWord(pred, 0)
		} else {
			a.setSuccWord(pred, succW)
			a.setPredWord(int(succW)-format.WordSize, uint32(pred))
		}
	}

	a.setPredWord(bp, 0)
	a.setSuccWord(bp, 0)
}

// replace swaps the list occupant at old for the physically distinct block
// at new without touching the rest of the list. Both blocks must map to the
// same bin; the caller has already written new's header.
func (a *Allocator) replace(old, new int) {
	bin := format.BinIndex(a.blockSize(new))
	pred := a.predBlock(old)
	succW := a.succWord(old)

	a.setPredWord(new, uint32(pred))
	a.setSuccWord(new, succW)

	if pred == 0 {
		a.setHead(bin, new)
	} else {
		a.setSuccWord(pred, uint32(new+format.WordSize))
	}
	if succW != 0 {
		a.setPredWord(int(succW)-format.WordSize, uint32(new))
	}

	a.setPredWord(old, 0)
	a.setSuccWord(old, 0)
}
