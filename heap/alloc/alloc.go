package alloc

import (
	"fmt"
	"math"
	"os"

	"github.com/heapkit/heapkit/heap"
	"github.com/heapkit/heapkit/internal/buf"
	"github.com/heapkit/heapkit/internal/format"
)

// Debug flag - set to true to enable verbose heap dumps (compile-time toggle).
const debugAlloc = false

// Runtime debug flag for allocation logging - controlled by HEAP_LOG_ALLOC env var.
var logAlloc = os.Getenv("HEAP_LOG_ALLOC") != ""

// New initializes an allocator over a fresh region: it lays down the bin
// head array, the prologue and epilogue pseudo-blocks, and an initial
// ChunkSize free block.
func New(r *heap.Region) (*Allocator, error) {
	if r.Size() != 0 {
		return nil, ErrRegionUsed
	}
	a := &Allocator{r: r}

	if _, err := r.Extend(format.BaseSize); err != nil {
		return nil, fmt.Errorf("alloc: heap bootstrap: %w", err)
	}
	data := a.bytes()

	// Bin heads and the padding word; the mapping is zero-filled, so the
	// padding is left as is, but the heads are written explicitly.
	for bin := range format.NumBins {
		buf.PutU64LE(data, format.HeadSlot(bin), 0)
	}
	buf.PutU32LE(data, format.PrologueHeader,
		format.Pack(format.PrologueSize, true, true))
	buf.PutU32LE(data, format.ProloguePayload,
		format.PackFooter(format.PrologueSize, true))
	buf.PutU32LE(data, format.FirstBlock-format.WordSize,
		format.Pack(0, true, true))

	if _, err := a.extendHeap(format.ChunkSize / format.WordSize); err != nil {
		return nil, err
	}
	return a, nil
}

// adjustSize converts a requested payload size to a block size: room for
// the header, rounded up to 8 bytes, floored at the minimum block so the
// block can host link words and a footer once released.
func adjustSize(size uint32) uint32 {
	asize := format.Align8U32(size + format.WordSize)
	if asize < format.MinBlockSize {
		asize = format.MinBlockSize
	}
	return asize
}

// Alloc allocates a block with at least size payload bytes. It returns the
// block reference and the aliased payload slice. Size 0 returns the none
// sentinel with no error.
func (a *Allocator) Alloc(size uint32) (Ref, []byte, error) {
	a.stats.AllocCalls++
	if size == 0 {
		return 0, nil, nil
	}
	asize := adjustSize(size)

	if logAlloc && size > 1000 {
		fmt.Fprintf(os.Stderr, "[ALLOC] request %d bytes -> block of %d\n", size, asize)
	}

	bp := a.findFit(asize)
	if bp == 0 {
		ext := asize
		if ext < format.ChunkSize {
			ext = format.ChunkSize
		}
		if _, err := a.extendHeap(int(ext) / format.WordSize); err != nil {
			return 0, nil, err
		}
		bp = a.findFit(asize)
		if bp == 0 {
			return 0, nil, ErrNoSpace
		}
		a.stats.AllocSlowPath++
	} else {
		a.stats.AllocFastPath++
	}

	bp = a.place(bp, asize)
	placed := a.blockSize(bp)
	a.stats.BytesAllocated += int64(placed)

	payload := a.bytes()[bp : bp+int(placed)-format.WordSize]
	return Ref(bp), payload, nil
}

// Free releases the block at ref. Ref 0 is a no-op. Returns ErrBadRef for
// references outside the heap and ErrNotAllocated for blocks already free.
func (a *Allocator) Free(ref Ref) error {
	a.stats.FreeCalls++
	if ref == 0 {
		return nil
	}
	bp := int(ref)
	if bp < format.FirstBlock || bp >= a.r.Size() {
		return fmt.Errorf("%w: 0x%X outside heap of %d bytes", ErrBadRef, ref, a.r.Size())
	}

	w := a.header(bp)
	size := format.Size(w)
	if size < format.MinBlockSize || bp+int(size) > a.r.Size() {
		return fmt.Errorf("%w: 0x%X has corrupt size %d", ErrBadRef, ref, size)
	}
	if !format.CurrAlloc(w) {
		return fmt.Errorf("%w: 0x%X", ErrNotAllocated, ref)
	}
	a.stats.BytesFreed += int64(size)

	a.writeHeader(bp, size, format.PrevAlloc(w), false)
	a.writeFooter(bp, size, false)
	a.coalesce(bp)
	return nil
}

// Realloc resizes the block at ref to hold at least size payload bytes by
// allocating a new block and copying the payload prefix. A zero ref acts
// as Alloc; a zero size acts as Free and returns the none sentinel. On
// allocation failure the original block is left intact.
func (a *Allocator) Realloc(ref Ref, size uint32) (Ref, []byte, error) {
	a.stats.ReallocCalls++
	if ref == 0 {
		return a.Alloc(size)
	}
	if size == 0 {
		return 0, nil, a.Free(ref)
	}

	oldPayload := a.Payload(ref)
	newRef, newPayload, err := a.Alloc(size)
	if err != nil {
		return 0, nil, err
	}

	n := int(size)
	if n > len(oldPayload) {
		n = len(oldPayload)
	}
	copy(newPayload[:n], oldPayload)

	if err := a.Free(ref); err != nil {
		return 0, nil, err
	}
	return newRef, newPayload, nil
}

// Calloc allocates a zeroed block for count elements of the given size.
// A zero product returns the none sentinel with no error.
func (a *Allocator) Calloc(count, size uint32) (Ref, []byte, error) {
	a.stats.CallocCalls++
	total := uint64(count) * uint64(size)
	if total == 0 {
		return 0, nil, nil
	}
	if total > math.MaxUint32 {
		return 0, nil, fmt.Errorf("%w: calloc %d x %d overflows", ErrNoSpace, count, size)
	}

	ref, payload, err := a.Alloc(uint32(total))
	if err != nil {
		return 0, nil, err
	}
	clear(payload[:total])
	return ref, payload, nil
}

// Payload returns the payload slice of the allocated block at ref. The
// slice aliases the heap and stays valid until the block is freed.
func (a *Allocator) Payload(ref Ref) []byte {
	bp := int(ref)
	size := a.blockSize(bp)
	return a.bytes()[bp : bp+int(size)-format.WordSize]
}

// Region returns the underlying heap region.
func (a *Allocator) Region() *heap.Region {
	return a.r
}
