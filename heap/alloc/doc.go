// Package alloc implements a segregated free-list allocator over a grow-only
// heap region.
//
// # Overview
//
// The allocator carves the region into blocks. Every block carries a 4-byte
// header one word below its 8-byte-aligned payload; the header packs the
// block size with two allocation bits (CURR_ALLOC for the block itself,
// PREV_ALLOC for its heap-order predecessor). Allocated blocks carry only
// the header, so their entire remaining space is payload. Free blocks
// mirror the header in a trailing footer and thread themselves onto one of
// seven size-class lists through 32-bit offset links stored in their first
// two payload words.
//
// # Heap Layout
//
// The region begins with the bin head array (seven 8-byte slots), one word
// of padding, an 8-byte allocated prologue pseudo-block, the real blocks,
// and a size-0 allocated epilogue header. The prologue and epilogue stop
// coalescing from running off either end of the heap.
//
// # Size Classes
//
// Free blocks are binned by total size:
//
//	Bin 0:      ≤   50 bytes
//	Bin 1:   51 -  100 bytes
//	Bin 2:  101 - 1000 bytes
//	Bin 3: 1001 - 2000 bytes
//	Bin 4: 2001 - 3000 bytes
//	Bin 5: 3001 - 4500 bytes
//	Bin 6:      > 4500 bytes
//
// Each bin is an unordered doubly-linked LIFO list. Allocation is first-fit
// within the target bin, falling through to larger bins, then heap
// extension.
//
// # Usage Example
//
//	r, err := heap.NewRegion(heap.DefaultMax)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	a, err := alloc.New(r)
//	if err != nil {
//	    return err
//	}
//
//	ref, payload, err := a.Alloc(256)
//	if err != nil {
//	    return err
//	}
//	copy(payload, data)
//
//	// Later, release the block
//	err = a.Free(ref)
//
// # References
//
// Block references (Ref) are uint32 payload offsets from the heap base.
// Ref 0 is the "none" sentinel; the head array occupies the base, so no
// payload ever lives at offset 0. Payload slices alias the region's backing
// mapping and stay valid across heap growth because the region reserves its
// cap up front.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must synchronize access
// externally.
//
// # Related Packages
//
//   - github.com/heapkit/heapkit/heap: the grow-only region substrate
//   - github.com/heapkit/heapkit/heap/verify: structural invariant checks
//   - github.com/heapkit/heapkit/internal/format: header codec and layout constants
package alloc
