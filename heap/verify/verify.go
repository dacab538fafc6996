package verify

import (
	"fmt"

	"github.com/heapkit/heapkit/internal/buf"
	"github.com/heapkit/heapkit/internal/format"
)

// ValidationError describes a single failed invariant check.
type ValidationError struct {
	Check   string
	Offset  int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Check, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Check, e.Message)
}

// All validates every heap invariant in one call: the heap walk, the bin
// lists, and the free-count cross-check. Returns the first error
// encountered, or nil if all checks pass.
func All(data []byte) error {
	if err := Heap(data); err != nil {
		return err
	}
	if err := FreeLists(data); err != nil {
		return err
	}
	heapFree, listFree, err := Count(data)
	if err != nil {
		return err
	}
	if heapFree != listFree {
		return &ValidationError{
			Check:   "FreeCount",
			Offset:  -1,
			Message: fmt.Sprintf("heap walk found %d free blocks, bin lists hold %d", heapFree, listFree),
		}
	}
	return nil
}

// Heap walks every block from the prologue to the epilogue, checking
// alignment, PREV_ALLOC coherence, maximal coalescing, in-heap membership,
// and (for free blocks) header/footer agreement plus link-back symmetry.
func Heap(data []byte) error {
	if len(data) < format.BaseSize {
		return &ValidationError{
			Check:   "Heap",
			Offset:  -1,
			Message: fmt.Sprintf("heap too small: %d bytes (need %d)", len(data), format.BaseSize),
		}
	}

	ph := buf.ReadU32(data, format.PrologueHeader)
	if format.Size(ph) != format.PrologueSize || !format.CurrAlloc(ph) {
		return &ValidationError{
			Check:   "Prologue",
			Offset:  format.PrologueHeader,
			Message: fmt.Sprintf("bad prologue header word 0x%X", ph),
		}
	}
	pf := buf.ReadU32(data, format.ProloguePayload)
	if format.Size(pf) != format.PrologueSize || !format.CurrAlloc(pf) {
		return &ValidationError{
			Check:   "Prologue",
			Offset:  format.ProloguePayload,
			Message: fmt.Sprintf("bad prologue footer word 0x%X", pf),
		}
	}

	prevAlloc := true
	prevFree := false
	bp := format.FirstBlock

	for {
		if bp > len(data) {
			return &ValidationError{
				Check:   "Heap",
				Offset:  bp,
				Message: "block walk ran past the end of the heap",
			}
		}
		w := buf.ReadU32(data, bp-format.WordSize)
		size := format.Size(w)

		if size == 0 {
			// Epilogue terminates the walk; it must be allocated, carry a
			// coherent PREV_ALLOC, and sit in the last word of the heap.
			if !format.CurrAlloc(w) {
				return &ValidationError{Check: "Epilogue", Offset: bp, Message: "epilogue not marked allocated"}
			}
			if format.PrevAlloc(w) != prevAlloc {
				return &ValidationError{Check: "Epilogue", Offset: bp, Message: "epilogue PREV_ALLOC incoherent"}
			}
			if bp != len(data) {
				return &ValidationError{
					Check:   "Epilogue",
					Offset:  bp,
					Message: fmt.Sprintf("epilogue at 0x%X, expected 0x%X", bp-format.WordSize, len(data)-format.WordSize),
				}
			}
			return nil
		}

		if err := checkBlock(data, bp, w, prevAlloc, prevFree); err != nil {
			return err
		}

		prevAlloc = format.CurrAlloc(w)
		prevFree = !prevAlloc
		bp += int(size)
	}
}

// checkBlock validates one non-epilogue block during the heap walk.
func checkBlock(data []byte, bp int, w uint32, prevAlloc, prevFree bool) error {
	size := format.Size(w)

	if bp%format.DWordSize != 0 {
		return &ValidationError{Check: "Alignment", Offset: bp, Message: "payload not 8-byte aligned"}
	}
	if !format.Aligned8(size) || size < format.MinBlockSize {
		return &ValidationError{
			Check:   "Alignment",
			Offset:  bp,
			Message: fmt.Sprintf("illegal block size %d", size),
		}
	}
	if bp+int(size) > len(data) {
		return &ValidationError{
			Check:   "Bounds",
			Offset:  bp,
			Message: fmt.Sprintf("block of size %d overruns heap of %d bytes", size, len(data)),
		}
	}
	if format.PrevAlloc(w) != prevAlloc {
		return &ValidationError{
			Check:   "PrevAlloc",
			Offset:  bp,
			Message: fmt.Sprintf("PREV_ALLOC bit %v disagrees with predecessor state %v", format.PrevAlloc(w), prevAlloc),
		}
	}

	if format.CurrAlloc(w) {
		return nil
	}

	if prevFree {
		return &ValidationError{Check: "Coalescing", Offset: bp, Message: "two adjacent free blocks"}
	}

	fw := buf.ReadU32(data, bp+int(size)-2*format.WordSize)
	if format.Size(fw) != size || format.CurrAlloc(fw) {
		return &ValidationError{
			Check:   "Footer",
			Offset:  bp,
			Message: fmt.Sprintf("footer word 0x%X disagrees with header size %d", fw, size),
		}
	}

	// Link-back symmetry: X.SUCC -> Y implies Y.PRED -> X and vice versa.
	if succW := buf.ReadU32(data, bp+format.WordSize); succW != 0 {
		succ := int(succW) - format.WordSize
		if succ < 0 || succ >= len(data) {
			return &ValidationError{Check: "Links", Offset: bp, Message: fmt.Sprintf("SUCC 0x%X out of heap", succW)}
		}
		if buf.ReadU32(data, succ) != uint32(bp) {
			return &ValidationError{
				Check:   "Links",
				Offset:  bp,
				Message: fmt.Sprintf("successor 0x%X does not link back", succ),
			}
		}
	}
	if predW := buf.ReadU32(data, bp); predW != 0 {
		pred := int(predW)
		if pred+format.WordSize >= len(data) {
			return &ValidationError{Check: "Links", Offset: bp, Message: fmt.Sprintf("PRED 0x%X out of heap", predW)}
		}
		if buf.ReadU32(data, pred+format.WordSize) != uint32(bp+format.WordSize) {
			return &ValidationError{
				Check:   "Links",
				Offset:  bp,
				Message: fmt.Sprintf("predecessor 0x%X does not link forward", pred),
			}
		}
	}
	return nil
}

// FreeLists walks each bin list, detecting cycles and asserting that every
// listed block is free and sized for its bin.
func FreeLists(data []byte) error {
	for bin := range format.NumBins {
		head := int(buf.ReadU32(data, format.HeadSlot(bin)))
		if head == 0 {
			continue
		}
		if err := checkCycle(data, bin, head); err != nil {
			return err
		}
		for bp := head; bp != 0; bp = succOf(data, bp) {
			w := buf.ReadU32(data, bp-format.WordSize)
			size := format.Size(w)
			if format.CurrAlloc(w) {
				return &ValidationError{
					Check:   "BinMembership",
					Offset:  bp,
					Message: fmt.Sprintf("allocated block on bin %d list", bin),
				}
			}
			if format.BinIndex(size) != bin {
				return &ValidationError{
					Check:   "BinMembership",
					Offset:  bp,
					Message: fmt.Sprintf("block of size %d on bin %d, belongs in bin %d", size, bin, format.BinIndex(size)),
				}
			}
		}
	}
	return nil
}

// checkCycle runs tortoise-and-hare over one bin's SUCC chain.
func checkCycle(data []byte, bin, head int) error {
	slow, fast := head, head
	for fast != 0 {
		fast = succOf(data, fast)
		if fast == 0 {
			return nil
		}
		fast = succOf(data, fast)
		slow = succOf(data, slow)
		if fast != 0 && fast == slow {
			return &ValidationError{
				Check:   "Cycle",
				Offset:  fast,
				Message: fmt.Sprintf("bin %d list contains a cycle", bin),
			}
		}
	}
	return nil
}

// Count returns the number of free blocks reachable by the heap walk and by
// the bin lists. The two must agree; All reports a mismatch as an error.
func Count(data []byte) (heapFree, listFree int, err error) {
	bp := format.FirstBlock
	for {
		w := buf.ReadU32(data, bp-format.WordSize)
		size := format.Size(w)
		if size == 0 {
			break
		}
		if !format.CurrAlloc(w) {
			heapFree++
		}
		bp += int(size)
	}

	for bin := range format.NumBins {
		head := int(buf.ReadU32(data, format.HeadSlot(bin)))
		if head == 0 {
			continue
		}
		if err := checkCycle(data, bin, head); err != nil {
			return 0, 0, err
		}
		for bp := head; bp != 0; bp = succOf(data, bp) {
			listFree++
		}
	}
	return heapFree, listFree, nil
}

// succOf follows a block's SUCC link to the next payload offset, or 0.
func succOf(data []byte, bp int) int {
	w := buf.ReadU32(data, bp+format.WordSize)
	if w == 0 {
		return 0
	}
	return int(w) - format.WordSize
}
