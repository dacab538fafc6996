package alloc

import "github.com/heapkit/heapkit/heap"

// Thin process-global shim over a single default allocator instance, for
// callers that want malloc-style entry points without threading an
// *Allocator through.

var std *Allocator

// Init sets up the default allocator over a fresh region capped at
// heap.DefaultMax. Calling it again replaces the previous instance and
// releases its region.
func Init() error {
	r, err := heap.NewRegion(heap.DefaultMax)
	if err != nil {
		return err
	}
	a, err := New(r)
	if err != nil {
		r.Close()
		return err
	}
	if std != nil {
		std.r.Close()
	}
	std = a
	return nil
}

// Malloc allocates from the default allocator.
func Malloc(size uint32) (Ref, []byte, error) {
	return std.Alloc(size)
}

// FreeBlock releases a block on the default allocator.
func FreeBlock(ref Ref) error {
	return std.Free(ref)
}

// Realloc resizes a block on the default allocator.
func Realloc(ref Ref, size uint32) (Ref, []byte, error) {
	return std.Realloc(ref, size)
}

// Calloc allocates zeroed storage on the default allocator.
func Calloc(count, size uint32) (Ref, []byte, error) {
	return std.Calloc(count, size)
}

// CheckHeap runs the abort-on-violation checker on the default allocator.
func CheckHeap(line int) {
	std.CheckHeap(line)
}
