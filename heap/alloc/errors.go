package alloc

import "errors"

var (
	// ErrNoSpace indicates that no free block large enough was found even after
	// a successful heap extension, or that a Calloc product exceeds 32 bits.
	// A failed extension is reported as ErrGrowFail instead.
	ErrNoSpace = errors.New("alloc: no free block large enough")

	// ErrBadRef indicates an invalid or out-of-bounds block reference.
	ErrBadRef = errors.New("alloc: bad block reference")

	// ErrGrowFail indicates that extending the heap region failed.
	ErrGrowFail = errors.New("alloc: grow failed")

	// ErrNotAllocated indicates an attempt to free a block that is not marked allocated.
	ErrNotAllocated = errors.New("alloc: expected allocated block")

	// ErrRegionUsed indicates New was handed a region that already contains data.
	ErrRegionUsed = errors.New("alloc: region already in use")
)
