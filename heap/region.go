package heap

import (
	"errors"
	"fmt"

	"github.com/heapkit/heapkit/internal/format"
	"github.com/heapkit/heapkit/internal/mmem"
)

// DefaultMax is the default region cap: 256MB, comfortably below the 4GB
// bound the 32-bit offset links impose.
const DefaultMax = 1 << 28

var (
	// ErrOutOfMemory indicates the region cannot grow past its cap.
	ErrOutOfMemory = errors.New("heap: region exhausted")

	// ErrClosed indicates use of a region after Close.
	ErrClosed = errors.New("heap: region closed")
)

// Region is a grow-only contiguous byte region. The zero value is not
// usable; construct with NewRegion.
type Region struct {
	data    []byte // full reserved mapping
	brk     int    // current high-water mark; bytes [0, brk) are live
	cleanup func() error
}

// NewRegion reserves a region that can grow up to max bytes. max must be
// positive and no larger than 2^32.
func NewRegion(max int) (*Region, error) {
	if max <= 0 {
		return nil, fmt.Errorf("heap: invalid region cap %d", max)
	}
	if int64(max) > format.MaxHeapSize {
		return nil, fmt.Errorf("heap: region cap %d exceeds offset-encoding bound %d", max, int64(format.MaxHeapSize))
	}
	data, cleanup, err := mmem.Map(max)
	if err != nil {
		return nil, err
	}
	return &Region{data: data, cleanup: cleanup}, nil
}

// Extend grows the region upward by n bytes and returns the offset of the
// start of the new area. Returns ErrOutOfMemory when the cap would be
// exceeded.
func (r *Region) Extend(n int) (int, error) {
	if r.data == nil {
		return 0, ErrClosed
	}
	if n <= 0 {
		return 0, fmt.Errorf("heap: invalid extension size %d", n)
	}
	if r.brk+n > len(r.data) {
		return 0, fmt.Errorf("heap: extend %d bytes past cap %d: %w", n, len(r.data), ErrOutOfMemory)
	}
	off := r.brk
	r.brk += n
	return off, nil
}

// Bytes returns the live portion of the region. The slice aliases the
// backing mapping and remains valid across Extend calls because the mapping
// is reserved up front.
func (r *Region) Bytes() []byte {
	return r.data[:r.brk]
}

// Lo returns the offset of the first live byte.
func (r *Region) Lo() int {
	return 0
}

// Hi returns the offset of the last live byte, or -1 for an empty region.
func (r *Region) Hi() int {
	return r.brk - 1
}

// Size returns the number of live bytes.
func (r *Region) Size() int {
	return r.brk
}

// Cap returns the maximum size the region can grow to.
func (r *Region) Cap() int {
	return len(r.data)
}

// Close releases the backing mapping. The region is unusable afterwards.
func (r *Region) Close() error {
	if r.data == nil {
		return nil
	}
	r.data = nil
	r.brk = 0
	return r.cleanup()
}
