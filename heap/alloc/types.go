package alloc

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/heapkit/heapkit/heap"
	"github.com/heapkit/heapkit/internal/format"
)

// Ref is a block reference: the payload offset from the heap base.
// Ref 0 is the "none" sentinel.
type Ref = uint32

// Allocator manages blocks inside a heap.Region using segregated free lists.
type Allocator struct {
	r *heap.Region

	// Statistics for testing and instrumentation
	stats allocatorStats
}

// allocatorStats holds internal allocator counters.
type allocatorStats struct {
	AllocCalls       int   // Total Alloc() calls
	AllocFastPath    int   // Allocations satisfied without growing
	AllocSlowPath    int   // Allocations that required growth
	FreeCalls        int   // Total Free() calls
	ReallocCalls     int   // Total Realloc() calls
	CallocCalls      int   // Total Calloc() calls
	GrowCalls        int   // Heap extensions
	GrowBytes        int64 // Total bytes added by extension
	BytesAllocated   int64 // Total block bytes handed out (including headers)
	BytesFreed       int64 // Total block bytes released
	SplitCount       int   // Number of block splits
	CoalesceForward  int   // Merges with the following block
	CoalesceBackward int   // Merges with the preceding block
}

// Stats is a snapshot of allocator counters plus derived heap state.
type Stats struct {
	AllocCalls       int
	AllocFastPath    int
	AllocSlowPath    int
	FreeCalls        int
	ReallocCalls     int
	CallocCalls      int
	GrowCalls        int
	GrowBytes        int64
	BytesAllocated   int64
	BytesFreed       int64
	SplitCount       int
	CoalesceForward  int
	CoalesceBackward int

	HeapBytes  int64 // current heap size
	FreeBlocks int   // free blocks reachable via the bin lists
	FreeBytes  int64 // total bytes held in free blocks
}

// Stats returns a snapshot of the allocator's counters and free-list state.
func (a *Allocator) Stats() Stats {
	s := Stats{
		AllocCalls:       a.stats.AllocCalls,
		AllocFastPath:    a.stats.AllocFastPath,
		AllocSlowPath:    a.stats.AllocSlowPath,
		FreeCalls:        a.stats.FreeCalls,
		ReallocCalls:     a.stats.ReallocCalls,
		CallocCalls:      a.stats.CallocCalls,
		GrowCalls:        a.stats.GrowCalls,
		GrowBytes:        a.stats.GrowBytes,
		BytesAllocated:   a.stats.BytesAllocated,
		BytesFreed:       a.stats.BytesFreed,
		SplitCount:       a.stats.SplitCount,
		CoalesceForward:  a.stats.CoalesceForward,
		CoalesceBackward: a.stats.CoalesceBackward,
		HeapBytes:        int64(a.r.Size()),
	}
	for bin := range format.NumBins {
		for bp := a.head(bin); bp != 0; bp = a.succBlock(bp) {
			s.FreeBlocks++
			s.FreeBytes += int64(a.blockSize(bp))
		}
	}
	return s
}

// String renders the stats as a short human-readable report.
func (s Stats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "heap: %s live, %d grow calls (%s added)\n",
		humanize.Bytes(uint64(s.HeapBytes)), s.GrowCalls, humanize.Bytes(uint64(s.GrowBytes)))
	fmt.Fprintf(&b, "alloc: %s calls (%d fast, %d slow), %s handed out\n",
		humanize.Comma(int64(s.AllocCalls)), s.AllocFastPath, s.AllocSlowPath,
		humanize.Bytes(uint64(s.BytesAllocated)))
	fmt.Fprintf(&b, "free: %s calls, %s released\n",
		humanize.Comma(int64(s.FreeCalls)), humanize.Bytes(uint64(s.BytesFreed)))
	fmt.Fprintf(&b, "realloc: %d, calloc: %d\n", s.ReallocCalls, s.CallocCalls)
	fmt.Fprintf(&b, "splits: %d, coalesces: %d forward / %d backward\n",
		s.SplitCount, s.CoalesceForward, s.CoalesceBackward)
	fmt.Fprintf(&b, "free list: %d blocks, %s\n",
		s.FreeBlocks, humanize.Bytes(uint64(s.FreeBytes)))
	return b.String()
}
