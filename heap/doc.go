// Package heap provides the grow-only contiguous memory substrate that the
// allocator carves into blocks.
//
// A Region reserves its maximum size as a single anonymous mapping up front
// and exposes a brk-style Extend that moves the high-water mark upward.
// Extended bytes are never returned; the region only grows until it hits its
// configured cap. The region hands out its backing bytes directly, so all
// offsets used by the allocator are plain indexes into Bytes().
package heap
