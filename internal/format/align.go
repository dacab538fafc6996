package format

// Alignment utilities. Every payload address and every block size must be a
// multiple of 8 bytes; header words sit one 4-byte word below payloads.

// Align8 returns n aligned up to the next 8-byte boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
func Align8(n int) int {
	return (n + CellAlignmentMask) & ^CellAlignmentMask
}

// Align8U32 returns n aligned up to the next 8-byte boundary.
// uint32 version for use in allocator code operating on header words.
func Align8U32(n uint32) uint32 {
	return (n + CellAlignmentMask) & ^uint32(CellAlignmentMask)
}

// Aligned8 reports whether n is a multiple of 8.
func Aligned8(n uint32) bool {
	return n&CellAlignmentMask == 0
}
