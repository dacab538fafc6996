// Package verify provides structural validation of a raw heap image.
//
// The checks mirror the invariants the allocator maintains between public
// operations: alignment, PREV_ALLOC coherence, maximal coalescing,
// header/footer agreement, bin membership, link symmetry, list acyclicity,
// and the heap-walk versus list-walk free-block count. All functions are
// read-only and never allocate from the heap they inspect; they return
// errors rather than aborting so tests can assert on specific failures.
package verify
