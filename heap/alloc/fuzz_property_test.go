package alloc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/heapkit/heapkit/heap/verify"
)

// Test_Fuzz_RandomOps_GuardInvariants performs a random mix of Alloc, Free,
// Realloc, and Calloc against a byte-pattern model and validates the full
// structural invariant set after every step.
func Test_Fuzz_RandomOps_GuardInvariants(t *testing.T) {
	a := newTestAllocator(t, 1<<24)

	rng := rand.New(rand.NewSource(42)) // Fixed seed for reproducibility
	type block struct {
		size int
		fill byte
	}
	live := map[Ref]block{}

	checkBlock := func(step int, ref Ref, b block) {
		payload := a.Payload(ref)
		for i := range b.size {
			require.Equal(t, b.fill, payload[i],
				"Step %d: block 0x%X corrupted at byte %d", step, ref, i)
		}
	}

	pick := func() Ref {
		for ref := range live {
			return ref
		}
		return 0
	}

	for step := range 500 {
		switch op := rng.Intn(4); {
		case op == 0 || len(live) == 0:
			size := 1 + rng.Intn(600)
			ref, payload, err := a.Alloc(uint32(size))
			require.NoError(t, err, "Step %d: Alloc(%d)", step, size)
			fill := byte(rng.Intn(256))
			for i := range size {
				payload[i] = fill
			}
			live[ref] = block{size: size, fill: fill}

		case op == 1:
			ref := pick()
			checkBlock(step, ref, live[ref])
			require.NoError(t, a.Free(ref), "Step %d: Free(0x%X)", step, ref)
			delete(live, ref)

		case op == 2:
			ref := pick()
			old := live[ref]
			checkBlock(step, ref, old)

			newSize := 1 + rng.Intn(600)
			newRef, payload, err := a.Realloc(ref, uint32(newSize))
			require.NoError(t, err, "Step %d: Realloc(0x%X, %d)", step, ref, newSize)

			keep := min(newSize, old.size)
			for i := range keep {
				require.Equal(t, old.fill, payload[i],
					"Step %d: realloc lost byte %d of 0x%X", step, i, ref)
			}
			for i := range newSize {
				payload[i] = old.fill
			}
			delete(live, ref)
			live[newRef] = block{size: newSize, fill: old.fill}

		default:
			count := 1 + rng.Intn(8)
			size := 1 + rng.Intn(64)
			ref, payload, err := a.Calloc(uint32(count), uint32(size))
			require.NoError(t, err, "Step %d: Calloc(%d, %d)", step, count, size)
			total := count * size
			for i := range total {
				require.Zero(t, payload[i], "Step %d: calloc dirty byte %d", step, i)
			}
			fill := byte(rng.Intn(256))
			for i := range total {
				payload[i] = fill
			}
			live[ref] = block{size: total, fill: fill}
		}

		require.NoError(t, verify.All(a.Region().Bytes()),
			"Step %d: invariant check failed", step)
	}

	// Drain and verify one last time.
	for ref, b := range live {
		checkBlock(-1, ref, b)
		require.NoError(t, a.Free(ref))
	}
	require.NoError(t, verify.All(a.Region().Bytes()))
	require.Equal(t, 1, freeBlockCount(a), "drained heap should hold one free block")
}
