package main

import (
	"fmt"
	"math/rand"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/heapkit/heapkit/heap"
	"github.com/heapkit/heapkit/heap/alloc"
	"github.com/heapkit/heapkit/heap/verify"
)

var (
	runOps       int
	runSeed      int64
	runMaxSize   int
	runLive      int
	runCheckEach int
	runRegionCap int
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().IntVar(&runOps, "ops", 100000, "Number of allocator operations to perform")
	cmd.Flags().Int64Var(&runSeed, "seed", 1, "PRNG seed for the workload")
	cmd.Flags().IntVar(&runMaxSize, "max-size", 4096, "Maximum request size in bytes")
	cmd.Flags().IntVar(&runLive, "live", 512, "Target number of live blocks")
	cmd.Flags().IntVar(&runCheckEach, "check-every", 1000, "Verify invariants every N operations (0 disables)")
	cmd.Flags().IntVar(&runRegionCap, "region-cap", heap.DefaultMax, "Region size cap in bytes")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run a randomized allocation workload",
		Long: `The run command performs a randomized mix of Alloc, Free, Realloc, and
Calloc operations, filling every allocated block with a seed-derived byte
pattern and verifying the pattern before release.

Example:
  heapstress run --ops 1000000 --max-size 8192
  heapstress run --seed 42 --check-every 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkload()
		},
	}
}

// liveBlock tracks one outstanding allocation and the pattern written to it.
type liveBlock struct {
	ref  alloc.Ref
	size int
	fill byte
}

func runWorkload() error {
	r, err := heap.NewRegion(runRegionCap)
	if err != nil {
		return err
	}
	defer r.Close()

	a, err := alloc.New(r)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(runSeed))
	live := make([]liveBlock, 0, runLive)

	printInfo("heapstress: %s ops, seed %d, max request %s\n",
		humanize.Comma(int64(runOps)), runSeed, humanize.Bytes(uint64(runMaxSize)))

	for op := range runOps {
		if err := step(a, rng, &live); err != nil {
			return fmt.Errorf("op %d: %w", op, err)
		}
		if runCheckEach > 0 && (op+1)%runCheckEach == 0 {
			if err := verify.All(r.Bytes()); err != nil {
				return fmt.Errorf("op %d: invariant violation: %w", op, err)
			}
			printVerbose("op %d: heap %s, %d live blocks\n",
				op+1, humanize.Bytes(uint64(r.Size())), len(live))
		}
	}

	// Drain remaining blocks and verify their contents one last time.
	for _, lb := range live {
		if err := checkPattern(a, lb); err != nil {
			return err
		}
		if err := a.Free(lb.ref); err != nil {
			return err
		}
	}
	if err := verify.All(r.Bytes()); err != nil {
		return fmt.Errorf("post-drain invariant violation: %w", err)
	}

	printInfo("%s", a.Stats().String())
	return nil
}

// step performs one random operation, biased toward allocation until the
// live set reaches its target.
func step(a *alloc.Allocator, rng *rand.Rand, live *[]liveBlock) error {
	allocBias := len(*live) < runLive

	switch {
	case len(*live) == 0 || (allocBias && rng.Intn(4) != 0):
		return stepAlloc(a, rng, live)
	case rng.Intn(8) == 0:
		return stepRealloc(a, rng, live)
	case rng.Intn(8) == 0:
		return stepCalloc(a, rng, live)
	default:
		return stepFree(a, rng, live)
	}
}

func stepAlloc(a *alloc.Allocator, rng *rand.Rand, live *[]liveBlock) error {
	size := 1 + rng.Intn(runMaxSize)
	ref, payload, err := a.Alloc(uint32(size))
	if err != nil {
		return err
	}
	fill := byte(rng.Intn(256))
	for i := range size {
		payload[i] = fill
	}
	*live = append(*live, liveBlock{ref: ref, size: size, fill: fill})
	return nil
}

func stepFree(a *alloc.Allocator, rng *rand.Rand, live *[]liveBlock) error {
	i := rng.Intn(len(*live))
	lb := (*live)[i]
	if err := checkPattern(a, lb); err != nil {
		return err
	}
	if err := a.Free(lb.ref); err != nil {
		return err
	}
	(*live)[i] = (*live)[len(*live)-1]
	*live = (*live)[:len(*live)-1]
	return nil
}

func stepRealloc(a *alloc.Allocator, rng *rand.Rand, live *[]liveBlock) error {
	i := rng.Intn(len(*live))
	lb := (*live)[i]
	if err := checkPattern(a, lb); err != nil {
		return err
	}

	newSize := 1 + rng.Intn(runMaxSize)
	ref, payload, err := a.Realloc(lb.ref, uint32(newSize))
	if err != nil {
		return err
	}

	// The surviving prefix must carry the old pattern.
	keep := min(newSize, lb.size)
	for j := range keep {
		if payload[j] != lb.fill {
			return fmt.Errorf("realloc lost data at byte %d of ref 0x%X", j, ref)
		}
	}
	for j := range newSize {
		payload[j] = lb.fill
	}
	(*live)[i] = liveBlock{ref: ref, size: newSize, fill: lb.fill}
	return nil
}

func stepCalloc(a *alloc.Allocator, rng *rand.Rand, live *[]liveBlock) error {
	count := 1 + rng.Intn(16)
	size := 1 + rng.Intn(runMaxSize/16+1)
	ref, payload, err := a.Calloc(uint32(count), uint32(size))
	if err != nil {
		return err
	}
	total := count * size
	for j := range total {
		if payload[j] != 0 {
			return fmt.Errorf("calloc returned dirty byte %d at ref 0x%X", j, ref)
		}
	}
	fill := byte(rng.Intn(256))
	for j := range total {
		payload[j] = fill
	}
	*live = append(*live, liveBlock{ref: ref, size: total, fill: fill})
	return nil
}

// checkPattern verifies a live block still holds its fill byte.
func checkPattern(a *alloc.Allocator, lb liveBlock) error {
	payload := a.Payload(lb.ref)
	for i := range lb.size {
		if payload[i] != lb.fill {
			return fmt.Errorf("block 0x%X corrupted at byte %d: got 0x%02X want 0x%02X",
				lb.ref, i, payload[i], lb.fill)
		}
	}
	return nil
}
