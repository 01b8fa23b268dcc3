// Package rtesting holds small test helpers: deterministic shuffles and a
// concurrent-harness runner built on errgroup. No other package imports
// it; the module's concurrency tests fan out workers with errgroup or
// sync.WaitGroup directly.
package rtesting

import (
	"context"
	"math/rand"

	"golang.org/x/sync/errgroup"
)

// Shuffle returns a deterministically-shuffled permutation of [0, n) using
// seed, so concurrent-insert tests get reproducible interleavings across
// runs without sharing global rand state.
func Shuffle(n int, seed int64) []int {
	return rand.New(rand.NewSource(seed)).Perm(n)
}

// RunConcurrent fans work out across workers goroutines, each invoking fn
// with its own worker index, and waits for all of them. The first non-nil
// error returned by any worker is propagated to the caller; the others
// still run to completion.
func RunConcurrent(ctx context.Context, workers int, fn func(worker int) error) error {
	g, _ := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error { return fn(w) })
	}
	return g.Wait()
}

// Partition splits [0, n) into workers disjoint, round-robin-interleaved
// index slices, useful for assigning a shared work item array to workers
// without contention on a shared counter.
func Partition(n, workers int) [][]int {
	out := make([][]int, workers)
	for i := 0; i < n; i++ {
		w := i % workers
		out[w] = append(out[w], i)
	}
	return out
}
