package relation

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/orizon-lang/reldb/internal/arena"
	"github.com/orizon-lang/reldb/internal/btree"
	"github.com/orizon-lang/reldb/internal/rsync"
)

// IndexSpec describes one secondary index a Relation should maintain, as
// a column permutation and whether it covers all of the relation's
// columns (a full index, answering membership) or only a prefix.
type IndexSpec struct {
	Permutation []int
	Full        bool
}

// Relation multiplexes one synthesized primary full index and any number
// of caller-declared secondary indices over a single chunked master
// arena, preserving the invariant that every distinct tuple has exactly
// one canonical copy no matter how many indices reference it.
type Relation struct {
	arity int

	insertLock rsync.Spin
	master     arena.BlockList[Tuple]
	primary    Index
	secondary  []Index
}

// New creates an empty relation of the given arity with a synthesized
// full primary index plus one secondary index per spec (each extended to
// a full index internally if it does not already cover every column, per
// the invariant that every index can answer membership).
func New(arity int, specs ...IndexSpec) *Relation {
	r := &Relation{arity: arity, primary: newIndex(identity(arity), true)}
	for _, spec := range specs {
		perm := append([]int{}, spec.Permutation...)
		used := make(map[int]bool, arity)
		for _, c := range perm {
			used[c] = true
		}
		for col := 0; col < arity; col++ {
			if !used[col] {
				perm = append(perm, col)
			}
		}
		r.secondary = append(r.secondary, newIndex(perm, spec.Full))
	}
	return r
}

// Insert adds tuple if absent: it acquires the per-relation spin lock to
// check the primary index and append to master storage atomically, then
// inserts into the primary and every secondary index. Secondary-index
// updates proceed after the lock is released, per spec's concurrency
// model (the master-copy invariant is the only thing the lock protects).
func (r *Relation) Insert(tuple Tuple) bool {
	r.insertLock.Lock()
	isNew := r.primary.Insert(tuple)
	if isNew {
		r.master.Append(append(Tuple{}, tuple...))
	}
	r.insertLock.Unlock()

	if isNew {
		for _, idx := range r.secondary {
			idx.Insert(tuple)
		}
	}
	return isNew
}

// Hints is a per-goroutine bundle of operation contexts, one per index
// (primary first, then each secondary in order), reused across a run of
// InsertCtx calls sharing temporal locality (e.g. one worker's shard of a
// bulk load) to skip repeated index descent. A Hints value must only be
// used by one goroutine at a time.
type Hints struct {
	primary   any
	secondary []any
}

// NewHintContext creates a Hints bundle sized for this relation's indices.
func (r *Relation) NewHintContext() *Hints {
	h := &Hints{primary: r.primary.NewHintContext(), secondary: make([]any, len(r.secondary))}
	for i, idx := range r.secondary {
		h.secondary[i] = idx.NewHintContext()
	}
	return h
}

// InsertCtx behaves like Insert but consults and updates hints, letting a
// caller that repeatedly inserts tuples sharing a leading prefix (a single
// worker's shard of BulkLoadParallel, say) skip re-descending through
// index levels it just visited.
func (r *Relation) InsertCtx(tuple Tuple, hints *Hints) bool {
	if hints == nil {
		return r.Insert(tuple)
	}
	r.insertLock.Lock()
	isNew := r.primary.InsertCtx(tuple, hints.primary)
	if isNew {
		r.master.Append(append(Tuple{}, tuple...))
	}
	r.insertLock.Unlock()

	if isNew {
		for i, idx := range r.secondary {
			idx.InsertCtx(tuple, hints.secondary[i])
		}
	}
	return isNew
}

// InsertAll bulk-merges other's tuples. If both relations share arity and
// an identically-shaped index set, it delegates to each index's bulk
// InsertAll; otherwise it falls back to per-tuple Insert.
func (r *Relation) InsertAll(other *Relation) {
	compatible := other.arity == r.arity && len(other.secondary) == len(r.secondary)
	for i := 0; compatible && i < len(r.secondary); i++ {
		p, q := r.secondary[i].Permutation(), other.secondary[i].Permutation()
		compatible = len(p) == len(q)
		for j := 0; compatible && j < len(p); j++ {
			compatible = p[j] == q[j]
		}
	}
	if !compatible {
		r.insertAllFallback(other)
		return
	}
	r.insertLock.Lock()
	other.master.ForEach(func(_ int, t Tuple) {
		if !r.primary.Contains(t) {
			r.master.Append(append(Tuple{}, t...))
		}
	})
	r.primary.InsertAll(other.primary)
	r.insertLock.Unlock()
	for i, idx := range r.secondary {
		idx.InsertAll(other.secondary[i])
	}
}

func (r *Relation) insertAllFallback(other *Relation) {
	other.master.ForEach(func(_ int, t Tuple) { r.Insert(t) })
}

// Contains reports whether tuple is present via the primary index.
func (r *Relation) Contains(tuple Tuple) bool { return r.primary.Contains(tuple) }

// Size returns the number of distinct tuples.
func (r *Relation) Size() int { return r.primary.Len() }

// Empty reports whether the relation holds no tuples.
func (r *Relation) Empty() bool { return r.Size() == 0 }

// Iter scans every tuple in primary-index order.
func (r *Relation) Iter() TupleIterator { return r.primary.EqualRange(nil) }

// EqualRange selects secondary index i (or the primary index if i < 0)
// and returns its equal-range over prefix, which must already be given
// in that index's column order.
func (r *Relation) EqualRange(i int, prefix Tuple) TupleIterator {
	if i < 0 {
		return r.primary.EqualRange(prefix)
	}
	return r.secondary[i].EqualRange(prefix)
}

// Partition returns disjoint iterator ranges over the primary index,
// suitable for sharding a full scan across worker goroutines. For a B-tree
// primary (arity >= 3) the ranges come from GetChunks and number
// approximately k; for a trie primary (arity <= 2) it returns a single
// range covering every tuple, whatever k is.
func (r *Relation) Partition(k int) []TupleIterator {
	switch idx := r.primary.(type) {
	case *btreeIndex:
		ranges := idx.t.GetChunks(k)
		out := make([]TupleIterator, len(ranges))
		for i, rg := range ranges {
			out[i] = chunkIterAdapter{rg}
		}
		return out
	default:
		// The trie primary index (arity <= 2) has no chunking operation
		// of its own; a single full range is returned, matching spec's
		// allowance that partition need not be exactly k parts.
		return []TupleIterator{r.primary.EqualRange(nil)}
	}
}

type chunkIterAdapter struct{ rg *btree.Range[Tuple] }

func (a chunkIterAdapter) Next() (Tuple, bool) { return a.rg.Next() }

// Purge clears every tuple from every index and the master arena.
func (r *Relation) Purge() {
	r.insertLock.Lock()
	defer r.insertLock.Unlock()
	r.primary.Clear()
	for _, idx := range r.secondary {
		idx.Clear()
	}
	r.master.Clear()
}

// Stats is a read-only snapshot for external read-only collaborators
// (e.g. a profiler) to consume; it is never read internally.
type Stats struct {
	Arity          int
	MasterCount    int
	PrimaryCount   int
	SecondaryCount []int
}

// Stats returns a point-in-time snapshot of index sizes.
func (r *Relation) Stats() Stats {
	counts := make([]int, len(r.secondary))
	for i, idx := range r.secondary {
		counts[i] = idx.Len()
	}
	return Stats{
		Arity:          r.arity,
		MasterCount:    r.master.Len(),
		PrimaryCount:   r.primary.Len(),
		SecondaryCount: counts,
	}
}

// ColumnStats extends Stats with, per column, an estimated cardinality
// (distinct value count) based on a sample of up to sampleSize tuples
// (all of them, if sampleSize <= 0 or exceeds Size()). One btree set per
// column tracks the sampled distinct values; the observed selectivity is
// then scaled up to the full tuple count, floored at what the sample
// actually saw.
type ColumnStats struct {
	Stats
	SampleSize           int
	EstimatedCardinality []int
}

func int32Cmp(a, b int32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ColumnStats samples the primary index and reports each column's
// estimated cardinality, letting an external query planner (the excluded
// profiler/optimizer layer, per spec's Non-goals) judge selectivity
// without the relation itself depending on that layer.
func (r *Relation) ColumnStats(sampleSize int) ColumnStats {
	if sampleSize <= 0 || sampleSize > r.Size() {
		sampleSize = r.Size()
	}
	columns := make([]*btree.Tree[int32], r.arity)
	for i := range columns {
		columns[i] = btree.New(btree.DefaultOrder(256, 4), true, int32Cmp)
	}

	it := r.Iter()
	count := 0
	for count < sampleSize {
		tup, ok := it.Next()
		if !ok {
			break
		}
		for i, v := range tup {
			columns[i].Insert(v)
		}
		count++
	}

	size := r.Size()
	est := make([]int, r.arity)
	for i, col := range columns {
		if count == 0 {
			continue
		}
		p := float64(col.Size()) / float64(count)
		card := int(p * float64(size))
		if card < col.Size() {
			card = col.Size()
		}
		est[i] = card
	}

	return ColumnStats{Stats: r.Stats(), SampleSize: count, EstimatedCardinality: est}
}

// BulkLoadParallel shards tuples across workers goroutines (0 picks
// RELDB_WORKERS/NumCPU, see Workers in internal/relation/config.go) and
// inserts each shard concurrently, then waits for all of them.
func (r *Relation) BulkLoadParallel(ctx context.Context, tuples []Tuple, workers int) error {
	if workers <= 0 {
		workers = Workers()
	}
	if workers > len(tuples) {
		workers = len(tuples)
	}
	if workers <= 1 {
		hints := r.NewHintContext()
		for _, t := range tuples {
			r.InsertCtx(t, hints)
		}
		return nil
	}

	g, _ := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			hints := r.NewHintContext()
			for i := w; i < len(tuples); i += workers {
				r.InsertCtx(tuples[i], hints)
			}
			return nil
		})
	}
	return g.Wait()
}
