// Package reldb is the public façade over the concurrent in-memory
// relational storage core: a typed relation container backed by a
// B-tree/trie primary index, any number of secondary indices, and a
// chunked master arena. External callers (a Datalog runtime's generated
// query code, or anything else driving bottom-up fixpoint evaluation)
// only ever go through this package; internal/* packages are
// implementation detail.
package reldb

import (
	"context"
	"errors"

	"github.com/orizon-lang/reldb/internal/relation"
)

// Error taxonomy (see SPEC_FULL.md §3): structural misuse detected
// during iteration, and disjoint-set id-space exhaustion.
var (
	// ErrIteratorInvalidated names the error for iterating a
	// binary-equivalence relation whose cached class trie was invalidated
	// by a concurrent insert. No API in this module returns it: binrel's
	// Iterator.Next reports only (pair, ok).
	ErrIteratorInvalidated = errors.New("reldb: iterator invalidated by a concurrent structural modification")
	// ErrCapacityExceeded names the error for exhausting a disjoint-set's
	// dense id space (2^32 elements). No API in this module returns it:
	// unionfind.Set.MakeNode does not check for id overflow.
	ErrCapacityExceeded = errors.New("reldb: disjoint-set id space exhausted")
)

// Tuple is a fixed-arity row of N signed 32-bit integers in declaration
// order.
type Tuple = relation.Tuple

// TupleIterator yields Tuples in some index's native order. Iteration
// must not overlap with any insert into the relation it was derived
// from; behavior under concurrent writes is undefined.
type TupleIterator = relation.TupleIterator

// IndexSpec declares one secondary index as a column permutation, plus
// whether it is meant to cover every relation column.
type IndexSpec = relation.IndexSpec

// Stats is a read-only snapshot of index sizes for external, read-only
// collaborators (e.g. a profiler) to consume.
type Stats = relation.Stats

// PrimaryIndex selects the relation's primary (always full) index in
// EqualRange.
const PrimaryIndex = -1

// Relation is a multiset-semantically set of fixed-arity tuples backed
// by one primary full index and any number of secondary indices.
type Relation struct {
	inner *relation.Relation
}

// New creates an empty relation of the given arity. Each secondary
// IndexSpec declares an additional column-permutation view; a full
// primary index covering every column is always synthesized regardless.
func New(arity int, secondary ...IndexSpec) *Relation {
	return &Relation{inner: relation.New(arity, secondary...)}
}

// Insert adds tuple if absent and reports whether it was new.
func (r *Relation) Insert(tuple Tuple) bool { return r.inner.Insert(tuple) }

// Hints is a per-goroutine bundle of operation contexts, one per index,
// that InsertWithHint reuses across a run of calls sharing locality (a
// common leading prefix, or simply temporal proximity) with the previous
// call — spec.md's insert_with_hint. Obtain one via NewHints and reuse it
// across a sequence of InsertWithHint calls from a single goroutine; do
// not share a Hints value across goroutines.
type Hints = relation.Hints

// NewHints creates a Hints bundle sized for r's indices.
func (r *Relation) NewHints() *Hints { return r.inner.NewHintContext() }

// InsertWithHint behaves like Insert but consults and updates hints,
// letting a caller that inserts many tuples sharing locality (e.g. a
// bulk load, or repeated nearby Datalog rule firings) skip re-descending
// through index levels the previous call already visited. hints may be
// nil, in which case InsertWithHint behaves exactly like Insert.
func (r *Relation) InsertWithHint(tuple Tuple, hints *Hints) bool {
	return r.inner.InsertCtx(tuple, hints)
}

// Contains reports whether tuple is present.
func (r *Relation) Contains(tuple Tuple) bool { return r.inner.Contains(tuple) }

// Size returns the number of distinct tuples.
func (r *Relation) Size() int { return r.inner.Size() }

// Empty reports whether the relation holds no tuples.
func (r *Relation) Empty() bool { return r.inner.Empty() }

// Iter scans every tuple in primary-index order.
func (r *Relation) Iter() TupleIterator { return r.inner.Iter() }

// EqualRange selects index i (PrimaryIndex for the primary) and returns
// its equal-range over prefix, given in that index's column order.
func (r *Relation) EqualRange(i int, prefix Tuple) TupleIterator {
	return r.inner.EqualRange(i, prefix)
}

// InsertAll bulk-merges other's tuples into r.
func (r *Relation) InsertAll(other *Relation) { r.inner.InsertAll(other.inner) }

// Partition returns disjoint iterator ranges over the primary index, for
// sharding a scan across worker goroutines: approximately k of them for
// arity >= 3 (B-tree primary), a single full range for arity <= 2.
func (r *Relation) Partition(k int) []TupleIterator { return r.inner.Partition(k) }

// Purge clears every tuple from every index.
func (r *Relation) Purge() { r.inner.Purge() }

// Stats returns a point-in-time snapshot of index sizes.
func (r *Relation) Stats() Stats { return r.inner.Stats() }

// BulkLoadParallel shards tuples across workers goroutines (0 picks
// Workers()) and inserts each shard concurrently.
func (r *Relation) BulkLoadParallel(ctx context.Context, tuples []Tuple, workers int) error {
	return r.inner.BulkLoadParallel(ctx, tuples, workers)
}

// Workers returns the default worker-goroutine count: RELDB_WORKERS if
// set to a valid positive integer, else runtime.NumCPU().
func Workers() int { return relation.Workers() }
