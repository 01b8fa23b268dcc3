// Package relation implements the generic relation container: a primary
// full index plus any number of secondary (possibly partial) indices,
// multiplexed over one chunked master arena so every tuple has exactly one
// canonical copy no matter how many indices reference it.
package relation

import (
	"github.com/orizon-lang/reldb/internal/btree"
	"github.com/orizon-lang/reldb/internal/trie"
)

// Tuple is a fixed-arity, value-typed row: N signed 32-bit integers in
// declaration order. Go has no const-generics, so arity is a runtime
// invariant enforced by each Index rather than a type parameter.
type Tuple []int32

// TupleIterator yields Tuples in an index's native order.
type TupleIterator interface {
	Next() (Tuple, bool)
}

// Index is one ordered column-permutation view over a relation's tuples.
// A full index covers all N columns; a partial index covers a proper
// prefix and every query against it must specify that prefix's columns
// in permutation order.
type Index interface {
	// Insert adds tuple, given in the relation's declaration column
	// order (the index permutes internally), and reports whether it was
	// new to this index.
	Insert(tuple Tuple) bool
	// NewHintContext creates an opaque per-goroutine operation context
	// (a *trie.Context or *btree.Hints[Tuple], depending on the index's
	// underlying kind) that InsertCtx can reuse across a run of calls
	// sharing a common leading prefix, to skip repeated descent. It must
	// only be used by one goroutine at a time.
	NewHintContext() any
	// InsertCtx behaves like Insert but consults and updates ctx (from
	// NewHintContext). ctx must have been created by this same index.
	InsertCtx(tuple Tuple, ctx any) bool
	// InsertAll bulk-merges another index of the same kind and
	// permutation.
	InsertAll(other Index)
	// Contains reports whether tuple (declaration order) is present.
	// Only valid for indices whose coverage equals len(tuple).
	Contains(tuple Tuple) bool
	// EqualRange returns every stored tuple sharing prefix as a leading
	// subsequence. prefix must already be given in this index's column
	// order (len(prefix) <= Covers()).
	EqualRange(prefix Tuple) TupleIterator
	// Len returns the number of distinct (permuted) tuples stored.
	Len() int
	// Clear discards every stored tuple.
	Clear()
	// Permutation returns the column order this index stores tuples in.
	Permutation() []int
	// Covers reports the number of leading columns (in query order)
	// this index can answer a prefix query over.
	Covers() int
}

func permute(t Tuple, perm []int) Tuple {
	out := make(Tuple, len(perm))
	for i, col := range perm {
		out[i] = t[col]
	}
	return out
}

func identity(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// newIndex builds the index kind the spec prescribes for the given
// permutation length: a trie for arity <= 2 (fast point/prefix lookups
// on small keys), a B-tree otherwise (ordered range scans scale better
// once keys get wide). full marks whether this permutation covers every
// relation column.
func newIndex(perm []int, full bool) Index {
	if len(perm) <= 2 {
		return &trieIndex{perm: perm, full: full, t: trie.New(len(perm))}
	}
	cmp := func(a, b Tuple) int {
		for i := range a {
			if a[i] != b[i] {
				if a[i] < b[i] {
					return -1
				}
				return 1
			}
		}
		return 0
	}
	order := btree.DefaultOrder(4096, len(perm)*4)
	return &btreeIndex{perm: perm, full: full, t: btree.New(order, true, cmp)}
}

type trieIndex struct {
	perm []int
	full bool
	t    *trie.Trie
}

func (x *trieIndex) Insert(tuple Tuple) bool   { return x.t.Insert(permute(tuple, x.perm)) }
func (x *trieIndex) Contains(tuple Tuple) bool { return x.t.Contains(permute(tuple, x.perm)) }
func (x *trieIndex) NewHintContext() any       { return x.t.NewContext() }
func (x *trieIndex) InsertCtx(tuple Tuple, ctx any) bool {
	c, _ := ctx.(*trie.Context)
	return x.t.InsertCtx(permute(tuple, x.perm), c)
}
func (x *trieIndex) Len() int                    { return x.t.Size() }
func (x *trieIndex) Clear()                      { x.t = trie.New(len(x.perm)) }
func (x *trieIndex) Permutation() []int          { return x.perm }
func (x *trieIndex) Covers() int                 { return len(x.perm) }
func (x *trieIndex) InsertAll(other Index) {
	o, ok := other.(*trieIndex)
	if !ok {
		o2 := other.EqualRange(nil)
		for {
			tup, ok := o2.Next()
			if !ok {
				return
			}
			x.Insert(tup)
		}
	}
	x.t.InsertAll(o.t)
}
func (x *trieIndex) EqualRange(prefix Tuple) TupleIterator {
	return tupleIterAdapter{x.t.Boundaries([]int32(prefix))}
}

type tupleIterAdapter struct{ it *trie.Iterator }

func (a tupleIterAdapter) Next() (Tuple, bool) {
	tup, ok := a.it.Next()
	return Tuple(tup), ok
}

type btreeIndex struct {
	perm []int
	full bool
	t    *btree.Tree[Tuple]
}

func (x *btreeIndex) Insert(tuple Tuple) bool   { return x.t.Insert(permute(tuple, x.perm)) }
func (x *btreeIndex) Contains(tuple Tuple) bool { return x.t.Contains(permute(tuple, x.perm)) }
func (x *btreeIndex) NewHintContext() any       { return &btree.Hints[Tuple]{} }
func (x *btreeIndex) InsertCtx(tuple Tuple, ctx any) bool {
	h, _ := ctx.(*btree.Hints[Tuple])
	return x.t.InsertHint(permute(tuple, x.perm), h)
}
func (x *btreeIndex) Len() int                  { return x.t.Size() }
func (x *btreeIndex) Clear()                    { x.t.Clear() }
func (x *btreeIndex) Permutation() []int        { return x.perm }
func (x *btreeIndex) Covers() int               { return len(x.perm) }
func (x *btreeIndex) InsertAll(other Index) {
	o2 := other.EqualRange(nil)
	for {
		tup, ok := o2.Next()
		if !ok {
			return
		}
		x.Insert(tup)
	}
}
func (x *btreeIndex) EqualRange(prefix Tuple) TupleIterator {
	if len(prefix) == 0 {
		return btreeIterAdapter{x.t.Begin()}
	}
	lo := make(Tuple, len(x.perm))
	copy(lo, prefix)
	const minInt32 = int32(-1 << 31)
	for i := len(prefix); i < len(lo); i++ {
		lo[i] = minInt32
	}
	return &prefixIter{it: x.t.LowerBound(lo), prefix: append(Tuple{}, prefix...)}
}

type btreeIterAdapter struct{ it *btree.Iterator[Tuple] }

func (a btreeIterAdapter) Next() (Tuple, bool) { return a.it.Next() }

// prefixIter stops as soon as the leading len(prefix) columns no longer
// match, turning a B-tree LowerBound scan into a bounded equal-range: once
// the prefix diverges under ascending order it never matches again.
type prefixIter struct {
	it     *btree.Iterator[Tuple]
	prefix Tuple
}

func (p *prefixIter) Next() (Tuple, bool) {
	tup, ok := p.it.Next()
	if !ok {
		return nil, false
	}
	for i, v := range p.prefix {
		if tup[i] != v {
			return nil, false
		}
	}
	return tup, true
}
