// Package binrel presents a disjoint-set over an arbitrary domain D as a
// symmetric, reflexive, transitive binary relation: every pair of elements
// sharing a class is an implicit member. Each class materializes lazily as
// an ordered Trie<1> of dense ids so range queries over one class cost
// O(log) rather than O(|class|).
package binrel

import (
	"sort"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/orizon-lang/reldb/internal/rsync"
	"github.com/orizon-lang/reldb/internal/trie"
	"github.com/orizon-lang/reldb/internal/unionfind"
)

// Relation is a binary equivalence relation over D.
type Relation[D comparable] struct {
	sds   *unionfind.Sparse[D]
	lock  rsync.RWLock
	tries map[uint32]*trie.Trie
	group singleflight.Group
}

// New creates an empty relation.
func New[D comparable]() *Relation[D] {
	return &Relation[D]{sds: unionfind.NewSparse[D](), tries: make(map[uint32]*trie.Trie)}
}

func (r *Relation[D]) invalidate(rep uint32) {
	r.lock.Lock()
	delete(r.tries, rep)
	r.lock.Unlock()
}

// Insert adds the pair (x, y) (and, transitively, the full product of x's
// and y's merged classes), invalidating any cached tries for their prior
// classes, and reports whether the classes were previously distinct.
func (r *Relation[D]) Insert(x, y D) bool {
	rx := r.sds.DenseFind(x)
	ry := r.sds.DenseFind(y)
	r.invalidate(rx)
	r.invalidate(ry)
	return r.sds.Union(x, y)
}

// Contains reports whether x and y are related (share a class).
func (r *Relation[D]) Contains(x, y D) bool { return r.sds.Connected(x, y) }

// Size returns Σ|class|² over all classes.
func (r *Relation[D]) Size() int {
	total := 0
	for _, n := range r.sds.ClassSizesDense() {
		total += n * n
	}
	return total
}

// Partition returns up to k iterators that together cover every pair
// FullScan would, in disjoint ranges of approximately equal size: a class
// small enough that its whole product fits one chunk (|class|^2 <=
// chunkSize) is emitted whole via Closure; a larger class is instead
// split into several FrontProduct chunks, each covering a run of that
// class's members against the full class. The number of chunks returned
// may be more or less than k, depending on the class-size distribution.
func (r *Relation[D]) Partition(k int) []*Iterator[D] {
	sz := r.Size()
	if k <= 1 || sz == 0 {
		return []*Iterator[D]{r.FullScan()}
	}
	chunkSize := (sz + k - 1) / k

	classSizes := r.sds.ClassSizesDense()
	reps := make([]uint32, 0, len(classSizes))
	for rep := range classSizes {
		reps = append(reps, rep)
	}
	sort.Slice(reps, func(i, j int) bool { return reps[i] < reps[j] })

	var out []*Iterator[D]
	for _, rep := range reps {
		classSize := classSizes[rep]
		if classSize*classSize <= chunkSize {
			out = append(out, r.Closure(r.sds.FromDense(rep)))
			continue
		}

		var fronts []uint32
		cur := 0
		for _, el := range r.sds.DenseMembers(rep) {
			fronts = append(fronts, el)
			cur += classSize
			if cur >= chunkSize {
				out = append(out, r.frontProductDense(fronts))
				fronts = nil
				cur = 0
			}
		}
		if len(fronts) != 0 {
			out = append(out, r.frontProductDense(fronts))
		}
	}
	return out
}

// classTrie returns (building if necessary) the ordered Trie<1> of dense
// ids belonging to the class represented by rep. Concurrent builders for
// the same rep are deduped with singleflight; the result is cached under
// a read/write lock until the next Insert invalidates it.
func (r *Relation[D]) classTrie(rep uint32) *trie.Trie {
	r.lock.RLock()
	if t, ok := r.tries[rep]; ok {
		r.lock.RUnlock()
		return t
	}
	r.lock.RUnlock()

	key := strconv.FormatUint(uint64(rep), 10)
	v, _, _ := r.group.Do(key, func() (interface{}, error) {
		r.lock.Lock()
		defer r.lock.Unlock()
		if t, ok := r.tries[rep]; ok {
			return t, nil
		}
		t := trie.New(1)
		for _, m := range r.sds.DenseMembers(rep) {
			t.Insert([]int32{int32(m)})
		}
		r.tries[rep] = t
		return t, nil
	})
	return v.(*trie.Trie)
}
