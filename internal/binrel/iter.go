package binrel

import "github.com/orizon-lang/reldb/internal/trie"

// Pair is one related pair yielded by an Iterator.
type Pair[D comparable] struct{ X, Y D }

// Iterator is the single cursor shared by all five query flavors: it
// steps a "front" sequence of dense ids (either the whole domain in
// ascending order, or an explicit sorted list restricted to one class)
// and, for each front, a "back" cursor over its class's ordered trie.
type Iterator[D comparable] struct {
	rel *Relation[D]

	useList bool
	list    []uint32
	listPos int
	front   uint32
	n       uint32

	firstFront    uint32
	haveFirstBack bool
	firstBack     int32

	bounded    bool
	upperFront uint32
	upperBack  int32

	backIt   *trie.Iterator
	curFront uint32
}

func (it *Iterator[D]) nextFront() (uint32, bool) {
	if it.useList {
		if it.listPos >= len(it.list) {
			return 0, false
		}
		f := it.list[it.listPos]
		it.listPos++
		return f, true
	}
	if it.front >= it.n {
		return 0, false
	}
	f := it.front
	it.front++
	return f, true
}

// Next returns the next related pair in ascending (front, back) dense-id
// order, or ok=false once the query is exhausted.
func (it *Iterator[D]) Next() (Pair[D], bool) {
	for {
		if it.backIt == nil {
			f, ok := it.nextFront()
			if !ok {
				return Pair[D]{}, false
			}
			if it.bounded && f > it.upperFront {
				return Pair[D]{}, false
			}
			it.curFront = f
			rep := it.rel.sds.DenseFindByID(f)
			ct := it.rel.classTrie(rep)
			lo := int32(0)
			if f == it.firstFront && it.haveFirstBack {
				lo = it.firstBack
			}
			it.backIt = ct.LowerBound(lo)
		}

		tup, ok := it.backIt.Next()
		if !ok {
			it.backIt = nil
			continue
		}
		y := tup[0]
		if it.bounded && it.curFront == it.upperFront && y > it.upperBack {
			return Pair[D]{}, false
		}
		return Pair[D]{X: it.rel.sds.FromDense(it.curFront), Y: it.rel.sds.FromDense(uint32(y))}, true
	}
}

// FullScan iterates every related pair across every class, in ascending
// (front, back) dense-id order.
func (r *Relation[D]) FullScan() *Iterator[D] {
	return &Iterator[D]{rel: r, n: uint32(r.sds.DenseLen())}
}

// FindAt positions the cursor at the smallest pair (a, b) with a >= x,
// and b >= y when a == x.
func (r *Relation[D]) FindAt(x, y D) *Iterator[D] {
	fx := r.sds.ToDense(x)
	fy := r.sds.ToDense(y)
	return &Iterator[D]{
		rel: r, front: fx, n: uint32(r.sds.DenseLen()),
		firstFront: fx, haveFirstBack: true, firstBack: int32(fy),
	}
}

// FindBetween iterates every pair (a, b) with (x1, y1) <= (a, b) <= (x2,
// y2) in dense-id lexicographic order.
func (r *Relation[D]) FindBetween(x1, y1, x2, y2 D) *Iterator[D] {
	fx1 := r.sds.ToDense(x1)
	fy1 := r.sds.ToDense(y1)
	fx2 := r.sds.ToDense(x2)
	fy2 := r.sds.ToDense(y2)
	return &Iterator[D]{
		rel: r, front: fx1, n: uint32(r.sds.DenseLen()),
		firstFront: fx1, haveFirstBack: true, firstBack: int32(fy1),
		bounded: true, upperFront: fx2, upperBack: int32(fy2),
	}
}

// Closure iterates every pair inside rep's class.
func (r *Relation[D]) Closure(rep D) *Iterator[D] {
	repDense := r.sds.DenseFind(rep)
	return &Iterator[D]{rel: r, useList: true, list: r.sds.DenseMembers(repDense)}
}

// FrontProduct iterates (x, y) for every x in xs and every y in the
// shared class, where xs must be sorted ascending by dense id and share
// a single class (the precondition spec places on this flavor; behavior
// is undefined if violated).
func (r *Relation[D]) FrontProduct(xs []D) *Iterator[D] {
	list := make([]uint32, len(xs))
	for i, x := range xs {
		list[i] = r.sds.ToDense(x)
	}
	return r.frontProductDense(list)
}

// frontProductDense is FrontProduct for an already-dense, already-sorted
// front list, letting Partition build chunk iterators without round-
// tripping class members through the D domain and back.
func (r *Relation[D]) frontProductDense(fronts []uint32) *Iterator[D] {
	return &Iterator[D]{rel: r, useList: true, list: append([]uint32{}, fronts...)}
}
