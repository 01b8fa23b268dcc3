package trie

import "github.com/orizon-lang/reldb/internal/sparsearray"

// Iterator walks a trie's tuples in lexicographic order, reassembling each
// full tuple from the path of first-components taken to reach it.
type Iterator struct {
	prefix    []int32
	exhausted bool

	// once/haveOnce short-circuit the arity-0-after-prefix-match case from
	// Boundaries: a single tuple, already fully known.
	once     []int32
	haveOnce bool

	flagged  bool // arity-0 node: whether the single tuple has been emitted
	bitIt    *sparsearray.BitIterator
	childIt  *sparsearray.Cursor[*Trie]
	childSub *Iterator
}

func newIterator(t *Trie, prefix []int32) *Iterator {
	it := &Iterator{prefix: prefix}
	switch {
	case t.arity == 0:
		it.flagged = !t.flag.Load()
	case t.arity == 1:
		it.bitIt = t.bitmap.Begin()
	default:
		it.childIt = t.children.Begin()
	}
	return it
}

// Next returns the next tuple in order, or ok=false when exhausted.
func (it *Iterator) Next() ([]int32, bool) {
	if it.haveOnce {
		it.haveOnce = false
		return it.once, true
	}
	if it.exhausted {
		return nil, false
	}

	if it.bitIt != nil {
		v, ok := it.bitIt.Next()
		if !ok {
			it.exhausted = true
			return nil, false
		}
		return appendTuple(it.prefix, decode(v)), true
	}

	if it.childIt != nil {
		for {
			if it.childSub != nil {
				if tup, ok := it.childSub.Next(); ok {
					return tup, true
				}
				it.childSub = nil
			}
			e, ok := it.childIt.Next()
			if !ok {
				it.exhausted = true
				return nil, false
			}
			it.childSub = newIterator(e.Value, appendTuple(it.prefix, decode(e.Index)))
		}
	}

	// arity-0 node: a single implicit tuple equal to the matched prefix.
	if !it.flagged {
		it.flagged = true
		return append([]int32{}, it.prefix...), true
	}
	it.exhausted = true
	return nil, false
}

func appendTuple(prefix []int32, v int32) []int32 {
	out := make([]int32, len(prefix)+1)
	copy(out, prefix)
	out[len(prefix)] = v
	return out
}
