package btree

import "fmt"

// Load bulk-builds a balanced tree directly from a sorted, ascending slice
// in O(n) with near-optimal fill rate. It is illegal to call on unsorted
// input (or, for set semantics, input containing duplicates).
func (t *Tree[T]) Load(sorted []T) error {
	for i := 1; i < len(sorted); i++ {
		c := t.cmp(sorted[i-1], sorted[i])
		if c > 0 || (t.isSet && c == 0) {
			return fmt.Errorf("btree: Load requires strictly ascending input (set=%v) at index %d", t.isSet, i)
		}
	}

	t.rootLock.StartWrite()
	defer t.rootLock.EndWrite()

	if len(sorted) == 0 {
		t.root.Store(nil)
		t.size.Store(0)
		return nil
	}

	leaves := make([]*node[T], 0, (len(sorted)+t.order-1)/t.order)
	for i := 0; i < len(sorted); i += t.order {
		end := i + t.order
		if end > len(sorted) {
			end = len(sorted)
		}
		leaves = append(leaves, &node[T]{leaf: true, keys: append([]T{}, sorted[i:end]...)})
	}

	level := leaves
	for len(level) > 1 {
		groupSize := t.order + 1
		next := make([]*node[T], 0, (len(level)+groupSize-1)/groupSize)
		for i := 0; i < len(level); i += groupSize {
			end := i + groupSize
			if end > len(level) {
				end = len(level)
			}
			group := level[i:end]
			keys := make([]T, 0, len(group)-1)
			for j := 1; j < len(group); j++ {
				keys = append(keys, firstKey(group[j]))
			}
			n := &node[T]{keys: keys, children: append([]*node[T]{}, group...)}
			reparent(n, n.children)
			next = append(next, n)
		}
		level = next
	}

	t.root.Store(level[0])
	t.size.Store(int64(len(sorted)))
	return nil
}
