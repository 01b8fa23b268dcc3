//go:build reldb_debug

package btree

import "fmt"

// Check walks the whole tree validating the ordering and parent-linkage
// invariants. It is only compiled in under the reldb_debug build tag, for
// use in tests and fuzzing, not on production paths.
func (t *Tree[T]) Check() error {
	root := t.root.Load()
	if root == nil {
		if t.Size() != 0 {
			return fmt.Errorf("btree: nil root but size=%d", t.Size())
		}
		return nil
	}
	n, err := t.checkNode(root, nil, 0)
	if err != nil {
		return err
	}
	if n != t.Size() {
		return fmt.Errorf("btree: counted %d elements, size field says %d", n, t.Size())
	}
	return nil
}

func (t *Tree[T]) checkNode(n *node[T], parent *node[T], position int) (int, error) {
	if n.parent != parent {
		return 0, fmt.Errorf("btree: node has wrong parent back-link")
	}
	if n.position != position {
		return 0, fmt.Errorf("btree: node has wrong position back-link: got %d want %d", n.position, position)
	}
	for i := 1; i < len(n.keys); i++ {
		if t.cmp(n.keys[i-1], n.keys[i]) > 0 {
			return 0, fmt.Errorf("btree: keys out of order at index %d", i)
		}
		if t.isSet && t.cmp(n.keys[i-1], n.keys[i]) == 0 {
			return 0, fmt.Errorf("btree: duplicate key in set-mode tree at index %d", i)
		}
	}

	if n.leaf {
		if len(n.children) != 0 {
			return 0, fmt.Errorf("btree: leaf node has children")
		}
		return len(n.keys), nil
	}

	if len(n.children) != len(n.keys)+1 {
		return 0, fmt.Errorf("btree: inner node has %d keys but %d children", len(n.keys), len(n.children))
	}

	total := 0
	for i, child := range n.children {
		if i > 0 {
			sep := n.keys[i-1]
			if t.cmp(firstKey(child), sep) < 0 {
				return 0, fmt.Errorf("btree: child %d's first key precedes separator", i)
			}
		}
		c, err := t.checkNode(child, n, i)
		if err != nil {
			return 0, err
		}
		total += c
	}
	return total, nil
}
