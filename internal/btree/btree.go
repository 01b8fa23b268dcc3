// Package btree implements a cache-conscious ordered B-tree/B-tree-set used
// as the relation container's full and partial indices for arities too
// large to trie-index efficiently. Reads (Contains, bounds, iteration) are
// lock-coupled through each node's optimistic lock and restart from the
// root on validation failure. Writers descend the same way, upgrading a
// leaf's read lease to a write lock at the insertion point; a full leaf
// triggers "sphere of influence" locking that walks the parent chain
// upward, pre-acquiring write locks on every full ancestor (stopping at the
// first ancestor with room, or the root), so independent subtrees can split
// concurrently instead of serializing behind one tree-wide mutex.
package btree

import (
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"

	"github.com/orizon-lang/reldb/internal/rsync"
)

// Comparator returns <0, 0, >0 for a<b, a==b, a>b respectively.
type Comparator[T any] func(a, b T) int

// Tree is a concurrent, cache-conscious ordered container of T. rootLock
// guards only replacement of the root pointer itself (first insertion, and
// root growth on a root split); ordinary structural writes lower in the
// tree never touch it, letting splits in disjoint subtrees proceed in
// parallel.
type Tree[T any] struct {
	cmp      Comparator[T]
	order    int // K: max keys per node
	isSet    bool
	_        cpu.CacheLinePad
	rootLock rsync.Optimistic
	root     atomic.Pointer[node[T]]
	size     atomic.Int64
}

// Hints caches the node where each kind of operation last ended, so a
// caller issuing a run of nearby keys (e.g. sorted bulk insertion, or
// repeated point lookups in the same region) from a single goroutine can
// skip re-descending from the root: the cached node is tried first and
// used only if its key range still covers the new key and its version has
// not changed since. Hints must not be shared across goroutines.
type Hints[T any] struct {
	lastInsert     *node[T]
	lastFind       *node[T]
	lastLowerBound *node[T]
	lastUpperBound *node[T]
}

// Clear resets every cached node, e.g. after the owning tree was cleared.
func (h *Hints[T]) Clear() { *h = Hints[T]{} }

// DefaultOrder picks K = max(3, (blockSize-header)/keySize), matching
// spec.md's block-size-driven sizing without requiring callers to reason
// about node header bytes themselves.
func DefaultOrder(blockSize, keySize int) int {
	const header = 64 // approximate node header: lock + parent + position + slice headers
	k := (blockSize - header) / keySize
	if k < 3 {
		k = 3
	}
	return k
}

// New creates an empty tree. isSet selects set (duplicates rejected) vs
// multiset (duplicates allowed, inserted after existing equal keys)
// semantics.
func New[T any](order int, isSet bool, cmp Comparator[T]) *Tree[T] {
	if order < 3 {
		order = 3
	}
	return &Tree[T]{cmp: cmp, order: order, isSet: isSet}
}

// Size returns the number of stored elements.
func (t *Tree[T]) Size() int { return int(t.size.Load()) }

// Empty reports whether the tree has no elements.
func (t *Tree[T]) Empty() bool { return t.Size() == 0 }

func lowerBound[T any](keys []T, key T, cmp Comparator[T]) int {
	i := 0
	for i < len(keys) && cmp(keys[i], key) < 0 {
		i++
	}
	return i
}

func upperBound[T any](keys []T, key T, cmp Comparator[T]) int {
	i := 0
	for i < len(keys) && cmp(keys[i], key) <= 0 {
		i++
	}
	return i
}

func (t *Tree[T]) splitPoint() int {
	sp := 3 * t.order / 4
	if alt := t.order - 2; alt < sp {
		sp = alt
	}
	if sp < 1 {
		sp = 1
	}
	if sp > t.order-1 {
		sp = t.order - 1
	}
	return sp
}

type splitResult[T any] struct {
	right *node[T]
	sep   T
}

// covers reports whether n's current key range could contain key, for the
// purpose of deciding whether a cached hint node is worth trying before a
// fresh root descent. A stale or wrong answer here is always safe: the
// caller re-validates n's lock before trusting anything read from it.
func (t *Tree[T]) covers(n *node[T], key T) bool {
	if len(n.keys) == 0 {
		return false
	}
	if t.isSet {
		return t.cmp(key, n.keys[0]) >= 0 && t.cmp(n.keys[len(n.keys)-1], key) >= 0
	}
	return t.cmp(n.keys[0], key) < 0 && t.cmp(key, n.keys[len(n.keys)-1]) < 0
}

// startAtHintOrRoot returns a read-locked starting node for a lock-coupled
// descent toward key: the hint node if it's still plausible and valid, else
// the current root (read through rootLock so a concurrent root replacement
// is detected and retried).
func (t *Tree[T]) startAtHintOrRoot(key T, hint *node[T]) (*node[T], rsync.Lease, bool) {
	if hint != nil {
		lease := hint.lock.StartRead()
		if t.covers(hint, key) && hint.lock.Validate(lease) {
			return hint, lease, true
		}
	}
	for {
		rootLease := t.rootLock.StartRead()
		root := t.root.Load()
		if root == nil {
			if t.rootLock.EndRead(rootLease) {
				return nil, 0, false
			}
			continue
		}
		lease := root.lock.StartRead()
		if t.rootLock.EndRead(rootLease) {
			return root, lease, true
		}
	}
}

// Insert adds key if absent (set semantics) or always (multiset
// semantics) and reports whether the tree grew by one element.
func (t *Tree[T]) Insert(key T) bool { return t.InsertHint(key, nil) }

// InsertHint behaves like Insert but consults and updates hints, so a
// goroutine performing many nearby inserts in a row can skip redundant
// root-to-leaf descents.
func (t *Tree[T]) InsertHint(key T, hints *Hints[T]) bool {
	// special-case: populate the very first element.
	for t.size.Load() == 0 {
		if !t.rootLock.TryStartWrite() {
			continue
		}
		if t.size.Load() != 0 {
			t.rootLock.AbortWrite()
			break
		}
		leaf := &node[T]{leaf: true, keys: []T{key}}
		t.root.Store(leaf)
		t.size.Add(1)
		t.rootLock.EndWrite()
		if hints != nil {
			hints.lastInsert = leaf
		}
		return true
	}

	var hint *node[T]
	if hints != nil {
		hint = hints.lastInsert
	}
	cur, lease, ok := t.startAtHintOrRoot(key, hint)
	if !ok {
		// root became nil between the size check and here; retry.
		return t.InsertHint(key, hints)
	}

	for {
		if !cur.leaf {
			idx := lowerBound(cur.keys, key, t.cmp)
			if t.isSet && idx < len(cur.keys) && t.cmp(cur.keys[idx], key) == 0 {
				if !cur.lock.Validate(lease) {
					return t.InsertHint(key, hints)
				}
				return false
			}
			next := cur.children[idx]
			nextLease := next.lock.StartRead()
			if !cur.lock.Validate(lease) {
				return t.InsertHint(key, hints)
			}
			cur, lease = next, nextLease
			continue
		}

		idx := upperBound(cur.keys, key, t.cmp)
		if t.isSet && idx > 0 && t.cmp(cur.keys[idx-1], key) == 0 {
			if !cur.lock.Validate(lease) {
				return t.InsertHint(key, hints)
			}
			return false
		}

		if !cur.lock.TryUpgradeToWrite(lease) {
			if hints != nil {
				hints.lastInsert = cur
			}
			return t.InsertHint(key, hints)
		}

		if len(cur.keys) < t.order {
			cur.keys = insertAt(cur.keys, idx, key)
			cur.lock.EndWrite()
			t.size.Add(1)
			if hints != nil {
				hints.lastInsert = cur
			}
			return true
		}

		t.insertFullLeaf(cur, idx, key)
		if hints != nil {
			hints.lastInsert = cur
		}
		return true
	}
}

// insertFullLeaf splits leaf (already held under a write lock obtained by
// the caller) and propagates the split upward, pre-locking every "full"
// ancestor on the way so the whole cascade commits atomically with respect
// to other readers and writers, without taking a single tree-wide lock.
func (t *Tree[T]) insertFullLeaf(leaf *node[T], idx int, key T) {
	// ancestors holds, for each level above leaf that must be visited, the
	// node whose write lock was acquired (nil meaning "leaf's subtree was
	// the whole tree", i.e. the root lock was taken instead).
	var ancestors []*node[T]

	priv := leaf
	for {
		parent := priv.parent
		if parent != nil {
			parent.lock.StartWrite()
			for parent != priv.parent {
				parent.lock.AbortWrite()
				parent = priv.parent
				parent.lock.StartWrite()
			}
		} else {
			t.rootLock.StartWrite()
		}
		ancestors = append(ancestors, parent)
		if parent == nil || len(parent.keys) < t.order {
			break
		}
		priv = parent
	}

	oldRoot := t.root.Load()

	childNode := leaf
	res := t.splitLeafLocked(leaf, idx, key)

	for _, p := range ancestors {
		if res == nil {
			continue
		}
		if p == nil {
			newRoot := &node[T]{keys: []T{res.sep}, children: []*node[T]{childNode, res.right}}
			reparent(newRoot, newRoot.children)
			t.root.Store(newRoot)
			res = nil
			continue
		}
		pos := childNode.position
		res = t.insertIntoInnerLocked(p, pos, res.sep, res.right)
		childNode = p
	}

	for i := len(ancestors) - 1; i >= 0; i-- {
		p := ancestors[i]
		if p != nil {
			p.lock.EndWrite()
			continue
		}
		if t.root.Load() != oldRoot {
			t.rootLock.EndWrite()
		} else {
			t.rootLock.AbortWrite()
		}
	}

	leaf.lock.EndWrite()
	t.size.Add(1)
}

// splitLeafLocked and insertIntoInnerLocked mutate an already write-locked
// node directly; the caller is responsible for releasing that lock once
// the whole cascade this split is part of has committed.

func (t *Tree[T]) splitLeafLocked(n *node[T], idx int, key T) *splitResult[T] {
	total := make([]T, 0, len(n.keys)+1)
	total = append(total, n.keys[:idx]...)
	total = append(total, key)
	total = append(total, n.keys[idx:]...)

	sp := t.splitPoint()
	leftKeys := append([]T{}, total[:sp]...)
	rightKeys := append([]T{}, total[sp:]...)

	right := &node[T]{leaf: true, keys: rightKeys, parent: n.parent}
	n.keys = leftKeys
	return &splitResult[T]{right: right, sep: rightKeys[0]}
}

func (t *Tree[T]) insertIntoInnerLocked(n *node[T], idx int, key T, child *node[T]) *splitResult[T] {
	if len(n.keys) < t.order {
		n.keys = insertAt(n.keys, idx, key)
		n.children = insertChildAt(n.children, idx+1, child)
		reparent(n, n.children)
		return nil
	}

	totalKeys := make([]T, 0, len(n.keys)+1)
	totalKeys = append(totalKeys, n.keys[:idx]...)
	totalKeys = append(totalKeys, key)
	totalKeys = append(totalKeys, n.keys[idx:]...)

	totalChildren := make([]*node[T], 0, len(n.children)+1)
	totalChildren = append(totalChildren, n.children[:idx+1]...)
	totalChildren = append(totalChildren, child)
	totalChildren = append(totalChildren, n.children[idx+1:]...)

	sp := t.splitPoint()
	leftKeys := append([]T{}, totalKeys[:sp]...)
	sepKey := totalKeys[sp]
	rightKeys := append([]T{}, totalKeys[sp+1:]...)
	leftChildren := append([]*node[T]{}, totalChildren[:sp+1]...)
	rightChildren := append([]*node[T]{}, totalChildren[sp+1:]...)

	right := &node[T]{keys: rightKeys, children: rightChildren, parent: n.parent}
	reparent(right, rightChildren)

	n.keys = leftKeys
	n.children = leftChildren
	reparent(n, leftChildren)

	return &splitResult[T]{right: right, sep: sepKey}
}

// Contains reports whether key is present. It restarts from the root (or a
// cached hint) if an optimistic read is invalidated by a concurrent
// structural write.
func (t *Tree[T]) Contains(key T) bool { return t.ContainsHint(key, nil) }

// ContainsHint behaves like Contains but consults and updates hints.
func (t *Tree[T]) ContainsHint(key T, hints *Hints[T]) bool {
	var hint *node[T]
	if hints != nil {
		hint = hints.lastFind
	}
	for {
		cur, lease, ok := t.startAtHintOrRoot(key, hint)
		if !ok {
			return false
		}
		valid, found, end := t.containsDescend(cur, lease, key)
		if valid {
			if hints != nil {
				hints.lastFind = end
			}
			return found
		}
		hint = nil
	}
}

func (t *Tree[T]) containsDescend(n *node[T], lease rsync.Lease, key T) (valid bool, found bool, leaf *node[T]) {
	if n.leaf {
		idx := upperBound(n.keys, key, t.cmp)
		found = idx > 0 && t.cmp(n.keys[idx-1], key) == 0
		return n.lock.Validate(lease), found, n
	}
	idx := lowerBound(n.keys, key, t.cmp)
	// A separator is always a stored element, so an exact match here is a
	// hit (descending would route it into the left subtree, which lacks it).
	if idx < len(n.keys) && t.cmp(n.keys[idx], key) == 0 {
		return n.lock.Validate(lease), true, n
	}
	var child *node[T]
	if idx < len(n.children) {
		child = n.children[idx]
	}
	if child == nil {
		return n.lock.Validate(lease), false, n
	}
	childLease := child.lock.StartRead()
	if !n.lock.Validate(lease) {
		return false, false, nil
	}
	return t.containsDescend(child, childLease, key)
}

// Clear resets the tree to empty, freeing every node.
func (t *Tree[T]) Clear() {
	t.rootLock.StartWrite()
	t.root.Store(nil)
	t.size.Store(0)
	t.rootLock.EndWrite()
}

// Equal reports whether t and other contain exactly the same elements.
func (t *Tree[T]) Equal(other *Tree[T]) bool {
	if t.Size() != other.Size() {
		return false
	}
	it := t.Begin()
	for {
		v, ok := it.Next()
		if !ok {
			return true
		}
		if !other.Contains(v) {
			return false
		}
	}
}

// Clone deep-copies every node.
func (t *Tree[T]) Clone() *Tree[T] {
	out := &Tree[T]{cmp: t.cmp, order: t.order, isSet: t.isSet}
	root := t.root.Load()
	if root != nil {
		out.root.Store(cloneNode(root, nil, 0))
	}
	out.size.Store(t.size.Load())
	return out
}

func cloneNode[T any](n *node[T], parent *node[T], position int) *node[T] {
	c := &node[T]{parent: parent, position: position, leaf: n.leaf, keys: append([]T{}, n.keys...)}
	if !n.leaf {
		c.children = make([]*node[T], len(n.children))
		for i, ch := range n.children {
			c.children[i] = cloneNode(ch, c, i)
		}
	}
	return c
}

// Swap exchanges the contents of t and other.
func (t *Tree[T]) Swap(other *Tree[T]) {
	first, second := t, other
	if uintptr(unsafe.Pointer(other)) < uintptr(unsafe.Pointer(t)) {
		first, second = other, t
	}
	first.rootLock.StartWrite()
	defer first.rootLock.EndWrite()
	second.rootLock.StartWrite()
	defer second.rootLock.EndWrite()

	tr := t.root.Load()
	or := other.root.Load()
	t.root.Store(or)
	other.root.Store(tr)

	ts := t.size.Load()
	os := other.size.Load()
	t.size.Store(os)
	other.size.Store(ts)

	t.cmp, other.cmp = other.cmp, t.cmp
	t.order, other.order = other.order, t.order
	t.isSet, other.isSet = other.isSet, t.isSet
}
