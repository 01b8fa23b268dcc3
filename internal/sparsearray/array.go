// Package sparsearray implements a lazily-growing radix tree mapping dense
// u32 keys to values, and the sparse bitmap built on top of it. Both are the
// substrate the trie package nests to form ordered integer-tuple sets.
package sparsearray

import (
	"sync/atomic"
)

// Bits is the per-level fanout exponent: each level consumes Bits bits of
// the key, giving a fanout of 1<<Bits children per node.
const Bits = 6
const fanout = 1 << Bits
const indexMask = fanout - 1

func span(levels uint32) uint32 {
	if levels == 0 {
		return 0
	}
	return uint32(1) << (levels * Bits)
}

// box lets leaf cells be updated with a single atomic pointer swap instead
// of requiring T itself to be atomic-safe, the same trick the teacher's
// lock-free hash map uses for its value slots.
type box[T comparable] struct{ v T }

// node is used both as an inner node (children populated) and as a leaf
// node (values populated); which array is live is determined purely by the
// node's depth in the tree, which callers always know from the root
// descriptor's level count.
type node[T comparable] struct {
	children [fanout]atomic.Pointer[node[T]]
	values   [fanout]atomic.Pointer[box[T]]
}

// descriptor is the root info triple (root, levels, offset) installed
// atomically as a whole so readers always see a mutually consistent view,
// replacing the "low pointer bit as lock flag" trick with a plain
// pointer-to-immutable-struct swap.
type descriptor[T comparable] struct {
	root   *node[T]
	levels uint32
	offset uint32
}

// firstInfo is the (leaf, absolute offset) pair that bumpFirst records
// when a write lands below the recorded offset. Begin and the cursors do
// not read it; they always descend from the root descriptor.
type firstInfo[T comparable] struct {
	first       *node[T]
	firstOffset uint32
}

// MergeOp combines an existing and incoming value during Array.AddAll. The
// default merge (see New) prefers the incoming (other-side) value whenever
// it is non-default.
type MergeOp[T comparable] func(existing, incoming T) T

// Array is a map from u32 keys to values of type T, default-initialized on
// access. The zero value is an empty array using PreferIncoming as its
// merge operator; use New to supply a custom merge operator.
type Array[T comparable] struct {
	desc    atomic.Pointer[descriptor[T]]
	first   atomic.Pointer[firstInfo[T]]
	mergeOp MergeOp[T]
}

// PreferIncoming is the default MergeOp: the incoming value wins unless it
// is the zero value, in which case the existing value is kept.
func PreferIncoming[T comparable](existing, incoming T) T {
	var zero T
	if incoming != zero {
		return incoming
	}
	return existing
}

// New creates an empty Array using the given merge operator for AddAll.
func New[T comparable](merge MergeOp[T]) *Array[T] {
	if merge == nil {
		merge = PreferIncoming[T]
	}
	return &Array[T]{mergeOp: merge}
}

// Get returns the value stored at i, or the zero value of T if unset.
func (a *Array[T]) Get(i uint32) T {
	var zero T
	d := a.desc.Load()
	if d == nil || i < d.offset || i >= d.offset+span(d.levels) {
		return zero
	}
	n := d.root
	levels := d.levels
	for levels > 1 {
		shift := (levels - 1) * Bits
		idx := (i >> shift) & indexMask
		child := n.children[idx].Load()
		if child == nil {
			return zero
		}
		n = child
		levels--
	}
	b := n.values[i&indexMask].Load()
	if b == nil {
		return zero
	}
	return b.v
}

// Update sets the value at i to v, growing the tree as needed.
func (a *Array[T]) Update(i uint32, v T) {
	leaf, idx := a.locateForWrite(i)
	leaf.values[idx].Store(&box[T]{v: v})
	a.bumpFirst(i)
}

// LoadOrCreate returns the value already stored at i if present; otherwise
// it calls create(), installs the result via a single CAS on the leaf
// cell, and returns it. If the CAS loses the race, the speculative value
// from this call is discarded (left for the garbage collector) and the
// winner's value is returned instead. created reports whether this call's
// value won the race.
func (a *Array[T]) LoadOrCreate(i uint32, create func() T) (value T, created bool) {
	leaf, idx := a.locateForWrite(i)
	for {
		if existing := leaf.values[idx].Load(); existing != nil {
			return existing.v, false
		}
		v := create()
		nb := &box[T]{v: v}
		if leaf.values[idx].CompareAndSwap(nil, nb) {
			a.bumpFirst(i)
			return v, true
		}
		// Someone else installed a value first; loop to read it back.
	}
}

// Empty reports whether the array has never been grown (used by callers that
// just need an empty check without scanning).
func (a *Array[T]) Empty() bool {
	return a.desc.Load() == nil
}

func (a *Array[T]) locateForWrite(i uint32) (*node[T], uint32) {
	for {
		d := a.desc.Load()
		if d == nil {
			leaf := &node[T]{}
			nd := &descriptor[T]{root: leaf, levels: 1, offset: i &^ uint32(indexMask)}
			if a.desc.CompareAndSwap(nil, nd) {
				return leaf, i & indexMask
			}
			continue
		}
		if i < d.offset || i >= d.offset+span(d.levels) {
			a.raiseOnce(d, i)
			continue
		}
		leaf, idx, ok := a.descendCreate(d, i)
		if !ok {
			continue
		}
		return leaf, idx
	}
}

// raiseOnce grows the tree by one level so that it covers offsets closer to
// i; callers loop until the range finally covers i, since a single raise
// may not be enough and concurrent raises may interleave.
func (a *Array[T]) raiseOnce(d *descriptor[T], i uint32) {
	newLevels := d.levels + 1
	newSpan := span(newLevels)
	newOffset := (d.offset / newSpan) * newSpan
	childIdx := (d.offset - newOffset) / span(d.levels)
	newRoot := &node[T]{}
	newRoot.children[childIdx].Store(d.root)
	nd := &descriptor[T]{root: newRoot, levels: newLevels, offset: newOffset}
	a.desc.CompareAndSwap(d, nd)
	_ = i // range coverage is rechecked by the caller's loop
}

func (a *Array[T]) descendCreate(d *descriptor[T], i uint32) (*node[T], uint32, bool) {
	n := d.root
	levels := d.levels
	for levels > 1 {
		shift := (levels - 1) * Bits
		idx := (i >> shift) & indexMask
		child := n.children[idx].Load()
		if child == nil {
			nc := &node[T]{}
			if n.children[idx].CompareAndSwap(nil, nc) {
				child = nc
			} else {
				child = n.children[idx].Load()
				if child == nil {
					return nil, 0, false
				}
			}
		}
		n = child
		levels--
	}
	return n, i & indexMask, true
}

func (a *Array[T]) bumpFirst(i uint32) {
	for {
		cur := a.first.Load()
		if cur != nil && cur.firstOffset <= i {
			return
		}
		d := a.desc.Load()
		if d == nil {
			return
		}
		leaf, _, ok := a.descendCreate(d, d.offset)
		if !ok {
			continue
		}
		// Record the leaf at the tree's own offset (creating the path to it
		// if absent); this is the lower edge of the covered range, not
		// necessarily the leftmost non-default cell.
		nf := &firstInfo[T]{first: leaf, firstOffset: d.offset}
		if a.first.CompareAndSwap(cur, nf) {
			return
		}
	}
}
