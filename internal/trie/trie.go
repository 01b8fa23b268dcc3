// Package trie implements an ordered set of fixed-arity int32 tuples as
// nested sparse arrays, specialized with a sparse bitmap at the terminal
// level. It backs low-arity relation indices (see internal/relation) and
// the binary-equivalence-relation view in internal/binrel.
package trie

import (
	"sync/atomic"

	"github.com/orizon-lang/reldb/internal/sparsearray"
)

// signBit flips a signed int32's sign bit so that unsigned comparison of
// the resulting uint32 matches signed comparison of the original value;
// the sparse array underneath only knows how to order u32 keys.
const signBit = uint32(1) << 31

func encode(v int32) uint32 { return uint32(v) ^ signBit }
func decode(v uint32) int32 { return int32(v ^ signBit) }

// Trie is an ordered set of arity-N int32 tuples.
type Trie struct {
	arity    int
	flag     atomic.Bool              // used when arity == 0
	bitmap   *sparsearray.Bitmap      // used when arity == 1
	children *sparsearray.Array[*Trie] // used when arity >= 2
}

// New creates an empty trie over tuples of the given arity.
func New(arity int) *Trie {
	if arity < 0 {
		panic("trie: negative arity")
	}
	t := &Trie{arity: arity}
	switch {
	case arity == 1:
		t.bitmap = sparsearray.NewBitmap()
	case arity >= 2:
		t.children = sparsearray.New[*Trie](mergeChild)
	}
	return t
}

// Arity returns N.
func (t *Trie) Arity() int { return t.arity }

func mergeChild(existing, incoming *Trie) *Trie {
	if existing == nil {
		// Deep-copy so the merged trie never shares a subtree with other.
		c := New(incoming.arity)
		c.InsertAll(incoming)
		return c
	}
	if incoming == nil {
		return existing
	}
	existing.InsertAll(incoming)
	return existing
}

// Insert adds tuple (which must have length == Arity()) and reports
// whether it was new.
func (t *Trie) Insert(tuple []int32) bool {
	if len(tuple) != t.arity {
		panic("trie: tuple arity mismatch")
	}
	switch {
	case t.arity == 0:
		return t.flag.CompareAndSwap(false, true)
	case t.arity == 1:
		return t.bitmap.Set(encode(tuple[0]))
	default:
		child, _ := t.children.LoadOrCreate(encode(tuple[0]), func() *Trie { return New(t.arity - 1) })
		return child.Insert(tuple[1:])
	}
}

// Contains reports whether tuple was inserted (and not cleared since).
func (t *Trie) Contains(tuple []int32) bool {
	if len(tuple) != t.arity {
		panic("trie: tuple arity mismatch")
	}
	switch {
	case t.arity == 0:
		return t.flag.Load()
	case t.arity == 1:
		return t.bitmap.Test(encode(tuple[0]))
	default:
		child := t.children.Get(encode(tuple[0]))
		if child == nil {
			return false
		}
		return child.Contains(tuple[1:])
	}
}

// Size recursively counts the tuples present. It is not cached: each
// level's own size is only the count of its child tries.
func (t *Trie) Size() int {
	switch {
	case t.arity == 0:
		if t.flag.Load() {
			return 1
		}
		return 0
	case t.arity == 1:
		return t.bitmap.Size()
	default:
		n := 0
		c := t.children.Begin()
		for {
			e, ok := c.Next()
			if !ok {
				break
			}
			n += e.Value.Size()
		}
		return n
	}
}

// InsertAll merges other's tuples into t in place.
func (t *Trie) InsertAll(other *Trie) {
	if other == nil || other.arity != t.arity {
		return
	}
	switch {
	case t.arity == 0:
		if other.flag.Load() {
			t.flag.Store(true)
		}
	case t.arity == 1:
		t.bitmap.AddAll(other.bitmap)
	default:
		t.children.AddAll(other.children)
	}
}

// Tuples returns every tuple in lexicographic order. Intended for tests and
// small tries; large scans should use Iterator directly.
func (t *Trie) Tuples() [][]int32 {
	var out [][]int32
	it := t.Iterator()
	for {
		tup, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, tup)
	}
	return out
}

// Iterator returns an iterator over every tuple, in lexicographic order.
func (t *Trie) Iterator() *Iterator {
	return newIterator(t, nil)
}

// LowerBound returns an iterator over an arity-1 trie's elements, starting
// at the smallest element >= v. Valid only when Arity() == 1, which is all
// internal/binrel ever builds.
func (t *Trie) LowerBound(v int32) *Iterator {
	if t.arity != 1 {
		panic("trie: LowerBound only supported for arity-1 tries")
	}
	return &Iterator{bitIt: t.bitmap.LowerBound(encode(v))}
}

// Context caches, for each non-terminal arity level a tuple passes
// through, the key and child Trie reached there, so a caller issuing many
// Insert/Contains calls that share a leading prefix (the common case for a
// relation index fed tuples in bulk) can skip re-descending through levels
// it just visited. A child Trie, once created, is never replaced or freed
// (InsertAll merges into it in place), so a cache hit never needs
// validation beyond the key matching. A Context must only be used by one
// goroutine at a time.
type Context struct {
	keys     []int32
	children []*Trie
}

// NewContext creates an operation context sized for tries of this arity,
// meant to be reused across a run of Insert/Contains calls from a single
// goroutine.
func (t *Trie) NewContext() *Context {
	if t.arity < 2 {
		return &Context{}
	}
	return &Context{keys: make([]int32, t.arity-1), children: make([]*Trie, t.arity-1)}
}

// Clear discards every cached prefix, e.g. after the trie itself was reset.
func (c *Context) Clear() {
	for i := range c.children {
		c.children[i] = nil
	}
}

// InsertCtx behaves like Insert but consults and updates ctx, reusing the
// child reached for a shared leading prefix instead of re-descending
// through the nested sparse arrays. ctx may be nil, in which case InsertCtx
// behaves exactly like Insert.
func (t *Trie) InsertCtx(tuple []int32, ctx *Context) bool {
	if len(tuple) != t.arity {
		panic("trie: tuple arity mismatch")
	}
	if ctx == nil {
		return t.Insert(tuple)
	}
	cur := t
	depth := 0
	for cur.arity >= 2 {
		k := tuple[depth]
		var child *Trie
		if depth < len(ctx.children) && ctx.children[depth] != nil && ctx.keys[depth] == k {
			child = ctx.children[depth]
		} else {
			child, _ = cur.children.LoadOrCreate(encode(k), func() *Trie { return New(cur.arity - 1) })
			ctx.keys[depth] = k
			ctx.children[depth] = child
		}
		cur = child
		depth++
	}
	switch {
	case cur.arity == 0:
		return cur.flag.CompareAndSwap(false, true)
	default: // arity == 1
		return cur.bitmap.Set(encode(tuple[depth]))
	}
}

// ContainsCtx behaves like Contains but consults and updates ctx. ctx may
// be nil, in which case ContainsCtx behaves exactly like Contains.
func (t *Trie) ContainsCtx(tuple []int32, ctx *Context) bool {
	if len(tuple) != t.arity {
		panic("trie: tuple arity mismatch")
	}
	if ctx == nil {
		return t.Contains(tuple)
	}
	cur := t
	depth := 0
	for cur.arity >= 2 {
		k := tuple[depth]
		var child *Trie
		if depth < len(ctx.children) && ctx.children[depth] != nil && ctx.keys[depth] == k {
			child = ctx.children[depth]
		} else {
			child = cur.children.Get(encode(k))
			ctx.keys[depth] = k
			ctx.children[depth] = child
		}
		if child == nil {
			return false
		}
		cur = child
		depth++
	}
	switch {
	case cur.arity == 0:
		return cur.flag.Load()
	default: // arity == 1
		return cur.bitmap.Test(encode(tuple[depth]))
	}
}

// Boundaries returns an iterator over every tuple sharing prefix as its
// first len(prefix) components. len(prefix) == 0 yields the full range;
// len(prefix) == Arity() yields zero or one tuple.
func (t *Trie) Boundaries(prefix []int32) *Iterator {
	if len(prefix) > t.arity {
		panic("trie: prefix longer than arity")
	}
	cur := t
	matched := make([]int32, 0, len(prefix))
	for _, v := range prefix {
		switch {
		case cur.arity == 0:
			return &Iterator{exhausted: true}
		case cur.arity == 1:
			if !cur.bitmap.Test(encode(v)) {
				return &Iterator{exhausted: true}
			}
			matched = append(matched, v)
			return &Iterator{once: append([]int32{}, matched...), exhausted: false, haveOnce: true}
		default:
			child := cur.children.Get(encode(v))
			if child == nil {
				return &Iterator{exhausted: true}
			}
			matched = append(matched, v)
			cur = child
		}
	}
	return newIterator(cur, matched)
}
