// Package arena implements the chunked, append-only storage backing a
// relation's master tuple copies and a union-find's element blocks:
// O(1) random indexed access via two-level addressing, a single mutex
// guarding append, and lock-free reads under the single-writer-at-a-time
// invariant (no reads during a clear).
package arena

import "sync"

// blockBits is the number of low bits of an index spent on the
// within-block offset; 1024 elements per block.
const blockBits = 10
const blockSize = 1 << blockBits
const blockMask = blockSize - 1

// BlockList is an append-only sequence of T with O(1) indexed access.
// The zero value is ready to use.
type BlockList[T any] struct {
	mu     sync.Mutex
	blocks []*[blockSize]T
	length int
}

// Append adds v and returns its index.
func (b *BlockList[T]) Append(v T) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.length
	blockIdx := idx >> blockBits
	if blockIdx == len(b.blocks) {
		b.blocks = append(b.blocks, new([blockSize]T))
	}
	b.blocks[blockIdx][idx&blockMask] = v
	b.length++
	return idx
}

// Get returns the element at idx. idx must be in [0, Len()); an
// out-of-range idx is a programming error and panics, mirroring the
// fatal range-check-failure policy for chunked-arena misuse.
func (b *BlockList[T]) Get(idx int) T {
	if idx < 0 || idx >= b.Len() {
		panic("arena: index out of range")
	}
	return b.blocks[idx>>blockBits][idx&blockMask]
}

// GetPtr returns a stable pointer to the element at idx. The pointer
// remains valid for the arena's lifetime (until Clear), which is what lets
// indirect indices store pointers into master storage.
func (b *BlockList[T]) GetPtr(idx int) *T {
	if idx < 0 || idx >= b.Len() {
		panic("arena: index out of range")
	}
	return &b.blocks[idx>>blockBits][idx&blockMask]
}

// Len returns the number of appended elements. Safe to call concurrently
// with Append; may observe a slightly stale count.
func (b *BlockList[T]) Len() int {
	b.mu.Lock()
	n := b.length
	b.mu.Unlock()
	return n
}

// ForEach scans all elements in append order. Must not overlap with Clear.
func (b *BlockList[T]) ForEach(fn func(idx int, v T)) {
	n := b.Len()
	for i := 0; i < n; i++ {
		fn(i, b.blocks[i>>blockBits][i&blockMask])
	}
}

// Clear frees all blocks and resets the arena to empty. Exclusive: callers
// must ensure no concurrent Append/Get/ForEach is in flight.
func (b *BlockList[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blocks = nil
	b.length = 0
}
