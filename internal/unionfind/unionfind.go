// Package unionfind implements a dense disjoint-set over integer ids
// 0..n with lock-free path-halving find and rank-based union, backed by
// the chunked arena block-list so element storage needs no resizing
// copy and appends take a single mutex while reads stay lock-free.
package unionfind

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/orizon-lang/reldb/internal/arena"
)

// ErrStale is returned by representative/member iteration when the
// representative->members map has not been rebuilt since the last
// mutation, matching spec's "structural modification" contract.
var ErrStale = errors.New("unionfind: representative map is stale, call GenMap first")

func pack(parent, rank uint32) uint64 { return uint64(parent)<<32 | uint64(rank) }
func unpack(block uint64) (parent, rank uint32) {
	return uint32(block >> 32), uint32(block)
}

// Set is a dense disjoint-set. The zero value is ready to use.
type Set struct {
	blocks arena.BlockList[atomic.Uint64]

	mapMu      sync.RWMutex
	compressed atomic.Bool // true once every element's parent is its find() result
	mapStale   atomic.Bool // true if repToMembers needs GenMap before use
	repToMembers map[uint32][]uint32
}

// MakeNode appends a new singleton element and returns its id.
func (s *Set) MakeNode() uint32 {
	var cell atomic.Uint64
	idx := s.blocks.Append(cell)
	ptr := s.blocks.GetPtr(idx)
	id := uint32(idx)
	ptr.Store(pack(id, 0))
	s.compressed.Store(false)
	s.mapStale.Store(true)
	return id
}

// Len returns the number of elements ever created.
func (s *Set) Len() int { return s.blocks.Len() }

// Find returns x's representative, path-halving as it walks.
func (s *Set) Find(x uint32) uint32 {
	for {
		ptr := s.blocks.GetPtr(int(x))
		block := ptr.Load()
		parent, rank := unpack(block)
		if parent == x {
			return x
		}
		gpPtr := s.blocks.GetPtr(int(parent))
		gpBlock := gpPtr.Load()
		grandparent, _ := unpack(gpBlock)
		if grandparent == parent {
			return parent
		}
		ptr.CompareAndSwap(block, pack(grandparent, rank))
		x = grandparent
	}
}

// readOnlyFind descends without attempting path compression, for use by
// size/iteration paths that must not race with concurrent mutators.
func (s *Set) readOnlyFind(x uint32) uint32 {
	for {
		ptr := s.blocks.GetPtr(int(x))
		parent, _ := unpack(ptr.Load())
		if parent == x {
			return x
		}
		x = parent
	}
}

// Union merges x and y's classes, reporting whether they were previously
// distinct.
func (s *Set) Union(x, y uint32) bool {
	for {
		rx, ry := s.Find(x), s.Find(y)
		if rx == ry {
			return false
		}

		rxPtr := s.blocks.GetPtr(int(rx))
		ryPtr := s.blocks.GetPtr(int(ry))
		rxBlock := rxPtr.Load()
		ryBlock := ryPtr.Load()
		_, rankX := unpack(rxBlock)
		_, rankY := unpack(ryBlock)

		lo, loBlock, loRank := rx, rxBlock, rankX
		hi, hiPtr := ry, ryPtr
		hiRank := rankY
		loPtr := rxPtr
		if rankX > rankY || (rankX == rankY && rx > ry) {
			lo, loBlock, loRank = ry, ryBlock, rankY
			hi, hiRank = rx, rankX
			loPtr, hiPtr = ryPtr, rxPtr
		}

		if !loPtr.CompareAndSwap(loBlock, pack(hi, loRank)) {
			continue
		}
		if loRank == hiRank {
			hiBlock := hiPtr.Load()
			hiParent, curRank := unpack(hiBlock)
			if hiParent == hi {
				hiPtr.CompareAndSwap(hiBlock, pack(hiParent, curRank+1))
			}
		}
		s.compressed.Store(false)
		s.mapStale.Store(true)
		return true
	}
}

// FindAll re-runs Find on every element, flattening every path to its
// representative in one pass.
func (s *Set) FindAll() {
	n := s.blocks.Len()
	for i := 0; i < n; i++ {
		s.Find(uint32(i))
	}
	s.compressed.Store(true)
}

// GenMap rebuilds the representative->members mapping from scratch.
func (s *Set) GenMap() {
	n := s.blocks.Len()
	m := make(map[uint32][]uint32, n)
	for i := 0; i < n; i++ {
		rep := s.readOnlyFind(uint32(i))
		m[rep] = append(m[rep], uint32(i))
	}
	s.mapMu.Lock()
	s.repToMembers = m
	s.mapMu.Unlock()
	s.mapStale.Store(false)
}

// Representatives returns every distinct class representative. Returns
// ErrStale if GenMap has not run since the last mutation.
func (s *Set) Representatives() ([]uint32, error) {
	s.mapMu.RLock()
	defer s.mapMu.RUnlock()
	if s.mapStale.Load() {
		return nil, ErrStale
	}
	out := make([]uint32, 0, len(s.repToMembers))
	for rep := range s.repToMembers {
		out = append(out, rep)
	}
	return out, nil
}

// Members returns every element in rep's class (rep itself must be a
// representative, i.e. appear in Representatives()). Returns ErrStale if
// GenMap has not run since the last mutation.
func (s *Set) Members(rep uint32) ([]uint32, error) {
	s.mapMu.RLock()
	defer s.mapMu.RUnlock()
	if s.mapStale.Load() {
		return nil, ErrStale
	}
	members := s.repToMembers[rep]
	out := make([]uint32, len(members))
	copy(out, members)
	return out, nil
}

// Connected reports whether x and y are in the same class.
func (s *Set) Connected(x, y uint32) bool { return s.Find(x) == s.Find(y) }

// ScanMembers returns every element whose representative is rep, in
// ascending id order, computed by a direct scan that needs no GenMap.
func (s *Set) ScanMembers(rep uint32) []uint32 {
	n := s.blocks.Len()
	var out []uint32
	for i := 0; i < n; i++ {
		if s.readOnlyFind(uint32(i)) == rep {
			out = append(out, uint32(i))
		}
	}
	return out
}

// ClassSizes returns, for each representative, its class size, computed
// by a direct scan that needs no GenMap.
func (s *Set) ClassSizes() map[uint32]int {
	n := s.blocks.Len()
	sizes := make(map[uint32]int, n)
	for i := 0; i < n; i++ {
		sizes[s.readOnlyFind(uint32(i))]++
	}
	return sizes
}

// Clear frees every element and resets the set to empty.
func (s *Set) Clear() {
	s.blocks.Clear()
	s.mapMu.Lock()
	s.repToMembers = nil
	s.mapMu.Unlock()
	s.compressed.Store(false)
	s.mapStale.Store(true)
}
