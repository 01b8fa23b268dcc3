package unionfind

import "sync"

// Sparse wraps a dense Set with a sparse-to-dense bijection over an
// arbitrary comparable domain D, so callers needn't manage dense ids
// themselves.
type Sparse[D comparable] struct {
	mu      sync.Mutex
	toDense map[D]uint32
	toSparse []D
	dense   Set
}

// NewSparse creates an empty sparse disjoint-set.
func NewSparse[D comparable]() *Sparse[D] {
	return &Sparse[D]{toDense: make(map[D]uint32)}
}

// ToDense returns v's dense id, creating a new singleton element if v has
// not been seen before.
func (s *Sparse[D]) ToDense(v D) uint32 {
	s.mu.Lock()
	if id, ok := s.toDense[v]; ok {
		s.mu.Unlock()
		return id
	}
	id := s.dense.MakeNode()
	s.toDense[v] = id
	s.toSparse = append(s.toSparse, v)
	s.mu.Unlock()
	return id
}

// toDomain translates a dense id back to its domain value. Only valid for
// ids previously returned by ToDense.
func (s *Sparse[D]) toDomain(id uint32) D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toSparse[id]
}

// Union merges x and y's classes, allocating dense ids for either as
// needed.
func (s *Sparse[D]) Union(x, y D) bool {
	return s.dense.Union(s.ToDense(x), s.ToDense(y))
}

// Connected reports whether x and y are in the same class.
func (s *Sparse[D]) Connected(x, y D) bool {
	return s.dense.Connected(s.ToDense(x), s.ToDense(y))
}

// Find returns x's representative domain value.
func (s *Sparse[D]) Find(x D) D {
	return s.toDomain(s.dense.Find(s.ToDense(x)))
}

// GenMap rebuilds the representative->members mapping.
func (s *Sparse[D]) GenMap() { s.dense.GenMap() }

// Representatives returns every class's representative domain value.
func (s *Sparse[D]) Representatives() ([]D, error) {
	reps, err := s.dense.Representatives()
	if err != nil {
		return nil, err
	}
	out := make([]D, len(reps))
	for i, r := range reps {
		out[i] = s.toDomain(r)
	}
	return out, nil
}

// Members returns every domain value in rep's class.
func (s *Sparse[D]) Members(rep D) ([]D, error) {
	ids, err := s.dense.Members(s.dense.Find(s.ToDense(rep)))
	if err != nil {
		return nil, err
	}
	out := make([]D, len(ids))
	for i, id := range ids {
		out[i] = s.toDomain(id)
	}
	return out, nil
}

// DenseFind returns v's representative as a dense id, allocating v a dense
// id first if it has not been seen before.
func (s *Sparse[D]) DenseFind(v D) uint32 { return s.dense.Find(s.ToDense(v)) }

// DenseFindByID returns the representative dense id for an already-known
// dense id, without any domain translation.
func (s *Sparse[D]) DenseFindByID(id uint32) uint32 { return s.dense.Find(id) }

// DenseMembers returns every dense id in rep's class, computed by a direct
// scan (no GenMap required). Ascending order.
func (s *Sparse[D]) DenseMembers(rep uint32) []uint32 { return s.dense.ScanMembers(rep) }

// FromDense translates a dense id back to its domain value. Only valid for
// ids previously returned by ToDense/DenseFind.
func (s *Sparse[D]) FromDense(id uint32) D { return s.toDomain(id) }

// DenseLen returns the number of distinct domain values seen so far.
func (s *Sparse[D]) DenseLen() int { return s.dense.Len() }

// ClassSizesDense returns, for each representative dense id, its class
// size, computed by a direct scan (no GenMap required).
func (s *Sparse[D]) ClassSizesDense() map[uint32]int { return s.dense.ClassSizes() }

// Clear frees every element and resets the set to empty.
func (s *Sparse[D]) Clear() {
	s.mu.Lock()
	s.toDense = make(map[D]uint32)
	s.toSparse = nil
	s.mu.Unlock()
	s.dense.Clear()
}
