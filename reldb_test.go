package reldb

import (
	"context"
	"testing"
)

func TestRelationFacadeBasics(t *testing.T) {
	r := New(2, IndexSpec{Permutation: []int{1, 0}, Full: true})
	if !r.Insert(Tuple{1, 2}) {
		t.Fatal("first insert should report true")
	}
	if r.Insert(Tuple{1, 2}) {
		t.Fatal("duplicate insert should report false")
	}
	if !r.InsertWithHint(Tuple{3, 4}, nil) {
		t.Fatal("InsertWithHint should behave like Insert for a new tuple")
	}
	hints := r.NewHints()
	if !r.InsertWithHint(Tuple{5, 6}, hints) {
		t.Fatal("InsertWithHint with a real hints bundle should report new for a new tuple")
	}
	if r.InsertWithHint(Tuple{5, 6}, hints) {
		t.Fatal("InsertWithHint with a reused hints bundle should still reject a duplicate")
	}
	if !r.Contains(Tuple{1, 2}) || !r.Contains(Tuple{3, 4}) || !r.Contains(Tuple{5, 6}) {
		t.Fatal("Contains should find every inserted tuple")
	}
	if r.Size() != 3 || r.Empty() {
		t.Fatalf("Size()=%d Empty()=%v, want 3/false", r.Size(), r.Empty())
	}

	count := 0
	it := r.Iter()
	for {
		if _, ok := it.Next(); !ok {
			break
		}
		count++
	}
	if count != 3 {
		t.Fatalf("Iter() produced %d tuples, want 3", count)
	}

	r.Purge()
	if !r.Empty() {
		t.Fatal("Purge should empty the relation")
	}
}

func TestRelationFacadeBulkLoadAndWorkers(t *testing.T) {
	if Workers() <= 0 {
		t.Fatal("Workers() should return a positive default")
	}

	r := New(1)
	tuples := make([]Tuple, 200)
	for i := range tuples {
		tuples[i] = Tuple{int32(i)}
	}
	if err := r.BulkLoadParallel(context.Background(), tuples, 0); err != nil {
		t.Fatalf("BulkLoadParallel: %v", err)
	}
	if r.Size() != 200 {
		t.Fatalf("Size() = %d, want 200", r.Size())
	}
}

func TestRelationFacadeInsertAllAndStats(t *testing.T) {
	a := New(2)
	b := New(2)
	b.Insert(Tuple{1, 1})
	a.InsertAll(b)
	if !a.Contains(Tuple{1, 1}) {
		t.Fatal("InsertAll should merge b's tuples into a")
	}
	st := a.Stats()
	if st.PrimaryCount != 1 {
		t.Fatalf("Stats().PrimaryCount = %d, want 1", st.PrimaryCount)
	}
}
