package trie

import "testing"

func tuplesEqual(t *testing.T, got [][]int32, want [][]int32) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %v, want %v", got, want)
	}
	for i := range want {
		if len(got[i]) != len(want[i]) {
			t.Fatalf("tuple %d length mismatch: got %v want %v", i, got[i], want[i])
		}
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Fatalf("mismatch at tuple %d: got %v want %v", i, got, want)
			}
		}
	}
}

func TestTrieArity0(t *testing.T) {
	tr := New(0)
	if tr.Contains(nil) {
		t.Fatal("expected empty arity-0 trie to not contain the empty tuple")
	}
	if !tr.Insert(nil) {
		t.Fatal("expected first insert to report new")
	}
	if tr.Insert(nil) {
		t.Fatal("expected second insert to report not-new")
	}
	if tr.Size() != 1 {
		t.Fatalf("expected size 1, got %d", tr.Size())
	}
}

func TestTrieInsertPairsScenario(t *testing.T) {
	tr := New(2)
	inputs := [][]int32{{1, 2}, {1, 3}, {2, 1}, {1, 2}}
	for _, tup := range inputs {
		tr.Insert(tup)
	}
	if tr.Size() != 3 {
		t.Fatalf("expected size 3, got %d", tr.Size())
	}
	tuplesEqual(t, tr.Tuples(), [][]int32{{1, 2}, {1, 3}, {2, 1}})

	bnd := tr.Boundaries([]int32{1})
	var got [][]int32
	for {
		tup, ok := bnd.Next()
		if !ok {
			break
		}
		got = append(got, tup)
	}
	tuplesEqual(t, got, [][]int32{{1, 2}, {1, 3}})
}

func TestTrieContainsNegativeValues(t *testing.T) {
	tr := New(2)
	tr.Insert([]int32{-5, 3})
	tr.Insert([]int32{5, -3})
	if !tr.Contains([]int32{-5, 3}) || !tr.Contains([]int32{5, -3}) {
		t.Fatal("expected both signed tuples to be found")
	}
	if tr.Contains([]int32{-5, -3}) {
		t.Fatal("unexpected tuple reported present")
	}
}

func TestTrieOrderingWithNegatives(t *testing.T) {
	tr := New(1)
	for _, v := range []int32{5, -10, 0, -1, 10} {
		tr.Insert([]int32{v})
	}
	got := tr.Tuples()
	want := []int32{-10, -1, 0, 5, 10}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i, w := range want {
		if got[i][0] != w {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestTrieInsertAll(t *testing.T) {
	a := New(2)
	a.Insert([]int32{1, 1})
	b := New(2)
	b.Insert([]int32{1, 1})
	b.Insert([]int32{2, 2})
	a.InsertAll(b)
	if a.Size() != 2 {
		t.Fatalf("expected size 2 after merge, got %d", a.Size())
	}
}

func TestTrieBoundariesFullMatch(t *testing.T) {
	tr := New(2)
	tr.Insert([]int32{1, 2})
	bnd := tr.Boundaries([]int32{1, 2})
	tup, ok := bnd.Next()
	if !ok || tup[0] != 1 || tup[1] != 2 {
		t.Fatalf("expected (1,2), got %v ok=%v", tup, ok)
	}
	if _, ok := bnd.Next(); ok {
		t.Fatal("expected exactly one match")
	}

	absent := tr.Boundaries([]int32{9, 9})
	if _, ok := absent.Next(); ok {
		t.Fatal("expected no match for absent full tuple")
	}
}

func TestTrieContextSharedPrefix(t *testing.T) {
	tr := New(3)
	ctx := tr.NewContext()
	rows := [][]int32{{1, 2, 3}, {1, 2, 4}, {1, 2, 4}, {1, 5, 6}, {7, 8, 9}}
	var inserted int
	for _, row := range rows {
		if tr.InsertCtx(row, ctx) {
			inserted++
		}
	}
	if inserted != 4 {
		t.Fatalf("InsertCtx reported %d new tuples, want 4 (one duplicate)", inserted)
	}
	if tr.Size() != 4 {
		t.Fatalf("Size() = %d, want 4", tr.Size())
	}

	for _, row := range rows {
		if !tr.ContainsCtx(row, ctx) {
			t.Fatalf("ContainsCtx(%v) should find an inserted tuple", row)
		}
	}
	if tr.ContainsCtx([]int32{1, 2, 100}, ctx) {
		t.Fatal("ContainsCtx should not find a tuple that was never inserted")
	}
	if tr.ContainsCtx([]int32{42, 0, 0}, ctx) {
		t.Fatal("ContainsCtx should not find a tuple under an unvisited top-level key")
	}

	// A nil context must behave exactly like the uncached path.
	if tr.InsertCtx([]int32{1, 2, 3}, nil) {
		t.Fatal("InsertCtx(nil, duplicate) should report not-new, same as Insert")
	}
	if !tr.InsertCtx([]int32{9, 9, 9}, nil) {
		t.Fatal("InsertCtx(nil, new tuple) should report new, same as Insert")
	}
	if tr.Size() != 5 {
		t.Fatalf("Size() = %d, want 5 after the nil-context insert", tr.Size())
	}
}
