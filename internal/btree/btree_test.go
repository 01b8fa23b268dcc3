package btree

import (
	"math/rand"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"
)

func intCmp(a, b int) int { return a - b }

func collect(t *Tree[int]) []int {
	var out []int
	it := t.Begin()
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

func depth(n *node[int]) int {
	d := 1
	for !n.leaf {
		n = n.children[0]
		d++
	}
	return d
}

func TestBTreeBiasedSplitAscendingInsert(t *testing.T) {
	tr := New(3, true, intCmp)
	for i := 1; i <= 10; i++ {
		if !tr.Insert(i) {
			t.Fatalf("insert %d reported duplicate", i)
		}
	}
	if tr.Size() != 10 {
		t.Fatalf("size = %d, want 10", tr.Size())
	}
	got := collect(tr)
	for i, v := range got {
		if v != i+1 {
			t.Fatalf("iteration order wrong at %d: got %d", i, v)
		}
	}
	root := tr.root.Load()
	if d := depth(root); d > 3 {
		t.Fatalf("tree depth = %d, want <= 3 for K=3 ascending insert of 10", d)
	}
}

func TestBTreeConcurrentInsert(t *testing.T) {
	const n = 10000
	tr := New(32, true, intCmp)

	perm := rand.New(rand.NewSource(1)).Perm(n)

	var g errgroup.Group
	const workers = 4
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := w; i < n; i += workers {
				tr.Insert(perm[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if tr.Size() != n {
		t.Fatalf("size = %d, want %d", tr.Size(), n)
	}
	got := collect(tr)
	if len(got) != n {
		t.Fatalf("iterated %d elements, want %d", len(got), n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("ordering broken at %d: got %d", i, v)
		}
	}
}

func TestBTreeContainsConcurrentWithInsert(t *testing.T) {
	tr := New(4, true, intCmp)
	for i := 0; i < 1000; i += 2 {
		tr.Insert(i)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				tr.Contains(rand.Intn(1000))
			}
		}
	}()

	for i := 1; i < 1000; i += 2 {
		tr.Insert(i)
	}
	close(stop)
	wg.Wait()

	if tr.Size() != 1000 {
		t.Fatalf("size = %d, want 1000", tr.Size())
	}
	for i := 0; i < 1000; i++ {
		if !tr.Contains(i) {
			t.Fatalf("missing %d", i)
		}
	}
}

func TestBTreeSetRejectsDuplicates(t *testing.T) {
	tr := New(3, true, intCmp)
	if !tr.Insert(5) {
		t.Fatal("first insert of 5 should succeed")
	}
	if tr.Insert(5) {
		t.Fatal("second insert of 5 should be rejected under set semantics")
	}
	if tr.Size() != 1 {
		t.Fatalf("size = %d, want 1", tr.Size())
	}
}

func TestBTreeMultisetAllowsDuplicates(t *testing.T) {
	tr := New(3, false, intCmp)
	tr.Insert(5)
	tr.Insert(5)
	if tr.Size() != 2 {
		t.Fatalf("size = %d, want 2", tr.Size())
	}
}

func TestBTreeLowerUpperBoundFind(t *testing.T) {
	tr := New(4, true, intCmp)
	for _, v := range []int{10, 20, 30, 40, 50} {
		tr.Insert(v)
	}
	if v, ok := tr.LowerBound(25).Next(); !ok || v != 30 {
		t.Fatalf("LowerBound(25) = %v, %v", v, ok)
	}
	if v, ok := tr.UpperBound(30).Next(); !ok || v != 40 {
		t.Fatalf("UpperBound(30) = %v, %v", v, ok)
	}
	if _, ok := tr.Find(25).Next(); ok {
		t.Fatal("Find(25) should be exhausted, 25 absent")
	}
	if v, ok := tr.Find(30).Next(); !ok || v != 30 {
		t.Fatalf("Find(30) = %v, %v", v, ok)
	}
}

func TestBTreeGetChunksCoversAll(t *testing.T) {
	tr := New(4, true, intCmp)
	for i := 0; i < 997; i++ {
		tr.Insert(i)
	}
	chunks := tr.GetChunks(8)
	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}
	seen := make(map[int]bool)
	for _, c := range chunks {
		for {
			v, ok := c.Next()
			if !ok {
				break
			}
			if seen[v] {
				t.Fatalf("value %d covered by more than one chunk", v)
			}
			seen[v] = true
		}
	}
	if len(seen) != 997 {
		t.Fatalf("chunks covered %d elements, want 997", len(seen))
	}
}

func TestBTreeCloneEqualSwap(t *testing.T) {
	a := New(4, true, intCmp)
	for i := 0; i < 50; i++ {
		a.Insert(i)
	}
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatal("clone should be equal to original")
	}
	b.Insert(1000)
	if a.Equal(b) {
		t.Fatal("mutating clone should not affect original")
	}

	c := New(4, true, intCmp)
	c.Insert(-1)
	a.Swap(c)
	if !a.Contains(-1) || a.Size() != 1 {
		t.Fatal("swap did not exchange contents into a")
	}
	if c.Size() != 50 || !c.Contains(49) {
		t.Fatal("swap did not exchange contents into c")
	}
}

func TestBTreeLoadBulk(t *testing.T) {
	sorted := make([]int, 2000)
	for i := range sorted {
		sorted[i] = i
	}
	tr := New(8, true, intCmp)
	if err := tr.Load(sorted); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tr.Size() != len(sorted) {
		t.Fatalf("size = %d, want %d", tr.Size(), len(sorted))
	}
	got := collect(tr)
	for i, v := range got {
		if v != i {
			t.Fatalf("order broken at %d", i)
		}
	}
}

func TestBTreeLoadRejectsUnsorted(t *testing.T) {
	tr := New(8, true, intCmp)
	if err := tr.Load([]int{1, 3, 2}); err == nil {
		t.Fatal("expected error loading unsorted input")
	}
}

func TestBTreeLoadRejectsDuplicatesInSetMode(t *testing.T) {
	tr := New(8, true, intCmp)
	if err := tr.Load([]int{1, 2, 2, 3}); err == nil {
		t.Fatal("expected error loading duplicate keys into a set tree")
	}
}

func TestBTreeClearEmpty(t *testing.T) {
	tr := New(4, true, intCmp)
	tr.Insert(1)
	tr.Insert(2)
	tr.Clear()
	if !tr.Empty() || tr.Size() != 0 {
		t.Fatal("Clear should empty the tree")
	}
	if _, ok := tr.Begin().Next(); ok {
		t.Fatal("cleared tree should iterate nothing")
	}
}

func TestBTreeInsertHintAcceleratesSequentialRun(t *testing.T) {
	tr := New(4, true, intCmp)
	var hints Hints[int]
	for i := 0; i < 500; i++ {
		if !tr.InsertHint(i, &hints) {
			t.Fatalf("InsertHint(%d) reported duplicate", i)
		}
	}
	if tr.Size() != 500 {
		t.Fatalf("size = %d, want 500", tr.Size())
	}
	got := collect(tr)
	for i, v := range got {
		if v != i {
			t.Fatalf("order broken at %d: got %d", i, v)
		}
	}

	// After Clear, the lookup variants start from empty hint slots and must
	// still return correct results while filling those slots.
	hints.Clear()
	if !tr.ContainsHint(250, &hints) {
		t.Fatal("ContainsHint(250) should find a present key")
	}
	if tr.ContainsHint(10000, &hints) {
		t.Fatal("ContainsHint(10000) should not find an absent key")
	}
	if v, ok := tr.LowerBoundHint(248, &hints).Next(); !ok || v != 248 {
		t.Fatalf("LowerBoundHint(248) = %v, %v", v, ok)
	}
	if v, ok := tr.UpperBoundHint(248, &hints).Next(); !ok || v != 249 {
		t.Fatalf("UpperBoundHint(248) = %v, %v", v, ok)
	}
}

func TestBTreeConcurrentInsertForcesAncestorSplits(t *testing.T) {
	// A small order with many workers forces frequent, overlapping splits
	// up multiple tree levels, exercising the sphere-of-influence ancestor
	// locking path rather than only single-leaf splits.
	const n = 20000
	tr := New(3, true, intCmp)

	perm := rand.New(rand.NewSource(7)).Perm(n)

	var g errgroup.Group
	const workers = 8
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			var hints Hints[int]
			for i := w; i < n; i += workers {
				tr.InsertHint(perm[i], &hints)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if tr.Size() != n {
		t.Fatalf("size = %d, want %d", tr.Size(), n)
	}
	got := collect(tr)
	if len(got) != n {
		t.Fatalf("iterated %d elements, want %d", len(got), n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("ordering broken at %d: got %d", i, v)
		}
	}
}

func TestBTreeDefaultOrder(t *testing.T) {
	if k := DefaultOrder(256, 8); k < 3 {
		t.Fatalf("DefaultOrder = %d, want >= 3", k)
	}
	if k := DefaultOrder(1, 1000); k != 3 {
		t.Fatalf("DefaultOrder for tiny block = %d, want floor of 3", k)
	}
}
