package markov

import (
	"fmt"
	"strings"
	"testing"
)

// node is a test helper that builds a full-width node out of real tokens.
func node(tokens ...int) []Slot[int] {
	out := make([]Slot[int], len(tokens))
	for i, tok := range tokens {
		out[i] = Value(tok)
	}
	return out
}

// checkWeight asserts the accumulated weight of a single transition.
func checkWeight(t *testing.T, c *Chain[int], from []Slot[int], next Slot[int], want uint32) {
	t.Helper()
	if got := c.Weight(from, next); got != want {
		t.Errorf("Weight(%v, %v) = %d, want %d", from, next, got, want)
	}
}

func TestOrder1Training(t *testing.T) {
	c := New[int](1)
	c.Train([]int{1, 2, 3}).
		Train([]int{2, 3, 4}).
		Train([]int{1, 3, 4})

	checkWeight(t, c, node(1), Value(2), 1)
	checkWeight(t, c, node(1), Value(3), 1)
	checkWeight(t, c, node(2), Value(3), 2)
	checkWeight(t, c, node(3), Boundary[int](), 1)
	checkWeight(t, c, node(3), Value(4), 2)
	checkWeight(t, c, node(4), Boundary[int](), 2)
}

func TestOrder2Training(t *testing.T) {
	c := New[int](2)
	c.Train([]int{1, 2, 3}).
		Train([]int{2, 3, 4}).
		Train([]int{1, 3, 4})

	checkWeight(t, c, node(1, 2), Value(3), 1)
	checkWeight(t, c, node(2, 3), Boundary[int](), 1)
	checkWeight(t, c, node(2, 3), Value(4), 1)
	checkWeight(t, c, node(3, 4), Boundary[int](), 2)
	checkWeight(t, c, node(1, 3), Value(4), 1)
}

func TestOrder3Training(t *testing.T) {
	c := New[int](3)
	c.Train([]int{1, 2, 3, 4, 1, 2, 3, 4})

	checkWeight(t, c, node(1, 2, 3), Value(4), 2)
	checkWeight(t, c, node(2, 3, 4), Value(1), 1)
	checkWeight(t, c, node(2, 3, 4), Boundary[int](), 1)
	checkWeight(t, c, node(3, 4, 1), Value(2), 1)
	checkWeight(t, c, node(4, 1, 2), Value(3), 1)
}

func TestTrainEmptySequence(t *testing.T) {
	c := New[int](2)
	c.Train(nil).Train([]int{})
	if !c.IsEmpty() {
		t.Errorf("training empty sequences should be a no-op, chain has %d nodes", c.Len())
	}
}

func TestTrainShorterThanOrder(t *testing.T) {
	c := New[int](3)
	c.Train([]int{1, 2})

	// The padded sequence [1 2 B] contributes 3 observations: the initial
	// all-boundary transition, the shifted windows, and the terminal one.
	start := []Slot[int]{Boundary[int](), Boundary[int](), Boundary[int]()}
	checkWeight(t, c, start, Value(1), 1)
	checkWeight(t, c, []Slot[int]{Boundary[int](), Boundary[int](), Value(1)}, Value(2), 1)
	checkWeight(t, c, []Slot[int]{Boundary[int](), Value(1), Value(2)}, Boundary[int](), 1)
	checkWeight(t, c, []Slot[int]{Value(1), Value(2), Boundary[int]()}, Boundary[int](), 1)
}

func TestTrainObservationCount(t *testing.T) {
	seq := []int{5, 6, 7, 8, 9}
	c := New[int](2)
	c.Train(seq)
	if got := c.Stats().TotalWeight; got != uint64(len(seq)+1) {
		t.Errorf("sequence of length %d should contribute %d observations, got %d", len(seq), len(seq)+1, got)
	}
}

func TestMergeSumsWeights(t *testing.T) {
	a := New[int](1).Train([]int{1, 2, 3})
	b := New[int](1).Train([]int{2, 3, 4}).Train([]int{1, 3, 4})
	a.Merge(b)

	want := New[int](1).
		Train([]int{1, 2, 3}).
		Train([]int{2, 3, 4}).
		Train([]int{1, 3, 4})
	if !a.Equal(want) {
		t.Error("merging should produce the same weights as training everything into one chain")
	}
}

func TestMergeAdoptEqualsSum(t *testing.T) {
	src := New[int](2).Train([]int{1, 2, 3}).Train([]int{1, 2, 3})

	adopted := New[int](2).Merge(src)
	if !adopted.Equal(src) {
		t.Fatal("merge into an empty chain should reproduce the source weights exactly")
	}

	// Adoption must copy, never alias: mutating the result may not leak back.
	adopted.Train([]int{9, 9})
	if src.Weight(node(9, 9), Boundary[int]()) != 0 {
		t.Error("training the adopting chain mutated the source chain")
	}
	if src.Len() == adopted.Len() {
		t.Error("adopting chain should have grown independently of the source")
	}
}

func TestMergeAssociative(t *testing.T) {
	a := New[int](1).Train([]int{1, 2})
	b := New[int](1).Train([]int{2, 3})
	c := New[int](1).Train([]int{1, 3})

	left := New[int](1).Merge(a).Merge(b).Merge(c)
	bc := New[int](1).Merge(b).Merge(c)
	right := New[int](1).Merge(a).Merge(bc)

	if !left.Equal(right) {
		t.Error("merge grouping changed the final weights")
	}
}

func TestMergeOrderMismatchPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("merging chains of differing order must panic")
		}
		if !strings.Contains(r.(string), "order") {
			t.Errorf("panic message should name the orders, got %v", r)
		}
	}()
	New[int](1).Train([]int{1}).Merge(New[int](2))
}

func TestMergeRemapsVocabularies(t *testing.T) {
	// Interning the same tokens in a different order gives them different
	// internal IDs; merge has to reconcile through token values.
	a := New[string](1).Train([]string{"x", "y"})
	b := New[string](1).Train([]string{"y", "x"})
	a.Merge(b)

	xNode := []Slot[string]{Value("x")}
	yNode := []Slot[string]{Value("y")}
	if got := a.Weight(xNode, Value("y")); got != 1 {
		t.Errorf("weight x->y = %d, want 1", got)
	}
	if got := a.Weight(yNode, Value("x")); got != 1 {
		t.Errorf("weight y->x = %d, want 1", got)
	}
	if got := a.Weight(yNode, Boundary[string]()); got != 1 {
		t.Errorf("weight y->boundary = %d, want 1", got)
	}
}

func TestEqualIgnoresInterningOrder(t *testing.T) {
	a := New[string](1).Train([]string{"x", "y"}).Train([]string{"z"})
	b := New[string](1).Train([]string{"z"}).Train([]string{"x", "y"})
	if !a.Equal(b) {
		t.Error("chains with identical weights should be equal regardless of interning order")
	}

	b.Train([]string{"z"})
	if a.Equal(b) {
		t.Error("chains with differing weights should not be equal")
	}
}

func TestClone(t *testing.T) {
	orig := New[int](2).Train([]int{1, 2, 3})
	clone := orig.Clone()
	if !clone.Equal(orig) {
		t.Fatal("clone should equal the original")
	}
	clone.Train([]int{4, 5})
	if orig.Weight(node(4, 5), Boundary[int]()) != 0 {
		t.Error("mutating a clone leaked into the original")
	}
}

func TestNodesAndLinks(t *testing.T) {
	c := New[int](1).Train([]int{1, 2})
	if got := len(c.Nodes()); got != 3 {
		t.Fatalf("expected 3 nodes (boundary, 1, 2), got %d", got)
	}

	links := c.Links(node(2))
	if len(links) != 1 {
		t.Fatalf("expected exactly one link out of node [2], got %v", links)
	}
	if links[Boundary[int]()] != 1 {
		t.Errorf("expected node [2] to link to the boundary with weight 1, got %v", links)
	}

	// The returned map is a copy.
	links[Value(7)] = 100
	if c.Weight(node(2), Value(7)) != 0 {
		t.Error("mutating the returned link map affected the chain")
	}

	if c.Links(node(42)) != nil {
		t.Error("unknown node should have a nil link table")
	}
}

func BenchmarkTrain(b *testing.B) {
	seq := make([]int, 512)
	for i := range seq {
		seq[i] = i % 64
	}
	for _, order := range []int{1, 2, 3} {
		b.Run(fmt.Sprintf("Order%d", order), func(b *testing.B) {
			c := New[int](order)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				c.Train(seq)
			}
		})
	}
}
