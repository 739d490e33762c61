package observable

import (
	"cmp"
	"slices"
	"testing"
)

func TestMapItemsRemapsOnUpdate(t *testing.T) {
	src := NewArray(1, 2, 3)
	squares := MapItems[int, int](src, square)
	r := &listRecorder[int]{}
	squares.Subscribe(r)

	src.SetAt(1, 5, "set")
	expectEvents(t, r.take(), "update 1 25 set")
	if got := values(squares.All()); !slices.Equal(got, []int{1, 25, 9}) {
		t.Errorf("expected [1 25 9], got %v", got)
	}
}

func TestMapValuesRemapsOnUpdate(t *testing.T) {
	src := NewDict[string, int]()
	src.Add("a", 2)
	doubled := MapValues[string, int, int](src, func(n int) int { return n * 2 })
	r := &mapRecorder[string, int]{}
	doubled.Subscribe(r)

	src.Set("a", 7, nil)
	src.Add("b", 1)
	expectEvents(t, r.take(), "update a 14 <nil>", "add b 2")
}

func TestFilterByValue(t *testing.T) {
	src := NewArray(1, 2, 3, 4)
	evens := Filter[int](src, func(n int) bool { return n%2 == 0 })
	if got := values(evens.All()); !slices.Equal(got, []int{2, 4}) {
		t.Errorf("expected [2 4], got %v", got)
	}

	all := Filter[int](src, nil)
	if all.Len() != 4 {
		t.Errorf("nil predicate should keep everything, got %d", all.Len())
	}
}

func TestJoinAndSort(t *testing.T) {
	first := NewDict[string, int]()
	second := NewDict[string, int]()
	first.Add("a", 3)
	second.Add("a", 9)
	second.Add("b", 1)

	joined := Join[string, int](first, second)
	sorted := Sort[string, int](joined, cmp.Compare[int])
	sorted.Subscribe(&listRecorder[int]{})

	if got := values(sorted.All()); !slices.Equal(got, []int{1, 3}) {
		t.Errorf("expected [1 3], got %v", got)
	}
}
