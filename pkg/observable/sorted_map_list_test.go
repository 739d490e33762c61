package observable

import (
	"cmp"
	"math/rand"
	"slices"
	"testing"
)

func TestSortedMapListOrder(t *testing.T) {
	src := NewDict[string, int]()
	src.Add("a", 3)
	src.Add("b", 1)
	src.Add("c", 2)
	sorted := NewSortedMapList[string, int](src, cmp.Compare[int])

	if got := values(sorted.All()); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("expected [1 2 3] before subscription, got %v", got)
	}
	sorted.Subscribe(&listRecorder[int]{})
	if got := values(sorted.All()); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("expected [1 2 3], got %v", got)
	}
	if sorted.At(2) != 3 {
		t.Errorf("expected At(2) = 3, got %d", sorted.At(2))
	}
}

func TestSortedMapListEvents(t *testing.T) {
	src := NewDict[string, int]()
	src.Add("a", 3)
	src.Add("b", 1)
	src.Add("c", 2)
	sorted := NewSortedMapList[string, int](src, cmp.Compare[int])
	r := &listRecorder[int]{}
	sorted.Subscribe(r)

	src.Add("d", 0)
	src.Set("c", 5, "p")
	src.Set("a", 3, nil)
	src.Remove("b")
	src.Clear()

	expectEvents(t, r.take(),
		"add 0 0",
		"move 2 3 5",
		"update 3 5 p",
		"update 2 3 <nil>",
		"remove 1 1",
		"reset",
	)
	if sorted.Len() != 0 {
		t.Errorf("expected empty list, got %d", sorted.Len())
	}
}

func TestSortedMapListRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	src := NewDict[int, int]()
	sorted := NewSortedMapList[int, int](src, cmp.Compare[int])
	mirror := &listMirror[int]{reset: func() []int { return values(sorted.All()) }}
	sorted.Subscribe(mirror)

	for step := 0; step < 400; step++ {
		k := rng.Intn(15)
		switch rng.Intn(4) {
		case 0, 1:
			src.Set(k, rng.Intn(50), nil)
		case 2:
			src.Remove(k)
		default:
			if rng.Intn(20) == 0 {
				src.Clear()
			} else {
				src.Update(k, nil)
			}
		}

		want := values(src.All())
		slices.Sort(want)
		if !slices.Equal(mirror.items, want) {
			t.Fatalf("step %d: mirror %v, want %v", step, mirror.items, want)
		}
		if got := values(sorted.All()); !slices.Equal(got, want) {
			t.Fatalf("step %d: All() = %v, want %v", step, got, want)
		}
	}
}
