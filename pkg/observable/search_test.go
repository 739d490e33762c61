package observable

import (
	"cmp"
	"testing"
)

func TestSortedIndex(t *testing.T) {
	tests := []struct {
		name  string
		items []int
		value int
		want  int
	}{
		{"empty", nil, 5, 0},
		{"before all", []int{2, 4, 6}, 1, 0},
		{"after all", []int{2, 4, 6}, 7, 3},
		{"between", []int{2, 4, 6}, 5, 2},
		{"equal collapses to match", []int{2, 4, 6}, 4, 1},
		{"equal first", []int{2, 4, 6}, 2, 0},
		{"equal last", []int{2, 4, 6}, 6, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SortedIndex(tt.items, tt.value, cmp.Compare[int])
			if got != tt.want {
				t.Errorf("SortedIndex(%v, %d) = %d, want %d", tt.items, tt.value, got, tt.want)
			}
		})
	}
}

func TestSortedIndexDescendingComparator(t *testing.T) {
	desc := func(a, b int) int { return cmp.Compare(b, a) }
	got := SortedIndex([]int{9, 5, 1}, 3, desc)
	if got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}

func TestFindAndUpdateInSlice(t *testing.T) {
	newList := func() (*MappedList[int, int], *listRecorder[int]) {
		squares := NewMappedList(NewArray(1, 3, 4), func(n int) int { return n * n })
		r := &listRecorder[int]{}
		squares.Subscribe(r)
		return squares, r
	}
	isNine := func(n int) bool { return n == 9 }

	t.Run("updater declines", func(t *testing.T) {
		squares, r := newList()
		calls := 0
		found := squares.FindAndUpdate(isNine, func(int) (any, bool) {
			calls++
			return nil, false
		})
		if !found {
			t.Error("expected found=true")
		}
		if calls != 1 {
			t.Errorf("expected updater called once, got %d", calls)
		}
		expectEvents(t, r.take())
	})

	t.Run("updater returns params", func(t *testing.T) {
		squares, r := newList()
		found := squares.FindAndUpdate(isNine, func(int) (any, bool) { return "p", true })
		if !found {
			t.Error("expected found=true")
		}
		expectEvents(t, r.take(), "update 1 9 p")
	})

	t.Run("not found", func(t *testing.T) {
		squares, r := newList()
		calls := 0
		found := squares.FindAndUpdate(func(n int) bool { return n == 7 }, func(int) (any, bool) {
			calls++
			return "p", true
		})
		if found {
			t.Error("expected found=false")
		}
		if calls != 0 {
			t.Errorf("updater should not run, ran %d times", calls)
		}
		expectEvents(t, r.take())
	})

	t.Run("unsubscribed list finds nothing", func(t *testing.T) {
		squares := NewMappedList(NewArray(3), func(n int) int { return n * n })
		if squares.FindAndUpdate(isNine, func(int) (any, bool) { return nil, true }) {
			t.Error("expected found=false without subscribers")
		}
	})
}
