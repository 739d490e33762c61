package observable

import (
	"slices"
	"testing"
)

func TestArrayEvents(t *testing.T) {
	a := NewArray("a", "b")
	r := &listRecorder[string]{}
	a.Subscribe(r)

	a.Append("c")
	a.Insert(0, "z")
	a.SetAt(1, "A", "upper")
	a.UpdateAt(2, nil)
	a.Move(0, 3)
	removed := a.RemoveAt(1)
	a.Replace([]string{"x"})

	expectEvents(t, r.take(),
		"add 2 c",
		"add 0 z",
		"update 1 A upper",
		"update 2 b <nil>",
		"move 0 3 z",
		"remove 1 b",
		"reset",
	)
	if removed != "b" {
		t.Errorf("expected RemoveAt to return b, got %q", removed)
	}
	if got := a.Slice(); !slices.Equal(got, []string{"x"}) {
		t.Errorf("expected [x], got %v", got)
	}
}

func TestArrayMoveSameIndex(t *testing.T) {
	a := NewArray(1, 2)
	r := &listRecorder[int]{}
	a.Subscribe(r)

	a.Move(1, 1)
	expectEvents(t, r.take())
}

func TestArrayInsertMany(t *testing.T) {
	a := NewArray(1, 4)
	r := &listRecorder[int]{}
	a.Subscribe(r)

	a.InsertMany(1, 2, 3)

	expectEvents(t, r.take(), "add 1 2", "add 2 3")
	if got := values(a.All()); !slices.Equal(got, []int{1, 2, 3, 4}) {
		t.Errorf("expected [1 2 3 4], got %v", got)
	}
}

func TestArrayFindAndUpdate(t *testing.T) {
	a := NewArray(1, 9, 4)
	r := &listRecorder[int]{}
	a.Subscribe(r)

	if !a.FindAndUpdate(func(n int) bool { return n == 9 }, func(int) (any, bool) { return "hit", true }) {
		t.Error("expected found=true")
	}
	expectEvents(t, r.take(), "update 1 9 hit")
}

func TestDictEvents(t *testing.T) {
	d := NewDict[string, int]()
	r := &mapRecorder[string, int]{}
	d.Subscribe(r)

	if !d.Add("a", 1) {
		t.Error("expected Add of new key to succeed")
	}
	if d.Add("a", 2) {
		t.Error("expected Add of existing key to fail")
	}
	d.Set("b", 2, nil)
	d.Set("a", 10, "p")
	d.Update("b", "touch")
	if d.Update("missing", nil) {
		t.Error("expected Update of missing key to fail")
	}
	if v, ok := d.Remove("a"); !ok || v != 10 {
		t.Errorf("expected Remove to return (10, true), got (%d, %v)", v, ok)
	}
	if _, ok := d.Remove("a"); ok {
		t.Error("expected second Remove to fail")
	}
	d.Clear()

	expectEvents(t, r.take(),
		"add a 1",
		"add b 2",
		"update a 10 p",
		"update b 2 touch",
		"remove a 10",
		"reset",
	)
	if d.Len() != 0 {
		t.Errorf("expected empty dict, got %d entries", d.Len())
	}
}

func TestDictIterationOrder(t *testing.T) {
	d := NewDict[string, int]()
	d.Add("c", 3)
	d.Add("a", 1)
	d.Add("b", 2)
	d.Remove("a")
	d.Add("a", 4)

	got := pairs(d.All())
	want := []string{"c=3", "b=2", "a=4"}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
