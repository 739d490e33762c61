package protocol

import (
	"reflect"
	"testing"

	"github.com/vango-dev/livecoll/pkg/observable"
)

func TestListSink(t *testing.T) {
	list := observable.NewArray[any]("a", "b")
	var got []Event
	sink := NewListSink[any]("letters", func(ev Event) { got = append(got, ev) })
	list.Subscribe(sink)

	list.Append("c")
	list.SetAt(0, "A", "upper")
	list.Move(2, 0)
	list.RemoveAt(1)
	list.Replace(nil)

	want := []Event{
		{Seq: 1, Collection: "letters", Kind: KindAdd, Shape: ShapeList, Index: 2, Value: "c"},
		{Seq: 2, Collection: "letters", Kind: KindUpdate, Shape: ShapeList, Index: 0, Value: "A", Params: "upper"},
		{Seq: 3, Collection: "letters", Kind: KindMove, Shape: ShapeList, Index: 2, To: 0, Value: "c"},
		{Seq: 4, Collection: "letters", Kind: KindRemove, Shape: ShapeList, Index: 1, Value: "A"},
		{Seq: 5, Collection: "letters", Kind: KindReset, Shape: ShapeList},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events =\n%+v\nwant\n%+v", got, want)
	}
	if sink.Seq() != 5 {
		t.Errorf("Seq() = %d, want 5", sink.Seq())
	}
}

func TestMapSink(t *testing.T) {
	m := observable.NewDict[int, string]()
	var got []Event
	sink := NewMapSink[int, string]("names", func(ev Event) { got = append(got, ev) })
	m.Subscribe(sink)

	m.Add(1, "one")
	m.Set(1, "uno", nil)
	m.Remove(1)

	want := []Event{
		{Seq: 1, Collection: "names", Kind: KindAdd, Shape: ShapeMap, Key: "1", Value: "one"},
		{Seq: 2, Collection: "names", Kind: KindUpdate, Shape: ShapeMap, Key: "1", Value: "uno"},
		{Seq: 3, Collection: "names", Kind: KindRemove, Shape: ShapeMap, Key: "1", Value: "uno"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events =\n%+v\nwant\n%+v", got, want)
	}
}

func TestSnapshots(t *testing.T) {
	list := observable.NewArray(3, 1, 2)
	s := ListSnapshot[int]("nums", 4, list)
	if s.Shape != ShapeList || s.Seq != 4 {
		t.Errorf("ListSnapshot() = %+v", s)
	}
	if got := s.Values(); !reflect.DeepEqual(got, []any{3, 1, 2}) {
		t.Errorf("Values() = %v", got)
	}

	m := observable.NewDict[string, int]()
	m.Add("b", 2)
	m.Add("a", 1)
	ms := MapSnapshot[string, int]("m", 0, m)
	want := []Entry{{Key: "b", Value: 2}, {Key: "a", Value: 1}}
	if !reflect.DeepEqual(ms.Entries, want) {
		t.Errorf("MapSnapshot().Entries = %+v, want %+v", ms.Entries, want)
	}
}
