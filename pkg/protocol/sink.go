package protocol

import (
	"fmt"

	"github.com/vango-dev/livecoll/pkg/observable"
)

// Sink receives collection events.
type Sink func(Event)

// ListSink turns the events of a list into numbered Events.
type ListSink[T any] struct {
	collection string
	sink       Sink
	seq        uint64
}

var _ observable.ListHandler[any] = (*ListSink[any])(nil)

// NewListSink creates a ListSink feeding sink. Subscribe it to one list.
func NewListSink[T any](collection string, sink Sink) *ListSink[T] {
	return &ListSink[T]{collection: collection, sink: sink}
}

// Seq returns the sequence number of the last event sent.
func (s *ListSink[T]) Seq() uint64 {
	return s.seq
}

func (s *ListSink[T]) send(ev Event) {
	s.seq++
	ev.Seq = s.seq
	ev.Collection = s.collection
	ev.Shape = ShapeList
	s.sink(ev)
}

func (s *ListSink[T]) OnReset() {
	s.send(Event{Kind: KindReset})
}

func (s *ListSink[T]) OnAdd(index int, value T) {
	s.send(Event{Kind: KindAdd, Index: index, Value: value})
}

func (s *ListSink[T]) OnUpdate(index int, value T, params any) {
	s.send(Event{Kind: KindUpdate, Index: index, Value: value, Params: params})
}

func (s *ListSink[T]) OnRemove(index int, value T) {
	s.send(Event{Kind: KindRemove, Index: index, Value: value})
}

func (s *ListSink[T]) OnMove(from, to int, value T) {
	s.send(Event{Kind: KindMove, Index: from, To: to, Value: value})
}

// MapSink turns the events of a map into numbered Events. Keys are
// formatted with fmt.Sprint.
type MapSink[K comparable, V any] struct {
	collection string
	sink       Sink
	seq        uint64
}

var _ observable.MapHandler[string, any] = (*MapSink[string, any])(nil)

// NewMapSink creates a MapSink feeding sink. Subscribe it to one map.
func NewMapSink[K comparable, V any](collection string, sink Sink) *MapSink[K, V] {
	return &MapSink[K, V]{collection: collection, sink: sink}
}

// Seq returns the sequence number of the last event sent.
func (s *MapSink[K, V]) Seq() uint64 {
	return s.seq
}

func (s *MapSink[K, V]) send(ev Event) {
	s.seq++
	ev.Seq = s.seq
	ev.Collection = s.collection
	ev.Shape = ShapeMap
	s.sink(ev)
}

func (s *MapSink[K, V]) OnReset() {
	s.send(Event{Kind: KindReset})
}

func (s *MapSink[K, V]) OnAdd(key K, value V) {
	s.send(Event{Kind: KindAdd, Key: fmt.Sprint(key), Value: value})
}

func (s *MapSink[K, V]) OnUpdate(key K, value V, params any) {
	s.send(Event{Kind: KindUpdate, Key: fmt.Sprint(key), Value: value, Params: params})
}

func (s *MapSink[K, V]) OnRemove(key K, value V) {
	s.send(Event{Kind: KindRemove, Key: fmt.Sprint(key), Value: value})
}

// ListSnapshot captures the content of list.
func ListSnapshot[T any](collection string, seq uint64, list observable.List[T]) *Snapshot {
	s := &Snapshot{Collection: collection, Shape: ShapeList, Seq: seq, Entries: make([]Entry, 0, list.Len())}
	for _, v := range list.All() {
		s.Entries = append(s.Entries, Entry{Value: v})
	}
	return s
}

// MapSnapshot captures the content of m in its iteration order.
func MapSnapshot[K comparable, V any](collection string, seq uint64, m observable.Map[K, V]) *Snapshot {
	s := &Snapshot{Collection: collection, Shape: ShapeMap, Seq: seq, Entries: make([]Entry, 0, m.Len())}
	for k, v := range m.All() {
		s.Entries = append(s.Entries, Entry{Key: fmt.Sprint(k), Value: v})
	}
	return s
}
