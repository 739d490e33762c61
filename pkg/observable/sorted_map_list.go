package observable

import (
	"iter"
	"slices"
)

// SortedMapList is a List of a map's values ordered by compare.
//
// An update that changes a value's position emits a move followed by the
// update at the new index.
type SortedMapList[K comparable, V any] struct {
	BaseList[V]

	source  Map[K, V]
	compare func(a, b V) int

	// state is nil while the list has no subscribers.
	state *sortedMapListState[K, V]
}

type sortedPair[K comparable, V any] struct {
	key   K
	value V
}

type sortedMapListState[K comparable, V any] struct {
	pairs       []sortedPair[K, V]
	unsubscribe func()
}

// NewSortedMapList creates a SortedMapList over source.
func NewSortedMapList[K comparable, V any](source Map[K, V], compare func(a, b V) int) *SortedMapList[K, V] {
	l := &SortedMapList[K, V]{source: source, compare: compare}
	l.SetHooks(l.onSubscribeFirst, l.onUnsubscribeLast)
	return l
}

// Len returns the number of values.
func (l *SortedMapList[K, V]) Len() int {
	if st := l.state; st != nil {
		return len(st.pairs)
	}
	return l.source.Len()
}

// At returns the value at index.
func (l *SortedMapList[K, V]) At(index int) V {
	if st := l.state; st != nil {
		return st.pairs[index].value
	}
	return l.sorted()[index].value
}

// All yields the values in sorted order.
func (l *SortedMapList[K, V]) All() iter.Seq2[int, V] {
	return func(yield func(int, V) bool) {
		var pairs []sortedPair[K, V]
		if st := l.state; st != nil {
			pairs = st.pairs
		} else {
			pairs = l.sorted()
		}
		for i, p := range pairs {
			if !yield(i, p.value) {
				return
			}
		}
	}
}

func (l *SortedMapList[K, V]) comparePairs(a, b sortedPair[K, V]) int {
	return l.compare(a.value, b.value)
}

func (l *SortedMapList[K, V]) sorted() []sortedPair[K, V] {
	pairs := make([]sortedPair[K, V], 0, l.source.Len())
	for k, v := range l.source.All() {
		pairs = append(pairs, sortedPair[K, V]{key: k, value: v})
	}
	slices.SortStableFunc(pairs, l.comparePairs)
	return pairs
}

func (l *SortedMapList[K, V]) onSubscribeFirst() {
	unsubscribe := l.source.Subscribe(&sortedMapListSource[K, V]{l})
	l.state = &sortedMapListState[K, V]{
		pairs:       l.sorted(),
		unsubscribe: unsubscribe,
	}
}

func (l *SortedMapList[K, V]) onUnsubscribeLast() {
	st := l.state
	if st == nil {
		return
	}
	l.state = nil
	st.unsubscribe()
}

func (st *sortedMapListState[K, V]) indexOf(key K) int {
	return slices.IndexFunc(st.pairs, func(p sortedPair[K, V]) bool { return p.key == key })
}

// sortedMapListSource receives the source map's events.
type sortedMapListSource[K comparable, V any] struct {
	l *SortedMapList[K, V]
}

func (h *sortedMapListSource[K, V]) OnReset() {
	l := h.l
	st := l.state
	if st == nil {
		return
	}
	st.pairs = l.sorted()
	l.EmitReset()
}

func (h *sortedMapListSource[K, V]) OnAdd(key K, value V) {
	l := h.l
	st := l.state
	if st == nil {
		return
	}
	p := sortedPair[K, V]{key: key, value: value}
	i := SortedIndex(st.pairs, p, l.comparePairs)
	st.pairs = slices.Insert(st.pairs, i, p)
	l.EmitAdd(i, value)
}

func (h *sortedMapListSource[K, V]) OnUpdate(key K, value V, params any) {
	l := h.l
	st := l.state
	if st == nil {
		return
	}
	from := st.indexOf(key)
	if from < 0 {
		return
	}
	// The pair is taken out first: SortedIndex needs a sorted slice.
	st.pairs = slices.Delete(st.pairs, from, from+1)
	p := sortedPair[K, V]{key: key, value: value}
	to := SortedIndex(st.pairs, p, l.comparePairs)
	st.pairs = slices.Insert(st.pairs, to, p)
	if from != to {
		l.EmitMove(from, to, value)
	}
	l.EmitUpdate(to, value, params)
}

func (h *sortedMapListSource[K, V]) OnRemove(key K, value V) {
	l := h.l
	st := l.state
	if st == nil {
		return
	}
	i := st.indexOf(key)
	if i < 0 {
		return
	}
	st.pairs = slices.Delete(st.pairs, i, i+1)
	l.EmitRemove(i, value)
}
