package observable

import (
	"iter"
	"slices"
)

// MappedList is a List whose elements are mapper(source[i]).
//
// Mapped values are computed once when an element is added and cached while
// the list has subscribers. Source updates re-emit the cached value, after
// passing it through the updater if one is set.
type MappedList[S, T any] struct {
	BaseList[T]

	source   List[S]
	mapper   func(S) T
	updater  func(mapped T, params any, source S) T
	onRemove func(T)

	// state is nil while the list has no subscribers.
	state *mappedListState[T]
}

type mappedListState[T any] struct {
	values      []T
	unsubscribe func()
}

// NewMappedList creates a MappedList over source. Nothing is computed until
// the first subscription.
func NewMappedList[S, T any](source List[S], mapper func(S) T) *MappedList[S, T] {
	l := &MappedList[S, T]{source: source, mapper: mapper}
	l.SetHooks(l.onSubscribeFirst, l.onUnsubscribeLast)
	return l
}

// WithUpdater sets the function run on a cached value when its source
// element reports an update. It returns the value to cache and emit, which
// may be the mapped value itself after mutating it.
func (l *MappedList[S, T]) WithUpdater(fn func(mapped T, params any, source S) T) *MappedList[S, T] {
	l.updater = fn
	return l
}

// WithRemoveCallback sets a function called with each mapped value that is
// dropped from the cache.
func (l *MappedList[S, T]) WithRemoveCallback(fn func(T)) *MappedList[S, T] {
	l.onRemove = fn
	return l
}

// Len returns the number of elements.
func (l *MappedList[S, T]) Len() int {
	if st := l.state; st != nil {
		return len(st.values)
	}
	return l.source.Len()
}

// All yields the mapped elements. Without subscribers every element is
// mapped afresh.
func (l *MappedList[S, T]) All() iter.Seq2[int, T] {
	if st := l.state; st != nil {
		return func(yield func(int, T) bool) {
			for i, v := range st.values {
				if !yield(i, v) {
					return
				}
			}
		}
	}
	return func(yield func(int, T) bool) {
		for i, v := range l.source.All() {
			if !yield(i, l.mapper(v)) {
				return
			}
		}
	}
}

// FindAndUpdate runs updater on the first cached value matching predicate
// and emits an update for it unless updater declines. It returns false when
// nothing matched or the list has no subscribers.
func (l *MappedList[S, T]) FindAndUpdate(predicate func(T) bool, updater func(T) (any, bool)) bool {
	st := l.state
	if st == nil {
		return false
	}
	return FindAndUpdateInSlice(st.values, predicate, l, updater)
}

func (l *MappedList[S, T]) onSubscribeFirst() {
	unsubscribe := l.source.Subscribe(&mappedListSource[S, T]{l})
	l.state = &mappedListState[T]{
		values:      l.mapAll(),
		unsubscribe: unsubscribe,
	}
}

func (l *MappedList[S, T]) onUnsubscribeLast() {
	st := l.state
	if st == nil {
		return
	}
	l.state = nil
	st.unsubscribe()
}

func (l *MappedList[S, T]) mapAll() []T {
	values := make([]T, 0, l.source.Len())
	for _, v := range l.source.All() {
		values = append(values, l.mapper(v))
	}
	return values
}

func (l *MappedList[S, T]) dropped(value T) {
	if l.onRemove != nil {
		l.onRemove(value)
	}
}

// mappedListSource receives the source list's events.
type mappedListSource[S, T any] struct {
	l *MappedList[S, T]
}

func (h *mappedListSource[S, T]) OnReset() {
	l := h.l
	st := l.state
	if st == nil {
		return
	}
	old := st.values
	st.values = l.mapAll()
	for _, v := range old {
		l.dropped(v)
	}
	l.EmitReset()
}

func (h *mappedListSource[S, T]) OnAdd(index int, value S) {
	l := h.l
	st := l.state
	if st == nil {
		return
	}
	mapped := l.mapper(value)
	st.values = slices.Insert(st.values, index, mapped)
	l.EmitAdd(index, mapped)
}

func (h *mappedListSource[S, T]) OnUpdate(index int, value S, params any) {
	l := h.l
	st := l.state
	if st == nil {
		return
	}
	mapped := st.values[index]
	if l.updater != nil {
		mapped = l.updater(mapped, params, value)
		st.values[index] = mapped
	}
	l.EmitUpdate(index, mapped, params)
}

func (h *mappedListSource[S, T]) OnRemove(index int, _ S) {
	l := h.l
	st := l.state
	if st == nil {
		return
	}
	mapped := st.values[index]
	st.values = slices.Delete(st.values, index, index+1)
	l.dropped(mapped)
	l.EmitRemove(index, mapped)
}

func (h *mappedListSource[S, T]) OnMove(from, to int, _ S) {
	l := h.l
	st := l.state
	if st == nil {
		return
	}
	mapped := st.values[from]
	st.values = slices.Delete(st.values, from, from+1)
	st.values = slices.Insert(st.values, to, mapped)
	l.EmitMove(from, to, mapped)
}
