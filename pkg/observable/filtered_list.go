package observable

import (
	"iter"
	"slices"
)

// FilteredList is a List of the source elements that satisfy a predicate,
// in source order.
//
// While subscribed it keeps an inclusion mask parallel to the source's
// indices and reports positions translated into its own index space. The
// predicate receives the element's current source index; after an insert,
// removal or move shifts indices, the shifted range is re-evaluated so
// index-dependent predicates stay consistent.
type FilteredList[T any] struct {
	BaseList[T]

	source List[T]
	filter func(value T, index int) bool

	// state is nil while the list has no subscribers.
	state *filteredListState
}

type filteredListState struct {
	// mask[i] reports whether source element i is included.
	// It is nil when no filter is set.
	mask        []bool
	unsubscribe func()
}

// translate returns the filtered index of source index i: the number of
// included elements before it.
func (s *filteredListState) translate(i int) int {
	if s.mask == nil {
		return i
	}
	n := 0
	for _, included := range s.mask[:i] {
		if included {
			n++
		}
	}
	return n
}

// NewFilteredList creates a FilteredList over source. A nil filter includes
// every element.
func NewFilteredList[T any](source List[T], filter func(value T, index int) bool) *FilteredList[T] {
	l := &FilteredList[T]{source: source, filter: filter}
	l.SetHooks(l.onSubscribeFirst, l.onUnsubscribeLast)
	return l
}

// SetFilter replaces the predicate. With subscribers, the source is
// re-evaluated and an add or remove is emitted for every element whose
// inclusion changed. Passing nil includes everything again.
func (l *FilteredList[T]) SetFilter(filter func(value T, index int) bool) {
	l.filter = filter
	st := l.state
	if st == nil {
		return
	}

	if filter == nil {
		if st.mask == nil {
			return
		}
		for i, v := range l.source.All() {
			if st.mask[i] {
				continue
			}
			st.mask[i] = true
			l.EmitAdd(st.translate(i), v)
		}
		st.mask = nil
		return
	}

	if st.mask == nil {
		st.mask = make([]bool, l.source.Len())
		for i := range st.mask {
			st.mask[i] = true
		}
	}
	l.refilter(st, 0, len(st.mask))
}

// Len returns the number of included elements.
func (l *FilteredList[T]) Len() int {
	if st := l.state; st != nil {
		if st.mask == nil {
			return l.source.Len()
		}
		n := 0
		for _, included := range st.mask {
			if included {
				n++
			}
		}
		return n
	}
	if l.filter == nil {
		return l.source.Len()
	}
	n := 0
	for i, v := range l.source.All() {
		if l.filter(v, i) {
			n++
		}
	}
	return n
}

// All yields the included elements with their filtered indices.
func (l *FilteredList[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		st := l.state
		n := 0
		for i, v := range l.source.All() {
			switch {
			case st != nil && st.mask != nil:
				if !st.mask[i] {
					continue
				}
			case st == nil && l.filter != nil:
				if !l.filter(v, i) {
					continue
				}
			}
			if !yield(n, v) {
				return
			}
			n++
		}
	}
}

func (l *FilteredList[T]) onSubscribeFirst() {
	unsubscribe := l.source.Subscribe(&filteredListSource[T]{l})
	l.state = &filteredListState{
		mask:        l.buildMask(),
		unsubscribe: unsubscribe,
	}
}

func (l *FilteredList[T]) onUnsubscribeLast() {
	st := l.state
	if st == nil {
		return
	}
	l.state = nil
	st.unsubscribe()
}

func (l *FilteredList[T]) buildMask() []bool {
	if l.filter == nil {
		return nil
	}
	mask := make([]bool, 0, l.source.Len())
	for i, v := range l.source.All() {
		mask = append(mask, l.filter(v, i))
	}
	return mask
}

// refilter re-evaluates source indices in [lo, hi) and emits an add or remove
// for each element whose inclusion changed, in source order.
func (l *FilteredList[T]) refilter(st *filteredListState, lo, hi int) {
	for i, v := range l.source.All() {
		if i < lo {
			continue
		}
		if i >= hi || st.mask == nil {
			return
		}
		was, now := st.mask[i], l.filter(v, i)
		if was == now {
			continue
		}
		index := st.translate(i)
		st.mask[i] = now
		if now {
			l.EmitAdd(index, v)
		} else {
			l.EmitRemove(index, v)
		}
	}
}

// filteredListSource receives the source list's events.
type filteredListSource[T any] struct {
	l *FilteredList[T]
}

func (h *filteredListSource[T]) OnReset() {
	l := h.l
	st := l.state
	if st == nil {
		return
	}
	st.mask = l.buildMask()
	l.EmitReset()
}

func (h *filteredListSource[T]) OnAdd(index int, value T) {
	l := h.l
	st := l.state
	if st == nil {
		return
	}
	if st.mask == nil {
		l.EmitAdd(index, value)
		return
	}
	included := l.filter(value, index)
	st.mask = slices.Insert(st.mask, index, included)
	if included {
		l.EmitAdd(st.translate(index), value)
	}
	l.refilter(st, index+1, len(st.mask))
}

func (h *filteredListSource[T]) OnUpdate(index int, value T, params any) {
	l := h.l
	st := l.state
	if st == nil {
		return
	}
	if st.mask == nil {
		l.EmitUpdate(index, value, params)
		return
	}
	was, now := st.mask[index], l.filter(value, index)
	st.mask[index] = now
	translated := st.translate(index)
	switch {
	case was && now:
		l.EmitUpdate(translated, value, params)
	case was:
		l.EmitRemove(translated, value)
	case now:
		l.EmitAdd(translated, value)
	}
}

func (h *filteredListSource[T]) OnRemove(index int, value T) {
	l := h.l
	st := l.state
	if st == nil {
		return
	}
	if st.mask == nil {
		l.EmitRemove(index, value)
		return
	}
	was := st.mask[index]
	translated := st.translate(index)
	st.mask = slices.Delete(st.mask, index, index+1)
	if was {
		l.EmitRemove(translated, value)
	}
	l.refilter(st, index, len(st.mask))
}

func (h *filteredListSource[T]) OnMove(from, to int, value T) {
	l := h.l
	st := l.state
	if st == nil {
		return
	}
	if st.mask == nil {
		l.EmitMove(from, to, value)
		return
	}

	was := st.mask[from]
	fromIndex := st.translate(from)
	st.mask = slices.Delete(st.mask, from, from+1)
	now := l.filter(value, to)
	st.mask = slices.Insert(st.mask, to, now)
	toIndex := st.translate(to)

	switch {
	case was && now:
		if fromIndex != toIndex {
			l.EmitMove(fromIndex, toIndex, value)
		}
	case was:
		l.EmitRemove(fromIndex, value)
	case now:
		l.EmitAdd(toIndex, value)
	}
	l.refilter(st, min(from, to), max(from, to)+1)
}
