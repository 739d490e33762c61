package observable

import "iter"

// MappedMap is a Map whose values are mapper(source[key]).
//
// The mapper receives an update function bound to the entry's key. Calling
// it later makes the map emit an update for the cached value, letting a
// mapped value announce its own changes.
type MappedMap[K comparable, V, T any] struct {
	BaseMap[K, T]

	source  Map[K, V]
	mapper  func(value V, update func(params any)) T
	updater func(mapped T, params any, source V) T

	// state is nil while the map has no subscribers.
	state *mappedMapState[K, T]
}

type mappedMapState[K comparable, T any] struct {
	values      map[K]T
	unsubscribe func()
}

// NewMappedMap creates a MappedMap over source.
func NewMappedMap[K comparable, V, T any](source Map[K, V], mapper func(value V, update func(params any)) T) *MappedMap[K, V, T] {
	m := &MappedMap[K, V, T]{source: source, mapper: mapper}
	m.SetHooks(m.onSubscribeFirst, m.onUnsubscribeLast)
	return m
}

// WithUpdater sets the function run on a cached value when its source entry
// reports an update. Its result replaces the cached value.
func (m *MappedMap[K, V, T]) WithUpdater(fn func(mapped T, params any, source V) T) *MappedMap[K, V, T] {
	m.updater = fn
	return m
}

// Len returns the number of entries.
func (m *MappedMap[K, V, T]) Len() int {
	if st := m.state; st != nil {
		return len(st.values)
	}
	return m.source.Len()
}

// Get returns the mapped value for key.
func (m *MappedMap[K, V, T]) Get(key K) (T, bool) {
	if st := m.state; st != nil {
		v, ok := st.values[key]
		return v, ok
	}
	v, ok := m.source.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	return m.mapper(v, m.spontaneousUpdate(key)), true
}

// All yields mapped entries in the source's iteration order.
func (m *MappedMap[K, V, T]) All() iter.Seq2[K, T] {
	return func(yield func(K, T) bool) {
		for k, v := range m.source.All() {
			var mapped T
			if st := m.state; st != nil {
				cached, ok := st.values[k]
				if !ok {
					continue
				}
				mapped = cached
			} else {
				mapped = m.mapper(v, m.spontaneousUpdate(k))
			}
			if !yield(k, mapped) {
				return
			}
		}
	}
}

// spontaneousUpdate returns the update function handed to the mapper for key.
func (m *MappedMap[K, V, T]) spontaneousUpdate(key K) func(params any) {
	return func(params any) {
		st := m.state
		if st == nil {
			return
		}
		if mapped, ok := st.values[key]; ok {
			m.EmitUpdate(key, mapped, params)
		}
	}
}

func (m *MappedMap[K, V, T]) onSubscribeFirst() {
	unsubscribe := m.source.Subscribe(&mappedMapSource[K, V, T]{m})
	m.state = &mappedMapState[K, T]{
		values:      m.mapAll(),
		unsubscribe: unsubscribe,
	}
}

func (m *MappedMap[K, V, T]) onUnsubscribeLast() {
	st := m.state
	if st == nil {
		return
	}
	m.state = nil
	st.unsubscribe()
}

func (m *MappedMap[K, V, T]) mapAll() map[K]T {
	values := make(map[K]T, m.source.Len())
	for k, v := range m.source.All() {
		values[k] = m.mapper(v, m.spontaneousUpdate(k))
	}
	return values
}

// mappedMapSource receives the source map's events.
type mappedMapSource[K comparable, V, T any] struct {
	m *MappedMap[K, V, T]
}

func (h *mappedMapSource[K, V, T]) OnReset() {
	m := h.m
	st := m.state
	if st == nil {
		return
	}
	st.values = m.mapAll()
	m.EmitReset()
}

func (h *mappedMapSource[K, V, T]) OnAdd(key K, value V) {
	m := h.m
	st := m.state
	if st == nil {
		return
	}
	mapped := m.mapper(value, m.spontaneousUpdate(key))
	st.values[key] = mapped
	m.EmitAdd(key, mapped)
}

func (h *mappedMapSource[K, V, T]) OnUpdate(key K, value V, params any) {
	m := h.m
	st := m.state
	if st == nil {
		return
	}
	mapped, ok := st.values[key]
	if !ok {
		return
	}
	if m.updater != nil {
		mapped = m.updater(mapped, params, value)
		st.values[key] = mapped
	}
	m.EmitUpdate(key, mapped, params)
}

func (h *mappedMapSource[K, V, T]) OnRemove(key K, _ V) {
	m := h.m
	st := m.state
	if st == nil {
		return
	}
	mapped, ok := st.values[key]
	if !ok {
		return
	}
	delete(st.values, key)
	m.EmitRemove(key, mapped)
}
