package observable

import "iter"

// JoinedMap is the union of several source maps.
//
// When more than one source holds a key, the value from the earliest source
// is visible and the others are occluded: they are skipped by iteration and
// Get, and their events are suppressed. Adding a key to an earlier source
// first emits a remove for the value it occludes; removing it emits an add
// for the value that becomes visible.
type JoinedMap[K comparable, V any] struct {
	BaseMap[K, V]

	sources []Map[K, V]

	// state is nil while the map has no subscribers.
	state *joinedMapState
}

type joinedMapState struct {
	unsubscribes []func()
}

// NewJoinedMap creates a JoinedMap. Earlier sources take precedence.
func NewJoinedMap[K comparable, V any](sources ...Map[K, V]) *JoinedMap[K, V] {
	m := &JoinedMap[K, V]{sources: sources}
	m.SetHooks(m.onSubscribeFirst, m.onUnsubscribeLast)
	return m
}

// Get returns the value from the first source holding key.
func (m *JoinedMap[K, V]) Get(key K) (V, bool) {
	for _, source := range m.sources {
		if v, ok := source.Get(key); ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// All yields every source's entries in source order, skipping keys already
// yielded by an earlier source.
func (m *JoinedMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		seen := make(map[K]struct{})
		for _, source := range m.sources {
			for k, v := range source.All() {
				if _, ok := seen[k]; ok {
					continue
				}
				seen[k] = struct{}{}
				if !yield(k, v) {
					return
				}
			}
		}
	}
}

// Len returns the number of visible keys.
func (m *JoinedMap[K, V]) Len() int {
	n := 0
	for range m.All() {
		n++
	}
	return n
}

// TotalLen returns the sum of the sources' sizes. Keys present in several
// sources are counted once per source.
func (m *JoinedMap[K, V]) TotalLen() int {
	n := 0
	for _, source := range m.sources {
		n += source.Len()
	}
	return n
}

func (m *JoinedMap[K, V]) onSubscribeFirst() {
	unsubscribes := make([]func(), 0, len(m.sources))
	for i, source := range m.sources {
		unsubscribes = append(unsubscribes, source.Subscribe(&joinedMapSource[K, V]{m: m, index: i}))
	}
	m.state = &joinedMapState{unsubscribes: unsubscribes}
}

func (m *JoinedMap[K, V]) onUnsubscribeLast() {
	st := m.state
	if st == nil {
		return
	}
	m.state = nil
	for _, unsubscribe := range st.unsubscribes {
		unsubscribe()
	}
}

// isOccluded reports whether a source before index holds key.
func (m *JoinedMap[K, V]) isOccluded(index int, key K) bool {
	for _, source := range m.sources[:index] {
		if _, ok := source.Get(key); ok {
			return true
		}
	}
	return false
}

// occludedValue returns the value for key from the first source after index
// that holds it.
func (m *JoinedMap[K, V]) occludedValue(index int, key K) (V, bool) {
	for _, source := range m.sources[index+1:] {
		if v, ok := source.Get(key); ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// joinedMapSource receives the events of the source at index.
type joinedMapSource[K comparable, V any] struct {
	m     *JoinedMap[K, V]
	index int
}

func (h *joinedMapSource[K, V]) OnReset() {
	if h.m.state == nil {
		return
	}
	h.m.EmitReset()
}

func (h *joinedMapSource[K, V]) OnAdd(key K, value V) {
	m := h.m
	if m.state == nil || m.isOccluded(h.index, key) {
		return
	}
	if hidden, ok := m.occludedValue(h.index, key); ok {
		m.EmitRemove(key, hidden)
	}
	m.EmitAdd(key, value)
}

func (h *joinedMapSource[K, V]) OnUpdate(key K, value V, params any) {
	m := h.m
	if m.state == nil || m.isOccluded(h.index, key) {
		return
	}
	m.EmitUpdate(key, value, params)
}

func (h *joinedMapSource[K, V]) OnRemove(key K, value V) {
	m := h.m
	if m.state == nil || m.isOccluded(h.index, key) {
		return
	}
	m.EmitRemove(key, value)
	if revealed, ok := m.occludedValue(h.index, key); ok {
		m.EmitAdd(key, revealed)
	}
}
