package observable

import "iter"

// ApplyMap passes its source through unchanged while running a callback for
// every entry: on add, on update (with the update's params), and over the
// whole content when the callback is installed, when the first subscriber
// arrives and when the source resets.
type ApplyMap[K comparable, V any] struct {
	BaseMap[K, V]

	source Map[K, V]
	apply  func(key K, value V, params any)

	// state is nil while the map has no subscribers.
	state *applyMapState
}

type applyMapState struct {
	unsubscribe func()
}

// NewApplyMap creates an ApplyMap over source. apply may be nil.
func NewApplyMap[K comparable, V any](source Map[K, V], apply func(key K, value V, params any)) *ApplyMap[K, V] {
	m := &ApplyMap[K, V]{source: source, apply: apply}
	m.SetHooks(m.onSubscribeFirst, m.onUnsubscribeLast)
	return m
}

// HasApply reports whether a callback is installed.
func (m *ApplyMap[K, V]) HasApply() bool {
	return m.apply != nil
}

// SetApply installs apply and runs it over the current content.
// Passing nil detaches the callback.
func (m *ApplyMap[K, V]) SetApply(apply func(key K, value V, params any)) {
	m.apply = apply
	if apply != nil {
		m.ApplyOnce(apply)
	}
}

// ApplyOnce runs apply over every current entry with nil params.
func (m *ApplyMap[K, V]) ApplyOnce(apply func(key K, value V, params any)) {
	for k, v := range m.source.All() {
		apply(k, v, nil)
	}
}

// Len returns the source's size.
func (m *ApplyMap[K, V]) Len() int {
	return m.source.Len()
}

// Get returns the source's value for key.
func (m *ApplyMap[K, V]) Get(key K) (V, bool) {
	return m.source.Get(key)
}

// All yields the source's entries.
func (m *ApplyMap[K, V]) All() iter.Seq2[K, V] {
	return m.source.All()
}

func (m *ApplyMap[K, V]) onSubscribeFirst() {
	unsubscribe := m.source.Subscribe(&applyMapSource[K, V]{m})
	m.state = &applyMapState{unsubscribe: unsubscribe}
	if m.apply != nil {
		m.ApplyOnce(m.apply)
	}
}

func (m *ApplyMap[K, V]) onUnsubscribeLast() {
	st := m.state
	if st == nil {
		return
	}
	m.state = nil
	st.unsubscribe()
}

// applyMapSource receives the source map's events.
type applyMapSource[K comparable, V any] struct {
	m *ApplyMap[K, V]
}

func (h *applyMapSource[K, V]) OnReset() {
	m := h.m
	if m.state == nil {
		return
	}
	if m.apply != nil {
		m.ApplyOnce(m.apply)
	}
	m.EmitReset()
}

func (h *applyMapSource[K, V]) OnAdd(key K, value V) {
	m := h.m
	if m.state == nil {
		return
	}
	if m.apply != nil {
		m.apply(key, value, nil)
	}
	m.EmitAdd(key, value)
}

func (h *applyMapSource[K, V]) OnUpdate(key K, value V, params any) {
	m := h.m
	if m.state == nil {
		return
	}
	if m.apply != nil {
		m.apply(key, value, params)
	}
	m.EmitUpdate(key, value, params)
}

func (h *applyMapSource[K, V]) OnRemove(key K, value V) {
	m := h.m
	if m.state == nil {
		return
	}
	m.EmitRemove(key, value)
}
