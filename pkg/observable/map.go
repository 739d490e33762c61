package observable

import "iter"

// MapHandler receives the change events of a Map.
type MapHandler[K comparable, V any] interface {
	OnReset()
	OnAdd(key K, value V)
	OnUpdate(key K, value V, params any)
	OnRemove(key K, value V)
}

// Map is a live key/value collection. Keys are unique at any instant.
type Map[K comparable, V any] interface {
	Subscribe(h MapHandler[K, V]) func()
	Unsubscribe(h MapHandler[K, V])
	UnsubscribeAll()
	HasSubscriptions() bool

	// Len returns the current number of entries.
	Len() int

	// Get returns the value stored under key and whether it was present.
	Get(key K) (V, bool)

	// All yields (key, value) pairs in the map's iteration order, reflecting
	// the state when iteration starts.
	All() iter.Seq2[K, V]
}

// BaseMap provides event emission for Map implementations.
type BaseMap[K comparable, V any] struct {
	Subscribable[MapHandler[K, V]]
}

// EmitReset notifies all handlers that the content changed wholesale.
func (b *BaseMap[K, V]) EmitReset() {
	for h := range b.Handlers() {
		h.OnReset()
	}
}

// EmitAdd notifies all handlers that key was added.
func (b *BaseMap[K, V]) EmitAdd(key K, value V) {
	for h := range b.Handlers() {
		h.OnAdd(key, value)
	}
}

// EmitUpdate notifies all handlers that the value under key changed.
func (b *BaseMap[K, V]) EmitUpdate(key K, value V, params any) {
	for h := range b.Handlers() {
		h.OnUpdate(key, value, params)
	}
}

// EmitRemove notifies all handlers that key was removed.
func (b *BaseMap[K, V]) EmitRemove(key K, value V) {
	for h := range b.Handlers() {
		h.OnRemove(key, value)
	}
}

// MapHandlerFuncs adapts plain functions to a MapHandler.
// Nil fields ignore their event. Subscribe it by pointer.
type MapHandlerFuncs[K comparable, V any] struct {
	Reset  func()
	Add    func(key K, value V)
	Update func(key K, value V, params any)
	Remove func(key K, value V)
}

func (f *MapHandlerFuncs[K, V]) OnReset() {
	if f.Reset != nil {
		f.Reset()
	}
}

func (f *MapHandlerFuncs[K, V]) OnAdd(key K, value V) {
	if f.Add != nil {
		f.Add(key, value)
	}
}

func (f *MapHandlerFuncs[K, V]) OnUpdate(key K, value V, params any) {
	if f.Update != nil {
		f.Update(key, value, params)
	}
}

func (f *MapHandlerFuncs[K, V]) OnRemove(key K, value V) {
	if f.Remove != nil {
		f.Remove(key, value)
	}
}
