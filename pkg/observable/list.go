package observable

import "iter"

// ListHandler receives the change events of a List.
//
// Indices in OnAdd and the destination of OnMove are valid in the state
// after the event; indices in OnRemove and the source of OnMove are valid in
// the state before it. params describes what changed in an update and is
// passed through operators untouched.
type ListHandler[T any] interface {
	OnReset()
	OnAdd(index int, value T)
	OnUpdate(index int, value T, params any)
	OnRemove(index int, value T)
	OnMove(from, to int, value T)
}

// List is a live, indexable sequence.
type List[T any] interface {
	Subscribe(h ListHandler[T]) func()
	Unsubscribe(h ListHandler[T])
	UnsubscribeAll()
	HasSubscriptions() bool

	// Len returns the current number of elements.
	Len() int

	// All yields (index, value) pairs reflecting the state when iteration
	// starts. Mutating the list during iteration is undefined.
	All() iter.Seq2[int, T]
}

// UpdateEmitter is implemented by lists that can announce an in-place change
// of one of their elements.
type UpdateEmitter[T any] interface {
	EmitUpdate(index int, value T, params any)
}

// BaseList provides event emission for List implementations.
type BaseList[T any] struct {
	Subscribable[ListHandler[T]]
}

// EmitReset notifies all handlers that the content changed wholesale.
func (b *BaseList[T]) EmitReset() {
	for h := range b.Handlers() {
		h.OnReset()
	}
}

// EmitAdd notifies all handlers that value was inserted at index.
func (b *BaseList[T]) EmitAdd(index int, value T) {
	for h := range b.Handlers() {
		h.OnAdd(index, value)
	}
}

// EmitUpdate notifies all handlers that the element at index changed.
func (b *BaseList[T]) EmitUpdate(index int, value T, params any) {
	for h := range b.Handlers() {
		h.OnUpdate(index, value, params)
	}
}

// EmitRemove notifies all handlers that value was removed from index.
func (b *BaseList[T]) EmitRemove(index int, value T) {
	for h := range b.Handlers() {
		h.OnRemove(index, value)
	}
}

// EmitMove notifies all handlers that value moved from one index to another.
func (b *BaseList[T]) EmitMove(from, to int, value T) {
	for h := range b.Handlers() {
		h.OnMove(from, to, value)
	}
}

// ListHandlerFuncs adapts plain functions to a ListHandler.
// Nil fields ignore their event. Subscribe it by pointer.
type ListHandlerFuncs[T any] struct {
	Reset  func()
	Add    func(index int, value T)
	Update func(index int, value T, params any)
	Remove func(index int, value T)
	Move   func(from, to int, value T)
}

func (f *ListHandlerFuncs[T]) OnReset() {
	if f.Reset != nil {
		f.Reset()
	}
}

func (f *ListHandlerFuncs[T]) OnAdd(index int, value T) {
	if f.Add != nil {
		f.Add(index, value)
	}
}

func (f *ListHandlerFuncs[T]) OnUpdate(index int, value T, params any) {
	if f.Update != nil {
		f.Update(index, value, params)
	}
}

func (f *ListHandlerFuncs[T]) OnRemove(index int, value T) {
	if f.Remove != nil {
		f.Remove(index, value)
	}
}

func (f *ListHandlerFuncs[T]) OnMove(from, to int, value T) {
	if f.Move != nil {
		f.Move(from, to, value)
	}
}
