package observable

import (
	"iter"
	"slices"
)

// Array is a leaf List backed by a slice.
// Index arguments must be in range; out-of-range indices panic like slice
// indexing does.
type Array[T any] struct {
	BaseList[T]
	items []T
}

// NewArray creates an Array holding a copy of items.
func NewArray[T any](items ...T) *Array[T] {
	return &Array[T]{items: slices.Clone(items)}
}

// Len returns the number of elements.
func (a *Array[T]) Len() int {
	return len(a.items)
}

// At returns the element at index.
func (a *Array[T]) At(index int) T {
	return a.items[index]
}

// Slice returns a copy of the elements.
func (a *Array[T]) Slice() []T {
	return slices.Clone(a.items)
}

// All yields every (index, value) pair in order.
func (a *Array[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range a.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Append adds value to the end.
func (a *Array[T]) Append(value T) {
	a.items = append(a.items, value)
	a.EmitAdd(len(a.items)-1, value)
}

// Insert inserts value at index, shifting later elements up.
func (a *Array[T]) Insert(index int, value T) {
	a.items = slices.Insert(a.items, index, value)
	a.EmitAdd(index, value)
}

// InsertMany inserts values starting at index, emitting one add per value.
func (a *Array[T]) InsertMany(index int, values ...T) {
	for i, v := range values {
		a.Insert(index+i, v)
	}
}

// RemoveAt removes and returns the element at index.
func (a *Array[T]) RemoveAt(index int) T {
	value := a.items[index]
	a.items = slices.Delete(a.items, index, index+1)
	a.EmitRemove(index, value)
	return value
}

// SetAt replaces the element at index and emits an update with params.
func (a *Array[T]) SetAt(index int, value T, params any) {
	a.items[index] = value
	a.EmitUpdate(index, value, params)
}

// UpdateAt announces that the element at index changed in place.
func (a *Array[T]) UpdateAt(index int, params any) {
	a.EmitUpdate(index, a.items[index], params)
}

// Move relocates the element at from so that it ends up at to.
func (a *Array[T]) Move(from, to int) {
	if from == to {
		return
	}
	value := a.items[from]
	a.items = slices.Delete(a.items, from, from+1)
	a.items = slices.Insert(a.items, to, value)
	a.EmitMove(from, to, value)
}

// FindAndUpdate runs updater on the first element matching predicate.
// See FindAndUpdateInSlice.
func (a *Array[T]) FindAndUpdate(predicate func(T) bool, updater func(T) (any, bool)) bool {
	return FindAndUpdateInSlice(a.items, predicate, a, updater)
}

// Replace swaps the whole content for values and emits a reset.
func (a *Array[T]) Replace(values []T) {
	a.items = slices.Clone(values)
	a.EmitReset()
}
