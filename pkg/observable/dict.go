package observable

import (
	"iter"
	"slices"
)

// Dict is a leaf Map that iterates in insertion order.
type Dict[K comparable, V any] struct {
	BaseMap[K, V]
	keys   []K
	values map[K]V
}

// NewDict creates an empty Dict.
func NewDict[K comparable, V any]() *Dict[K, V] {
	return &Dict[K, V]{values: make(map[K]V)}
}

// Len returns the number of entries.
func (d *Dict[K, V]) Len() int {
	return len(d.keys)
}

// Get returns the value stored under key.
func (d *Dict[K, V]) Get(key K) (V, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Has reports whether key is present.
func (d *Dict[K, V]) Has(key K) bool {
	_, ok := d.values[key]
	return ok
}

// All yields entries in insertion order.
func (d *Dict[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range d.keys {
			if !yield(k, d.values[k]) {
				return
			}
		}
	}
}

// Add inserts a new entry. It returns false, and emits nothing, if key is
// already present.
func (d *Dict[K, V]) Add(key K, value V) bool {
	if _, ok := d.values[key]; ok {
		return false
	}
	d.keys = append(d.keys, key)
	d.values[key] = value
	d.EmitAdd(key, value)
	return true
}

// Set stores value under key, emitting an add for a new key or an update
// with params for an existing one.
func (d *Dict[K, V]) Set(key K, value V, params any) {
	if _, ok := d.values[key]; !ok {
		d.Add(key, value)
		return
	}
	d.values[key] = value
	d.EmitUpdate(key, value, params)
}

// Update announces that the value under key changed in place.
// It returns false if key is absent.
func (d *Dict[K, V]) Update(key K, params any) bool {
	v, ok := d.values[key]
	if !ok {
		return false
	}
	d.EmitUpdate(key, v, params)
	return true
}

// Remove deletes key and returns its value. It returns false if key is absent.
func (d *Dict[K, V]) Remove(key K) (V, bool) {
	v, ok := d.values[key]
	if !ok {
		return v, false
	}
	delete(d.values, key)
	d.keys = slices.DeleteFunc(d.keys, func(k K) bool { return k == key })
	d.EmitRemove(key, v)
	return v, true
}

// Clear removes every entry and emits a reset.
func (d *Dict[K, V]) Clear() {
	d.keys = nil
	d.values = make(map[K]V)
	d.EmitReset()
}
