package observable

import (
	"fmt"
	"iter"
	"slices"
	"testing"
)

// listRecorder logs list events as strings.
type listRecorder[T any] struct {
	events []string
}

func (r *listRecorder[T]) OnReset() { r.events = append(r.events, "reset") }
func (r *listRecorder[T]) OnAdd(i int, v T) {
	r.events = append(r.events, fmt.Sprintf("add %d %v", i, v))
}
func (r *listRecorder[T]) OnUpdate(i int, v T, params any) {
	r.events = append(r.events, fmt.Sprintf("update %d %v %v", i, v, params))
}
func (r *listRecorder[T]) OnRemove(i int, v T) {
	r.events = append(r.events, fmt.Sprintf("remove %d %v", i, v))
}
func (r *listRecorder[T]) OnMove(from, to int, v T) {
	r.events = append(r.events, fmt.Sprintf("move %d %d %v", from, to, v))
}

func (r *listRecorder[T]) take() []string {
	events := r.events
	r.events = nil
	return events
}

// mapRecorder logs map events as strings.
type mapRecorder[K comparable, V any] struct {
	events []string
}

func (r *mapRecorder[K, V]) OnReset() { r.events = append(r.events, "reset") }
func (r *mapRecorder[K, V]) OnAdd(k K, v V) {
	r.events = append(r.events, fmt.Sprintf("add %v %v", k, v))
}
func (r *mapRecorder[K, V]) OnUpdate(k K, v V, params any) {
	r.events = append(r.events, fmt.Sprintf("update %v %v %v", k, v, params))
}
func (r *mapRecorder[K, V]) OnRemove(k K, v V) {
	r.events = append(r.events, fmt.Sprintf("remove %v %v", k, v))
}

func (r *mapRecorder[K, V]) take() []string {
	events := r.events
	r.events = nil
	return events
}

// listMirror rebuilds a list from its events.
type listMirror[T any] struct {
	items []T
	reset func() []T
}

func (m *listMirror[T]) OnReset() { m.items = m.reset() }
func (m *listMirror[T]) OnAdd(i int, v T) {
	m.items = slices.Insert(m.items, i, v)
}
func (m *listMirror[T]) OnUpdate(i int, v T, _ any) { m.items[i] = v }
func (m *listMirror[T]) OnRemove(i int, _ T) {
	m.items = slices.Delete(m.items, i, i+1)
}
func (m *listMirror[T]) OnMove(from, to int, v T) {
	m.items = slices.Delete(m.items, from, from+1)
	m.items = slices.Insert(m.items, to, v)
}

func values[K, V any](seq iter.Seq2[K, V]) []V {
	var out []V
	for _, v := range seq {
		out = append(out, v)
	}
	return out
}

func pairs[K, V any](seq iter.Seq2[K, V]) []string {
	var out []string
	for k, v := range seq {
		out = append(out, fmt.Sprintf("%v=%v", k, v))
	}
	return out
}

func expectEvents(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !slices.Equal(got, want) {
		t.Errorf("expected events %q, got %q", want, got)
	}
}
