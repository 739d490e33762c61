package observable

import (
	"iter"
	"slices"
)

// Subscribable provides handler-set management for live collections.
// It is embedded in every list and map to share subscription logic.
//
// H must be comparable by identity; handlers are normally pointer types.
type Subscribable[H comparable] struct {
	// handlers are the current subscribers, in subscription order.
	handlers []H

	// onFirst runs when the handler count goes from 0 to 1.
	onFirst func()

	// onLast runs when the handler count goes from 1 to 0.
	onLast func()
}

// SetHooks installs the lifecycle hooks. Either hook may be nil.
func (s *Subscribable[H]) SetHooks(onSubscribeFirst, onUnsubscribeLast func()) {
	s.onFirst = onSubscribeFirst
	s.onLast = onUnsubscribeLast
}

// Subscribe adds h to the handler set and returns a function that removes it.
// Subscribing a handler that is already present does not duplicate it.
// A nil handler is ignored.
func (s *Subscribable[H]) Subscribe(h H) func() {
	var zero H
	if h == zero {
		return func() {}
	}

	if !slices.Contains(s.handlers, h) {
		s.handlers = append(s.handlers, h)
		if len(s.handlers) == 1 && s.onFirst != nil {
			s.onFirst()
		}
	}

	return func() { s.Unsubscribe(h) }
}

// Unsubscribe removes h from the handler set.
// Removing a nil or unknown handler is a no-op.
func (s *Subscribable[H]) Unsubscribe(h H) {
	var zero H
	if h == zero {
		return
	}

	i := slices.Index(s.handlers, h)
	if i < 0 {
		return
	}
	s.handlers = slices.Delete(s.handlers, i, i+1)

	if len(s.handlers) == 0 && s.onLast != nil {
		s.onLast()
	}
}

// UnsubscribeAll removes every handler.
func (s *Subscribable[H]) UnsubscribeAll() {
	if len(s.handlers) == 0 {
		return
	}
	s.handlers = nil
	if s.onLast != nil {
		s.onLast()
	}
}

// HasSubscriptions reports whether at least one handler is subscribed.
func (s *Subscribable[H]) HasSubscriptions() bool {
	return len(s.handlers) > 0
}

// Handlers yields the handlers subscribed when iteration starts.
// A handler that unsubscribes while an earlier one runs is skipped.
func (s *Subscribable[H]) Handlers() iter.Seq[H] {
	snapshot := slices.Clone(s.handlers)
	return func(yield func(H) bool) {
		for _, h := range snapshot {
			if !slices.Contains(s.handlers, h) {
				continue
			}
			if !yield(h) {
				return
			}
		}
	}
}
