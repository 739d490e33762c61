// Package observable provides live collections: lists and maps that emit
// ordered change events to subscribers, and operators that derive new live
// collections from them incrementally.
//
// # Core Types
//
// Array[T] and Dict[K, V] are leaf collections that originate events:
//
//	items := observable.NewArray(1, 2, 3)
//	items.Append(4)       // emits OnAdd(3, 4)
//	items.RemoveAt(0)     // emits OnRemove(0, 1)
//
// Operators derive collections from a source without rescanning it on
// every change:
//
//	squares := observable.NewMappedList(items, func(n int) int { return n * n })
//	evens := observable.NewFilteredList(squares, func(n, _ int) bool { return n%2 == 0 })
//
//	users := observable.NewJoinedMap(local, remote) // local wins on key collision
//
// # Lazy Subscription
//
// Operators are cheap to construct. They subscribe to their source only when
// they gain their first subscriber and release it, together with all
// derived state, when the last subscriber leaves:
//
//	unsubscribe := evens.Subscribe(handler) // subscribes squares, then items
//	defer unsubscribe()                     // tears the chain back down
//
// Events that reach an operator before its own derived state is built (for
// example, emitted by a source while it enumerates its initial content) are
// discarded.
//
// # Thread Safety
//
// Live collections are not safe for concurrent use. Every event is delivered
// synchronously, depth first, before the emitting call returns. Callers that
// share a collection between goroutines must serialize all access to the
// whole chain, as pkg/stream does.
package observable
