package observable

// MapValues derives a map whose values are fn applied to the values of
// source. A source update re-runs fn on the new value.
func MapValues[K comparable, V, T any](source Map[K, V], fn func(V) T) *MappedMap[K, V, T] {
	return NewMappedMap[K, V, T](source, func(value V, _ func(params any)) T {
		return fn(value)
	}).WithUpdater(func(_ T, _ any, value V) T {
		return fn(value)
	})
}

// MapItems derives a list whose elements are fn applied to the elements of
// source. A source update re-runs fn on the new element.
func MapItems[S, T any](source List[S], fn func(S) T) *MappedList[S, T] {
	return NewMappedList(source, fn).WithUpdater(func(_ T, _ any, value S) T {
		return fn(value)
	})
}

// Filter derives a list of the elements of source for which keep returns
// true. A nil keep includes everything.
func Filter[T any](source List[T], keep func(T) bool) *FilteredList[T] {
	return NewFilteredList(source, ByValue(keep))
}

// ByValue adapts a value predicate to the filter signature of FilteredList.
func ByValue[T any](keep func(T) bool) func(T, int) bool {
	if keep == nil {
		return nil
	}
	return func(value T, _ int) bool { return keep(value) }
}

// Join derives the union of sources. On a key collision the earliest source
// in the argument list wins.
func Join[K comparable, V any](sources ...Map[K, V]) *JoinedMap[K, V] {
	return NewJoinedMap(sources...)
}

// Sort derives a list of the values of source ordered by compare.
func Sort[K comparable, V any](source Map[K, V], compare func(a, b V) int) *SortedMapList[K, V] {
	return NewSortedMapList(source, compare)
}
