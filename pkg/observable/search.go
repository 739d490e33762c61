package observable

// SortedIndex returns the index at which value can be inserted into s while
// keeping s ordered by cmp. When cmp reports equality with an element, that
// element's index is returned.
func SortedIndex[T any](s []T, value T, cmp func(a, b T) int) int {
	low, high := 0, len(s)
	for low < high {
		mid := int(uint(low+high) >> 1)
		c := cmp(value, s[mid])
		switch {
		case c > 0:
			low = mid + 1
		case c < 0:
			high = mid
		default:
			low, high = mid, mid
		}
	}
	return high
}

// FindAndUpdateInSlice finds the first element of s satisfying predicate and
// passes it to updater. If updater returns ok, target emits an update for
// that index carrying the returned params. It reports whether an element was
// found, regardless of whether an update was emitted.
func FindAndUpdateInSlice[T any](s []T, predicate func(T) bool, target UpdateEmitter[T], updater func(T) (params any, ok bool)) bool {
	for i, v := range s {
		if !predicate(v) {
			continue
		}
		if params, ok := updater(v); ok {
			target.EmitUpdate(i, v, params)
		}
		return true
	}
	return false
}
