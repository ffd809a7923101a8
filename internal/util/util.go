package util

// SetEqual reports whether a and b hold the same elements with the same
// multiplicity, in any order.
func SetEqual[K comparable](a, b []K) bool {
	if len(a) != len(b) {
		return false
	}

	if len(a) == 1 {
		return a[0] == b[0]
	}

	counts := make(map[K]int, len(a))
	for _, v := range a {
		counts[v]++
	}
	for _, v := range b {
		counts[v]--
		if counts[v] < 0 {
			return false
		}
	}
	return true
}

func PtrEqual[T comparable](a, b *T) bool {
	return FastEqual(a, b, func(a, b *T) bool { return *a == *b })
}

func FastEqual[V any](a, b *V, slowEqual func(a, b *V) bool) bool {
	if a == b {
		return true
	}

	if a == nil || b == nil {
		return false
	}

	return slowEqual(a, b)
}
