package sliceutil

// Contains reports whether v is present in s.
func Contains[T comparable](s []T, v T) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

// ContainsAny reports whether any of vs is present in s.
func ContainsAny[T comparable](s []T, vs ...T) bool {
	for _, v := range vs {
		if Contains(s, v) {
			return true
		}
	}
	return false
}
