package ptr

import "strings"

// PointTo creates a typed pointer of whatever you hand in as parameter
func PointTo[T any](t T) *T {
	return &t
}

func GetIntOrDefault(ptr *int, def int) int {
	if ptr == nil {
		return def
	}

	return *ptr
}

func IsValidStrPtr(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// GetSafeDeref returns the dereferenced value of a pointer or the zero value of T if the pointer is nil.
func GetSafeDeref[T any](ptr *T) T {
	var res T
	if ptr != nil {
		res = *ptr
	}

	return res
}
