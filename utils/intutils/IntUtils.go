// Package intutils provides utilities for working with ints and sets
// of action indices
package intutils

// Contains returns whether value is an element of values
func Contains(values []int, value int) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// Range returns the slice [0, 1, ..., n-1]
func Range(n int) []int {
	r := make([]int, n)
	for i := range r {
		r[i] = i
	}
	return r
}

// Copy returns a copy of values which does not share its backing
// array
func Copy(values []int) []int {
	if values == nil {
		return nil
	}
	c := make([]int, len(values))
	copy(c, values)
	return c
}
