// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"
)

// Min calculates and returns the minimum float64 in a list
func Min(floats ...float64) float64 {
	min := floats[0]
	for _, val := range floats {
		if val < min {
			min = val
		}
	}
	return min
}

// ArgMin returns the index of the leftmost minimum value in values
func ArgMin(values ...float64) int {
	min, idx := values[0], 0
	for i, value := range values {
		if value < min {
			min = value
			idx = i
		}
	}
	return idx
}

// ArgMinOver returns the element of indices whose value in values is
// the smallest. Ties are broken by the order of indices, so that the
// leftmost index wins. ArgMinOver panics if indices is empty.
func ArgMinOver(values []float64, indices []int) int {
	if len(indices) == 0 {
		panic("argMinOver: no indices to choose from")
	}

	best := indices[0]
	for _, i := range indices[1:] {
		if values[i] < values[best] {
			best = i
		}
	}
	return best
}

// IsFinite returns whether all values are neither infinite nor NaN
func IsFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}
