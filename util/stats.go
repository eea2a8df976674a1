package util

import "sort"

// MedianInts returns the median of xs, averaging the two middle elements for
// even lengths, or 0 for an empty slice.  xs is not modified.
func MedianInts(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]int, len(xs))
	copy(sorted, xs)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

// MeanInts returns the arithmetic mean of xs, or 0 for an empty slice.
func MeanInts(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}
