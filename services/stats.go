package services

import (
	"math"
	"sort"
)

// madConsistency scales MAD so it estimates a standard deviation under
// normality.
const madConsistency = 1.4826

// Median returns the middle value of xs, or the mean of the two middle values
// for even lengths. The input is not modified. Median of an empty sample is 0.
func Median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)

	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// MAD returns the median absolute deviation of xs around center. A zero
// spread (all-identical sample) returns 1 so downstream z-scores stay finite.
func MAD(xs []float64, center float64) float64 {
	deviations := make([]float64, len(xs))
	for i, x := range xs {
		deviations[i] = math.Abs(x - center)
	}
	if mad := Median(deviations); mad != 0 {
		return mad
	}
	return 1
}

// RobustZ is the outlier score of x given a median and MAD.
func RobustZ(x, center, mad float64) float64 {
	return (x - center) / (madConsistency * mad)
}
