// Package stats holds the numeric primitives behind the expense tools.
//
// The primitives are exact: rounding to currency precision happens only
// through Round2, which callers apply at their output boundary.
package stats

import (
	"math"
	"slices"

	"github.com/shopspring/decimal"
)

// Sum returns the sum of xs, 0 for an empty slice.
func Sum(xs []float64) float64 {
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total
}

// Mean returns the arithmetic mean of xs, 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return Sum(xs) / float64(len(xs))
}

// Median returns the middle value of xs after an ascending sort; for an even
// count it is the average of the two middle values. xs is not modified.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// StdDev returns the population standard deviation of xs, 0 for an empty slice.
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	avg := Mean(xs)
	squared := make([]float64, len(xs))
	for i, x := range xs {
		d := x - avg
		squared[i] = d * d
	}
	return math.Sqrt(Mean(squared))
}

// Round2 rounds v to 2 decimal places, halves away from zero.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
