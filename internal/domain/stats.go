package domain

import (
	"math"
	"slices"
)

// Mean returns the arithmetic mean, or nil for an empty input.
func Mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	return &m
}

// StdDev returns the population standard deviation (divide by n), or nil for
// an empty input.
func StdDev(values []float64) *float64 {
	m := Mean(values)
	if m == nil {
		return nil
	}
	var sq float64
	for _, v := range values {
		d := v - *m
		sq += d * d
	}
	s := math.Sqrt(sq / float64(len(values)))
	return &s
}

// Percentile interpolates linearly between the closest ranks of the sorted
// values. p is clamped to [0,1]. Returns nil for an empty input.
func Percentile(values []float64, p float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	p = math.Max(0, math.Min(1, p))

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	idx := float64(len(sorted)-1) * p
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	v := sorted[lo] + (sorted[hi]-sorted[lo])*(idx-float64(lo))
	return &v
}

// Min returns the smallest value, or nil for an empty input.
func Min(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	m := slices.Min(values)
	return &m
}

// Max returns the largest value, or nil for an empty input.
func Max(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	m := slices.Max(values)
	return &m
}

// CategoricalCounts tallies each distinct label.
func CategoricalCounts(labels []string) map[string]int {
	counts := make(map[string]int)
	for _, l := range labels {
		counts[l]++
	}
	return counts
}

// CategoricalProbabilities returns each distinct label's share of the input.
// An empty input yields an empty map.
func CategoricalProbabilities(labels []string) map[string]float64 {
	probs := make(map[string]float64)
	if len(labels) == 0 {
		return probs
	}
	n := float64(len(labels))
	for label, c := range CategoricalCounts(labels) {
		probs[label] = float64(c) / n
	}
	return probs
}
