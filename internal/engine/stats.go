package engine

import (
	"math"
	"sort"
)

// Percentile returns the p-th percentile (0–100) of values using linear
// interpolation between closest ranks. An empty input yields 0; p is
// clamped to [0,100]. The input slice is not modified.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}

	s := make([]float64, len(values))
	copy(s, values)
	sort.Float64s(s)

	rank := p / 100 * float64(len(s)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return s[lo]
	}
	frac := rank - float64(lo)
	return s[lo] + (s[hi]-s[lo])*frac
}
