package analysis

import (
	"math"
	"sort"
)

// quantile returns the q-th quantile of sorted values, interpolating
// linearly between the two closest ranks. Empty input yields NaN.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// quartiles returns Q1 and Q3 of vals without modifying it.
func quartiles(vals []float64) (q1, q3 float64) {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	return quantile(cp, 0.25), quantile(cp, 0.75)
}
