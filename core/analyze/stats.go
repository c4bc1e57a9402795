package analyze

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean, or nil for no values.
func Mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	m := stat.Mean(values, nil)
	return &m
}

// StdDev returns the sample standard deviation, or nil for fewer than two values.
func StdDev(values []float64) *float64 {
	if len(values) < 2 {
		return nil
	}
	s := stat.StdDev(values, nil)
	return &s
}

// PercentChange returns the change from prev to latest in percent.
// It is nil when either mean is missing or prev is zero.
func PercentChange(prev, latest *float64) *float64 {
	if prev == nil || latest == nil || *prev == 0 {
		return nil
	}
	pct := (*latest - *prev) / *prev * 100
	return &pct
}

// CoefficientOfVariation returns std/mean, or nil when undefined.
func CoefficientOfVariation(values []float64) *float64 {
	m, s := Mean(values), StdDev(values)
	if m == nil || s == nil || *m == 0 {
		return nil
	}
	cv := *s / *m
	return &cv
}

// Correlation returns the Pearson correlation of two equally long series.
// It is nil when fewer than two pairs exist or either series is constant.
func Correlation(x, y []float64) *float64 {
	if len(x) != len(y) || len(x) < 2 {
		return nil
	}
	sx, sy := stat.StdDev(x, nil), stat.StdDev(y, nil)
	if sx == 0 || sy == 0 {
		return nil
	}
	c := stat.Correlation(x, y, nil)
	return &c
}

// quantiles returns min, q25, median, q75 and max of the values. Values must not be empty.
// Quartiles interpolate linearly between closest ranks at (n-1)p.
func quantiles(values []float64) (minV, q25, median, q75, maxV float64) {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return sorted[0], quantile(sorted, 0.25), quantile(sorted, 0.5), quantile(sorted, 0.75), sorted[len(sorted)-1]
}

// quantile returns the p-quantile of sorted values.
func quantile(sorted []float64, p float64) float64 {
	last := len(sorted) - 1
	h := float64(last) * p
	k := int(math.Floor(h))
	if k >= last {
		return sorted[last]
	}
	return sorted[k] + (h-float64(k))*(sorted[k+1]-sorted[k])
}
