package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/tabprofile/internal/table"
	"gonum.org/v1/gonum/stat"
)

// DefaultIQRMultiplier is the Tukey fence width used for outlier counts.
const DefaultIQRMultiplier = 1.5

// NumericProfile holds distribution statistics for one numeric column.
// Every field is finite.
type NumericProfile struct {
	Count    int     `json:"count" yaml:"count"`
	Mean     float64 `json:"mean" yaml:"mean"`
	Median   float64 `json:"median" yaml:"median"`
	Std      float64 `json:"std" yaml:"std"`
	Min      float64 `json:"min" yaml:"min"`
	Max      float64 `json:"max" yaml:"max"`
	Q25      float64 `json:"q25" yaml:"q25"`
	Q75      float64 `json:"q75" yaml:"q75"`
	Skewness float64 `json:"skewness" yaml:"skewness"`
	Kurtosis float64 `json:"kurtosis" yaml:"kurtosis"`
}

// ProfileNumeric computes a NumericProfile over the finite values of a
// column. NaN marks a missing value and is skipped. A column without any
// finite value yields a ComputationError.
//
// Skewness and kurtosis fall back to 0 when they are undefined: fewer than
// two distinct values, too few observations, or a non-finite estimate.
func ProfileNumeric(column string, values []float64) (NumericProfile, error) {
	xs := finite(values)
	if len(xs) == 0 {
		return NumericProfile{}, &table.ComputationError{Column: column, Reason: "no non-missing numeric values"}
	}
	sort.Float64s(xs)
	n := len(xs)
	p := NumericProfile{
		Count:  n,
		Mean:   stat.Mean(xs, nil),
		Median: quantile(xs, 0.5),
		Min:    xs[0],
		Max:    xs[n-1],
		Q25:    quantile(xs, 0.25),
		Q75:    quantile(xs, 0.75),
	}
	if n > 1 {
		p.Std = orZero(stat.StdDev(xs, nil))
	}
	if xs[0] != xs[n-1] {
		if n >= 3 {
			p.Skewness = orZero(stat.Skew(xs, nil))
		}
		if n >= 4 {
			p.Kurtosis = orZero(stat.ExKurtosis(xs, nil))
		}
	}
	return p, nil
}

// OutlierBounds returns the Tukey fences [q1-k*IQR, q3+k*IQR] of the finite
// values. ok is false when there is nothing to measure.
func OutlierBounds(values []float64, k float64) (lo, hi float64, ok bool) {
	xs := finite(values)
	if len(xs) == 0 {
		return 0, 0, false
	}
	sort.Float64s(xs)
	q1 := quantile(xs, 0.25)
	q3 := quantile(xs, 0.75)
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr, true
}

// CountOutliers counts finite values outside the Tukey fences. The result
// depends only on the multiset of values, never on their order.
func CountOutliers(values []float64, k float64) int {
	lo, hi, ok := OutlierBounds(values, k)
	if !ok {
		return 0
	}
	n := 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v < lo || v > hi {
			n++
		}
	}
	return n
}

// finite copies the values that are neither NaN nor infinite.
func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func orZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// quantile interpolates linearly between order statistics of sorted
// (the R-7 definition).
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
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
	return sorted[lo] + w*(sorted[hi]-sorted[lo])
}
