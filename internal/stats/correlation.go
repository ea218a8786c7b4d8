package stats

import (
	"fmt"
	"math"
	"sort"
)

// CorrMethod selects the correlation estimator.
type CorrMethod string

const (
	Pearson  CorrMethod = "pearson"
	Spearman CorrMethod = "spearman"
	Kendall  CorrMethod = "kendall"
)

// Correlation measures the association between two equal-length series
// after dropping NaN pairs. An empty method defaults to Pearson. Fewer
// than two raw points is a contract violation; it returns NaN when fewer
// than two clean rows remain after dropping or when either side has no
// variance.
func Correlation(x, y []float64, method CorrMethod) (float64, error) {
	if len(x) != len(y) {
		return math.NaN(), ErrLengthMismatch
	}
	if len(x) < 2 {
		return math.NaN(), ErrTooFewPoints
	}
	cx, cy := cleanPairs(x, y)
	if len(cx) < 2 {
		return math.NaN(), nil
	}
	switch method {
	case Pearson, "":
		return pearson(cx, cy), nil
	case Spearman:
		return pearson(ranks(cx), ranks(cy)), nil
	case Kendall:
		return kendall(cx, cy), nil
	default:
		return math.NaN(), fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

// RollingCorrelation computes the Pearson correlation over a sliding
// window. The first window-1 entries are NaN, as is any window touched by
// NaN input.
func RollingCorrelation(x, y []float64, window int) ([]float64, error) {
	if len(x) != len(y) {
		return nil, ErrLengthMismatch
	}
	if window < 2 {
		return nil, ErrInvalidWindow
	}
	out := make([]float64, len(x))
	for i := range out {
		out[i] = math.NaN()
	}
	for i := window - 1; i < len(x); i++ {
		wx := x[i-window+1 : i+1]
		wy := y[i-window+1 : i+1]
		if hasNaN(wx) || hasNaN(wy) {
			continue
		}
		out[i] = pearson(wx, wy)
	}
	return out, nil
}

func pearson(x, y []float64) float64 {
	mx, my := Mean(x), Mean(y)
	var sxy, sxx, syy float64
	for i := range x {
		dx := x[i] - mx
		dy := y[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	den := math.Sqrt(sxx * syy)
	if den < eps {
		return math.NaN()
	}
	return sxy / den
}

// ranks assigns fractional ranks, averaging ties.
func ranks(xs []float64) []float64 {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })
	r := make([]float64, len(xs))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && xs[idx[j+1]] == xs[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			r[idx[k]] = avg
		}
		i = j + 1
	}
	return r
}

// kendall computes the tau-b statistic, which corrects for ties on both
// sides. An all-tied side makes the denominator zero and the result NaN.
func kendall(x, y []float64) float64 {
	n := len(x)
	var c, d, tx, ty, txy float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := x[i] - x[j]
			dy := y[i] - y[j]
			switch {
			case dx == 0 && dy == 0:
				txy++
			case dx == 0:
				tx++
			case dy == 0:
				ty++
			case dx*dy > 0:
				c++
			default:
				d++
			}
		}
	}
	den := math.Sqrt((c + d + tx) * (c + d + ty))
	if den < eps {
		return math.NaN()
	}
	return (c - d) / den
}
