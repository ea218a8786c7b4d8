// Package stats implements the statistical toolkit behind pair screening:
// correlation measures, Engle-Granger cointegration with an augmented
// Dickey-Fuller core, hedge-ratio regressions, half-life and Hurst
// estimation, rolling z-scores and return math.
//
// Functions are pure and never log. Undefined statistics are reported as
// NaN (or an Estimate sentinel) per each function's contract; errors are
// reserved for violated input contracts such as mismatched lengths.
package stats

import (
	"errors"
	"math"
)

var (
	ErrLengthMismatch = errors.New("series length mismatch")
	ErrTooFewPoints   = errors.New("too few data points")
	ErrInvalidWindow  = errors.New("invalid window")
	ErrUnknownMethod  = errors.New("unknown method")
)

// eps bounds denominators away from zero before dividing.
const eps = 1e-10

// Mean returns the arithmetic mean, or NaN for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs))
}

// SampleStd returns the standard deviation with Bessel's correction, or
// NaN when fewer than two points are given.
func SampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	m := Mean(xs)
	ss := 0.0
	for _, v := range xs {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// PopulationStd returns the uncorrected standard deviation, or NaN for an
// empty slice.
func PopulationStd(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	m := Mean(xs)
	ss := 0.0
	for _, v := range xs {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// cleanPairs drops every row where either value is NaN.
func cleanPairs(x, y []float64) ([]float64, []float64) {
	cx := make([]float64, 0, len(x))
	cy := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		cx = append(cx, x[i])
		cy = append(cy, y[i])
	}
	return cx, cy
}

// dropNaN removes NaN entries from a single series.
func dropNaN(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func hasNaN(xs []float64) bool {
	for _, v := range xs {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
