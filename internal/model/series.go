package model

import (
	"math"
	"time"
)

// Series is a time-indexed sequence of observations. Times and Values are
// parallel slices of the same length, ordered by ascending timestamp.
type Series struct {
	Times  []time.Time
	Values []float64
}

// seriesEpoch anchors synthetic timestamps for fixtures and generated data.
var seriesEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// SeriesOf builds a Series from raw values with consecutive daily timestamps.
func SeriesOf(values ...float64) Series {
	times := make([]time.Time, len(values))
	for i := range values {
		times[i] = seriesEpoch.AddDate(0, 0, i)
	}
	return Series{Times: times, Values: values}
}

// Len returns the number of observations.
func (s Series) Len() int { return len(s.Values) }

// Last returns the final value, or NaN for an empty series.
func (s Series) Last() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return s.Values[len(s.Values)-1]
}

// Tail returns the trailing n observations, or the whole series when it
// holds fewer than n.
func (s Series) Tail(n int) Series {
	if n >= len(s.Values) {
		return s
	}
	start := len(s.Values) - n
	return Series{Times: s.Times[start:], Values: s.Values[start:]}
}

// AlignSeries inner-joins two series on their timestamps and returns the
// rows present in both. Inputs must be sorted by ascending time.
func AlignSeries(a, b Series) (Series, Series) {
	outA := Series{}
	outB := Series{}
	i, j := 0, 0
	for i < a.Len() && j < b.Len() {
		switch {
		case a.Times[i].Before(b.Times[j]):
			i++
		case b.Times[j].Before(a.Times[i]):
			j++
		default:
			outA.Times = append(outA.Times, a.Times[i])
			outA.Values = append(outA.Values, a.Values[i])
			outB.Times = append(outB.Times, b.Times[j])
			outB.Values = append(outB.Values, b.Values[j])
			i++
			j++
		}
	}
	return outA, outB
}

// DropNaNPairs removes every row where either aligned value is NaN. The
// inputs are expected to have equal length; extra rows are ignored.
func DropNaNPairs(a, b Series) (Series, Series) {
	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}
	outA := Series{}
	outB := Series{}
	for i := 0; i < n; i++ {
		if math.IsNaN(a.Values[i]) || math.IsNaN(b.Values[i]) {
			continue
		}
		outA.Times = append(outA.Times, a.Times[i])
		outA.Values = append(outA.Values, a.Values[i])
		outB.Times = append(outB.Times, b.Times[i])
		outB.Values = append(outB.Values, b.Values[i])
	}
	return outA, outB
}
