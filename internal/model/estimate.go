package model

import (
	"encoding/json"
	"math"
	"strconv"
)

// NotMeanRevertingPlaceholder stands in for the non-mean-reverting state
// wherever a concrete number is required (JSON payloads, storage columns).
const NotMeanRevertingPlaceholder = 999999.0

type estimateState int

const (
	estimateInsufficient estimateState = iota
	estimateValue
	estimateNotMeanReverting
)

// Estimate is the outcome of a statistical fit that can fail in two distinct
// ways: the sample may be too small to fit at all, or the fit may succeed and
// show the process does not revert to its mean. The zero value is the
// insufficient-data state.
type Estimate struct {
	value float64
	state estimateState
}

// EstimateOf wraps a successfully fitted value.
func EstimateOf(v float64) Estimate {
	return Estimate{value: v, state: estimateValue}
}

// InsufficientData marks a fit that had too few usable observations.
func InsufficientData() Estimate { return Estimate{} }

// NotMeanReverting marks a successful fit with no mean reversion.
func NotMeanReverting() Estimate {
	return Estimate{state: estimateNotMeanReverting}
}

// HasValue reports whether the estimate holds a fitted value.
func (e Estimate) HasValue() bool { return e.state == estimateValue }

// IsInsufficient reports the insufficient-data state.
func (e Estimate) IsInsufficient() bool { return e.state == estimateInsufficient }

// IsNotMeanReverting reports the non-mean-reverting state.
func (e Estimate) IsNotMeanReverting() bool { return e.state == estimateNotMeanReverting }

// Value returns the fitted value. It is only meaningful when HasValue is true.
func (e Estimate) Value() float64 { return e.value }

// FloatOr returns the fitted value, or fallback in either failure state.
func (e Estimate) FloatOr(fallback float64) float64 {
	if e.state == estimateValue {
		return e.value
	}
	return fallback
}

// Float maps the estimate onto the extended real line: the fitted value,
// +Inf for a non-mean-reverting fit, NaN for insufficient data.
func (e Estimate) Float() float64 {
	switch e.state {
	case estimateValue:
		return e.value
	case estimateNotMeanReverting:
		return math.Inf(1)
	default:
		return math.NaN()
	}
}

func (e Estimate) String() string {
	switch e.state {
	case estimateValue:
		return strconv.FormatFloat(e.value, 'f', 4, 64)
	case estimateNotMeanReverting:
		return "not-mean-reverting"
	default:
		return "insufficient-data"
	}
}

// MarshalJSON encodes the fitted value as a number, the non-mean-reverting
// state as NotMeanRevertingPlaceholder, and insufficient data as null.
func (e Estimate) MarshalJSON() ([]byte, error) {
	switch e.state {
	case estimateValue:
		return json.Marshal(e.value)
	case estimateNotMeanReverting:
		return json.Marshal(NotMeanRevertingPlaceholder)
	default:
		return []byte("null"), nil
	}
}

// EstimateFromStored reverses the storage mapping for persisted half-life
// values: anything at or above the placeholder comes back as the
// non-mean-reverting state.
func EstimateFromStored(v float64) Estimate {
	if math.IsNaN(v) {
		return InsufficientData()
	}
	if v >= NotMeanRevertingPlaceholder {
		return NotMeanReverting()
	}
	return EstimateOf(v)
}
