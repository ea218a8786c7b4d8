package stats

import (
	"fmt"
	"math"
)

// ReturnMethod selects how period returns are computed.
type ReturnMethod string

const (
	SimpleReturns ReturnMethod = "simple"
	LogReturns    ReturnMethod = "log"
)

// TradingDaysPerYear annualizes daily volatility.
const TradingDaysPerYear = 252

// Returns computes period-over-period returns, one element shorter than
// the input. An empty method defaults to simple returns; entries that
// would divide by zero or take the log of a non-positive price are NaN.
func Returns(prices []float64, method ReturnMethod) ([]float64, error) {
	if len(prices) < 2 {
		return nil, ErrTooFewPoints
	}
	out := make([]float64, len(prices)-1)
	switch method {
	case SimpleReturns, "":
		for i := 1; i < len(prices); i++ {
			if prices[i-1] == 0 {
				out[i-1] = math.NaN()
				continue
			}
			out[i-1] = prices[i]/prices[i-1] - 1
		}
	case LogReturns:
		for i := 1; i < len(prices); i++ {
			if prices[i-1] <= 0 || prices[i] <= 0 {
				out[i-1] = math.NaN()
				continue
			}
			out[i-1] = math.Log(prices[i] / prices[i-1])
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	return out, nil
}

// RollingVolatility computes the rolling sample deviation of returns,
// scaled by sqrt(252) when annualize is set. The first window-1 entries
// are NaN, as is any window touched by NaN input.
func RollingVolatility(returns []float64, window int, annualize bool) ([]float64, error) {
	if window < 2 {
		return nil, ErrInvalidWindow
	}
	out := make([]float64, len(returns))
	for i := range out {
		out[i] = math.NaN()
	}
	factor := 1.0
	if annualize {
		factor = math.Sqrt(TradingDaysPerYear)
	}
	for i := window - 1; i < len(returns); i++ {
		win := returns[i-window+1 : i+1]
		if hasNaN(win) {
			continue
		}
		out[i] = SampleStd(win) * factor
	}
	return out, nil
}
