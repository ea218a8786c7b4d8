package stats

import (
	"math"

	"PairSentinel/internal/model"
)

// CalculateHalfLife estimates the mean-reversion half-life of a spread by
// regressing its one-step change on its lagged level through the origin;
// the spread is taken as-is, not demeaned. A non-negative reversion
// coefficient means the spread never decays and yields the
// non-mean-reverting state; fewer than ten clean points yield
// insufficient data.
func CalculateHalfLife(spread []float64) model.Estimate {
	clean := dropNaN(spread)
	if len(clean) < minRegressionPoints {
		return model.InsufficientData()
	}
	lag := clean[:len(clean)-1]
	delta := make([]float64, len(clean)-1)
	for i := 1; i < len(clean); i++ {
		delta[i-1] = clean[i] - clean[i-1]
	}
	var sxx, sxy float64
	for i := range lag {
		sxx += lag[i] * lag[i]
		sxy += lag[i] * delta[i]
	}
	if sxx < eps {
		return model.InsufficientData()
	}
	theta := sxy / sxx
	if theta >= 0 {
		return model.NotMeanReverting()
	}
	return model.EstimateOf(-math.Ln2 / theta)
}
