package stats

import (
	"math"

	"PairSentinel/internal/model"
)

// defaultHurstMaxLag bounds the lag grid of the Hurst regression.
const defaultHurstMaxLag = 100

// CalculateHurst estimates the Hurst exponent from the log-log scaling of
// lagged-difference dispersion. Values below 0.5 indicate mean reversion,
// around 0.5 a random walk, above 0.5 a trending series. A non-positive
// maxLag selects the default of 100. Lags with no dispersion are dropped
// from the regression; short samples, or samples where fewer than two
// lags survive, yield insufficient data.
func CalculateHurst(series []float64, maxLag int) model.Estimate {
	if maxLag <= 0 {
		maxLag = defaultHurstMaxLag
	}
	ts := dropNaN(series)
	if len(ts) < maxLag {
		maxLag = len(ts) / 2
	}
	if maxLag < 10 {
		return model.InsufficientData()
	}
	logLags := make([]float64, 0, maxLag-2)
	logTau := make([]float64, 0, maxLag-2)
	for lag := 2; lag < maxLag; lag++ {
		diffs := make([]float64, len(ts)-lag)
		for i := lag; i < len(ts); i++ {
			diffs[i-lag] = ts[i] - ts[i-lag]
		}
		sd := PopulationStd(diffs)
		if math.IsNaN(sd) || sd < eps {
			continue
		}
		logLags = append(logLags, math.Log(float64(lag)))
		logTau = append(logTau, math.Log(sd))
	}
	if len(logLags) < 2 {
		return model.InsufficientData()
	}
	fit := olsFit(logTau, logLags)
	if math.IsNaN(fit.slope) {
		return model.InsufficientData()
	}
	return model.EstimateOf(fit.slope)
}
