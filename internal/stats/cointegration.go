package stats

import "math"

// minCointPoints is the smallest clean sample the test accepts.
const minCointPoints = 30

// CointResult is an Engle-Granger cointegration verdict. Indeterminate
// outcomes carry a NaN statistic and a NaN p-value and are never
// cointegrated.
type CointResult struct {
	Statistic      float64
	PValue         float64
	IsCointegrated bool
	CriticalValues map[string]float64
}

// EngleGranger tests whether y and x share a cointegrating relation: an
// OLS fit of y on x, then a Dickey-Fuller test on the residuals against
// the two-series MacKinnon surface. IsCointegrated reports rejection at
// the given significance level (non-positive means 0.05). Samples under
// 30 clean pairs are indeterminate. A numerically exact fit leaves no
// residual variation to test and is reported as cointegrated with
// statistic -Inf.
func EngleGranger(y, x []float64, significance float64) (CointResult, error) {
	if len(y) != len(x) {
		return CointResult{}, ErrLengthMismatch
	}
	if significance <= 0 {
		significance = defaultSignificance
	}
	cy, cx := cleanPairs(y, x)
	if len(cy) < minCointPoints {
		return CointResult{Statistic: math.NaN(), PValue: math.NaN()}, nil
	}
	fit := olsFit(cy, cx)
	if math.IsNaN(fit.slope) {
		return CointResult{Statistic: math.NaN(), PValue: math.NaN()}, nil
	}
	crit := mackinnonCrit(2, len(cy)-1)
	if fit.rSquared > 1-1e-6 {
		return CointResult{
			Statistic:      math.Inf(-1),
			PValue:         0,
			IsCointegrated: true,
			CriticalValues: crit,
		}, nil
	}
	stat, _, _, ok := adfStat(fit.residuals, TrendNone)
	if !ok {
		return CointResult{Statistic: math.NaN(), PValue: math.NaN()}, nil
	}
	pval := mackinnonP(stat, 2)
	return CointResult{
		Statistic:      stat,
		PValue:         pval,
		IsCointegrated: pval < significance,
		CriticalValues: crit,
	}, nil
}
