package stats

import (
	"fmt"
	"math"
)

// RegressionMethod selects the hedge-ratio estimator.
type RegressionMethod string

const (
	OLS RegressionMethod = "ols"
	TLS RegressionMethod = "tls"
)

// minRegressionPoints is the smallest clean sample a hedge fit accepts.
const minRegressionPoints = 10

// FitResult reports a fitted hedge regression of y on x. StdErr, TStat
// and PValue cover the slope and are NaN for total least squares, which
// has no parametric slope test here.
type FitResult struct {
	HedgeRatio float64
	Intercept  float64
	RSquared   float64
	StdErr     float64
	TStat      float64
	PValue     float64
}

// CalculateHedgeRatio fits y = intercept + ratio*x after dropping NaN
// pairs. An empty method defaults to OLS. Fewer than ten clean rows yield
// an all-NaN result.
func CalculateHedgeRatio(y, x []float64, method RegressionMethod) (FitResult, error) {
	nan := FitResult{
		HedgeRatio: math.NaN(),
		Intercept:  math.NaN(),
		RSquared:   math.NaN(),
		StdErr:     math.NaN(),
		TStat:      math.NaN(),
		PValue:     math.NaN(),
	}
	if len(y) != len(x) {
		return nan, ErrLengthMismatch
	}
	switch method {
	case OLS, TLS, "":
	default:
		return nan, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	cy, cx := cleanPairs(y, x)
	if len(cy) < minRegressionPoints {
		return nan, nil
	}
	if method == TLS {
		return tlsFit(cy, cx), nil
	}
	fit := olsFit(cy, cx)
	return FitResult{
		HedgeRatio: fit.slope,
		Intercept:  fit.intercept,
		RSquared:   fit.rSquared,
		StdErr:     fit.stderr,
		TStat:      fit.tStat,
		PValue:     fit.pValue,
	}, nil
}

// olsResult carries the simple-regression internals shared by the hedge
// fit, the Hurst regression and the cointegrating step.
type olsResult struct {
	slope     float64
	intercept float64
	rSquared  float64
	stderr    float64
	tStat     float64
	pValue    float64
	residuals []float64
}

// olsFit runs an ordinary least-squares regression of y on x with an
// intercept. Inputs must be clean and equally sized; degenerate x yields
// NaN fields.
func olsFit(y, x []float64) olsResult {
	out := olsResult{
		slope:     math.NaN(),
		intercept: math.NaN(),
		rSquared:  math.NaN(),
		stderr:    math.NaN(),
		tStat:     math.NaN(),
		pValue:    math.NaN(),
	}
	n := len(x)
	if n < 2 {
		return out
	}
	mx, my := Mean(x), Mean(y)
	var sxx, sxy, syy float64
	for i := range x {
		dx := x[i] - mx
		dy := y[i] - my
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	if sxx < eps {
		return out
	}
	out.slope = sxy / sxx
	out.intercept = my - out.slope*mx

	var ssr float64
	out.residuals = make([]float64, n)
	for i := range x {
		r := y[i] - out.intercept - out.slope*x[i]
		out.residuals[i] = r
		ssr += r * r
	}
	if syy >= eps {
		out.rSquared = 1 - ssr/syy
	}
	dof := float64(n - 2)
	if dof <= 0 {
		return out
	}
	se := math.Sqrt(ssr / dof / sxx)
	out.stderr = se
	if se < eps {
		out.tStat = math.Inf(1)
		if out.slope < 0 {
			out.tStat = math.Inf(-1)
		}
		out.pValue = 0
		return out
	}
	out.tStat = out.slope / se
	out.pValue = studentTPValue(out.tStat, dof)
	return out
}

// tlsFit estimates the slope by total least squares: the line whose
// normal is the smallest principal component of the centered cloud.
func tlsFit(y, x []float64) FitResult {
	out := FitResult{
		HedgeRatio: math.NaN(),
		Intercept:  math.NaN(),
		RSquared:   math.NaN(),
		StdErr:     math.NaN(),
		TStat:      math.NaN(),
		PValue:     math.NaN(),
	}
	my, mx := Mean(y), Mean(x)
	var sxx, sxy, syy float64
	for i := range x {
		dx := x[i] - mx
		dy := y[i] - my
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	var slope float64
	if math.Abs(sxy) < eps {
		// no covariance: the fit is either a horizontal line or a
		// vertical one with no finite slope
		if sxx <= syy {
			return out
		}
		slope = 0
	} else {
		lambda := (sxx + syy - math.Sqrt((sxx-syy)*(sxx-syy)+4*sxy*sxy)) / 2
		slope = -sxy / (lambda - sxx)
	}
	out.HedgeRatio = slope
	out.Intercept = my - slope*mx
	if syy >= eps {
		ssr := syy - 2*slope*sxy + slope*slope*sxx
		out.RSquared = 1 - ssr/syy
	}
	return out
}
