package stats

import (
	"fmt"
	"math"
)

// Trend selects the deterministic terms of the Dickey-Fuller regression.
type Trend string

const (
	TrendConstant Trend = "c"
	TrendNone     Trend = "n"
)

// minADFPoints is the smallest clean sample the test accepts.
const minADFPoints = 20

// defaultSignificance is the rejection level used when the caller passes a
// non-positive one.
const defaultSignificance = 0.05

// ADFResult holds the outcome of an augmented Dickey-Fuller test.
// Indeterminate outcomes carry a NaN statistic and a NaN p-value and are
// never stationary.
type ADFResult struct {
	Statistic      float64
	PValue         float64
	IsStationary   bool
	Lag            int
	NObs           int
	CriticalValues map[string]float64
}

// ADFTest runs an augmented Dickey-Fuller unit root test with AIC lag
// selection. The null hypothesis is a unit root; large negative
// statistics reject it, and IsStationary reports rejection at the given
// significance level (non-positive means 0.05). Samples under 20 clean
// points are indeterminate.
func ADFTest(series []float64, trend Trend, significance float64) (ADFResult, error) {
	switch trend {
	case TrendConstant, TrendNone:
	default:
		return ADFResult{}, fmt.Errorf("%w: trend %q", ErrUnknownMethod, trend)
	}
	if significance <= 0 {
		significance = defaultSignificance
	}
	clean := dropNaN(series)
	if len(clean) < minADFPoints {
		return ADFResult{Statistic: math.NaN(), PValue: math.NaN()}, nil
	}
	stat, lag, nobs, ok := adfStat(clean, trend)
	if !ok {
		return ADFResult{Statistic: math.NaN(), PValue: math.NaN()}, nil
	}
	pval := mackinnonP(stat, 1)
	return ADFResult{
		Statistic:      stat,
		PValue:         pval,
		IsStationary:   pval < significance,
		Lag:            lag,
		NObs:           nobs,
		CriticalValues: mackinnonCrit(1, nobs),
	}, nil
}

// adfStat computes the Dickey-Fuller t statistic in two passes: candidate
// lag counts are compared by AIC on a common trimmed sample, then the
// winner is refitted on the longest sample it allows.
func adfStat(x []float64, trend Trend) (stat float64, bestLag, nobs int, ok bool) {
	n := len(x)
	ntrend := 0
	if trend == TrendConstant {
		ntrend = 1
	}
	maxLag := int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	if limit := n/2 - ntrend - 1; maxLag > limit {
		maxLag = limit
	}
	if maxLag < 0 {
		maxLag = 0
	}

	diff := make([]float64, n-1)
	for i := 1; i < n; i++ {
		diff[i-1] = x[i] - x[i-1]
	}

	bestAIC := math.Inf(1)
	for k := 0; k <= maxLag; k++ {
		y, cols := adfDesign(x, diff, maxLag, k, trend)
		fit, fitOK := mols(y, cols)
		if !fitOK {
			continue
		}
		m := float64(len(y))
		llf := -m / 2 * (math.Log(2*math.Pi) + math.Log(fit.ssr/m) + 1)
		aic := -2*llf + 2*float64(len(cols))
		if aic < bestAIC {
			bestAIC = aic
			bestLag = k
		}
	}

	y, cols := adfDesign(x, diff, bestLag, bestLag, trend)
	fit, fitOK := mols(y, cols)
	if !fitOK {
		return 0, 0, 0, false
	}
	return fit.params[0] / fit.stderr[0], bestLag, len(y), true
}

// adfDesign builds the Dickey-Fuller regression with k lagged differences,
// trimming the first trim rows of the differenced series so competing lag
// counts share a sample. Column 0 is the lagged level whose t statistic is
// the test.
func adfDesign(x, diff []float64, trim, k int, trend Trend) (y []float64, cols [][]float64) {
	rows := len(diff) - trim
	y = make([]float64, rows)
	level := make([]float64, rows)
	for i := 0; i < rows; i++ {
		t := trim + i
		y[i] = diff[t]
		level[i] = x[t]
	}
	cols = [][]float64{level}
	for j := 1; j <= k; j++ {
		dl := make([]float64, rows)
		for i := 0; i < rows; i++ {
			dl[i] = diff[trim+i-j]
		}
		cols = append(cols, dl)
	}
	if trend == TrendConstant {
		ones := make([]float64, rows)
		for i := range ones {
			ones[i] = 1
		}
		cols = append(cols, ones)
	}
	return y, cols
}

// molsResult carries the pieces of a multi-column least-squares fit the
// Dickey-Fuller machinery needs.
type molsResult struct {
	params []float64
	stderr []float64
	ssr    float64
}

// mols solves ordinary least squares over explicit design columns via the
// normal equations. It reports failure for empty, underdetermined or
// singular designs.
func mols(y []float64, cols [][]float64) (molsResult, bool) {
	k := len(cols)
	n := len(y)
	if k == 0 || n <= k {
		return molsResult{}, false
	}
	xtx := make([][]float64, k)
	xty := make([]float64, k)
	for i := 0; i < k; i++ {
		xtx[i] = make([]float64, k)
	}
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			s := 0.0
			for t := 0; t < n; t++ {
				s += cols[i][t] * cols[j][t]
			}
			xtx[i][j] = s
			xtx[j][i] = s
		}
		s := 0.0
		for t := 0; t < n; t++ {
			s += cols[i][t] * y[t]
		}
		xty[i] = s
	}
	inv, ok := invert(xtx)
	if !ok {
		return molsResult{}, false
	}
	params := make([]float64, k)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			params[i] += inv[i][j] * xty[j]
		}
	}
	ssr := 0.0
	for t := 0; t < n; t++ {
		pred := 0.0
		for i := 0; i < k; i++ {
			pred += params[i] * cols[i][t]
		}
		d := y[t] - pred
		ssr += d * d
	}
	sigma2 := ssr / float64(n-k)
	stderr := make([]float64, k)
	for i := 0; i < k; i++ {
		v := sigma2 * inv[i][i]
		if v < 0 {
			v = 0
		}
		stderr[i] = math.Sqrt(v)
	}
	return molsResult{params: params, stderr: stderr, ssr: ssr}, true
}

// invert runs Gauss-Jordan elimination with partial pivoting. Pivots
// below 1e-12 mark the matrix singular.
func invert(a [][]float64) ([][]float64, bool) {
	k := len(a)
	m := make([][]float64, k)
	for i := range m {
		m[i] = make([]float64, 2*k)
		copy(m[i], a[i])
		m[i][k+i] = 1
	}
	for col := 0; col < k; col++ {
		pivot := col
		for r := col + 1; r < k; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return nil, false
		}
		m[col], m[pivot] = m[pivot], m[col]
		p := m[col][col]
		for j := 0; j < 2*k; j++ {
			m[col][j] /= p
		}
		for r := 0; r < k; r++ {
			if r == col {
				continue
			}
			f := m[r][col]
			if f == 0 {
				continue
			}
			for j := 0; j < 2*k; j++ {
				m[r][j] -= f * m[col][j]
			}
		}
	}
	inv := make([][]float64, k)
	for i := range inv {
		inv[i] = m[i][k:]
	}
	return inv, true
}
