package stats

import "math"

// CalculateZScore standardizes each point against the mean and sample
// deviation of its trailing window. The first window-1 entries are NaN,
// as is any window containing NaN or showing no variance.
func CalculateZScore(values []float64, window int) ([]float64, error) {
	if window < 2 {
		return nil, ErrInvalidWindow
	}
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	for i := window - 1; i < len(values); i++ {
		win := values[i-window+1 : i+1]
		if hasNaN(win) {
			continue
		}
		sd := SampleStd(win)
		if math.IsNaN(sd) || sd < eps {
			continue
		}
		out[i] = (values[i] - Mean(win)) / sd
	}
	return out, nil
}
