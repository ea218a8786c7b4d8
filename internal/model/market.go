package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// CloseSeries extracts the close prices of the bars as a Series.
func CloseSeries(bars []OHLCV) Series {
	s := Series{
		Times:  make([]time.Time, len(bars)),
		Values: make([]float64, len(bars)),
	}
	for i, b := range bars {
		s.Times[i] = b.Time
		s.Values[i] = b.Close
	}
	return s
}
