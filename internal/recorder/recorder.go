package recorder

import "PairSentinel/internal/model"

// Stats is the dashboard snapshot assembled from stored state. Cointegrated
// and AvgCorrelation are computed over the latest metrics of active pairs;
// SignalsLastHour counts entry signals only.
type Stats struct {
	ActivePairs     int
	Cointegrated    int
	OpenPositions   int
	SignalsLastHour int
	AvgCorrelation  float64
}

// Recorder persists pairs, analysis history, signals and positions across
// screener cycles.
type Recorder interface {
	// AddPair registers a pair to monitor, reactivating it when it was
	// previously removed.
	AddPair(pair model.Pair) error
	// RemovePair deactivates a pair without touching its history.
	RemovePair(pair model.Pair) error
	ActivePairs() ([]model.Pair, error)

	// SaveMetrics appends one analysis snapshot to the pair's history.
	SaveMetrics(m *model.PairMetrics) error
	// LatestMetrics returns the most recent snapshot of every active pair.
	LatestMetrics() ([]*model.PairMetrics, error)

	// SaveSignal stores a signal and returns its id for MarkNotified.
	SaveSignal(sig *model.TradingSignal) (int64, error)
	MarkNotified(signalID int64) error
	// RecentSignals returns up to limit signals, newest first, optionally
	// restricted to the ones not yet notified.
	RecentSignals(limit int, unnotifiedOnly bool) ([]*model.TradingSignal, error)

	// OpenPosition inserts an open position and fills pos.ID.
	OpenPosition(pos *model.Position) error
	// UpdatePosition refreshes the mark on an open position. Nil prices and
	// pnl are stored as NULL.
	UpdatePosition(id int64, currentZScore float64, price1, price2, pnlPercent *float64) error
	// ClosePosition closes the open position for the pair, reporting
	// whether one existed.
	ClosePosition(pair model.Pair) (bool, error)
	OpenPositions() ([]*model.Position, error)
	// PositionFor returns the open position for the pair, or nil.
	PositionFor(pair model.Pair) (*model.Position, error)

	Stats() (Stats, error)
	Close() error
}
