package recorder

import "PairSentinel/internal/model"

// NoopRecorder is used when no database is configured. Queries return
// empty results, so the screener falls back to its configured pairs and
// treats every position as flat.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) AddPair(_ model.Pair) error             { return nil }
func (n *NoopRecorder) RemovePair(_ model.Pair) error          { return nil }
func (n *NoopRecorder) ActivePairs() ([]model.Pair, error)     { return nil, nil }
func (n *NoopRecorder) SaveMetrics(_ *model.PairMetrics) error { return nil }
func (n *NoopRecorder) LatestMetrics() ([]*model.PairMetrics, error) {
	return nil, nil
}
func (n *NoopRecorder) SaveSignal(_ *model.TradingSignal) (int64, error) { return 0, nil }
func (n *NoopRecorder) MarkNotified(_ int64) error                       { return nil }
func (n *NoopRecorder) RecentSignals(_ int, _ bool) ([]*model.TradingSignal, error) {
	return nil, nil
}
func (n *NoopRecorder) OpenPosition(_ *model.Position) error { return nil }
func (n *NoopRecorder) UpdatePosition(_ int64, _ float64, _, _, _ *float64) error {
	return nil
}
func (n *NoopRecorder) ClosePosition(_ model.Pair) (bool, error)  { return false, nil }
func (n *NoopRecorder) OpenPositions() ([]*model.Position, error) { return nil, nil }
func (n *NoopRecorder) PositionFor(_ model.Pair) (*model.Position, error) {
	return nil, nil
}
func (n *NoopRecorder) Stats() (Stats, error) { return Stats{}, nil }
func (n *NoopRecorder) Close() error          { return nil }
