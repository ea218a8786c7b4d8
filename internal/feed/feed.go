// Package feed supplies price history to the screener. Network market
// data sources are out of scope; the implementations here read local
// CSV files or generate deterministic synthetic walks.
package feed

import (
	"context"

	"PairSentinel/internal/model"
)

// Source provides price history and current quotes per symbol.
type Source interface {
	// History returns up to points most-recent closes for the symbol,
	// oldest first.
	History(ctx context.Context, symbol string, points int) (model.Series, error)
	// LatestPrice returns the most recent close for the symbol.
	LatestPrice(ctx context.Context, symbol string) (float64, error)
	Name() string
}
