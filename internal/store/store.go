// Package store persists and retrieves OHLCV bar data for the backtester's
// local cache.
package store

import (
	"context"
	"time"

	"backstep/internal/domain"
)

// BarStore persists and retrieves daily OHLCV bars.
type BarStore interface {
	// WriteBars persists a batch of bars, merging with any already stored.
	WriteBars(ctx context.Context, bars []domain.Bar) error

	// ReadBars returns bars for the given symbol within [start, end],
	// sorted ascending by timestamp.
	ReadBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns all distinct symbols with cached bars.
	ListSymbols(ctx context.Context) ([]string, error)
}
