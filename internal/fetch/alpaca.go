// Package fetch pulls daily OHLCV bars from the Alpaca market-data API into
// the local Parquet cache.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"backstep/internal/domain"
	"backstep/internal/store"
	"backstep/internal/util"
)

// DailyBarFetcher downloads daily bars for explicit symbols and writes them
// to a BarStore.
type DailyBarFetcher struct {
	client    *marketdata.Client
	store     store.BarStore
	limiter   *util.RateLimiter
	batchSize int
	log       *slog.Logger
}

// NewDailyBarFetcher creates a fetcher with the given Alpaca credentials and
// target store. batchSize caps symbols per API call; ratePerMin paces the
// requests.
func NewDailyBarFetcher(apiKey, apiSecret, dataURL string, s store.BarStore, batchSize, ratePerMin int) *DailyBarFetcher {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	if ratePerMin <= 0 {
		ratePerMin = 200
	}

	return &DailyBarFetcher{
		client:    marketdata.NewClient(opts),
		store:     s,
		limiter:   util.NewRateLimiter(ratePerMin),
		batchSize: batchSize,
		log:       slog.Default().With("component", "fetch"),
	}
}

// Fetch downloads daily bars for the symbols between start and end and
// writes them to the store. It returns the number of bars written.
func (f *DailyBarFetcher) Fetch(ctx context.Context, symbols []string, start, end time.Time) (int, error) {
	total := 0
	for _, batch := range chunkSymbols(symbols, f.batchSize) {
		if err := f.limiter.Wait(ctx); err != nil {
			return total, err
		}

		var bars []domain.Bar
		err := util.Retry(ctx, 3, time.Second, func() error {
			var ferr error
			bars, ferr = f.fetchBatch(batch, start, end)
			return ferr
		})
		if err != nil {
			return total, fmt.Errorf("fetching batch starting %s: %w", batch[0], err)
		}

		if err := f.store.WriteBars(ctx, bars); err != nil {
			return total, fmt.Errorf("writing batch starting %s: %w", batch[0], err)
		}
		total += len(bars)
		f.log.Info("batch fetched", "symbols", len(batch), "bars", len(bars))
	}
	return total, nil
}

// fetchBatch fetches daily bars for multiple symbols in a single API call.
func (f *DailyBarFetcher) fetchBatch(symbols []string, start, end time.Time) ([]domain.Bar, error) {
	multiBars, err := f.client.GetMultiBars(symbols, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
	})
	if err != nil {
		return nil, fmt.Errorf("GetMultiBars: %w", err)
	}

	var bars []domain.Bar
	for symbol, alpacaBars := range multiBars {
		for _, ab := range alpacaBars {
			bars = append(bars, domain.Bar{
				Symbol:     strings.ToUpper(symbol),
				Timestamp:  ab.Timestamp,
				Open:       ab.Open,
				High:       ab.High,
				Low:        ab.Low,
				Close:      ab.Close,
				Volume:     int64(ab.Volume),
				TradeCount: int64(ab.TradeCount),
				VWAP:       ab.VWAP,
			})
		}
	}
	return bars, nil
}

// chunkSymbols splits symbols into batches of at most size.
func chunkSymbols(symbols []string, size int) [][]string {
	var out [][]string
	for len(symbols) > size {
		out = append(out, symbols[:size])
		symbols = symbols[size:]
	}
	if len(symbols) > 0 {
		out = append(out, symbols)
	}
	return out
}
