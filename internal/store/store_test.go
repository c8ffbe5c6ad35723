package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"backstep/internal/domain"
)

func TestParquetStorePath(t *testing.T) {
	ps := NewParquetStore("/data")

	got := ps.barPath("aapl", 2024)
	want := filepath.Join("/data", "daily", "AAPL", "2024.parquet")
	if got != want {
		t.Errorf("barPath mismatch:\n  got  %s\n  want %s", got, want)
	}
}

func TestParquetStoreWriteReadBars(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	bars := []domain.Bar{
		{
			Symbol:    "AAPL",
			Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Open:      185.0, High: 186.5, Low: 184.0, Close: 185.5,
			Volume: 50000000, TradeCount: 500000, VWAP: 185.25,
		},
		{
			Symbol:    "AAPL",
			Timestamp: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			Open:      185.5, High: 187.0, Low: 185.0, Close: 186.0,
			Volume: 45000000, TradeCount: 450000, VWAP: 185.75,
		},
	}

	if err := ps.WriteBars(ctx, bars); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	got, err := ps.ReadBars(ctx, "AAPL", start, end)
	if err != nil {
		t.Fatalf("ReadBars: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadBars returned %d bars, want 2", len(got))
	}
	if got[0].Close != 185.5 {
		t.Errorf("first bar Close = %v, want 185.5", got[0].Close)
	}
	if got[1].Close != 186.0 {
		t.Errorf("second bar Close = %v, want 186.0", got[1].Close)
	}
}

func TestParquetStoreMergeBars(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	bar := func(day int, close float64) domain.Bar {
		return domain.Bar{
			Symbol:    "MSFT",
			Timestamp: time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
			Open:      close - 1, High: close + 2, Low: close - 2, Close: close,
			Volume: 1000,
		}
	}

	if err := ps.WriteBars(ctx, []domain.Bar{bar(1, 403)}); err != nil {
		t.Fatalf("WriteBars (first): %v", err)
	}
	// Same symbol+year again — must merge, not overwrite.
	if err := ps.WriteBars(ctx, []domain.Bar{bar(4, 408)}); err != nil {
		t.Fatalf("WriteBars (second): %v", err)
	}
	// Same timestamp again — incoming wins, no duplicate.
	if err := ps.WriteBars(ctx, []domain.Bar{bar(4, 409)}); err != nil {
		t.Fatalf("WriteBars (third): %v", err)
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	got, err := ps.ReadBars(ctx, "MSFT", start, end)
	if err != nil {
		t.Fatalf("ReadBars: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadBars returned %d bars after merge, want 2", len(got))
	}
	if got[1].Close != 409 {
		t.Errorf("merged bar Close = %v, want incoming 409", got[1].Close)
	}
}

func TestParquetStoreListSymbols(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	bars := []domain.Bar{
		{Symbol: "AAPL", Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 185, High: 186, Low: 184, Close: 185.5, Volume: 1},
		{Symbol: "GOOGL", Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 140, High: 141, Low: 139, Close: 140.5, Volume: 1},
	}
	if err := ps.WriteBars(ctx, bars); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	symbols, err := ps.ListSymbols(ctx)
	if err != nil {
		t.Fatalf("ListSymbols: %v", err)
	}
	if len(symbols) != 2 || symbols[0] != "AAPL" || symbols[1] != "GOOGL" {
		t.Errorf("ListSymbols = %v, want [AAPL GOOGL]", symbols)
	}
}

func TestParquetStoreListSymbolsEmpty(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	symbols, err := ps.ListSymbols(context.Background())
	if err != nil {
		t.Fatalf("ListSymbols: %v", err)
	}
	if len(symbols) != 0 {
		t.Errorf("ListSymbols on empty dir = %v, want none", symbols)
	}
}
