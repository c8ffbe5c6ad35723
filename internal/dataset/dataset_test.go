package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleCSV = `Date,Open,High,Low,Close,Volume
2024-01-03,102.0,104.0,101.0,103.0,1200
2024-01-02,100.0,105.0,95.0,102.0,1000
2024-01-04,103.0,106.0,102.5,105.5,900
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp csv: %v", err)
	}
	return path
}

func TestLoadCSVSortsByDate(t *testing.T) {
	bars, meta, err := LoadCSV(writeCSV(t, sampleCSV))
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}

	if len(bars) != 3 {
		t.Fatalf("got %d bars, want 3", len(bars))
	}
	for i := 1; i < len(bars); i++ {
		if !bars[i].Timestamp.After(bars[i-1].Timestamp) {
			t.Errorf("bars not ascending at %d: %v then %v", i, bars[i-1].Timestamp, bars[i].Timestamp)
		}
	}
	if bars[0].Close != 102.0 {
		t.Errorf("first bar Close = %v, want 102 (2024-01-02 row)", bars[0].Close)
	}

	if meta.Rows != 3 {
		t.Errorf("meta.Rows = %d, want 3", meta.Rows)
	}
	wantStart := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if !meta.Start.Equal(wantStart) {
		t.Errorf("meta.Start = %v, want %v", meta.Start, wantStart)
	}
	if len(meta.Checksum) != 16 {
		t.Errorf("checksum %q, want 16 hex chars", meta.Checksum)
	}
}

func TestLoadCSVChecksumStable(t *testing.T) {
	// Row order doesn't matter: the checksum covers sorted bars.
	reordered := `Date,Open,High,Low,Close,Volume
2024-01-04,103.0,106.0,102.5,105.5,900
2024-01-02,100.0,105.0,95.0,102.0,1000
2024-01-03,102.0,104.0,101.0,103.0,1200
`
	_, meta1, err := LoadCSV(writeCSV(t, sampleCSV))
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	_, meta2, err := LoadCSV(writeCSV(t, reordered))
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if meta1.Checksum != meta2.Checksum {
		t.Errorf("checksums differ for same data: %s vs %s", meta1.Checksum, meta2.Checksum)
	}
}

func TestLoadCSVChecksumDetectsChange(t *testing.T) {
	changed := strings.Replace(sampleCSV, "103.0,1200", "103.1,1200", 1)

	_, meta1, err := LoadCSV(writeCSV(t, sampleCSV))
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	_, meta2, err := LoadCSV(writeCSV(t, changed))
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if meta1.Checksum == meta2.Checksum {
		t.Error("checksum did not change when a close price changed")
	}
}

func TestLoadCSVMissingColumn(t *testing.T) {
	bad := `Date,Open,High,Low,Volume
2024-01-02,100.0,105.0,95.0,1000
`
	_, _, err := LoadCSV(writeCSV(t, bad))
	if err == nil {
		t.Fatal("LoadCSV accepted a file without a Close column")
	}
	if !strings.Contains(err.Error(), "Close") {
		t.Errorf("error %q should name the missing column", err)
	}
}

func TestLoadCSVEmpty(t *testing.T) {
	_, _, err := LoadCSV(writeCSV(t, "Date,Open,High,Low,Close,Volume\n"))
	if err == nil {
		t.Fatal("LoadCSV accepted an empty dataset")
	}
}

func TestCatalogRegisterAndGet(t *testing.T) {
	cat, err := OpenCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	defer cat.Close()

	ctx := context.Background()
	_, meta, err := LoadCSV(writeCSV(t, sampleCSV))
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}

	m := NewManifest("SAMPLE", "D", meta, map[string][]int{"sma": {20, 50, 200}}, 42)
	if err := cat.Register(ctx, m); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := cat.Get(ctx, meta.Checksum)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for registered dataset")
	}
	if got.Symbol != "SAMPLE" || got.Timeframe != "D" {
		t.Errorf("manifest = %s/%s, want SAMPLE/D", got.Symbol, got.Timeframe)
	}
	if got.Data.Rows != 3 {
		t.Errorf("manifest rows = %d, want 3", got.Data.Rows)
	}
	if len(got.IndicatorParams["sma"]) != 3 {
		t.Errorf("indicator params = %v, want sma [20 50 200]", got.IndicatorParams)
	}
}

func TestCatalogGetMissing(t *testing.T) {
	cat, err := OpenCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	defer cat.Close()

	got, err := cat.Get(context.Background(), "deadbeefdeadbeef")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("Get for unknown checksum = %+v, want nil", got)
	}
}

func TestCatalogRegisterIdempotent(t *testing.T) {
	cat, err := OpenCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	defer cat.Close()

	ctx := context.Background()
	_, meta, err := LoadCSV(writeCSV(t, sampleCSV))
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	m := NewManifest("SAMPLE", "D", meta, nil, 42)

	if err := cat.Register(ctx, m); err != nil {
		t.Fatalf("Register (first): %v", err)
	}
	if err := cat.Register(ctx, m); err != nil {
		t.Fatalf("Register (second): %v", err)
	}

	all, err := cat.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("List returned %d manifests, want 1 after re-register", len(all))
	}
}
