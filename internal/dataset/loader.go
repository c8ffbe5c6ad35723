// Package dataset loads OHLCV data from CSV files, fingerprints it, and
// keeps a catalog of imported datasets so a backtest run can be tied to the
// exact data it replayed.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"backstep/internal/domain"
)

// RequiredColumns are the CSV headers a bar file must carry.
var RequiredColumns = []string{"Date", "Open", "High", "Low", "Close", "Volume"}

// ErrEmptyDataset is returned when a CSV file contains no data rows.
var ErrEmptyDataset = errors.New("dataset has no rows")

// Meta describes a loaded dataset: its size, time span, and an xxhash64
// fingerprint of the bar values. Two files with identical bars hash
// identically regardless of column order or formatting quirks.
type Meta struct {
	Rows     int       `json:"rows"`
	Checksum string    `json:"checksum"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// LoadCSV reads a Date,Open,High,Low,Close,Volume CSV file, sorts the rows
// ascending by date, and returns the bars together with their Meta.
func LoadCSV(path string) ([]domain.Bar, Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Meta{}, err
	}
	defer f.Close()

	bars, err := parseCSV(f)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("loading %s: %w", path, err)
	}
	return bars, metaFor(bars), nil
}

func parseCSV(r io.Reader) ([]domain.Bar, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range RequiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("CSV missing column %q", name)
		}
	}

	var bars []domain.Bar
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		ts, err := parseDate(record[col["Date"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		fields := [4]float64{}
		for i, name := range []string{"Open", "High", "Low", "Close"} {
			v, err := strconv.ParseFloat(record[col[name]], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: parsing %s: %w", line, name, err)
			}
			fields[i] = v
		}
		vol, err := strconv.ParseFloat(record[col["Volume"]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing Volume: %w", line, err)
		}

		bars = append(bars, domain.Bar{
			Timestamp: ts,
			Open:      fields[0],
			High:      fields[1],
			Low:       fields[2],
			Close:     fields[3],
			Volume:    int64(vol),
		})
	}
	if len(bars) == 0 {
		return nil, ErrEmptyDataset
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// metaFor fingerprints the bars with xxhash64 over a canonical encoding of
// every value, so the checksum is stable across reformatted exports of the
// same data.
func metaFor(bars []domain.Bar) Meta {
	h := xxhash.New()
	for _, b := range bars {
		writeHashField(h, strconv.FormatInt(b.Timestamp.Unix(), 10))
		for _, v := range []float64{b.Open, b.High, b.Low, b.Close} {
			writeHashField(h, strconv.FormatFloat(v, 'g', -1, 64))
		}
		writeHashField(h, strconv.FormatInt(b.Volume, 10))
	}
	return Meta{
		Rows:     len(bars),
		Checksum: fmt.Sprintf("%016x", h.Sum64()),
		Start:    bars[0].Timestamp,
		End:      bars[len(bars)-1].Timestamp,
	}
}

func writeHashField(h *xxhash.Digest, s string) {
	_, _ = h.WriteString(s)
	_, _ = h.WriteString("|")
}
