package dataset

import (
	"encoding/json"
	"time"
)

// Manifest ties a backtest session to the exact dataset and indicator
// parameters it used.
type Manifest struct {
	Symbol          string           `json:"symbol"`
	Timeframe       string           `json:"timeframe"`
	Data            Meta             `json:"data"`
	IndicatorParams map[string][]int `json:"indicator_params,omitempty"`
	Seed            int64            `json:"seed"`
	CreatedAt       time.Time        `json:"created_at"`
}

// NewManifest creates a manifest stamped with the current UTC time.
func NewManifest(symbol, timeframe string, data Meta, indicatorParams map[string][]int, seed int64) *Manifest {
	return &Manifest{
		Symbol:          symbol,
		Timeframe:       timeframe,
		Data:            data,
		IndicatorParams: indicatorParams,
		Seed:            seed,
		CreatedAt:       time.Now().UTC(),
	}
}

// JSON renders the manifest as indented JSON.
func (m *Manifest) JSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
