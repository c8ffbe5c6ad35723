package tui

import (
	"math"

	"backstep/internal/domain"
)

// chartGrid is a rendered candle chart: rows of runes plus a per-column up
// mask so the view can color candles without re-deriving bar direction.
type chartGrid struct {
	rows [][]rune
	up   []bool   // one entry per visible bar
	min  float64  // price at the bottom row
	max  float64  // price at the top row
}

const (
	candleBody = '█'
	candleWick = '│'
	chartBlank = ' '
)

// renderChart draws the last width bars up to and including index cursor as
// a column chart height rows tall. Each bar occupies one column: a full
// block over the open-close body and a thin wick over the high-low range.
func renderChart(bars []domain.Bar, cursor, width, height int) chartGrid {
	lo := cursor - width + 1
	if lo < 0 {
		lo = 0
	}
	visible := bars[lo : cursor+1]

	g := chartGrid{
		rows: make([][]rune, height),
		up:   make([]bool, len(visible)),
		min:  math.Inf(1),
		max:  math.Inf(-1),
	}
	for i := range g.rows {
		g.rows[i] = make([]rune, len(visible))
		for j := range g.rows[i] {
			g.rows[i][j] = chartBlank
		}
	}

	for _, b := range visible {
		g.min = math.Min(g.min, b.Low)
		g.max = math.Max(g.max, b.High)
	}
	if g.max == g.min {
		g.max = g.min + 1 // degenerate flat window
	}

	// row 0 is the top of the chart
	toRow := func(price float64) int {
		frac := (g.max - price) / (g.max - g.min)
		r := int(math.Round(frac * float64(height-1)))
		if r < 0 {
			r = 0
		}
		if r > height-1 {
			r = height - 1
		}
		return r
	}

	for col, b := range visible {
		g.up[col] = b.Close >= b.Open

		wickTop, wickBot := toRow(b.High), toRow(b.Low)
		for r := wickTop; r <= wickBot; r++ {
			g.rows[r][col] = candleWick
		}

		bodyTop := toRow(math.Max(b.Open, b.Close))
		bodyBot := toRow(math.Min(b.Open, b.Close))
		for r := bodyTop; r <= bodyBot; r++ {
			g.rows[r][col] = candleBody
		}
	}
	return g
}
