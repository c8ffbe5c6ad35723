package tui

import (
	"testing"

	"backstep/internal/domain"
)

func chartBars() []domain.Bar {
	mk := func(o, h, l, c float64) domain.Bar {
		return domain.Bar{Open: o, High: h, Low: l, Close: c}
	}
	return []domain.Bar{
		mk(100, 110, 90, 105),
		mk(105, 106, 95, 96),
		mk(96, 120, 96, 118),
	}
}

func TestRenderChartDimensions(t *testing.T) {
	g := renderChart(chartBars(), 2, 10, 8)

	if len(g.rows) != 8 {
		t.Fatalf("got %d rows, want 8", len(g.rows))
	}
	// window wider than the series: every bar up to the cursor is visible
	for i, row := range g.rows {
		if len(row) != 3 {
			t.Errorf("row %d has %d columns, want 3", i, len(row))
		}
	}
	if len(g.up) != 3 {
		t.Fatalf("got %d up flags, want 3", len(g.up))
	}
}

func TestRenderChartWindowClips(t *testing.T) {
	g := renderChart(chartBars(), 2, 2, 8)
	if len(g.rows[0]) != 2 {
		t.Errorf("got %d columns, want window of 2", len(g.rows[0]))
	}
	// scale covers only the visible bars
	if g.min != 95 || g.max != 120 {
		t.Errorf("scale [%v, %v], want [95, 120]", g.min, g.max)
	}
}

func TestRenderChartExtremesTouchEdges(t *testing.T) {
	g := renderChart(chartBars(), 2, 10, 8)

	// bar 2 carries the window high: its wick must reach the top row
	if g.rows[0][2] == chartBlank {
		t.Error("window high does not reach the top row")
	}
	// bar 0 carries the window low: its wick must reach the bottom row
	if g.rows[7][0] == chartBlank {
		t.Error("window low does not reach the bottom row")
	}
}

func TestRenderChartUpDown(t *testing.T) {
	g := renderChart(chartBars(), 2, 10, 8)
	want := []bool{true, false, true}
	for i, w := range want {
		if g.up[i] != w {
			t.Errorf("up[%d] = %v, want %v", i, g.up[i], w)
		}
	}
}

func TestRenderChartFlatWindow(t *testing.T) {
	bars := []domain.Bar{{Open: 50, High: 50, Low: 50, Close: 50}}
	g := renderChart(bars, 0, 10, 4) // must not divide by zero
	if len(g.rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(g.rows))
	}
}
