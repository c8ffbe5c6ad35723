package sim

import (
	"math"
	"testing"

	"backstep/internal/domain"
)

func TestApplyFillOpenAndExtendLong(t *testing.T) {
	var pos domain.Position

	if realized := applyFill(&pos, domain.SideBuy, 100, 10); realized != 0 {
		t.Errorf("opening realized = %v, want 0", realized)
	}
	if pos.Qty != 10 || pos.AvgPrice != 100 {
		t.Fatalf("pos = %+v, want qty=10 avg=100", pos)
	}

	// Adding blends the average by notional: (100*10 + 110*10) / 20 = 105.
	if realized := applyFill(&pos, domain.SideBuy, 110, 10); realized != 0 {
		t.Errorf("extending realized = %v, want 0", realized)
	}
	if pos.Qty != 20 || pos.AvgPrice != 105 {
		t.Errorf("pos = %+v, want qty=20 avg=105", pos)
	}
}

func TestApplyFillCloseLong(t *testing.T) {
	pos := domain.Position{Qty: 10, AvgPrice: 100}

	realized := applyFill(&pos, domain.SideSell, 110, 10)
	if realized != 100 {
		t.Errorf("realized = %v, want 100", realized)
	}
	if !pos.Flat() {
		t.Errorf("pos.Qty = %v, want flat", pos.Qty)
	}
	if pos.AvgPrice != 0 {
		t.Errorf("flat AvgPrice = %v, want 0", pos.AvgPrice)
	}
}

func TestApplyFillFlipLongToShort(t *testing.T) {
	// Long 5 @ 100, sell 8 at 104: closes 5 realizing 20, flips short 3 at
	// the fill price.
	pos := domain.Position{Qty: 5, AvgPrice: 100}

	realized := applyFill(&pos, domain.SideSell, 104, 8)
	if realized != 20 {
		t.Errorf("realized = %v, want 20", realized)
	}
	if pos.Qty != -3 {
		t.Errorf("pos.Qty = %v, want -3", pos.Qty)
	}
	if pos.AvgPrice != 104 {
		t.Errorf("pos.AvgPrice = %v, want 104 (reset to fill price)", pos.AvgPrice)
	}
}

func TestApplyFillFlipShortToLong(t *testing.T) {
	// The buy side mirrors the sell flip: short 5 @ 100, buy 8 at 96 covers
	// 5 realizing 20 and opens long 3 at 96.
	pos := domain.Position{Qty: -5, AvgPrice: 100}

	realized := applyFill(&pos, domain.SideBuy, 96, 8)
	if realized != 20 {
		t.Errorf("realized = %v, want 20", realized)
	}
	if pos.Qty != 3 {
		t.Errorf("pos.Qty = %v, want 3", pos.Qty)
	}
	if pos.AvgPrice != 96 {
		t.Errorf("pos.AvgPrice = %v, want 96", pos.AvgPrice)
	}
}

func TestApplyFillAddToShort(t *testing.T) {
	// Short 10 @ 100 plus short 10 at 90 blends on absolute quantities.
	pos := domain.Position{Qty: -10, AvgPrice: 100}

	if realized := applyFill(&pos, domain.SideSell, 90, 10); realized != 0 {
		t.Errorf("adding to short realized = %v, want 0", realized)
	}
	if pos.Qty != -20 || pos.AvgPrice != 95 {
		t.Errorf("pos = %+v, want qty=-20 avg=95", pos)
	}
}

func TestApplyFillShortCoverToExactlyZero(t *testing.T) {
	pos := domain.Position{Qty: -10, AvgPrice: 100}

	realized := applyFill(&pos, domain.SideBuy, 95, 10)
	if realized != 50 {
		t.Errorf("realized = %v, want 50", realized)
	}
	if !pos.Flat() {
		t.Errorf("pos.Qty = %v, want flat", pos.Qty)
	}
	if math.IsNaN(pos.AvgPrice) || pos.AvgPrice != 0 {
		t.Errorf("flat AvgPrice = %v, want 0", pos.AvgPrice)
	}

	// A later fill must blend from a clean slate, not a stale average.
	applyFill(&pos, domain.SideBuy, 80, 5)
	if pos.Qty != 5 || pos.AvgPrice != 80 {
		t.Errorf("pos = %+v, want qty=5 avg=80", pos)
	}
}
