package sim

import "backstep/internal/domain"

// applyFill folds a fill into the signed position and returns the realized
// P&L it produced. Both sides are handled symmetrically as two legs: first
// close any opposite-side exposure (realizing P&L against the average entry
// price), then open or extend same-side exposure with a notional-weighted
// average over absolute quantities. A fill that flips through zero therefore
// resets the average price to the fill price for the new leg, so no
// division by a zero quantity can occur.
func applyFill(pos *domain.Position, side domain.Side, price, qty float64) float64 {
	var realized float64

	if side == domain.SideBuy {
		if pos.Qty < 0 {
			closed := min(-pos.Qty, qty)
			realized = (pos.AvgPrice - price) * closed
			pos.Qty += closed
			qty -= closed
			if pos.Qty == 0 {
				pos.AvgPrice = 0
			}
		}
		if qty > 0 {
			if pos.Qty == 0 {
				pos.AvgPrice = price
			} else {
				pos.AvgPrice = (pos.AvgPrice*pos.Qty + price*qty) / (pos.Qty + qty)
			}
			pos.Qty += qty
		}
		return realized
	}

	// Sell: close long exposure first, then open/extend the short.
	if pos.Qty > 0 {
		closed := min(pos.Qty, qty)
		realized = (price - pos.AvgPrice) * closed
		pos.Qty -= closed
		qty -= closed
		if pos.Qty == 0 {
			pos.AvgPrice = 0
		}
	}
	if qty > 0 {
		abs := -pos.Qty // >= 0 here
		if abs == 0 {
			pos.AvgPrice = price
		} else {
			pos.AvgPrice = (pos.AvgPrice*abs + price*qty) / (abs + qty)
		}
		pos.Qty -= qty
	}
	return realized
}
