package sim

import "backstep/internal/domain"

// FillTiming selects the reference price for market orders: the open of the
// bar being processed ("next_open", orders placed on the prior bar fill at
// the next open) or its close ("bar_inclusive").
type FillTiming string

const (
	FillNextOpen     FillTiming = "next_open"
	FillBarInclusive FillTiming = "bar_inclusive"
)

// fillPrice decides whether an open order fills against the given bar and at
// what raw reference price, before slippage. Pure function of the order, the
// bar, and the market-order timing policy.
//
//   - market: always fills; reference is the bar open or close per timing.
//   - limit buy: fills at the limit iff low <= limit (never worse than limit).
//   - limit sell: fills at the limit iff high >= limit.
//   - stop buy: triggers iff high >= stop; price max(stop, open) so a gap
//     through the stop fills at the open, never better than the stop.
//   - stop sell: triggers iff low <= stop; price min(stop, open).
func fillPrice(o *domain.Order, bar domain.Bar, timing FillTiming) (float64, bool) {
	switch o.Type {
	case domain.OrderTypeMarket:
		if timing == FillBarInclusive {
			return bar.Close, true
		}
		return bar.Open, true

	case domain.OrderTypeLimit:
		if o.Side == domain.SideBuy && bar.Low <= o.LimitPrice {
			return o.LimitPrice, true
		}
		if o.Side == domain.SideSell && bar.High >= o.LimitPrice {
			return o.LimitPrice, true
		}

	case domain.OrderTypeStop:
		if o.Side == domain.SideBuy && bar.High >= o.StopPrice {
			return max(o.StopPrice, bar.Open), true
		}
		if o.Side == domain.SideSell && bar.Low <= o.StopPrice {
			return min(o.StopPrice, bar.Open), true
		}
	}
	return 0, false
}

// applySlippage worsens the reference price against the trader: buys pay
// more, sells receive less.
func applySlippage(price float64, side domain.Side, slipBps float64) float64 {
	rate := slipBps / 10000.0
	if side == domain.SideBuy {
		return price * (1 + rate)
	}
	return price * (1 - rate)
}

// feeFor returns the commission on a fill's notional. Always a cost,
// regardless of side or the sign of the notional.
func feeFor(notional, feeBps float64) float64 {
	if notional < 0 {
		notional = -notional
	}
	return notional * (feeBps / 10000.0)
}
