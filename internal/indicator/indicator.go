// Package indicator computes the chart overlays used by the presentation
// layer: moving averages, RSI, ATR, and Keltner channels. All functions
// return a slice the same length as the input with NaN in positions where
// the indicator is not yet defined.
package indicator

import "math"

// SMA returns the simple moving average over a window of n values.
func SMA(values []float64, n int) []float64 {
	out := nanSlice(len(values))
	if n <= 0 || n > len(values) {
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= n {
			sum -= values[i-n]
		}
		if i >= n-1 {
			out[i] = sum / float64(n)
		}
	}
	return out
}

// EMA returns the exponential moving average with span n (alpha = 2/(n+1)),
// seeded from the first value.
func EMA(values []float64, n int) []float64 {
	out := nanSlice(len(values))
	if n <= 0 || len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(n) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = (1-alpha)*out[i-1] + alpha*values[i]
	}
	return out
}

// RSI returns the n-period relative strength index with Wilder smoothing.
// Values before the first full window are NaN, as are stretches where the
// average loss is zero.
func RSI(values []float64, n int) []float64 {
	out := nanSlice(len(values))
	if n <= 0 || len(values) <= n {
		return out
	}

	var avgUp, avgDn float64
	for i := 1; i <= n; i++ {
		d := values[i] - values[i-1]
		if d > 0 {
			avgUp += d
		} else {
			avgDn -= d
		}
	}
	avgUp /= float64(n)
	avgDn /= float64(n)

	alpha := 1.0 / float64(n)
	for i := n; i < len(values); i++ {
		if i > n {
			d := values[i] - values[i-1]
			up, dn := 0.0, 0.0
			if d > 0 {
				up = d
			} else {
				dn = -d
			}
			avgUp = (1-alpha)*avgUp + alpha*up
			avgDn = (1-alpha)*avgDn + alpha*dn
		}
		if avgDn == 0 {
			continue // NaN: no losses in the window
		}
		rs := avgUp / avgDn
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// TrueRange returns the per-bar true range: the high-low span widened by any
// gap from the previous close.
func TrueRange(high, low, close []float64) []float64 {
	out := make([]float64, len(high))
	for i := range high {
		prevClose := close[0]
		if i > 0 {
			prevClose = close[i-1]
		}
		out[i] = math.Max(high[i]-low[i],
			math.Max(math.Abs(high[i]-prevClose), math.Abs(low[i]-prevClose)))
	}
	return out
}

// ATR returns the average true range smoothed with alpha = 1/n (Wilder),
// seeded from the first true range.
func ATR(high, low, close []float64, n int) []float64 {
	tr := TrueRange(high, low, close)
	out := nanSlice(len(tr))
	if n <= 0 || len(tr) == 0 {
		return out
	}
	alpha := 1.0 / float64(n)
	out[0] = tr[0]
	for i := 1; i < len(tr); i++ {
		out[i] = (1-alpha)*out[i-1] + alpha*tr[i]
	}
	return out
}

// Keltner returns the Keltner channel mid, upper, and lower bands:
// EMA(close, emaN) +/- mult * ATR(atrN).
func Keltner(high, low, close []float64, emaN, atrN int, mult float64) (mid, upper, lower []float64) {
	mid = EMA(close, emaN)
	atr := ATR(high, low, close, atrN)
	upper = nanSlice(len(close))
	lower = nanSlice(len(close))
	for i := range close {
		upper[i] = mid[i] + mult*atr[i]
		lower[i] = mid[i] - mult*atr[i]
	}
	return mid, upper, lower
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
