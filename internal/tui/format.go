package tui

import (
	"fmt"
	"math"
	"strings"
)

// FormatMoney formats a cash/equity value with comma separators and two
// decimals, e.g. 100020.5 -> "100,020.50".
func FormatMoney(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	whole := int64(v)
	frac := int64(math.Round((v - float64(whole)) * 100))
	if frac == 100 {
		whole++
		frac = 0
	}
	s := fmt.Sprintf("%s.%02d", groupThousands(whole), frac)
	if neg {
		return "-" + s
	}
	return s
}

// FormatQty formats a position quantity, trimming trailing zeros.
func FormatQty(q float64) string {
	s := fmt.Sprintf("%.4f", q)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

// FormatPrice formats a price as X.XX, or "-" when unset.
func FormatPrice(p float64) string {
	if p == 0 || math.IsNaN(p) {
		return "-"
	}
	return fmt.Sprintf("%.2f", p)
}

// FormatSigned formats a P&L value with an explicit sign.
func FormatSigned(v float64) string {
	if v >= 0 {
		return "+" + FormatMoney(v)
	}
	return FormatMoney(v)
}

func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	start := len(s) % 3
	if start > 0 {
		b.WriteString(s[:start])
	}
	for i := start; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
