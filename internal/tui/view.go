package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"backstep/internal/domain"
)

// Styles.
var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	upStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	downStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	gainStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	axisStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

const (
	chartHeight  = 14
	blotterDepth = 8 // most recent orders shown
)

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderChartPanel())
	b.WriteString("\n")
	b.WriteString(m.renderIndicators())
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderAccount(), "   ", m.renderBlotter()))
	b.WriteString("\n")

	if m.mode == modeOrder {
		b.WriteString("\n order> " + m.input.View() + "\n")
	} else if m.status != "" {
		b.WriteString("\n " + statusStyle.Render(m.status) + "\n")
	} else {
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	bar := m.sess.Bar()
	text := fmt.Sprintf(" %s  bar %d/%d  %s   O %s  H %s  L %s  C %s  V %d ",
		m.symbol,
		m.sess.Index()+1, m.sess.Len(),
		bar.Timestamp.Format("2006-01-02"),
		FormatPrice(bar.Open), FormatPrice(bar.High),
		FormatPrice(bar.Low), FormatPrice(bar.Close),
		bar.Volume,
	)
	return headerStyle.Render(padOrTrunc(text, m.width))
}

func (m Model) renderChartPanel() string {
	width := m.width - 12 // leave room for the price axis
	if width < 10 {
		width = 10
	}
	if width > 120 {
		width = 120
	}
	g := renderChart(m.sess.Bars(), m.sess.Index(), width, chartHeight)

	var b strings.Builder
	for r, row := range g.rows {
		// price axis on the left edge, top and bottom rows only
		switch r {
		case 0:
			b.WriteString(axisStyle.Render(fmt.Sprintf("%9s ", FormatPrice(g.max))))
		case chartHeight - 1:
			b.WriteString(axisStyle.Render(fmt.Sprintf("%9s ", FormatPrice(g.min))))
		default:
			b.WriteString(strings.Repeat(" ", 10))
		}
		for col, ch := range row {
			style := downStyle
			if g.up[col] {
				style = upStyle
			}
			b.WriteString(style.Render(string(ch)))
		}
		if r < chartHeight-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderIndicators() string {
	i := m.sess.Index()
	part := func(name string, v float64) string {
		return labelStyle.Render(name) + " " + valueStyle.Render(fmtIndicator(v))
	}
	return "          " + strings.Join([]string{
		part("SMA20", m.sma20[i]),
		part("SMA50", m.sma50[i]),
		part("RSI14", m.rsi14[i]),
		part("ATR14", m.atr14[i]),
		part("KC", m.kcLow[i]) + dimStyle.Render("/") +
			valueStyle.Render(fmtIndicator(m.kcMid[i])) + dimStyle.Render("/") +
			valueStyle.Render(fmtIndicator(m.kcUp[i])),
	}, "   ")
}

func (m Model) renderAccount() string {
	a := m.sess.Account()

	pnlStyle := gainStyle
	if a.RealizedPnL < 0 {
		pnlStyle = lossStyle
	}
	pos := "flat"
	if !a.Position.Flat() {
		pos = fmt.Sprintf("%s @ %s", FormatQty(a.Position.Qty), FormatPrice(a.Position.AvgPrice))
	}

	rows := []string{
		labelStyle.Render(" Account"),
		fmt.Sprintf("  cash      %s", valueStyle.Render(FormatMoney(a.Cash))),
		fmt.Sprintf("  position  %s", valueStyle.Render(pos)),
		fmt.Sprintf("  equity    %s", valueStyle.Render(FormatMoney(a.Equity))),
		fmt.Sprintf("  realized  %s", pnlStyle.Render(FormatSigned(a.RealizedPnL))),
		fmt.Sprintf("  max eq    %s", valueStyle.Render(FormatMoney(a.MaxEquity))),
		fmt.Sprintf("  drawdown  %s", lossStyle.Render(FormatMoney(a.Drawdown))),
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderBlotter() string {
	orders := m.sess.Orders()
	rows := []string{
		labelStyle.Render(" Orders") + dimStyle.Render(fmt.Sprintf("  (%d total)", len(orders))),
		dimStyle.Render(fmt.Sprintf("  %-4s %-6s %8s %9s %9s %-8s", "side", "type", "qty", "px", "fill", "status")),
	}

	start := 0
	if len(orders) > blotterDepth {
		start = len(orders) - blotterDepth
	}
	for _, o := range orders[start:] {
		px := o.LimitPrice
		if o.Type == domain.OrderTypeStop {
			px = o.StopPrice
		}
		line := fmt.Sprintf("  %-4s %-6s %8s %9s %9s %-8s",
			o.Side, o.Type, FormatQty(o.Qty), FormatPrice(px), FormatPrice(o.AvgFillPrice), o.Status)
		switch o.Status {
		case domain.OrderStatusFilled:
			rows = append(rows, valueStyle.Render(line))
		case domain.OrderStatusCanceled:
			rows = append(rows, dimStyle.Render(line))
		default:
			rows = append(rows, statusStyle.Render(line))
		}
	}
	if len(orders) == 0 {
		rows = append(rows, dimStyle.Render("  (none)"))
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderFooter() string {
	text := " n/→ next  p/← prev  b buy 1  s sell 1  o order  c cancel  q quit"
	if m.mode == modeOrder {
		text = " enter submit  esc cancel"
	}
	return footerStyle.Render(padOrTrunc(text, m.width))
}

func fmtIndicator(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

// padOrTrunc pads s with spaces to width, or truncates if longer.
func padOrTrunc(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
