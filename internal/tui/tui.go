// Package tui is the interactive terminal front end: a candle chart over the
// visible bar window, indicator overlays, the account panel, and an order
// blotter, driven one bar at a time.
package tui

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"backstep/internal/domain"
	"backstep/internal/indicator"
	"backstep/internal/session"
)

type mode int

const (
	modeBrowse mode = iota
	modeOrder
)

// Model is the bubbletea model for a backtest session.
type Model struct {
	sess   *session.Session
	symbol string
	logger *slog.Logger

	mode   mode
	input  textinput.Model
	status string

	width, height int
	ready         bool

	// Indicator overlays, precomputed over the full series. Values at
	// indices the cursor has not reached yet are never shown.
	sma20, sma50 []float64
	rsi14        []float64
	atr14        []float64
	kcMid, kcUp  []float64
	kcLow        []float64
}

// New builds the model and precomputes the indicator overlays.
func New(sess *session.Session, symbol string, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}

	bars := sess.Bars()
	high := make([]float64, len(bars))
	low := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	for i, b := range bars {
		high[i], low[i], closes[i] = b.High, b.Low, b.Close
	}
	kcMid, kcUp, kcLow := indicator.Keltner(high, low, closes, 20, 10, 2)

	ti := textinput.New()
	ti.Placeholder = "buy 10 | sell 5 limit 99.50 | buy 3 stop 101.25"
	ti.CharLimit = 64

	return Model{
		sess:   sess,
		symbol: symbol,
		logger: logger.With("component", "tui"),
		input:  ti,
		sma20:  indicator.SMA(closes, 20),
		sma50:  indicator.SMA(closes, 50),
		rsi14:  indicator.RSI(closes, 14),
		atr14:  indicator.ATR(high, low, closes, 14),
		kcMid:  kcMid,
		kcUp:   kcUp,
		kcLow:  kcLow,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeOrder {
			return m.updateOrderEntry(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "n", "right", " ":
		if !m.sess.Next() {
			m.status = "end of series"
		} else {
			m.status = ""
		}
		return m, nil

	case "p", "left":
		if !m.sess.Prev() {
			m.status = "at first bar"
		} else {
			m.status = ""
		}
		return m, nil

	case "b":
		return m.placeOrder(orderRequest{side: domain.SideBuy, typ: domain.OrderTypeMarket, qty: 1})

	case "s":
		return m.placeOrder(orderRequest{side: domain.SideSell, typ: domain.OrderTypeMarket, qty: 1})

	case "o":
		m.mode = modeOrder
		m.input.SetValue("")
		m.input.Focus()
		m.status = ""
		return m, textinput.Blink

	case "c":
		m.sess.CancelAll()
		m.status = "open orders canceled"
		return m, nil
	}
	return m, nil
}

func (m Model) updateOrderEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil

	case "enter":
		line := m.input.Value()
		m.mode = modeBrowse
		m.input.Blur()
		req, err := parseOrderInput(line)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		return m.placeOrder(req)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) placeOrder(req orderRequest) (tea.Model, tea.Cmd) {
	var (
		o   *domain.Order
		err error
	)
	switch req.typ {
	case domain.OrderTypeMarket:
		o, err = m.sess.PlaceMarket(req.side, req.qty)
	case domain.OrderTypeLimit:
		o, err = m.sess.PlaceLimit(req.side, req.qty, req.price)
	case domain.OrderTypeStop:
		o, err = m.sess.PlaceStop(req.side, req.qty, req.price)
	}
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.logger.Info("order placed", "id", o.ID, "side", o.Side, "type", o.Type, "qty", o.Qty)
	m.status = fmt.Sprintf("%s %s %s placed", o.Side, FormatQty(o.Qty), o.Type)
	return m, nil
}

// Run starts the program on the alternate screen and blocks until quit.
func Run(sess *session.Session, symbol string, logger *slog.Logger) error {
	p := tea.NewProgram(New(sess, symbol, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
