// Package session drives a manual backtest: it owns the bar series, the
// view cursor, and the simulation broker, and advances them one bar at a
// time on behalf of a TUI or CLI front end.
package session

import (
	"errors"
	"log/slog"

	"backstep/internal/domain"
	"backstep/internal/sim"
)

// ErrNoBars is returned when a session is created over an empty series.
var ErrNoBars = errors.New("session requires at least one bar")

// Session steps through a bar series with a broker attached. The cursor may
// move backwards for inspection, but each bar is matched against open orders
// exactly once: retreating and re-advancing never replays fills.
type Session struct {
	log    *slog.Logger
	bars   []domain.Bar
	broker *sim.Broker

	cursor    int // bar currently shown
	processed int // highest bar index already matched, -1 before the first advance
}

// Snapshot is the read-only view handed to the presentation layer after
// every step.
type Snapshot struct {
	Index   int // current bar index
	Total   int
	Bar     domain.Bar
	Account domain.AccountSnapshot
	Orders  []domain.Order
}

// New creates a session over the given bars with a fresh broker.
func New(bars []domain.Bar, cfg sim.Config, log *slog.Logger) (*Session, error) {
	if len(bars) == 0 {
		return nil, ErrNoBars
	}
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		log:       log.With("component", "session"),
		bars:      bars,
		broker:    sim.NewBroker(cfg, log),
		processed: -1,
	}, nil
}

// Next advances the cursor one bar and matches open orders against it if it
// has not been processed before. Returns false at the end of the series.
func (s *Session) Next() bool {
	if s.cursor >= len(s.bars)-1 {
		return false
	}
	s.cursor++
	if s.cursor > s.processed {
		s.broker.ProcessBar(s.cursor, s.bars[s.cursor])
		s.processed = s.cursor
	}
	return true
}

// Prev moves the view cursor back one bar without touching broker state.
func (s *Session) Prev() bool {
	if s.cursor == 0 {
		return false
	}
	s.cursor--
	return true
}

// Index returns the current cursor position.
func (s *Session) Index() int { return s.cursor }

// Len returns the total number of bars.
func (s *Session) Len() int { return len(s.bars) }

// Bar returns the bar at the cursor.
func (s *Session) Bar() domain.Bar { return s.bars[s.cursor] }

// Bars returns the full series. Callers must treat it as read-only; the
// presentation layer uses it to precompute indicator overlays.
func (s *Session) Bars() []domain.Bar { return s.bars }

// PlaceMarket submits a market order at the current bar index.
func (s *Session) PlaceMarket(side domain.Side, qty float64) (*domain.Order, error) {
	o, err := sim.NewOrder(s.cursor, side, domain.OrderTypeMarket, qty, 0, 0)
	if err != nil {
		return nil, err
	}
	return s.broker.Place(o)
}

// PlaceLimit submits a limit order at the current bar index.
func (s *Session) PlaceLimit(side domain.Side, qty, limitPrice float64) (*domain.Order, error) {
	o, err := sim.NewOrder(s.cursor, side, domain.OrderTypeLimit, qty, limitPrice, 0)
	if err != nil {
		return nil, err
	}
	return s.broker.Place(o)
}

// PlaceStop submits a stop order at the current bar index.
func (s *Session) PlaceStop(side domain.Side, qty, stopPrice float64) (*domain.Order, error) {
	o, err := sim.NewOrder(s.cursor, side, domain.OrderTypeStop, qty, 0, stopPrice)
	if err != nil {
		return nil, err
	}
	return s.broker.Place(o)
}

// CancelAll cancels every open order.
func (s *Session) CancelAll() {
	s.broker.CancelAll()
}

// Account returns the broker's account snapshot.
func (s *Session) Account() domain.AccountSnapshot {
	return s.broker.Account()
}

// Orders returns every order placed this session.
func (s *Session) Orders() []domain.Order {
	return s.broker.Orders()
}

// OpenOrders returns the orders still eligible for matching.
func (s *Session) OpenOrders() []domain.Order {
	return s.broker.OpenOrders()
}

// Snapshot assembles the current read-only view.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Index:   s.cursor,
		Total:   len(s.bars),
		Bar:     s.bars[s.cursor],
		Account: s.broker.Account(),
		Orders:  s.broker.Orders(),
	}
}
