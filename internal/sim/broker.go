package sim

import (
	"log/slog"

	"backstep/internal/domain"
)

// Config fixes the simulation parameters for the lifetime of a Broker.
type Config struct {
	Cash    float64    // starting cash
	FeeBps  float64    // commission, basis points of notional
	SlipBps float64    // slippage, basis points of price
	Timing  FillTiming // market-order reference price policy
}

// Broker owns the order list and the simulated account. The caller advances
// it one bar at a time with ProcessBar; Place and CancelAll may be called
// between bars. All state is in-memory and a Broker must not be shared
// across goroutines.
type Broker struct {
	cfg Config
	log *slog.Logger

	orders []*domain.Order

	cash        float64
	pos         domain.Position
	equity      float64
	realizedPnL float64
	maxEquity   float64
	drawdown    float64
}

// NewBroker creates a broker with the configured starting cash and a flat
// position. A nil logger falls back to slog.Default.
func NewBroker(cfg Config, log *slog.Logger) *Broker {
	if cfg.Timing == "" {
		cfg.Timing = FillNextOpen
	}
	if log == nil {
		log = slog.Default()
	}
	return &Broker{
		cfg:       cfg,
		log:       log.With("component", "broker"),
		cash:      cfg.Cash,
		equity:    cfg.Cash,
		maxEquity: cfg.Cash,
	}
}

// Place validates the order and adds it to the open set. The order is
// returned for convenience; it fills (or not) on subsequent ProcessBar
// calls.
func (b *Broker) Place(o *domain.Order) (*domain.Order, error) {
	if err := validateOrder(o); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatusOpen
	b.orders = append(b.orders, o)
	b.log.Debug("order placed",
		"id", o.ID, "side", o.Side, "type", o.Type, "qty", o.Qty)
	return o, nil
}

// CancelAll cancels every currently open order. Filled and already-canceled
// orders are untouched, so calling it repeatedly is a no-op after the first.
func (b *Broker) CancelAll() {
	n := 0
	for _, o := range b.orders {
		if o.Open() {
			o.Status = domain.OrderStatusCanceled
			n++
		}
	}
	if n > 0 {
		b.log.Debug("orders canceled", "count", n)
	}
}

// ProcessBar matches every open order against the bar at index i, then marks
// the account to market on the bar close. Orders that do not meet their fill
// condition stay open for future bars.
func (b *Broker) ProcessBar(i int, bar domain.Bar) {
	for _, o := range b.orders {
		if !o.Open() {
			continue
		}
		ref, ok := fillPrice(o, bar, b.cfg.Timing)
		if !ok {
			continue
		}
		b.fill(o, ref, i)
	}

	b.equity = b.cash + b.pos.Qty*bar.Close
	if b.equity > b.maxEquity {
		b.maxEquity = b.equity
	}
	b.drawdown = b.maxEquity - b.equity
}

// fill applies slippage and fees, settles cash, updates the position, and
// moves the order to its terminal filled state.
func (b *Broker) fill(o *domain.Order, ref float64, barIndex int) {
	price := applySlippage(ref, o.Side, b.cfg.SlipBps)
	fee := feeFor(price*o.Qty, b.cfg.FeeBps)
	notional := price * o.Qty

	if o.Side == domain.SideBuy {
		b.cash -= notional + fee
	} else {
		b.cash += notional - fee
	}
	b.realizedPnL += applyFill(&b.pos, o.Side, price, o.Qty)

	o.Status = domain.OrderStatusFilled
	o.FilledQty = o.Qty
	o.AvgFillPrice = price

	b.log.Debug("order filled",
		"id", o.ID, "bar", barIndex, "side", o.Side, "type", o.Type,
		"qty", o.Qty, "price", price, "fee", fee)
}

// Account returns a snapshot of the simulated account state.
func (b *Broker) Account() domain.AccountSnapshot {
	return domain.AccountSnapshot{
		Cash:        b.cash,
		Position:    b.pos,
		Equity:      b.equity,
		RealizedPnL: b.realizedPnL,
		MaxEquity:   b.maxEquity,
		Drawdown:    b.drawdown,
	}
}

// Orders returns copies of every order ever placed, in placement order.
func (b *Broker) Orders() []domain.Order {
	out := make([]domain.Order, len(b.orders))
	for i, o := range b.orders {
		out[i] = *o
	}
	return out
}

// OpenOrders returns copies of the orders still eligible for matching.
func (b *Broker) OpenOrders() []domain.Order {
	var out []domain.Order
	for _, o := range b.orders {
		if o.Open() {
			out = append(out, *o)
		}
	}
	return out
}
