// Package domain holds the core data types shared across the backtester:
// bars, orders, positions, and account snapshots.
package domain

import "time"

// Bar is a single OHLCV interval.
type Bar struct {
	Symbol     string
	Timestamp  time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     int64
	TradeCount int64
	VWAP       float64
}

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderType identifies how an order is matched against a bar.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
	OrderTypeStop   OrderType = "stop"
)

// OrderStatus is the lifecycle state of an order. Open orders may become
// filled or canceled; both of those states are terminal.
type OrderStatus string

const (
	OrderStatusOpen     OrderStatus = "open"
	OrderStatusFilled   OrderStatus = "filled"
	OrderStatusCanceled OrderStatus = "canceled"
)

// Order is a trading intent plus its fill state. The intent fields (side,
// type, quantity, trigger prices) never change after creation; only the
// status, filled quantity, and average fill price are mutated, and only by
// the simulation broker.
type Order struct {
	ID         string
	BarIndex   int // bar index at placement
	Side       Side
	Type       OrderType
	Qty        float64
	LimitPrice float64 // required for limit orders
	StopPrice  float64 // required for stop orders

	Status       OrderStatus
	FilledQty    float64
	AvgFillPrice float64
	CreatedAt    time.Time
}

// Open reports whether the order is still eligible for matching.
func (o *Order) Open() bool {
	return o.Status == OrderStatusOpen
}

// Position is a signed net exposure: positive quantity is long, negative is
// short, zero is flat. AvgPrice is meaningless while flat.
type Position struct {
	Qty      float64
	AvgPrice float64
}

// Flat reports whether the position holds no exposure.
func (p Position) Flat() bool { return p.Qty == 0 }

// AccountSnapshot is a read-only view of the simulated account, refreshed
// after every processed bar.
type AccountSnapshot struct {
	Cash        float64
	Position    Position
	Equity      float64
	RealizedPnL float64
	MaxEquity   float64
	Drawdown    float64
}
