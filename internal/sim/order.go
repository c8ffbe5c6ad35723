// Package sim implements the execution simulation core: order validation,
// bar-by-bar fill matching, slippage and fee adjustment, and signed position
// accounting. The package is purely in-memory and single-threaded; the
// caller drives it one bar at a time.
package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"backstep/internal/domain"
)

// Validation errors surfaced by NewOrder and Broker.Place.
var (
	ErrQtyNotPositive   = errors.New("order quantity must be positive")
	ErrNoLimitPrice     = errors.New("limit order requires a limit price")
	ErrNoStopPrice      = errors.New("stop order requires a stop price")
	ErrUnknownOrderType = errors.New("unknown order type")
)

// NewOrder builds a validated order in the open state. limitPrice and
// stopPrice are only consulted for the order types that require them; pass
// zero otherwise. Identity is a fresh UUID so orders stay distinguishable
// no matter how they are copied around.
func NewOrder(barIndex int, side domain.Side, typ domain.OrderType, qty, limitPrice, stopPrice float64) (*domain.Order, error) {
	o := &domain.Order{
		ID:         uuid.NewString(),
		BarIndex:   barIndex,
		Side:       side,
		Type:       typ,
		Qty:        qty,
		LimitPrice: limitPrice,
		StopPrice:  stopPrice,
		Status:     domain.OrderStatusOpen,
		CreatedAt:  time.Now(),
	}
	if err := validateOrder(o); err != nil {
		return nil, err
	}
	return o, nil
}

// validateOrder enforces the order invariants: positive quantity and a
// trigger price for limit/stop orders.
func validateOrder(o *domain.Order) error {
	if o.Qty <= 0 {
		return fmt.Errorf("%w: got %v", ErrQtyNotPositive, o.Qty)
	}
	switch o.Type {
	case domain.OrderTypeMarket:
	case domain.OrderTypeLimit:
		if o.LimitPrice <= 0 {
			return ErrNoLimitPrice
		}
	case domain.OrderTypeStop:
		if o.StopPrice <= 0 {
			return ErrNoStopPrice
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOrderType, o.Type)
	}
	return nil
}
