package sim

import (
	"errors"
	"testing"

	"backstep/internal/domain"
)

func TestNewOrderValid(t *testing.T) {
	o, err := NewOrder(3, domain.SideBuy, domain.OrderTypeLimit, 10, 99.5, 0)
	if err != nil {
		t.Fatalf("NewOrder returned error: %v", err)
	}
	if o.ID == "" {
		t.Error("NewOrder did not assign an ID")
	}
	if o.Status != domain.OrderStatusOpen {
		t.Errorf("Status = %q, want %q", o.Status, domain.OrderStatusOpen)
	}
	if o.BarIndex != 3 {
		t.Errorf("BarIndex = %d, want 3", o.BarIndex)
	}
	if o.FilledQty != 0 || o.AvgFillPrice != 0 {
		t.Error("new order should have zero fill state")
	}
}

func TestNewOrderUniqueIDs(t *testing.T) {
	a, err := NewOrder(0, domain.SideBuy, domain.OrderTypeMarket, 1, 0, 0)
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}
	b, err := NewOrder(0, domain.SideBuy, domain.OrderTypeMarket, 1, 0, 0)
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}
	if a.ID == b.ID {
		t.Errorf("two orders share ID %q", a.ID)
	}
}

func TestNewOrderValidation(t *testing.T) {
	tests := []struct {
		name    string
		side    domain.Side
		typ     domain.OrderType
		qty     float64
		limit   float64
		stop    float64
		wantErr error
	}{
		{"zero qty", domain.SideBuy, domain.OrderTypeMarket, 0, 0, 0, ErrQtyNotPositive},
		{"negative qty", domain.SideSell, domain.OrderTypeMarket, -5, 0, 0, ErrQtyNotPositive},
		{"limit without price", domain.SideBuy, domain.OrderTypeLimit, 10, 0, 0, ErrNoLimitPrice},
		{"stop without price", domain.SideSell, domain.OrderTypeStop, 10, 0, 0, ErrNoStopPrice},
		{"unknown type", domain.SideBuy, domain.OrderType("trailing"), 10, 0, 0, ErrUnknownOrderType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrder(0, tt.side, tt.typ, tt.qty, tt.limit, tt.stop)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewOrder error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPlaceRejectsInvalidOrder(t *testing.T) {
	b := NewBroker(Config{Cash: 1000}, nil)
	_, err := b.Place(&domain.Order{Side: domain.SideBuy, Type: domain.OrderTypeMarket, Qty: 0})
	if !errors.Is(err, ErrQtyNotPositive) {
		t.Errorf("Place error = %v, want %v", err, ErrQtyNotPositive)
	}
	if got := len(b.Orders()); got != 0 {
		t.Errorf("rejected order was appended, Orders len = %d", got)
	}
}
