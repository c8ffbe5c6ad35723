package tui

import (
	"fmt"
	"strconv"
	"strings"

	"backstep/internal/domain"
)

// orderRequest is a parsed order-entry command, ready to hand to the session.
type orderRequest struct {
	side  domain.Side
	typ   domain.OrderType
	qty   float64
	price float64 // limit or stop price, zero for market
}

// parseOrderInput parses an order-entry line. Accepted forms:
//
//	buy 10
//	sell 5 limit 99.50
//	buy 3 stop 101.25
func parseOrderInput(line string) (orderRequest, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) < 2 {
		return orderRequest{}, fmt.Errorf("usage: buy|sell <qty> [limit|stop <price>]")
	}

	var req orderRequest
	switch fields[0] {
	case "buy", "b":
		req.side = domain.SideBuy
	case "sell", "s":
		req.side = domain.SideSell
	default:
		return orderRequest{}, fmt.Errorf("unknown side %q", fields[0])
	}

	qty, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || qty <= 0 {
		return orderRequest{}, fmt.Errorf("bad quantity %q", fields[1])
	}
	req.qty = qty

	if len(fields) == 2 {
		req.typ = domain.OrderTypeMarket
		return req, nil
	}
	if len(fields) != 4 {
		return orderRequest{}, fmt.Errorf("usage: buy|sell <qty> [limit|stop <price>]")
	}

	switch fields[2] {
	case "limit", "l":
		req.typ = domain.OrderTypeLimit
	case "stop":
		req.typ = domain.OrderTypeStop
	default:
		return orderRequest{}, fmt.Errorf("unknown order type %q", fields[2])
	}
	price, err := strconv.ParseFloat(fields[3], 64)
	if err != nil || price <= 0 {
		return orderRequest{}, fmt.Errorf("bad price %q", fields[3])
	}
	req.price = price
	return req, nil
}
